package tributary

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quixio/tributary/internal/convert"
	"github.com/quixio/tributary/internal/export"
	"github.com/quixio/tributary/internal/filesystems"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [source]",
	Short: "Print the conversion plan as JSON without writing anything",
	Long: `Inspect runs the full conversion in memory and prints the plan as JSON:
the quix.yaml descriptor, every application folder with its normalized
dockerfile, and all diagnostics. Nothing is written to disk.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := "."
		if len(args) > 0 {
			source = args[0]
		}

		applyConfigDefaults(cmd)

		filesystem, dir, err := sourceTree(cmd, source)
		if err != nil {
			return err
		}

		if gitFS, ok := filesystem.(*filesystems.GitFS); ok {
			defer gitFS.Cleanup()
		}

		converter := convert.New(filesystem, logger)
		output, err := converter.Convert(cmd.Context(), dir, convert.Options{
			ProjectName: projectName,
			Profiles:    profiles,
		})
		if err != nil {
			return err
		}

		plan, err := export.NewJSONExporter().Export(output)
		if err != nil {
			return fmt.Errorf("JSON export failed: %w", err)
		}

		fmt.Println(string(plan))

		return output.Err()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
