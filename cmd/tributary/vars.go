package tributary

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quixio/tributary/internal/compose"
	"github.com/quixio/tributary/internal/filesystems"
	"github.com/quixio/tributary/internal/variables"
)

var varsCmd = &cobra.Command{
	Use:   "vars [source]",
	Short: "List each service's environment variables as Quix will see them",
	Long: `Vars loads the compose project and prints every service's environment
variables with their classification: input type, whether the variable is
required, and the secret key or carried value.`,
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

		src, err := compose.LocateBelow(filesystem, dir)
		if err != nil {
			return err
		}

		loader := compose.NewLoader(filesystem, logger)
		project, err := loader.Load(cmd.Context(), src, compose.Options{
			ProjectName: projectName,
			Profiles:    profiles,
		})
		if err != nil {
			return err
		}

		for _, svc := range project.Services {
			fmt.Printf("=== %s ===\n", svc.Name)

			if len(svc.Env) == 0 {
				fmt.Println("  no environment variables")
				fmt.Println()
				continue
			}

			for _, name := range svc.EnvNames() {
				variable, _ := variables.Build(name, svc.Env[name])

				requiredMarker := ""
				if variable.Required {
					requiredMarker = " [required]"
				}
				fmt.Printf("  %s (%s)%s\n", variable.Name, variable.InputType, requiredMarker)

				if variable.SecretKey != "" {
					fmt.Printf("    secretKey: %s\n", variable.SecretKey)
				}
				if variable.Value != "" {
					fmt.Printf("    value: %s\n", variable.Value)
				}
			}
			fmt.Println()
		}

		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(varsCmd)
}
