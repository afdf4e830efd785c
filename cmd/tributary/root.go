package tributary

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/quixio/tributary/internal/convert"
	"github.com/quixio/tributary/internal/diagnostics"
	"github.com/quixio/tributary/internal/export"
	"github.com/quixio/tributary/internal/filesystems"
)

var (
	cfgFile     string
	verbose     bool
	outDir      string
	force       bool
	profiles    []string
	projectName string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tributary [source]",
	Short: "Convert a Docker Compose project into Quix Cloud descriptors",
	Long: `Tributary reads a Docker Compose project and emits the matching Quix Cloud
project structure:

1. Locate - Find the compose file (compose.yaml and friends, plus overrides)
2. Map    - Turn each service into a deployment and an application descriptor
3. Emit   - Write quix.yaml and one folder per application (app.yaml + dockerfile)

Services that cannot be represented are reported and skipped; the rest of
the project still converts. The source can be a local directory, a compose
file path, or a git:// URL.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		source := "."
		if len(args) > 0 {
			source = args[0]
		}

		applyConfigDefaults(cmd)

		fmt.Printf("Converting compose project: %s\n\n", source)

		return runConvert(cmd, source)
	},
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tributary.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringArrayVar(&profiles, "profile", nil, "compose profile to enable (repeatable)")
	rootCmd.PersistentFlags().StringVar(&projectName, "project-name", "", "override the compose project name")
	rootCmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default is the source directory)")
	rootCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing quix.yaml")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tributary")
	}

	viper.SetEnvPrefix("tributary")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// applyConfigDefaults backfills flags that were not set on the command
// line from the config file or TRIBUTARY_* environment variables.
func applyConfigDefaults(cmd *cobra.Command) {
	if !cmd.Flags().Changed("out") && viper.IsSet("out") {
		outDir = viper.GetString("out")
	}
	if !cmd.Flags().Changed("project-name") && viper.IsSet("project-name") {
		projectName = viper.GetString("project-name")
	}
}

// sourceTree opens the filesystem behind a source argument and returns it
// with the directory to convert. A path naming a compose file directly
// resolves to its parent. Callers own the GitFS cleanup.
func sourceTree(cmd *cobra.Command, source string) (filesystems.FileSystem, string, error) {
	filesystem, err := filesystems.NewFileSystem(cmd.Context(), source)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create filesystem: %w", err)
	}

	dir := filesystems.BasePath(source)
	if stat, err := filesystem.Stat(dir); err == nil && !stat.IsDir() {
		dir = filesystem.Dir(dir)
	}

	return filesystem, dir, nil
}

func runConvert(cmd *cobra.Command, source string) error {
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

	target := outDir
	if target == "" {
		target = dir
	}

	rootFile := filepath.Join(target, "quix.yaml")
	if !force {
		if _, err := os.Stat(rootFile); err == nil {
			return fmt.Errorf("%s already exists, pass --force to overwrite", rootFile)
		}
	}

	writer := export.NewWriter(export.OSSink{}, logger)
	written, err := writer.Write(output, target)
	if err != nil {
		return fmt.Errorf("failed to write project: %w", err)
	}

	printReport(output, written)

	return output.Err()
}

func printReport(output *convert.Output, written []string) {
	fmt.Printf("Project %s: %d deployments, %d topics, %d warnings\n",
		output.ProjectName, len(output.Project.Deployments), len(output.Project.Topics), output.Warnings())

	diags := make([]diagnostics.Diagnostic, len(output.Diags))
	copy(diags, output.Diags)
	diagnostics.Sort(diags)
	for _, diag := range diags {
		fmt.Printf("  %s\n", diag)
	}
	for _, failure := range output.Failed {
		fmt.Printf("  error: %v\n", failure.Err)
	}

	fmt.Printf("\nWrote %d files:\n", len(written))
	for _, path := range written {
		fmt.Printf("  %s\n", path)
	}
}
