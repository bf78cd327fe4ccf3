package commands

import (
	"context"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mongoose-kitchen/mongoose/internal/cli/config"
	"github.com/mongoose-kitchen/mongoose/internal/cli/ui"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mongoose",
		Short: "Kitchen inventory, recipe and menu service",
		Long: color.CyanString(`Mongoose - kitchen inventory service

Mongoose keeps track of the food in the fridge, its nutritional facts,
the recipes that use it and the menus that serve those recipes, and
exposes them as a JSON API.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default ./mongoose.yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewRoutesCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the mongoose version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			// Set GoVersion to actual runtime if not set at build time
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			ui.NewPrinter(cmd.OutOrStdout(), noColor(cmd)).Fields(
				"Mongoose version", Version,
				"Git commit", GitCommit,
				"Build date", BuildDate,
				"Go version", goVer,
			)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}

// loadConfig loads the configuration named by the --config flag
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func noColor(cmd *cobra.Command) bool {
	disabled, _ := cmd.Flags().GetBool("no-color")
	return disabled || color.NoColor
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
