package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkalin/phototag-go/cmd/process"
	"github.com/tkalin/phototag-go/cmd/reanalyze"
	"github.com/tkalin/phototag-go/cmd/search"
	"github.com/tkalin/phototag-go/cmd/stats"
	"github.com/tkalin/phototag-go/cmd/testbatch"
	"github.com/tkalin/phototag-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "phototag",
		Short: "Phototag CLI",
		Long:  "Enrich military image collections with rule-based metadata from vision detection signals.",
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, settings)

	// Add sub-commands to the root command.
	subcommands := []*cobra.Command{
		process.Command(settings),
		reanalyze.Command(settings),
		testbatch.Command(settings),
		stats.Command(settings),
		search.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVarP(&settings.Input.Path, "input", "i", viper.GetString("input.path"), "Path to the image directory")
	rootCmd.PersistentFlags().StringVar(&settings.Classify.RulesPath, "rules", viper.GetString("classify.rulespath"), "Path to an external rule table, empty for built-in rules")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
