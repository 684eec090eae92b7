package process

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkalin/phototag-go/internal/analysis"
	"github.com/tkalin/phototag-go/internal/conf"
)

// Command creates the process command, which enriches only images that do
// not have a stored record yet.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [directory]",
		Short: "Enrich new images that have no record yet",
		Long:  "Scan the image directory and enrich every image without an existing record. Already processed images are skipped.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				settings.Input.Path = args[0]
			}
			summary, err := analysis.RunSync(settings, analysis.RunOptions{Mode: analysis.ModeProcessNew})
			fmt.Println(summary.String())
			return err
		},
	}

	setupFlags(cmd, settings)

	return cmd
}

// setupFlags defines flags specific to the process command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().BoolVarP(&settings.Input.Recursive, "recursive", "r", false, "Recursively scan subdirectories")
}
