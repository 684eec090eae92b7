package reanalyze

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkalin/phototag-go/internal/analysis"
	"github.com/tkalin/phototag-go/internal/conf"
)

// Command creates the reanalyze command, which re-enriches images that
// already have a record. Only the enrichment columns are rewritten, the
// provenance of the original record is preserved.
func Command(settings *conf.Settings) *cobra.Command {
	var image string

	cmd := &cobra.Command{
		Use:   "reanalyze [directory]",
		Short: "Re-enrich images that already have a record",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				settings.Input.Path = args[0]
			}
			opts := analysis.RunOptions{Mode: analysis.ModeReanalyzeAll}
			if image != "" {
				opts.Mode = analysis.ModeReanalyzeOne
				opts.Identifier = image
			}
			summary, err := analysis.RunSync(settings, opts)
			fmt.Println(summary.String())
			return err
		},
	}

	cmd.Flags().StringVar(&image, "image", "", "Re-enrich a single image by filename")
	cmd.Flags().BoolVarP(&settings.Input.Recursive, "recursive", "r", false, "Recursively scan subdirectories")

	return cmd
}
