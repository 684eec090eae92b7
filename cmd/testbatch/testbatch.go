package testbatch

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkalin/phototag-go/internal/analysis"
	"github.com/tkalin/phototag-go/internal/conf"
)

// Command creates the testbatch command, a dry run over a small sample of
// images. Nothing is committed, the classification results are only printed.
func Command(settings *conf.Settings) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "testbatch [directory]",
		Short: "Classify a small sample without writing to the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				settings.Input.Path = args[0]
			}
			summary, err := analysis.RunSync(settings, analysis.RunOptions{
				Mode:  analysis.ModeTestBatch,
				Limit: limit,
			})
			fmt.Println(summary.String())
			return err
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", analysis.DefaultTestBatchSize, "Number of images to sample")
	cmd.Flags().BoolVarP(&settings.Input.Recursive, "recursive", "r", false, "Recursively scan subdirectories")

	return cmd
}
