package stats

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tkalin/phototag-go/internal/conf"
	"github.com/tkalin/phototag-go/internal/datastore"
	"github.com/tkalin/phototag-go/internal/errors"
)

// Command creates the stats command, which prints record counts by status,
// the top country attributions and the most recent classifications.
func Command(settings *conf.Settings) *cobra.Command {
	var recent int

	command := &cobra.Command{
		Use:   "stats",
		Short: "Show record counts by status and country",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := datastore.New(settings)
			if store == nil {
				return errors.Newf("no output database is enabled").
					Component("cmd").
					Category(errors.CategoryConfiguration).
					Build()
			}
			if err := store.Open(); err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			stats, err := store.GetStats()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintf(w, "total\t%d\n", stats.Total)
			fmt.Fprintf(w, "processed\t%d\n", stats.Processed)
			fmt.Fprintf(w, "pending\t%d\n", stats.Pending)
			fmt.Fprintf(w, "failed\t%d\n", stats.Failed)
			if len(stats.Countries) > 0 {
				fmt.Fprintln(w, "\nCountry\tRecords")
				for _, c := range stats.Countries {
					fmt.Fprintf(w, "%s\t%d\n", c.Country, c.Count)
				}
			}

			if recent > 0 {
				records, err := store.Recent(recent)
				if err != nil {
					return err
				}
				if len(records) > 0 {
					fmt.Fprintln(w, "\nFile\tStatus\tDescription")
					for i := range records {
						fmt.Fprintf(w, "%s\t%s\t%s\n",
							records[i].Filename, records[i].Status, records[i].Description)
					}
				}
			}
			return w.Flush()
		},
	}

	command.Flags().IntVar(&recent, "recent", 5, "number of recent classifications to list, 0 to disable")

	return command
}
