package search

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tkalin/phototag-go/internal/conf"
	"github.com/tkalin/phototag-go/internal/datastore"
	"github.com/tkalin/phototag-go/internal/errors"
)

// Command creates the search command, which queries stored records by
// description and keyword content.
func Command(settings *conf.Settings) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search records by description and keywords",
		Args:  cobra.MinimumNArgs(1),
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

			query := strings.Join(args, " ")
			records, err := store.SearchByDescription(query, limit, offset)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Printf("no records match %q\n", query)
				return nil
			}
			for _, rec := range records {
				fmt.Printf("%s\n  %s\n", rec.Filename, rec.Description)
				if rec.Country != "" {
					fmt.Printf("  country: %s\n", rec.Country)
				}
				if len(rec.Keywords) > 0 {
					fmt.Printf("  keywords: %s\n", strings.Join(rec.Keywords, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 25, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of results to skip")

	return cmd
}
