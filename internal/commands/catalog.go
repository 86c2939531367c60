package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/locatio-dev/locatio/internal/catalog"
	"github.com/locatio-dev/locatio/internal/export"
	"github.com/locatio-dev/locatio/internal/model"
)

func newCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the chart of accounts catalog",
	}
	cmd.AddCommand(newCatalogSearchCommand())
	return cmd
}

func newCatalogSearchCommand() *cobra.Command {
	var entryType string
	var limit int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Find accounts usable for an entry type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok := model.ParseEntryType(entryType)
			if !ok {
				return fmt.Errorf("invalid --type %q, expected purchase or sale", entryType)
			}
			c, err := catalog.Default()
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			results := c.Search(query, t, limit)
			if len(results) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No %s account matches %q\n", t, query)
				return nil
			}

			rows := make([][]any, 0, len(results))
			for _, acct := range results {
				rows = append(rows, []any{acct.Code, acct.Label, acct.Rubrique})
			}
			return export.WriteText(cmd.OutOrStdout(), export.Document{
				Title: fmt.Sprintf("Comptes (%s)", t),
				Sections: []export.Section{{
					Name: "Catalogue",
					Columns: []export.Column{
						{Header: "Code"},
						{Header: "Libellé"},
						{Header: "Rubrique"},
					},
					Rows: rows,
				}},
			})
		},
	}

	cmd.Flags().StringVar(&entryType, "type", string(model.EntryTypePurchase), "purchase or sale")
	cmd.Flags().IntVar(&limit, "limit", catalog.DefaultSearchLimit, "maximum number of results")
	return cmd
}
