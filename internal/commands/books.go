package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/locatio-dev/locatio/internal/balance"
	"github.com/locatio-dev/locatio/internal/export"
	"github.com/locatio-dev/locatio/internal/income"
	"github.com/locatio-dev/locatio/internal/ledger"
)

func newBalanceCommand(a *app) *cobra.Command {
	var year int
	var o outputFlags

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Trial balance per account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			entries, err := a.yearEntries(year)
			if err != nil {
				return err
			}
			balances := balance.Aggregate(balance.FromEntries(entries))
			doc := export.Balance(fmt.Sprintf("Balance %d", year), balances)
			return a.emit(cmd, o, fmt.Sprintf("balance-%d", year), doc)
		},
	}

	cmd.Flags().IntVar(&year, "year", currentYear(), "fiscal year")
	o.register(cmd)
	return cmd
}

func newLedgerCommand(a *app) *cobra.Command {
	var year int
	var account string
	var o outputFlags

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "General ledger with running balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			entries, err := a.yearEntries(year)
			if err != nil {
				return err
			}
			accts := ledger.ByAccount(entries)
			if account != "" {
				var kept []ledger.Account
				for _, acct := range accts {
					if strings.HasPrefix(acct.Code, account) {
						kept = append(kept, acct)
					}
				}
				accts = kept
			}
			doc := export.Ledger(fmt.Sprintf("Grand livre %d", year), accts)
			return a.emit(cmd, o, fmt.Sprintf("grand-livre-%d", year), doc)
		},
	}

	cmd.Flags().IntVar(&year, "year", currentYear(), "fiscal year")
	cmd.Flags().StringVar(&account, "account", "", "restrict to account codes with this prefix")
	o.register(cmd)
	return cmd
}

func newIncomeCommand(a *app) *cobra.Command {
	var year int
	var o outputFlags

	cmd := &cobra.Command{
		Use:   "income",
		Short: "Yearly revenue, expenses and result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			entries, err := a.yearEntries(year)
			if err != nil {
				return err
			}
			totals := income.ComputeFromEntries(entries, year)
			return a.emit(cmd, o, fmt.Sprintf("revenus-%d", year), incomeDocument(year, totals))
		},
	}

	cmd.Flags().IntVar(&year, "year", currentYear(), "fiscal year")
	o.register(cmd)
	return cmd
}

func incomeDocument(year int, t income.Totals) export.Document {
	return export.Document{
		Title:    fmt.Sprintf("Revenus %d", year),
		Subtitle: fmt.Sprintf("%d écritures", t.Count),
		Sections: []export.Section{{
			Name: "Synthèse",
			Columns: []export.Column{
				{Header: "Poste"},
				{Header: "Montant", Kind: export.KindAmount, Width: 40},
			},
			Rows: [][]any{
				{"Revenus", t.Revenus},
				{"Dépenses", t.Depenses},
				{"Amortissements", t.Amortissements},
				{"Résultat", t.Resultat},
			},
		}},
	}
}
