package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/locatio-dev/locatio/internal/auditlog"
	"github.com/locatio-dev/locatio/internal/export"
	"github.com/locatio-dev/locatio/internal/guess"
	"github.com/locatio-dev/locatio/internal/journal"
	"github.com/locatio-dev/locatio/internal/model"
	"github.com/locatio-dev/locatio/internal/money"
	"github.com/locatio-dev/locatio/internal/vat"
)

func newEntryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Record and inspect journal entries",
	}
	cmd.AddCommand(
		newEntryAddCommand(a),
		newEntryListCommand(a),
		newEntryReassignCommand(a),
		newEntryHistoryCommand(a),
	)
	return cmd
}

type entryAddFlags struct {
	entryType    string
	date         string
	amount       string
	designation  string
	counterparty string
	code         string
	deposit      bool
	ht           string
	tva          string
	rate         string
}

func newEntryAddCommand(a *app) *cobra.Command {
	var f entryAddFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a purchase or a sale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			params, err := a.entryParams(f)
			if err != nil {
				return err
			}

			svc, err := a.journal()
			if err != nil {
				return err
			}
			e, err := svc.Add(params)
			if err != nil {
				return err
			}

			a.log.Info().Str("entry_id", e.ID).Str("account", e.AccountCode).Msg("entry added")
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s %s on %s\n", e.ID, e.Type, money.Format(e.Amount), e.AccountCode)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.entryType, "type", "", "purchase or sale (required)")
	flags.StringVar(&f.date, "date", "", "entry date, YYYY-MM-DD or DD/MM/YYYY (required)")
	flags.StringVar(&f.amount, "amount", "", "amount including VAT (required)")
	flags.StringVar(&f.designation, "designation", "", "what the entry is for")
	flags.StringVar(&f.counterparty, "counterparty", "", "tenant or supplier")
	flags.StringVar(&f.code, "code", "", "account code (guessed when empty)")
	flags.BoolVar(&f.deposit, "deposit", false, "refundable security deposit (sales only)")
	flags.StringVar(&f.ht, "ht", "", "amount excluding VAT, checked when VAT is enabled")
	flags.StringVar(&f.tva, "tva", "", "VAT amount, checked when VAT is enabled")
	flags.StringVar(&f.rate, "rate", "", "VAT rate in percent (defaults to the configured rate)")
	for _, name := range []string{"type", "date", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func (a *app) entryParams(f entryAddFlags) (journal.AddParams, error) {
	t, ok := model.ParseEntryType(f.entryType)
	if !ok {
		return journal.AddParams{}, fmt.Errorf("invalid --type %q, expected purchase or sale", f.entryType)
	}
	date, err := parseDate(f.date)
	if err != nil {
		return journal.AddParams{}, err
	}
	amount, err := money.Parse(f.amount)
	if err != nil {
		return journal.AddParams{}, fmt.Errorf("--amount: %w", err)
	}

	if err := a.checkVAT(amount, f); err != nil {
		return journal.AddParams{}, err
	}

	code := strings.TrimSpace(f.code)
	if code == "" {
		g := guess.AccountCode(guess.Input{Type: t, IsDeposit: f.deposit, Designation: f.designation})
		code = g.Code
		a.log.Info().Str("account", code).Str("reason", g.Reason).Msg("account guessed")
	}

	return journal.AddParams{
		UserID:       a.cfg.Owner.UserID,
		Type:         t,
		Date:         date,
		Designation:  strings.TrimSpace(f.designation),
		Counterparty: strings.TrimSpace(f.counterparty),
		AccountCode:  code,
		Amount:       amount,
		IsDeposit:    f.deposit,
	}, nil
}

// checkVAT validates the optional HT/TVA breakdown of a TTC amount.
func (a *app) checkVAT(ttc decimal.Decimal, f entryAddFlags) error {
	if !a.cfg.VAT.Enabled {
		return nil
	}
	in := vat.Input{TTC: &ttc}
	var err error
	if in.HT, err = optionalAmount("--ht", f.ht); err != nil {
		return err
	}
	if in.TVA, err = optionalAmount("--tva", f.tva); err != nil {
		return err
	}
	if in.Rate, err = optionalAmount("--rate", f.rate); err != nil {
		return err
	}
	if in.Rate == nil {
		rate := decimal.NewFromFloat(a.cfg.VAT.DefaultRate)
		in.Rate = &rate
	}
	return vat.Validate(true, in)
}

func optionalAmount(flag, s string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := money.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", flag, err)
	}
	return &d, nil
}

func newEntryListCommand(a *app) *cobra.Command {
	var year, month int
	var query string
	var o outputFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the entries of a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			entries, err := a.yearEntries(year)
			if err != nil {
				return err
			}
			entries = filterEntries(entries, month, query)
			doc := entriesDocument(fmt.Sprintf("Journal %d", year), entries)
			return a.emit(cmd, o, fmt.Sprintf("journal-%d", year), doc)
		},
	}

	cmd.Flags().IntVar(&year, "year", currentYear(), "fiscal year")
	cmd.Flags().IntVar(&month, "month", 0, "restrict to one month (1-12)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter on designation, counterparty or account")
	o.register(cmd)

	return cmd
}

func filterEntries(entries []model.JournalEntry, month int, query string) []model.JournalEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []model.JournalEntry
	for _, e := range entries {
		if month != 0 && int(e.Date.Month()) != month {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(e.Designation), q) &&
			!strings.Contains(strings.ToLower(e.Counterparty), q) &&
			!strings.HasPrefix(e.AccountCode, q) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func entriesDocument(title string, entries []model.JournalEntry) export.Document {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		deposit := ""
		if e.IsDeposit {
			deposit = "oui"
		}
		rows = append(rows, []any{e.ID, e.Date, string(e.Type), e.AccountCode, e.Designation, e.Counterparty, e.Amount, deposit})
	}
	return export.Document{
		Title: title,
		Sections: []export.Section{{
			Name: "Écritures",
			Columns: []export.Column{
				{Header: "N°", Width: 25},
				{Header: "Date", Kind: export.KindDate, Width: 22},
				{Header: "Type", Width: 20},
				{Header: "Compte", Width: 18},
				{Header: "Libellé"},
				{Header: "Tiers", Width: 45},
				{Header: "Montant", Kind: export.KindAmount, Width: 28},
				{Header: "Dépôt", Width: 14},
			},
			Rows: rows,
		}},
	}
}

func newEntryReassignCommand(a *app) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reassign <entry-id> <account-code>",
		Short: "Move an entry to another account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			svc, err := a.journal()
			if err != nil {
				return err
			}
			entryID, code := args[0], strings.TrimSpace(args[1])
			old, err := svc.Reassign(entryID, code)
			if err != nil {
				return err
			}

			err = auditlog.Append(a.repoDir, []auditlog.Entry{{
				Timestamp: time.Now(),
				UserID:    a.cfg.Owner.UserID,
				Action:    auditlog.ActionReassign,
				EntryID:   entryID,
				OldCode:   old,
				NewCode:   code,
				Details:   reason,
			}})
			if err != nil {
				return err
			}

			a.log.Info().Str("entry_id", entryID).Str("old", old).Str("new", code).Msg("entry reassigned")
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", entryID, displayCode(old), code)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "manual", "reason recorded in the audit log")
	return cmd
}

func newEntryHistoryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <entry-id>",
		Short: "Show the audit trail of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			all, err := auditlog.Read(a.repoDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			history := auditlog.History(all, args[0])
			if len(history) == 0 {
				fmt.Fprintf(out, "No history for %s\n", args[0])
				return nil
			}
			for _, h := range history {
				fmt.Fprintf(out, "%s  %-9s %s -> %s  %s\n",
					h.Timestamp.Format(time.DateTime), h.Action, displayCode(h.OldCode), displayCode(h.NewCode), h.Details)
			}
			return nil
		},
	}
}

func displayCode(code string) string {
	if code == "" {
		return "(none)"
	}
	return code
}
