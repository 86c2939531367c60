package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/locatio-dev/locatio/internal/accounts"
	"github.com/locatio-dev/locatio/internal/auditlog"
	"github.com/locatio-dev/locatio/internal/config"
	"github.com/locatio-dev/locatio/internal/export"
	"github.com/locatio-dev/locatio/internal/model"
)

func newAccountCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage ledger accounts",
	}
	cmd.AddCommand(
		newAccountListCommand(a),
		newAccountAddCommand(a),
		newAccountRenameCommand(a),
		newAccountDeleteCommand(a),
	)
	return cmd
}

func newAccountListCommand(a *app) *cobra.Command {
	var property string
	var o outputFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List global accounts and property accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			svc, err := accounts.Load(a.repoDir)
			if err != nil {
				return err
			}
			list := svc.All()
			if property != "" {
				list = svc.ForProperty(property)
			}
			return a.emit(cmd, o, "comptes", accountsDocument(list))
		},
	}

	cmd.Flags().StringVar(&property, "property", "", "show the global accounts plus this property's accounts")
	o.register(cmd)
	return cmd
}

func accountsDocument(list []model.LedgerAccount) export.Document {
	rows := make([][]any, 0, len(list))
	for _, acct := range list {
		property := ""
		if acct.PropertyID != nil {
			property = *acct.PropertyID
		}
		rows = append(rows, []any{acct.ID, acct.Code, acct.Label, string(acct.Kind), property})
	}
	return export.Document{
		Title: "Plan de comptes",
		Sections: []export.Section{{
			Name: "Comptes",
			Columns: []export.Column{
				{Header: "Identifiant", Width: 70},
				{Header: "Code", Width: 18},
				{Header: "Libellé"},
				{Header: "Nature", Width: 25},
				{Header: "Bien", Width: 30},
			},
			Rows: rows,
		}},
	}
}

func newAccountAddCommand(a *app) *cobra.Command {
	var property, code, label, kind string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account for a property",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			if _, ok := a.cfg.Property(property); !ok {
				return fmt.Errorf("unknown property %q, declare it under properties in %s", property, config.FileName)
			}
			k := accounts.KindForCode(code)
			if kind != "" {
				k = model.AccountKind(kind)
			}

			svc, err := accounts.Load(a.repoDir)
			if err != nil {
				return err
			}
			acct, err := svc.Add(property, code, label, k)
			if err != nil {
				return err
			}
			if err := svc.Save(a.repoDir); err != nil {
				return err
			}

			err = auditlog.Append(a.repoDir, []auditlog.Entry{{
				Timestamp: time.Now(),
				UserID:    a.cfg.Owner.UserID,
				Action:    auditlog.ActionAccountAdd,
				EntryID:   acct.ID,
				NewCode:   acct.Code,
				Details:   property,
			}})
			if err != nil {
				return err
			}

			a.log.Info().Str("account_id", acct.ID).Str("code", acct.Code).Str("property", property).Msg("account added")
			fmt.Fprintf(cmd.OutOrStdout(), "Added account %s %s (%s)\n", acct.Code, acct.Label, acct.ID)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&property, "property", "", "property id (required)")
	flags.StringVar(&code, "code", "", "account code (required)")
	flags.StringVar(&label, "label", "", "account label (required)")
	flags.StringVar(&kind, "kind", "", "account kind (derived from the code when empty)")
	for _, name := range []string{"property", "code", "label"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

// allEntries reads every journal entry, any user, for in-use checks.
func (a *app) allEntries() ([]model.JournalEntry, error) {
	svc, err := a.journal()
	if err != nil {
		return nil, err
	}
	return svc.ReadAll()
}

func newAccountRenameCommand(a *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "rename <account-id> <label>",
		Short: "Change the label of a property account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			svc, err := accounts.Load(a.repoDir)
			if err != nil {
				return err
			}
			acct, ok := svc.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", accounts.ErrNotFound, args[0])
			}
			k := acct.Kind
			if kind != "" {
				k = model.AccountKind(kind)
			}
			entries, err := a.allEntries()
			if err != nil {
				return err
			}
			if err := svc.Update(acct.ID, args[1], k, entries); err != nil {
				return err
			}
			if err := svc.Save(a.repoDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", acct.Code, args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "new account kind")
	return cmd
}

func newAccountDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <account-id>",
		Short: "Delete an unused property account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			svc, err := accounts.Load(a.repoDir)
			if err != nil {
				return err
			}
			acct, ok := svc.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", accounts.ErrNotFound, args[0])
			}
			entries, err := a.allEntries()
			if err != nil {
				return err
			}
			if err := svc.Delete(acct.ID, entries); err != nil {
				return err
			}
			if err := svc.Save(a.repoDir); err != nil {
				return err
			}

			err = auditlog.Append(a.repoDir, []auditlog.Entry{{
				Timestamp: time.Now(),
				UserID:    a.cfg.Owner.UserID,
				Action:    auditlog.ActionAccountDelete,
				EntryID:   acct.ID,
				OldCode:   acct.Code,
			}})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted account %s\n", acct.Code)
			return nil
		},
	}
}
