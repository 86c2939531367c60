package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/locatio-dev/locatio/internal/amortization"
	"github.com/locatio-dev/locatio/internal/assets"
	"github.com/locatio-dev/locatio/internal/auditlog"
	"github.com/locatio-dev/locatio/internal/export"
	"github.com/locatio-dev/locatio/internal/model"
	"github.com/locatio-dev/locatio/internal/money"
)

func newAssetCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asset",
		Short: "Manage depreciable fixed assets",
	}
	cmd.AddCommand(
		newAssetAddCommand(a),
		newAssetListCommand(a),
		newAssetScheduleCommand(a),
	)
	return cmd
}

func newAssetAddCommand(a *app) *cobra.Command {
	var label, amount, date, code string
	var duration int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a fixed asset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			amountHT, err := money.Parse(amount)
			if err != nil {
				return fmt.Errorf("--amount: %w", err)
			}
			acquired, err := parseDate(date)
			if err != nil {
				return err
			}

			store, err := a.assets()
			if err != nil {
				return err
			}
			asset, err := store.Add(assets.AddParams{
				UserID:          a.cfg.Owner.UserID,
				Label:           label,
				AmountHT:        amountHT,
				DurationYears:   duration,
				AcquisitionDate: acquired,
				AccountCode:     code,
			})
			if err != nil {
				return err
			}

			err = auditlog.Append(a.repoDir, []auditlog.Entry{{
				Timestamp: time.Now(),
				UserID:    a.cfg.Owner.UserID,
				Action:    auditlog.ActionAssetAdd,
				EntryID:   asset.ID,
				NewCode:   asset.AccountCode,
				Details:   asset.Label,
			}})
			if err != nil {
				return err
			}

			a.log.Info().Str("asset_id", asset.ID).Str("amount_ht", asset.AmountHT.StringFixed(2)).Msg("asset added")
			fmt.Fprintf(cmd.OutOrStdout(), "Added asset %s (%s over %d years)\n", asset.ID, money.Format(asset.AmountHT), asset.DurationYears)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&label, "label", "", "asset label (required)")
	flags.StringVar(&amount, "amount", "", "acquisition cost excluding VAT (required)")
	flags.IntVar(&duration, "duration", 0, "depreciation period in years (required)")
	flags.StringVar(&date, "date", "", "acquisition date (required)")
	flags.StringVar(&code, "code", assets.DefaultAccountCode, "fixed-asset account code")
	for _, name := range []string{"label", "amount", "duration", "date"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newAssetListCommand(a *app) *cobra.Command {
	var o outputFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List fixed assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			store, err := a.assets()
			if err != nil {
				return err
			}
			return a.emit(cmd, o, "immobilisations", assetsDocument(store.All()))
		},
	}
	o.register(cmd)
	return cmd
}

func assetsDocument(list []model.Asset) export.Document {
	rows := make([][]any, 0, len(list))
	for _, as := range list {
		rows = append(rows, []any{as.ID, as.Label, as.AccountCode, as.AcquisitionDate, as.DurationYears, as.AmountHT})
	}
	return export.Document{
		Title: "Immobilisations",
		Sections: []export.Section{{
			Name: "Immobilisations",
			Columns: []export.Column{
				{Header: "Identifiant", Width: 70},
				{Header: "Libellé"},
				{Header: "Compte", Width: 18},
				{Header: "Acquisition", Kind: export.KindDate, Width: 25},
				{Header: "Durée", Kind: export.KindInt, Width: 15},
				{Header: "Valeur HT", Kind: export.KindAmount, Width: 30},
			},
			Rows: rows,
		}},
	}
}

func newAssetScheduleCommand(a *app) *cobra.Command {
	var o outputFlags

	cmd := &cobra.Command{
		Use:   "schedule <asset-id>",
		Short: "Show the straight-line depreciation schedule of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			store, err := a.assets()
			if err != nil {
				return err
			}
			asset, err := store.Get(args[0])
			if err != nil {
				return err
			}
			rows, err := amortization.ComputeLinear(asset.AmountHT, asset.DurationYears, asset.AcquisitionDate)
			if err != nil {
				return err
			}
			return a.emit(cmd, o, "plan-"+asset.ID, scheduleDocument(asset, rows))
		},
	}
	o.register(cmd)
	return cmd
}

func scheduleDocument(asset model.Asset, rows []amortization.Row) export.Document {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{strconv.Itoa(r.Year), r.Dotation, r.Cumul, asset.AmountHT.Sub(r.Cumul)})
	}
	return export.Document{
		Title:    "Plan d'amortissement : " + asset.Label,
		Subtitle: fmt.Sprintf("%s HT sur %d ans à compter du %s", money.Format(asset.AmountHT), asset.DurationYears, asset.AcquisitionDate.Format("02/01/2006")),
		Sections: []export.Section{{
			Name: "Plan",
			Columns: []export.Column{
				{Header: "Exercice", Width: 25},
				{Header: "Dotation", Kind: export.KindAmount, Width: 35},
				{Header: "Cumul", Kind: export.KindAmount, Width: 35},
				{Header: "VNC", Kind: export.KindAmount, Width: 35},
			},
			Rows: out,
		}},
	}
}
