package commands

import (
	"github.com/spf13/cobra"

	"github.com/locatio-dev/locatio/internal/export"
	"github.com/locatio-dev/locatio/internal/model"
	"github.com/locatio-dev/locatio/internal/report"
)

type reportFlags struct {
	year  int
	from  string
	to    string
	query string
	out   outputFlags
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.year, "year", currentYear(), "fiscal year")
	cmd.Flags().StringVar(&f.from, "from", "", "start date, overrides 1 January")
	cmd.Flags().StringVar(&f.to, "to", "", "end date (inclusive), overrides 31 December")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "only entries and assets matching this text")
	f.out.register(cmd)
}

func (f *reportFlags) params(userID string) (report.Params, error) {
	return reportParams(userID, f.year, f.from, f.to, f.query)
}

// reportParams builds report parameters from user-typed bounds.
func reportParams(userID string, year int, from, to, query string) (report.Params, error) {
	p := report.Params{UserID: userID, Year: year, Query: query}
	if from != "" {
		d, err := parseDate(from)
		if err != nil {
			return p, err
		}
		p.From = &d
	}
	if to != "" {
		d, err := parseDate(to)
		if err != nil {
			return p, err
		}
		p.To = &d
	}
	return p, nil
}

// books reads the complete journal and asset register. Deposits accumulate
// across years, so reports always get every journal file.
func (a *app) books() ([]model.JournalEntry, []model.Asset, error) {
	svc, err := a.journal()
	if err != nil {
		return nil, nil, err
	}
	entries, err := svc.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	store, err := a.assets()
	if err != nil {
		return nil, nil, err
	}
	return entries, store.All(), nil
}

func (a *app) reportEngine() (*report.Engine, error) {
	return report.New(a.catalog, report.Options{MaxRows: a.cfg.Reports.MaxRows})
}

func newReportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "French tax reports (bilan, compte de résultat, immobilisations)",
	}

	short := map[string]string{
		export.ReportBilan:           "Simplified balance sheet (2033-A)",
		export.ReportResultat:        "Income statement by tax-form rubric (2033-B)",
		export.ReportImmobilisations: "Fixed assets and depreciation (2033-C)",
	}
	for _, name := range export.ReportNames() {
		cmd.AddCommand(newReportSubcommand(a, name, short[name]))
	}
	return cmd
}

func newReportSubcommand(a *app, name, short string) *cobra.Command {
	var f reportFlags

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			engine, err := a.reportEngine()
			if err != nil {
				return err
			}
			params, err := f.params(a.cfg.Owner.UserID)
			if err != nil {
				return err
			}
			entries, assets, err := a.books()
			if err != nil {
				return err
			}
			doc, err := export.BuildReport(engine, name, params, entries, assets)
			if err != nil {
				return err
			}
			a.log.Debug().Str("report", name).Int("entries", len(entries)).Int("assets", len(assets)).Msg("report built")
			return a.emit(cmd, f.out, export.FileStem(name, f.year), doc)
		},
	}
	f.register(cmd)
	return cmd
}
