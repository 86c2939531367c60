package export

import (
	"errors"
	"fmt"

	"github.com/locatio-dev/locatio/internal/model"
	"github.com/locatio-dev/locatio/internal/report"
)

var ErrUnknownReport = errors.New("unknown report")

// Report names, as used on the command line and in URLs.
const (
	ReportBilan           = "bilan"
	ReportResultat        = "resultat"
	ReportImmobilisations = "immobilisations"
)

// ReportNames lists the tax reports in form order (2033-A, B, C).
func ReportNames() []string {
	return []string{ReportBilan, ReportResultat, ReportImmobilisations}
}

// FileStem is the default export file name of a report, without extension.
func FileStem(name string, year int) string {
	if name == ReportResultat {
		name = "compte-de-resultat"
	}
	return fmt.Sprintf("%s-%d", name, year)
}

// BuildReport runs the named report and flattens it.
func BuildReport(e *report.Engine, name string, p report.Params, entries []model.JournalEntry, assets []model.Asset) (Document, error) {
	switch name {
	case ReportBilan:
		r, err := e.BalanceSheet(p, entries, assets)
		if err != nil {
			return Document{}, err
		}
		return BalanceSheet(r), nil
	case ReportResultat:
		r, err := e.ResultByRubric(p, entries)
		if err != nil {
			return Document{}, err
		}
		return Result(r), nil
	case ReportImmobilisations:
		r, err := e.DepreciationState(p, assets)
		if err != nil {
			return Document{}, err
		}
		return Depreciation(r), nil
	}
	return Document{}, fmt.Errorf("%w: %q", ErrUnknownReport, name)
}
