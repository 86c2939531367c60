package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/locatio-dev/locatio/internal/amortization"
	"github.com/locatio-dev/locatio/internal/model"
	"github.com/locatio-dev/locatio/internal/money"
)

// DepreciationLine is the state of one asset for the report year.
type DepreciationLine struct {
	AssetID         string
	Label           string
	AccountCode     string
	AcquisitionDate time.Time
	DurationYears   int
	Valeur          decimal.Decimal // acquisition cost
	Anterieurs      decimal.Decimal // depreciation of prior years
	Dotation        decimal.Decimal // charge of the year
	Cumul           decimal.Decimal
	ValeurNette     decimal.Decimal
}

// DepreciationTotals sums the amount columns of the report.
type DepreciationTotals struct {
	Valeur      decimal.Decimal
	Anterieurs  decimal.Decimal
	Dotation    decimal.Decimal
	Cumul       decimal.Decimal
	ValeurNette decimal.Decimal
}

// DepreciationReport is the 2033-C extract.
type DepreciationReport struct {
	Params    Params
	Year      int
	Lines     []DepreciationLine
	Totals    DepreciationTotals
	Truncated bool
}

// DepreciationState evaluates every asset's schedule up to the closing year
// and splits it into prior-years depreciation and the charge of the year.
func (e *Engine) DepreciationState(p Params, assets []model.Asset) (DepreciationReport, error) {
	closing, err := p.ClosingDate()
	if err != nil {
		return DepreciationReport{}, err
	}
	_, end, _ := p.Period()
	year := closing.Year()

	selected, truncated := e.selectAssets(p, assets, end)
	r := DepreciationReport{Params: p, Year: year, Truncated: truncated}

	t := DepreciationTotals{
		Valeur: decimal.Zero, Anterieurs: decimal.Zero, Dotation: decimal.Zero,
		Cumul: decimal.Zero, ValeurNette: decimal.Zero,
	}
	for _, a := range selected {
		rows, err := amortization.ComputeLinear(a.AmountHT, a.DurationYears, a.AcquisitionDate)
		if err != nil {
			return DepreciationReport{}, fmt.Errorf("asset %s: %w", a.ID, err)
		}
		st := amortization.StateAt(rows, year)
		value := money.Round2(a.AmountHT)
		line := DepreciationLine{
			AssetID:         a.ID,
			Label:           a.Label,
			AccountCode:     a.AccountCode,
			AcquisitionDate: a.AcquisitionDate,
			DurationYears:   a.DurationYears,
			Valeur:          value,
			Anterieurs:      st.Prior,
			Dotation:        st.Charge,
			Cumul:           st.Cumul,
			ValeurNette:     value.Sub(st.Cumul),
		}
		r.Lines = append(r.Lines, line)

		t.Valeur = t.Valeur.Add(line.Valeur)
		t.Anterieurs = t.Anterieurs.Add(line.Anterieurs)
		t.Dotation = t.Dotation.Add(line.Dotation)
		t.Cumul = t.Cumul.Add(line.Cumul)
		t.ValeurNette = t.ValeurNette.Add(line.ValeurNette)
	}
	r.Totals = t
	return r, nil
}
