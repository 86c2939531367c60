package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/locatio-dev/locatio/internal/amortization"
	"github.com/locatio-dev/locatio/internal/model"
	"github.com/locatio-dev/locatio/internal/money"
)

// AssetLine is the book value of one asset at the closing date.
type AssetLine struct {
	AssetID      string
	Label        string
	AccountCode  string
	Gross        decimal.Decimal
	Depreciation decimal.Decimal
	Net          decimal.Decimal
}

// Actif is the asset side of the balance sheet.
type Actif struct {
	ImmobilisationsBrutes decimal.Decimal
	Amortissements        decimal.Decimal
	ImmobilisationsNettes decimal.Decimal
	Tresorerie            decimal.Decimal // not tracked yet, always zero
	Total                 decimal.Decimal
}

// Passif is the liability side of the balance sheet.
type Passif struct {
	CapitauxPropres decimal.Decimal // balancing residual
	DepotsGarantie  decimal.Decimal
	Total           decimal.Decimal
}

// BalanceSheetReport is the 2033-A extract.
type BalanceSheetReport struct {
	Params      Params
	ClosingDate time.Time
	Assets      []AssetLine
	Actif       Actif
	Passif      Passif
	Truncated   bool
}

// Balanced reports whether both sides agree. It always holds for reports
// built by BalanceSheet.
func (r BalanceSheetReport) Balanced() bool {
	return r.Actif.Total.Equal(r.Passif.Total)
}

// BalanceSheet values the assets at the closing date and lists tenant
// deposits held as a liability. Equity is whatever balances the two sides.
func (e *Engine) BalanceSheet(p Params, entries []model.JournalEntry, assets []model.Asset) (BalanceSheetReport, error) {
	closing, err := p.ClosingDate()
	if err != nil {
		return BalanceSheetReport{}, err
	}
	_, end, _ := p.Period()

	selectedAssets, assetsTruncated := e.selectAssets(p, assets, end)
	// Deposits are a stock: every deposit received up to the closing date counts.
	selectedEntries, entriesTruncated := e.selectEntries(p, entries, time.Time{}, end)

	r := BalanceSheetReport{
		Params:      p,
		ClosingDate: closing,
		Truncated:   assetsTruncated || entriesTruncated,
	}

	gross, depreciation := decimal.Zero, decimal.Zero
	for _, a := range selectedAssets {
		rows, err := amortization.ComputeLinear(a.AmountHT, a.DurationYears, a.AcquisitionDate)
		if err != nil {
			return BalanceSheetReport{}, fmt.Errorf("asset %s: %w", a.ID, err)
		}
		cumul := amortization.StateAt(rows, closing.Year()).Cumul
		value := money.Round2(a.AmountHT)
		r.Assets = append(r.Assets, AssetLine{
			AssetID:      a.ID,
			Label:        a.Label,
			AccountCode:  a.AccountCode,
			Gross:        value,
			Depreciation: cumul,
			Net:          value.Sub(cumul),
		})
		gross = gross.Add(value)
		depreciation = depreciation.Add(cumul)
	}

	deposits := decimal.Zero
	for _, en := range selectedEntries {
		if en.Type == model.EntryTypeSale && en.IsDeposit {
			deposits = deposits.Add(en.Amount)
		}
	}

	r.Actif.ImmobilisationsBrutes = money.Round2(gross)
	r.Actif.Amortissements = money.Round2(depreciation)
	r.Actif.ImmobilisationsNettes = r.Actif.ImmobilisationsBrutes.Sub(r.Actif.Amortissements)
	r.Actif.Tresorerie = decimal.Zero
	r.Actif.Total = r.Actif.ImmobilisationsNettes.Add(r.Actif.Tresorerie)

	r.Passif.DepotsGarantie = money.Round2(deposits)
	r.Passif.CapitauxPropres = r.Actif.Total.Sub(r.Passif.DepotsGarantie)
	r.Passif.Total = r.Passif.CapitauxPropres.Add(r.Passif.DepotsGarantie)

	return r, nil
}
