// Package income computes the yearly income statement of a rental activity.
package income

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/locatio-dev/locatio/internal/model"
	"github.com/locatio-dev/locatio/internal/money"
)

// AmortizationPrefix marks purchase accounts booked as depreciation charges.
const AmortizationPrefix = "6811"

// Totals is the income statement of one fiscal year.
type Totals struct {
	Revenus        decimal.Decimal
	Depenses       decimal.Decimal
	Amortissements decimal.Decimal
	Resultat       decimal.Decimal
	Count          int // entries dated within the year
}

// ComputeFromEntries builds the income statement of a calendar year.
// Deposits never count as revenue; purchases on depreciation accounts are
// reported apart from other expenses.
func ComputeFromEntries(entries []model.JournalEntry, year int) Totals {
	revenus, depenses, amort := decimal.Zero, decimal.Zero, decimal.Zero
	count := 0

	for _, e := range entries {
		if e.Date.Year() != year {
			continue
		}
		count++
		if e.Amount.IsZero() {
			continue
		}
		switch e.Type {
		case model.EntryTypeSale:
			if !e.IsDeposit {
				revenus = revenus.Add(e.Amount)
			}
		case model.EntryTypePurchase:
			if strings.HasPrefix(e.AccountCode, AmortizationPrefix) {
				amort = amort.Add(e.Amount)
			} else {
				depenses = depenses.Add(e.Amount)
			}
		}
	}

	t := Totals{
		Revenus:        money.Round2(revenus),
		Depenses:       money.Round2(depenses),
		Amortissements: money.Round2(amort),
		Count:          count,
	}
	t.Resultat = money.Round2(t.Revenus.Sub(t.Depenses).Sub(t.Amortissements))
	return t
}
