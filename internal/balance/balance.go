// Package balance aggregates journal rows into per-account debit/credit totals.
package balance

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/locatio-dev/locatio/internal/model"
	"github.com/locatio-dev/locatio/internal/money"
)

// Row is a journal row as read from storage. Amount is kept as text so
// malformed values can be skipped instead of failing the whole batch.
type Row struct {
	AccountCode string
	Type        model.EntryType
	Amount      string
}

// AccountBalance is the aggregate of one account code.
type AccountBalance struct {
	AccountCode string
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Balance     decimal.Decimal // TotalDebit - TotalCredit
}

// Aggregate sums purchases as debit and sales as credit per account code.
// Rows whose amount does not parse are skipped. The result is sorted by
// account code and does not depend on input order.
func Aggregate(rows []Row) []AccountBalance {
	type totals struct{ debit, credit decimal.Decimal }
	byCode := make(map[string]*totals)

	for _, r := range rows {
		amount, err := money.Parse(r.Amount)
		if err != nil {
			continue
		}
		t, ok := byCode[r.AccountCode]
		if !ok {
			t = &totals{debit: decimal.Zero, credit: decimal.Zero}
			byCode[r.AccountCode] = t
		}
		switch r.Type {
		case model.EntryTypePurchase:
			t.debit = t.debit.Add(amount)
		case model.EntryTypeSale:
			t.credit = t.credit.Add(amount)
		}
	}

	out := make([]AccountBalance, 0, len(byCode))
	for code, t := range byCode {
		debit := money.Round2(t.debit)
		credit := money.Round2(t.credit)
		out = append(out, AccountBalance{
			AccountCode: code,
			TotalDebit:  debit,
			TotalCredit: credit,
			Balance:     money.Round2(debit.Sub(credit)),
		})
	}
	slices.SortFunc(out, func(a, b AccountBalance) int {
		return strings.Compare(a.AccountCode, b.AccountCode)
	})
	return out
}

// FromEntries converts journal entries into aggregation rows.
func FromEntries(entries []model.JournalEntry) []Row {
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = Row{AccountCode: e.AccountCode, Type: e.Type, Amount: e.Amount.String()}
	}
	return rows
}

// Totals sums the debit and credit columns of an aggregate.
func Totals(balances []AccountBalance) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, b := range balances {
		debit = debit.Add(b.TotalDebit)
		credit = credit.Add(b.TotalCredit)
	}
	return money.Round2(debit), money.Round2(credit)
}
