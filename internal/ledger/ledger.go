// Package ledger turns an account's debit/credit lines into running balances.
package ledger

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/locatio-dev/locatio/internal/model"
)

// Entry is one line of an account, before balancing.
type Entry struct {
	Date        time.Time
	AccountCode string
	Designation string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// Line is an Entry with the running balance after it.
type Line struct {
	Entry
	Balance decimal.Decimal
}

// Compute adds a running debit-minus-credit balance to lines, in the order
// given. Callers pass a single account's lines already sorted by date.
func Compute(lines []Entry) []Line {
	out := make([]Line, len(lines))
	balance := decimal.Zero
	for i, l := range lines {
		balance = balance.Add(l.Debit).Sub(l.Credit)
		out[i] = Line{Entry: l, Balance: balance}
	}
	return out
}

// FromEntries maps journal entries onto ledger lines: purchases debit,
// sales credit.
func FromEntries(entries []model.JournalEntry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{
			Date:        e.Date,
			AccountCode: e.AccountCode,
			Designation: e.Designation,
			Debit:       e.Debit(),
			Credit:      e.Credit(),
		}
	}
	return out
}

// Account is the balanced ledger of one account code.
type Account struct {
	Code  string
	Lines []Line
}

// Balance is the closing balance, zero for an empty account.
func (a Account) Balance() decimal.Decimal {
	if len(a.Lines) == 0 {
		return decimal.Zero
	}
	return a.Lines[len(a.Lines)-1].Balance
}

// ByAccount groups entries per account code, sorts each group by date
// (insertion order breaks ties) and balances it. Accounts come back in code
// order.
func ByAccount(entries []model.JournalEntry) []Account {
	groups := make(map[string][]Entry)
	for _, e := range FromEntries(entries) {
		groups[e.AccountCode] = append(groups[e.AccountCode], e)
	}

	codes := make([]string, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	slices.SortFunc(codes, strings.Compare)

	accounts := make([]Account, 0, len(codes))
	for _, code := range codes {
		lines := groups[code]
		slices.SortStableFunc(lines, func(a, b Entry) int {
			return a.Date.Compare(b.Date)
		})
		accounts = append(accounts, Account{Code: code, Lines: Compute(lines)})
	}
	return accounts
}
