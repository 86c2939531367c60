package journal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/locatio-dev/locatio/internal/id"
	"github.com/locatio-dev/locatio/internal/model"
)

// Currency is the only currency journals accept.
const Currency = "EUR"

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	EntryID     string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.EntryID, e.Description)
}

// AccountChecker tests whether an account code may be used for an entry type.
type AccountChecker interface {
	IsAllowed(code string, t model.EntryType) bool
}

// CheckerFunc adapts a function to AccountChecker.
type CheckerFunc func(code string, t model.EntryType) bool

// IsAllowed calls f.
func (f CheckerFunc) IsAllowed(code string, t model.EntryType) bool { return f(code, t) }

// ValidateEntries enforces the journal invariants on the entries of one
// month file. A nil checker skips the account check. Entries without an
// account code are accepted; backfill assigns one later.
func ValidateEntries(entries []model.JournalEntry, accounts AccountChecker, year, month int) []ValidationError {
	var errs []ValidationError
	add := func(inv int, entryID, format string, args ...any) {
		errs = append(errs, ValidationError{Invariant: inv, EntryID: entryID, Description: fmt.Sprintf(format, args...)})
	}

	hundred := decimal.NewFromInt(100)
	for _, e := range entries {
		// Invariant 1: known side.
		if !e.Type.Valid() {
			add(1, e.ID, "type %q is neither purchase nor sale", e.Type)
		}

		// Invariant 2: strictly positive amount with at most 2 decimals.
		if !e.Amount.IsPositive() {
			add(2, e.ID, "amount %s must be positive", e.Amount.StringFixed(2))
		} else if scaled := e.Amount.Mul(hundred); !scaled.Equal(scaled.Floor()) {
			add(2, e.ID, "amount %s has more than 2 decimal places", e.Amount)
		}

		// Invariant 3: valid account references.
		if accounts != nil && e.AccountCode != "" && e.Type.Valid() && !accounts.IsAllowed(e.AccountCode, e.Type) {
			add(3, e.ID, "account %s not allowed for %s", e.AccountCode, e.Type)
		}

		// Invariant 4: date within month.
		if e.Date.Year() != year || int(e.Date.Month()) != month {
			add(4, e.ID, "date %s not in %04d-%02d", e.Date.Format(dateFormat), year, month)
		}

		// Invariant 6: deposits are received, never paid out.
		if e.IsDeposit && e.Type != model.EntryTypeSale {
			add(6, e.ID, "deposit flag set on a %s", e.Type)
		}

		// Invariant 7: single currency.
		if e.Currency != "" && e.Currency != Currency {
			add(7, e.ID, "currency %s not supported", e.Currency)
		}
	}

	// Invariant 5: unique sequential IDs, contiguous 1..N.
	seen := make(map[int]string)
	for _, e := range entries {
		y, m, seq, err := id.ParseEntryID(e.ID)
		if err != nil {
			add(5, e.ID, "invalid entry ID: %v", err)
			continue
		}
		if y != year || m != month {
			add(5, e.ID, "entry ID not in %04d-%02d", year, month)
			continue
		}
		if _, dup := seen[seq]; dup {
			add(5, e.ID, "duplicate entry ID")
			continue
		}
		seen[seq] = e.ID
	}
	for i := 1; i <= len(seen); i++ {
		if _, ok := seen[i]; !ok {
			add(5, fmt.Sprintf("seq %d", i), "missing sequence %d in 1..%d", i, len(seen))
		}
	}

	return errs
}
