package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locatio-dev/locatio/internal/catalog"
	"github.com/locatio-dev/locatio/internal/model"
)

func validEntry(seq string) model.JournalEntry {
	return model.JournalEntry{
		ID:          "2025-01-" + seq,
		Date:        date(2025, 1, 15),
		Type:        model.EntryTypePurchase,
		AccountCode: "615",
		Amount:      dec("120.00"),
		Currency:    "EUR",
	}
}

func invariants(errs []ValidationError) []int {
	var out []int
	for _, e := range errs {
		out = append(out, e.Invariant)
	}
	return out
}

func TestValidateEntries_Valid(t *testing.T) {
	entries := []model.JournalEntry{validEntry("001"), validEntry("002")}
	entries[1].AccountCode = ""
	assert.Empty(t, ValidateEntries(entries, catalog.MustDefault(), 2025, 1))
}

func TestValidateEntries_Invariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.JournalEntry)
		want   int
	}{
		{"type", func(e *model.JournalEntry) { e.Type = "refund" }, 1},
		{"zero amount", func(e *model.JournalEntry) { e.Amount = dec("0") }, 2},
		{"negative amount", func(e *model.JournalEntry) { e.Amount = dec("-5") }, 2},
		{"three decimals", func(e *model.JournalEntry) { e.Amount = dec("1.005") }, 2},
		{"account for wrong side", func(e *model.JournalEntry) { e.AccountCode = "706" }, 3},
		{"unknown account", func(e *model.JournalEntry) { e.AccountCode = "999" }, 3},
		{"date outside month", func(e *model.JournalEntry) { e.Date = date(2025, 2, 1) }, 4},
		{"deposit on purchase", func(e *model.JournalEntry) { e.IsDeposit = true }, 6},
		{"currency", func(e *model.JournalEntry) { e.Currency = "USD" }, 7},
		{"bad id", func(e *model.JournalEntry) { e.ID = "x" }, 5},
		{"id of another month", func(e *model.JournalEntry) { e.ID = "2025-02-001" }, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry("001")
			tt.mutate(&e)
			errs := ValidateEntries([]model.JournalEntry{e}, catalog.MustDefault(), 2025, 1)
			require.NotEmpty(t, errs)
			assert.Contains(t, invariants(errs), tt.want)
		})
	}
}

func TestValidateEntries_Sequence(t *testing.T) {
	errs := ValidateEntries([]model.JournalEntry{validEntry("001"), validEntry("003")}, nil, 2025, 1)
	require.Len(t, errs, 1)
	assert.Equal(t, 5, errs[0].Invariant)
	assert.Contains(t, errs[0].Description, "missing sequence 2")

	errs = ValidateEntries([]model.JournalEntry{validEntry("001"), validEntry("001")}, nil, 2025, 1)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Description, "duplicate")
}

func TestValidateEntries_NilChecker(t *testing.T) {
	e := validEntry("001")
	e.AccountCode = "6152"
	assert.Empty(t, ValidateEntries([]model.JournalEntry{e}, nil, 2025, 1))
}

func TestCheckerFunc(t *testing.T) {
	var c AccountChecker = CheckerFunc(func(code string, _ model.EntryType) bool { return code == "6152" })
	e := validEntry("001")
	e.AccountCode = "6152"
	assert.Empty(t, ValidateEntries([]model.JournalEntry{e}, c, 2025, 1))
}

func TestValidationErrorMessage(t *testing.T) {
	ve := ValidationError{Invariant: 4, EntryID: "2025-01-001", Description: "date 2025-02-01 not in 2025-01"}
	assert.Equal(t, "invariant 4 [2025-01-001]: date 2025-02-01 not in 2025-01", ve.Error())
}
