package assets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locatio-dev/locatio/internal/amortization"
	"github.com/locatio-dev/locatio/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestRoundTrip(t *testing.T) {
	in := []model.Asset{{
		ID: "a1", UserID: "u1", Label: "Cuisine, équipée", AmountHT: dec("6000"),
		DurationYears: 10, AcquisitionDate: date(2025, 3, 1), AccountCode: "2135",
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteAssets(&buf, in))
	assert.Contains(t, buf.String(), "\"Cuisine, équipée\",6000.00,10,2025-03-01,2135")

	got, err := ReadAssets(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cuisine, équipée", got[0].Label)
	assert.True(t, got[0].AmountHT.Equal(dec("6000")))
	assert.Equal(t, 10, got[0].DurationYears)
	assert.True(t, got[0].AcquisitionDate.Equal(date(2025, 3, 1)))
}

func TestUnmarshalAssetErrors(t *testing.T) {
	_, err := UnmarshalAsset([]string{"a"})
	assert.ErrorContains(t, err, "expected 7 fields")
	_, err = UnmarshalAsset([]string{"a", "u", "l", "x", "5", "2025-01-01", ""})
	assert.ErrorContains(t, err, "amount_ht")
	_, err = UnmarshalAsset([]string{"a", "u", "l", "10", "cinq", "2025-01-01", ""})
	assert.ErrorContains(t, err, "duration_years")
	_, err = UnmarshalAsset([]string{"a", "u", "l", "10", "5", "01/01/2025", ""})
	assert.ErrorContains(t, err, "acquisition_date")
}

func TestStore(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	assert.Empty(t, s.All())

	late, err := s.Add(AddParams{UserID: "u1", Label: "Canapé", AmountHT: dec("900"), DurationYears: 5, AcquisitionDate: date(2025, 9, 1)})
	require.NoError(t, err)
	assert.Equal(t, DefaultAccountCode, late.AccountCode)
	assert.Len(t, late.ID, 36)

	early, err := s.Add(AddParams{UserID: "u1", Label: " Cuisine ", AmountHT: dec("6000"), DurationYears: 10, AcquisitionDate: date(2025, 3, 1), AccountCode: "2135"})
	require.NoError(t, err)
	assert.Equal(t, "Cuisine", early.Label)

	_, err = os.Stat(filepath.Join(dir, "assets.csv"))
	require.NoError(t, err)

	reopened, err := Open(dir)
	require.NoError(t, err)
	all := reopened.All()
	require.Len(t, all, 2)
	assert.Equal(t, early.ID, all[0].ID, "acquisition order")

	got, err := reopened.Get(late.ID)
	require.NoError(t, err)
	assert.Equal(t, "Canapé", got.Label)
	_, err = reopened.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreAddValidation(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = s.Add(AddParams{Label: "", AmountHT: dec("1"), DurationYears: 1, AcquisitionDate: date(2025, 1, 1)})
	assert.ErrorIs(t, err, ErrEmptyLabel)

	_, err = s.Add(AddParams{Label: "x", AmountHT: dec("1"), DurationYears: 0, AcquisitionDate: date(2025, 1, 1)})
	assert.ErrorIs(t, err, ErrInvalidAsset)
	assert.ErrorIs(t, err, amortization.ErrInvalidDuration)

	_, err = s.Add(AddParams{Label: "x", AmountHT: dec("1"), DurationYears: 1_000_000_000, AcquisitionDate: date(2025, 1, 1)})
	assert.ErrorIs(t, err, amortization.ErrInvalidDuration)

	_, err = s.Add(AddParams{Label: "x", AmountHT: dec("1"), DurationYears: amortization.MaxDurationYears + 1, AcquisitionDate: date(2025, 1, 1)})
	assert.ErrorIs(t, err, amortization.ErrInvalidDuration)

	_, err = s.Add(AddParams{Label: "x", AmountHT: dec("-1"), DurationYears: 2, AcquisitionDate: date(2025, 1, 1)})
	assert.ErrorIs(t, err, amortization.ErrNegativeAmount)

	_, err = s.Add(AddParams{Label: "x", AmountHT: dec("1"), DurationYears: 2})
	assert.ErrorIs(t, err, ErrInvalidAsset)

	assert.Empty(t, s.All())
}
