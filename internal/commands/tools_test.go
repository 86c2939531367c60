package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locatio-dev/locatio/internal/vat"
)

func TestVAT(t *testing.T) {
	out, err := runLocatio(t, "vat", "ht", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "TVA  20,00")
	assert.Contains(t, out, "TTC  120,00")

	out, err = runLocatio(t, "vat", "ttc", "110", "--rate", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "HT   100,00")

	out, err = runLocatio(t, "vat", "check", "--ht", "100", "--ttc", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "OK")

	_, err = runLocatio(t, "vat", "check", "--ht", "100", "--ttc", "125")
	assert.ErrorIs(t, err, vat.ErrInconsistent)

	_, err = runLocatio(t, "vat", "check", "--rate", "150", "--ht", "100")
	assert.ErrorIs(t, err, vat.ErrRateOutOfRange)

	for _, args := range [][]string{
		{"vat", "ttc", "120", "--rate=-100"},
		{"vat", "ht", "100", "--rate=-100"},
		{"vat", "ttc", "120", "--rate", "150"},
	} {
		_, err = runLocatio(t, args...)
		assert.ErrorIs(t, err, vat.ErrRateOutOfRange, "%v", args)
	}
}

func TestCatalogSearch(t *testing.T) {
	out, err := runLocatio(t, "catalog", "search", "assurance")
	require.NoError(t, err)
	assert.Contains(t, out, "616")
	assert.NotContains(t, out, "706")

	out, err = runLocatio(t, "catalog", "search", "--type", "sale", "loyer")
	require.NoError(t, err)
	assert.Contains(t, out, "706")

	out, err = runLocatio(t, "catalog", "search", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, "No purchase account")

	_, err = runLocatio(t, "catalog", "search", "--type", "gift")
	assert.Error(t, err)
}
