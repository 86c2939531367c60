package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locatio-dev/locatio/internal/assets"
	"github.com/locatio-dev/locatio/internal/config"
	"github.com/locatio-dev/locatio/internal/export"
)

// bookedProject returns a project with one asset and three 2025 entries.
func bookedProject(t *testing.T) string {
	t.Helper()
	dir := initProject(t)

	out, err := runLocatio(t, "--repo", dir, "asset", "add",
		"--label", "Cuisine équipée", "--amount", "10000", "--duration", "5", "--date", "2024-07-01")
	require.NoError(t, err, out)

	addEntry(t, dir, "--type", "sale", "--date", "2025-01-05", "--amount", "850", "--designation", "Loyer janvier")
	addEntry(t, dir, "--type", "sale", "--date", "2025-01-06", "--amount", "1700", "--deposit", "--designation", "Dépôt de garantie")
	addEntry(t, dir, "--type", "purchase", "--date", "2025-01-20", "--amount", "120", "--designation", "Assurance PNO")
	return dir
}

func TestAssetCommands(t *testing.T) {
	dir := bookedProject(t)

	store, err := assets.Open(dir)
	require.NoError(t, err)
	all := store.All()
	require.Len(t, all, 1)
	assert.Equal(t, assets.DefaultAccountCode, all[0].AccountCode)
	assert.Equal(t, "u1", all[0].UserID)

	out, err := runLocatio(t, "--repo", dir, "asset", "list", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, all[0].ID+";Cuisine équipée;2184;2024-07-01;5;10000.00")

	out, err = runLocatio(t, "--repo", dir, "asset", "schedule", all[0].ID, "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "2024;1005.46;1005.46;8994.54")
	assert.Contains(t, out, "2025;2000.00;3005.46;6994.54")

	_, err = runLocatio(t, "--repo", dir, "asset", "schedule", "missing")
	assert.ErrorIs(t, err, assets.ErrNotFound)

	_, err = runLocatio(t, "--repo", dir, "asset", "add", "--label", "Rien", "--amount", "100", "--duration", "0", "--date", "2025-01-01")
	assert.Error(t, err)
}

func TestBalanceLedgerIncome(t *testing.T) {
	dir := bookedProject(t)

	out, err := runLocatio(t, "--repo", dir, "balance", "--year", "2025", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "706;0.00;850.00;-850.00")
	assert.Contains(t, out, "616;120.00;0.00;120.00")
	assert.Contains(t, out, "Total;120.00;2550.00;-2430.00")

	out, err = runLocatio(t, "--repo", dir, "ledger", "--year", "2025", "--account", "61", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Assurance PNO")
	assert.NotContains(t, out, "Loyer janvier")

	out, err = runLocatio(t, "--repo", dir, "income", "--year", "2025", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Revenus;850.00")
	assert.Contains(t, out, "Dépenses;120.00")
	assert.Contains(t, out, "Résultat;730.00")
}

func TestReportDepreciation(t *testing.T) {
	dir := bookedProject(t)

	out, err := runLocatio(t, "--repo", dir, "report", "immobilisations", "--year", "2025", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Cuisine équipée;2184;2024-07-01;5;10000.00;1005.46;2000.00;3005.46;6994.54")
	assert.Contains(t, out, "Total;;;;10000.00;1005.46;2000.00;3005.46;6994.54")
}

func TestReportBilan_XLSXDefaultsToExports(t *testing.T) {
	dir := bookedProject(t)

	out, err := runLocatio(t, "--repo", dir, "report", "bilan", "--year", "2025", "--format", "xlsx")
	require.NoError(t, err)

	path := filepath.Join(dir, "exports", "bilan-2025.xlsx")
	assert.Contains(t, out, "Wrote "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "PK"), "xlsx is a zip archive")
}

func TestReportResultat_PDF(t *testing.T) {
	dir := bookedProject(t)
	path := filepath.Join(t.TempDir(), "resultat.pdf")

	_, err := runLocatio(t, "--repo", dir, "report", "resultat", "--year", "2025", "--format", "pdf", "--out", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestReportResultat_CSV(t *testing.T) {
	dir := bookedProject(t)

	out, err := runLocatio(t, "--repo", dir, "report", "resultat", "--year", "2025", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "706")
	assert.Contains(t, out, "616")
	assert.NotContains(t, out, export.TruncatedNote)
}

func TestReport_Truncated(t *testing.T) {
	dir := bookedProject(t)
	t.Setenv(config.EnvMaxRows, "1")

	out, err := runLocatio(t, "--repo", dir, "report", "resultat", "--year", "2025", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, export.TruncatedNote)
	assert.Contains(t, out, "report truncated")
}

func TestReport_InvalidPeriod(t *testing.T) {
	dir := bookedProject(t)

	_, err := runLocatio(t, "--repo", dir, "report", "bilan", "--from", "2025-12-31", "--to", "2025-01-01")
	assert.Error(t, err)

	_, err = runLocatio(t, "--repo", dir, "report", "bilan", "--year", "2025", "--format", "docx")
	assert.ErrorIs(t, err, export.ErrUnknownFormat)
}

func TestReport_OtherUserSeesNothing(t *testing.T) {
	dir := bookedProject(t)

	out, err := runLocatio(t, "--repo", dir, "--user", "u2", "report", "immobilisations", "--year", "2025", "--format", "csv")
	require.NoError(t, err)
	assert.NotContains(t, out, "Cuisine")
	assert.Contains(t, out, "Total;;;;0.00;0.00;0.00;0.00;0.00")
}
