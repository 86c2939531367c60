package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locatio-dev/locatio/internal/config"
	"github.com/locatio-dev/locatio/internal/journal"
	"github.com/locatio-dev/locatio/internal/vat"
)

func addEntry(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := runLocatio(t, append([]string{"--repo", dir, "entry", "add"}, args...)...)
	require.NoError(t, err, out)
	return out
}

func TestEntryAdd_GuessesAccount(t *testing.T) {
	dir := initProject(t)

	out := addEntry(t, dir, "--type", "purchase", "--date", "15/01/2025", "--amount", "120,00", "--designation", "Assurance PNO")
	assert.Contains(t, out, "Added 2025-01-001 purchase")
	assert.Contains(t, out, "on 616")
	assert.Contains(t, out, "account guessed")

	e, err := journal.NewService(dir, nil).Get("2025-01-001")
	require.NoError(t, err)
	assert.Equal(t, "616", e.AccountCode)
	assert.Equal(t, "u1", e.UserID)
	assert.Equal(t, "120.00", e.Amount.StringFixed(2))
}

func TestEntryAdd_SequentialIDs(t *testing.T) {
	dir := initProject(t)

	addEntry(t, dir, "--type", "sale", "--date", "2025-02-01", "--amount", "850", "--designation", "Loyer février")
	out := addEntry(t, dir, "--type", "sale", "--date", "2025-02-03", "--amount", "1700", "--deposit", "--designation", "Dépôt de garantie")
	assert.Contains(t, out, "Added 2025-02-002 sale")
	assert.Contains(t, out, "on 165")
}

func TestEntryAdd_RejectsAccountOfWrongType(t *testing.T) {
	dir := initProject(t)

	_, err := runLocatio(t, "--repo", dir, "entry", "add", "--type", "sale", "--date", "2025-01-05", "--amount", "100", "--code", "616")
	require.Error(t, err)

	entries, err := journal.NewService(dir, nil).ReadYear(2025)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEntryAdd_RejectsBadInput(t *testing.T) {
	dir := initProject(t)

	cases := [][]string{
		{"--type", "refund", "--date", "2025-01-05", "--amount", "10"},
		{"--type", "sale", "--date", "2025-13-05", "--amount", "10"},
		{"--type", "sale", "--date", "2025-01-05", "--amount", "dix"},
		{"--type", "purchase", "--date", "2025-01-05", "--amount=-10"},
	}
	for _, args := range cases {
		_, err := runLocatio(t, append([]string{"--repo", dir, "entry", "add"}, args...)...)
		assert.Error(t, err, "%v", args)
	}
}

func TestEntryAdd_VAT(t *testing.T) {
	dir := initProject(t)
	updateConfig(t, dir, func(cfg *config.Config) { cfg.VAT.Enabled = true })

	addEntry(t, dir, "--type", "purchase", "--date", "2025-03-01", "--amount", "120", "--ht", "100", "--designation", "Plombier")

	_, err := runLocatio(t, "--repo", dir, "entry", "add", "--type", "purchase", "--date", "2025-03-02", "--amount", "130", "--ht", "100")
	require.Error(t, err)
	assert.ErrorIs(t, err, vat.ErrInconsistent)

	// Disabled VAT accepts any breakdown.
	updateConfig(t, dir, func(cfg *config.Config) { cfg.VAT.Enabled = false })
	addEntry(t, dir, "--type", "purchase", "--date", "2025-03-02", "--amount", "130", "--ht", "100")
}

func TestEntryList(t *testing.T) {
	dir := initProject(t)
	addEntry(t, dir, "--type", "purchase", "--date", "2025-01-15", "--amount", "120", "--designation", "Assurance PNO")
	addEntry(t, dir, "--type", "sale", "--date", "2025-02-01", "--amount", "850", "--designation", "Loyer", "--counterparty", "M. Martin")

	out, err := runLocatio(t, "--repo", dir, "entry", "list", "--year", "2025", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-01-001;2025-01-15;purchase;616;Assurance PNO;;120.00;")
	assert.Contains(t, out, "2025-02-001;2025-02-01;sale;706;Loyer;M. Martin;850.00;")

	out, err = runLocatio(t, "--repo", dir, "entry", "list", "--year", "2025", "--month", "2", "--format", "csv")
	require.NoError(t, err)
	assert.NotContains(t, out, "2025-01-001")

	out, err = runLocatio(t, "--repo", dir, "entry", "list", "--year", "2025", "-q", "martin", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-02-001")
	assert.NotContains(t, out, "2025-01-001")
}

func TestEntryList_OtherUserHidden(t *testing.T) {
	dir := initProject(t)
	addEntry(t, dir, "--type", "sale", "--date", "2025-02-01", "--amount", "850", "--designation", "Loyer")

	out, err := runLocatio(t, "--repo", dir, "--user", "someone-else", "entry", "list", "--year", "2025", "--format", "csv")
	require.NoError(t, err)
	assert.NotContains(t, out, "2025-02-001")
}

func TestEntryReassignAndHistory(t *testing.T) {
	dir := initProject(t)
	addEntry(t, dir, "--type", "purchase", "--date", "2025-01-15", "--amount", "120", "--designation", "Assurance PNO")

	out, err := runLocatio(t, "--repo", dir, "entry", "reassign", "2025-01-001", "627", "--reason", "frais bancaires")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-01-001: 616 -> 627")

	e, err := journal.NewService(dir, nil).Get("2025-01-001")
	require.NoError(t, err)
	assert.Equal(t, "627", e.AccountCode)

	out, err = runLocatio(t, "--repo", dir, "entry", "history", "2025-01-001")
	require.NoError(t, err)
	assert.Contains(t, out, "reassign")
	assert.Contains(t, out, "616 -> 627")
	assert.Contains(t, out, "frais bancaires")

	out, err = runLocatio(t, "--repo", dir, "entry", "history", "2025-01-002")
	require.NoError(t, err)
	assert.Contains(t, out, "No history")
}

func TestEntryReassign_Errors(t *testing.T) {
	dir := initProject(t)
	addEntry(t, dir, "--type", "purchase", "--date", "2025-01-15", "--amount", "120")

	_, err := runLocatio(t, "--repo", dir, "entry", "reassign", "2025-01-009", "627")
	assert.ErrorIs(t, err, journal.ErrEntryNotFound)

	_, err = runLocatio(t, "--repo", dir, "entry", "reassign", "2025-01-001", "706")
	assert.Error(t, err, "706 is a sale account")
}
