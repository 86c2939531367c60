package guess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locatio-dev/locatio/internal/catalog"
	"github.com/locatio-dev/locatio/internal/model"
)

func purchase(designation string) Input {
	return Input{Type: model.EntryTypePurchase, Designation: designation}
}

func TestAccountCode_Sales(t *testing.T) {
	g := AccountCode(Input{Type: model.EntryTypeSale, IsDeposit: true, Designation: "assurance loyer"})
	assert.Equal(t, DepositCode, g.Code, "deposit wins regardless of designation")

	g = AccountCode(Input{Type: model.EntryTypeSale, Designation: "Loyer mars"})
	assert.Equal(t, DefaultSaleCode, g.Code)
}

func TestAccountCode_Purchases(t *testing.T) {
	tests := []struct {
		designation string
		want        string
	}{
		{"Assurance PNO 2025", "616"},
		{"Prélèvement AXA habitation", "616"},
		{"Frais bancaires trimestre", "627"},
		{"Commission Stripe", "627"},
		{"Plombier - fuite salle de bain", "615"},
		{"Réparation chaudière", "615"},
		{"IKEA lit + matelas", "6063"},
		{"Achat électroménager", "6063"},
		{"Taxe foncière 2025", "63512"},
		{"Courses diverses", DefaultPurchaseCode},
		{"", DefaultPurchaseCode},
	}
	for _, tt := range tests {
		g := AccountCode(purchase(tt.designation))
		assert.Equal(t, tt.want, g.Code, "designation %q", tt.designation)
		assert.NotEmpty(t, g.Reason)
	}
}

func TestAccountCode_Priority(t *testing.T) {
	// Insurance outranks maintenance when both keywords appear.
	g := AccountCode(purchase("Remboursement assurance travaux"))
	assert.Equal(t, "616", g.Code)

	// Banking outranks supplies.
	g = AccountCode(purchase("Commission paypal achat fourniture"))
	assert.Equal(t, "627", g.Code)
}

func TestRules_EachRuleReachable(t *testing.T) {
	rules := Rules()
	require.Len(t, rules, 5)
	for _, r := range rules {
		g := AccountCode(purchase(r.Keywords[0]))
		assert.Equal(t, r.Code, g.Code, "rule %q", r.Name)
	}
}

func TestRules_CodesExistInCatalog(t *testing.T) {
	c := catalog.MustDefault()
	for _, r := range Rules() {
		assert.True(t, c.IsAllowed(r.Code, model.EntryTypePurchase), "rule %q code %s", r.Name, r.Code)
	}
	assert.True(t, c.IsAllowed(DefaultPurchaseCode, model.EntryTypePurchase))
	assert.True(t, c.IsAllowed(DefaultSaleCode, model.EntryTypeSale))
	assert.True(t, c.IsAllowed(DepositCode, model.EntryTypeSale))
}

func TestBackfill(t *testing.T) {
	entries := []model.JournalEntry{
		{ID: "2025-01-001", Type: model.EntryTypePurchase, Designation: "Assurance GLI"},
		{ID: "2025-01-002", Type: model.EntryTypeSale, Designation: "Loyer", AccountCode: "7083"},
		{ID: "2025-01-003", Type: model.EntryTypeSale, IsDeposit: true, Designation: "Caution"},
	}

	got, changes := Backfill(entries)
	require.Len(t, got, 3)
	require.Len(t, changes, 2)

	assert.Equal(t, "616", got[0].AccountCode)
	assert.Equal(t, "7083", got[1].AccountCode, "existing code kept")
	assert.Equal(t, DepositCode, got[2].AccountCode)

	assert.Equal(t, "2025-01-001", changes[0].EntryID)
	assert.Equal(t, "616", changes[0].NewCode)
	assert.Equal(t, "2025-01-003", changes[1].EntryID)

	assert.Empty(t, entries[0].AccountCode, "input is not mutated")
}
