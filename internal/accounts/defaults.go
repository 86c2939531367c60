package accounts

import (
	"strings"

	"github.com/locatio-dev/locatio/internal/catalog"
	"github.com/locatio-dev/locatio/internal/model"
)

// extraGlobals are balance-sheet accounts the tax catalog does not list.
var extraGlobals = []struct{ code, label string }{
	{"2135", "Installations générales, agencements"},
	{"2184", "Mobilier"},
	{"512", "Banque"},
}

// DefaultChart returns the global accounts: every catalog account plus the
// fixed-asset and bank accounts. Global accounts are never editable.
func DefaultChart(c *catalog.Catalog) []model.LedgerAccount {
	var chart []model.LedgerAccount
	for _, a := range c.All() {
		chart = append(chart, globalAccount(a.Code, a.Label))
	}
	for _, e := range extraGlobals {
		if _, ok := c.Get(e.code); ok {
			continue
		}
		chart = append(chart, globalAccount(e.code, e.label))
	}
	return chart
}

func globalAccount(code, label string) model.LedgerAccount {
	return model.LedgerAccount{
		ID:    "global-" + code,
		Code:  code,
		Label: label,
		Kind:  KindForCode(code),
	}
}

// KindForCode derives the account kind from the French chart class.
func KindForCode(code string) model.AccountKind {
	switch {
	case strings.HasPrefix(code, "63"), strings.HasPrefix(code, "445"):
		return model.AccountKindTax
	case strings.HasPrefix(code, "6"):
		return model.AccountKindExpense
	case strings.HasPrefix(code, "7"):
		return model.AccountKindRevenue
	case strings.HasPrefix(code, "2"):
		return model.AccountKindAsset
	case strings.HasPrefix(code, "5"):
		return model.AccountKindTreasury
	default:
		return model.AccountKindLiability
	}
}
