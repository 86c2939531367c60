package model

// AccountKind classifies ledger accounts.
type AccountKind string

const (
	AccountKindRevenue   AccountKind = "REVENUE"
	AccountKindExpense   AccountKind = "EXPENSE"
	AccountKindAsset     AccountKind = "ASSET"
	AccountKindLiability AccountKind = "LIABILITY"
	AccountKindTreasury  AccountKind = "TREASURY"
	AccountKindTax       AccountKind = "TAX"
)

// Valid reports whether k is a known account kind.
func (k AccountKind) Valid() bool {
	switch k {
	case AccountKindRevenue, AccountKindExpense, AccountKindAsset,
		AccountKindLiability, AccountKindTreasury, AccountKindTax:
		return true
	}
	return false
}

// LedgerAccount represents a row in accounts/ledger-accounts.csv.
//
// A nil PropertyID marks a global account shared by every property.
type LedgerAccount struct {
	ID         string
	Code       string
	Label      string
	Kind       AccountKind
	PropertyID *string
	IsEditable bool
}

// IsGlobal reports whether the account belongs to the shared catalog.
func (a LedgerAccount) IsGlobal() bool {
	return a.PropertyID == nil
}
