// Package guess suggests an account code for entries that lack one. It is a
// backfill aid: suggestions can always be overridden by hand.
package guess

import (
	"fmt"
	"strings"

	"github.com/locatio-dev/locatio/internal/model"
)

// Fixed codes used outside the keyword table.
const (
	DepositCode         = "165"
	DefaultSaleCode     = "706"
	DefaultPurchaseCode = "606"
)

// Rule maps designation keywords to an account code.
type Rule struct {
	Name     string
	Keywords []string
	Code     string
}

// Match returns the first keyword contained in the lowercased designation.
func (r Rule) Match(designation string) (string, bool) {
	for _, kw := range r.Keywords {
		if strings.Contains(designation, kw) {
			return kw, true
		}
	}
	return "", false
}

// purchaseRules is checked in order; the first matching rule wins.
var purchaseRules = []Rule{
	{
		Name:     "insurance",
		Keywords: []string{"assurance", "assureur", "pno", "loyers impayés", "axa", "allianz", "maif", "macif", "matmut", "generali"},
		Code:     "616",
	},
	{
		Name:     "banking",
		Keywords: []string{"banque", "bancaire", "frais de tenue", "cotisation carte", "agios", "stripe", "paypal", "sumup", "commission"},
		Code:     "627",
	},
	{
		Name:     "maintenance",
		Keywords: []string{"entretien", "réparation", "reparation", "dépannage", "depannage", "plombier", "plomberie", "électricien", "electricien", "chaudière", "chaudiere", "serrurier", "travaux"},
		Code:     "615",
	},
	{
		Name:     "supplies",
		Keywords: []string{"fourniture", "équipement", "equipement", "électroménager", "electromenager", "mobilier", "meuble", "vaisselle", "linge", "ikea", "leroy merlin", "castorama"},
		Code:     "6063",
	},
	{
		Name:     "property tax",
		Keywords: []string{"taxe foncière", "taxe fonciere", "impôt foncier", "impot foncier", "foncier"},
		Code:     "63512",
	},
}

// Rules returns the purchase keyword table in priority order.
func Rules() []Rule {
	out := make([]Rule, len(purchaseRules))
	copy(out, purchaseRules)
	return out
}

// Input is what the guesser looks at.
type Input struct {
	Type        model.EntryType
	IsDeposit   bool
	Designation string
}

// Guess is a suggested code and a human-readable reason.
type Guess struct {
	Code   string
	Reason string
}

// AccountCode suggests an account code for an entry.
func AccountCode(in Input) Guess {
	if in.Type == model.EntryTypeSale {
		if in.IsDeposit {
			return Guess{Code: DepositCode, Reason: "sale flagged as deposit"}
		}
		return Guess{Code: DefaultSaleCode, Reason: "default revenue account"}
	}

	designation := strings.ToLower(in.Designation)
	for _, r := range purchaseRules {
		if kw, ok := r.Match(designation); ok {
			return Guess{Code: r.Code, Reason: fmt.Sprintf("%s keyword %q", r.Name, kw)}
		}
	}
	return Guess{Code: DefaultPurchaseCode, Reason: "default purchase account"}
}

// Change records a code assigned by Backfill.
type Change struct {
	EntryID string
	OldCode string
	NewCode string
	Reason  string
}

// Backfill returns a copy of entries with every empty account code guessed,
// along with the list of changes made. Entries that already carry a code are
// left alone.
func Backfill(entries []model.JournalEntry) ([]model.JournalEntry, []Change) {
	out := make([]model.JournalEntry, len(entries))
	var changes []Change
	for i, e := range entries {
		if strings.TrimSpace(e.AccountCode) == "" {
			g := AccountCode(Input{Type: e.Type, IsDeposit: e.IsDeposit, Designation: e.Designation})
			changes = append(changes, Change{
				EntryID: e.ID,
				OldCode: e.AccountCode,
				NewCode: g.Code,
				Reason:  g.Reason,
			})
			e.AccountCode = g.Code
		}
		out[i] = e
	}
	return out, changes
}
