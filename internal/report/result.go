package report

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/locatio-dev/locatio/internal/model"
	"github.com/locatio-dev/locatio/internal/money"
)

// Rubrics of the 2033-B form used by the catalog.
const (
	RubriqueLoyers             = "218"
	RubriqueAutresProduits     = "230"
	RubriqueChargesExternes    = "242"
	RubriqueImpotsTaxes        = "244"
	RubriqueDotations          = "254"
	RubriqueAutresCharges      = "262"
	RubriqueChargesFinancieres = "294"
	RubriqueDepots             = "DG"
	RubriqueNonClassee         = "NC"
)

var rubriqueLabels = map[string]string{
	RubriqueLoyers:             "Production vendue (loyers)",
	RubriqueAutresProduits:     "Autres produits",
	RubriqueChargesExternes:    "Autres achats et charges externes",
	RubriqueImpotsTaxes:        "Impôts, taxes et versements assimilés",
	RubriqueDotations:          "Dotations aux amortissements",
	RubriqueAutresCharges:      "Autres charges",
	RubriqueChargesFinancieres: "Charges financières",
	RubriqueDepots:             "Dépôts de garantie reçus",
	RubriqueNonClassee:         "Non classé",
}

// RubriqueLabel returns the display label of a rubric code.
func RubriqueLabel(code string) string {
	if l, ok := rubriqueLabels[code]; ok {
		return l
	}
	return code
}

// revenue rubrics read credit minus debit, expense rubrics debit minus credit.
var (
	produitRubriques = []string{RubriqueLoyers, RubriqueAutresProduits}
	chargeRubriques  = []string{RubriqueChargesExternes, RubriqueImpotsTaxes, RubriqueAutresCharges, RubriqueChargesFinancieres}
)

// RubricLine aggregates the entries of one rubric.
type RubricLine struct {
	Rubrique string
	Label    string
	Debit    decimal.Decimal
	Credit   decimal.Decimal
	Count    int
}

// CreditNet is credit minus debit.
func (l RubricLine) CreditNet() decimal.Decimal { return l.Credit.Sub(l.Debit) }

// DebitNet is debit minus credit.
func (l RubricLine) DebitNet() decimal.Decimal { return l.Debit.Sub(l.Credit) }

// ResultReport is the 2033-B extract.
type ResultReport struct {
	Params             Params
	Rubriques          []RubricLine
	ChiffreAffaires    decimal.Decimal
	ProduitsTotal      decimal.Decimal
	ChargesExternes    decimal.Decimal
	ImpotsTaxes        decimal.Decimal
	AutresCharges      decimal.Decimal
	ChargesFinancieres decimal.Decimal
	ChargesTotal       decimal.Decimal
	Dotations          decimal.Decimal
	Resultat           decimal.Decimal
	Truncated          bool
}

// Rubrique returns the line of a rubric, zero-valued when absent.
func (r ResultReport) Rubrique(code string) RubricLine {
	for _, l := range r.Rubriques {
		if l.Rubrique == code {
			return l
		}
	}
	return RubricLine{Rubrique: code, Label: RubriqueLabel(code), Debit: decimal.Zero, Credit: decimal.Zero}
}

// ResultByRubric groups the period's entries by catalog rubric and derives
// the named totals of the income statement.
func (e *Engine) ResultByRubric(p Params, entries []model.JournalEntry) (ResultReport, error) {
	start, end, err := p.Period()
	if err != nil {
		return ResultReport{}, err
	}
	selected, truncated := e.selectEntries(p, entries, start, end)

	byRubric := make(map[string]*RubricLine)
	for _, en := range selected {
		code := e.rubriqueFor(en)
		l, ok := byRubric[code]
		if !ok {
			l = &RubricLine{Rubrique: code, Label: RubriqueLabel(code), Debit: decimal.Zero, Credit: decimal.Zero}
			byRubric[code] = l
		}
		l.Debit = l.Debit.Add(en.Debit())
		l.Credit = l.Credit.Add(en.Credit())
		l.Count++
	}

	r := ResultReport{Params: p, Truncated: truncated}
	for _, l := range byRubric {
		l.Debit = money.Round2(l.Debit)
		l.Credit = money.Round2(l.Credit)
		r.Rubriques = append(r.Rubriques, *l)
	}
	slices.SortFunc(r.Rubriques, func(a, b RubricLine) int {
		return strings.Compare(a.Rubrique, b.Rubrique)
	})

	r.ChiffreAffaires = r.Rubrique(RubriqueLoyers).CreditNet()
	r.ProduitsTotal = r.sum(produitRubriques, RubricLine.CreditNet)
	r.ChargesExternes = r.Rubrique(RubriqueChargesExternes).DebitNet()
	r.ImpotsTaxes = r.Rubrique(RubriqueImpotsTaxes).DebitNet()
	r.AutresCharges = r.Rubrique(RubriqueAutresCharges).DebitNet()
	r.ChargesFinancieres = r.Rubrique(RubriqueChargesFinancieres).DebitNet()
	r.ChargesTotal = r.sum(chargeRubriques, RubricLine.DebitNet)
	r.Dotations = r.Rubrique(RubriqueDotations).DebitNet()
	r.Resultat = money.Round2(r.ProduitsTotal.Sub(r.ChargesTotal).Sub(r.Dotations))
	return r, nil
}

func (r ResultReport) sum(codes []string, net func(RubricLine) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, c := range codes {
		total = total.Add(net(r.Rubrique(c)))
	}
	return money.Round2(total)
}

// rubriqueFor maps an entry to its rubric: deposits first, then the exact
// catalog code, then the closest catalog code sharing a prefix.
func (e *Engine) rubriqueFor(en model.JournalEntry) string {
	if en.IsDeposit {
		return RubriqueDepots
	}
	code := strings.TrimSpace(en.AccountCode)
	if code == "" {
		return RubriqueNonClassee
	}
	if a, ok := e.catalog.Get(code); ok {
		return a.Rubrique
	}
	t := en.Type
	a, ok := e.catalog.FindClosest(code, &t)
	if !ok || !(strings.HasPrefix(code, a.Code) || strings.HasPrefix(a.Code, code)) {
		return RubriqueNonClassee
	}
	return a.Rubrique
}
