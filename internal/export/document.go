// Package export renders reports as CSV, XLSX, PDF or plain text.
//
// Reports are first flattened into a Document, a list of titled tables whose
// cells are typed by their column. Each renderer only knows about Documents.
package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/locatio-dev/locatio/internal/balance"
	"github.com/locatio-dev/locatio/internal/ledger"
	"github.com/locatio-dev/locatio/internal/report"
)

// TruncatedNote is appended to every rendering of a truncated report.
const TruncatedNote = "Rapport tronqué : la limite de lignes a été atteinte, les montants sont partiels."

const dateLayout = "2006-01-02"

// Kind tells renderers how to format the cells of a column.
type Kind int

const (
	KindText Kind = iota
	KindAmount
	KindDate
	KindInt
)

// Column describes one table column. Width is in millimetres and only used
// by the PDF renderer; zero shares the remaining width.
type Column struct {
	Header string
	Kind   Kind
	Width  float64
}

// Section is one table of a document. Row cells are string, int,
// decimal.Decimal or time.Time according to the column kind.
type Section struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// Document is a renderer-neutral report.
type Document struct {
	Title     string
	Subtitle  string
	Sections  []Section
	Truncated bool
}

// Notes returns the footnotes to print after the last section.
func (d Document) Notes() []string {
	if d.Truncated {
		return []string{TruncatedNote}
	}
	return nil
}

func (d Document) maxColumns() int {
	n := 0
	for _, s := range d.Sections {
		n = max(n, len(s.Columns))
	}
	return n
}

// plainCell formats a cell for CSV: amounts fixed point with two decimals,
// dates as YYYY-MM-DD.
func plainCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case decimal.Decimal:
		return val.StringFixed(2)
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(dateLayout)
	default:
		return fmt.Sprint(val)
	}
}

func periodSubtitle(p report.Params) string {
	start, end, err := p.Period()
	if err != nil {
		return ""
	}
	s := fmt.Sprintf("Période du %s au %s", start.Format(dateLayout), end.AddDate(0, 0, -1).Format(dateLayout))
	if p.Query != "" {
		s += fmt.Sprintf(" (filtre %q)", p.Query)
	}
	return s
}

func amountRow(label string, d decimal.Decimal) []any {
	return []any{label, d}
}

var summaryColumns = []Column{
	{Header: "Poste", Kind: KindText, Width: 120},
	{Header: "Montant", Kind: KindAmount},
}

// BalanceSheet flattens a 2033-A report.
func BalanceSheet(r report.BalanceSheetReport) Document {
	assets := Section{
		Name: "Immobilisations",
		Columns: []Column{
			{Header: "Compte", Kind: KindText, Width: 20},
			{Header: "Libellé", Kind: KindText, Width: 70},
			{Header: "Brut", Kind: KindAmount},
			{Header: "Amortissements", Kind: KindAmount},
			{Header: "Net", Kind: KindAmount},
		},
	}
	for _, a := range r.Assets {
		assets.Rows = append(assets.Rows, []any{a.AccountCode, a.Label, a.Gross, a.Depreciation, a.Net})
	}

	actif := Section{Name: "Actif", Columns: summaryColumns, Rows: [][]any{
		amountRow("Immobilisations brutes", r.Actif.ImmobilisationsBrutes),
		amountRow("Amortissements", r.Actif.Amortissements),
		amountRow("Immobilisations nettes", r.Actif.ImmobilisationsNettes),
		amountRow("Trésorerie", r.Actif.Tresorerie),
		amountRow("Total actif", r.Actif.Total),
	}}
	passif := Section{Name: "Passif", Columns: summaryColumns, Rows: [][]any{
		amountRow("Capitaux propres", r.Passif.CapitauxPropres),
		amountRow("Dépôts de garantie reçus", r.Passif.DepotsGarantie),
		amountRow("Total passif", r.Passif.Total),
	}}

	return Document{
		Title:     fmt.Sprintf("Bilan simplifié (2033-A) au %s", r.ClosingDate.Format(dateLayout)),
		Subtitle:  periodSubtitle(r.Params),
		Sections:  []Section{assets, actif, passif},
		Truncated: r.Truncated,
	}
}

// Result flattens a 2033-B report.
func Result(r report.ResultReport) Document {
	rubrics := Section{
		Name: "Rubriques",
		Columns: []Column{
			{Header: "Rubrique", Kind: KindText, Width: 20},
			{Header: "Libellé", Kind: KindText, Width: 80},
			{Header: "Débit", Kind: KindAmount},
			{Header: "Crédit", Kind: KindAmount},
			{Header: "Écritures", Kind: KindInt, Width: 20},
		},
	}
	for _, l := range r.Rubriques {
		rubrics.Rows = append(rubrics.Rows, []any{l.Rubrique, l.Label, l.Debit, l.Credit, l.Count})
	}

	totals := Section{Name: "Totaux", Columns: summaryColumns, Rows: [][]any{
		amountRow("Chiffre d'affaires", r.ChiffreAffaires),
		amountRow("Total des produits", r.ProduitsTotal),
		amountRow("Charges externes", r.ChargesExternes),
		amountRow("Impôts et taxes", r.ImpotsTaxes),
		amountRow("Autres charges", r.AutresCharges),
		amountRow("Charges financières", r.ChargesFinancieres),
		amountRow("Total des charges", r.ChargesTotal),
		amountRow("Dotations aux amortissements", r.Dotations),
		amountRow("Résultat", r.Resultat),
	}}

	return Document{
		Title:     "Compte de résultat simplifié (2033-B)",
		Subtitle:  periodSubtitle(r.Params),
		Sections:  []Section{rubrics, totals},
		Truncated: r.Truncated,
	}
}

// Depreciation flattens a 2033-C report. The last row holds the totals.
func Depreciation(r report.DepreciationReport) Document {
	s := Section{
		Name: "Amortissements",
		Columns: []Column{
			{Header: "Libellé", Kind: KindText, Width: 60},
			{Header: "Compte", Kind: KindText, Width: 18},
			{Header: "Acquisition", Kind: KindDate, Width: 24},
			{Header: "Durée", Kind: KindInt, Width: 14},
			{Header: "Valeur", Kind: KindAmount},
			{Header: "Antérieurs", Kind: KindAmount},
			{Header: "Dotation", Kind: KindAmount},
			{Header: "Cumul", Kind: KindAmount},
			{Header: "VNC", Kind: KindAmount},
		},
	}
	for _, l := range r.Lines {
		s.Rows = append(s.Rows, []any{
			l.Label, l.AccountCode, l.AcquisitionDate, l.DurationYears,
			l.Valeur, l.Anterieurs, l.Dotation, l.Cumul, l.ValeurNette,
		})
	}
	t := r.Totals
	s.Rows = append(s.Rows, []any{"Total", "", nil, nil, t.Valeur, t.Anterieurs, t.Dotation, t.Cumul, t.ValeurNette})

	return Document{
		Title:     fmt.Sprintf("Immobilisations et amortissements (2033-C) %d", r.Year),
		Subtitle:  periodSubtitle(r.Params),
		Sections:  []Section{s},
		Truncated: r.Truncated,
	}
}

// Balance flattens per-account balances with a totals row.
func Balance(title string, balances []balance.AccountBalance) Document {
	s := Section{
		Name: "Balance",
		Columns: []Column{
			{Header: "Compte", Kind: KindText, Width: 40},
			{Header: "Débit", Kind: KindAmount},
			{Header: "Crédit", Kind: KindAmount},
			{Header: "Solde", Kind: KindAmount},
		},
	}
	for _, b := range balances {
		s.Rows = append(s.Rows, []any{b.AccountCode, b.TotalDebit, b.TotalCredit, b.Balance})
	}
	debit, credit := balance.Totals(balances)
	s.Rows = append(s.Rows, []any{"Total", debit, credit, debit.Sub(credit)})
	return Document{Title: title, Sections: []Section{s}}
}

// Ledger flattens running balances, one section per account.
func Ledger(title string, accounts []ledger.Account) Document {
	doc := Document{Title: title}
	for _, a := range accounts {
		s := Section{
			Name: a.Code,
			Columns: []Column{
				{Header: "Date", Kind: KindDate, Width: 24},
				{Header: "Libellé", Kind: KindText, Width: 70},
				{Header: "Débit", Kind: KindAmount},
				{Header: "Crédit", Kind: KindAmount},
				{Header: "Solde", Kind: KindAmount},
			},
		}
		for _, l := range a.Lines {
			s.Rows = append(s.Rows, []any{l.Date, l.Designation, l.Debit, l.Credit, l.Balance})
		}
		doc.Sections = append(doc.Sections, s)
	}
	return doc
}
