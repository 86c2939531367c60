package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/locatio-dev/locatio/internal/model"
	"github.com/locatio-dev/locatio/internal/money"
)

// FrenchParser reads the semicolon-separated exports of French banks.
// Columns are found by header name, so preamble lines before the header
// and the column order do not matter. Amounts come either as one signed
// "Montant" column or as separate "Débit"/"Crédit" columns. Files that are
// not valid UTF-8 are decoded as Windows-1252.
type FrenchParser struct{}

// Format returns the parser name.
func (p *FrenchParser) Format() string { return "fr" }

var frDateFormats = []string{"02/01/2006", "02/01/06", "2006-01-02"}

var headerAliases = map[string][]string{
	"date":         {"date operation", "date", "date de comptabilisation", "date valeur"},
	"label":        {"libelle", "libelle operation", "description", "intitule"},
	"amount":       {"montant", "montant eur", "montant (eur)", "montant(eur)"},
	"debit":        {"debit", "debit eur", "debit euros"},
	"credit":       {"credit", "credit eur", "credit euros"},
	"counterparty": {"tiers", "beneficiaire", "contrepartie"},
	"reference":    {"reference", "ref"},
}

type frColumns map[string]int

func (c frColumns) complete() bool {
	_, date := c["date"]
	_, label := c["label"]
	_, amount := c["amount"]
	_, debit := c["debit"]
	_, credit := c["credit"]
	return date && label && (amount || (debit && credit))
}

func (c frColumns) get(rec []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// Parse reads a bank CSV and returns BankTransactions.
func (p *FrenchParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading bank CSV: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(raw) {
		raw, err = charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding windows-1252: %w", err)
		}
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading bank CSV: %w", err)
	}

	headerRow := -1
	var cols frColumns
	for i, rec := range records {
		if c := mapHeader(rec); c.complete() {
			headerRow, cols = i, c
			break
		}
	}
	if headerRow < 0 {
		return nil, fmt.Errorf("reading bank CSV: no header with date, label and amount columns")
	}

	var txns []model.BankTransaction
	for i, rec := range records[headerRow+1:] {
		if blank(rec) {
			continue
		}
		txn, err := parseFrenchRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", headerRow+i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func mapHeader(rec []string) frColumns {
	cols := make(frColumns)
	for i, cell := range rec {
		h := fold(cell)
		for name, aliases := range headerAliases {
			if _, taken := cols[name]; taken {
				continue
			}
			for _, a := range aliases {
				if h == a {
					cols[name] = i
				}
			}
		}
	}
	return cols
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseFrenchRow(rec []string, cols frColumns) (model.BankTransaction, error) {
	rawDate := cols.get(rec, "date")
	date, err := parseFrenchDate(rawDate)
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing date %q: %w", rawDate, err)
	}

	var amount decimal.Decimal
	if _, ok := cols["amount"]; ok {
		raw := cols.get(rec, "amount")
		amount, err = money.Parse(raw)
		if err != nil {
			return model.BankTransaction{}, fmt.Errorf("parsing amount %q: %w", raw, err)
		}
	} else {
		debit, err := optionalAmount(cols.get(rec, "debit"))
		if err != nil {
			return model.BankTransaction{}, fmt.Errorf("parsing debit: %w", err)
		}
		credit, err := optionalAmount(cols.get(rec, "credit"))
		if err != nil {
			return model.BankTransaction{}, fmt.Errorf("parsing credit: %w", err)
		}
		// Some banks sign the debit column, others do not.
		amount = credit.Abs().Sub(debit.Abs())
	}

	desc := strings.Join(strings.Fields(cols.get(rec, "label")), " ")
	ref := cols.get(rec, "reference")
	if ref == "" {
		ref = makeRef(date, desc)
	}

	return model.BankTransaction{
		Date:         date,
		Description:  desc,
		Amount:       amount,
		Counterparty: cols.get(rec, "counterparty"),
		Reference:    ref,
	}, nil
}

func optionalAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return money.Parse(s)
}

func parseFrenchDate(s string) (time.Time, error) {
	var err error
	for _, layout := range frDateFormats {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// makeRef creates a reference like fr_20250103_LOYERJANVI.
func makeRef(date time.Time, desc string) string {
	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return unicode.ToUpper(r)
		}
		return -1
	}, fold(desc))
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	return fmt.Sprintf("fr_%s_%s", date.Format("20060102"), prefix)
}

// fold lowercases s and strips accents and surrounding space.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}
