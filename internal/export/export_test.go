package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/locatio-dev/locatio/internal/balance"
	"github.com/locatio-dev/locatio/internal/catalog"
	"github.com/locatio-dev/locatio/internal/ledger"
	"github.com/locatio-dev/locatio/internal/model"
	"github.com/locatio-dev/locatio/internal/report"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func sampleDocument(truncated bool) Document {
	return Document{
		Title:    "Balance 2025",
		Subtitle: "Période du 2025-01-01 au 2025-12-31",
		Sections: []Section{
			{
				Name: "Comptes",
				Columns: []Column{
					{Header: "Compte", Kind: KindText},
					{Header: "Date", Kind: KindDate},
					{Header: "Montant", Kind: KindAmount},
					{Header: "Nombre", Kind: KindInt},
				},
				Rows: [][]any{
					{"706", date(2025, 3, 1), dec("1234.5"), 2},
					{"616; assurance", nil, dec("-12"), 1},
				},
			},
			{
				Name:    "Totaux",
				Columns: summaryColumns,
				Rows:    [][]any{{"Total", dec("1222.5")}},
			},
		},
		Truncated: truncated,
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats() {
		got, err := ParseFormat(strings.ToUpper(string(f)))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	assert.True(t, FormatPDF.Binary())
	assert.False(t, FormatCSV.Binary())
	assert.Equal(t, ".txt", FormatText.Extension())
	assert.Equal(t, ".xlsx", FormatXLSX.Extension())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleDocument(false)))

	r := csv.NewReader(&buf)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Balance 2025"}, records[0])
	// Blank separator lines are skipped by the reader.
	assert.Equal(t, []string{"Comptes"}, records[2])
	assert.Equal(t, []string{"Compte", "Date", "Montant", "Nombre"}, records[3])
	assert.Equal(t, []string{"706", "2025-03-01", "1234.50", "2"}, records[4])
	assert.Equal(t, []string{"616; assurance", "", "-12.00", "1"}, records[5])
	assert.Equal(t, []string{"Total", "1222.50"}, records[len(records)-1])
	assert.NotContains(t, buf.String(), TruncatedNote)
}

func TestWriteCSV_Semicolon(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleDocument(false)))
	assert.Contains(t, buf.String(), "706;2025-03-01;1234.50;2\n")
	assert.Contains(t, buf.String(), "\"616; assurance\";;-12.00;1\n")
}

func TestTruncatedNote(t *testing.T) {
	doc := sampleDocument(true)

	var csvBuf, textBuf bytes.Buffer
	require.NoError(t, WriteCSV(&csvBuf, doc))
	require.NoError(t, WriteText(&textBuf, doc))
	assert.Contains(t, csvBuf.String(), TruncatedNote)
	assert.Contains(t, textBuf.String(), TruncatedNote)

	var xlsxBuf bytes.Buffer
	require.NoError(t, WriteXLSX(&xlsxBuf, doc))
	f, err := excelize.OpenReader(&xlsxBuf)
	require.NoError(t, err)
	defer f.Close()
	note, err := f.GetCellValue("Comptes", "A5")
	require.NoError(t, err)
	assert.Equal(t, TruncatedNote, note)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleDocument(false)))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Balance 2025\n"))
	assert.Contains(t, out, "01/03/2025")
	assert.Contains(t, out, "Montant")
	assert.Contains(t, out, "234,50")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleDocument(false)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Comptes", "Totaux"}, f.GetSheetList())

	header, err := f.GetCellValue("Comptes", "C1")
	require.NoError(t, err)
	assert.Equal(t, "Montant", header)

	raw := excelize.Options{RawCellValue: true}
	amount, err := f.GetCellValue("Comptes", "C2", raw)
	require.NoError(t, err)
	assert.Equal(t, "1234.5", amount)

	code, err := f.GetCellValue("Comptes", "A3")
	require.NoError(t, err)
	assert.Equal(t, "616; assurance", code)

	total, err := f.GetCellValue("Totaux", "B2", raw)
	require.NoError(t, err)
	assert.Equal(t, "1222.5", total)

	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, "Balance 2025", props.Title)
}

func TestSheetNames(t *testing.T) {
	names := sheetNames([]Section{
		{Name: "706"},
		{Name: ""},
		{Name: "a/b"},
		{Name: "706"},
		{Name: strings.Repeat("x", 40)},
	})
	assert.Equal(t, []string{"706", "Feuille 2", "a-b", "706 (2)", strings.Repeat("x", 31)}, names)
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, sampleDocument(true)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderPDF_PageBreaks(t *testing.T) {
	doc := sampleDocument(false)
	for i := range 200 {
		doc.Sections[0].Rows = append(doc.Sections[0].Rows, []any{"606", date(2025, 1, 1).AddDate(0, 0, i), dec("10"), 1})
	}
	pdf := renderPDF(doc)
	require.NoError(t, pdf.Error())
	assert.Greater(t, pdf.PageCount(), 3)

	small := renderPDF(sampleDocument(false))
	require.NoError(t, small.Error())
	assert.Equal(t, 1, small.PageCount())
}

func TestRenderPDF_Landscape(t *testing.T) {
	doc := Depreciation(report.DepreciationReport{Year: 2025})
	pdf := renderPDF(doc)
	require.NoError(t, pdf.Error())
	w, h := pdf.GetPageSize()
	assert.Greater(t, w, h)
}

func TestReportDocuments(t *testing.T) {
	engine, err := report.New(catalog.MustDefault(), report.Options{})
	require.NoError(t, err)

	entries := []model.JournalEntry{
		{ID: "1", Type: model.EntryTypeSale, AccountCode: "706", Amount: dec("900"), Date: date(2025, 1, 5), Designation: "Loyer"},
		{ID: "2", Type: model.EntryTypePurchase, AccountCode: "616", Amount: dec("300"), Date: date(2025, 2, 1), Designation: "Assurance"},
		{ID: "3", Type: model.EntryTypeSale, AccountCode: "165", Amount: dec("800"), Date: date(2025, 1, 1), IsDeposit: true},
	}
	assets := []model.Asset{
		{ID: "a1", Label: "Mobilier", AmountHT: dec("1000"), DurationYears: 3, AcquisitionDate: date(2025, 1, 1), AccountCode: "2184"},
	}
	p := report.Params{Year: 2025}

	bs, err := engine.BalanceSheet(p, entries, assets)
	require.NoError(t, err)
	doc := BalanceSheet(bs)
	assert.Contains(t, doc.Title, "2025-12-31")
	assert.Equal(t, "Période du 2025-01-01 au 2025-12-31", doc.Subtitle)
	require.Len(t, doc.Sections, 3)
	row := doc.Sections[0].Rows[0]
	assert.Equal(t, "2184", row[0])
	assert.Equal(t, "Mobilier", row[1])
	assert.Equal(t, "333.33", row[3].(decimal.Decimal).StringFixed(2))
	assert.Equal(t, "666.67", row[4].(decimal.Decimal).StringFixed(2))

	res, err := engine.ResultByRubric(p, entries)
	require.NoError(t, err)
	doc = Result(res)
	require.Len(t, doc.Sections, 2)
	assert.Len(t, doc.Sections[0].Rows, 3)
	last := doc.Sections[1].Rows[len(doc.Sections[1].Rows)-1]
	assert.Equal(t, "Résultat", last[0])
	assert.Equal(t, "600.00", last[1].(decimal.Decimal).StringFixed(2))

	dep, err := engine.DepreciationState(p, assets)
	require.NoError(t, err)
	doc = Depreciation(dep)
	rows := doc.Sections[0].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "Total", rows[1][0])
	assert.Equal(t, "333.33", rows[1][6].(decimal.Decimal).StringFixed(2))

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, doc))
	assert.Contains(t, buf.String(), "Mobilier;2184;2025-01-01;3;1000.00;0.00;333.33;333.33;666.67\n")
	assert.Contains(t, buf.String(), "Total;;;;1000.00;0.00;333.33;333.33;666.67\n")
}

func TestBalanceAndLedgerDocuments(t *testing.T) {
	entries := []model.JournalEntry{
		{Type: model.EntryTypePurchase, AccountCode: "616", Amount: dec("100"), Date: date(2025, 2, 1), Designation: "B"},
		{Type: model.EntryTypeSale, AccountCode: "706", Amount: dec("500"), Date: date(2025, 1, 1), Designation: "A"},
	}

	doc := Balance("Balance", balance.Aggregate(balance.FromEntries(entries)))
	rows := doc.Sections[0].Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "Total", rows[2][0])
	assert.Equal(t, "-400.00", rows[2][3].(decimal.Decimal).StringFixed(2))

	doc = Ledger("Grand livre", ledger.ByAccount(entries))
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "616", doc.Sections[0].Name)
	assert.Equal(t, "706", doc.Sections[1].Name)
	assert.Equal(t, "-500.00", doc.Sections[1].Rows[0][4].(decimal.Decimal).StringFixed(2))
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("odt"), Document{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestBuildReport(t *testing.T) {
	engine, err := report.New(catalog.MustDefault(), report.Options{})
	require.NoError(t, err)
	assets := []model.Asset{
		{ID: "a1", Label: "Mobilier", AmountHT: dec("1000"), DurationYears: 3, AcquisitionDate: date(2025, 1, 1), AccountCode: "2184"},
	}
	p := report.Params{Year: 2025}

	for _, name := range ReportNames() {
		doc, err := BuildReport(engine, name, p, nil, assets)
		require.NoError(t, err, name)
		assert.NotEmpty(t, doc.Sections, name)
	}

	_, err = BuildReport(engine, "liasse", p, nil, assets)
	assert.ErrorIs(t, err, ErrUnknownReport)

	_, err = BuildReport(engine, ReportBilan, report.Params{}, nil, assets)
	assert.ErrorIs(t, err, report.ErrInvalidPeriod)
}

func TestFileStem(t *testing.T) {
	assert.Equal(t, "bilan-2025", FileStem(ReportBilan, 2025))
	assert.Equal(t, "compte-de-resultat-2025", FileStem(ReportResultat, 2025))
	assert.Equal(t, "immobilisations-2024", FileStem(ReportImmobilisations, 2024))
}
