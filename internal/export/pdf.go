package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin     = 10.0
	pdfLineHeight = 6.0
	pdfFontSize   = 9.0
	// landscapeColumns switches to landscape for wide tables.
	landscapeColumns = 6
)

// WritePDF renders an A4 document. Columns sit at fixed x positions, a new
// page starts when the next row would cross the bottom margin and the
// section header is reprinted on every page.
func WritePDF(w io.Writer, doc Document) error {
	pdf := renderPDF(doc)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

type pdfWriter struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	bottom float64
	usable float64
}

func renderPDF(doc Document) *gofpdf.Fpdf {
	orientation := "P"
	if doc.maxColumns() > landscapeColumns {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AliasNbPages("")

	pageW, pageH := pdf.GetPageSize()
	pw := &pdfWriter{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		bottom: pageH - 2*pdfMargin,
		usable: pageW - 2*pdfMargin,
	}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin - 2)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 5, pw.text(fmt.Sprintf("%s - page %d/{nb}", doc.Title, pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, pw.text(doc.Title), "", 1, "L", false, 0, "")
	if doc.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, pw.text(doc.Subtitle), "", 1, "L", false, 0, "")
	}

	for _, s := range doc.Sections {
		pw.section(s)
	}

	if notes := doc.Notes(); len(notes) > 0 {
		pdf.Ln(pdfLineHeight)
		pdf.SetFont("Arial", "I", pdfFontSize)
		for _, note := range notes {
			pw.ensureRoom(pdfLineHeight, nil)
			pdf.CellFormat(0, pdfLineHeight, pw.text("* "+note), "", 1, "L", false, 0, "")
		}
	}
	return pdf
}

func (pw *pdfWriter) text(s string) string {
	// Core fonts are cp1252, which has no narrow no-break space.
	s = strings.NewReplacer("\u202f", " ", "\u00a0", " ").Replace(s)
	return pw.tr(s)
}

// columnX returns the x position and width of every column. Columns without
// a width share what the others leave.
func (pw *pdfWriter) columnX(cols []Column) (xs, widths []float64) {
	fixed, flexible := 0.0, 0
	for _, c := range cols {
		if c.Width > 0 {
			fixed += c.Width
		} else {
			flexible++
		}
	}
	share := 0.0
	if flexible > 0 {
		share = max((pw.usable-fixed)/float64(flexible), 15)
	}
	x := pdfMargin
	for _, c := range cols {
		width := c.Width
		if width <= 0 {
			width = share
		}
		xs = append(xs, x)
		widths = append(widths, width)
		x += width
	}
	return xs, widths
}

func (pw *pdfWriter) section(s Section) {
	pdf := pw.pdf
	xs, widths := pw.columnX(s.Columns)

	header := func() {
		pdf.SetFont("Arial", "B", pdfFontSize)
		pdf.SetFillColor(224, 224, 224)
		y := pdf.GetY()
		for i, c := range s.Columns {
			pdf.SetXY(xs[i], y)
			pdf.CellFormat(widths[i], pdfLineHeight, pw.text(c.Header), "1", 0, align(c.Kind), true, 0, "")
		}
		pdf.SetXY(pdfMargin, y+pdfLineHeight)
		pdf.SetFont("Arial", "", pdfFontSize)
	}

	pw.ensureRoom(3*pdfLineHeight, nil)
	pdf.Ln(pdfLineHeight / 2)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, pdfLineHeight+1, pw.text(s.Name), "", 1, "L", false, 0, "")
	header()

	for _, row := range s.Rows {
		pw.ensureRoom(pdfLineHeight, header)
		y := pdf.GetY()
		for i, c := range s.Columns {
			var v any
			if i < len(row) {
				v = row[i]
			}
			pdf.SetXY(xs[i], y)
			pdf.CellFormat(widths[i], pdfLineHeight, pw.fit(displayCell(v), widths[i]), "1", 0, align(c.Kind), false, 0, "")
		}
		pdf.SetXY(pdfMargin, y+pdfLineHeight)
	}
}

// ensureRoom starts a new page when height does not fit above the bottom
// margin, then calls header if given.
func (pw *pdfWriter) ensureRoom(height float64, header func()) {
	if pw.pdf.GetY()+height <= pw.bottom {
		return
	}
	pw.pdf.AddPage()
	if header != nil {
		header()
	}
}

// fit shortens s until it fits in a cell of the given width.
func (pw *pdfWriter) fit(s string, width float64) string {
	t := pw.text(s)
	if pw.pdf.GetStringWidth(t) <= width-2 {
		return t
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		t = pw.text(string(r) + "...")
		if pw.pdf.GetStringWidth(t) <= width-2 {
			return t
		}
	}
	return ""
}

func align(k Kind) string {
	switch k {
	case KindAmount, KindInt:
		return "R"
	default:
		return "L"
	}
}
