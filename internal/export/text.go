package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/locatio-dev/locatio/internal/money"
)

// displayCell formats a cell for humans: French amounts, dates as
// DD/MM/YYYY.
func displayCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case decimal.Decimal:
		return money.FormatPlain(val)
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format("02/01/2006")
	default:
		return fmt.Sprint(val)
	}
}

// WriteText renders the document as bordered tables for a terminal.
func WriteText(w io.Writer, doc Document) error {
	var b strings.Builder
	b.WriteString(doc.Title + "\n")
	if doc.Subtitle != "" {
		b.WriteString(doc.Subtitle + "\n")
	}

	for _, s := range doc.Sections {
		fmt.Fprintf(&b, "\n%s\n", s.Name)
		b.WriteString(sectionTable(s).String())
		b.WriteString("\n")
	}

	for _, note := range doc.Notes() {
		fmt.Fprintf(&b, "\n* %s\n", note)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing text: %w", err)
	}
	return nil
}

// sectionTable lays out one section. Numeric columns are right-aligned.
func sectionTable(s Section) *table.Table {
	header := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		header[i] = c.Header
	}
	rows := make([][]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		cells := make([]string, len(s.Columns))
		for i := range s.Columns {
			if i < len(row) {
				cells[i] = displayCell(row[i])
			}
		}
		rows = append(rows, cells)
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	numeric := cell.Align(lipgloss.Right)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col >= len(s.Columns) {
				return cell
			}
			switch s.Columns[col].Kind {
			case KindAmount, KindInt:
				return numeric
			}
			return cell
		})
}
