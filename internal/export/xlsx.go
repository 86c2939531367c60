package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// WriteXLSX writes one sheet per section: a bold header row followed by the
// rows. Amounts are numeric cells, dates are date cells. The truncation note
// goes below the first sheet's rows.
func WriteXLSX(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{Title: doc.Title, Description: doc.Subtitle}); err != nil {
		return fmt.Errorf("setting properties: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("creating amount style: %w", err)
	}
	dateFormat := "yyyy-mm-dd"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFormat})
	if err != nil {
		return fmt.Errorf("creating date style: %w", err)
	}

	sections := doc.Sections
	if len(sections) == 0 {
		sections = []Section{{Name: doc.Title}}
	}
	names := sheetNames(sections)

	for si, s := range sections {
		sheet := names[si]
		if si == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("naming sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("creating sheet %s: %w", sheet, err)
		}

		for ci, c := range s.Columns {
			cell, _ := excelize.CoordinatesToCellName(ci+1, 1)
			if err := f.SetCellValue(sheet, cell, c.Header); err != nil {
				return fmt.Errorf("writing %s!%s: %w", sheet, cell, err)
			}
			if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
				return fmt.Errorf("styling %s!%s: %w", sheet, cell, err)
			}
			col, _ := excelize.ColumnNumberToName(ci + 1)
			if err := f.SetColWidth(sheet, col, col, columnWidth(c)); err != nil {
				return fmt.Errorf("sizing %s!%s: %w", sheet, col, err)
			}
		}

		for ri, row := range s.Rows {
			for ci := range s.Columns {
				if ci >= len(row) || row[ci] == nil {
					continue
				}
				cell, _ := excelize.CoordinatesToCellName(ci+1, ri+2)
				style := 0
				var value any
				switch v := row[ci].(type) {
				case decimal.Decimal:
					value, style = v.InexactFloat64(), amountStyle
				case time.Time:
					if v.IsZero() {
						continue
					}
					value, style = v, dateStyle
				default:
					value = v
				}
				if err := f.SetCellValue(sheet, cell, value); err != nil {
					return fmt.Errorf("writing %s!%s: %w", sheet, cell, err)
				}
				if style != 0 {
					if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
						return fmt.Errorf("styling %s!%s: %w", sheet, cell, err)
					}
				}
			}
		}

		if si == 0 {
			for ni, note := range doc.Notes() {
				cell, _ := excelize.CoordinatesToCellName(1, len(s.Rows)+3+ni)
				if err := f.SetCellValue(sheet, cell, note); err != nil {
					return fmt.Errorf("writing note: %w", err)
				}
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}

func columnWidth(c Column) float64 {
	if c.Width > 0 {
		return c.Width / 2
	}
	return 16
}

// sheetNames derives unique, valid sheet names from the section names.
func sheetNames(sections []Section) []string {
	seen := make(map[string]bool)
	names := make([]string, len(sections))
	for i, s := range sections {
		name := strings.Map(func(r rune) rune {
			if strings.ContainsRune(`:\/?*[]`, r) {
				return '-'
			}
			return r
		}, strings.TrimSpace(s.Name))
		if name == "" {
			name = fmt.Sprintf("Feuille %d", i+1)
		}
		if r := []rune(name); len(r) > maxSheetName {
			name = string(r[:maxSheetName])
		}
		base := name
		for n := 2; seen[strings.ToLower(name)]; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			r := []rune(base)
			if len(r)+len(suffix) > maxSheetName {
				r = r[:maxSheetName-len(suffix)]
			}
			name = string(r) + suffix
		}
		seen[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}
