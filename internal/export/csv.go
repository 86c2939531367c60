package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Delimiter separates CSV fields, as expected by French spreadsheet locales.
const Delimiter = ';'

// WriteCSV writes the document title, then each section as a name line, a
// header line and its rows, separated by blank lines.
func WriteCSV(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter

	write := func(record ...string) error {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		return nil
	}

	if err := write(doc.Title); err != nil {
		return err
	}
	if doc.Subtitle != "" {
		if err := write(doc.Subtitle); err != nil {
			return err
		}
	}

	for _, s := range doc.Sections {
		if err := write(""); err != nil {
			return err
		}
		if err := write(s.Name); err != nil {
			return err
		}
		header := make([]string, len(s.Columns))
		for i, c := range s.Columns {
			header[i] = c.Header
		}
		if err := write(header...); err != nil {
			return err
		}
		for _, row := range s.Rows {
			record := make([]string, len(s.Columns))
			for i := range s.Columns {
				if i < len(row) {
					record[i] = plainCell(row[i])
				}
			}
			if err := write(record...); err != nil {
				return err
			}
		}
	}

	for _, note := range doc.Notes() {
		if err := write(""); err != nil {
			return err
		}
		if err := write(note); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}
