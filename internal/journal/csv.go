package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/locatio-dev/locatio/internal/model"
)

// Header is the CSV header for journal.csv.
const Header = "entry_id,user_id,date,type,designation,counterparty,account_code,amount,currency,is_deposit"

const (
	numFields    = 10
	dateFormat   = "2006-01-02"
	colEntryID   = 0
	colUserID    = 1
	colDate      = 2
	colType      = 3
	colDesig     = 4
	colCparty    = 5
	colAcctCode  = 6
	colAmount    = 7
	colCurrency  = 8
	colIsDeposit = 9
)

// ReadEntries reads all entries from a journal.csv reader.
func ReadEntries(r io.Reader) ([]model.JournalEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var entries []model.JournalEntry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteEntries writes entries to a journal.csv writer (including header).
func WriteEntries(w io.Writer, entries []model.JournalEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendEntries appends entries to an existing journal.csv writer (no header).
func AppendEntries(w io.Writer, entries []model.JournalEntry) error {
	cw := csv.NewWriter(w)

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalEntry converts a JournalEntry to a CSV row ([]string).
func MarshalEntry(e model.JournalEntry) []string {
	row := make([]string, numFields)
	row[colEntryID] = e.ID
	row[colUserID] = e.UserID
	row[colDate] = e.Date.Format(dateFormat)
	row[colType] = string(e.Type)
	row[colDesig] = e.Designation
	row[colCparty] = e.Counterparty
	row[colAcctCode] = e.AccountCode
	row[colAmount] = e.Amount.StringFixed(2)
	row[colCurrency] = e.Currency
	row[colIsDeposit] = strconv.FormatBool(e.IsDeposit)
	return row
}

// UnmarshalEntry converts a CSV row to a JournalEntry.
func UnmarshalEntry(record []string) (model.JournalEntry, error) {
	if len(record) != numFields {
		return model.JournalEntry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	t, ok := model.ParseEntryType(record[colType])
	if !ok {
		return model.JournalEntry{}, fmt.Errorf("parsing type %q: not purchase or sale", record[colType])
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	var deposit bool
	if record[colIsDeposit] != "" {
		deposit, err = strconv.ParseBool(record[colIsDeposit])
		if err != nil {
			return model.JournalEntry{}, fmt.Errorf("parsing is_deposit %q: %w", record[colIsDeposit], err)
		}
	}

	return model.JournalEntry{
		ID:           record[colEntryID],
		UserID:       record[colUserID],
		Date:         date,
		Type:         t,
		Designation:  record[colDesig],
		Counterparty: record[colCparty],
		AccountCode:  record[colAcctCode],
		Amount:       amount,
		Currency:     record[colCurrency],
		IsDeposit:    deposit,
	}, nil
}
