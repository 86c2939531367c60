package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/locatio-dev/locatio/internal/model"
)

const (
	numFields    = 5
	colCode      = 0
	colLabel     = 1
	colDesc      = 2
	colAppliesTo = 3
	colRubrique  = 4

	appliesToSep = "|"
)

// SchemaError reports a malformed catalog row.
type SchemaError struct {
	Row    int
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("catalog row %d: %s %s", e.Row, e.Field, e.Reason)
}

// ReadAccounts decodes a semicolon-separated catalog and validates every row.
func ReadAccounts(r io.Reader) ([]Account, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading catalog CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	seen := make(map[string]int, len(records))
	accounts := make([]Account, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := i + 2
		acct, err := UnmarshalAccount(rec, row)
		if err != nil {
			return nil, err
		}
		if first, dup := seen[acct.Code]; dup {
			return nil, &SchemaError{Row: row, Field: "code", Reason: fmt.Sprintf("%q duplicates row %d", acct.Code, first)}
		}
		seen[acct.Code] = row
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts encodes a catalog in the format ReadAccounts accepts.
func WriteAccounts(w io.Writer, accounts []Account) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	defer cw.Flush()

	if err := cw.Write([]string{"code", "label", "description", "applies_to", "rubrique"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct Account) []string {
	types := make([]string, len(acct.AppliesTo))
	for i, t := range acct.AppliesTo {
		types[i] = string(t)
	}
	row := make([]string, numFields)
	row[colCode] = acct.Code
	row[colLabel] = acct.Label
	row[colDesc] = acct.Description
	row[colAppliesTo] = strings.Join(types, appliesToSep)
	row[colRubrique] = acct.Rubrique
	return row
}

// UnmarshalAccount converts and validates a CSV row. row is the 1-based line
// number used in errors.
func UnmarshalAccount(record []string, row int) (Account, error) {
	if len(record) != numFields {
		return Account{}, &SchemaError{Row: row, Field: "record", Reason: fmt.Sprintf("expected %d fields, got %d", numFields, len(record))}
	}

	required := []struct {
		col  int
		name string
	}{
		{colCode, "code"},
		{colLabel, "label"},
		{colDesc, "description"},
		{colRubrique, "rubrique"},
	}
	for _, f := range required {
		if strings.TrimSpace(record[f.col]) == "" {
			return Account{}, &SchemaError{Row: row, Field: f.name, Reason: "must not be empty"}
		}
	}

	var appliesTo []model.EntryType
	for _, part := range strings.Split(record[colAppliesTo], appliesToSep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, ok := model.ParseEntryType(part)
		if !ok {
			return Account{}, &SchemaError{Row: row, Field: "applies_to", Reason: fmt.Sprintf("unknown entry type %q", part)}
		}
		appliesTo = append(appliesTo, t)
	}
	if len(appliesTo) == 0 {
		return Account{}, &SchemaError{Row: row, Field: "applies_to", Reason: "must name purchase or sale"}
	}

	return Account{
		Code:        strings.TrimSpace(record[colCode]),
		Label:       record[colLabel],
		Description: record[colDesc],
		AppliesTo:   appliesTo,
		Rubrique:    strings.TrimSpace(record[colRubrique]),
	}, nil
}
