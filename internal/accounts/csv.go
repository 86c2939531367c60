package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/locatio-dev/locatio/internal/model"
)

const (
	numFields     = 6
	colID         = 0
	colCode       = 1
	colLabel      = 2
	colKind       = 3
	colPropertyID = 4
	colEditable   = 5
)

var header = []string{"id", "code", "label", "kind", "property_id", "is_editable"}

// ReadAccounts reads ledger-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.LedgerAccount, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.LedgerAccount
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes ledger-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.LedgerAccount) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts a LedgerAccount to a CSV row. Global accounts have
// an empty property_id.
func MarshalAccount(acct model.LedgerAccount) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colCode] = acct.Code
	row[colLabel] = acct.Label
	row[colKind] = string(acct.Kind)
	if acct.PropertyID != nil {
		row[colPropertyID] = *acct.PropertyID
	}
	row[colEditable] = strconv.FormatBool(acct.IsEditable)
	return row
}

// UnmarshalAccount converts a CSV row to a LedgerAccount.
func UnmarshalAccount(record []string) (model.LedgerAccount, error) {
	if len(record) != numFields {
		return model.LedgerAccount{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	kind := model.AccountKind(record[colKind])
	if !kind.Valid() {
		return model.LedgerAccount{}, fmt.Errorf("invalid kind %q", record[colKind])
	}
	if record[colCode] == "" {
		return model.LedgerAccount{}, fmt.Errorf("empty code")
	}

	editable, err := strconv.ParseBool(record[colEditable])
	if err != nil {
		return model.LedgerAccount{}, fmt.Errorf("parsing is_editable %q: %w", record[colEditable], err)
	}

	acct := model.LedgerAccount{
		ID:         record[colID],
		Code:       record[colCode],
		Label:      record[colLabel],
		Kind:       kind,
		IsEditable: editable,
	}
	if p := record[colPropertyID]; p != "" {
		acct.PropertyID = &p
	}
	return acct, nil
}
