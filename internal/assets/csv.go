package assets

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

// Header is the CSV header for assets.csv.
const Header = "asset_id,user_id,label,amount_ht,duration_years,acquisition_date,account_code"

const (
	numFields   = 7
	dateFormat  = "2006-01-02"
	colID       = 0
	colUserID   = 1
	colLabel    = 2
	colAmount   = 3
	colDuration = 4
	colAcquired = 5
	colAcctCode = 6
)

// ReadAssets reads assets.csv.
func ReadAssets(r io.Reader) ([]model.Asset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading assets CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var out []model.Asset
	for i, rec := range records[1:] {
		a, err := UnmarshalAsset(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// WriteAssets writes assets.csv, header included.
func WriteAssets(w io.Writer, assets []model.Asset) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, a := range assets {
		if err := cw.Write(MarshalAsset(a)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAsset converts an Asset to a CSV row.
func MarshalAsset(a model.Asset) []string {
	row := make([]string, numFields)
	row[colID] = a.ID
	row[colUserID] = a.UserID
	row[colLabel] = a.Label
	row[colAmount] = a.AmountHT.StringFixed(2)
	row[colDuration] = strconv.Itoa(a.DurationYears)
	row[colAcquired] = a.AcquisitionDate.Format(dateFormat)
	row[colAcctCode] = a.AccountCode
	return row
}

// UnmarshalAsset converts a CSV row to an Asset.
func UnmarshalAsset(record []string) (model.Asset, error) {
	if len(record) != numFields {
		return model.Asset{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Asset{}, fmt.Errorf("parsing amount_ht %q: %w", record[colAmount], err)
	}
	duration, err := strconv.Atoi(record[colDuration])
	if err != nil {
		return model.Asset{}, fmt.Errorf("parsing duration_years %q: %w", record[colDuration], err)
	}
	acquired, err := time.Parse(dateFormat, record[colAcquired])
	if err != nil {
		return model.Asset{}, fmt.Errorf("parsing acquisition_date %q: %w", record[colAcquired], err)
	}

	return model.Asset{
		ID:              record[colID],
		UserID:          record[colUserID],
		Label:           record[colLabel],
		AmountHT:        amount,
		DurationYears:   duration,
		AcquisitionDate: acquired,
		AccountCode:     record[colAcctCode],
	}, nil
}
