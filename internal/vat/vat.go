// Package vat converts between pre-tax (HT) and tax-inclusive (TTC) amounts
// and checks that user-entered VAT fields agree with each other.
package vat

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/locatio-dev/locatio/internal/money"
)

var (
	ErrRateRequired   = errors.New("vat rate is required")
	ErrRateOutOfRange = errors.New("vat rate must be between 0 and 100")
	ErrBaseRequired   = errors.New("either ht or ttc is required")
	ErrInconsistent   = errors.New("vat amounts are inconsistent")
)

// Tolerance is the absolute drift accepted between a typed and a recomputed amount.
var Tolerance = decimal.RequireFromString("0.02")

var hundred = decimal.NewFromInt(100)

// Result holds the four VAT fields of an amount.
type Result struct {
	HT   decimal.Decimal
	Rate decimal.Decimal
	TVA  decimal.Decimal
	TTC  decimal.Decimal
}

// CheckRate rejects rates outside [0, 100]. The Compute functions assume a
// checked rate.
func CheckRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return fmt.Errorf("%w: %s", ErrRateOutOfRange, rate)
	}
	return nil
}

// ComputeFromHT derives VAT and the tax-inclusive amount from a pre-tax amount.
func ComputeFromHT(ht, rate decimal.Decimal) Result {
	tva := money.Round2(ht.Mul(rate).Div(hundred))
	return Result{
		HT:   ht,
		Rate: rate,
		TVA:  tva,
		TTC:  money.Round2(ht.Add(tva)),
	}
}

// ComputeFromTTC derives the pre-tax amount and VAT from a tax-inclusive amount.
func ComputeFromTTC(ttc, rate decimal.Decimal) Result {
	ht := money.Round2(ttc.Div(decimal.NewFromInt(1).Add(rate.Div(hundred))))
	return Result{
		HT:   ht,
		Rate: rate,
		TVA:  money.Round2(ttc.Sub(ht)),
		TTC:  ttc,
	}
}

// Input carries the optional VAT fields of a form. Nil means "not provided".
type Input struct {
	HT   *decimal.Decimal
	Rate *decimal.Decimal
	TVA  *decimal.Decimal
	TTC  *decimal.Decimal
}

// InconsistencyError names the field whose typed value disagrees with the
// value recomputed from the others.
type InconsistencyError struct {
	Field    string
	Expected decimal.Decimal
	Got      decimal.Decimal
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Field, e.Expected.StringFixed(2), e.Got.StringFixed(2))
}

func (e *InconsistencyError) Unwrap() error { return ErrInconsistent }

// Validate checks a VAT form. When VAT is disabled every input is accepted.
func Validate(enabled bool, in Input) error {
	if !enabled {
		return nil
	}
	if in.Rate == nil {
		return ErrRateRequired
	}
	rate := *in.Rate
	if err := CheckRate(rate); err != nil {
		return err
	}
	if in.HT == nil && in.TTC == nil {
		return ErrBaseRequired
	}

	if in.HT != nil {
		expected := ComputeFromHT(*in.HT, rate)
		if in.TTC != nil {
			if err := check("ttc", expected.TTC, *in.TTC); err != nil {
				return err
			}
		}
		if in.TVA != nil {
			if err := check("tva", expected.TVA, *in.TVA); err != nil {
				return err
			}
		}
		return nil
	}

	if in.TVA != nil {
		expected := ComputeFromTTC(*in.TTC, rate)
		return check("tva", expected.TVA, *in.TVA)
	}
	return nil
}

func check(field string, expected, got decimal.Decimal) error {
	if expected.Sub(got).Abs().GreaterThan(Tolerance) {
		return &InconsistencyError{Field: field, Expected: expected, Got: got}
	}
	return nil
}
