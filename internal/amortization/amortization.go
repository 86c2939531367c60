// Package amortization computes straight-line depreciation schedules.
//
// The first year is pro-rated on a days basis: the number of days from the
// acquisition date to 31 December inclusive, over the number of days in that
// calendar year. Every charge is rounded to the cent as it is produced and
// the final year absorbs whatever is left, so the schedule always sums to
// the rounded acquisition cost. A schedule has exactly one row per year of
// duration, so for a mid-year acquisition the final year takes both the
// part of the first annuity that was pro-rated away and the rounding
// remainder.
package amortization

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/locatio-dev/locatio/internal/money"
)

// MaxDurationYears bounds the length of a schedule.
const MaxDurationYears = 100

var (
	ErrInvalidDuration = errors.New("duration must be between 1 and 100 years")
	ErrNegativeAmount  = errors.New("amount must not be negative")
)

// Row is one calendar year of a schedule.
type Row struct {
	Year     int
	Dotation decimal.Decimal // charge booked in Year
	Cumul    decimal.Decimal // depreciation to date, Year included
}

// ComputeLinear returns one row per calendar year from the acquisition year
// through acquisition year + durationYears - 1.
func ComputeLinear(amountHT decimal.Decimal, durationYears int, acquisitionDate time.Time) ([]Row, error) {
	if durationYears < 1 || durationYears > MaxDurationYears {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDuration, durationYears)
	}
	if amountHT.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrNegativeAmount, amountHT)
	}

	total := money.Round2(amountHT)
	annual := money.Round2(total.Div(decimal.NewFromInt(int64(durationYears))))
	first := money.Round2(annual.Mul(FirstYearFraction(acquisitionDate)))

	startYear := acquisitionDate.Year()
	rows := make([]Row, 0, durationYears)
	cumul := decimal.Zero
	for i := range durationYears {
		remaining := total.Sub(cumul)

		var dotation decimal.Decimal
		switch {
		case i == durationYears-1:
			dotation = remaining
		case i == 0:
			dotation = first
		default:
			dotation = annual
		}
		dotation = decimal.Max(decimal.Min(dotation, remaining), decimal.Zero)

		cumul = cumul.Add(dotation)
		rows = append(rows, Row{Year: startYear + i, Dotation: dotation, Cumul: cumul})
	}
	return rows, nil
}

// FirstYearFraction is the share of the acquisition year left on the
// acquisition date, acquisition day included.
func FirstYearFraction(acquisitionDate time.Time) decimal.Decimal {
	y, m, d := acquisitionDate.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	nextYear := time.Date(y+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	remaining := daysBetween(start, nextYear)
	inYear := daysBetween(yearStart, nextYear)
	return decimal.NewFromInt(int64(remaining)).Div(decimal.NewFromInt(int64(inYear)))
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// State splits a schedule around a target year.
type State struct {
	Prior  decimal.Decimal // depreciation booked before the year
	Charge decimal.Decimal // depreciation booked in the year
	Cumul  decimal.Decimal // Prior + Charge
}

// StateAt evaluates a schedule up to and including year.
func StateAt(rows []Row, year int) State {
	st := State{Prior: decimal.Zero, Charge: decimal.Zero}
	for _, r := range rows {
		switch {
		case r.Year < year:
			st.Prior = st.Prior.Add(r.Dotation)
		case r.Year == year:
			st.Charge = r.Dotation
		}
	}
	st.Cumul = st.Prior.Add(st.Charge)
	return st
}
