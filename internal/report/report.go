// Package report builds the statutory tax-report extracts of a rental
// activity (2033-A balance sheet, 2033-B result by rubric, 2033-C
// depreciation state) from entries and assets already loaded by the caller.
//
// Every engine caps the number of rows it processes. When the filtered
// dataset is larger than the cap, the first rows in date order are kept and
// the result is flagged Truncated.
package report

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/locatio-dev/locatio/internal/catalog"
	"github.com/locatio-dev/locatio/internal/model"
)

// DefaultMaxRows is the row cap used when Options.MaxRows is not set.
const DefaultMaxRows = 5000

var (
	ErrInvalidPeriod = errors.New("invalid report period")
	ErrNilCatalog    = errors.New("report engine needs a catalog")
)

// Options tunes an Engine.
type Options struct {
	MaxRows int
}

// Engine computes reports against one account catalog.
type Engine struct {
	catalog *catalog.Catalog
	maxRows int
}

// New returns an Engine. A non-positive MaxRows falls back to DefaultMaxRows.
func New(c *catalog.Catalog, opts Options) (*Engine, error) {
	if c == nil {
		return nil, ErrNilCatalog
	}
	maxRows := opts.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &Engine{catalog: c, maxRows: maxRows}, nil
}

// MaxRows returns the row cap in effect.
func (e *Engine) MaxRows() int {
	return e.maxRows
}

// Params selects the data a report covers.
type Params struct {
	UserID string
	Year   int
	From   *time.Time // overrides 1 January of Year
	To     *time.Time // overrides 31 December of Year, inclusive
	Query  string     // case-insensitive substring filter
}

// Period returns the covered range as [start, end).
func (p Params) Period() (start, end time.Time, err error) {
	if p.Year != 0 {
		start = time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(1, 0, 0)
	}
	if p.From != nil {
		start = truncateDay(*p.From)
	}
	if p.To != nil {
		end = truncateDay(*p.To).AddDate(0, 0, 1)
	}
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: year=%d from=%v to=%v", ErrInvalidPeriod, p.Year, p.From, p.To)
	}
	return start, end, nil
}

// ClosingDate is the last day covered by the report.
func (p Params) ClosingDate() (time.Time, error) {
	_, end, err := p.Period()
	if err != nil {
		return time.Time{}, err
	}
	return end.AddDate(0, 0, -1), nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Records without an owner are shared by every user.
func (p Params) ownsEntry(e model.JournalEntry) bool {
	return p.UserID == "" || e.UserID == "" || e.UserID == p.UserID
}

func (p Params) ownsAsset(a model.Asset) bool {
	return p.UserID == "" || a.UserID == "" || a.UserID == p.UserID
}

func (p Params) matchesEntry(e model.JournalEntry) bool {
	q := strings.ToLower(strings.TrimSpace(p.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Designation), q) ||
		strings.Contains(strings.ToLower(e.Counterparty), q) ||
		strings.Contains(strings.ToLower(e.AccountCode), q)
}

func (p Params) matchesAsset(a model.Asset) bool {
	q := strings.ToLower(strings.TrimSpace(p.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Label), q) ||
		strings.Contains(strings.ToLower(a.AccountCode), q)
}

// selectEntries keeps the caller's entries dated in [from, to) that pass
// the owner and query filters, in date order, capped at maxRows.
func (e *Engine) selectEntries(p Params, entries []model.JournalEntry, from, to time.Time) ([]model.JournalEntry, bool) {
	var out []model.JournalEntry
	for _, en := range entries {
		if !p.ownsEntry(en) || !p.matchesEntry(en) {
			continue
		}
		if en.Date.Before(from) || !en.Date.Before(to) {
			continue
		}
		out = append(out, en)
	}
	slices.SortStableFunc(out, func(a, b model.JournalEntry) int {
		return a.Date.Compare(b.Date)
	})
	return capRows(out, e.maxRows)
}

// selectAssets keeps the assets acquired before end that pass the owner and
// query filters, in acquisition order, capped at maxRows.
func (e *Engine) selectAssets(p Params, assets []model.Asset, end time.Time) ([]model.Asset, bool) {
	var out []model.Asset
	for _, a := range assets {
		if !p.ownsAsset(a) || !p.matchesAsset(a) {
			continue
		}
		if !a.AcquisitionDate.Before(end) {
			continue
		}
		out = append(out, a)
	}
	slices.SortStableFunc(out, func(a, b model.Asset) int {
		return a.AcquisitionDate.Compare(b.AcquisitionDate)
	})
	return capRows(out, e.maxRows)
}

func capRows[T any](rows []T, maxRows int) ([]T, bool) {
	if len(rows) <= maxRows {
		return rows, false
	}
	return rows[:maxRows], true
}
