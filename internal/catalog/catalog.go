// Package catalog is the static reference table of account codes that
// journal entries may be booked to, each tagged with the entry types it
// accepts and the tax-report rubric it feeds.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/locatio-dev/locatio/internal/model"
)

// DefaultSearchLimit caps Search results when no limit is given.
const DefaultSearchLimit = 25

//go:embed catalog.csv
var defaultData []byte

// Account is one catalog row.
type Account struct {
	Code        string
	Label       string
	Description string
	AppliesTo   []model.EntryType
	Rubrique    string
}

// Applies reports whether the account accepts entries of type t.
func (a Account) Applies(t model.EntryType) bool {
	return slices.Contains(a.AppliesTo, t)
}

// Catalog is an immutable, code-sorted set of accounts.
type Catalog struct {
	accounts []Account
	byCode   map[string]int
}

// New builds a Catalog from already-validated accounts.
func New(accounts []Account) *Catalog {
	sorted := make([]Account, len(accounts))
	for i, a := range accounts {
		a.AppliesTo = slices.Clone(a.AppliesTo)
		sorted[i] = a
	}
	slices.SortStableFunc(sorted, func(a, b Account) int {
		return strings.Compare(a.Code, b.Code)
	})

	byCode := make(map[string]int, len(sorted))
	for i, a := range sorted {
		byCode[a.Code] = i
	}
	return &Catalog{accounts: sorted, byCode: byCode}
}

// Parse reads and validates a catalog dataset.
func Parse(r io.Reader) (*Catalog, error) {
	accounts, err := ReadAccounts(r)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return New(accounts), nil
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Parse(bytes.NewReader(defaultData))
})

// Default returns the embedded catalog, parsed on first use.
func Default() (*Catalog, error) {
	return loadDefault()
}

// MustDefault is Default for callers that treat a broken embedded dataset as a programming error.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// All returns every account in code order.
func (c *Catalog) All() []Account {
	return slices.Clone(c.accounts)
}

// Len returns the number of accounts.
func (c *Catalog) Len() int {
	return len(c.accounts)
}

// Get returns the account with the given code.
func (c *Catalog) Get(code string) (Account, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return Account{}, false
	}
	return c.accounts[i], true
}

// ListFor returns the accounts accepting entries of type t, in code order.
func (c *Catalog) ListFor(t model.EntryType) []Account {
	var result []Account
	for _, a := range c.accounts {
		if a.Applies(t) {
			result = append(result, a)
		}
	}
	return result
}

// IsAllowed reports whether code exists and accepts entries of type t.
func (c *Catalog) IsAllowed(code string, t model.EntryType) bool {
	a, ok := c.Get(code)
	return ok && a.Applies(t)
}

// FindClosest returns the account whose code shares the longest prefix with
// input, where one of the two must be a prefix of the other. Ties keep code
// order. An empty input, or one matching nothing, yields the first account.
// A nil t searches the whole catalog.
func (c *Catalog) FindClosest(input string, t *model.EntryType) (Account, bool) {
	candidates := c.accounts
	if t != nil {
		candidates = c.ListFor(*t)
	}
	if len(candidates) == 0 {
		return Account{}, false
	}

	input = strings.TrimSpace(input)
	best := candidates[0]
	if input == "" {
		return best, true
	}

	bestLen := 0
	for _, a := range candidates {
		if !strings.HasPrefix(a.Code, input) && !strings.HasPrefix(input, a.Code) {
			continue
		}
		n := min(len(a.Code), len(input))
		if n > bestLen {
			best, bestLen = a, n
		}
	}
	return best, true
}

// Search returns up to limit accounts of type t whose code, label or
// description contains q, case-insensitively, in code order.
func (c *Catalog) Search(q string, t model.EntryType, limit int) []Account {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	q = strings.ToLower(strings.TrimSpace(q))

	var result []Account
	for _, a := range c.ListFor(t) {
		if len(result) == limit {
			break
		}
		if q == "" || matches(a, q) {
			result = append(result, a)
		}
	}
	return result
}

func matches(a Account, q string) bool {
	return strings.Contains(strings.ToLower(a.Code), q) ||
		strings.Contains(strings.ToLower(a.Label), q) ||
		strings.Contains(strings.ToLower(a.Description), q)
}
