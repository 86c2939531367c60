package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/locatio-dev/locatio/internal/id"
	"github.com/locatio-dev/locatio/internal/model"
)

var ErrEntryNotFound = errors.New("journal entry not found")

// Service stores journal entries in one CSV file per month under
// <repo>/YYYY/MM/journal.csv.
type Service struct {
	repoRoot string
	accounts AccountChecker
}

// NewService creates a journal Service. accounts may be nil.
func NewService(repoRoot string, accounts AccountChecker) *Service {
	return &Service{repoRoot: repoRoot, accounts: accounts}
}

// AddParams holds the fields of a new entry. The ID is assigned by Add.
type AddParams struct {
	UserID       string
	Type         model.EntryType
	Date         time.Time
	Designation  string
	Counterparty string
	AccountCode  string
	Amount       decimal.Decimal
	IsDeposit    bool
}

func (p AddParams) entry() model.JournalEntry {
	return model.JournalEntry{
		UserID:       p.UserID,
		Type:         p.Type,
		Date:         p.Date,
		Designation:  p.Designation,
		Counterparty: p.Counterparty,
		AccountCode:  p.AccountCode,
		Amount:       p.Amount,
		Currency:     Currency,
		IsDeposit:    p.IsDeposit,
	}
}

// Add validates and appends one entry to its month's journal.csv. Returns
// the stored entry with its ID.
func (s *Service) Add(params AddParams) (model.JournalEntry, error) {
	added, err := s.AddMany([]AddParams{params})
	if err != nil {
		return model.JournalEntry{}, err
	}
	return added[0], nil
}

// AddMany assigns IDs, validates each affected month as a whole and appends
// the entries. Nothing is written when any month fails validation.
func (s *Service) AddMany(params []AddParams) ([]model.JournalEntry, error) {
	type monthKey struct{ year, month int }
	var order []monthKey
	existing := make(map[monthKey][]model.JournalEntry)
	pending := make(map[monthKey][]model.JournalEntry)

	added := make([]model.JournalEntry, len(params))
	for i, p := range params {
		k := monthKey{p.Date.Year(), int(p.Date.Month())}
		if _, ok := existing[k]; !ok {
			entries, err := s.ReadMonth(k.year, k.month)
			if err != nil {
				return nil, err
			}
			existing[k] = entries
			order = append(order, k)
		}

		e := p.entry()
		e.ID = id.FormatEntryID(k.year, k.month, id.NextSeq(entryIDs(existing[k], pending[k]), k.year, k.month))
		pending[k] = append(pending[k], e)
		added[i] = e
	}

	for _, k := range order {
		all := append(slices.Clone(existing[k]), pending[k]...)
		if err := validationFailure(ValidateEntries(all, s.accounts, k.year, k.month)); err != nil {
			return nil, err
		}
	}

	for _, k := range order {
		if err := s.appendMonth(k.year, k.month, pending[k]); err != nil {
			return nil, err
		}
	}
	return added, nil
}

func entryIDs(groups ...[]model.JournalEntry) []string {
	var ids []string
	for _, g := range groups {
		for _, e := range g {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func validationFailure(verrs []ValidationError) error {
	if len(verrs) == 0 {
		return nil
	}
	msgs := make([]string, len(verrs))
	for i, ve := range verrs {
		msgs[i] = ve.Error()
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}

func (s *Service) appendMonth(year, month int, entries []model.JournalEntry) error {
	journalPath := s.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(journalPath), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(journalPath); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(journalPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	if err := AppendEntries(f, entries); err != nil {
		return fmt.Errorf("appending entries: %w", err)
	}
	return nil
}

// ReadMonth reads all entries for a given year/month.
func (s *Service) ReadMonth(year, month int) ([]model.JournalEntry, error) {
	path := s.monthPath(year, month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	return entries, nil
}

// ReadYear reads the twelve month files of a year.
func (s *Service) ReadYear(year int) ([]model.JournalEntry, error) {
	var all []model.JournalEntry
	for month := 1; month <= 12; month++ {
		entries, err := s.ReadMonth(year, month)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}
	return all, nil
}

// Years lists the years that have a journal directory, ascending.
func (s *Service) Years() ([]int, error) {
	dirEntries, err := os.ReadDir(s.repoRoot)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.repoRoot, err)
	}

	var years []int
	for _, d := range dirEntries {
		if !d.IsDir() || len(d.Name()) != 4 {
			continue
		}
		y, err := strconv.Atoi(d.Name())
		if err != nil {
			continue
		}
		years = append(years, y)
	}
	slices.Sort(years)
	return years, nil
}

// ReadAll reads every journal file of the repository, oldest first.
func (s *Service) ReadAll() ([]model.JournalEntry, error) {
	years, err := s.Years()
	if err != nil {
		return nil, err
	}
	var all []model.JournalEntry
	for _, y := range years {
		entries, err := s.ReadYear(y)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}
	return all, nil
}

// Get returns the entry with the given ID.
func (s *Service) Get(entryID string) (model.JournalEntry, error) {
	year, month, _, err := id.ParseEntryID(entryID)
	if err != nil {
		return model.JournalEntry{}, err
	}
	entries, err := s.ReadMonth(year, month)
	if err != nil {
		return model.JournalEntry{}, err
	}
	for _, e := range entries {
		if e.ID == entryID {
			return e, nil
		}
	}
	return model.JournalEntry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
}

// Update replaces stored entries by ID. IDs and dates cannot move between
// months; each touched month is validated and rewritten as a whole.
func (s *Service) Update(updated []model.JournalEntry) error {
	type monthKey struct{ year, month int }
	byMonth := make(map[monthKey]map[string]model.JournalEntry)
	var order []monthKey
	for _, e := range updated {
		year, month, _, err := id.ParseEntryID(e.ID)
		if err != nil {
			return err
		}
		k := monthKey{year, month}
		if byMonth[k] == nil {
			byMonth[k] = make(map[string]model.JournalEntry)
			order = append(order, k)
		}
		byMonth[k][e.ID] = e
	}

	rewritten := make(map[monthKey][]model.JournalEntry, len(order))
	for _, k := range order {
		entries, err := s.ReadMonth(k.year, k.month)
		if err != nil {
			return err
		}
		changes := byMonth[k]
		found := 0
		for i, e := range entries {
			if u, ok := changes[e.ID]; ok {
				entries[i] = u
				found++
			}
		}
		if found != len(changes) {
			for entryID := range changes {
				if !slices.ContainsFunc(entries, func(e model.JournalEntry) bool { return e.ID == entryID }) {
					return fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
				}
			}
		}
		if err := validationFailure(ValidateEntries(entries, s.accounts, k.year, k.month)); err != nil {
			return err
		}
		rewritten[k] = entries
	}

	for _, k := range order {
		if err := s.writeMonth(k.year, k.month, rewritten[k]); err != nil {
			return err
		}
	}
	return nil
}

// Reassign changes the account code of one entry and returns the previous
// code.
func (s *Service) Reassign(entryID, code string) (string, error) {
	e, err := s.Get(entryID)
	if err != nil {
		return "", err
	}
	old := e.AccountCode
	e.AccountCode = code
	if err := s.Update([]model.JournalEntry{e}); err != nil {
		return "", err
	}
	return old, nil
}

// writeMonth replaces a month file through a temporary file and rename.
func (s *Service) writeMonth(year, month int, entries []model.JournalEntry) error {
	path := s.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "journal-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp journal: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteEntries(tmp, entries); err != nil {
		tmp.Close()
		return fmt.Errorf("writing journal %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp journal: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing journal %s: %w", path, err)
	}
	return nil
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.repoRoot, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "journal.csv")
}
