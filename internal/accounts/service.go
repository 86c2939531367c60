package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/locatio-dev/locatio/internal/model"
)

var (
	ErrNotFound      = errors.New("account not found")
	ErrGlobalAccount = errors.New("global accounts cannot be modified")
	ErrAccountInUse  = errors.New("account is referenced by journal entries")
	ErrDuplicateCode = errors.New("account code already exists")
	ErrInvalid       = errors.New("invalid account")
)

// Service holds the ledger accounts of a project: the global chart and the
// accounts created for a single property.
type Service struct {
	accounts []model.LedgerAccount
	byID     map[string]int
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.LedgerAccount) *Service {
	s := &Service{accounts: slices.Clone(accounts)}
	s.reindex()
	return s
}

func (s *Service) reindex() {
	s.byID = make(map[string]int, len(s.accounts))
	for i, a := range s.accounts {
		s.byID[a.ID] = i
	}
}

func chartPath(repoRoot string) string {
	return filepath.Join(repoRoot, "accounts", "ledger-accounts.csv")
}

// Load reads accounts/ledger-accounts.csv from a repo root and returns a Service.
func Load(repoRoot string) (*Service, error) {
	f, err := os.Open(chartPath(repoRoot))
	if err != nil {
		return nil, fmt.Errorf("opening ledger accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger accounts: %w", err)
	}
	return NewService(accts), nil
}

// Save writes the accounts to accounts/ledger-accounts.csv.
func (s *Service) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, "accounts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	f, err := os.Create(chartPath(repoRoot))
	if err != nil {
		return fmt.Errorf("creating ledger accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing ledger accounts: %w", err)
	}
	return nil
}

// All returns a copy of every account.
func (s *Service) All() []model.LedgerAccount {
	return slices.Clone(s.accounts)
}

// Get returns an account by ID.
func (s *Service) Get(id string) (model.LedgerAccount, bool) {
	i, ok := s.byID[id]
	if !ok {
		return model.LedgerAccount{}, false
	}
	return s.accounts[i], true
}

// ForProperty returns the global accounts followed by those of propertyID,
// each group in code order.
func (s *Service) ForProperty(propertyID string) []model.LedgerAccount {
	var global, own []model.LedgerAccount
	for _, a := range s.accounts {
		switch {
		case a.IsGlobal():
			global = append(global, a)
		case propertyID != "" && *a.PropertyID == propertyID:
			own = append(own, a)
		}
	}
	byCode := func(a, b model.LedgerAccount) int { return strings.Compare(a.Code, b.Code) }
	slices.SortFunc(global, byCode)
	slices.SortFunc(own, byCode)
	return append(global, own...)
}

// ByKind returns all accounts of the given kind.
func (s *Service) ByKind(kind model.AccountKind) []model.LedgerAccount {
	var result []model.LedgerAccount
	for _, a := range s.accounts {
		if a.Kind == kind {
			result = append(result, a)
		}
	}
	return result
}

// Add creates an editable account for a property. The code must be unique
// among the global accounts and that property's accounts.
func (s *Service) Add(propertyID, code, label string, kind model.AccountKind) (model.LedgerAccount, error) {
	code = strings.TrimSpace(code)
	switch {
	case propertyID == "":
		return model.LedgerAccount{}, fmt.Errorf("%w: property id required", ErrGlobalAccount)
	case code == "":
		return model.LedgerAccount{}, fmt.Errorf("%w: empty code", ErrInvalid)
	case !kind.Valid():
		return model.LedgerAccount{}, fmt.Errorf("%w: kind %q", ErrInvalid, kind)
	}
	for _, a := range s.ForProperty(propertyID) {
		if a.Code == code {
			return model.LedgerAccount{}, fmt.Errorf("%w: %s", ErrDuplicateCode, code)
		}
	}

	pid := propertyID
	acct := model.LedgerAccount{
		ID:         uuid.NewString(),
		Code:       code,
		Label:      label,
		Kind:       kind,
		PropertyID: &pid,
		IsEditable: true,
	}
	s.accounts = append(s.accounts, acct)
	s.byID[acct.ID] = len(s.accounts) - 1
	return acct, nil
}

// CheckModifiable returns an error unless the account may be edited or
// deleted: it must belong to a property and no entry may reference its code.
func (s *Service) CheckModifiable(id string, entries []model.JournalEntry) error {
	acct, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if acct.IsGlobal() || !acct.IsEditable {
		return fmt.Errorf("%w: %s", ErrGlobalAccount, acct.Code)
	}
	n := 0
	for _, e := range entries {
		if e.AccountCode == acct.Code {
			n++
		}
	}
	if n > 0 {
		return fmt.Errorf("%w: %s (%d entries)", ErrAccountInUse, acct.Code, n)
	}
	return nil
}

// Update changes the label and kind of a property account.
func (s *Service) Update(id, label string, kind model.AccountKind, entries []model.JournalEntry) error {
	if err := s.CheckModifiable(id, entries); err != nil {
		return err
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: kind %q", ErrInvalid, kind)
	}
	i := s.byID[id]
	s.accounts[i].Label = label
	s.accounts[i].Kind = kind
	return nil
}

// Delete removes a property account.
func (s *Service) Delete(id string, entries []model.JournalEntry) error {
	if err := s.CheckModifiable(id, entries); err != nil {
		return err
	}
	s.accounts = slices.Delete(s.accounts, s.byID[id], s.byID[id]+1)
	s.reindex()
	return nil
}
