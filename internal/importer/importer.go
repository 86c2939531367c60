// Package importer turns bank statement exports into journal entries.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/locatio-dev/locatio/internal/guess"
	"github.com/locatio-dev/locatio/internal/journal"
	"github.com/locatio-dev/locatio/internal/model"
)

// Parser converts a bank CSV file into BankTransactions.
type Parser interface {
	Parse(r io.Reader) ([]model.BankTransaction, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&FrenchParser{})
	return r
}

// importDir is the subdirectory for import CSVs.
const importDir = "import"

// processedDir is the subdirectory for processed CSVs.
const processedDir = "import/processed"

// Scan returns CSV files in <repoRoot>/import/.
func Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, importDir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

var depositKeywords = []string{"depot de garantie", "caution"}

// Proposal is a journal entry derived from a bank transaction, with the
// reason its account code was chosen.
type Proposal struct {
	Params      journal.AddParams
	Reference   string
	GuessReason string
}

// ToEntries maps transactions onto journal entries for userID: debits
// become purchases, credits sales, and every entry gets a guessed account
// code. Zero-amount transactions are dropped.
func ToEntries(txns []model.BankTransaction, userID string) []Proposal {
	var out []Proposal
	for _, txn := range txns {
		if txn.Amount.IsZero() {
			continue
		}
		t := model.EntryTypeSale
		if txn.Amount.IsNegative() {
			t = model.EntryTypePurchase
		}
		deposit := t == model.EntryTypeSale && containsAny(fold(txn.Description), depositKeywords)
		g := guess.AccountCode(guess.Input{Type: t, IsDeposit: deposit, Designation: txn.Description})

		out = append(out, Proposal{
			Params: journal.AddParams{
				UserID:       userID,
				Type:         t,
				Date:         txn.Date,
				Designation:  txn.Description,
				Counterparty: txn.Counterparty,
				AccountCode:  g.Code,
				Amount:       txn.Amount.Abs(),
				IsDeposit:    deposit,
			},
			Reference:   txn.Reference,
			GuessReason: g.Reason,
		})
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
