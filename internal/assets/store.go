// Package assets stores depreciable assets in <repo>/assets.csv.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/locatio-dev/locatio/internal/amortization"
	"github.com/locatio-dev/locatio/internal/model"
)

// DefaultAccountCode is used when an asset is added without one.
const DefaultAccountCode = "2184"

var (
	ErrNotFound     = errors.New("asset not found")
	ErrEmptyLabel   = errors.New("asset label is required")
	ErrInvalidAsset = errors.New("invalid asset")
)

// Store holds the assets of a repository.
type Store struct {
	path   string
	assets []model.Asset
}

// Open reads <repoRoot>/assets.csv. A missing file is an empty store.
func Open(repoRoot string) (*Store, error) {
	s := &Store{path: filepath.Join(repoRoot, "assets.csv")}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening assets: %w", err)
	}
	defer f.Close()

	s.assets, err = ReadAssets(f)
	if err != nil {
		return nil, fmt.Errorf("reading assets %s: %w", s.path, err)
	}
	return s, nil
}

// AddParams holds the fields of a new asset.
type AddParams struct {
	UserID          string
	Label           string
	AmountHT        decimal.Decimal
	DurationYears   int
	AcquisitionDate time.Time
	AccountCode     string
}

// Add validates and records a new asset, then saves the file.
func (s *Store) Add(p AddParams) (model.Asset, error) {
	label := strings.TrimSpace(p.Label)
	if label == "" {
		return model.Asset{}, ErrEmptyLabel
	}
	if p.AcquisitionDate.IsZero() {
		return model.Asset{}, fmt.Errorf("%w: acquisition date required", ErrInvalidAsset)
	}
	// The schedule must be computable.
	if _, err := amortization.ComputeLinear(p.AmountHT, p.DurationYears, p.AcquisitionDate); err != nil {
		return model.Asset{}, fmt.Errorf("%w: %w", ErrInvalidAsset, err)
	}

	code := strings.TrimSpace(p.AccountCode)
	if code == "" {
		code = DefaultAccountCode
	}
	a := model.Asset{
		ID:              uuid.NewString(),
		UserID:          p.UserID,
		Label:           label,
		AmountHT:        p.AmountHT,
		DurationYears:   p.DurationYears,
		AcquisitionDate: p.AcquisitionDate,
		AccountCode:     code,
	}
	s.assets = append(s.assets, a)
	if err := s.Save(); err != nil {
		s.assets = s.assets[:len(s.assets)-1]
		return model.Asset{}, err
	}
	return a, nil
}

// All returns every asset in acquisition order.
func (s *Store) All() []model.Asset {
	out := slices.Clone(s.assets)
	slices.SortStableFunc(out, func(a, b model.Asset) int {
		return a.AcquisitionDate.Compare(b.AcquisitionDate)
	})
	return out
}

// Get returns an asset by ID.
func (s *Store) Get(assetID string) (model.Asset, error) {
	for _, a := range s.assets {
		if a.ID == assetID {
			return a, nil
		}
	}
	return model.Asset{}, fmt.Errorf("%w: %s", ErrNotFound, assetID)
}

// Save rewrites assets.csv.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating assets dir: %w", err)
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("creating assets file: %w", err)
	}
	defer f.Close()

	if err := WriteAssets(f, s.assets); err != nil {
		return fmt.Errorf("writing assets: %w", err)
	}
	return nil
}
