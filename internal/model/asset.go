package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset is a depreciable fixed asset. Its schedule is always derived, never stored.
type Asset struct {
	ID              string
	UserID          string
	Label           string
	AmountHT        decimal.Decimal
	DurationYears   int
	AcquisitionDate time.Time
	AccountCode     string
}
