package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the side of a journal entry: purchases debit, sales credit.
type EntryType string

const (
	EntryTypePurchase EntryType = "purchase"
	EntryTypeSale     EntryType = "sale"
)

// Valid reports whether t is purchase or sale.
func (t EntryType) Valid() bool {
	return t == EntryTypePurchase || t == EntryTypeSale
}

// ParseEntryType converts a string to an EntryType.
func ParseEntryType(s string) (EntryType, bool) {
	t := EntryType(s)
	return t, t.Valid()
}

// JournalEntry is a single dated income or expense record.
type JournalEntry struct {
	ID           string
	UserID       string
	Type         EntryType
	Date         time.Time
	Designation  string
	Counterparty string
	AccountCode  string
	Amount       decimal.Decimal // always positive; Type carries the side
	Currency     string
	IsDeposit    bool // refundable tenant deposit, sales only
}

// Debit returns the amount on the debit side (zero for sales).
func (e JournalEntry) Debit() decimal.Decimal {
	if e.Type == EntryTypePurchase {
		return e.Amount
	}
	return decimal.Zero
}

// Credit returns the amount on the credit side (zero for purchases).
func (e JournalEntry) Credit() decimal.Decimal {
	if e.Type == EntryTypeSale {
		return e.Amount
	}
	return decimal.Zero
}
