package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction represents a parsed bank statement row.
type BankTransaction struct {
	Date         time.Time
	Description  string
	Amount       decimal.Decimal // negative = debit from the account, positive = credit
	Counterparty string
	Reference    string
}
