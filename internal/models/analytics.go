package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerTotal is one (type, status) sum of ledger amounts
type LedgerTotal struct {
	Type   string          `json:"type"`
	Status string          `json:"status"`
	Total  decimal.Decimal `json:"total"`
}

// ReceivableBucket groups open invoices by status
type ReceivableBucket struct {
	Status string          `json:"status"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// LedgerSummary is a tenant's cash position for one period
type LedgerSummary struct {
	Period              string             `json:"period"`
	From                time.Time          `json:"from"`
	To                  time.Time          `json:"to"`
	IncomePaid          decimal.Decimal    `json:"income_paid"`
	IncomePending       decimal.Decimal    `json:"income_pending"`
	ExpensePaid         decimal.Decimal    `json:"expense_paid"`
	ExpensePending      decimal.Decimal    `json:"expense_pending"`
	Net                 decimal.Decimal    `json:"net"`
	PreviousNet         decimal.Decimal    `json:"previous_net"`
	NetChangePercentage float64            `json:"net_change_percentage"`
	Receivables         []ReceivableBucket `json:"receivables"`
}
