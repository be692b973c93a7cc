package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a statement row by what kind of event it is.
// Only spend rows feed merchant/channel classification and RFM aggregation.
type TransactionType string

const (
	TypeSpend      TransactionType = "spend"
	TypeRepayment  TransactionType = "repayment"
	TypeFee        TransactionType = "fee"
	TypeRedemption TransactionType = "redemption"
	TypeRefund     TransactionType = "refund"
	TypeUnknown    TransactionType = "unknown"
)

// IsSpend reports whether the type counts toward spend aggregates.
func (t TransactionType) IsSpend() bool { return t == TypeSpend }

// BankRecord is the intermediate record a bank adapter produces from one
// raw statement row. It is consumed by the pipeline and discarded.
type BankRecord struct {
	Date         time.Time
	Description  string
	Amount       decimal.Decimal // spend positive, credit negative
	CardLastFour string
	CardName     string
	Institution  string
	Raw          string // original row text, kept for audit
}

// CanonicalTransaction is the pipeline's output unit. Immutable once
// assembled; corrections require re-running the pipeline on fixed input.
type CanonicalTransaction struct {
	ID             string
	Date           time.Time
	AccountKey     string
	RawDescription string
	Merchant       string // canonical display name after rewrite
	Category       string // canonical label, or CategoryUnclassified
	Channel        string // payment channel label, "" if not third-party
	Amount         decimal.Decimal
	Type           TransactionType
	Institution    string
}

// CategoryUnclassified is the fall-through bucket for descriptions no
// merchant rule matches.
const CategoryUnclassified = "unclassified"
