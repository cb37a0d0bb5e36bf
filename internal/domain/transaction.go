package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the closed set of transaction kinds.
type Kind string

const (
	KindDeposit  Kind = "DEPOSIT"
	KindWithdraw Kind = "WITHDRAW"
	KindTransfer Kind = "TRANSFER"
)

var validKinds = map[Kind]bool{
	KindDeposit:  true,
	KindWithdraw: true,
	KindTransfer: true,
}

// IsValid reports whether k is a known transaction kind.
func (k Kind) IsValid() bool {
	return validKinds[k]
}

// Status is the settlement status of a transaction record.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
	StatusPending Status = "PENDING"
)

// Transaction is an immutable ledger record. It is written exactly once,
// inside the same unit of work as the balance mutation it represents, and
// is never updated in place; corrections happen via new compensating
// records.
type Transaction struct {
	Seq          int64
	RefCode      string
	SenderID     *string
	ReceiverID   *string
	Amount       decimal.Decimal
	Kind         Kind
	BalanceAfter decimal.Decimal
	Status       Status
	Description  string
	CreatedAt    time.Time
}

// TransactionDetail is the read model returned by history queries: the
// record plus resolved counterparty display names.
type TransactionDetail struct {
	Transaction

	SenderName   string
	ReceiverName string
}

// HistoryFilter narrows a history query.
type HistoryFilter string

const (
	FilterAll      HistoryFilter = ""
	FilterDeposit  HistoryFilter = "DEPOSIT"
	FilterWithdraw HistoryFilter = "WITHDRAW"
	FilterTransfer HistoryFilter = "TRANSFER"
	FilterSent     HistoryFilter = "SENT"
	FilterReceived HistoryFilter = "RECEIVED"
)

var validFilters = map[HistoryFilter]bool{
	FilterAll:      true,
	FilterDeposit:  true,
	FilterWithdraw: true,
	FilterTransfer: true,
	FilterSent:     true,
	FilterReceived: true,
}

// IsValid reports whether f is a known history filter.
func (f HistoryFilter) IsValid() bool {
	return validFilters[f]
}
