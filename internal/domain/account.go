package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a ledger account: a human-assignable identifier, a unique
// display name and a balance that is only ever mutated through the
// transaction engine's locked read-modify-write path.
type Account struct {
	ID        string
	Username  string
	Email     string
	Balance   decimal.Decimal
	Role      Role
	Frozen    bool
	Locked    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplyDebit returns the balance after debiting amount.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the balance after crediting amount.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}

// LedgerStats is the aggregate view exposed to administrators.
type LedgerStats struct {
	Accounts     int64
	TotalBalance decimal.Decimal
	Transactions int64
}
