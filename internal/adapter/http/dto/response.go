package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/internal/usecase"
)

// TransactionResponse is the outcome of a committed operation.
type TransactionResponse struct {
	Seq     int64           `json:"seq"`
	RefCode string          `json:"ref_code"`
	Balance decimal.Decimal `json:"balance"`
}

// TransactionFromResult converts a use case result to a response.
func TransactionFromResult(r *usecase.TransactionResult) *TransactionResponse {
	return &TransactionResponse{
		Seq:     r.Seq,
		RefCode: r.RefCode,
		Balance: r.NewBalance,
	}
}

// TransactionDetailResponse represents one ledger record in API
// responses.
type TransactionDetailResponse struct {
	Seq          int64           `json:"seq"`
	RefCode      string          `json:"ref_code"`
	SenderID     *string         `json:"sender_id,omitempty"`
	ReceiverID   *string         `json:"receiver_id,omitempty"`
	SenderName   string          `json:"sender_name,omitempty"`
	ReceiverName string          `json:"receiver_name,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Kind         string          `json:"kind"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Status       string          `json:"status"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
}

// DetailFromDomain converts a domain record to a response.
func DetailFromDomain(d *domain.TransactionDetail) *TransactionDetailResponse {
	return &TransactionDetailResponse{
		Seq:          d.Seq,
		RefCode:      d.RefCode,
		SenderID:     d.SenderID,
		ReceiverID:   d.ReceiverID,
		SenderName:   d.SenderName,
		ReceiverName: d.ReceiverName,
		Amount:       d.Amount,
		Kind:         string(d.Kind),
		BalanceAfter: d.BalanceAfter,
		Status:       string(d.Status),
		Description:  d.Description,
		CreatedAt:    d.CreatedAt,
	}
}

// DetailsFromDomain converts domain records to responses.
func DetailsFromDomain(details []*domain.TransactionDetail) []*TransactionDetailResponse {
	result := make([]*TransactionDetailResponse, len(details))
	for i, d := range details {
		result[i] = DetailFromDomain(d)
	}
	return result
}

// HistoryResponse is one page of an account's transaction history.
type HistoryResponse struct {
	Records  []*TransactionDetailResponse `json:"records"`
	Total    int64                        `json:"total"`
	Page     int                          `json:"page"`
	PageSize int                          `json:"page_size"`
}

// HistoryFromResult converts a use case history result to a response.
func HistoryFromResult(r *usecase.HistoryResult) *HistoryResponse {
	return &HistoryResponse{
		Records:  DetailsFromDomain(r.Records),
		Total:    r.Total,
		Page:     r.Page,
		PageSize: r.PageSize,
	}
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Balance   decimal.Decimal `json:"balance"`
	Role      string          `json:"role"`
	Frozen    bool            `json:"frozen"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Balance:   a.Balance,
		Role:      string(a.Role),
		Frozen:    a.Frozen,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// StatsResponse represents ledger-wide aggregates.
type StatsResponse struct {
	Accounts     int64           `json:"accounts"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	Transactions int64           `json:"transactions"`
}

// StatsFromDomain converts domain stats to a response.
func StatsFromDomain(s *domain.LedgerStats) *StatsResponse {
	return &StatsResponse{
		Accounts:     s.Accounts,
		TotalBalance: s.TotalBalance,
		Transactions: s.Transactions,
	}
}

// AuditEntryResponse represents an audit entry in API responses.
type AuditEntryResponse struct {
	ID        int64     `json:"id"`
	AccountID *string   `json:"account_id,omitempty"`
	Action    string    `json:"action"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditEntriesFromDomain converts domain audit entries to responses.
func AuditEntriesFromDomain(entries []*domain.AuditEntry) []*AuditEntryResponse {
	result := make([]*AuditEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = &AuditEntryResponse{
			ID:        e.ID,
			AccountID: e.AccountID,
			Action:    e.Action,
			IPAddress: e.IPAddress,
			CreatedAt: e.CreatedAt,
		}
	}
	return result
}

// MessageResponse is a plain acknowledgement. The step-up code itself
// travels out of band, never in this body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
