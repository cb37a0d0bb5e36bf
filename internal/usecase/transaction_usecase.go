package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/internal/infrastructure/metrics"
	"github.com/kodbank/kodbank/internal/policy"
)

// TransactionUseCase is the transaction engine: it validates an operation
// against the limit policy, locks the accounts involved, mutates balances,
// appends the immutable record and the audit entries inside one unit of
// work, and commits. Any failure inside the unit rolls the whole unit
// back; financial mutations are never retried automatically.
type TransactionUseCase struct {
	txManager    TransactionManager
	accounts     AccountRepository
	transactions TransactionRepository
	audits       AuditRepository
	challenges   ChallengeStore
	notifier     Notifier
	refGen       RefGenerator
	limits       policy.Limits
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	now          func() time.Time
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	accounts AccountRepository,
	transactions TransactionRepository,
	audits AuditRepository,
	challenges ChallengeStore,
	notifier Notifier,
	refGen RefGenerator,
	limits policy.Limits,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager:    txManager,
		accounts:     accounts,
		transactions: transactions,
		audits:       audits,
		challenges:   challenges,
		notifier:     notifier,
		refGen:       refGen,
		limits:       limits,
		metrics:      metrics,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetNow overrides the clock. Test hook.
func (uc *TransactionUseCase) SetNow(now func() time.Time) {
	uc.now = now
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	AccountID string
	Amount    decimal.Decimal
	Origin    string
}

// WithdrawInput represents input for a withdrawal.
type WithdrawInput struct {
	AccountID string
	Amount    decimal.Decimal
	Origin    string
}

// TransferInput represents input for a transfer. Receiver matches the
// receiving account's id or username, case-insensitively.
type TransferInput struct {
	SenderID string
	Receiver string
	Amount   decimal.Decimal
	OTP      string
	Origin   string
}

// TransactionResult is the outcome of a committed operation.
type TransactionResult struct {
	Seq        int64
	RefCode    string
	NewBalance decimal.Decimal
}

// Deposit credits an account. Frozen accounts may still receive deposits.
func (uc *TransactionUseCase) Deposit(ctx context.Context, input DepositInput) (*TransactionResult, error) {
	if err := uc.limits.CheckDeposit(input.Amount); err != nil {
		uc.countRejection(err)
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accounts.GetForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	newBalance := account.ApplyCredit(input.Amount)

	if err := uc.accounts.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return nil, err
	}

	record := &domain.Transaction{
		RefCode:      uc.refGen.Generate(),
		ReceiverID:   &account.ID,
		Amount:       input.Amount,
		Kind:         domain.KindDeposit,
		BalanceAfter: newBalance,
		Status:       domain.StatusSuccess,
		Description:  fmt.Sprintf("Deposit of %s", input.Amount),
		CreatedAt:    now,
	}

	seq, err := uc.transactions.Append(ctx, tx, record)
	if err != nil {
		return nil, err
	}

	uc.audit(ctx, tx, account.ID, fmt.Sprintf("Credit: %s", input.Amount), input.Origin)

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.Deposits.Inc()
		uc.metrics.TransactionAmount.WithLabelValues(string(domain.KindDeposit)).Observe(input.Amount.InexactFloat64())
	}

	uc.logger.Info().
		Str("account_id", account.ID).
		Str("ref_code", record.RefCode).
		Str("amount", input.Amount.String()).
		Msg("deposit committed")

	return &TransactionResult{Seq: seq, RefCode: record.RefCode, NewBalance: newBalance}, nil
}

// Withdraw debits an account. Bounds are checked before the unit begins;
// the frozen flag and sufficiency are re-validated against the freshly
// locked balance.
func (uc *TransactionUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*TransactionResult, error) {
	if err := uc.limits.CheckWithdrawalBounds(input.Amount); err != nil {
		uc.countRejection(err)
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accounts.GetForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if err := uc.limits.CheckWithdrawal(input.Amount, account.Balance, account.Frozen); err != nil {
		uc.countRejection(err)
		return nil, err
	}

	now := uc.now()
	newBalance := account.ApplyDebit(input.Amount)

	if err := uc.accounts.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return nil, err
	}

	record := &domain.Transaction{
		RefCode:      uc.refGen.Generate(),
		SenderID:     &account.ID,
		Amount:       input.Amount,
		Kind:         domain.KindWithdraw,
		BalanceAfter: newBalance,
		Status:       domain.StatusSuccess,
		Description:  fmt.Sprintf("Withdrawal of %s", input.Amount),
		CreatedAt:    now,
	}

	seq, err := uc.transactions.Append(ctx, tx, record)
	if err != nil {
		return nil, err
	}

	uc.audit(ctx, tx, account.ID, fmt.Sprintf("Debit: %s", input.Amount), input.Origin)

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.Withdrawals.Inc()
		uc.metrics.TransactionAmount.WithLabelValues(string(domain.KindWithdraw)).Observe(input.Amount.InexactFloat64())
	}

	uc.logger.Info().
		Str("account_id", account.ID).
		Str("ref_code", record.RefCode).
		Str("amount", input.Amount.String()).
		Msg("withdrawal committed")

	return &TransactionResult{Seq: seq, RefCode: record.RefCode, NewBalance: newBalance}, nil
}

// Transfer moves money between two accounts. The receiver is resolved
// before locking and confirmed again under lock; step-up verification
// happens strictly before the unit begins; both accounts are locked in
// ascending id order; the daily cap is evaluated only after the sender
// lock is held, so concurrent transfers from one sender serialize and the
// second sees the first's committed total.
func (uc *TransactionUseCase) Transfer(ctx context.Context, input TransferInput) (*TransactionResult, error) {
	if err := uc.limits.CheckTransferBounds(input.Amount); err != nil {
		uc.countRejection(err)
		return nil, err
	}

	receiver, err := uc.accounts.Resolve(ctx, input.Receiver)
	if err != nil {
		// Only an actual miss becomes a recipient error; a failing store
		// must stay distinguishable from a policy rejection.
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrRecipientNotFound
		}

		return nil, err
	}

	if receiver.ID == input.SenderID {
		uc.countRejection(domain.ErrSelfTransfer)
		return nil, domain.ErrSelfTransfer
	}

	if uc.limits.RequiresStepUp(input.Amount) {
		if input.OTP == "" {
			uc.countRejection(domain.ErrStepUpRequired)
			return nil, domain.ErrStepUpRequired
		}

		if err := uc.challenges.VerifyAndConsume(ctx, input.SenderID, input.OTP); err != nil {
			if uc.metrics != nil {
				uc.metrics.ChallengesVerified.WithLabelValues("rejected").Inc()
			}

			return nil, err
		}

		if uc.metrics != nil {
			uc.metrics.ChallengesVerified.WithLabelValues("ok").Inc()
		}
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := []string{input.SenderID, receiver.ID}
	sort.Strings(ids)

	locked, err := uc.accounts.GetManyForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	var sender, recv *domain.Account
	for _, a := range locked {
		switch a.ID {
		case input.SenderID:
			sender = a
		case receiver.ID:
			recv = a
		}
	}

	if sender == nil {
		return nil, domain.ErrAccountNotFound
	}

	// The account set can change between resolution and lock acquisition.
	if recv == nil {
		return nil, domain.ErrRecipientNotFound
	}

	now := uc.now()

	dailyTotal, err := uc.transactions.SumTransfersSince(ctx, tx, sender.ID, startOfDay(now))
	if err != nil {
		return nil, err
	}

	if err := uc.limits.CheckTransfer(input.Amount, sender.Balance, sender.Frozen, dailyTotal); err != nil {
		uc.countRejection(err)
		return nil, err
	}

	senderBalance := sender.ApplyDebit(input.Amount)
	receiverBalance := recv.ApplyCredit(input.Amount)

	if err := uc.accounts.UpdateBalance(ctx, tx, sender.ID, senderBalance, now); err != nil {
		return nil, err
	}

	if err := uc.accounts.UpdateBalance(ctx, tx, recv.ID, receiverBalance, now); err != nil {
		return nil, err
	}

	record := &domain.Transaction{
		RefCode:      uc.refGen.Generate(),
		SenderID:     &sender.ID,
		ReceiverID:   &recv.ID,
		Amount:       input.Amount,
		Kind:         domain.KindTransfer,
		BalanceAfter: senderBalance,
		Status:       domain.StatusSuccess,
		Description:  fmt.Sprintf("Transfer to %s", recv.Username),
		CreatedAt:    now,
	}

	seq, err := uc.transactions.Append(ctx, tx, record)
	if err != nil {
		return nil, err
	}

	uc.audit(ctx, tx, sender.ID, fmt.Sprintf("Transfer out: %s to %s", input.Amount, recv.Username), input.Origin)
	uc.audit(ctx, tx, recv.ID, fmt.Sprintf("Transfer in: %s from %s", input.Amount, sender.Username), input.Origin)

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.Transfers.Inc()
		uc.metrics.TransactionAmount.WithLabelValues(string(domain.KindTransfer)).Observe(input.Amount.InexactFloat64())
	}

	uc.logger.Info().
		Str("sender_id", sender.ID).
		Str("receiver_id", recv.ID).
		Str("ref_code", record.RefCode).
		Str("amount", input.Amount.String()).
		Msg("transfer committed")

	return &TransactionResult{Seq: seq, RefCode: record.RefCode, NewBalance: senderBalance}, nil
}

// RequestChallengeInput represents input for a step-up challenge request.
type RequestChallengeInput struct {
	AccountID string
	Amount    decimal.Decimal
}

// RequestChallenge issues a one-time code for an upcoming high-value
// transfer and hands it to the notifier. The code is never part of the
// result.
func (uc *TransactionUseCase) RequestChallenge(ctx context.Context, input RequestChallengeInput) error {
	if !uc.limits.RequiresStepUp(input.Amount) {
		return domain.ErrChallengeNotRequired
	}

	if _, err := uc.accounts.GetByID(ctx, input.AccountID); err != nil {
		return err
	}

	challenge, err := uc.challenges.Issue(ctx, input.AccountID)
	if err != nil {
		return err
	}

	uc.notifier.ChallengeIssued(ctx, challenge.AccountID, challenge.Code, challenge.ExpiresAt)

	if uc.metrics != nil {
		uc.metrics.ChallengesIssued.Inc()
	}

	return nil
}

// HistoryInput represents input for a history query.
type HistoryInput struct {
	AccountID string
	Filter    domain.HistoryFilter
	Page      int
	PageSize  int
}

// HistoryResult is one page of an account's transaction history.
type HistoryResult struct {
	Records  []*domain.TransactionDetail
	Total    int64
	Page     int
	PageSize int
}

// History returns the account's transactions newest first, with resolved
// counterparty names.
func (uc *TransactionUseCase) History(ctx context.Context, input HistoryInput) (*HistoryResult, error) {
	if !input.Filter.IsValid() {
		return nil, domain.ErrInvalidHistoryFilter
	}

	if input.Page < 1 {
		input.Page = 1
	}

	if input.PageSize <= 0 {
		input.PageSize = DefaultPageSize
	}

	if input.PageSize > MaxPageSize {
		input.PageSize = MaxPageSize
	}

	records, total, err := uc.transactions.History(ctx, HistoryQuery{
		AccountID: input.AccountID,
		Filter:    input.Filter,
		Limit:     input.PageSize,
		Offset:    (input.Page - 1) * input.PageSize,
	})
	if err != nil {
		return nil, err
	}

	return &HistoryResult{
		Records:  records,
		Total:    total,
		Page:     input.Page,
		PageSize: input.PageSize,
	}, nil
}

// audit records an action inside the unit of work. Failures are logged
// and swallowed: a lost audit entry never fails the financial commit.
func (uc *TransactionUseCase) audit(ctx context.Context, tx Transaction, accountID, action, origin string) {
	entry := &domain.AuditEntry{
		AccountID: &accountID,
		Action:    action,
		IPAddress: origin,
		CreatedAt: uc.now(),
	}

	var err error
	if tx != nil {
		err = uc.audits.CreateTx(ctx, tx, entry)
	} else {
		err = uc.audits.Create(ctx, entry)
	}

	if err != nil {
		if uc.metrics != nil {
			uc.metrics.AuditWriteFailures.Inc()
		}

		uc.logger.Warn().Err(err).
			Str("account_id", accountID).
			Str("action", action).
			Msg("audit write failed")
	}
}

// countRejection records a policy rejection by reason.
func (uc *TransactionUseCase) countRejection(err error) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.PolicyRejections.WithLabelValues(rejectionReason(err)).Inc()
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrWithdrawalTooSmall):
		return "withdrawal_too_small"
	case errors.Is(err, domain.ErrWithdrawalCapExceeded):
		return "withdrawal_cap"
	case errors.Is(err, domain.ErrTransferCapExceeded):
		return "transfer_cap"
	case errors.Is(err, domain.ErrDailyCapExceeded):
		return "daily_cap"
	case errors.Is(err, domain.ErrMinimumBalance):
		return "minimum_balance"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrAccountFrozen):
		return "frozen"
	case errors.Is(err, domain.ErrSelfTransfer):
		return "self_transfer"
	case errors.Is(err, domain.ErrStepUpRequired):
		return "step_up_required"
	default:
		return "other"
	}
}

// startOfDay truncates t to the start of its calendar day in UTC; the
// daily cap window is a calendar day, not a rolling 24 hours.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
