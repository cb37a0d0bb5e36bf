// Package mocks provides hand-written in-memory fakes for the engine's
// store interfaces. Unlike simple stub maps, Ledger preserves the two
// semantics the engine's correctness arguments rest on: GetManyForUpdate
// blocks on per-account locks until the holding unit commits or rolls
// back, and staged writes become visible to reads only after commit.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/internal/usecase"
)

// Ledger is the shared in-memory state behind the per-interface fakes.
// It implements usecase.TransactionManager; AccountRepo, TransactionRepo
// and AuditRepo are views over it.
type Ledger struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	records  []*domain.Transaction
	audits   []*domain.AuditEntry
	locks    map[string]*sync.Mutex
	seq      int64

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

// NewLedger creates an empty fake ledger.
func NewLedger() *Ledger {
	return &Ledger{
		accounts: make(map[string]*domain.Account),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Accounts returns the AccountRepository view.
func (l *Ledger) Accounts() *AccountRepo { return &AccountRepo{l: l} }

// Transactions returns the TransactionRepository view.
func (l *Ledger) Transactions() *TransactionRepo { return &TransactionRepo{l: l} }

// Audits returns the AuditRepository view.
func (l *Ledger) Audits() *AuditRepo { return &AuditRepo{l: l} }

// SeedAccount adds an account to the committed state.
func (l *Ledger) SeedAccount(account *domain.Account) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cp := *account
	l.accounts[account.ID] = &cp
}

// SeedRecord appends a record directly to the committed log, assigning
// the next sequence id.
func (l *Ledger) SeedRecord(record *domain.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	cp := *record
	cp.Seq = l.seq
	l.records = append(l.records, &cp)
}

// Records returns a snapshot of the committed transaction log.
func (l *Ledger) Records() []*domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*domain.Transaction, len(l.records))
	copy(out, l.records)

	return out
}

// AuditEntries returns a snapshot of the committed audit log.
func (l *Ledger) AuditEntries() []*domain.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*domain.AuditEntry, len(l.audits))
	copy(out, l.audits)

	return out
}

// Balance returns the committed balance of an account.
func (l *Ledger) Balance(id string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	if a, ok := l.accounts[id]; ok {
		return a.Balance
	}

	return decimal.Zero
}

func (l *Ledger) lockFor(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}

	return m
}

func (l *Ledger) exists(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.accounts[id]

	return ok
}

func (l *Ledger) get(id string) (*domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if a, ok := l.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}

	return nil, domain.ErrAccountNotFound
}

// Begin starts a new fake unit of work.
func (l *Ledger) Begin(ctx context.Context) (usecase.Transaction, error) {
	if l.BeginFunc != nil {
		return l.BeginFunc(ctx)
	}

	return &Tx{ledger: l, balances: make(map[string]decimal.Decimal)}, nil
}

// Tx is a fake unit of work: balance writes, appends and audit entries
// stage on the Tx and apply atomically on Commit.
type Tx struct {
	ledger   *Ledger
	mu       sync.Mutex
	held     []string
	balances map[string]decimal.Decimal
	appended []*domain.Transaction
	audits   []*domain.AuditEntry
	done     bool
}

// Commit applies all staged writes and releases the held locks.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return nil
	}
	t.done = true

	t.ledger.mu.Lock()
	for id, balance := range t.balances {
		if a, ok := t.ledger.accounts[id]; ok {
			a.Balance = balance
		}
	}
	t.ledger.records = append(t.ledger.records, t.appended...)
	t.ledger.audits = append(t.ledger.audits, t.audits...)
	t.ledger.mu.Unlock()

	t.release()

	return nil
}

// Rollback discards staged writes and releases the held locks. Calling it
// after Commit is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return nil
	}
	t.done = true

	t.release()

	return nil
}

func (t *Tx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.ledger.lockFor(t.held[i]).Unlock()
	}
	t.held = nil
}

func (t *Tx) acquire(id string) {
	t.ledger.lockFor(id).Lock()

	t.mu.Lock()
	t.held = append(t.held, id)
	t.mu.Unlock()
}

// AccountRepo is the fake AccountRepository.
type AccountRepo struct {
	l *Ledger

	ResolveFunc       func(ctx context.Context, identifier string) (*domain.Account, error)
	UpdateBalanceFunc func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.l.get(id)
}

func (r *AccountRepo) Resolve(ctx context.Context, identifier string) (*domain.Account, error) {
	if r.ResolveFunc != nil {
		return r.ResolveFunc(ctx, identifier)
	}

	r.l.mu.Lock()
	defer r.l.mu.Unlock()

	needle := strings.ToUpper(strings.TrimSpace(identifier))
	for _, a := range r.l.accounts {
		if strings.ToUpper(a.ID) == needle || strings.ToUpper(a.Username) == needle {
			cp := *a
			return &cp, nil
		}
	}

	return nil, domain.ErrAccountNotFound
}

func (r *AccountRepo) GetForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if !r.l.exists(id) {
		return nil, domain.ErrAccountNotFound
	}

	tx.(*Tx).acquire(id)

	return r.l.get(id)
}

// GetManyForUpdate locks existing accounts in ascending id order and
// returns their committed state; missing ids are silently skipped, as a
// row-locking SELECT would.
func (r *AccountRepo) GetManyForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	t := tx.(*Tx)

	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	var out []*domain.Account
	for _, id := range sorted {
		if !r.l.exists(id) {
			continue
		}

		t.acquire(id)

		a, err := r.l.get(id)
		if err != nil {
			return nil, err
		}

		out = append(out, a)
	}

	return out, nil
}

func (r *AccountRepo) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if r.UpdateBalanceFunc != nil {
		return r.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}

	t := tx.(*Tx)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[id] = balance

	return nil
}

func (r *AccountRepo) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()

	var out []*domain.Account
	for _, a := range r.l.accounts {
		cp := *a
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if offset >= len(out) {
		return nil, nil
	}

	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *AccountRepo) SetFrozen(ctx context.Context, id string, frozen bool) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()

	a, ok := r.l.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Frozen = frozen

	return nil
}

func (r *AccountRepo) SetRole(ctx context.Context, id string, role domain.Role) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()

	a, ok := r.l.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Role = role

	return nil
}

func (r *AccountRepo) SetBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()

	a, ok := r.l.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Balance = balance

	return nil
}

func (r *AccountRepo) Stats(ctx context.Context) (*domain.LedgerStats, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()

	total := decimal.Zero
	for _, a := range r.l.accounts {
		total = total.Add(a.Balance)
	}

	return &domain.LedgerStats{
		Accounts:     int64(len(r.l.accounts)),
		TotalBalance: total,
		Transactions: int64(len(r.l.records)),
	}, nil
}

// TransactionRepo is the fake TransactionRepository.
type TransactionRepo struct {
	l *Ledger

	AppendFunc func(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) (int64, error)
}

// Append stages a record on the unit. The sequence id is assigned
// immediately and burned on rollback, like a database sequence.
func (r *TransactionRepo) Append(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) (int64, error) {
	if r.AppendFunc != nil {
		return r.AppendFunc(ctx, tx, record)
	}

	t := tx.(*Tx)

	r.l.mu.Lock()
	r.l.seq++
	seq := r.l.seq
	r.l.mu.Unlock()

	cp := *record
	cp.Seq = seq

	t.mu.Lock()
	t.appended = append(t.appended, &cp)
	t.mu.Unlock()

	return seq, nil
}

// SumTransfersSince aggregates committed TRANSFER records only; writes
// staged on any open unit are invisible.
func (r *TransactionRepo) SumTransfersSince(ctx context.Context, tx usecase.Transaction, senderID string, since time.Time) (decimal.Decimal, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()

	total := decimal.Zero
	for _, rec := range r.l.records {
		if rec.Kind != domain.KindTransfer || rec.SenderID == nil || *rec.SenderID != senderID {
			continue
		}

		if rec.CreatedAt.Before(since) {
			continue
		}

		total = total.Add(rec.Amount)
	}

	return total, nil
}

// History returns committed records for the account, newest first.
func (r *TransactionRepo) History(ctx context.Context, q usecase.HistoryQuery) ([]*domain.TransactionDetail, int64, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()

	var matched []*domain.TransactionDetail
	for _, rec := range r.l.records {
		if !matches(rec, q.AccountID, q.Filter) {
			continue
		}

		matched = append(matched, r.detail(rec))
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Seq > matched[j].Seq })

	total := int64(len(matched))

	if q.Offset >= len(matched) {
		return nil, total, nil
	}

	matched = matched[q.Offset:]
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	return matched, total, nil
}

// ListRecent returns the newest committed records across all accounts.
func (r *TransactionRepo) ListRecent(ctx context.Context, limit int) ([]*domain.TransactionDetail, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()

	var out []*domain.TransactionDetail
	for _, rec := range r.l.records {
		out = append(out, r.detail(rec))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Seq > out[j].Seq })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func matches(r *domain.Transaction, accountID string, filter domain.HistoryFilter) bool {
	isSender := r.SenderID != nil && *r.SenderID == accountID
	isReceiver := r.ReceiverID != nil && *r.ReceiverID == accountID

	switch filter {
	case domain.FilterSent:
		return isSender && r.Kind == domain.KindTransfer
	case domain.FilterReceived:
		return isReceiver && r.Kind == domain.KindTransfer
	case domain.FilterAll:
		return isSender || isReceiver
	default:
		return (isSender || isReceiver) && r.Kind == domain.Kind(filter)
	}
}

func (r *TransactionRepo) detail(rec *domain.Transaction) *domain.TransactionDetail {
	d := &domain.TransactionDetail{Transaction: *rec}

	if rec.SenderID != nil {
		if a, ok := r.l.accounts[*rec.SenderID]; ok {
			d.SenderName = a.Username
		}
	}

	if rec.ReceiverID != nil {
		if a, ok := r.l.accounts[*rec.ReceiverID]; ok {
			d.ReceiverName = a.Username
		}
	}

	return d
}

// AuditRepo is the fake AuditRepository.
type AuditRepo struct {
	l *Ledger

	CreateFunc   func(ctx context.Context, entry *domain.AuditEntry) error
	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, entry *domain.AuditEntry) error
}

// Create appends an audit entry outside any unit.
func (r *AuditRepo) Create(ctx context.Context, entry *domain.AuditEntry) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, entry)
	}

	r.l.mu.Lock()
	defer r.l.mu.Unlock()

	cp := *entry
	r.l.audits = append(r.l.audits, &cp)

	return nil
}

// CreateTx stages an audit entry on the unit so it commits with it.
func (r *AuditRepo) CreateTx(ctx context.Context, tx usecase.Transaction, entry *domain.AuditEntry) error {
	if r.CreateTxFunc != nil {
		return r.CreateTxFunc(ctx, tx, entry)
	}

	t := tx.(*Tx)

	t.mu.Lock()
	defer t.mu.Unlock()

	cp := *entry
	t.audits = append(t.audits, &cp)

	return nil
}

// List lists committed audit entries in insertion order.
func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()

	var out []*domain.AuditEntry
	for _, e := range r.l.audits {
		if filter.AccountID != "" && (e.AccountID == nil || *e.AccountID != filter.AccountID) {
			continue
		}

		cp := *e
		out = append(out, &cp)
	}

	return out, nil
}

// ChallengeStore is an in-memory fake for step-up challenges with an
// overridable clock.
type ChallengeStore struct {
	mu         sync.Mutex
	challenges map[string]*domain.Challenge
	ttl        time.Duration

	Now      func() time.Time
	IssueErr error
}

// NewChallengeStore creates a new fake ChallengeStore.
func NewChallengeStore(ttl time.Duration) *ChallengeStore {
	return &ChallengeStore{
		challenges: make(map[string]*domain.Challenge),
		ttl:        ttl,
		Now:        time.Now,
	}
}

// Issue generates a fresh code, replacing any prior challenge.
func (s *ChallengeStore) Issue(ctx context.Context, accountID string) (*domain.Challenge, error) {
	if s.IssueErr != nil {
		return nil, s.IssueErr
	}

	code, err := domain.GenerateChallengeCode()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	challenge := &domain.Challenge{
		AccountID: accountID,
		Code:      code,
		ExpiresAt: s.Now().Add(s.ttl),
	}
	s.challenges[accountID] = challenge

	return challenge, nil
}

// VerifyAndConsume deletes the challenge on an exact, unexpired match.
func (s *ChallengeStore) VerifyAndConsume(ctx context.Context, accountID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, ok := s.challenges[accountID]
	if !ok || challenge.Expired(s.Now()) || !challenge.Matches(code) {
		return domain.ErrChallengeInvalid
	}

	delete(s.challenges, accountID)

	return nil
}

// RefGen is a deterministic reference code generator.
type RefGen struct {
	n int64
}

// NewRefGen creates a new RefGen.
func NewRefGen() *RefGen {
	return &RefGen{}
}

// Generate returns a unique reference code.
func (g *RefGen) Generate() string {
	return fmt.Sprintf("REF%08d", atomic.AddInt64(&g.n, 1))
}

// Notifier records delivered challenge codes for inspection.
type Notifier struct {
	mu    sync.Mutex
	codes map[string]string
}

// NewNotifier creates a new Notifier.
func NewNotifier() *Notifier {
	return &Notifier{codes: make(map[string]string)}
}

// ChallengeIssued captures the delivered code.
func (n *Notifier) ChallengeIssued(ctx context.Context, accountID, code string, expiresAt time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.codes[accountID] = code
}

// LastCode returns the last code delivered to an account.
func (n *Notifier) LastCode(accountID string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.codes[accountID]
}
