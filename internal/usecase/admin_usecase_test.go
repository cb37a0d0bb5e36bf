package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/internal/usecase"
	"github.com/kodbank/kodbank/internal/usecase/mocks"
)

type adminFixture struct {
	ledger *mocks.Ledger
	uc     *usecase.AdminUseCase
}

func newAdminFixture() *adminFixture {
	ledger := mocks.NewLedger()

	return &adminFixture{
		ledger: ledger,
		uc: usecase.NewAdminUseCase(
			ledger.Accounts(), ledger.Transactions(), ledger.Audits(), zerolog.Nop(),
		),
	}
}

func TestAdminStats(t *testing.T) {
	f := newAdminFixture()
	f.ledger.SeedAccount(&domain.Account{ID: "acc-a", Username: "alice", Balance: decimal.NewFromInt(5000)})
	f.ledger.SeedAccount(&domain.Account{ID: "acc-b", Username: "bob", Balance: decimal.NewFromInt(1500)})

	sender := "acc-a"
	f.ledger.SeedRecord(&domain.Transaction{RefCode: "R1", SenderID: &sender, Amount: decimal.NewFromInt(200), Kind: domain.KindWithdraw, Status: domain.StatusSuccess})

	stats, err := f.uc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if stats.Accounts != 2 || stats.Transactions != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if !stats.TotalBalance.Equal(decimal.NewFromInt(6500)) {
		t.Fatalf("expected total balance 6500, got %s", stats.TotalBalance)
	}
}

func TestAdminSetFrozen(t *testing.T) {
	f := newAdminFixture()
	f.ledger.SeedAccount(&domain.Account{ID: "acc-a", Username: "alice"})

	err := f.uc.SetFrozen(context.Background(), usecase.SetFrozenInput{
		AccountID: "acc-a",
		Frozen:    true,
		ActorID:   "admin-1",
		Origin:    "10.0.0.1",
	})
	if err != nil {
		t.Fatalf("SetFrozen failed: %v", err)
	}

	entries := f.ledger.AuditEntries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	if entries[0].AccountID == nil || *entries[0].AccountID != "admin-1" {
		t.Fatalf("audit entry must carry the acting admin, got %+v", entries[0])
	}
	if !strings.Contains(entries[0].Action, "froze account acc-a") {
		t.Fatalf("unexpected audit action %q", entries[0].Action)
	}
}

func TestAdminSetFrozen_UnknownAccount(t *testing.T) {
	f := newAdminFixture()

	err := f.uc.SetFrozen(context.Background(), usecase.SetFrozenInput{AccountID: "nope", Frozen: true})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	if len(f.ledger.AuditEntries()) != 0 {
		t.Fatal("a failed mutation must not leave an audit entry")
	}
}

func TestAdminAdjustBalance(t *testing.T) {
	f := newAdminFixture()
	f.ledger.SeedAccount(&domain.Account{ID: "acc-a", Username: "alice", Balance: decimal.NewFromInt(100)})

	err := f.uc.AdjustBalance(context.Background(), usecase.AdjustBalanceInput{
		AccountID:  "acc-a",
		NewBalance: decimal.NewFromInt(9000),
		ActorID:    "admin-1",
	})
	if err != nil {
		t.Fatalf("AdjustBalance failed: %v", err)
	}

	if !f.ledger.Balance("acc-a").Equal(decimal.NewFromInt(9000)) {
		t.Fatalf("expected balance 9000, got %s", f.ledger.Balance("acc-a"))
	}
}

func TestAdminAdjustBalance_RejectsNegative(t *testing.T) {
	f := newAdminFixture()
	f.ledger.SeedAccount(&domain.Account{ID: "acc-a", Username: "alice", Balance: decimal.NewFromInt(100)})

	err := f.uc.AdjustBalance(context.Background(), usecase.AdjustBalanceInput{
		AccountID:  "acc-a",
		NewBalance: decimal.NewFromInt(-1),
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	if !f.ledger.Balance("acc-a").Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance must be unchanged, got %s", f.ledger.Balance("acc-a"))
	}
}

func TestAdminPromote(t *testing.T) {
	f := newAdminFixture()
	f.ledger.SeedAccount(&domain.Account{ID: "acc-a", Username: "alice", Role: domain.RoleCustomer})

	if err := f.uc.Promote(context.Background(), usecase.PromoteInput{
		AccountID: "acc-a",
		Role:      domain.RoleManager,
		ActorID:   "admin-1",
	}); err != nil {
		t.Fatalf("Promote failed: %v", err)
	}

	accounts, err := f.uc.ListAccounts(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}
	if len(accounts) != 1 || accounts[0].Role != domain.RoleManager {
		t.Fatalf("expected role MANAGER, got %+v", accounts)
	}
}

func TestAdminPromote_UnknownRole(t *testing.T) {
	f := newAdminFixture()
	f.ledger.SeedAccount(&domain.Account{ID: "acc-a", Username: "alice"})

	err := f.uc.Promote(context.Background(), usecase.PromoteInput{
		AccountID: "acc-a",
		Role:      domain.Role("SUPERUSER"),
	})
	if !errors.Is(err, domain.ErrInsufficientRole) {
		t.Fatalf("expected ErrInsufficientRole, got %v", err)
	}
}

func TestAdminAuditTrail_FiltersByAccount(t *testing.T) {
	f := newAdminFixture()
	f.ledger.SeedAccount(&domain.Account{ID: "acc-a", Username: "alice"})
	f.ledger.SeedAccount(&domain.Account{ID: "acc-b", Username: "bob"})

	ctx := context.Background()

	for i, id := range []string{"acc-a", "acc-b", "acc-a"} {
		if err := f.uc.SetFrozen(ctx, usecase.SetFrozenInput{
			AccountID: id,
			Frozen:    true,
			ActorID:   id,
			Origin:    fmt.Sprintf("10.0.0.%d", i),
		}); err != nil {
			t.Fatalf("SetFrozen %s failed: %v", id, err)
		}
	}

	all, err := f.uc.AuditTrail(ctx, domain.AuditFilter{})
	if err != nil {
		t.Fatalf("AuditTrail failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}

	narrowed, err := f.uc.AuditTrail(ctx, domain.AuditFilter{AccountID: "acc-a"})
	if err != nil {
		t.Fatalf("AuditTrail failed: %v", err)
	}
	if len(narrowed) != 2 {
		t.Fatalf("expected 2 entries for acc-a, got %d", len(narrowed))
	}
}

func TestAdminListAccounts_Pagination(t *testing.T) {
	f := newAdminFixture()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("acc-%d", i)
		f.ledger.SeedAccount(&domain.Account{ID: id, Username: id})
	}

	page, err := f.uc.ListAccounts(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}

	if len(page) != 2 || page[0].ID != "acc-2" || page[1].ID != "acc-3" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestAdminListTransactions_Limit(t *testing.T) {
	f := newAdminFixture()
	f.ledger.SeedAccount(&domain.Account{ID: "acc-a", Username: "alice"})

	receiver := "acc-a"
	for i := 0; i < 4; i++ {
		f.ledger.SeedRecord(&domain.Transaction{
			RefCode:    fmt.Sprintf("R%d", i),
			ReceiverID: &receiver,
			Amount:     decimal.NewFromInt(100),
			Kind:       domain.KindDeposit,
			Status:     domain.StatusSuccess,
		})
	}

	recent, err := f.uc.ListTransactions(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}

	if len(recent) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recent))
	}
	// Newest first.
	if recent[0].RefCode != "R3" {
		t.Fatalf("expected R3 first, got %s", recent[0].RefCode)
	}
}
