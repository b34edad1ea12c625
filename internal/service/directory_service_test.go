package service

import (
	"context"
	"errors"
	"testing"

	"bank-portal/internal/repository"
)

func TestListAccountsJoinAndSort(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u1 := env.signUpCustomer(t, "d1@x.com")
	u2 := env.signUpCustomer(t, "d2@x.com")

	ledger := NewLedgerService(env.accounts, false)
	if _, err := ledger.Deposit(ctx, u1.ID, 300); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if _, err := ledger.Deposit(ctx, u2.ID, 100); err != nil {
		t.Fatalf("Deposit: %v", err)
	}

	directory := NewDirectoryService(env.accounts, env.users)

	// default: creation order, owner fields joined, no credentials exposed
	views, err := directory.ListAccounts(ctx, "", "")
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("len=%d want=2", len(views))
	}
	if views[0].Owner.Email != "d1@x.com" || views[1].Owner.Email != "d2@x.com" {
		t.Fatalf("owners=%+v, %+v", views[0].Owner, views[1].Owner)
	}

	// sort by balance ascending
	views, err = directory.ListAccounts(ctx, "balance", "asc")
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if views[0].Account.Balance != 100 || views[1].Account.Balance != 300 {
		t.Fatalf("asc balances: %v, %v", views[0].Account.Balance, views[1].Account.Balance)
	}

	views, err = directory.ListAccounts(ctx, "balance", "desc")
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if views[0].Account.Balance != 300 {
		t.Fatalf("desc first balance=%v want=300", views[0].Account.Balance)
	}

	// unknown sort key falls back to creation order
	views, err = directory.ListAccounts(ctx, "bogus", "desc")
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if views[0].Owner.Email != "d1@x.com" {
		t.Fatalf("unknown sort key should keep creation order, got %q first", views[0].Owner.Email)
	}
}

func TestAccountHistorySorting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.signUpCustomer(t, "hist@x.com")

	ledger := NewLedgerService(env.accounts, false)
	for _, amt := range []float64{50, 10, 30} {
		if _, err := ledger.Deposit(ctx, user.ID, amt); err != nil {
			t.Fatalf("Deposit(%v): %v", amt, err)
		}
	}
	if _, err := ledger.Withdraw(ctx, user.ID, 20); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}

	account, err := env.accounts.GetByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}

	directory := NewDirectoryService(env.accounts, env.users)

	view, err := directory.AccountHistory(ctx, account.ID, "amount", "asc")
	if err != nil {
		t.Fatalf("AccountHistory: %v", err)
	}
	amounts := make([]float64, len(view.Account.Transactions))
	for i, txn := range view.Account.Transactions {
		amounts[i] = txn.Amount
	}
	want := []float64{10, 20, 30, 50}
	for i := range want {
		if amounts[i] != want[i] {
			t.Fatalf("amount asc=%v want=%v", amounts, want)
		}
	}

	// default is createdAt descending
	view, err = directory.AccountHistory(ctx, account.ID, "createdAt", "desc")
	if err != nil {
		t.Fatalf("AccountHistory: %v", err)
	}
	for i := 1; i < len(view.Account.Transactions); i++ {
		if view.Account.Transactions[i].CreatedAt.After(view.Account.Transactions[i-1].CreatedAt) {
			t.Fatalf("createdAt desc violated at %d", i)
		}
	}

	// sorting returned a copy: stored order still insertion order
	stored, err := env.accounts.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	storedWant := []float64{50, 10, 30, 20}
	for i := range storedWant {
		if stored.Transactions[i].Amount != storedWant[i] {
			t.Fatalf("stored order mutated: %v", stored.Transactions)
		}
	}

	if _, err := directory.AccountHistory(ctx, "missing", "", ""); !errors.Is(err, repository.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}
