package repository

import (
	"context"

	"bank-portal/internal/domain"
)

// AccountRepository exposes persistence operations for Account aggregates.
// Deposit and Withdraw are the only mutations; both update the balance and
// append the matching transaction as a single atomic unit against the store.
type AccountRepository interface {
	Init(ctx context.Context) error
	// GetByUserID loads a user's account with its transactions in insertion
	// order, or ErrAccountNotFound.
	GetByUserID(ctx context.Context, userID string) (*domain.Account, error)
	// GetByID loads an account by its own id, or ErrAccountNotFound.
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// List returns every account with its transactions, in creation order.
	List(ctx context.Context) ([]domain.Account, error)
	// Deposit credits the user's account, creating it when it does not exist
	// yet. Returns the updated account.
	Deposit(ctx context.Context, userID string, amount float64) (*domain.Account, error)
	// Withdraw debits the user's account. Fails with ErrAccountNotFound when
	// the user has no account and ErrInsufficientFunds when the balance is
	// short; the balance check and the debit are atomic.
	Withdraw(ctx context.Context, userID string, amount float64) (*domain.Account, error)
}
