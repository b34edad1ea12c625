package service

import (
	"context"
	"errors"
	"math"
	"sort"

	"bank-portal/internal/domain"
	"bank-portal/internal/repository"
)

// ErrInvalidAmount is returned when a deposit or withdrawal amount is not a
// finite positive number.
var ErrInvalidAmount = errors.New("invalid amount")

// Snapshot is the customer-facing view of an account after a read or mutation.
type Snapshot struct {
	Balance      float64
	Transactions []domain.Transaction
}

// LedgerService is the core mutation logic for customer accounts. Every
// operation is immediately terminal; balances never go negative.
type LedgerService interface {
	// GetSnapshot returns the account state, or the zero snapshot when the
	// user has no account yet. Reads never create an account.
	GetSnapshot(ctx context.Context, userID string) (*Snapshot, error)
	// Deposit credits the account, creating it on first deposit.
	Deposit(ctx context.Context, userID string, amount float64) (*Snapshot, error)
	// Withdraw debits the account. Never creates an account and never
	// overdrafts, including under concurrent requests.
	Withdraw(ctx context.Context, userID string, amount float64) (*Snapshot, error)
}

type ledgerService struct {
	accounts repository.AccountRepository

	// sortOnWrite makes deposit/withdraw responses list newest transactions
	// first; stored order is unaffected either way.
	sortOnWrite bool
}

func NewLedgerService(accounts repository.AccountRepository, sortOnWrite bool) LedgerService {
	return &ledgerService{
		accounts:    accounts,
		sortOnWrite: sortOnWrite,
	}
}

func (s *ledgerService) GetSnapshot(ctx context.Context, userID string) (*Snapshot, error) {
	account, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return &Snapshot{Balance: 0, Transactions: []domain.Transaction{}}, nil
		}
		return nil, err
	}
	return &Snapshot{Balance: account.Balance, Transactions: account.Transactions}, nil
}

func (s *ledgerService) Deposit(ctx context.Context, userID string, amount float64) (*Snapshot, error) {
	if !validAmount(amount) {
		return nil, ErrInvalidAmount
	}
	account, err := s.accounts.Deposit(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	return s.writeSnapshot(account), nil
}

func (s *ledgerService) Withdraw(ctx context.Context, userID string, amount float64) (*Snapshot, error) {
	if !validAmount(amount) {
		return nil, ErrInvalidAmount
	}
	account, err := s.accounts.Withdraw(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	return s.writeSnapshot(account), nil
}

func (s *ledgerService) writeSnapshot(account *domain.Account) *Snapshot {
	txns := account.Transactions
	if s.sortOnWrite {
		sorted := make([]domain.Transaction, len(txns))
		copy(sorted, txns)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		})
		txns = sorted
	}
	return &Snapshot{Balance: account.Balance, Transactions: txns}
}

func validAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0) && amount > 0
}
