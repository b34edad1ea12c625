package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"bank-portal/internal/domain"
	"bank-portal/internal/repository"
)

// Owner is the read-only projection of an account holder exposed to bankers.
// It never carries credential material.
type Owner struct {
	ID       string
	Username string
	Email    string
}

// AccountView joins an account with its owner's display fields.
type AccountView struct {
	Account domain.Account
	Owner   Owner
}

// DirectoryService is the banker-facing read model over every customer
// account.
type DirectoryService interface {
	// ListAccounts returns all accounts with owner display fields. sortBy may
	// be "balance"; unknown keys fall back to creation order. order is "asc"
	// (default) or "desc".
	ListAccounts(ctx context.Context, sortBy, order string) ([]AccountView, error)
	// AccountHistory returns one account with its transactions sorted by
	// "amount" or "createdAt" (default, descending) without mutating stored
	// order.
	AccountHistory(ctx context.Context, accountID, sortBy, order string) (*AccountView, error)
}

type directoryService struct {
	accounts repository.AccountRepository
	users    repository.UserRepository
}

func NewDirectoryService(accounts repository.AccountRepository, users repository.UserRepository) DirectoryService {
	return &directoryService{
		accounts: accounts,
		users:    users,
	}
}

func (s *directoryService) ListAccounts(ctx context.Context, sortBy, order string) ([]AccountView, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]AccountView, 0, len(accounts))
	for _, account := range accounts {
		owner, err := s.owner(ctx, account.UserID)
		if err != nil {
			return nil, err
		}
		views = append(views, AccountView{Account: account, Owner: owner})
	}

	// unknown sort keys are ignored, not an error
	if strings.EqualFold(sortBy, "balance") {
		desc := strings.EqualFold(order, "desc")
		sort.SliceStable(views, func(i, j int) bool {
			if desc {
				return views[i].Account.Balance > views[j].Account.Balance
			}
			return views[i].Account.Balance < views[j].Account.Balance
		})
	}
	return views, nil
}

func (s *directoryService) AccountHistory(ctx context.Context, accountID, sortBy, order string) (*AccountView, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	owner, err := s.owner(ctx, account.UserID)
	if err != nil {
		return nil, err
	}

	// sort a copy so stored order stays intact
	txns := make([]domain.Transaction, len(account.Transactions))
	copy(txns, account.Transactions)

	byAmount := strings.EqualFold(sortBy, "amount")
	asc := strings.EqualFold(order, "asc")
	sort.SliceStable(txns, func(i, j int) bool {
		if byAmount {
			if asc {
				return txns[i].Amount < txns[j].Amount
			}
			return txns[i].Amount > txns[j].Amount
		}
		if asc {
			return txns[i].CreatedAt.Before(txns[j].CreatedAt)
		}
		return txns[i].CreatedAt.After(txns[j].CreatedAt)
	})
	account.Transactions = txns

	return &AccountView{Account: *account, Owner: owner}, nil
}

func (s *directoryService) owner(ctx context.Context, userID string) (Owner, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// account without a resolvable owner still lists, with blank fields
			return Owner{ID: userID}, nil
		}
		return Owner{}, err
	}
	return Owner{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}
