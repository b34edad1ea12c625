package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bank-portal/internal/domain"
	"bank-portal/internal/repository"
)

const createAccountsTable = `
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE REFERENCES users (id),
	balance REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const createTransactionsTable = `
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL REFERENCES accounts (id),
	type TEXT NOT NULL,
	amount REAL NOT NULL,
	created_at DATETIME NOT NULL
);
`

const createTransactionsIndex = `
CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions (account_id);
`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) repository.AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAccountsTable); err != nil {
		return fmt.Errorf("create accounts table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createTransactionsTable); err != nil {
		return fmt.Errorf("create transactions table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createTransactionsIndex); err != nil {
		return fmt.Errorf("create transactions index: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx so the load helpers can run
// inside or outside a transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	return loadAccount(ctx, r.db, `WHERE user_id = ?`, userID)
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return loadAccount(ctx, r.db, `WHERE id = ?`, id)
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, balance, created_at, updated_at
FROM accounts
ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	for i := range accounts {
		txns, err := loadTransactions(ctx, r.db, accounts[i].ID)
		if err != nil {
			return nil, err
		}
		accounts[i].Transactions = txns
	}
	return accounts, nil
}

// Deposit credits the account in a single database transaction: the account
// row is created on first deposit, otherwise its balance is incremented, and
// the DEPOSIT entry is appended before commit.
func (r *AccountRepository) Deposit(ctx context.Context, userID string, amount float64) (*domain.Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin deposit: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var accountID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM accounts WHERE user_id = ?`, userID).Scan(&accountID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		accountID = uuid.NewString()
		if _, err := tx.ExecContext(ctx, `
INSERT INTO accounts (id, user_id, balance, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
			accountID, userID, amount, now, now,
		); err != nil {
			return nil, fmt.Errorf("create account: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("find account: %w", err)
	default:
		if _, err := tx.ExecContext(ctx, `
UPDATE accounts SET balance = balance + ?, updated_at = ? WHERE id = ?`,
			amount, now, accountID,
		); err != nil {
			return nil, fmt.Errorf("credit account: %w", err)
		}
	}

	if err := insertTransaction(ctx, tx, accountID, domain.TransactionDeposit, amount, now); err != nil {
		return nil, err
	}

	account, err := loadAccount(ctx, tx, `WHERE id = ?`, accountID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit deposit: %w", err)
	}
	return account, nil
}

// Withdraw debits the account in a single database transaction. The balance
// check and the debit are one conditional UPDATE, so two concurrent
// withdrawals can never both pass the check against the same funds.
func (r *AccountRepository) Withdraw(ctx context.Context, userID string, amount float64) (*domain.Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin withdraw: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	res, err := tx.ExecContext(ctx, `
UPDATE accounts SET balance = balance - ?, updated_at = ?
WHERE user_id = ? AND balance >= ?`,
		amount, now, userID, amount,
	)
	if err != nil {
		return nil, fmt.Errorf("debit account: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("debit rows affected: %w", err)
	}
	if affected == 0 {
		var accountID string
		err := tx.QueryRowContext(ctx, `SELECT id FROM accounts WHERE user_id = ?`, userID).Scan(&accountID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrAccountNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("find account: %w", err)
		}
		return nil, repository.ErrInsufficientFunds
	}

	var accountID string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM accounts WHERE user_id = ?`, userID).Scan(&accountID); err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if err := insertTransaction(ctx, tx, accountID, domain.TransactionWithdraw, amount, now); err != nil {
		return nil, err
	}

	account, err := loadAccount(ctx, tx, `WHERE id = ?`, accountID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit withdraw: %w", err)
	}
	return account, nil
}

func insertTransaction(ctx context.Context, tx *sql.Tx, accountID string, typ domain.TransactionType, amount float64, now time.Time) error {
	if _, err := tx.ExecContext(ctx, `
INSERT INTO transactions (id, account_id, type, amount, created_at)
VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), accountID, string(typ), amount, now,
	); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func loadAccount(ctx context.Context, q querier, where string, arg any) (*domain.Account, error) {
	row := q.QueryRowContext(ctx, `
SELECT id, user_id, balance, created_at, updated_at
FROM accounts
`+where, arg)

	var a domain.Account
	if err := row.Scan(&a.ID, &a.UserID, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrAccountNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	txns, err := loadTransactions(ctx, q, a.ID)
	if err != nil {
		return nil, err
	}
	a.Transactions = txns
	return &a, nil
}

// loadTransactions returns the account's entries in insertion order; rowid
// preserves append order regardless of timestamp ties.
func loadTransactions(ctx context.Context, q querier, accountID string) ([]domain.Transaction, error) {
	rows, err := q.QueryContext(ctx, `
SELECT id, account_id, type, amount, created_at
FROM transactions
WHERE account_id = ?
ORDER BY rowid`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		var (
			t   domain.Transaction
			typ string
		)
		if err := rows.Scan(&t.ID, &t.AccountID, &typ, &t.Amount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = domain.TransactionType(typ)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}
