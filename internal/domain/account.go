package domain

import "time"

type TransactionType string

const (
	TransactionDeposit  TransactionType = "DEPOSIT"
	TransactionWithdraw TransactionType = "WITHDRAW"
)

// Transaction is a single immutable ledger entry. Entries are only ever
// appended, never edited or removed.
type Transaction struct {
	ID        string
	AccountID string
	Type      TransactionType
	Amount    float64
	CreatedAt time.Time
}

// Account holds a customer's balance together with its transaction history.
// Exactly one account exists per customer; Transactions is kept in insertion
// order, which is the chronological order of the mutations.
type Account struct {
	ID           string
	UserID       string
	Balance      float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Transactions []Transaction
}
