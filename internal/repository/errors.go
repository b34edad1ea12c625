package repository

import "errors"

var (
	// ErrUserNotFound indicates no user matches the given key.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrAccountNotFound indicates no account exists for the given key.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientFunds indicates a withdrawal exceeds the current balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
)
