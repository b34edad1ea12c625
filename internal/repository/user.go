package repository

import (
	"context"
	"time"

	"bank-portal/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByToken resolves the user holding the given access token. Tokens that
	// were rotated away or cleared no longer resolve.
	GetByToken(ctx context.Context, token string) (*domain.User, error)
	// UpdateToken replaces the stored access token and expiry. Passing nil for
	// both clears the session (sign-out).
	UpdateToken(ctx context.Context, id string, token *string, expiresAt *time.Time) error
}
