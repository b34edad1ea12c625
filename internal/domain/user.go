package domain

import "time"

// Role is the coarse-grained capability tag gating which endpoints a user may call.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleBanker   Role = "banker"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleBanker
}

// User represents a registered user of the system. AccessToken and
// TokenExpiresAt hold the single active session token, nil when signed out.
type User struct {
	ID             string
	Username       string
	Email          string
	PasswordHash   string
	Role           Role
	AccessToken    *string
	TokenExpiresAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
