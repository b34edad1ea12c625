// Package token issues the opaque bearer tokens backing user sessions.
package token

import (
	"crypto/rand"
	"fmt"
	"time"
)

const (
	alphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	tokenLength = 36
)

// Issuer generates access tokens with a fixed lifetime. Tokens are 36 random
// characters from [A-Za-z0-9]; uniqueness is not enforced beyond the
// alphabet's collision bound.
type Issuer struct {
	TTL time.Duration
}

// NewIssuer returns an issuer with the given token lifetime.
func NewIssuer(ttl time.Duration) *Issuer {
	return &Issuer{TTL: ttl}
}

// Issue returns a fresh token and its expiry timestamp.
func (i *Issuer) Issue() (string, time.Time, error) {
	buf := make([]byte, tokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("read random bytes: %w", err)
	}
	for n, b := range buf {
		buf[n] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), time.Now().UTC().Add(i.TTL), nil
}
