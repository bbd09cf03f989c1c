// Package credential holds the current user identity and bearer credential.
// It is supplied by the login flow; the sync core only reads it.
package credential

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is the identity + bearer token pair persisted across reloads.
type Credential struct {
	CustomerNo string `json:"customer_no"`
	Token      string `json:"token"`
	ExpiresAt  int64  `json:"expires_at"` // unix seconds, zero when the token has no exp claim
}

// FromToken builds a credential from a bearer token issued by the remote
// store. The token is decoded, not verified: the signing secret lives on the
// server, and the server re-checks the signature on every call anyway. The
// subject claim carries the customer number.
func FromToken(token string) (Credential, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Credential{}, fmt.Errorf("failed to decode token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Credential{}, fmt.Errorf("token has no subject claim")
	}

	cred := Credential{CustomerNo: sub, Token: token}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		cred.ExpiresAt = exp.Unix()
	}
	return cred, nil
}

// Expired reports whether the credential's token has passed its expiry.
// Tokens without an exp claim never expire client-side.
func (c Credential) Expired(now time.Time) bool {
	return c.ExpiresAt != 0 && now.Unix() >= c.ExpiresAt
}

// Valid reports whether the credential can authenticate requests right now.
func (c Credential) Valid(now time.Time) bool {
	return c.CustomerNo != "" && c.Token != "" && !c.Expired(now)
}
