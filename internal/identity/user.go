// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

// Package identity owns user accounts and the current session.
//
// # Architecture
//
// The package is the only place where password material exists. Everything
// outside the identity store sees users exclusively as [SessionIdentity] — a
// password-free projection used as the actor reference in all report and
// comment operations.
package identity

import (
	"github.com/vantran/phishguard/internal/platform/sec"
)

// User is a registered account as persisted in the users collection.
//
// # Rules
//   - Username and Email are unique across live users (Unicode case folding).
//   - PasswordHash is produced by bcrypt exclusively via [Service.Register].
//   - The struct is stored as-is in the durable store; it must never be
//     serialized into an API response. Handlers return [SessionIdentity].
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

// SessionIdentity is the publicly shareable projection of a [User].
type SessionIdentity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Identity returns the password-free projection of the user.
func (u *User) Identity() SessionIdentity {
	return SessionIdentity{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// FromClaims rebuilds the acting identity from verified token claims.
//
// Returns nil for nil claims so handlers can pass the result straight into
// store operations, which treat a nil identity as "not authenticated".
func FromClaims(claims *sec.AuthClaims) *SessionIdentity {
	if claims == nil {
		return nil
	}
	return &SessionIdentity{
		ID:       claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
	}
}
