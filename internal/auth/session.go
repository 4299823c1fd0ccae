// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package auth

import (
	"context"
	"time"
)

// Session is an opaque bearer credential. A session with no bound user is a
// valid anonymous principal; its token doubles as the anonymous owner id on
// rooms, which is why the token is stored raw rather than hashed.
type Session struct {
	Token     string
	UserID    *string // nil until sign-up confirmation or sign-in
	CreatedAt time.Time
}

// Bound reports whether the session is tied to a registered user.
func (s *Session) Bound() bool {
	return s.UserID != nil
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new unbound session.
	Create(ctx context.Context, session *Session) error

	// GetByToken retrieves a session by its token.
	// Returns an error wrapping ErrNotFound when no record matches.
	GetByToken(ctx context.Context, token string) (*Session, error)

	// BindUser sets the bound user id on an existing session.
	BindUser(ctx context.Context, token, userID string) error

	// Delete removes a session. Deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error
}
