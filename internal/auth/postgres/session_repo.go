// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/simple-quiz-org/simple-quiz-api/internal/auth"
)

// SessionRepository implements auth.SessionRepository using PostgreSQL.
type SessionRepository struct {
	pool poolIface
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool poolIface) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create stores a new unbound session.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	_, err := querierFrom(ctx, r.pool).Exec(ctx, `
		INSERT INTO sessions (token, user_id, created_at)
		VALUES ($1, $2, $3)
	`,
		session.Token,
		session.UserID,
		session.CreatedAt,
	)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			Wrap(err)
	}
	return nil
}

// GetByToken retrieves a session by its token.
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*auth.Session, error) {
	row := querierFrom(ctx, r.pool).QueryRow(ctx, `
		SELECT token, user_id, created_at
		FROM sessions
		WHERE token = $1
	`, token)

	var (
		tok       string
		userID    *string
		createdAt time.Time
	)
	if err := row.Scan(&tok, &userID, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
		}
		return nil, oops.Code("SESSION_GET_BY_TOKEN_FAILED").
			With("operation", "get session by token").
			Wrap(err)
	}

	return &auth.Session{
		Token:     tok,
		UserID:    userID,
		CreatedAt: createdAt,
	}, nil
}

// BindUser sets the bound user id on an existing session.
func (r *SessionRepository) BindUser(ctx context.Context, token, userID string) error {
	result, err := querierFrom(ctx, r.pool).Exec(ctx, `
		UPDATE sessions SET user_id = $2
		WHERE token = $1
	`, token, userID)
	if err != nil {
		return oops.Code("SESSION_BIND_FAILED").
			With("operation", "update session user_id").
			With("user_id", userID).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes a session. Deleting an absent token is not an error.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	_, err := querierFrom(ctx, r.pool).Exec(ctx, `
		DELETE FROM sessions WHERE token = $1
	`, token)
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionRepository)(nil)
