// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/simple-quiz-org/simple-quiz-api/internal/auth"
)

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	pool poolIface
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create stores a new user. A unique-constraint violation maps to the
// duplicate signup code so concurrent confirmations racing on the same id
// or mail fail cleanly instead of surfacing a raw driver error.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	_, err := querierFrom(ctx, r.pool).Exec(ctx, `
		INSERT INTO users (id, mail, password_hash, display_name, comment, icon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
	`,
		user.ID,
		user.Mail,
		user.PasswordHash,
		user.DisplayName,
		user.Comment,
		user.Icon,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code(auth.CodeDuplicate).
				With("user_id", user.ID).
				Wrap(err)
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("user_id", user.ID).
			Wrap(err)
	}
	return nil
}

// GetByIdentifier retrieves a user whose id or mail equals identifier.
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	row := querierFrom(ctx, r.pool).QueryRow(ctx, `
		SELECT id, mail, password_hash, display_name, comment, icon
		FROM users
		WHERE id = $1 OR mail = $1
	`, identifier)

	var user auth.User
	err := row.Scan(&user.ID, &user.Mail, &user.PasswordHash, &user.DisplayName, &user.Comment, &user.Icon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
		}
		return nil, oops.Code("USER_GET_FAILED").
			With("operation", "get user by identifier").
			Wrap(err)
	}
	return &user, nil
}

// FindTaken reports which of userID and mail are already claimed. The user
// id counts against both users and pending signups; the mail only against
// users, since a pending signup for a mail is refreshed, not duplicated.
func (r *UserRepository) FindTaken(ctx context.Context, userID, mail string) (bool, bool, error) {
	row := querierFrom(ctx, r.pool).QueryRow(ctx, `
		SELECT
			EXISTS (
				SELECT 1 FROM users WHERE id = $1
				UNION
				SELECT 1 FROM pending_signups WHERE user_id = $1
			),
			EXISTS (SELECT 1 FROM users WHERE mail = $2)
	`, userID, mail)

	var userIDTaken, mailTaken bool
	if err := row.Scan(&userIDTaken, &mailTaken); err != nil {
		return false, false, oops.Code("USER_FIND_TAKEN_FAILED").
			With("operation", "check claimed identifiers").
			Wrap(err)
	}
	return userIDTaken, mailTaken, nil
}

// UserIDExists reports whether userID is claimed by a user or a pending
// signup.
func (r *UserRepository) UserIDExists(ctx context.Context, userID string) (bool, error) {
	row := querierFrom(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE id = $1
			UNION
			SELECT 1 FROM pending_signups WHERE user_id = $1
		)
	`, userID)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, oops.Code("USER_EXISTS_FAILED").
			With("operation", "check user id existence").
			Wrap(err)
	}
	return exists, nil
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
