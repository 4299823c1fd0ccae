// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/simple-quiz-org/simple-quiz-api/internal/auth"
)

// PendingSignupRepository implements auth.PendingSignupRepository using
// PostgreSQL.
type PendingSignupRepository struct {
	pool poolIface
}

// NewPendingSignupRepository creates a new PendingSignupRepository.
func NewPendingSignupRepository(pool poolIface) *PendingSignupRepository {
	return &PendingSignupRepository{pool: pool}
}

// GetByMail retrieves the pending signup for a mail address.
func (r *PendingSignupRepository) GetByMail(ctx context.Context, mail string) (*auth.PendingSignup, error) {
	row := querierFrom(ctx, r.pool).QueryRow(ctx, `
		SELECT mail, user_id, password_hash, display_name, comment, icon, token, updated_at
		FROM pending_signups
		WHERE mail = $1
	`, mail)

	pending, err := scanPending(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, oops.Code("PENDING_NOT_FOUND").Wrap(auth.ErrNotFound)
		}
		return nil, oops.Code("PENDING_GET_BY_MAIL_FAILED").
			With("operation", "get pending signup by mail").
			Wrap(err)
	}
	return pending, nil
}

// GetByToken retrieves a pending signup by confirmation token. The
// freshness window is applied in the query, so expired records surface
// exactly like absent ones.
func (r *PendingSignupRepository) GetByToken(ctx context.Context, token string) (*auth.PendingSignup, error) {
	row := querierFrom(ctx, r.pool).QueryRow(ctx, `
		SELECT mail, user_id, password_hash, display_name, comment, icon, token, updated_at
		FROM pending_signups
		WHERE token = $1
		  AND updated_at > now() - interval '1 hour'
	`, token)

	pending, err := scanPending(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, oops.Code("PENDING_NOT_FOUND").Wrap(auth.ErrNotFound)
		}
		return nil, oops.Code("PENDING_GET_BY_TOKEN_FAILED").
			With("operation", "get pending signup by token").
			Wrap(err)
	}
	return pending, nil
}

// Upsert stores the pending signup keyed by mail, replacing any previous
// submission for the same address.
func (r *PendingSignupRepository) Upsert(ctx context.Context, pending *auth.PendingSignup) error {
	_, err := querierFrom(ctx, r.pool).Exec(ctx, `
		INSERT INTO pending_signups (mail, user_id, password_hash, display_name, comment, icon, token, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (mail) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			password_hash = EXCLUDED.password_hash,
			display_name = EXCLUDED.display_name,
			comment = EXCLUDED.comment,
			icon = EXCLUDED.icon,
			token = EXCLUDED.token,
			updated_at = EXCLUDED.updated_at
	`,
		pending.Mail,
		pending.UserID,
		pending.PasswordHash,
		pending.DisplayName,
		pending.Comment,
		pending.Icon,
		pending.Token,
		pending.UpdatedAt,
	)
	if err != nil {
		return oops.Code("PENDING_UPSERT_FAILED").
			With("operation", "upsert pending signup").
			Wrap(err)
	}
	return nil
}

// DeleteByToken removes a pending signup by its confirmation token.
func (r *PendingSignupRepository) DeleteByToken(ctx context.Context, token string) error {
	_, err := querierFrom(ctx, r.pool).Exec(ctx, `
		DELETE FROM pending_signups WHERE token = $1
	`, token)
	if err != nil {
		return oops.Code("PENDING_DELETE_FAILED").
			With("operation", "delete pending signup").
			Wrap(err)
	}
	return nil
}

// scanPending scans a single row into a PendingSignup. Callers handle
// pgx.ErrNoRows.
func scanPending(row pgx.Row) (*auth.PendingSignup, error) {
	var p auth.PendingSignup
	err := row.Scan(&p.Mail, &p.UserID, &p.PasswordHash, &p.DisplayName, &p.Comment, &p.Icon, &p.Token, &p.UpdatedAt)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with context-specific info
	}
	return &p, nil
}

// Compile-time interface check.
var _ auth.PendingSignupRepository = (*PendingSignupRepository)(nil)
