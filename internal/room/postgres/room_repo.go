// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

// Package postgres provides the PostgreSQL-backed room repository.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/simple-quiz-org/simple-quiz-api/internal/room"
)

// poolIface abstracts the pgxpool.Pool surface the repository uses, so
// tests can substitute a pgxmock pool.
type poolIface interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements room.Repository using PostgreSQL.
type Repository struct {
	pool poolIface
}

// NewRepository creates a new room Repository.
func NewRepository(pool poolIface) *Repository {
	return &Repository{pool: pool}
}

// CreateWithOwner stores a room and its owner record in one transaction.
func (r *Repository) CreateWithOwner(ctx context.Context, rm *room.Room, owner *room.OwnerRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx, `
		INSERT INTO rooms (id, name, icon, explanation, access_password, is_public, is_valid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		rm.ID,
		rm.Name,
		rm.Icon,
		rm.Explanation,
		rm.AccessPassword,
		rm.IsPublic,
		rm.IsValid,
		rm.CreatedAt,
		rm.UpdatedAt,
	)
	if err != nil {
		return oops.Code("ROOM_INSERT_FAILED").
			With("operation", "insert room").
			With("room_id", rm.ID).
			Wrap(err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO room_owners (room_id, user_id, session_id)
		VALUES ($1, $2, $3)
	`,
		owner.RoomID,
		owner.UserID,
		owner.SessionID,
	)
	if err != nil {
		return oops.Code("ROOM_OWNER_INSERT_FAILED").
			With("operation", "insert room owner").
			With("room_id", owner.RoomID).
			Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

// GetWithOwner retrieves a room and its owner record by id.
func (r *Repository) GetWithOwner(ctx context.Context, id string) (*room.Room, *room.OwnerRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT r.id, r.name, r.icon, r.explanation, r.access_password, r.is_public, r.is_valid, r.created_at, r.updated_at,
		       o.user_id, o.session_id
		FROM rooms r
		JOIN room_owners o ON o.room_id = r.id
		WHERE r.id = $1
	`, id)

	var (
		rm    room.Room
		owner room.OwnerRecord
	)
	err := row.Scan(
		&rm.ID, &rm.Name, &rm.Icon, &rm.Explanation, &rm.AccessPassword,
		&rm.IsPublic, &rm.IsValid, &rm.CreatedAt, &rm.UpdatedAt,
		&owner.UserID, &owner.SessionID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, oops.Code("ROOM_NOT_FOUND").
				With("room_id", id).
				Wrap(room.ErrNotFound)
		}
		return nil, nil, oops.Code("ROOM_GET_FAILED").
			With("operation", "get room with owner").
			With("room_id", id).
			Wrap(err)
	}
	owner.RoomID = rm.ID
	return &rm, &owner, nil
}

// Update rewrites the mutable fields of a room.
func (r *Repository) Update(ctx context.Context, rm *room.Room) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE rooms
		SET name = $2, icon = $3, explanation = $4, access_password = $5, is_public = $6, updated_at = $7
		WHERE id = $1
	`,
		rm.ID,
		rm.Name,
		rm.Icon,
		rm.Explanation,
		rm.AccessPassword,
		rm.IsPublic,
		rm.UpdatedAt,
	)
	if err != nil {
		return oops.Code("ROOM_UPDATE_FAILED").
			With("operation", "update room").
			With("room_id", rm.ID).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ROOM_NOT_FOUND").
			With("room_id", rm.ID).
			Wrap(room.ErrNotFound)
	}
	return nil
}

// List returns valid rooms visible to the identity pair, newest update
// first. The visibility filter mirrors the read check: public, or owned
// via user id, or owned via session when no user owns the room.
func (r *Repository) List(ctx context.Context, userID, sessionID string, since, perPage int) ([]*room.Room, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.name, r.icon, r.explanation, r.access_password, r.is_public, r.is_valid, r.created_at, r.updated_at
		FROM rooms r
		JOIN room_owners o ON o.room_id = r.id
		WHERE r.is_valid
		  AND (
			r.is_public
			OR (o.user_id IS NOT NULL AND o.user_id = $1)
			OR (o.user_id IS NULL AND o.session_id = $2)
		  )
		ORDER BY r.updated_at DESC
		OFFSET $3
		LIMIT $4
	`, userID, sessionID, since, perPage)
	if err != nil {
		return nil, oops.Code("ROOM_LIST_FAILED").
			With("operation", "list rooms").
			Wrap(err)
	}
	defer rows.Close()

	var rooms []*room.Room
	for rows.Next() {
		var rm room.Room
		err := rows.Scan(
			&rm.ID, &rm.Name, &rm.Icon, &rm.Explanation, &rm.AccessPassword,
			&rm.IsPublic, &rm.IsValid, &rm.CreatedAt, &rm.UpdatedAt,
		)
		if err != nil {
			return nil, oops.Code("ROOM_SCAN_FAILED").
				With("operation", "scan room row").
				Wrap(err)
		}
		rooms = append(rooms, &rm)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ROOM_ROWS_ERROR").
			With("operation", "iterate room rows").
			Wrap(err)
	}
	return rooms, nil
}

// Compile-time interface check.
var _ room.Repository = (*Repository)(nil)
