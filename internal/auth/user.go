// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package auth

import "context"

// User is a permanent account, created only through signup confirmation.
// Profile edits are out of scope; records are immutable here.
type User struct {
	ID           string
	Mail         string
	PasswordHash string
	DisplayName  string
	Comment      string
	Icon         *string
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user.
	Create(ctx context.Context, user *User) error

	// GetByIdentifier retrieves a user whose id or mail equals identifier.
	// Returns an error wrapping ErrNotFound when no record matches.
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)

	// FindTaken reports which of userID and mail are already claimed.
	// The user id is checked against both users and pending signups; the
	// mail only against users, matching the uniqueness rules of signup.
	FindTaken(ctx context.Context, userID, mail string) (userIDTaken, mailTaken bool, err error)

	// UserIDExists reports whether userID is claimed by a user or a
	// pending signup. Backs the availability endpoint.
	UserIDExists(ctx context.Context, userID string) (bool, error)
}
