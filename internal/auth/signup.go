// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package auth

import (
	"context"
	"time"
)

// Signup flow configuration.
const (
	// SignupCoolDown is the minimum gap between two signup submissions
	// for the same mail address.
	SignupCoolDown = 30 * time.Second

	// ConfirmTokenWindow is how long a confirmation token stays usable
	// after the pending signup was last refreshed.
	ConfirmTokenWindow = time.Hour
)

// PendingSignup is a staged, unconfirmed account. At most one exists per
// mail address; resubmission refreshes the token and timestamp in place.
type PendingSignup struct {
	Mail         string
	UserID       string
	PasswordHash string
	DisplayName  string
	Comment      string
	Icon         *string
	Token        string
	UpdatedAt    time.Time
}

// ConfirmableAt reports whether the token would still be accepted at t.
func (p *PendingSignup) ConfirmableAt(t time.Time) bool {
	return t.Before(p.UpdatedAt.Add(ConfirmTokenWindow))
}

// PendingSignupRepository manages pending signup persistence.
type PendingSignupRepository interface {
	// GetByMail retrieves the pending signup for a mail address.
	// Returns an error wrapping ErrNotFound when no record matches.
	GetByMail(ctx context.Context, mail string) (*PendingSignup, error)

	// GetByToken retrieves a pending signup whose confirmation token
	// matches and whose timestamp is within ConfirmTokenWindow. Older or
	// absent records both surface as ErrNotFound.
	GetByToken(ctx context.Context, token string) (*PendingSignup, error)

	// Upsert stores the pending signup keyed by mail, replacing the
	// token, fields and timestamp of any previous submission.
	Upsert(ctx context.Context, pending *PendingSignup) error

	// DeleteByToken removes a pending signup by its confirmation token.
	DeleteByToken(ctx context.Context, token string) error
}

// Notifier delivers the confirmation link for a pending signup.
// Implementations own their transport and timeout.
type Notifier interface {
	SendConfirmation(ctx context.Context, mail, token string) error
}

// Transactor runs a function inside a single storage transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
