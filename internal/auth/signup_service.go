// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
)

// SignupService drives the two-phase signup flow: a validated, throttled
// pre-registration followed by mail-link confirmation that materializes the
// permanent account.
type SignupService struct {
	users    UserRepository
	pending  PendingSignupRepository
	sessions SessionRepository
	hasher   PasswordHasher
	notifier Notifier
	tx       Transactor

	now func() time.Time
}

// NewSignupService creates a SignupService.
func NewSignupService(
	users UserRepository,
	pending PendingSignupRepository,
	sessions SessionRepository,
	hasher PasswordHasher,
	notifier Notifier,
	tx Transactor,
) *SignupService {
	return &SignupService{
		users:    users,
		pending:  pending,
		sessions: sessions,
		hasher:   hasher,
		notifier: notifier,
		tx:       tx,
		now:      time.Now,
	}
}

// Start validates and stages a signup, then hands the confirmation link to
// the notifier. The pending record is keyed by mail; resubmission refreshes
// it in place. A delivery failure is reported but does not roll the record
// back, so the client can retry after the cool-down without losing state.
func (s *SignupService) Start(ctx context.Context, in SignupInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	userIDTaken, mailTaken, err := s.users.FindTaken(ctx, in.UserID, in.Mail)
	if err != nil {
		return oops.Code("SIGNUP_START_FAILED").
			With("operation", "check uniqueness").
			Wrap(err)
	}
	if userIDTaken {
		return oops.Code(CodeDuplicate).Errorf("user id is already taken")
	}
	if mailTaken {
		return oops.Code(CodeDuplicate).Errorf("mail address is already registered")
	}

	// Cool-down: advisory, not serialized. Two concurrent submissions for
	// one mail can both pass this check; the mail-keyed upsert below makes
	// them converge on a single pending row.
	prev, err := s.pending.GetByMail(ctx, in.Mail)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return oops.Code("SIGNUP_START_FAILED").
			With("operation", "check cool-down").
			Wrap(err)
	}
	if prev != nil && s.now().Sub(prev.UpdatedAt) < SignupCoolDown {
		return oops.Code(CodeThrottled).Errorf("please wait at least 30 seconds between signup attempts")
	}

	token, err := NewToken()
	if err != nil {
		return oops.Code("SIGNUP_START_FAILED").
			With("operation", "generate confirmation token").
			Wrap(err)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return oops.Code("SIGNUP_START_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	var comment string
	if in.Comment != nil {
		comment = *in.Comment
	}

	staged := &PendingSignup{
		Mail:         in.Mail,
		UserID:       in.UserID,
		PasswordHash: digest,
		DisplayName:  in.DisplayName,
		Comment:      comment,
		Icon:         in.Icon,
		Token:        token,
		UpdatedAt:    s.now(),
	}
	if err := s.pending.Upsert(ctx, staged); err != nil {
		return oops.Code("SIGNUP_START_FAILED").
			With("operation", "stage pending signup").
			Wrap(err)
	}

	if err := s.notifier.SendConfirmation(ctx, in.Mail, token); err != nil {
		return oops.Code(CodeMailDelivery).
			With("operation", "send confirmation mail").
			Wrap(err)
	}

	return nil
}

// Confirm consumes a confirmation token: the permanent user is inserted,
// the pending signup deleted, and the current session bound to the new
// account, all in one transaction. A token is therefore single-use; a
// replay finds no pending row and fails the same way an expired one does.
func (s *SignupService) Confirm(ctx context.Context, token, sessionToken string) (string, error) {
	staged, err := s.pending.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", oops.Code(CodeInvalidConfirmToken).Errorf("confirmation token is invalid or expired")
		}
		return "", oops.Code("SIGNUP_CONFIRM_FAILED").
			With("operation", "look up pending signup").
			Wrap(err)
	}

	user := &User{
		ID:           staged.UserID,
		Mail:         staged.Mail,
		PasswordHash: staged.PasswordHash,
		DisplayName:  staged.DisplayName,
		Comment:      staged.Comment,
		Icon:         staged.Icon,
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			// A unique-violation means another signup claimed the id or
			// mail since staging; keep its code so the boundary can map
			// it to a client error.
			var oopsErr oops.OopsError
			if errors.As(err, &oopsErr) && oopsErr.Code() == CodeDuplicate {
				return err
			}
			return oops.Code("SIGNUP_CONFIRM_FAILED").
				With("operation", "create user").
				With("user_id", user.ID).
				Wrap(err)
		}
		if err := s.pending.DeleteByToken(ctx, token); err != nil {
			return oops.Code("SIGNUP_CONFIRM_FAILED").
				With("operation", "delete pending signup").
				Wrap(err)
		}
		if err := s.sessions.BindUser(ctx, sessionToken, user.ID); err != nil {
			return oops.Code("SIGNUP_CONFIRM_FAILED").
				With("operation", "bind session").
				Wrap(err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return user.ID, nil
}

// LookupMail resolves a confirmation token back to its mail address, used
// by the registration page to pre-fill the form.
func (s *SignupService) LookupMail(ctx context.Context, token string) (string, error) {
	staged, err := s.pending.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", oops.Code(CodeInvalidConfirmToken).Errorf("confirmation token is invalid or expired")
		}
		return "", oops.Code("SIGNUP_LOOKUP_FAILED").
			With("operation", "look up pending signup").
			Wrap(err)
	}
	return staged.Mail, nil
}
