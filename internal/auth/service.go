// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package auth

import (
	"context"
	"time"

	"github.com/samber/oops"
)

// Service handles session issuance, sign-in and account availability.
// Signup staging and confirmation live on SignupService.
type Service struct {
	sessions SessionRepository
	users    UserRepository
	hasher   PasswordHasher

	now func() time.Time
}

// NewService creates an auth Service.
func NewService(sessions SessionRepository, users UserRepository, hasher PasswordHasher) *Service {
	return &Service{
		sessions: sessions,
		users:    users,
		hasher:   hasher,
		now:      time.Now,
	}
}

// NewSession mints and persists a fresh anonymous session.
func (s *Service) NewSession(ctx context.Context) (*Session, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}

	sess := &Session{
		Token:     token,
		CreatedAt: s.now(),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, oops.Code("SESSION_CREATE_FAILED").Wrap(err)
	}
	return sess, nil
}

// SessionInfo returns the session behind a presented token, or a
// SESSION_INVALID error for a malformed or unknown token.
func (s *Service) SessionInfo(ctx context.Context, token string) (*Session, error) {
	if !ValidTokenFormat(token) {
		return nil, oops.Code(CodeInvalidSession).Errorf("session token is invalid")
	}
	sess, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if IsNotFound(err) {
			return nil, oops.Code(CodeInvalidSession).Errorf("session token is invalid")
		}
		return nil, oops.Code("SESSION_LOOKUP_FAILED").Wrap(err)
	}
	return sess, nil
}

// SignIn verifies credentials and binds the current session to the matched
// user. The identifier is a mail address or a user id; which one is decided
// by shape. Shape failures on either field are validation errors reported
// before any lookup. Unknown identifier and wrong password are
// indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, identifier, password, sessionToken string) (*User, error) {
	if !ValidMailFormat(identifier) && ValidateUserIDLength(identifier) != nil {
		return nil, validationError("identifier must be a mail address or a user id")
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if IsNotFound(err) {
			return nil, oops.Code(CodeInvalidCredentials).Errorf("identifier or password is incorrect")
		}
		return nil, oops.Code("SIGNIN_FAILED").
			With("operation", "look up user").
			Wrap(err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, oops.Code("SIGNIN_FAILED").
			With("operation", "verify password").
			Wrap(err)
	}
	if !ok {
		return nil, oops.Code(CodeInvalidCredentials).Errorf("identifier or password is incorrect")
	}

	if err := s.sessions.BindUser(ctx, sessionToken, user.ID); err != nil {
		if IsNotFound(err) {
			return nil, oops.Code(CodeInvalidSession).Errorf("session token is invalid")
		}
		return nil, oops.Code("SIGNIN_FAILED").
			With("operation", "bind session").
			Wrap(err)
	}

	return user, nil
}

// SignOut discards the presented session. Unknown tokens are ignored so the
// operation is idempotent.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if !ValidTokenFormat(token) {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return oops.Code("SIGNOUT_FAILED").Wrap(err)
	}
	return nil
}

// CanIUse reports whether userID is not yet claimed by a user or pending
// signup. A syntactically invalid id is a validation error, not an
// unavailable id. Availability is advisory: the answer can go stale before
// the caller acts on it.
func (s *Service) CanIUse(ctx context.Context, userID string) (bool, error) {
	if err := ValidateUserID(userID); err != nil {
		return false, err
	}
	exists, err := s.users.UserIDExists(ctx, userID)
	if err != nil {
		return false, oops.Code("AVAILABILITY_CHECK_FAILED").Wrap(err)
	}
	return !exists, nil
}
