// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package auth

import "context"

// IdentityKind distinguishes the three principal classes a request can
// resolve to.
type IdentityKind int

const (
	// Unauthenticated means no usable session token was presented.
	Unauthenticated IdentityKind = iota
	// Anonymous means a live session with no bound user.
	Anonymous
	// Registered means a live session bound to a user account.
	Registered
)

// String returns a human-readable identity kind for logs.
func (k IdentityKind) String() string {
	switch k {
	case Anonymous:
		return "anonymous"
	case Registered:
		return "registered"
	default:
		return "unauthenticated"
	}
}

// Identity is the resolved principal of a request. For Anonymous the session
// token is the principal id; for Registered the bound user id is.
type Identity struct {
	Kind         IdentityKind
	SessionToken string // set for Anonymous and Registered
	UserID       string // set for Registered only
}

// Unauthenticated reports whether no valid session was presented.
func (id Identity) Unauthenticated() bool {
	return id.Kind == Unauthenticated
}

// Resolver maps a presented session token to an Identity.
type Resolver struct {
	sessions SessionRepository
}

// NewResolver creates a Resolver.
func NewResolver(sessions SessionRepository) *Resolver {
	return &Resolver{sessions: sessions}
}

// Resolve classifies the presented token. A missing, malformed or unknown
// token yields Unauthenticated rather than an error; infrastructure
// failures still surface as errors.
func (r *Resolver) Resolve(ctx context.Context, token string) (Identity, error) {
	if !ValidTokenFormat(token) {
		return Identity{Kind: Unauthenticated}, nil
	}

	sess, err := r.sessions.GetByToken(ctx, token)
	if err != nil {
		if IsNotFound(err) {
			return Identity{Kind: Unauthenticated}, nil
		}
		return Identity{}, err
	}

	if sess.Bound() {
		return Identity{
			Kind:         Registered,
			SessionToken: sess.Token,
			UserID:       *sess.UserID,
		}, nil
	}
	return Identity{
		Kind:         Anonymous,
		SessionToken: sess.Token,
	}, nil
}
