// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package room

import "github.com/simple-quiz-org/simple-quiz-api/internal/auth"

// Decision is the outcome of an access check.
type Decision int

const (
	// Allow grants the operation.
	Allow Decision = iota
	// Forbidden denies the operation for an identity mismatch.
	Forbidden
	// NotFound means the room does not exist.
	NotFound
	// ClosedRoom means the room exists but is terminally closed.
	ClosedRoom
)

// String returns a human-readable decision for logs.
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case ClosedRoom:
		return "closed_room"
	default:
		return "unknown"
	}
}

// isOwner reports whether identity matches the owner record. A set UserID
// is authoritative; the creating session is only consulted when no user
// owns the room. Ownership does not migrate when a session later binds to
// a user, so a Registered identity never matches via its session token.
func isOwner(owner *OwnerRecord, identity auth.Identity) bool {
	if owner == nil {
		return false
	}
	if owner.UserID != nil {
		return identity.Kind == auth.Registered && identity.UserID == *owner.UserID
	}
	return identity.Kind == auth.Anonymous && identity.SessionToken == owner.SessionID
}

// CheckRead decides whether identity may read the room. Public valid rooms
// are readable by anyone; private rooms only by their owner.
func CheckRead(room *Room, owner *OwnerRecord, identity auth.Identity) Decision {
	if room == nil {
		return NotFound
	}
	if !room.IsValid {
		return ClosedRoom
	}
	if room.IsPublic {
		return Allow
	}
	if isOwner(owner, identity) {
		return Allow
	}
	return Forbidden
}

// CheckWrite decides whether identity may mutate the room. Visibility is
// irrelevant: only the owner writes.
func CheckWrite(room *Room, owner *OwnerRecord, identity auth.Identity) Decision {
	if room == nil {
		return NotFound
	}
	if isOwner(owner, identity) {
		return Allow
	}
	return Forbidden
}
