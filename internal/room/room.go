// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

// Package room provides the quiz room entity, its ownership access control
// and the room service.
package room

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/samber/oops"
)

// ErrNotFound is returned when a requested room does not exist.
var ErrNotFound = errors.New("room not found")

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Error codes surfaced to the HTTP boundary.
const (
	CodeValidation = "VALIDATION_FAILED"
	CodeForbidden  = "ROOM_FORBIDDEN"
	CodeNotFound   = "ROOM_NOT_FOUND"
	CodeClosed     = "ROOM_CLOSED"
)

// Field limits.
const (
	MinNameLength        = 3
	MaxNameLength        = 30
	MinIconLength        = 32
	MaxIconLength        = 38
	MaxExplanationLength = 100
)

var (
	iconRegex           = regexp.MustCompile(`^[a-zA-Z0-9.]+$`)
	accessPasswordRegex = regexp.MustCompile(`^[0-9]{4}$`)
	roomIDRegex         = regexp.MustCompile(`^[0-9a-f]{32}$`)
)

// Room is a quiz room. IsValid false marks the room closed, a terminal
// state: closed rooms reject writes and read as a business-rule error
// rather than a 404.
type Room struct {
	ID             string
	Name           string
	Icon           *string
	Explanation    *string
	AccessPassword *string
	IsPublic       bool
	IsValid        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OwnerRecord is the creator's identity pair, written once at creation and
// never mutated. If UserID is set it is the authoritative owner; otherwise
// the creating session is.
type OwnerRecord struct {
	RoomID    string
	UserID    *string
	SessionID string
}

// ValidRoomID reports whether id has the 32-hex room id shape.
func ValidRoomID(id string) bool {
	return roomIDRegex.MatchString(id)
}

func validationError(msg string) error {
	return oops.Code(CodeValidation).Errorf("%s", msg)
}

// Input carries the client-supplied room fields for create and update.
type Input struct {
	Name           string
	Icon           *string
	Explanation    *string
	AccessPassword *string
	IsPublic       bool
}

// Validate checks all field constraints, first violation wins.
func (in *Input) Validate() error {
	if len(in.Name) < MinNameLength || len(in.Name) > MaxNameLength {
		return validationError("name must be between 3 and 30 characters")
	}
	if in.Icon != nil {
		icon := *in.Icon
		if len(icon) < MinIconLength || len(icon) > MaxIconLength {
			return validationError("icon must be between 32 and 38 characters")
		}
		if !iconRegex.MatchString(icon) || strings.Contains(icon, "..") {
			return validationError("icon contains invalid characters")
		}
	}
	if in.Explanation != nil && len(*in.Explanation) > MaxExplanationLength {
		return validationError("explanation must be at most 100 characters")
	}
	if in.AccessPassword != nil && !accessPasswordRegex.MatchString(*in.AccessPassword) {
		return validationError("access password must be exactly 4 digits")
	}
	return nil
}

// Repository manages room persistence.
type Repository interface {
	// CreateWithOwner atomically stores a room and its owner record.
	CreateWithOwner(ctx context.Context, room *Room, owner *OwnerRecord) error

	// GetWithOwner retrieves a room and its owner record by id.
	// Returns an error wrapping ErrNotFound when no record matches.
	GetWithOwner(ctx context.Context, id string) (*Room, *OwnerRecord, error)

	// Update rewrites the mutable fields of a room and bumps updated_at.
	// Ownership and validity are not touched here.
	Update(ctx context.Context, room *Room) error

	// List returns valid rooms visible to the given identity pair, newest
	// update first. userID may be empty for anonymous callers; sessionID
	// may be empty for unauthenticated ones.
	List(ctx context.Context, userID, sessionID string, since, perPage int) ([]*Room, error)
}
