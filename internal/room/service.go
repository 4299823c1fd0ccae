// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package room

import (
	"context"
	"time"

	"github.com/samber/oops"

	"github.com/simple-quiz-org/simple-quiz-api/internal/auth"
)

// Listing page size bounds.
const (
	DefaultPerPage = 30
	MaxPerPage     = 30
)

// Service handles room creation, mutation and listing on top of the pure
// access checks.
type Service struct {
	rooms Repository

	now func() time.Time
}

// NewService creates a room Service.
func NewService(rooms Repository) *Service {
	return &Service{
		rooms: rooms,
		now:   time.Now,
	}
}

// Create validates input and stores a new room owned by the caller. The
// caller must be a live session; the owner record captures its identity
// pair at this moment and never changes afterwards.
func (s *Service) Create(ctx context.Context, identity auth.Identity, in Input) (*Room, error) {
	if identity.Unauthenticated() {
		return nil, oops.Code(auth.CodeInvalidSession).Errorf("session token is invalid")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	id, err := auth.NewToken()
	if err != nil {
		return nil, oops.Code("ROOM_CREATE_FAILED").
			With("operation", "generate room id").
			Wrap(err)
	}

	now := s.now()
	r := &Room{
		ID:             id,
		Name:           in.Name,
		Icon:           in.Icon,
		Explanation:    in.Explanation,
		AccessPassword: in.AccessPassword,
		IsPublic:       in.IsPublic,
		IsValid:        true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	owner := &OwnerRecord{
		RoomID:    id,
		SessionID: identity.SessionToken,
	}
	if identity.Kind == auth.Registered {
		uid := identity.UserID
		owner.UserID = &uid
	}

	if err := s.rooms.CreateWithOwner(ctx, r, owner); err != nil {
		return nil, oops.Code("ROOM_CREATE_FAILED").
			With("operation", "store room").
			With("room_id", id).
			Wrap(err)
	}
	return r, nil
}

// Detail returns a room the identity may read.
func (s *Service) Detail(ctx context.Context, identity auth.Identity, id string) (*Room, error) {
	if !ValidRoomID(id) {
		return nil, validationError("room id is malformed")
	}

	r, owner, err := s.rooms.GetWithOwner(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, oops.Code(CodeNotFound).Errorf("room does not exist")
		}
		return nil, oops.Code("ROOM_DETAIL_FAILED").
			With("room_id", id).
			Wrap(err)
	}

	switch CheckRead(r, owner, identity) {
	case Allow:
		return r, nil
	case ClosedRoom:
		return nil, oops.Code(CodeClosed).Errorf("room is closed")
	case Forbidden:
		return nil, oops.Code(CodeForbidden).Errorf("room is private")
	default:
		return nil, oops.Code(CodeNotFound).Errorf("room does not exist")
	}
}

// Update validates input and rewrites the room's mutable fields. Only the
// owner writes, and closed rooms are terminal.
func (s *Service) Update(ctx context.Context, identity auth.Identity, id string, in Input) (*Room, error) {
	if !ValidRoomID(id) {
		return nil, validationError("room id is malformed")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	r, owner, err := s.rooms.GetWithOwner(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, oops.Code(CodeNotFound).Errorf("room does not exist")
		}
		return nil, oops.Code("ROOM_UPDATE_FAILED").
			With("room_id", id).
			Wrap(err)
	}

	switch CheckWrite(r, owner, identity) {
	case Allow:
	case Forbidden:
		return nil, oops.Code(CodeForbidden).Errorf("only the owner can modify a room")
	default:
		return nil, oops.Code(CodeNotFound).Errorf("room does not exist")
	}
	// Closed is terminal even for the owner.
	if !r.IsValid {
		return nil, oops.Code(CodeClosed).Errorf("room is closed")
	}

	r.Name = in.Name
	r.Icon = in.Icon
	r.Explanation = in.Explanation
	r.AccessPassword = in.AccessPassword
	r.IsPublic = in.IsPublic
	r.UpdatedAt = s.now()

	if err := s.rooms.Update(ctx, r); err != nil {
		if IsNotFound(err) {
			return nil, oops.Code(CodeNotFound).Errorf("room does not exist")
		}
		return nil, oops.Code("ROOM_UPDATE_FAILED").
			With("room_id", id).
			Wrap(err)
	}
	return r, nil
}

// List returns valid rooms visible to the identity, newest update first.
// since is a row offset; perPage defaults to and is capped at 30.
func (s *Service) List(ctx context.Context, identity auth.Identity, since, perPage int) ([]*Room, error) {
	if since < 0 {
		return nil, validationError("since must not be negative")
	}
	if perPage < 0 {
		return nil, validationError("per_page must not be negative")
	}
	if perPage == 0 || perPage > MaxPerPage {
		perPage = DefaultPerPage
	}

	var userID, sessionID string
	switch identity.Kind {
	case auth.Registered:
		userID = identity.UserID
	case auth.Anonymous:
		sessionID = identity.SessionToken
	}

	rooms, err := s.rooms.List(ctx, userID, sessionID, since, perPage)
	if err != nil {
		return nil, oops.Code("ROOM_LIST_FAILED").Wrap(err)
	}
	return rooms, nil
}
