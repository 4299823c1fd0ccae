// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/samber/oops"

	"github.com/simple-quiz-org/simple-quiz-api/internal/auth"
	"github.com/simple-quiz-org/simple-quiz-api/internal/room"
)

type roomRequest struct {
	Name           string  `json:"name"`
	Icon           *string `json:"icon,omitempty"`
	Explanation    *string `json:"explanation,omitempty"`
	AccessPassword *string `json:"access_password,omitempty"`
	IsPublic       bool    `json:"is_public"`
}

type roomResponse struct {
	RoomID      string    `json:"room_id"`
	Name        string    `json:"name"`
	Icon        *string   `json:"icon,omitempty"`
	Explanation *string   `json:"explanation,omitempty"`
	IsPublic    bool      `json:"is_public"`
	HasPassword bool      `json:"has_password"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// toRoomResponse renders a room without its access password; whether one
// is set is all a client needs to know.
func toRoomResponse(r *room.Room) roomResponse {
	return roomResponse{
		RoomID:      r.ID,
		Name:        r.Name,
		Icon:        r.Icon,
		Explanation: r.Explanation,
		IsPublic:    r.IsPublic,
		HasPassword: r.AccessPassword != nil,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (in roomRequest) toInput() room.Input {
	return room.Input{
		Name:           in.Name,
		Icon:           in.Icon,
		Explanation:    in.Explanation,
		AccessPassword: in.AccessPassword,
		IsPublic:       in.IsPublic,
	}
}

// identity resolves the caller. Infrastructure failures surface as errors;
// a missing or unknown token is just an unauthenticated identity.
func (s *Server) identity(r *http.Request) (auth.Identity, error) {
	return s.services.Resolver.Resolve(r.Context(), sessionToken(r))
}

// handleRoomCreate stores a new room owned by the caller.
func (s *Server) handleRoomCreate(w http.ResponseWriter, r *http.Request) {
	id, err := s.identity(r)
	if err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}

	var req roomRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}

	created, err := s.services.Rooms.Create(r.Context(), id, req.toInput())
	if err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}

	w.Header().Set("Location", s.publicBaseURL+"/room?room_id="+created.ID)
	writeJSON(w, http.StatusCreated, map[string]string{"room_id": created.ID})
}

// handleRoomDetail returns a room the caller may read.
func (s *Server) handleRoomDetail(w http.ResponseWriter, r *http.Request) {
	id, err := s.identity(r)
	if err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}

	rm, err := s.services.Rooms.Detail(r.Context(), id, r.PathValue("id"))
	if err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomResponse(rm))
}

// handleRoomList returns rooms visible to the caller, newest update first.
func (s *Server) handleRoomList(w http.ResponseWriter, r *http.Request) {
	id, err := s.identity(r)
	if err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}

	since, err := queryInt(r, "since", 0)
	if err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}
	perPage, err := queryInt(r, "per_page", 0)
	if err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}

	rooms, err := s.services.Rooms.List(r.Context(), id, since, perPage)
	if err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}

	resp := make([]roomResponse, 0, len(rooms))
	for _, rm := range rooms {
		resp = append(resp, toRoomResponse(rm))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRoomUpdate rewrites a room's mutable fields.
func (s *Server) handleRoomUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := s.identity(r)
	if err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}

	var req roomRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}

	if _, err := s.services.Rooms.Update(r.Context(), id, r.PathValue("id"), req.toInput()); err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, oops.Code(auth.CodeValidation).Errorf("%s must be an integer", name)
	}
	return n, nil
}
