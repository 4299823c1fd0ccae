// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simple-quiz-org/simple-quiz-api/internal/auth"
	authmocks "github.com/simple-quiz-org/simple-quiz-api/internal/auth/mocks"
	"github.com/simple-quiz-org/simple-quiz-api/internal/httpapi"
	"github.com/simple-quiz-org/simple-quiz-api/internal/room"
	roommocks "github.com/simple-quiz-org/simple-quiz-api/internal/room/mocks"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	sessionTok = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	confirmTok = "0123456789abcdef0123456789abcdef"
	roomID     = "ffffffffffffffffffffffffffffffff"
	baseURL    = "https://quiz.example.com"
)

// passthroughTransactor runs fn directly, without a database.
type passthroughTransactor struct{}

func (passthroughTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fixture bundles the repository mocks beneath a fully wired server.
type fixture struct {
	sessions *authmocks.MockSessionRepository
	users    *authmocks.MockUserRepository
	pending  *authmocks.MockPendingSignupRepository
	notifier *authmocks.MockNotifier
	rooms    *roommocks.MockRepository

	handler http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		sessions: authmocks.NewMockSessionRepository(t),
		users:    authmocks.NewMockUserRepository(t),
		pending:  authmocks.NewMockPendingSignupRepository(t),
		notifier: authmocks.NewMockNotifier(t),
		rooms:    roommocks.NewMockRepository(t),
	}

	hasher := auth.NewLegacyHasher()
	services := httpapi.Services{
		Auth:     auth.NewService(f.sessions, f.users, hasher),
		Signup:   auth.NewSignupService(f.users, f.pending, f.sessions, hasher, f.notifier, passthroughTransactor{}),
		Resolver: auth.NewResolver(f.sessions),
		Rooms:    room.NewService(f.rooms),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := httpapi.NewServer("127.0.0.1:0", baseURL, nil, services, logger, nil)
	require.NoError(t, err)

	f.handler = srv.Handler()
	return f
}

func (f *fixture) do(t *testing.T, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func anonymousSession(token string) *auth.Session {
	return &auth.Session{Token: token}
}

func boundSession(token, userID string) *auth.Session {
	return &auth.Session{Token: token, UserID: &userID}
}

func TestHandleNewSession(t *testing.T) {
	f := newFixture(t)
	f.sessions.On("Create", mock.Anything, mock.AnythingOfType("*auth.Session")).Return(nil)

	rec := f.do(t, http.MethodGet, "/auth/session_id", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, auth.ValidTokenFormat(resp["token"]), "issued token must be 32 hex chars")
}

func TestHandleIsSignin(t *testing.T) {
	t.Run("bound session reports user id", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("GetByToken", mock.Anything, sessionTok).Return(boundSession(sessionTok, "alice"), nil)

		rec := f.do(t, http.MethodGet, "/auth/is_signin", sessionTok, "")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["is_login"])
		assert.Equal(t, "alice", resp["user_id"])
	})

	t.Run("unbound session is not signed in", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("GetByToken", mock.Anything, sessionTok).Return(anonymousSession(sessionTok), nil)

		rec := f.do(t, http.MethodGet, "/auth/is_signin", sessionTok, "")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["is_login"])
		assert.NotContains(t, resp, "user_id")
	})

	t.Run("bearer prefix tolerated", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("GetByToken", mock.Anything, sessionTok).Return(anonymousSession(sessionTok), nil)

		rec := f.do(t, http.MethodGet, "/auth/is_signin", "Bearer "+sessionTok, "")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodGet, "/auth/is_signin", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlePreSignup(t *testing.T) {
	body := `{"mail":"alice@example.com","user_id":"alice","password":"password123","display_name":"Alice"}`

	t.Run("stages signup and mails the link", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("FindTaken", mock.Anything, "alice", "alice@example.com").Return(false, false, nil)
		f.pending.On("GetByMail", mock.Anything, "alice@example.com").Return(nil, auth.ErrNotFound)
		f.pending.On("Upsert", mock.Anything, mock.AnythingOfType("*auth.PendingSignup")).Return(nil)
		f.notifier.On("SendConfirmation", mock.Anything, "alice@example.com", mock.AnythingOfType("string")).Return(nil)

		rec := f.do(t, http.MethodPost, "/auth/pre_signup", "", body)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("validation failure is a client error", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/auth/pre_signup", "",
			`{"mail":"alice@example.com","user_id":"al","password":"password123","display_name":"Alice"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("taken user id is a client error", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("FindTaken", mock.Anything, "alice", "alice@example.com").Return(true, false, nil)

		rec := f.do(t, http.MethodPost, "/auth/pre_signup", "", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body is a client error", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/auth/pre_signup", "", "{not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("infrastructure failure stays generic", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("FindTaken", mock.Anything, "alice", "alice@example.com").
			Return(false, false, errors.New("connection refused"))

		rec := f.do(t, http.MethodPost, "/auth/pre_signup", "", body)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "internal server error", resp["message"])
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestHandleSignup(t *testing.T) {
	t.Run("confirms and binds the session", func(t *testing.T) {
		f := newFixture(t)
		f.pending.On("GetByToken", mock.Anything, confirmTok).Return(&auth.PendingSignup{
			Mail:         "alice@example.com",
			UserID:       "alice",
			PasswordHash: "hash",
			DisplayName:  "Alice",
			Token:        confirmTok,
		}, nil)
		f.users.On("Create", mock.Anything, mock.AnythingOfType("*auth.User")).Return(nil)
		f.pending.On("DeleteByToken", mock.Anything, confirmTok).Return(nil)
		f.sessions.On("BindUser", mock.Anything, sessionTok, "alice").Return(nil)

		rec := f.do(t, http.MethodPost, "/auth/signup", sessionTok, `{"token":"`+confirmTok+`"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown token is a client error", func(t *testing.T) {
		f := newFixture(t)
		f.pending.On("GetByToken", mock.Anything, confirmTok).Return(nil, auth.ErrNotFound)

		rec := f.do(t, http.MethodPost, "/auth/signup", sessionTok, `{"token":"`+confirmTok+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleSignin(t *testing.T) {
	hasher := auth.NewLegacyHasher()

	t.Run("valid credentials bind the session", func(t *testing.T) {
		f := newFixture(t)
		digest, err := hasher.Hash("password123")
		require.NoError(t, err)
		f.users.On("GetByIdentifier", mock.Anything, "alice").
			Return(&auth.User{ID: "alice", PasswordHash: digest}, nil)
		f.sessions.On("BindUser", mock.Anything, sessionTok, "alice").Return(nil)

		rec := f.do(t, http.MethodPost, "/auth/signin", sessionTok,
			`{"user_id":"alice","password":"password123"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		f := newFixture(t)
		digest, err := hasher.Hash("password123")
		require.NoError(t, err)
		f.users.On("GetByIdentifier", mock.Anything, "alice").
			Return(&auth.User{ID: "alice", PasswordHash: digest}, nil)

		rec := f.do(t, http.MethodPost, "/auth/signin", sessionTok,
			`{"user_id":"alice","password":"wrong-password"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user is unauthorized", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByIdentifier", mock.Anything, "alice").Return(nil, auth.ErrNotFound)

		rec := f.do(t, http.MethodPost, "/auth/signin", sessionTok,
			`{"user_id":"alice","password":"password123"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed identifier is a client error, not unauthorized", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/auth/signin", sessionTok,
			`{"user_id":"x","password":"password123"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed password is a client error, not unauthorized", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/auth/signin", sessionTok,
			`{"user_id":"alice","password":"short"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleSignout(t *testing.T) {
	t.Run("deletes the session", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("Delete", mock.Anything, sessionTok).Return(nil)

		rec := f.do(t, http.MethodDelete, "/auth/signout", sessionTok, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("malformed token is a no-op", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodDelete, "/auth/signout", "garbage", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHandleCanIUse(t *testing.T) {
	t.Run("free id is usable", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("UserIDExists", mock.Anything, "alice").Return(false, nil)

		rec := f.do(t, http.MethodGet, "/auth/caniuse?user_id=alice", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]bool
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp["caniuse"])
	})

	t.Run("missing parameter is a client error", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodGet, "/auth/caniuse", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("syntactically invalid id is a client error", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodGet, "/auth/caniuse?user_id=bad.id", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleLookupMail(t *testing.T) {
	t.Run("resolves a fresh token", func(t *testing.T) {
		f := newFixture(t)
		f.pending.On("GetByToken", mock.Anything, confirmTok).Return(&auth.PendingSignup{
			Mail:  "alice@example.com",
			Token: confirmTok,
		}, nil)

		rec := f.do(t, http.MethodGet, "/auth/mail/"+confirmTok, "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "alice@example.com", resp["mail"])
	})

	t.Run("malformed token rejected without lookup", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodGet, "/auth/mail/short", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleRoomCreate(t *testing.T) {
	t.Run("created room gets a location", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("GetByToken", mock.Anything, sessionTok).Return(anonymousSession(sessionTok), nil)
		f.rooms.On("CreateWithOwner", mock.Anything, mock.AnythingOfType("*room.Room"), mock.AnythingOfType("*room.OwnerRecord")).Return(nil)

		rec := f.do(t, http.MethodPost, "/room", sessionTok, `{"name":"quiz night"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, room.ValidRoomID(resp["room_id"]))
		assert.Equal(t, baseURL+"/room?room_id="+resp["room_id"], rec.Header().Get("Location"))
	})

	t.Run("requires a live session", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/room", "", `{"name":"quiz night"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleRoomDetail(t *testing.T) {
	openRoom := func(isPublic bool) *room.Room {
		pw := "1234"
		return &room.Room{
			ID:             roomID,
			Name:           "quiz night",
			AccessPassword: &pw,
			IsPublic:       isPublic,
			IsValid:        true,
		}
	}
	owner := &room.OwnerRecord{RoomID: roomID, SessionID: sessionTok}

	t.Run("access password never serialized", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("GetByToken", mock.Anything, sessionTok).Return(anonymousSession(sessionTok), nil)
		f.rooms.On("GetWithOwner", mock.Anything, roomID).Return(openRoom(true), owner, nil)

		rec := f.do(t, http.MethodGet, "/room/"+roomID, sessionTok, "")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["has_password"])
		assert.NotContains(t, rec.Body.String(), "1234")
	})

	t.Run("private room is forbidden for strangers", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("GetByToken", mock.Anything, sessionTok).Return(anonymousSession(sessionTok), nil)
		strangerOwner := &room.OwnerRecord{RoomID: roomID, SessionID: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"}
		f.rooms.On("GetWithOwner", mock.Anything, roomID).Return(openRoom(false), strangerOwner, nil)

		rec := f.do(t, http.MethodGet, "/room/"+roomID, sessionTok, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("absent room is not found", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("GetByToken", mock.Anything, sessionTok).Return(anonymousSession(sessionTok), nil)
		f.rooms.On("GetWithOwner", mock.Anything, roomID).Return(nil, nil, room.ErrNotFound)

		rec := f.do(t, http.MethodGet, "/room/"+roomID, sessionTok, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("closed room is a client error", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("GetByToken", mock.Anything, sessionTok).Return(anonymousSession(sessionTok), nil)
		closed := openRoom(true)
		closed.IsValid = false
		f.rooms.On("GetWithOwner", mock.Anything, roomID).Return(closed, owner, nil)

		rec := f.do(t, http.MethodGet, "/room/"+roomID, sessionTok, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleRoomList(t *testing.T) {
	t.Run("lists visible rooms", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("GetByToken", mock.Anything, sessionTok).Return(anonymousSession(sessionTok), nil)
		f.rooms.On("List", mock.Anything, "", sessionTok, 0, room.DefaultPerPage).
			Return([]*room.Room{{ID: roomID, Name: "quiz night", IsPublic: true, IsValid: true}}, nil)

		rec := f.do(t, http.MethodGet, "/room/list", sessionTok, "")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, roomID, resp[0]["room_id"])
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("GetByToken", mock.Anything, sessionTok).Return(anonymousSession(sessionTok), nil)
		f.rooms.On("List", mock.Anything, "", sessionTok, 0, room.DefaultPerPage).Return(nil, nil)

		rec := f.do(t, http.MethodGet, "/room/list", sessionTok, "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	})

	t.Run("non-integer paging is a client error", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("GetByToken", mock.Anything, sessionTok).Return(anonymousSession(sessionTok), nil)

		rec := f.do(t, http.MethodGet, "/room/list?per_page=abc", sessionTok, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleRoomUpdate(t *testing.T) {
	t.Run("owner updates the room", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("GetByToken", mock.Anything, sessionTok).Return(anonymousSession(sessionTok), nil)
		f.rooms.On("GetWithOwner", mock.Anything, roomID).Return(
			&room.Room{ID: roomID, Name: "quiz night", IsValid: true},
			&room.OwnerRecord{RoomID: roomID, SessionID: sessionTok},
			nil,
		)
		f.rooms.On("Update", mock.Anything, mock.AnythingOfType("*room.Room")).Return(nil)

		rec := f.do(t, http.MethodPut, "/room/"+roomID, sessionTok, `{"name":"renamed room"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("GetByToken", mock.Anything, sessionTok).Return(anonymousSession(sessionTok), nil)
		f.rooms.On("GetWithOwner", mock.Anything, roomID).Return(
			&room.Room{ID: roomID, Name: "quiz night", IsPublic: true, IsValid: true},
			&room.OwnerRecord{RoomID: roomID, SessionID: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"},
			nil,
		)

		rec := f.do(t, http.MethodPut, "/room/"+roomID, sessionTok, `{"name":"hijack"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestCORS(t *testing.T) {
	newCORSFixture := func(t *testing.T) http.Handler {
		t.Helper()
		f := &fixture{
			sessions: authmocks.NewMockSessionRepository(t),
			users:    authmocks.NewMockUserRepository(t),
			pending:  authmocks.NewMockPendingSignupRepository(t),
			notifier: authmocks.NewMockNotifier(t),
			rooms:    roommocks.NewMockRepository(t),
		}
		hasher := auth.NewLegacyHasher()
		services := httpapi.Services{
			Auth:     auth.NewService(f.sessions, f.users, hasher),
			Signup:   auth.NewSignupService(f.users, f.pending, f.sessions, hasher, f.notifier, passthroughTransactor{}),
			Resolver: auth.NewResolver(f.sessions),
			Rooms:    room.NewService(f.rooms),
		}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		srv, err := httpapi.NewServer("127.0.0.1:0", baseURL, []string{"https://*.example.com"}, services, logger, nil)
		require.NoError(t, err)
		return srv.Handler()
	}

	t.Run("preflight from an allowed origin", func(t *testing.T) {
		h := newCORSFixture(t)
		req := httptest.NewRequest(http.MethodOptions, "/room/list", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets no CORS headers", func(t *testing.T) {
		h := newCORSFixture(t)
		req := httptest.NewRequest(http.MethodOptions, "/room/list", nil)
		req.Header.Set("Origin", "https://evil.example.org")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("invalid pattern rejected at construction", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		_, err := httpapi.NewServer("127.0.0.1:0", baseURL, []string{"[invalid"}, httpapi.Services{}, logger, nil)
		require.Error(t, err)
	})
}
