// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/samber/oops"

	"github.com/simple-quiz-org/simple-quiz-api/internal/auth"
)

type preSignupRequest struct {
	Mail        string  `json:"mail"`
	UserID      string  `json:"user_id"`
	Password    string  `json:"password"`
	DisplayName string  `json:"display_name"`
	Comment     *string `json:"comment,omitempty"`
	Icon        *string `json:"icon,omitempty"`
}

type signupRequest struct {
	Token string `json:"token"`
}

type signinRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

// decodeBody parses a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return oops.Code(auth.CodeValidation).Errorf("request body is malformed")
	}
	return nil
}

// handleNewSession mints a fresh anonymous session.
func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.services.Auth.NewSession(r.Context())
	if err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}
	if s.metrics != nil {
		s.metrics.SessionsIssued.Inc()
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": sess.Token})
}

// handleIsSignin reports whether the presented session is bound to a user.
func (s *Server) handleIsSignin(w http.ResponseWriter, r *http.Request) {
	sess, err := s.services.Auth.SessionInfo(r.Context(), sessionToken(r))
	if err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}

	resp := map[string]any{"is_login": sess.Bound()}
	if sess.Bound() {
		resp["user_id"] = *sess.UserID
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePreSignup stages a signup and mails the confirmation link.
func (s *Server) handlePreSignup(w http.ResponseWriter, r *http.Request) {
	var req preSignupRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}

	err := s.services.Signup.Start(r.Context(), auth.SignupInput{
		Mail:        req.Mail,
		UserID:      req.UserID,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Comment:     req.Comment,
		Icon:        req.Icon,
	})
	if err != nil {
		s.recordSignup("start", "failure")
		writeError(w, requestLogger(r.Context()), err)
		return
	}
	s.recordSignup("start", "success")
	writeJSON(w, http.StatusOK, struct{}{})
}

// handleSignup confirms a staged signup and binds the current session.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}

	if _, err := s.services.Signup.Confirm(r.Context(), req.Token, sessionToken(r)); err != nil {
		s.recordSignup("confirm", "failure")
		writeError(w, requestLogger(r.Context()), err)
		return
	}
	s.recordSignup("confirm", "success")
	writeJSON(w, http.StatusOK, struct{}{})
}

// handleSignin verifies credentials and binds the current session.
func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}

	if _, err := s.services.Auth.SignIn(r.Context(), req.UserID, req.Password, sessionToken(r)); err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// handleSignout discards the presented session.
func (s *Server) handleSignout(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Auth.SignOut(r.Context(), sessionToken(r)); err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// handleCanIUse reports user id availability.
func (s *Server) handleCanIUse(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, requestLogger(r.Context()),
			oops.Code(auth.CodeValidation).Errorf("user_id query parameter is required"))
		return
	}

	ok, err := s.services.Auth.CanIUse(r.Context(), userID)
	if err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"caniuse": ok})
}

// handleLookupMail resolves a confirmation token to its mail address so
// the register page can pre-fill the form.
func (s *Server) handleLookupMail(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if !auth.ValidTokenFormat(token) {
		writeError(w, requestLogger(r.Context()),
			oops.Code(auth.CodeInvalidConfirmToken).Errorf("confirmation token is invalid or expired"))
		return
	}

	mail, err := s.services.Signup.LookupMail(r.Context(), token)
	if err != nil {
		writeError(w, requestLogger(r.Context()), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"mail": mail})
}

func (s *Server) recordSignup(stage, result string) {
	if s.metrics != nil {
		s.metrics.RecordSignup(stage, result)
	}
}
