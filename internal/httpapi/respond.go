// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/simple-quiz-org/simple-quiz-api/internal/auth"
	"github.com/simple-quiz-org/simple-quiz-api/internal/room"
	"github.com/simple-quiz-org/simple-quiz-api/pkg/errutil"
)

// statusForCode maps domain error codes to HTTP statuses. Codes outside
// this table are internal failures.
var statusForCode = map[string]int{
	auth.CodeValidation:          http.StatusBadRequest,
	auth.CodeDuplicate:           http.StatusBadRequest,
	auth.CodeThrottled:           http.StatusBadRequest,
	auth.CodeInvalidSession:      http.StatusBadRequest,
	auth.CodeInvalidConfirmToken: http.StatusBadRequest,
	auth.CodeInvalidCredentials:  http.StatusUnauthorized,
	room.CodeForbidden:           http.StatusForbidden,
	room.CodeNotFound:            http.StatusNotFound,
	room.CodeClosed:              http.StatusBadRequest,
}

// messageBody is the uniform error payload.
type messageBody struct {
	Message string `json:"message"`
}

// writeJSON renders v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response write failed", "error", err)
	}
}

// writeError maps err to a status. Client errors carry the domain message;
// anything unmapped is logged in full and answered with a generic body so
// internal detail never reaches the wire.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	code := errutil.Code(err)
	if status, ok := statusForCode[code]; ok {
		writeJSON(w, status, messageBody{Message: userMessage(err)})
		return
	}

	errutil.LogError(logger, "request failed", err)
	writeJSON(w, http.StatusInternalServerError, messageBody{Message: "internal server error"})
}

// userMessage extracts the outermost domain message from a coded error.
func userMessage(err error) string {
	var oopsErr oops.OopsError
	if errors.As(err, &oopsErr) {
		return oopsErr.Error()
	}
	return err.Error()
}
