// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gobwas/glob"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/simple-quiz-org/simple-quiz-api/internal/observability"
)

// loggerKey is the context key for the request-scoped logger.
type loggerKey struct{}

// requestLogger returns the request-scoped logger, or the default logger.
func requestLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestLog assigns each request a ULID id, attaches a request-scoped
// logger to the context and records outcome metrics.
func withRequestLog(logger *slog.Logger, metrics *observability.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := ulid.Make().String()

		reqLogger := logger.With(
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
		)
		ctx := context.WithValue(r.Context(), loggerKey{}, reqLogger)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		reqLogger.Info("request handled",
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		if metrics != nil {
			metrics.RecordRequest(r.URL.Path, rec.status)
		}
	})
}

// corsPolicy matches request origins against configured glob patterns.
type corsPolicy struct {
	globs []glob.Glob
}

// newCORSPolicy compiles the origin patterns. An empty pattern list
// disables CORS headers entirely.
func newCORSPolicy(patterns []string) (*corsPolicy, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, oops.Code("CORS_PATTERN_INVALID").With("pattern", p).Wrap(err)
		}
		globs = append(globs, g)
	}
	return &corsPolicy{globs: globs}, nil
}

// allows reports whether origin matches any configured pattern.
func (p *corsPolicy) allows(origin string) bool {
	for _, g := range p.globs {
		if g.Match(origin) {
			return true
		}
	}
	return false
}

// withCORS adds CORS headers for allowed origins and answers preflight
// requests.
func withCORS(policy *corsPolicy, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && policy.allows(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
