// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

// Package logging configures the process logger: slog with a JSON or text
// backend, every record stamped with the service identity and any
// OpenTelemetry span found on the context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// serviceHandler decorates records with service/version attributes and the
// ids of the active span, when there is one.
type serviceHandler struct {
	inner   slog.Handler
	service string
	version string
}

func (h *serviceHandler) with(inner slog.Handler) *serviceHandler {
	return &serviceHandler{inner: inner, service: h.service, version: h.version}
}

func (h *serviceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *serviceHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(
		slog.String("service", h.service),
		slog.String("version", h.version),
	)

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	//nolint:wrapcheck // Handler contract: pass the inner error through.
	return h.inner.Handle(ctx, r)
}

func (h *serviceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(h.inner.WithAttrs(attrs))
}

func (h *serviceHandler) WithGroup(name string) slog.Handler {
	return h.with(h.inner.WithGroup(name))
}

// Setup builds the service logger. format is "json" or "text"; anything
// else falls back to JSON. A nil w writes to os.Stderr.
func Setup(service, version, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: slog.LevelDebug}

	var base slog.Handler
	switch format {
	case "text":
		base = slog.NewTextHandler(w, opts)
	default:
		base = slog.NewJSONHandler(w, opts)
	}

	return slog.New(&serviceHandler{
		inner:   base,
		service: service,
		version: version,
	})
}

// SetDefault installs the process-wide default logger.
func SetDefault(service, version, format string) {
	slog.SetDefault(Setup(service, version, format, nil))
}
