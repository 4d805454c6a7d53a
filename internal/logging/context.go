// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// idKey names a request-scoped ID stored in a context. The key doubles as the
// log field name.
type idKey string

const (
	correlationIDKey idKey = "correlation_id"
	requestIDKey     idKey = "request_id"
)

// ctxIDKeys is the order IDs are attached to log lines.
var ctxIDKeys = [...]idKey{correlationIDKey, requestIDKey}

// GenerateCorrelationID returns the first 8 characters of a random UUID.
// Short enough to grep for, unique enough within one process.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// GenerateRequestID returns a random UUID.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithCorrelationID attaches a correlation ID to ctx.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns the correlation ID of ctx, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return idFromContext(ctx, correlationIDKey)
}

// ContextWithRequestID attaches an HTTP request ID to ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID of ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	return idFromContext(ctx, requestIDKey)
}

func idFromContext(ctx context.Context, key idKey) string {
	id, _ := ctx.Value(key).(string)
	return id
}

// Ctx returns the global logger with the IDs of ctx attached.
//
//	logging.Ctx(ctx).Info().Msg("rating stored")
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := CtxWith(ctx).Logger()
	return &logger
}

// CtxWith is Ctx for callers that add their own fields first.
//
//	logger := logging.CtxWith(ctx).Int("user_id", id).Logger()
func CtxWith(ctx context.Context) zerolog.Context {
	logCtx := With()
	for _, key := range ctxIDKeys {
		if id := idFromContext(ctx, key); id != "" {
			logCtx = logCtx.Str(string(key), id)
		}
	}
	return logCtx
}

// WithComponent returns a child of the global logger tagged with component.
//
//	dbLogger := logging.WithComponent("database")
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
