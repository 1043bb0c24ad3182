package middleware

import (
	"context"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"obi-site/pkg/logger"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
	// LoggerContextKey is the key for the request-scoped logger
	LoggerContextKey ContextKey = "logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an ID and a logger carrying it. A valid
// incoming X-Request-ID is kept.
func RequestID(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			ctx = context.WithValue(ctx, LoggerContextKey, logger.WithField("request_id", requestID))

			w.Header().Set(requestIDHeader, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestID returns the request ID, or "" outside RequestID
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}

// GetLogger returns the request-scoped logger, falling back to fallback
func GetLogger(ctx context.Context, fallback *logger.Logger) *logger.Logger {
	if l, ok := ctx.Value(LoggerContextKey).(*logger.Logger); ok {
		return l
	}
	return fallback
}

// RequestLogger logs one line per request
func RequestLogger(fallback *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			log := GetLogger(r.Context(), fallback).WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   status,
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start),
			})
			switch {
			case status >= 500:
				log.Error("HTTP request")
			case status >= 400:
				log.Warn("HTTP request")
			default:
				log.Debug("HTTP request")
			}
		})
	}
}
