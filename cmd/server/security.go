// security.go - Request identity, credentials and access logging.
//
// This file implements the middleware that tags every request with an ID and
// logs it, and the extraction of the requester's own GitHub token.
package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

// HeaderGitHubToken lets callers pass their token without putting it in the URL.
const HeaderGitHubToken = "X-GitHub-Token"

// Context keys for storing request information in request context.
type contextKey string

// ContextKeyRequestID is the key for the request ID in context.
var ContextKeyRequestID contextKey = "request_id"

// RequestIDFromContext retrieves the request ID from the request context.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

// RequestIDMiddleware reuses an incoming X-Request-ID or generates a new one.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(HeaderRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}
		w.Header().Set(HeaderRequestID, id)
		ctx := context.WithValue(r.Context(), ContextKeyRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// AccessLogMiddleware logs one line per request. The query string is left
// out because it may carry a token.
func AccessLogMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Infow("Request",
				"request_id", RequestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}

// extractUserToken returns the token the requester supplied, from the
// X-GitHub-Token header or the token query parameter.
func extractUserToken(r *http.Request) string {
	if tok := strings.TrimSpace(r.Header.Get(HeaderGitHubToken)); tok != "" {
		return tok
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
