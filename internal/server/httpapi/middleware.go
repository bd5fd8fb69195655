package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dkazakov/taskdeck/internal/common"
	"github.com/dkazakov/taskdeck/internal/logging"
	"github.com/dkazakov/taskdeck/internal/metrics"
	"github.com/dkazakov/taskdeck/internal/server/auth"
)

// contextKey is a private type so request-scoped values cannot collide with
// keys set by other packages.
type contextKey string

var (
	userIDContextKey       = contextKey("user_id")
	userIDHolderContextKey = contextKey("user_id_holder")
)

// userIDHolder lets the access guard report the verified identity back up
// to the logging middleware, which wraps it and therefore never sees the
// derived request the guard hands downstream.
type userIDHolder struct {
	value string
}

// UserIDFromContext returns the verified caller identity attached by the
// access guard. It is only present on requests that passed the guard.
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user id not found in context")
	}
	return userID, nil
}

// ContextWithUserID injects a caller identity into the context. Used by
// tests and anything that needs to call handlers without the guard.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// TokenVerifier is the slice of the token service the access guard needs.
type TokenVerifier interface {
	Verify(tokenString string, expected auth.TokenKind) (*auth.Claims, error)
}

// NewAccessGuard returns middleware that authenticates requests with a
// bearer access token. A missing token is 401; a present but unverifiable
// token (bad signature, expired, wrong kind) is 403. On success the caller's
// user id is attached to the request context.
func NewAccessGuard(verifier TokenVerifier, m *metrics.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(common.AuthorizationHeaderName)
			if !strings.HasPrefix(header, common.BearerPrefix) {
				m.AuthFailure("missing_token")
				writeServiceError(w, common.ErrMissingToken)
				return
			}

			tokenString := strings.TrimPrefix(header, common.BearerPrefix)
			if tokenString == "" {
				m.AuthFailure("missing_token")
				writeServiceError(w, common.ErrMissingToken)
				return
			}

			claims, err := verifier.Verify(tokenString, auth.TokenKindAccess)
			if err != nil {
				m.AuthFailure("invalid_token")
				writeServiceError(w, common.ErrInvalidToken)
				return
			}

			if holder, ok := r.Context().Value(userIDHolderContextKey).(*userIDHolder); ok {
				holder.value = claims.UserID
			}

			ctx := ContextWithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// NewLoggingMiddleware logs one structured line per request and feeds the
// request counters. Each request gets a random id so concurrent log lines
// can be correlated.
func NewLoggingMiddleware(logger logging.Logger, m *metrics.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID, err := common.MakeRandHexString(8)
			if err != nil {
				requestID = "unknown"
			}

			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			holder := &userIDHolder{}
			ctx := context.WithValue(r.Context(), userIDHolderContextKey, holder)

			next.ServeHTTP(rec, r.WithContext(ctx))

			duration := time.Since(start)
			m.ObserveRequest(r.Method, rec.statusCode, duration)

			args := []any{
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.statusCode,
				"duration", duration.String(),
			}
			if holder.value != "" {
				args = append(args, "user_id", holder.value)
			}

			switch {
			case rec.statusCode >= 500:
				logger.Error(r.Context(), "http request", args...)
			case rec.statusCode >= 400:
				logger.Warn(r.Context(), "http request", args...)
			default:
				logger.Info(r.Context(), "http request", args...)
			}
		})
	}
}

// NewCORSMiddleware answers preflight requests and stamps permissive CORS
// headers on every response. The API is bearer-token only, so credentialed
// cross-origin access is not needed and the wildcard origin is acceptable.
func NewCORSMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NewRecoveryMiddleware converts handler panics into 500 responses instead
// of crashing the process.
func NewRecoveryMiddleware(logger logging.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error(r.Context(), "panic recovered",
						"panic", fmt.Sprint(rec),
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					writeError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
