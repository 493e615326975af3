package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/amitrajput-dev/zelora-backend/api/responses"
	"github.com/amitrajput-dev/zelora-backend/pkg/config"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/logger"
)

// RateLimiterStore is the counter backend used to enforce fixed windows.
type RateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy describes the fixed-window limits applied to one auth
// endpoint. The email limit throttles attempts per account, the IP limit
// caps overall abuse from a single source.
type AuthRateLimitPolicy struct {
	Name       string
	Window     time.Duration
	IPLimit    int64
	EmailLimit int64
}

// LoginPolicy builds the limiter policy for the login endpoint.
func LoginPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		Name:       "login",
		Window:     cfg.LoginWindow,
		IPLimit:    int64(cfg.LoginIPLimit),
		EmailLimit: int64(cfg.LoginEmailLimit),
	}
}

// RegisterPolicy builds the limiter policy for the registration endpoint.
func RegisterPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		Name:       "register",
		Window:     cfg.RegisterWindow,
		IPLimit:    int64(cfg.RegisterIPLimit),
		EmailLimit: int64(cfg.RegisterEmailLimit),
	}
}

// AuthRateLimit throttles an auth endpoint per client IP and per submitted
// email. The body is buffered so the handler can still decode it. A limiter
// backend failure refuses the request; credential endpoints must not run
// unthrottled.
func AuthRateLimit(store RateLimiterStore, log *logger.Logger, policy AuthRateLimitPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
			if err != nil {
				responses.WriteError(w, r, log, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read request body"))
				return
			}
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))

			if policy.IPLimit > 0 {
				scope := fmt.Sprintf("%s:ip:%s", policy.Name, clientIP(r))
				allowed, err := withinLimit(r.Context(), store, scope, policy.IPLimit, policy.Window)
				if err != nil {
					responses.WriteError(w, r, log, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiter unavailable"))
					return
				}
				if !allowed {
					responses.WriteError(w, r, log, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts"))
					return
				}
			}

			if email := emailFromBody(body); email != "" && policy.EmailLimit > 0 {
				scope := fmt.Sprintf("%s:email:%s", policy.Name, hashIdentifier(email))
				allowed, err := withinLimit(r.Context(), store, scope, policy.EmailLimit, policy.Window)
				if err != nil {
					responses.WriteError(w, r, log, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiter unavailable"))
					return
				}
				if !allowed {
					responses.WriteError(w, r, log, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func withinLimit(ctx context.Context, store RateLimiterStore, scope string, limit int64, window time.Duration) (bool, error) {
	allowed, _, err := store.FixedWindowAllow(ctx, scope, limit, window)
	if err != nil {
		return false, err
	}
	return allowed, nil
}

func emailFromBody(body []byte) string {
	var payload struct {
		Email      string `json:"email"`
		Identifier string `json:"identifier"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Email != "" {
		return strings.ToLower(strings.TrimSpace(payload.Email))
	}
	return strings.ToLower(strings.TrimSpace(payload.Identifier))
}

func hashIdentifier(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-Ip"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
