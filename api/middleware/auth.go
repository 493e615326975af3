package middleware

import (
	"net/http"
	"strings"

	"github.com/amitrajput-dev/zelora-backend/api/responses"
	"github.com/amitrajput-dev/zelora-backend/pkg/auth"
	"github.com/amitrajput-dev/zelora-backend/pkg/config"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/logger"
)

// RequireAuth validates the bearer token and seeds the request context with
// the caller's identity.
func RequireAuth(cfg config.JWTConfig, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				responses.WriteError(w, r, log, err)
				return
			}

			claims, err := auth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(w, r, log, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid or expired token"))
				return
			}

			ctx := WithIdentity(r.Context(), claims.UserID, claims.Role)
			ctx = log.WithUserID(ctx, claims.UserID.String())
			ctx = log.WithActorRole(ctx, string(claims.Role))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "authorization header must be a bearer token")
	}
	return parts[1], nil
}
