package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/amitrajput-dev/zelora-backend/pkg/config"
)

// CORS builds the cross-origin policy from configuration. Credentials are
// allowed so the storefront can send cookies alongside bearer tokens.
func CORS(cfg config.AppConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
