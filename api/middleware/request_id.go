package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/amitrajput-dev/zelora-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID ensures every request carries a request id, echoing it back on the
// response and stamping it onto the request-scoped logger.
func RequestID(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			ctx := log.WithRequestID(r.Context(), requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
