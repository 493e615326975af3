package middleware

import (
	"fmt"
	"net/http"

	"github.com/amitrajput-dev/zelora-backend/api/responses"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/logger"
)

// Recoverer converts handler panics into internal-error responses instead of
// tearing down the connection.
func Recoverer(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := pkgerrors.Wrap(pkgerrors.CodeInternal, fmt.Errorf("panic: %v", rec), "request panicked")
					responses.WriteError(w, r, log, err)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
