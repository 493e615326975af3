package responses

import (
	"encoding/json"
	"net/http"

	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/logger"
	"github.com/amitrajput-dev/zelora-backend/pkg/types"
)

// codes whose caller-supplied message is safe to show to clients. Everything
// else falls back to the metadata's public message.
var passthroughMessage = map[pkgerrors.Code]bool{
	pkgerrors.CodeValidation:    true,
	pkgerrors.CodeNotFound:      true,
	pkgerrors.CodeConflict:      true,
	pkgerrors.CodeStateConflict: true,
	pkgerrors.CodeUnauthorized:  true,
	pkgerrors.CodeForbidden:     true,
}

// WriteSuccess writes a 200 envelope with the given payload.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

// WriteSuccessStatus writes a success envelope with an explicit status code.
func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.SuccessEnvelope{Data: data})
}

// WriteError maps err to an error envelope. Typed errors drive the status and
// public message through their code metadata; anything untyped is treated as
// internal and never leaks its message.
func WriteError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	appErr := pkgerrors.As(err)
	if appErr == nil {
		appErr = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unhandled error")
	}

	code := appErr.Code()
	meta := pkgerrors.MetadataFor(code)

	message := meta.PublicMessage
	if passthroughMessage[code] && appErr.Message() != "" {
		message = appErr.Message()
	}

	apiErr := types.APIError{Code: string(code), Message: message}
	if meta.DetailsAllowed {
		apiErr.Details = appErr.Details()
	}

	logEvent(r, log, appErr, meta.HTTPStatus)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(meta.HTTPStatus)
	_ = json.NewEncoder(w).Encode(types.ErrorEnvelope{Error: apiErr})
}

func logEvent(r *http.Request, log *logger.Logger, appErr *pkgerrors.Error, status int) {
	if log == nil {
		return
	}
	ctx := log.WithFields(r.Context(), map[string]any{
		"error_code": string(appErr.Code()),
		"status":     status,
		"method":     r.Method,
		"path":       r.URL.Path,
	})
	if status >= http.StatusInternalServerError {
		ctx = log.WithField(ctx, "error_dump", pkgerrors.Dump(appErr))
		log.Error(ctx, "request failed", appErr)
		return
	}
	log.Warn(ctx, appErr.Error())
}
