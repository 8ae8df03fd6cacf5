// Package httpjson holds the small request/response helpers shared by
// the JSON handlers: body decoding with a size cap, response writing,
// and mapping the error taxonomy onto HTTP statuses.
package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/adeoluwa/flocktrack/internal/app/system/apperr"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies; nothing in this API legitimately
// exceeds it.
const maxBodyBytes = 1 << 20

// Decode reads the request body into dst, rejecting unknown fields.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindValidation, err, "invalid request body")
	}
	return nil
}

// Write sends v as JSON with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the uniform error envelope.
type errorBody struct {
	Error string `json:"error"`
}

// WriteError maps err through the apperr taxonomy. Unclassified errors
// are logged in full and surface as a generic 500; classified errors
// log at debug with their internal detail (authorization denials keep
// which axis failed out of the response).
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	} else {
		log.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}
	Write(w, status, errorBody{Error: apperr.Message(err)})
}

// WriteValidation is a shorthand for rejecting a request with a
// validation message.
func WriteValidation(w http.ResponseWriter, log *zap.Logger, format string, args ...any) {
	WriteError(w, log, apperr.Validation(format, args...))
}

// IsBodyTooLarge reports whether err came from the body size cap.
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
