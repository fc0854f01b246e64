// Package httputil holds the JSON response helpers shared by every handler.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "baiki/pkg/domain-errors"
)

// maxBodyBytes caps request bodies decoded by DecodeJSON.
const maxBodyBytes = 1 << 20

// ErrorBody is the payload inside the uniform error envelope.
type ErrorBody struct {
	Name       string `json:"name"`
	Message    string `json:"message"`
	Code       string `json:"code"`
	StatusCode int    `json:"statusCode"`
	Details    any    `json:"details,omitempty"`
}

// ErrorEnvelope is the uniform error response: {"error": {...}}.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError serializes err into the error envelope. Errors outside the taxonomy are
// reported as INTERNAL_SERVER_ERROR with a generic message so causes never leak.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusFor(err), ToEnvelope(err))
}

// ToEnvelope converts err into the envelope body.
func ToEnvelope(err error) ErrorEnvelope {
	de, ok := dErrors.As(err)
	if !ok {
		return ErrorEnvelope{Error: ErrorBody{
			Name:       dErrors.CodeInternal.Name(),
			Message:    "An unexpected error occurred",
			Code:       string(dErrors.CodeInternal),
			StatusCode: http.StatusInternalServerError,
		}}
	}
	code := de.Code
	if code == dErrors.CodeInvariantViolation {
		code = dErrors.CodeValidation
	}
	return ErrorEnvelope{Error: ErrorBody{
		Name:       code.Name(),
		Message:    de.Message,
		Code:       string(code),
		StatusCode: code.HTTPStatus(),
		Details:    de.Details,
	}}
}

// StatusFor returns the response status for err.
func StatusFor(err error) int {
	if de, ok := dErrors.As(err); ok {
		return de.Code.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// DecodeJSON decodes the request body into dst, rejecting unknown shapes with BAD_REQUEST.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dErrors.New(dErrors.CodeBadRequest, "request body is required")
		}
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
