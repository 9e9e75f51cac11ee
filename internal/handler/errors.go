package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/planner"
)

// statusFor maps a failure kind to its HTTP status. Unknown kinds are 500.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindWeakPassword:
		return http.StatusUnprocessableEntity
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindNotAuthenticated, domain.KindInvalidCredentials:
		return http.StatusUnauthorized
	case domain.KindPermissionDenied:
		return http.StatusForbidden
	case domain.KindEmailAlreadyInUse, domain.KindBusy:
		return http.StatusConflict
	case domain.KindInvalidCredential, domain.KindMalformedResponse:
		return http.StatusBadGateway
	case domain.KindConfiguration, domain.KindMissingCredential, domain.KindProviderUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the text shown to the client for err.
// Internal failures never leak their cause.
func messageFor(kind domain.ErrorKind, err error) string {
	switch kind {
	case domain.KindValidation:
		return unwrapMessage(err)
	case domain.KindMissingCredential, domain.KindInvalidCredential,
		domain.KindMalformedResponse, domain.KindProviderUnavailable:
		return planner.UserMessage(err)
	case domain.KindNotFound:
		return "session not found"
	case domain.KindNotAuthenticated:
		return "authentication required"
	case domain.KindPermissionDenied:
		return "permission denied"
	case domain.KindBusy:
		return domain.ErrBusy.Error()
	case domain.KindInvalidCredentials:
		return domain.ErrInvalidCredentials.Error()
	case domain.KindEmailAlreadyInUse:
		return domain.ErrEmailAlreadyInUse.Error()
	case domain.KindWeakPassword:
		return domain.ErrWeakPassword.Error()
	case domain.KindConfiguration:
		return domain.ErrConfiguration.Error()
	default:
		return "internal server error"
	}
}

// respondError classifies err and writes the error envelope.
// 5xx responses are logged with the full cause.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path, "kind", kind, "error", err)
	}
	code := kind
	if kind == domain.KindUnknown || kind == domain.KindIndexMissing {
		code = "internal_error"
	}
	writeJSON(w, status, errorBody(code, messageFor(kind, err)))
}

func errorBody(code domain.ErrorKind, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: string(code), Message: message}}
}

// requestBody returns an ErrorResponse for a bad request rejected before
// reaching the service layer (e.g. missing or malformed body).
func requestBody(message string) ErrorResponse {
	return errorBody(domain.KindValidation, message)
}

// unwrapMessage extracts the human-readable part from a wrapped validation error.
// e.g. "planner.Planner.Submit: validation error: destination is required" → "destination is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	prefix := domain.ErrValidation.Error() + ": "
	if i := strings.LastIndex(msg, prefix); i >= 0 && len(msg) > i+len(prefix) {
		return msg[i+len(prefix):]
	}
	return msg
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody reads a JSON request body into dst. On failure it writes the
// response (413 for oversized bodies, 422 otherwise) and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("request_too_large", "request body too large"))
	case errors.Is(err, io.EOF):
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("request body is required"))
	default:
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(fmt.Sprintf("invalid request body: %v", err)))
	}
	return false
}
