package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/projecthub/internal/common"
	"github.com/dmitrijs2005/projecthub/internal/logging"
)

type errorResponse struct {
	StatusCode             int    `json:"statusCode"`
	Error                  string `json:"error"`
	Message                string `json:"message"`
	Status                 string `json:"status,omitempty"`
	UserVerificationStatus string `json:"userVerificationStatus,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error kind to its HTTP status. Anything unrecognised is
// a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError renders err as the JSON error body. Only StatusError messages
// reach the client; anything else gets the generic status text and is
// logged instead.
func writeError(w http.ResponseWriter, r *http.Request, l logging.Logger, err error) {
	code := statusFor(err)
	body := errorResponse{
		StatusCode: code,
		Error:      http.StatusText(code),
		Message:    http.StatusText(code),
	}

	var se *common.StatusError
	if errors.As(err, &se) {
		body.Message = se.Error()
		body.Status = se.Status
		body.UserVerificationStatus = se.UserVerificationStatus
	} else if code == http.StatusInternalServerError {
		l.Error(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
	}

	writeJSON(w, code, body)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return common.NewStatusError(common.ErrorBadRequest, "Malformed request body")
	}
	return nil
}
