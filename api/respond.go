package api

import (
	"encoding/json"
	"net/http"

	"github.com/quentinlb/cocktaild/core/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the error category to an HTTP status and renders the
// structured body clients key their handling on.
func writeError(w http.ResponseWriter, err error) {
	appErr := apperrors.As(err)
	writeJSON(w, apperrors.HTTPStatus(err), appErr)
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.NewIncorrectInput("invalid request body", apperrors.SlugIncorrectInput)
	}
	return nil
}
