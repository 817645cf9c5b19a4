package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"ecotrack.dev/ecotrack/internal/store"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Detail string `json:"detail"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, errorResponse{Detail: detail})
}

// respondStoreError translates storage sentinels into HTTP statuses.
// Anything unrecognized is treated as a backend outage.
func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrInvalidArgument),
		errors.Is(err, store.ErrReferentialIntegrity),
		errors.Is(err, store.ErrAlreadyExists):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("storage error", "error", err)
		respondError(w, http.StatusServiceUnavailable, "storage unavailable")
	}
}

// decodeBody decodes a JSON request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
