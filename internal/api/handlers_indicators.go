package api

import (
	"net/http"
	"time"

	"ecotrack.dev/ecotrack/internal/store"
)

type createIndicatorRequest struct {
	Type       string         `json:"type" validate:"required"`
	Value      float64        `json:"value"`
	Unit       string         `json:"unit" validate:"required"`
	Timestamp  time.Time      `json:"timestamp" validate:"required"`
	Attributes map[string]any `json:"attributes"`
	ZoneID     uint           `json:"zone_id" validate:"required"`
	SourceID   uint           `json:"source_id" validate:"required"`
}

type updateIndicatorRequest struct {
	Type       *string        `json:"type" validate:"omitempty,min=1"`
	Value      *float64       `json:"value"`
	Unit       *string        `json:"unit" validate:"omitempty,min=1"`
	Timestamp  *time.Time     `json:"timestamp"`
	Attributes map[string]any `json:"attributes"`
	ZoneID     *uint          `json:"zone_id"`
	SourceID   *uint          `json:"source_id"`
}

// handleListIndicators serves the filtered, sorted, paginated listing.
func (s *Server) handleListIndicators(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter, err := filterParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	sort, err := store.ResolveSort(q.Get("sort_by"), q.Get("order"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.store.ListIndicators(r.Context(), filter, sort, page)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetIndicator(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	indicator, err := s.store.GetIndicator(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, indicator)
}

func (s *Server) handleCreateIndicator(w http.ResponseWriter, r *http.Request) {
	var req createIndicatorRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	indicator := &store.Indicator{
		Kind:       req.Type,
		Value:      req.Value,
		Unit:       req.Unit,
		Timestamp:  req.Timestamp,
		Attributes: req.Attributes,
		ZoneID:     req.ZoneID,
		SourceID:   req.SourceID,
	}

	if err := s.store.CreateIndicator(r.Context(), indicator); err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, indicator)
}

func (s *Server) handleUpdateIndicator(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateIndicatorRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	indicator, err := s.store.UpdateIndicator(r.Context(), id, store.IndicatorUpdate{
		Kind:       req.Type,
		Value:      req.Value,
		Unit:       req.Unit,
		Timestamp:  req.Timestamp,
		Attributes: req.Attributes,
		ZoneID:     req.ZoneID,
		SourceID:   req.SourceID,
	})
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, indicator)
}

func (s *Server) handleDeleteIndicator(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.DeleteIndicator(r.Context(), id); err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
