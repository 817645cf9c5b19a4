package api

import (
	"net/http"

	"ecotrack.dev/ecotrack/internal/store"
)

type createSourceRequest struct {
	Name        string  `json:"name" validate:"required"`
	URL         *string `json:"url" validate:"omitempty,url"`
	Description *string `json:"description"`
	Frequency   *string `json:"frequency"`
	Limitations *string `json:"limitations"`
}

type updateSourceRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	URL         *string `json:"url" validate:"omitempty,url"`
	Description *string `json:"description"`
	Frequency   *string `json:"frequency"`
	Limitations *string `json:"limitations"`
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.store.ListSources(r.Context(), page)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	source, err := s.store.GetSource(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, source)
}

func (s *Server) handleCreateSource(w http.ResponseWriter, r *http.Request) {
	var req createSourceRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	source := &store.Source{
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
		Frequency:   req.Frequency,
		Limitations: req.Limitations,
	}

	if err := s.store.CreateSource(r.Context(), source); err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, source)
}

func (s *Server) handleUpdateSource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateSourceRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	source, err := s.store.UpdateSource(r.Context(), id, store.SourceUpdate{
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
		Frequency:   req.Frequency,
		Limitations: req.Limitations,
	})
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, source)
}

func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.DeleteSource(r.Context(), id); err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
