package api

import (
	"net/http"

	"ecotrack.dev/ecotrack/internal/store"
)

type createZoneRequest struct {
	Name       string  `json:"name" validate:"required"`
	PostalCode *string `json:"postal_code"`
	Geom       *string `json:"geom"`
}

type updateZoneRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1"`
	PostalCode *string `json:"postal_code"`
	Geom       *string `json:"geom"`
}

func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.store.ListZones(r.Context(), page)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	zone, err := s.store.GetZone(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, zone)
}

func (s *Server) handleCreateZone(w http.ResponseWriter, r *http.Request) {
	var req createZoneRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	zone := &store.Zone{
		Name:       req.Name,
		PostalCode: req.PostalCode,
		Geom:       req.Geom,
	}

	if err := s.store.CreateZone(r.Context(), zone); err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, zone)
}

func (s *Server) handleUpdateZone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateZoneRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	zone, err := s.store.UpdateZone(r.Context(), id, store.ZoneUpdate{
		Name:       req.Name,
		PostalCode: req.PostalCode,
		Geom:       req.Geom,
	})
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, zone)
}

func (s *Server) handleDeleteZone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.DeleteZone(r.Context(), id); err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
