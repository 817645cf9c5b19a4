package api

import (
	"net/http"
	"strconv"

	"ecotrack.dev/ecotrack/internal/store"
)

// Indicator kinds with dedicated statistics endpoints.
const (
	kindAirQuality = "air_quality"
	kindCO2        = "co2"
)

// chartResponse is the shared shape of the charting endpoints:
// parallel label and value slices.
type chartResponse struct {
	Labels []string  `json:"labels"`
	Series []float64 `json:"series"`
}

// handleAirAverages returns the average air quality value per zone,
// optionally restricted by zone_id/from/to.
func (s *Server) handleAirAverages(w http.ResponseWriter, r *http.Request) {
	filter, err := filterParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	labels, series, err := s.store.AveragesByZone(r.Context(), kindAirQuality, filter)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, chartResponse{Labels: labels, Series: series})
}

// handleCO2Trend returns summed CO2 values bucketed by period
// (daily, weekly, or monthly; monthly when omitted).
func (s *Server) handleCO2Trend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	period, err := store.ResolvePeriod(q.Get("period"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var zoneID *uint
	if raw := q.Get("zone_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid zone_id "+strconv.Quote(raw))
			return
		}
		v := uint(id)
		zoneID = &v
	}

	labels, series, err := s.store.Trend(r.Context(), kindCO2, zoneID, period)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, chartResponse{Labels: labels, Series: series})
}

// handleSummary returns count/avg/min/max per indicator type.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := filterParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summaries, err := s.store.Summary(r.Context(), filter)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summaries)
}
