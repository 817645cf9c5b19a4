package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"ecotrack.dev/ecotrack/internal/store"
)

// timeFormats are the accepted layouts for from/to query parameters.
var timeFormats = []string{time.RFC3339, "2006-01-02"}

func pathID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

// pageParams reads skip/limit. Absent values fall back to the storage
// defaults; negative values are rejected later by Normalize.
func pageParams(r *http.Request) (store.PageParams, error) {
	page := store.DefaultPageParams()

	if raw := r.URL.Query().Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil {
			return page, fmt.Errorf("invalid skip %q", raw)
		}
		page.Skip = skip
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return page, fmt.Errorf("invalid limit %q", raw)
		}
		page.Limit = limit
	}

	return page, nil
}

// filterParams reads type/zone_id/from/to into a storage filter.
func filterParams(r *http.Request) (store.Filter, error) {
	var f store.Filter

	q := r.URL.Query()
	f.Kind = q.Get("type")

	if raw := q.Get("zone_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid zone_id %q", raw)
		}
		zoneID := uint(id)
		f.ZoneID = &zoneID
	}

	if raw := q.Get("from"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			return f, err
		}
		f.From = &t
	}

	if raw := q.Get("to"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			return f, err
		}
		f.To = &t
	}

	return f, nil
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}
