package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/star/satplanner/internal/export"
	"github.com/star/satplanner/internal/geo"
	"github.com/star/satplanner/internal/poiselect"
	"github.com/star/satplanner/internal/runs"
	"github.com/star/satplanner/internal/tiles"
	"github.com/star/satplanner/internal/timeutil"
	"github.com/star/satplanner/internal/transform"
)

// observerRequest is the optional ground-site payload of a run request.
type observerRequest struct {
	LatDeg float64 `json:"lat_deg"`
	LonDeg float64 `json:"lon_deg"`
	AltM   float64 `json:"alt_m"`
}

// startRunRequest is the POST /api/v1/runs body.
type startRunRequest struct {
	ConsumerKey string           `json:"consumer_key"`
	TLELine1    string           `json:"tle_line1"`
	TLELine2    string           `json:"tle_line2"`
	NORADID     int              `json:"norad_id"`
	HorizonSec  float64          `json:"horizon_s"`
	StepSec     float64          `json:"step_s"`
	Observer    *observerRequest `json:"observer,omitempty"`
}

func nowJD() float64 {
	t := time.Now().UTC()
	return timeutil.UTCToJD(timeutil.UTCComponents{
		Year: t.Year(), Month: int(t.Month()), Day: t.Day(),
		Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(),
	})
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// handleStartRun handles POST /api/v1/runs. The consumer key defaults to
// the requested NORAD ID when the caller does not supply one explicitly,
// so a client that always asks about the same satellite gets single-flight
// cancellation for free.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var req startRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.TLELine1 == "" || req.TLELine2 == "" {
		writeJSONError(w, http.StatusBadRequest, "tle_line1 and tle_line2 are required")
		return
	}
	if req.HorizonSec <= 0 || req.StepSec <= 0 {
		writeJSONError(w, http.StatusBadRequest, "horizon_s and step_s must be positive")
		return
	}

	consumerKey := req.ConsumerKey
	if consumerKey == "" {
		consumerKey = strconv.Itoa(req.NORADID)
	}

	spec := runs.Spec{
		ConsumerKey: consumerKey,
		Line1:       req.TLELine1,
		Line2:       req.TLELine2,
		NORADID:     req.NORADID,
		JDStart:     nowJD(),
		HorizonSec:  req.HorizonSec,
		StepSec:     req.StepSec,
	}
	if req.Observer != nil {
		obs := transform.NewObserverPosition(req.Observer.LatDeg, req.Observer.LonDeg, req.Observer.AltM)
		spec.Observer = &obs
	}

	id, err := s.registry.Start(r.Context(), spec)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

// handleRunStatus handles GET /api/v1/runs/{id}.
func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, ok := s.registry.Status(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "unknown run id")
		return
	}

	resp := map[string]any{
		"id":             st.ID,
		"status":         string(st.Status),
		"territory_rows": st.TerritoryRows,
		"poi_picks":      st.PoiPicks,
	}
	if st.Err != nil {
		resp["error"] = st.Err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleTerritoryExport handles GET /api/v1/runs/{id}/territory.csv.
func (s *Server) handleTerritoryExport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res, ok := s.registry.Result(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "run not found or not yet complete")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+"_territory.csv"))
	export.StreamTerritoryCSV(r.Context(), w, res.TerritoryRows, s.streamChunk)
}

// handlePoiExport handles GET /api/v1/runs/{id}/poi.csv?name=.
func (s *Server) handlePoiExport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res, ok := s.registry.Result(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "run not found or not yet complete")
		return
	}

	picks := filterPicksByName(res.PoiPicks, r.URL.Query().Get("name"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+"_poi.csv"))
	export.StreamPOICSV(r.Context(), w, picks, export.Preamble{}, s.streamChunk)
}

// filterPicksByName restricts picks to those matching name; empty name
// matches everything.
func filterPicksByName(picks []poiselect.Pick, name string) []poiselect.Pick {
	if name == "" {
		return picks
	}
	out := make([]poiselect.Pick, 0, len(picks))
	for _, p := range picks {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out
}

// handleAppendPOI handles POST /api/v1/datasets/poi: append a row to the
// live POI CSV and refresh the registry's in-memory spatial index.
func (s *Server) handleAppendPOI(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string  `json:"name"`
		Type   string  `json:"type"`
		LatMin float64 `json:"lat_min"`
		LatMax float64 `json:"lat_max"`
		LonMin float64 `json:"lon_min"`
		LonMax float64 `json:"lon_max"`
		TileKM float64 `json:"tile_km"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	row := tiles.PoiTile{
		Rect:   geo.NewRect(req.LatMin, req.LatMax, req.LonMin, req.LonMax),
		Name:   req.Name,
		Type:   req.Type,
		TileKM: req.TileKM,
	}

	if err := tiles.AppendPOIRow(s.poiDatasetPath, row); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.reloadPoiDataset(); err != nil {
		s.logger.Error("poi dataset reload after append failed", "error", err)
	}

	w.WriteHeader(http.StatusCreated)
}
