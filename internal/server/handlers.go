package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth/internal/choropleth"
	"github.com/sells-group/choropleth/internal/render"
)

type hoverRequest struct {
	Session string  `json:"session"`
	FIPS    int     `json:"fips"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

type unhoverRequest struct {
	Session string `json:"session"`
}

type scaleResponse struct {
	Extent     choropleth.Extent  `json:"extent"`
	Cuts       []float64          `json:"cuts"`
	Palette    choropleth.Palette `json:"palette"`
	Steps      []choropleth.Step  `json:"steps"`
	Degenerate bool               `json:"degenerate"`
	NoData     choropleth.Color   `json:"no_data_color"`
}

type regionResponse struct {
	choropleth.Region
	Tooltip *choropleth.TooltipContent `json:"tooltip,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"regions": len(s.regions),
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.Create()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := render.WritePage(w, render.PageData{
		Title:       s.opts.Title,
		Description: s.opts.Description,
		Session:     id,
		APIBase:     "/api",
		Markup:      s.svg,
		Width:       s.opts.Render.Width,
	})
	if err != nil {
		zap.L().Error("server: write page", zap.Error(err), zap.String("session", id))
		return
	}
	PageRendersTotal.Inc()
}

func (s *Server) handleSVG(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(s.svg)
}

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.model.Renderer.Regions())
}

func (s *Server) handleRegionsGeoJSON(w http.ResponseWriter, _ *http.Request) {
	regions := s.model.Renderer.Regions()
	fc := geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(regions))}
	for _, reg := range regions {
		props := map[string]any{"fill": reg.Fill, "has_data": reg.HasData}
		if reg.Stat != nil {
			props["area_name"] = reg.Stat.Name
			props["state"] = reg.Stat.Subregion
			props["value"] = reg.Stat.Value
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         strconv.Itoa(reg.Key),
			Geometry:   reg.Geometry,
			Properties: props,
		})
	}
	w.Header().Set("Content-Type", "application/geo+json")
	if err := json.NewEncoder(w).Encode(&fc); err != nil {
		zap.L().Error("server: encode geojson", zap.Error(err))
	}
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	key, err := strconv.Atoi(chi.URLParam(r, "fips"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "fips must be an integer")
		return
	}
	reg, ok := s.regions[key]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown region")
		return
	}
	resp := regionResponse{Region: reg}
	if c, ok := s.model.Renderer.Content(key); ok {
		resp.Tooltip = &c
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLegend(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.model.Legend)
}

func (s *Server) handleScale(w http.ResponseWriter, _ *http.Request) {
	sc := s.model.Scale
	writeJSON(w, http.StatusOK, scaleResponse{
		Extent:     s.model.Extent,
		Cuts:       sc.Cuts(),
		Palette:    sc.Palette(),
		Steps:      sc.Steps(),
		Degenerate: sc.Degenerate(),
		NoData:     s.model.Renderer.NoDataColor(),
	})
}

func (s *Server) handleSessionStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.Stats())
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	var req hoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validSession(req.Session) {
		writeError(w, http.StatusBadRequest, "session must be a uuid")
		return
	}

	tr := s.sessions.Apply(req.Session, func(cur choropleth.Tooltip) choropleth.Transition {
		return s.model.Renderer.Hover(cur, req.FIPS, req.X, req.Y)
	})
	TooltipTransitionsTotal.WithLabelValues(string(tr.Kind)).Inc()
	writeJSON(w, http.StatusOK, tr)
}

func (s *Server) handleUnhover(w http.ResponseWriter, r *http.Request) {
	var req unhoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validSession(req.Session) {
		writeError(w, http.StatusBadRequest, "session must be a uuid")
		return
	}

	tr := s.sessions.Apply(req.Session, s.model.Renderer.Unhover)
	TooltipTransitionsTotal.WithLabelValues(string(tr.Kind)).Inc()
	writeJSON(w, http.StatusOK, tr)
}
