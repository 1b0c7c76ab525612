// Package server serves a loaded choropleth over HTTP: the interactive page, the SVG,
// JSON views of the model, and the tooltip state machine per page session.
package server

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth/internal/choropleth"
	"github.com/sells-group/choropleth/internal/render"
)

// Options configures a Server.
type Options struct {
	Render         render.Options
	Title          string
	Description    string
	CORSOrigins    []string
	MaxSessions    int
	SessionTTL     time.Duration
	RequestTimeout time.Duration
}

// Server holds one immutable model and the mutable per-session tooltip state.
type Server struct {
	model    *choropleth.Model
	opts     Options
	sessions *SessionStore
	regions  map[int]choropleth.Region
	svg      []byte
}

// New pre-renders the SVG for m and prepares the session store.
func New(m *choropleth.Model, opts Options) *Server {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 10000
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	regions := m.Renderer.Regions()
	byKey := make(map[int]choropleth.Region, len(regions))
	for _, r := range regions {
		byKey[r.Key] = r
	}

	var buf bytes.Buffer
	if _, err := render.Document(m, opts.Render).WriteTo(&buf); err != nil {
		zap.L().Error("server: pre-render svg", zap.Error(err))
	}

	sessions := NewSessionStore(opts.MaxSessions, opts.SessionTTL)
	sessions.onEvict = func(reason string) { SessionEvictionsTotal.WithLabelValues(reason).Inc() }

	return &Server{
		model:    m,
		opts:     opts,
		sessions: sessions,
		regions:  byKey,
		svg:      buf.Bytes(),
	}
}

// Sessions exposes the tooltip session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(s.opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", s.handlePage)
	r.Get("/map.svg", s.handleSVG)

	r.Route("/api", func(api chi.Router) {
		api.Get("/regions", s.handleRegions)
		api.Get("/regions.geojson", s.handleRegionsGeoJSON)
		api.Get("/regions/{fips}", s.handleRegion)
		api.Get("/legend", s.handleLegend)
		api.Get("/scale", s.handleScale)
		api.Get("/sessions", s.handleSessionStats)

		api.Route("/tooltip", func(tr chi.Router) {
			tr.Post("/hover", s.handleHover)
			tr.Post("/unhover", s.handleUnhover)
		})
	})

	return r
}

// requestLogger logs each request with zap and records its duration by route pattern.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		RequestDurationMs.WithLabelValues(route, strconv.Itoa(status)).Observe(float64(elapsed.Microseconds()) / 1000)

		zap.L().Debug("server: request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)
	})
}
