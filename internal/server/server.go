// Package server exposes route planning over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"route-planner/internal/planner"
	"route-planner/internal/roadnet"
	"route-planner/internal/route"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type RouteRequest struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

type PathNode struct {
	ID  int64   `json:"id"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type RouteResponse struct {
	Success        bool                       `json:"success"`
	Message        string                     `json:"message,omitempty"`
	Path           []PathNode                 `json:"path,omitempty"`
	Distance       float64                    `json:"distance,omitempty"`
	DistanceMeters float64                    `json:"distanceMeters,omitempty"`
	GeoJSON        *geojson.FeatureCollection `json:"geojson,omitempty"`
}

// Server serves routes over one road network. Requests run in parallel;
// searches keep their state per call so they never interfere.
type Server struct {
	mu       sync.RWMutex
	planner  *planner.Planner
	opts     []route.Option
	simplify float64
	metrics  *metrics
}

// New returns a server without a network; routes answer 503 until SetGraph.
func New(simplifyEpsilon float64, opts ...route.Option) *Server {
	return &Server{
		opts:     opts,
		simplify: simplifyEpsilon,
		metrics:  defaultMetrics,
	}
}

// SetGraph swaps the network used for new requests.
func (s *Server) SetGraph(g *roadnet.Graph) {
	p := planner.New(g, s.opts...)
	s.mu.Lock()
	s.planner = p
	s.mu.Unlock()
}

func (s *Server) current() *planner.Planner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.planner
}

// Handler returns the HTTP routes wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/route", s.routeHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/network", s.networkHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet, http.MethodOptions)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return corsMiddleware(r)
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v\n", err)
	}
}

// POST /route
func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	p := s.current()
	if p == nil {
		s.metrics.requests.WithLabelValues("unavailable").Inc()
		writeJSON(w, http.StatusServiceUnavailable, RouteResponse{Message: "road network not loaded"})
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Invalid request body: %v\n", err)
		s.metrics.requests.WithLabelValues("bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, RouteResponse{Message: "invalid request body"})
		return
	}
	for _, v := range []float64{req.Start.X, req.Start.Y, req.End.X, req.End.Y} {
		if err := planner.CheckPercent(v); err != nil {
			s.metrics.requests.WithLabelValues("bad_request").Inc()
			writeJSON(w, http.StatusBadRequest, RouteResponse{Message: err.Error()})
			return
		}
	}

	log.Printf("Route request: (%.2f, %.2f) -> (%.2f, %.2f)\n", req.Start.X, req.Start.Y, req.End.X, req.End.Y)

	startTime := time.Now()
	plan, err := p.Plan(orb.Point{req.Start.X, req.Start.Y}, orb.Point{req.End.X, req.End.Y})
	s.metrics.searchDuration.Observe(time.Since(startTime).Seconds())

	switch {
	case errors.Is(err, route.ErrNoPath):
		log.Printf("No route: %v\n", err)
		s.metrics.requests.WithLabelValues("no_path").Inc()
		writeJSON(w, http.StatusNotFound, RouteResponse{Message: "no route between the requested points"})
		return
	case errors.Is(err, route.ErrExpansionLimit):
		log.Printf("Search aborted: %v\n", err)
		s.metrics.requests.WithLabelValues("limit").Inc()
		writeJSON(w, http.StatusUnprocessableEntity, RouteResponse{Message: "route search exceeded its node expansion limit"})
		return
	case errors.Is(err, roadnet.ErrEmptyGraph):
		s.metrics.requests.WithLabelValues("unavailable").Inc()
		writeJSON(w, http.StatusServiceUnavailable, RouteResponse{Message: "road network has no roads"})
		return
	case err != nil:
		log.Printf("Route failed: %v\n", err)
		s.metrics.requests.WithLabelValues("error").Inc()
		writeJSON(w, http.StatusInternalServerError, RouteResponse{Message: err.Error()})
		return
	}

	s.metrics.expanded.Observe(float64(plan.Path.Expanded))
	s.metrics.requests.WithLabelValues("ok").Inc()

	resp := RouteResponse{
		Success:        true,
		Path:           make([]PathNode, len(plan.Path.Nodes)),
		Distance:       plan.Path.Distance,
		DistanceMeters: plan.DistanceMeters,
		GeoJSON:        plan.FeatureCollection(s.simplify),
	}
	for i, n := range plan.Path.Nodes {
		resp.Path[i] = PathNode{
			ID:  int64(n.ID),
			X:   n.Point.X(),
			Y:   n.Point.Y(),
			Lon: n.LonLat.Lon(),
			Lat: n.LonLat.Lat(),
		}
	}

	log.Printf("Route found: %d nodes, %.2f meters, %d expanded in %s\n",
		len(resp.Path), resp.DistanceMeters, plan.Path.Expanded, time.Since(startTime).Round(time.Microsecond))
	writeJSON(w, http.StatusOK, resp)
}

// GET /network
func (s *Server) networkHandler(w http.ResponseWriter, r *http.Request) {
	p := s.current()
	if p == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"success": false,
			"message": "road network not loaded",
		})
		return
	}
	writeJSON(w, http.StatusOK, planner.NetworkFeatureCollection(p.Graph()))
}

// GET /health
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	p := s.current()
	status := "ready"
	numNodes, numSegments := 0, 0
	if p == nil {
		status = "waiting for road network"
	} else {
		numNodes = p.Graph().Len()
		numSegments = len(p.Graph().Segments())
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      status,
		"numNodes":    numNodes,
		"numSegments": numSegments,
	})
}
