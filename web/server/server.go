package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/df07/go-wavefront-tracer/pkg/core"
	"github.com/df07/go-wavefront-tracer/pkg/lights"
	"github.com/df07/go-wavefront-tracer/pkg/metrics"
	"github.com/df07/go-wavefront-tracer/pkg/scene"
)

// Request limits
const (
	minWidth   = 16
	maxWidth   = 2000
	minSamples = 1
	maxSamples = 10000
)

// Server handles web requests for the wavefront tracer
type Server struct {
	port    int
	metrics *metrics.Metrics
	mux     *http.ServeMux
	renders atomic.Int64 // Render id counter
}

// NewServer creates a new web server with its own metrics registry
func NewServer(port int) *Server {
	s := &Server{
		port:    port,
		metrics: metrics.New(),
		mux:     http.NewServeMux(),
	}

	s.mux.Handle("/", http.FileServer(http.Dir("static/")))
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/image", s.handleImage)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	return s
}

// Handler returns the request router
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until the listener fails
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	core.Logger().Info("starting web server", "addr", addr)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return httpServer.ListenAndServe()
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in scenes and world files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleSceneConfig returns the default settings of a scene with the
// request limits
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = defaultScene
	}

	sceneObj, err := scene.New(sceneName)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	response := map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]interface{}{
			"width":           sceneObj.CameraConfig.Width,
			"aspectRatio":     sceneObj.CameraConfig.AspectRatio,
			"samplesPerPixel": sceneObj.SamplesPerPixel,
			"transparent":     sceneObj.Config.Background.Transparent,
			"distantLights":   sceneObj.Config.Integrator.DistantLights.String(),
			"passes": map[string]bool{
				"background": sceneObj.Passes.Background,
				"emission":   sceneObj.Passes.Emission,
			},
			"lights":         lightInfos(sceneObj),
			"shadowCatchers": sceneObj.Primitives.Len(),
		},
		"limits": map[string]interface{}{
			"width":   map[string]int{"min": minWidth, "max": maxWidth},
			"samples": map[string]int{"min": minSamples, "max": maxSamples},
		},
	}
	writeJSON(w, http.StatusOK, response)
}

// LightInfo describes one light of a scene
type LightInfo struct {
	Type         string      `json:"type"`
	Shader       string      `json:"shader"`
	Probability  float64     `json:"probability"`
	Direction    *[3]float64 `json:"direction,omitempty"`
	AngleDegrees float64     `json:"angleDegrees,omitempty"`
	Position     *[3]float64 `json:"position,omitempty"`
}

func lightInfos(s *scene.Scene) []LightInfo {
	sampler := s.LightSampler()
	infos := make([]LightInfo, 0, sampler.NumLights())
	for i := 0; i < sampler.NumLights(); i++ {
		light := sampler.Light(i)
		info := LightInfo{
			Type:        string(light.Type()),
			Shader:      s.Shaders.Name(light.Shader()),
			Probability: sampler.LightProbability(i),
		}
		switch l := light.(type) {
		case *lights.DistantLight:
			d := vec3Array(l.Direction())
			info.Direction = &d
			info.AngleDegrees = l.Angle() * 180 / math.Pi
		case *lights.PointLight:
			p := vec3Array(l.Position())
			info.Position = &p
		}
		infos = append(infos, info)
	}
	return infos
}

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		core.Logger().Warn("writing response", "error", err)
	}
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
