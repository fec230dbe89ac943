package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/df07/go-wavefront-tracer/pkg/core"
	"github.com/df07/go-wavefront-tracer/pkg/film"
	"github.com/df07/go-wavefront-tracer/pkg/kernel"
	"github.com/df07/go-wavefront-tracer/pkg/scene"
	"github.com/df07/go-wavefront-tracer/pkg/wavefront"
)

const defaultScene = "sun"

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene   string      `json:"scene"`   // Scene id, built in or world file
	Width   int         `json:"width"`   // Image width, 0 for the scene's setting
	Samples int         `json:"samples"` // Samples per pixel, 0 for the scene's setting
	Workers int         `json:"workers"` // Worker goroutines, 0 for one per CPU
	Pass    film.Pass   `json:"pass"`    // Pass to display
	Format  film.Format `json:"format"`  // Encoding of /api/image responses
}

// ProgressUpdate represents a single progressive update sent via SSE
type ProgressUpdate struct {
	PassNumber  int    `json:"passNumber"`
	TotalPasses int    `json:"totalPasses"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG
	Stats       Stats  `json:"stats"`
	IsComplete  bool   `json:"isComplete"`
	ElapsedMs   int64  `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int              `json:"totalPixels"`
	TotalSamples   int64            `json:"totalSamples"`
	AverageSamples float64          `json:"averageSamples"`
	MinSamples     int64            `json:"minSamples"`
	MaxSamples     int64            `json:"maxSamples"`
	Decisions      map[string]int64 `json:"decisions"` // Paths per next kernel
}

// newStats combines buffer sampling stats with stage decisions
func newStats(buffer film.Stats, render wavefront.Stats) Stats {
	decisions := make(map[string]int64)
	for k, n := range render.Decisions {
		if n > 0 {
			decisions[kernel.DeviceKernel(k).String()] = n
		}
	}
	return Stats{
		TotalPixels:    buffer.TotalPixels,
		TotalSamples:   buffer.TotalSamples,
		AverageSamples: buffer.AverageSamples,
		MinSamples:     buffer.MinSamples,
		MaxSamples:     buffer.MaxSamples,
		Decisions:      decisions,
	}
}

// parseRenderRequest parses and validates request parameters
func parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = defaultScene
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, minWidth, maxWidth); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", 0, minSamples, maxSamples); err != nil {
		return nil, err
	}
	if req.Workers, err = parseIntParam(query, "workers", 0, 1, 256); err != nil {
		return nil, err
	}
	if req.Pass, err = film.ParsePass(query.Get("pass")); err != nil {
		return nil, err
	}
	if req.Format, err = film.ParseFormat(query.Get("format")); err != nil {
		return nil, err
	}

	if req.Width*req.Width > 1000*1000 && req.Samples > 100 {
		core.Logger().Warn("large render requested", "width", req.Width, "samples", req.Samples)
	}
	return req, nil
}

// createPipeline builds the scene and renderer for a request. Scene
// building and rendering log to logger, nil meaning the server log.
func (s *Server) createPipeline(req *RenderRequest, logger *slog.Logger) (*scene.Renderer, error) {
	sceneObj, err := scene.NewWithLogger(req.Scene, logger, wavefront.CameraConfig{Width: req.Width})
	if err != nil {
		return nil, err
	}

	options := wavefront.DefaultOptions()
	options.SamplesPerPixel = req.Samples
	options.NumWorkers = req.Workers
	r, err := sceneObj.NewRenderer(options, s.metrics, nil)
	if err != nil {
		return nil, err
	}
	if !r.Buffer.HasPass(req.Pass) {
		return nil, fmt.Errorf("scene %s does not render the %s pass", sceneObj.Name, req.Pass)
	}
	return r, nil
}

// handleRender renders progressively, streaming one image per pass via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	req, err := parseRenderRequest(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	setSSEHeaders(w)
	renderID := fmt.Sprintf("render-%d", s.renders.Add(1))
	console := make(chan ConsoleMessage, 64)
	stream := &sseStream{w: w, flusher: flusher, console: console}
	logger := slog.New(NewConsoleHandler(console, core.Logger().Handler())).With("render_id", renderID)

	pipeline, err := s.createPipeline(req, logger)
	if err != nil {
		logger.Error("render setup failed", "scene", req.Scene, "error", err)
		stream.sendError(err.Error())
		return
	}

	totalPasses := pipeline.Scheduler.Options().SamplesPerPixel
	logger.Info("render started", "scene", req.Scene,
		"width", pipeline.Camera.Width(), "height", pipeline.Camera.Height(), "passes", totalPasses)

	start := time.Now()
	stats, err := pipeline.Scheduler.RenderProgressive(r.Context(), func(pass int, stats wavefront.Stats) error {
		imageData, err := encodeBase64PNG(pipeline.Buffer, req.Pass)
		if err != nil {
			return fmt.Errorf("failed to encode image: %w", err)
		}
		return stream.send("progress", ProgressUpdate{
			PassNumber:  pass + 1,
			TotalPasses: totalPasses,
			ImageData:   imageData,
			Stats:       newStats(pipeline.Buffer.Stats(), stats),
			IsComplete:  pass+1 == totalPasses,
			ElapsedMs:   time.Since(start).Milliseconds(),
		})
	})
	if err != nil {
		logger.Warn("render stopped", "error", err)
		stream.sendError(fmt.Sprintf("Render error: %v", err))
		return
	}

	logger.Info("render complete", "stats", stats.String())
	stream.event("complete", "Rendering completed")
}

// handleImage renders a scene to completion and returns the encoded image
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	pipeline, err := s.createPipeline(req, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := pipeline.Scheduler.Render(r.Context()); err != nil {
		http.Error(w, fmt.Sprintf("Render error: %v", err), http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	if err := pipeline.Buffer.Encode(&buf, req.Pass, req.Format); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", req.Format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("inline; filename=%q", pipeline.Scene.Name+req.Format.Extension()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		core.Logger().Warn("writing image", "error", err)
	}
}

// encodeBase64PNG encodes a pass as a base64 PNG
func encodeBase64PNG(buffer *film.RenderBuffer, p film.Pass) (string, error) {
	var buf bytes.Buffer
	if err := buffer.Encode(&buf, p, film.FormatPNG); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// setSSEHeaders sets the headers of an event stream
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// sseStream writes server sent events. Pending console messages are
// flushed ahead of every event.
type sseStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	console <-chan ConsoleMessage
}

// send writes a JSON encoded event
func (s *sseStream) send(event string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.event(event, string(data))
}

// sendError writes an error event
func (s *sseStream) sendError(message string) {
	if err := s.event("error", message); err != nil {
		core.Logger().Warn("sending error event", "error", err)
	}
}

// event writes a raw event
func (s *sseStream) event(event, data string) error {
	s.drainConsole()
	return s.write(event, data)
}

func (s *sseStream) drainConsole() {
	for {
		select {
		case msg := <-s.console:
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			if err := s.write("console", string(data)); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (s *sseStream) write(event, data string) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
