package wavefront

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/df07/go-wavefront-tracer/pkg/core"
	"github.com/df07/go-wavefront-tracer/pkg/film"
	"github.com/df07/go-wavefront-tracer/pkg/geometry"
	"github.com/df07/go-wavefront-tracer/pkg/kernel"
	"github.com/df07/go-wavefront-tracer/pkg/metrics"
)

// Intersector finds the closest primitive along a ray, -1 for none
type Intersector interface {
	Intersect(ray core.Ray, tMin, tMax float64) (int, geometry.Hit)
}

// SurfaceHandoff receives the paths a batch routes to a surface stage,
// sorted by shader. States are indexed by QueueEntry.Path.
type SurfaceHandoff func(k kernel.DeviceKernel, entries []QueueEntry, states []kernel.PathState)

// Options controls batch sizes and parallelism
type Options struct {
	SamplesPerPixel int   // Batches to run, one camera path per pixel each
	NumWorkers      int   // Worker goroutines, 0 for one per CPU
	ChunkSize       int   // Paths per work item
	Seed            int64 // Base seed for pixel jitter
}

// DefaultOptions returns options suited to interactive previews
func DefaultOptions() Options {
	return Options{
		SamplesPerPixel: 16,
		ChunkSize:       1024,
		Seed:            42,
	}
}

// Scheduler runs the background stage over batches of camera paths
type Scheduler struct {
	kernel     *kernel.Kernel
	camera     *Camera
	primitives Intersector // Shadow catchers, may be nil
	shaders    kernel.ShaderEvaluator
	buffer     *film.RenderBuffer
	metrics    *metrics.Metrics // May be nil
	handoff    SurfaceHandoff   // May be nil
	logger     *slog.Logger
	options    Options
}

// SchedulerConfig bundles the collaborators of a Scheduler
type SchedulerConfig struct {
	Kernel     *kernel.Kernel
	Camera     *Camera
	Primitives Intersector
	Shaders    kernel.ShaderEvaluator
	Buffer     *film.RenderBuffer
	Metrics    *metrics.Metrics
	Handoff    SurfaceHandoff
	Logger     *slog.Logger // Defaults to core.Logger()
	Options    Options
}

// NewScheduler creates a scheduler. The buffer must match the camera
// resolution.
func NewScheduler(config SchedulerConfig) (*Scheduler, error) {
	if config.Kernel == nil || config.Camera == nil || config.Buffer == nil || config.Shaders == nil {
		return nil, fmt.Errorf("scheduler needs a kernel, camera, shaders and buffer")
	}
	if config.Buffer.Width() != config.Camera.Width() || config.Buffer.Height() != config.Camera.Height() {
		return nil, fmt.Errorf("buffer is %dx%d but camera renders %dx%d",
			config.Buffer.Width(), config.Buffer.Height(), config.Camera.Width(), config.Camera.Height())
	}

	options := config.Options
	if options.SamplesPerPixel <= 0 {
		options.SamplesPerPixel = 1
	}
	if options.ChunkSize <= 0 {
		options.ChunkSize = DefaultOptions().ChunkSize
	}
	logger := config.Logger
	if logger == nil {
		logger = core.Logger()
	}

	return &Scheduler{
		kernel:     config.Kernel,
		camera:     config.Camera,
		primitives: config.Primitives,
		shaders:    config.Shaders,
		buffer:     config.Buffer,
		metrics:    config.Metrics,
		handoff:    config.Handoff,
		logger:     logger,
		options:    options,
	}, nil
}

// PassCallback is called after each completed pass with the running totals.
// Returning an error stops the render.
type PassCallback func(pass int, stats Stats) error

// Options returns the options in effect after defaults were applied
func (s *Scheduler) Options() Options {
	return s.options
}

// Render runs every sample pass. On cancellation it returns the stats of
// the passes that completed together with the context error.
func (s *Scheduler) Render(ctx context.Context) (Stats, error) {
	return s.RenderProgressive(ctx, nil)
}

// RenderProgressive runs every sample pass, reporting each one to callback
func (s *Scheduler) RenderProgressive(ctx context.Context, callback PassCallback) (Stats, error) {
	var stats Stats
	logger := s.logger
	logger.Info("render started",
		"width", s.camera.Width(), "height", s.camera.Height(),
		"samples", s.options.SamplesPerPixel)

	for pass := 0; pass < s.options.SamplesPerPixel; pass++ {
		counts, d, err := s.RunBatch(ctx, pass)
		if err != nil {
			s.observeRender("canceled")
			logger.Warn("render canceled", "completed_passes", stats.Passes, "error", err)
			return stats, err
		}
		stats.add(counts, d)

		if callback != nil {
			if err := callback(pass, stats); err != nil {
				s.observeRender("aborted")
				logger.Warn("render aborted", "completed_passes", stats.Passes, "error", err)
				return stats, err
			}
		}
	}

	s.observeRender("ok")
	logger.Info("render finished", "stats", stats.String())
	return stats, nil
}

// RunBatch shades one camera path per pixel and returns the number of
// paths sent to each kernel.
func (s *Scheduler) RunBatch(ctx context.Context, pass int) ([kernel.NumDeviceKernels]int, time.Duration, error) {
	start := time.Now()
	numPaths := s.camera.Width() * s.camera.Height()
	numChunks := (numPaths + s.options.ChunkSize - 1) / s.options.ChunkSize

	states := make([]kernel.PathState, numPaths)
	queue := NewQueue(numPaths)

	pool := newWorkerPool(s.options.NumWorkers, numChunks)
	pool.Start(ctx, func(task chunkTask) int {
		return s.runChunk(task, states, queue)
	})
	for chunk := 0; chunk < numChunks; chunk++ {
		begin := chunk * s.options.ChunkSize
		pool.Submit(chunkTask{
			Pass:  pass,
			Chunk: chunk,
			Start: begin,
			End:   min(begin+s.options.ChunkSize, numPaths),
		})
	}
	pool.Stop()

	var firstErr error
	for result := range pool.Results() {
		if result.Err != nil && firstErr == nil {
			firstErr = result.Err
		}
	}
	if firstErr != nil {
		return [kernel.NumDeviceKernels]int{}, time.Since(start), firstErr
	}

	if s.handoff != nil {
		for _, k := range []kernel.DeviceKernel{kernel.DeviceKernelShadeSurfaceRaytrace, kernel.DeviceKernelShadeSurface} {
			if entries := queue.Sorted(k); len(entries) > 0 {
				s.handoff(k, entries, states)
			}
		}
	}

	d := time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveBatch(d)
	}
	counts := queue.Counts()
	s.logger.Debug("batch finished", "pass", pass, "paths", numPaths, "chunks", numChunks, "counts", counts)
	return counts, d, nil
}

// runChunk generates and shades the camera paths of one chunk
func (s *Scheduler) runChunk(task chunkTask, states []kernel.PathState, queue *Queue) int {
	random := rand.New(rand.NewSource(s.options.Seed + int64(task.Pass)*1000003 + int64(task.Chunk)))
	sampler := core.NewRandomSampler(random)
	width := s.camera.Width()

	for i := task.Start; i < task.End; i++ {
		x, y := i%width, i/width
		pixel := s.buffer.PixelIndex(x, y)
		ray := s.camera.PixelRay(x, y, sampler.Get2D())

		states[i] = kernel.NewCameraPath(ray, pixel)
		TraceShadowCatcher(s.primitives, s.shaders, &states[i])

		next := s.kernel.ShadeBackground(&states[i])
		queue.Push(i, next)
		if s.metrics != nil {
			s.metrics.ObserveDecision(next.Kernel)
		}
		s.buffer.AddSample(pixel)
	}
	return task.End - task.Start
}

// TraceShadowCatcher marks a camera path that passes through a shadow
// catcher. The path keeps travelling to the background and remembers the
// catcher so the background stage can route it to surface shading
// afterwards. It returns the primitive hit, or -1.
func TraceShadowCatcher(prims Intersector, shaders kernel.ShaderEvaluator, state *kernel.PathState) (int, geometry.Hit) {
	if prims == nil {
		return -1, geometry.Hit{}
	}
	prim, hit := prims.Intersect(state.Ray, 0.001, math.Inf(1))
	if prim < 0 {
		return -1, geometry.Hit{}
	}
	state.Flag |= kernel.PathRayShadowCatcherBackground
	state.Isect = kernel.Intersection{Prim: prim, Shader: shaders.ShaderForPrim(prim)}
	return prim, hit
}

func (s *Scheduler) observeRender(result string) {
	if s.metrics != nil {
		s.metrics.ObserveRender(result)
	}
}
