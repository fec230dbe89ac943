package scene

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/df07/go-wavefront-tracer/pkg/core"
	"github.com/df07/go-wavefront-tracer/pkg/film"
	"github.com/df07/go-wavefront-tracer/pkg/geometry"
	"github.com/df07/go-wavefront-tracer/pkg/kernel"
	"github.com/df07/go-wavefront-tracer/pkg/lights"
	"github.com/df07/go-wavefront-tracer/pkg/metrics"
	"github.com/df07/go-wavefront-tracer/pkg/shader"
	"github.com/df07/go-wavefront-tracer/pkg/wavefront"
)

// ErrUnknownScene is returned for scene names that are neither built in
// nor a world file
var ErrUnknownScene = errors.New("unknown scene")

// Scene contains all the elements needed for rendering
type Scene struct {
	Name            string
	Shaders         *shader.Table
	Lights          []lights.Light
	Primitives      *geometry.Primitives // Shadow catchers
	Config          kernel.Config
	CameraConfig    wavefront.CameraConfig
	Clamp           film.ClampConfig
	Passes          film.Passes
	SamplesPerPixel int
	Logger          *slog.Logger // Scene building and rendering
}

// newScene creates an empty scene with every feature enabled. A nil
// logger means core.Logger().
func newScene(name string, logger *slog.Logger) *Scene {
	if logger == nil {
		logger = core.Logger()
	}
	return &Scene{
		Name:            name,
		Shaders:         shader.NewTable(),
		Primitives:      geometry.NewPrimitives(),
		Config:          kernel.DefaultConfig(),
		SamplesPerPixel: 16,
		Logger:          logger,
	}
}

// LightSampler creates a sampler selecting every light with equal weight
func (s *Scene) LightSampler() *lights.Sampler {
	return lights.NewUniformSampler(s.Lights)
}

// AddShadowCatcher adds a shadow catcher shape with its own shader. With
// raytrace set the shader needs further scene queries when shaded.
func (s *Scene) AddShadowCatcher(shape geometry.Shape, raytrace bool) (int, error) {
	prim := s.Primitives.Add(shape)
	name := fmt.Sprintf("shadowcatcher.%d", prim)

	var root shader.Node = shader.NewConstant(black, 0)
	if raytrace {
		root = shader.NewAmbientOcclusion(white, 1)
	}
	id, err := s.Shaders.Add(name, root, 0)
	if err != nil {
		return -1, err
	}
	if err := s.Shaders.BindPrimitive(prim, id); err != nil {
		return -1, err
	}
	return prim, nil
}

// Renderer bundles everything needed to render a scene once
type Renderer struct {
	Scene     *Scene
	Camera    *wavefront.Camera
	Buffer    *film.RenderBuffer
	Scheduler *wavefront.Scheduler
}

// NewRenderer wires the scene into a kernel and scheduler. Zero option
// fields fall back to the scene's own settings.
func (s *Scene) NewRenderer(options wavefront.Options, m *metrics.Metrics, handoff wavefront.SurfaceHandoff) (*Renderer, error) {
	if options.SamplesPerPixel <= 0 {
		options.SamplesPerPixel = s.SamplesPerPixel
	}

	camera := wavefront.NewCamera(s.CameraConfig)
	buffer := film.NewRenderBuffer(camera.Width(), camera.Height(), s.Passes)
	accum := film.NewAccumulator(buffer, s.Clamp)
	k := kernel.NewKernel(s.Config, s.Shaders, s.LightSampler(), accum)

	scheduler, err := wavefront.NewScheduler(wavefront.SchedulerConfig{
		Kernel:     k,
		Camera:     camera,
		Primitives: s.Primitives,
		Shaders:    s.Shaders,
		Buffer:     buffer,
		Metrics:    m,
		Handoff:    handoff,
		Logger:     s.Logger,
		Options:    options,
	})
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", s.Name, err)
	}

	return &Renderer{Scene: s, Camera: camera, Buffer: buffer, Scheduler: scheduler}, nil
}
