package kernel

import "github.com/df07/go-wavefront-tracer/pkg/core"

// Kernel runs the background shading stage. It only holds read-only scene
// data, so one Kernel can serve any number of concurrent workers.
type Kernel struct {
	config  Config
	shaders ShaderEvaluator
	lights  LightSampler
	accum   Accumulator
}

// NewKernel creates a background stage for a compiled scene
func NewKernel(config Config, shaders ShaderEvaluator, lights LightSampler, accum Accumulator) *Kernel {
	core.Logger().Debug("background kernel created",
		"features", config.Features,
		"world_shader", config.Background.SurfaceShader,
		"distant_lights", config.Integrator.DistantLights.String())
	return &Kernel{
		config:  config,
		shaders: shaders,
		lights:  lights,
		accum:   accum,
	}
}

// Config returns the scene data the kernel was built with
func (k *Kernel) Config() Config {
	return k.config
}
