package lights

import (
	"github.com/df07/go-wavefront-tracer/pkg/core"
	"github.com/df07/go-wavefront-tracer/pkg/kernel"
)

// BackgroundLight makes the world shader available to light sampling.
// Directions are sampled uniformly over the sphere.
type BackgroundLight struct {
	shader kernel.ShaderID
}

// NewBackgroundLight creates a light for the world shader
func NewBackgroundLight(shader kernel.ShaderID) *BackgroundLight {
	return &BackgroundLight{shader: shader}
}

func (bl *BackgroundLight) Type() LightType {
	return LightTypeBackground
}

// Shader returns the world shader
func (bl *BackgroundLight) Shader() kernel.ShaderID {
	return bl.shader
}

// DirectionPDF implements DirectionalPDF
func (bl *BackgroundLight) DirectionPDF(p, d core.Vec3) float64 {
	return core.UniformSpherePDF()
}
