package lights

import (
	"github.com/df07/go-wavefront-tracer/pkg/core"
	"github.com/df07/go-wavefront-tracer/pkg/kernel"
)

// PointLight is a light at a finite position. Rays leaving the scene never
// hit it, but it takes part in light selection.
type PointLight struct {
	position core.Vec3
	shader   kernel.ShaderID
}

// NewPointLight creates a point light
func NewPointLight(position core.Vec3, shader kernel.ShaderID) *PointLight {
	return &PointLight{position: position, shader: shader}
}

func (pl *PointLight) Type() LightType {
	return LightTypePoint
}

// Shader returns the emission shader of the light
func (pl *PointLight) Shader() kernel.ShaderID {
	return pl.shader
}

// Position returns the light position
func (pl *PointLight) Position() core.Vec3 {
	return pl.position
}
