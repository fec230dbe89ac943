package lights

import (
	"github.com/df07/go-wavefront-tracer/pkg/core"
	"github.com/df07/go-wavefront-tracer/pkg/kernel"
)

type LightType string

const (
	LightTypeDistant    LightType = "distant"
	LightTypeBackground LightType = "background"
	LightTypePoint      LightType = "point"
)

// Light is a light source known to the light sampler
type Light interface {
	Type() LightType
	// Shader returns the emission shader of the light
	Shader() kernel.ShaderID
}

// DirectionalHit is implemented by lights a ray leaving the scene can hit
type DirectionalHit interface {
	// HitDirection tests whether unit direction d points into the light and
	// returns the sample with the light's own pdf (before light selection)
	HitDirection(d core.Vec3) (kernel.LightSample, bool)
}

// DirectionalPDF is implemented by lights covering the whole sphere of directions
type DirectionalPDF interface {
	// DirectionPDF returns the solid angle pdf of sampling d from p
	DirectionPDF(p, d core.Vec3) float64
}
