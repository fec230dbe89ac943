package lights

import (
	"math"

	"github.com/df07/go-wavefront-tracer/pkg/core"
	"github.com/df07/go-wavefront-tracer/pkg/kernel"
)

// DistantLight is a light infinitely far away, such as the sun. It covers a
// cone of directions of the given angular diameter; with zero angle it is a
// delta light that rays can never hit.
type DistantLight struct {
	direction    core.Vec3 // Unit direction towards the light
	angle        float64   // Angular diameter in radians
	cosHalfAngle float64
	invArea      float64 // Inverse area of the light disk at unit distance
	shader       kernel.ShaderID
}

// NewDistantLight creates a distant light shining from direction
func NewDistantLight(direction core.Vec3, angle float64, shader kernel.ShaderID) *DistantLight {
	angle = math.Max(0, math.Min(angle, math.Pi))
	radius := math.Tan(0.5 * angle)

	var invArea float64
	if radius > 0 {
		invArea = 1.0 / (math.Pi * radius * radius)
	}

	return &DistantLight{
		direction:    direction.Normalize(),
		angle:        angle,
		cosHalfAngle: math.Cos(0.5 * angle),
		invArea:      invArea,
		shader:       shader,
	}
}

func (dl *DistantLight) Type() LightType {
	return LightTypeDistant
}

// Shader returns the emission shader of the light
func (dl *DistantLight) Shader() kernel.ShaderID {
	return dl.shader
}

// Direction returns the unit direction towards the light
func (dl *DistantLight) Direction() core.Vec3 {
	return dl.direction
}

// Angle returns the angular diameter in radians
func (dl *DistantLight) Angle() float64 {
	return dl.angle
}

// HitDirection implements DirectionalHit. The pdf is that of sampling the
// light disk uniformly by area, converted to solid angle.
func (dl *DistantLight) HitDirection(d core.Vec3) (kernel.LightSample, bool) {
	if dl.invArea == 0 {
		return kernel.LightSample{}, false
	}

	d = d.Normalize()
	cosTheta := d.Dot(dl.direction)
	if cosTheta < dl.cosHalfAngle || cosTheta <= 0 {
		return kernel.LightSample{}, false
	}

	pdf := dl.invArea / (cosTheta * cosTheta * cosTheta)
	return kernel.LightSample{
		Shader:  dl.shader,
		D:       d,
		PDF:     pdf,
		EvalFac: pdf,
	}, true
}
