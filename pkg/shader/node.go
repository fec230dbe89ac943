package shader

import (
	"math"

	"github.com/df07/go-wavefront-tracer/pkg/core"
	"github.com/df07/go-wavefront-tracer/pkg/kernel"
)

// Node is one node of a shader graph. Eval returns the emitted radiance for
// the shading context. Nodes whose feature group is outside mask evaluate to
// black.
type Node interface {
	Eval(sd *ShaderData, mask kernel.FeatureMask) core.Vec3
	Feature() kernel.FeatureMask
}

// Constant emits the same radiance in every direction
type Constant struct {
	Color    core.Vec3
	Strength float64
}

// NewConstant creates a constant emission node
func NewConstant(color core.Vec3, strength float64) *Constant {
	return &Constant{Color: color, Strength: strength}
}

// Emission returns the radiance of the node
func (c *Constant) Emission() core.Vec3 {
	return c.Color.Multiply(c.Strength)
}

func (c *Constant) Eval(sd *ShaderData, mask kernel.FeatureMask) core.Vec3 {
	if mask&c.Feature() == 0 {
		return core.Vec3{}
	}
	return c.Emission()
}

func (c *Constant) Feature() kernel.FeatureMask {
	return kernel.FeatureNodeEmission
}

// SkyGradient blends from Bottom at the nadir to Top at the zenith
type SkyGradient struct {
	Top    core.Vec3
	Bottom core.Vec3
}

// NewSkyGradient creates a vertical gradient node
func NewSkyGradient(top, bottom core.Vec3) *SkyGradient {
	return &SkyGradient{Top: top, Bottom: bottom}
}

func (g *SkyGradient) Eval(sd *ShaderData, mask kernel.FeatureMask) core.Vec3 {
	if mask&g.Feature() == 0 {
		return core.Vec3{}
	}
	t := 0.5 * (sd.D.Y + 1.0) // Map Y from [-1,1] to [0,1]
	return g.Bottom.Lerp(g.Top, t)
}

func (g *SkyGradient) Feature() kernel.FeatureMask {
	return kernel.FeatureNodeEmission
}

// Environment looks up an equirectangular texture along the ray direction
type Environment struct {
	Texture  *Texture
	Strength float64
	Rotation float64 // Rotation around the up axis in radians
}

// NewEnvironment creates an environment texture node
func NewEnvironment(texture *Texture, strength float64) *Environment {
	return &Environment{Texture: texture, Strength: strength}
}

func (e *Environment) Eval(sd *ShaderData, mask kernel.FeatureMask) core.Vec3 {
	if mask&e.Feature() == 0 || e.Texture == nil {
		return core.Vec3{}
	}
	d := sd.D
	if e.Rotation != 0 {
		sin, cos := math.Sincos(e.Rotation)
		d = core.NewVec3(cos*d.X+sin*d.Z, d.Y, -sin*d.X+cos*d.Z)
	}
	return e.Texture.Lookup(DirectionToEquirect(d)).Multiply(e.Strength)
}

func (e *Environment) Feature() kernel.FeatureMask {
	return kernel.FeatureNodeTexture
}

// Mix blends two inputs, Factor 0 selecting A and 1 selecting B
type Mix struct {
	A, B   Node
	Factor float64
}

// NewMix creates a mix node
func NewMix(a, b Node, factor float64) *Mix {
	return &Mix{A: a, B: b, Factor: factor}
}

func (m *Mix) Eval(sd *ShaderData, mask kernel.FeatureMask) core.Vec3 {
	return m.A.Eval(sd, mask).Lerp(m.B.Eval(sd, mask), m.Factor)
}

func (m *Mix) Feature() kernel.FeatureMask {
	return m.A.Feature() | m.B.Feature()
}

// Scale multiplies its input by a color
type Scale struct {
	Input  Node
	Factor core.Vec3
}

// NewScale creates a scale node
func NewScale(input Node, factor core.Vec3) *Scale {
	return &Scale{Input: input, Factor: factor}
}

func (s *Scale) Eval(sd *ShaderData, mask kernel.FeatureMask) core.Vec3 {
	return s.Input.Eval(sd, mask).MultiplyVec(s.Factor)
}

func (s *Scale) Feature() kernel.FeatureMask {
	return s.Input.Feature()
}

// AmbientOcclusion outputs Color scaled by the unoccluded fraction around
// the shading point. Computing occlusion needs scene queries, so the node
// belongs to the raytrace feature group and reads black wherever that group
// is masked out, which includes background and light shading.
type AmbientOcclusion struct {
	Color    core.Vec3
	Distance float64
}

// NewAmbientOcclusion creates an ambient occlusion node
func NewAmbientOcclusion(color core.Vec3, distance float64) *AmbientOcclusion {
	return &AmbientOcclusion{Color: color, Distance: distance}
}

func (a *AmbientOcclusion) Eval(sd *ShaderData, mask kernel.FeatureMask) core.Vec3 {
	if mask&a.Feature() == 0 {
		return core.Vec3{}
	}
	// Without scene access every direction is treated as unoccluded
	return a.Color
}

func (a *AmbientOcclusion) Feature() kernel.FeatureMask {
	return kernel.FeatureNodeRaytrace
}
