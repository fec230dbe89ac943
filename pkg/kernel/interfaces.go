package kernel

import "github.com/df07/go-wavefront-tracer/pkg/core"

// LightSample is produced when a ray direction hits a distant light
type LightSample struct {
	Lamp    int       // Index of the light in the scene
	Shader  ShaderID  // Emission shader of the light
	D       core.Vec3 // Direction towards the light
	PDF     float64   // Solid angle pdf of light sampling producing D, including selection
	EvalFac float64   // Factor applied to the shader emission
}

// ShaderEvaluator evaluates shader graphs and answers capability queries
type ShaderEvaluator interface {
	// Flags returns the visibility and capability bits of a shader
	Flags(id ShaderID) ShaderFlag
	// ConstantEmission reports the emission of a shader that does not vary
	// over directions, so callers can skip graph evaluation
	ConstantEmission(id ShaderID) (core.Vec3, bool)
	// EvalBackground evaluates a world shader for a ray leaving the scene
	EvalBackground(id ShaderID, ray core.Ray, pathFlag PathFlag, mask FeatureMask) core.Vec3
	// EvalLight evaluates the emission of a light hit by a ray
	EvalLight(ls *LightSample, time float64) core.Vec3
	// ShaderForPrim resolves the shader bound to a primitive
	ShaderForPrim(prim int) ShaderID
}

// LightSampler answers light sampling queries for rays that left the scene
type LightSampler interface {
	// NumLights returns the number of lights, distant or not
	NumLights() int
	// SampleFromDistantRay tests whether direction d hits distant light lamp
	SampleFromDistantRay(d core.Vec3, lamp int) (LightSample, bool)
	// BackgroundPDF returns the pdf of light sampling picking direction d
	// on the background from point p
	BackgroundPDF(p, d core.Vec3) float64
}

// Accumulator writes contributions to the render buffer. Implementations
// must be safe for concurrent use by many paths writing the same pixel.
type Accumulator interface {
	AccumulateBackground(state *PathState, L core.Vec3, transparent float64, isTransparentBackgroundRay bool)
	AccumulateEmission(state *PathState, throughput, L core.Vec3)
}
