package kernel

import "github.com/df07/go-wavefront-tracer/pkg/core"

// Intersection is the last surface hit recorded for a path
type Intersection struct {
	Prim   int      // Primitive index, -1 when the path has not hit anything
	Shader ShaderID // Shader bound to the primitive at hit time
}

// PathState is the per-path record the integrator stages read and write.
// A single worker owns a PathState while a stage runs on it.
type PathState struct {
	Ray        core.Ray     // Current ray segment
	Throughput core.Vec3    // Product of path weights so far
	Flag       PathFlag     // Ray category and bookkeeping bits
	MISRayPDF  float64      // Pdf of the last BSDF sample, for MIS against lights
	MISRayT    float64      // Distance travelled since the last MIS-relevant vertex
	Isect      Intersection // Last surface hit
	Bounce     int          // Number of scattering events so far
	AOBounce   bool         // Path is in the ambient occlusion bounce approximation
	PixelIndex int          // Render buffer slot this path contributes to
}

// NewCameraPath creates the state for a primary ray. Camera rays have no BSDF
// history to weight against, so MIS is skipped.
func NewCameraPath(ray core.Ray, pixelIndex int) PathState {
	return PathState{
		Ray:        ray,
		Throughput: core.NewVec3(1, 1, 1),
		Flag:       PathRayCamera | PathRayTransparentBackground | PathRayMISSkip,
		Isect:      Intersection{Prim: -1, Shader: ShaderNone},
		PixelIndex: pixelIndex,
	}
}
