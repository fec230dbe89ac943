package shader

import (
	"github.com/df07/go-wavefront-tracer/pkg/core"
	"github.com/df07/go-wavefront-tracer/pkg/kernel"
)

// ShaderData is the shading context for one evaluation. It is built on the
// stack for a single call and never retained.
type ShaderData struct {
	P        core.Vec3 // Shading position; the direction for background shading
	N        core.Vec3 // Shading normal, facing back along the ray
	RayP     core.Vec3 // Origin of the ray being shaded
	D        core.Vec3 // Unit direction of the ray being shaded
	Time     float64
	PathFlag kernel.PathFlag
}

// newBackgroundShaderData sets up a context for a ray that left the scene.
// The world is a sphere at infinity, so position and direction coincide.
func newBackgroundShaderData(ray core.Ray, pathFlag kernel.PathFlag) ShaderData {
	d := ray.Direction.Normalize()
	return ShaderData{
		P:        d,
		N:        d.Negate(),
		RayP:     ray.Origin,
		D:        d,
		Time:     ray.Time,
		PathFlag: pathFlag,
	}
}

// newLightShaderData sets up a context for a ray hitting a distant light
func newLightShaderData(ls *kernel.LightSample, time float64) ShaderData {
	d := ls.D.Normalize()
	return ShaderData{
		P:        d,
		N:        d.Negate(),
		D:        d,
		Time:     time,
		PathFlag: kernel.PathRayEmission,
	}
}
