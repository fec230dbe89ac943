package geometry

import "github.com/df07/go-wavefront-tracer/pkg/core"

// Hit describes a ray surface intersection
type Hit struct {
	T         float64   // Ray parameter of the hit
	Point     core.Vec3 // World space position
	Normal    core.Vec3 // Surface normal facing against the ray
	FrontFace bool      // Ray hit the side the geometric normal points to
}

// setFaceNormal orients the normal against the ray
func (h *Hit) setFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// Shape is an object rays can hit
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (Hit, bool)
}
