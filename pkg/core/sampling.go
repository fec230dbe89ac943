package core

import (
	"math"
	"math/rand"

	"seehuhn.de/go/geom/vec"
)

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get2D returns a point in [0, 1)²
func (r *RandomSampler) Get2D() vec.Vec2 {
	return vec.Vec2{X: r.random.Float64(), Y: r.random.Float64()}
}

// PowerHeuristic computes the MIS weight of strategy f against strategy g
// using the power heuristic with beta = 2. Returns 0 when both densities vanish.
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	denom := f*f + g*g
	if denom == 0 {
		return 0
	}
	return (f * f) / denom
}

// UniformSpherePDF is the solid angle density of uniform sphere sampling
func UniformSpherePDF() float64 {
	return 1.0 / (4.0 * math.Pi)
}
