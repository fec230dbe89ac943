package lights

import (
	"fmt"
	"strings"

	"github.com/df07/go-wavefront-tracer/pkg/core"
	"github.com/df07/go-wavefront-tracer/pkg/kernel"
)

// Sampler selects lights with fixed weights and answers the pdf queries of
// the background stage. Weights must match the order of lights.
type Sampler struct {
	lights  []Light
	weights []float64
}

// NewWeightedSampler creates a light sampler with the given weights, which
// are normalized to sum to 1.0. All-zero weights fall back to uniform.
func NewWeightedSampler(lights []Light, weights []float64) *Sampler {
	if len(lights) != len(weights) {
		panic(fmt.Sprintf("lights length (%d) must match weights length (%d)", len(lights), len(weights)))
	}

	totalWeight := 0.0
	for _, weight := range weights {
		if weight < 0 {
			panic("weights must be non-negative")
		}
		totalWeight += weight
	}

	normalized := make([]float64, len(weights))
	for i, weight := range weights {
		if totalWeight == 0 {
			normalized[i] = 1.0 / float64(len(weights))
		} else {
			normalized[i] = weight / totalWeight
		}
	}

	return &Sampler{lights: lights, weights: normalized}
}

// NewUniformSampler creates a light sampler with equal weights for all lights
func NewUniformSampler(lights []Light) *Sampler {
	return NewWeightedSampler(lights, make([]float64, len(lights)))
}

// NumLights implements kernel.LightSampler
func (s *Sampler) NumLights() int {
	return len(s.lights)
}

// Light returns the light at index i
func (s *Sampler) Light(i int) Light {
	return s.lights[i]
}

// LightProbability returns the selection probability of light i
func (s *Sampler) LightProbability(i int) float64 {
	if i < 0 || i >= len(s.weights) {
		return 0.0
	}
	return s.weights[i]
}

// SampleFromDistantRay implements kernel.LightSampler. The returned pdf
// includes the probability of selecting the light.
func (s *Sampler) SampleFromDistantRay(d core.Vec3, lamp int) (kernel.LightSample, bool) {
	if lamp < 0 || lamp >= len(s.lights) {
		return kernel.LightSample{}, false
	}
	light, ok := s.lights[lamp].(DirectionalHit)
	if !ok {
		return kernel.LightSample{}, false
	}

	ls, hit := light.HitDirection(d)
	if !hit {
		return kernel.LightSample{}, false
	}
	ls.Lamp = lamp
	ls.PDF *= s.weights[lamp]
	return ls, true
}

// BackgroundPDF implements kernel.LightSampler. It sums the densities of
// every light covering the sphere of directions, weighted by selection.
func (s *Sampler) BackgroundPDF(p, d core.Vec3) float64 {
	pdf := 0.0
	for i, light := range s.lights {
		if directional, ok := light.(DirectionalPDF); ok {
			pdf += directional.DirectionPDF(p, d) * s.weights[i]
		}
	}
	return pdf
}

// String returns a string representation for debugging
func (s *Sampler) String() string {
	if len(s.lights) == 0 {
		return "Sampler{no lights}"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sampler{%d lights with fixed weights:\n", len(s.lights))
	for i, light := range s.lights {
		fmt.Fprintf(&b, "  [%d] %s: %.1f%%\n", i, light.Type(), s.weights[i]*100)
	}
	b.WriteString("}")
	return b.String()
}
