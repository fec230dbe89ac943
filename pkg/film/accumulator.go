package film

import (
	"math"

	"github.com/df07/go-wavefront-tracer/pkg/core"
	"github.com/df07/go-wavefront-tracer/pkg/kernel"
)

// ClampConfig limits the contribution of a single sample. Zero disables
// the respective limit.
type ClampConfig struct {
	Direct   float64 // Camera rays and the first bounce
	Indirect float64 // Deeper bounces
}

// Accumulator writes integrator contributions into a RenderBuffer
type Accumulator struct {
	buffer *RenderBuffer
	clamp  ClampConfig
}

// NewAccumulator creates an accumulator writing to buffer
func NewAccumulator(buffer *RenderBuffer, clamp ClampConfig) *Accumulator {
	return &Accumulator{buffer: buffer, clamp: clamp}
}

// Buffer returns the render buffer written by the accumulator
func (a *Accumulator) Buffer() *RenderBuffer {
	return a.buffer
}

// clampSample scales L down so the sum of its components stays below the
// limit for the path depth.
func (a *Accumulator) clampSample(L core.Vec3, bounce int) core.Vec3 {
	limit := a.clamp.Direct
	if bounce-1 > 0 {
		limit = a.clamp.Indirect
	}
	if limit <= 0 {
		return L
	}
	sum := math.Abs(L.X) + math.Abs(L.Y) + math.Abs(L.Z)
	if sum > limit {
		return L.Multiply(limit / sum)
	}
	return L
}

// directlyVisible reports whether a contribution belongs in the light
// passes, which only hold what the camera sees without scattering.
func directlyVisible(state *kernel.PathState) bool {
	return state.Bounce == 0
}

// AccumulateBackground implements kernel.Accumulator
func (a *Accumulator) AccumulateBackground(state *kernel.PathState, L core.Vec3, transparent float64, isTransparentBackgroundRay bool) {
	contribution := a.clampSample(state.Throughput.MultiplyVec(L), state.Bounce)

	if isTransparentBackgroundRay {
		a.buffer.AddTransparent(state.PixelIndex, transparent)
	} else {
		a.buffer.AddCombined(state.PixelIndex, contribution, transparent)
	}

	if directlyVisible(state) {
		a.buffer.AddPass(PassBackground, state.PixelIndex, contribution)
	}
}

// AccumulateEmission implements kernel.Accumulator
func (a *Accumulator) AccumulateEmission(state *kernel.PathState, throughput, L core.Vec3) {
	contribution := a.clampSample(throughput.MultiplyVec(L), state.Bounce)
	a.buffer.AddCombined(state.PixelIndex, contribution, 0)

	if directlyVisible(state) {
		a.buffer.AddPass(PassEmission, state.PixelIndex, contribution)
	}
}
