package film

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/df07/go-wavefront-tracer/pkg/core"
)

// Pass identifies an output layer of the render buffer
type Pass int

const (
	PassCombined Pass = iota
	PassBackground
	PassEmission
)

func (p Pass) String() string {
	switch p {
	case PassCombined:
		return "combined"
	case PassBackground:
		return "background"
	case PassEmission:
		return "emission"
	}
	return "unknown"
}

// ParsePass resolves a pass name, "" meaning the combined pass
func ParsePass(s string) (Pass, error) {
	switch strings.ToLower(s) {
	case "", "combined":
		return PassCombined, nil
	case "background":
		return PassBackground, nil
	case "emission":
		return PassEmission, nil
	}
	return 0, fmt.Errorf("unknown pass %q", s)
}

// Passes selects the optional layers allocated next to the combined pass
type Passes struct {
	Background bool
	Emission   bool
}

// atomicFloat is a float64 that can be accumulated from many goroutines
type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) add(delta float64) {
	for {
		old := f.bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if f.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

func (f *atomicFloat) load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *atomicFloat) store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

// RenderBuffer holds per pixel sums for every pass. All writes are atomic
// adds, so paths of the same pixel may be accumulated concurrently.
type RenderBuffer struct {
	width, height int
	passes        Passes

	combined   []atomicFloat // RGB + transparency per pixel
	background []atomicFloat // RGB per pixel, nil when disabled
	emission   []atomicFloat // RGB per pixel, nil when disabled
	samples    []atomic.Int64
}

// NewRenderBuffer allocates a buffer for width×height pixels
func NewRenderBuffer(width, height int, passes Passes) *RenderBuffer {
	n := width * height
	rb := &RenderBuffer{
		width:    width,
		height:   height,
		passes:   passes,
		combined: make([]atomicFloat, 4*n),
		samples:  make([]atomic.Int64, n),
	}
	if passes.Background {
		rb.background = make([]atomicFloat, 3*n)
	}
	if passes.Emission {
		rb.emission = make([]atomicFloat, 3*n)
	}
	return rb
}

// Width returns the buffer width in pixels
func (rb *RenderBuffer) Width() int { return rb.width }

// Height returns the buffer height in pixels
func (rb *RenderBuffer) Height() int { return rb.height }

// Passes returns the optional passes allocated in this buffer
func (rb *RenderBuffer) Passes() Passes { return rb.passes }

// PixelIndex converts pixel coordinates to a buffer index
func (rb *RenderBuffer) PixelIndex(x, y int) int {
	return y*rb.width + x
}

// HasPass reports whether the pass is allocated
func (rb *RenderBuffer) HasPass(p Pass) bool {
	switch p {
	case PassCombined:
		return true
	case PassBackground:
		return rb.passes.Background
	case PassEmission:
		return rb.passes.Emission
	}
	return false
}

func (rb *RenderBuffer) layer(p Pass) []atomicFloat {
	switch p {
	case PassBackground:
		return rb.background
	case PassEmission:
		return rb.emission
	}
	return nil
}

// AddCombined adds radiance and transparency to the combined pass
func (rb *RenderBuffer) AddCombined(pixel int, rgb core.Vec3, transparent float64) {
	base := 4 * pixel
	rb.combined[base].add(rgb.X)
	rb.combined[base+1].add(rgb.Y)
	rb.combined[base+2].add(rgb.Z)
	if transparent != 0 {
		rb.combined[base+3].add(transparent)
	}
}

// AddTransparent adds transparency to the combined pass without radiance
func (rb *RenderBuffer) AddTransparent(pixel int, transparent float64) {
	rb.combined[4*pixel+3].add(transparent)
}

// AddPass adds radiance to an optional pass. Writes to a pass that is not
// allocated are dropped.
func (rb *RenderBuffer) AddPass(p Pass, pixel int, rgb core.Vec3) {
	if p == PassCombined {
		rb.AddCombined(pixel, rgb, 0)
		return
	}
	layer := rb.layer(p)
	if layer == nil {
		return
	}
	base := 3 * pixel
	layer[base].add(rgb.X)
	layer[base+1].add(rgb.Y)
	layer[base+2].add(rgb.Z)
}

// AddSample records one finished camera sample for the pixel
func (rb *RenderBuffer) AddSample(pixel int) {
	rb.samples[pixel].Add(1)
}

// Samples returns the number of samples recorded for the pixel
func (rb *RenderBuffer) Samples(pixel int) int64 {
	return rb.samples[pixel].Load()
}

// Sum returns the raw accumulated radiance of a pass
func (rb *RenderBuffer) Sum(p Pass, pixel int) core.Vec3 {
	if p == PassCombined {
		base := 4 * pixel
		return core.NewVec3(rb.combined[base].load(), rb.combined[base+1].load(), rb.combined[base+2].load())
	}
	layer := rb.layer(p)
	if layer == nil {
		return core.Vec3{}
	}
	base := 3 * pixel
	return core.NewVec3(layer[base].load(), layer[base+1].load(), layer[base+2].load())
}

// TransparencySum returns the raw accumulated transparency of the pixel
func (rb *RenderBuffer) TransparencySum(pixel int) float64 {
	return rb.combined[4*pixel+3].load()
}

// Average returns the per sample radiance of a pass
func (rb *RenderBuffer) Average(p Pass, pixel int) core.Vec3 {
	n := rb.Samples(pixel)
	if n == 0 {
		return core.Vec3{}
	}
	return rb.Sum(p, pixel).Multiply(1.0 / float64(n))
}

// Alpha returns the coverage of the pixel, 1 minus its mean transparency
func (rb *RenderBuffer) Alpha(pixel int) float64 {
	n := rb.Samples(pixel)
	if n == 0 {
		return 0
	}
	return math.Max(0, math.Min(1, 1-rb.TransparencySum(pixel)/float64(n)))
}

// Reset zeroes every pass. It must not run concurrently with adds.
func (rb *RenderBuffer) Reset() {
	for _, layer := range [][]atomicFloat{rb.combined, rb.background, rb.emission} {
		for i := range layer {
			layer[i].store(0)
		}
	}
	for i := range rb.samples {
		rb.samples[i].Store(0)
	}
}
