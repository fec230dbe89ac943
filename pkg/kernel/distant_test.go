package kernel

import (
	"math"
	"testing"

	"github.com/df07/go-wavefront-tracer/pkg/core"
)

const (
	sunShader  ShaderID = 1
	moonShader ShaderID = 2
)

func twoSunRig() *testRig {
	rig := newTestRig()
	rig.lights.lights = []fakeLight{
		{distant: true, sample: LightSample{Shader: sunShader, PDF: 0.5, EvalFac: 1}},
		{distant: true, sample: LightSample{Shader: moonShader, PDF: 0.5, EvalFac: 1}},
	}
	rig.shaders.lightEval[sunShader] = core.NewVec3(10, 10, 10)
	rig.shaders.lightEval[moonShader] = core.NewVec3(1, 2, 3)
	return rig
}

func TestIntegrateDistantLights_SingleHit(t *testing.T) {
	rig := newTestRig()
	rig.lights.lights = []fakeLight{
		{distant: false},
		{distant: true, sample: LightSample{Shader: sunShader, PDF: 0.25}},
	}
	rig.shaders.lightEval[sunShader] = core.NewVec3(2, 2, 2)
	k := rig.kernel()

	state := indirectPath(0.5)
	state.Throughput = core.NewVec3(0.5, 0.25, 1)
	k.integrateDistantLights(&state)

	if len(rig.accum.emission) != 1 {
		t.Fatalf("expected 1 emission write, got %d", len(rig.accum.emission))
	}
	w := rig.accum.emission[0]
	if w.throughput != state.Throughput {
		t.Errorf("throughput = %v, want %v", w.throughput, state.Throughput)
	}
	// 0.5² / (0.5² + 0.25²) = 0.8
	if math.Abs(w.L.X-1.6) > 1e-12 {
		t.Errorf("L = %v, want 1.6 per component", w.L)
	}
}

func TestIntegrateDistantLights_MISSkip(t *testing.T) {
	rig := newTestRig()
	rig.lights.lights = []fakeLight{
		{distant: true, sample: LightSample{Shader: sunShader, PDF: 100}},
	}
	L := core.NewVec3(0.1, 0.7, 0.3)
	rig.shaders.lightEval[sunShader] = L
	k := rig.kernel()

	state := NewCameraPath(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0)), 0)
	k.integrateDistantLights(&state)

	if len(rig.accum.emission) != 1 || rig.accum.emission[0].L != L {
		t.Fatalf("expected unweighted emission %v, got %+v", L, rig.accum.emission)
	}
}

// Both lights are hit and emit: only the first in iteration order reaches
// the buffer.
func TestIntegrateDistantLights_FirstMatchOnlyFirstContributes(t *testing.T) {
	rig := twoSunRig()
	k := rig.kernel()

	state := indirectPath(0)
	k.integrateDistantLights(&state)

	if len(rig.accum.emission) != 1 {
		t.Fatalf("expected 1 emission write, got %d", len(rig.accum.emission))
	}
	if rig.accum.emission[0].L != core.NewVec3(10, 10, 10) {
		t.Errorf("L = %v, want the first light's emission", rig.accum.emission[0].L)
	}
	for _, lamp := range rig.shaders.lightEvals {
		if lamp != 0 {
			t.Errorf("lamp %d evaluated after the first match", lamp)
		}
	}
}

func TestIntegrateDistantLights_StopOnRejectKeepsAccepted(t *testing.T) {
	rig := twoSunRig()
	rig.config.Integrator.DistantLights = DistantLightsStopOnReject
	k := rig.kernel()

	state := indirectPath(0)
	k.integrateDistantLights(&state)

	if len(rig.accum.emission) != 2 {
		t.Fatalf("expected 2 emission writes, got %d", len(rig.accum.emission))
	}
}

func TestIntegrateDistantLights_StopOnRejectStopsAfterExcludedLight(t *testing.T) {
	rig := twoSunRig()
	rig.config.Integrator.DistantLights = DistantLightsStopOnReject
	rig.shaders.flags[sunShader] = ShaderExcludeDiffuse
	k := rig.kernel()

	state := indirectPath(0)
	k.integrateDistantLights(&state)

	if len(rig.accum.emission) != 0 {
		t.Errorf("expected no writes after an excluded first light, got %d", len(rig.accum.emission))
	}
}

func TestIntegrateDistantLights_FirstMatchStopsAfterExcludedLight(t *testing.T) {
	rig := twoSunRig()
	rig.shaders.flags[sunShader] = ShaderExcludeDiffuse
	k := rig.kernel()

	state := indirectPath(0.5)
	k.integrateDistantLights(&state)

	if len(rig.accum.emission) != 0 {
		t.Errorf("second light contributed %d times after the first was excluded", len(rig.accum.emission))
	}
	if len(rig.shaders.lightEvals) != 0 {
		t.Errorf("expected no light evaluations, got lamps %v", rig.shaders.lightEvals)
	}
}

func TestIntegrateDistantLights_FirstMatchStopsAfterBlackLight(t *testing.T) {
	rig := twoSunRig()
	rig.shaders.lightEval[sunShader] = core.Vec3{}
	k := rig.kernel()

	state := indirectPath(0.5)
	k.integrateDistantLights(&state)

	if len(rig.accum.emission) != 0 {
		t.Errorf("expected no emission after a black first light, got %+v", rig.accum.emission)
	}
	if len(rig.shaders.lightEvals) != 1 || rig.shaders.lightEvals[0] != 0 {
		t.Errorf("expected only lamp 0 evaluated, got %v", rig.shaders.lightEvals)
	}
}

func TestIntegrateDistantLights_AllPolicyVisitsEveryLight(t *testing.T) {
	rig := twoSunRig()
	rig.config.Integrator.DistantLights = DistantLightsAll
	k := rig.kernel()

	state := indirectPath(0)
	k.integrateDistantLights(&state)

	if len(rig.accum.emission) != 2 {
		t.Fatalf("expected 2 emission writes, got %d", len(rig.accum.emission))
	}
}

func TestIntegrateDistantLights_AllPolicyContinues(t *testing.T) {
	rig := twoSunRig()
	rig.config.Integrator.DistantLights = DistantLightsAll
	rig.shaders.flags[sunShader] = ShaderExcludeDiffuse
	k := rig.kernel()

	state := indirectPath(0)
	k.integrateDistantLights(&state)

	if len(rig.accum.emission) != 1 {
		t.Fatalf("expected the second light to contribute, got %d writes", len(rig.accum.emission))
	}
	if rig.accum.emission[0].L != core.NewVec3(1, 2, 3) {
		t.Errorf("L = %v, want the second light's emission", rig.accum.emission[0].L)
	}
}

func TestIntegrateDistantLights_VisibilityNeedsPasses(t *testing.T) {
	rig := twoSunRig()
	rig.config.Features.Passes = false
	rig.shaders.flags[sunShader] = ShaderExcludeDiffuse
	k := rig.kernel()

	state := indirectPath(0)
	k.integrateDistantLights(&state)

	if len(rig.accum.emission) != 1 || rig.accum.emission[0].L != core.NewVec3(10, 10, 10) {
		t.Errorf("without pass support light visibility is ignored, got %+v", rig.accum.emission)
	}
}

func TestIntegrateDistantLights_NoLights(t *testing.T) {
	rig := newTestRig()
	state := indirectPath(0.5)
	rig.kernel().integrateDistantLights(&state)
	if len(rig.accum.emission) != 0 {
		t.Errorf("expected no writes, got %d", len(rig.accum.emission))
	}
}
