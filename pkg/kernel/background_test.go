package kernel

import (
	"math"
	"testing"

	"github.com/df07/go-wavefront-tracer/pkg/core"
)

func TestEvalBackgroundShader_ConstantFastPath(t *testing.T) {
	rig := newTestRig()
	want := core.NewVec3(0.2, 0.3, 0.4)
	rig.shaders.constant[worldShader] = want
	k := rig.kernel()

	directions := []core.Vec3{
		core.NewVec3(0, 1, 0),
		core.NewVec3(0, -1, 0),
		core.NewVec3(1, 0, 0).Normalize(),
		core.NewVec3(-0.3, 0.2, 0.9).Normalize(),
	}
	for _, d := range directions {
		state := indirectPath(0.5)
		state.Ray.Direction = d
		if got := k.evalBackgroundShader(&state); got != want {
			t.Errorf("direction %v: got %v, want %v", d, got, want)
		}
	}

	if rig.shaders.backgroundEvals != 0 {
		t.Errorf("constant world should not evaluate the graph, got %d evaluations", rig.shaders.backgroundEvals)
	}
	if rig.lights.pdfCalls != 0 {
		t.Errorf("constant world should not compute MIS, got %d pdf calls", rig.lights.pdfCalls)
	}
}

func TestEvalBackgroundShader_Excluded(t *testing.T) {
	rig := newTestRig()
	rig.shaders.flags[worldShader] = ShaderExcludeCamera
	rig.shaders.background = func(core.Ray) core.Vec3 { return core.NewVec3(1, 1, 1) }
	k := rig.kernel()

	state := NewCameraPath(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), 0)
	if got := k.evalBackgroundShader(&state); !got.IsZero() {
		t.Errorf("excluded world returned %v, want zero", got)
	}
	if rig.shaders.backgroundEvals != 0 {
		t.Errorf("excluded world was evaluated %d times", rig.shaders.backgroundEvals)
	}

	// Diffuse bounces still see the world
	bounce := indirectPath(0.5)
	if got := k.evalBackgroundShader(&bounce); got != core.NewVec3(1, 1, 1) {
		t.Errorf("diffuse ray got %v, want (1,1,1)", got)
	}
}

func TestEvalBackgroundShader_GraphEvaluation(t *testing.T) {
	rig := newTestRig()
	rig.shaders.background = func(ray core.Ray) core.Vec3 {
		return core.NewVec3(ray.Direction.Y, 0, 0)
	}
	k := rig.kernel()

	state := indirectPath(0)
	got := k.evalBackgroundShader(&state)
	if got != core.NewVec3(1, 0, 0) {
		t.Errorf("got %v, want (1,0,0)", got)
	}
	if !rig.shaders.lastEvalFlag.Has(PathRayEmission) {
		t.Errorf("graph evaluated with flags %v, want emission bit", rig.shaders.lastEvalFlag)
	}
	if rig.shaders.lastEvalMask != FeatureNodeMaskSurfaceLight {
		t.Errorf("graph evaluated with mask %b, want surface-light mask", rig.shaders.lastEvalMask)
	}
	if state.Flag.Has(PathRayEmission) {
		t.Error("evaluation must not modify the path flags")
	}
}

func TestEvalBackgroundShader_MISWeight(t *testing.T) {
	rig := newTestRig()
	rig.config.Background.UseMIS = true
	rig.lights.backgroundPDF = 0.25
	rig.shaders.background = func(core.Ray) core.Vec3 { return core.NewVec3(2, 2, 2) }
	k := rig.kernel()

	state := indirectPath(0.5)
	got := k.evalBackgroundShader(&state)

	// 0.5² / (0.5² + 0.25²) = 0.8
	want := 2 * 0.8
	if math.Abs(got.X-want) > 1e-12 || got.X != got.Y || got.Y != got.Z {
		t.Errorf("got %v, want all components %f", got, want)
	}

	// pdf is evaluated from the previous vertex: P - D*t
	wantPoint := core.NewVec3(0, -1, 0)
	if rig.lights.lastPDFPoint.Subtract(wantPoint).Length() > 1e-12 {
		t.Errorf("pdf evaluated at %v, want %v", rig.lights.lastPDFPoint, wantPoint)
	}
}

func TestEvalBackgroundShader_MISSkipIsUnweighted(t *testing.T) {
	rig := newTestRig()
	rig.config.Background.UseMIS = true
	rig.lights.backgroundPDF = 3.0
	L := core.NewVec3(0.123456789, 0.987654321, 0.5)
	rig.shaders.background = func(core.Ray) core.Vec3 { return L }
	k := rig.kernel()

	state := indirectPath(0.1)
	state.Flag |= PathRayMISSkip

	if got := k.evalBackgroundShader(&state); got != L {
		t.Errorf("MIS skip got %v, want exactly %v", got, L)
	}
	if rig.lights.pdfCalls != 0 {
		t.Errorf("MIS skip should not query the light pdf, got %d calls", rig.lights.pdfCalls)
	}
}

func TestEvalBackgroundShader_MISDisabled(t *testing.T) {
	L := core.NewVec3(1, 2, 3)

	t.Run("world without MIS", func(t *testing.T) {
		rig := newTestRig()
		rig.config.Background.UseMIS = false
		rig.lights.backgroundPDF = 1.0
		rig.shaders.background = func(core.Ray) core.Vec3 { return L }
		state := indirectPath(0.1)
		if got := rig.kernel().evalBackgroundShader(&state); got != L {
			t.Errorf("got %v, want %v", got, L)
		}
	})

	t.Run("feature off", func(t *testing.T) {
		rig := newTestRig()
		rig.config.Background.UseMIS = true
		rig.config.Features.BackgroundMIS = false
		rig.lights.backgroundPDF = 1.0
		rig.shaders.background = func(core.Ray) core.Vec3 { return L }
		state := indirectPath(0.1)
		if got := rig.kernel().evalBackgroundShader(&state); got != L {
			t.Errorf("got %v, want %v", got, L)
		}
	})
}

func TestEvalBackgroundShader_ZeroPDFs(t *testing.T) {
	rig := newTestRig()
	rig.config.Background.UseMIS = true
	rig.lights.backgroundPDF = 0
	rig.shaders.background = func(core.Ray) core.Vec3 { return core.NewVec3(1, 1, 1) }

	state := indirectPath(0)
	got := rig.kernel().evalBackgroundShader(&state)
	if math.IsNaN(got.X) || !got.IsZero() {
		t.Errorf("zero pdfs should give zero radiance, got %v", got)
	}
}

func TestEvalBackgroundShader_FeatureDisabled(t *testing.T) {
	rig := newTestRig()
	rig.config.Features.Background = false
	rig.shaders.constant[worldShader] = core.NewVec3(5, 5, 5)

	state := indirectPath(0.5)
	if got := rig.kernel().evalBackgroundShader(&state); got != core.NewVec3(0.8, 0.8, 0.8) {
		t.Errorf("got %v, want fixed grey", got)
	}
}

func TestIntegrateBackground_Opaque(t *testing.T) {
	rig := newTestRig()
	rig.shaders.constant[worldShader] = core.NewVec3(0.2, 0.3, 0.4)
	k := rig.kernel()

	state := indirectPath(0.5)
	state.Flag |= PathRayTransparentBackground
	state.Throughput = core.NewVec3(0.5, 0.5, 0.5)
	k.integrateBackground(&state)

	if len(rig.accum.background) != 1 {
		t.Fatalf("expected 1 background write, got %d", len(rig.accum.background))
	}
	w := rig.accum.background[0]
	if w.isTransparentBackgroundRay {
		t.Error("opaque film should never produce transparent background rays")
	}
	if w.transparent != 0 {
		t.Errorf("transparent = %f, want 0", w.transparent)
	}
	if w.L != core.NewVec3(0.2, 0.3, 0.4) {
		t.Errorf("L = %v, want (0.2,0.3,0.4)", w.L)
	}
}

func TestIntegrateBackground_TransparentWithoutBackgroundPass(t *testing.T) {
	rig := newTestRig()
	rig.config.Background.Transparent = true
	rig.config.Film.PassBackground = false
	rig.shaders.background = func(core.Ray) core.Vec3 { return core.NewVec3(1, 1, 1) }
	k := rig.kernel()

	state := NewCameraPath(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), 3)
	state.Throughput = core.NewVec3(0.5, 0.5, 0.5)
	k.integrateBackground(&state)

	if len(rig.accum.background) != 1 {
		t.Fatalf("expected 1 background write, got %d", len(rig.accum.background))
	}
	w := rig.accum.background[0]
	if !w.isTransparentBackgroundRay {
		t.Error("expected a transparent background ray")
	}
	if !w.L.IsZero() {
		t.Errorf("radiance = %v, want zero", w.L)
	}
	if w.transparent != 0.5 {
		t.Errorf("transparent = %f, want 0.5", w.transparent)
	}
	if rig.shaders.backgroundEvals != 0 {
		t.Errorf("world evaluated %d times without a background pass", rig.shaders.backgroundEvals)
	}
}

func TestIntegrateBackground_TransparentWithBackgroundPass(t *testing.T) {
	rig := newTestRig()
	rig.config.Background.Transparent = true
	rig.config.Film.PassBackground = true
	rig.shaders.background = func(core.Ray) core.Vec3 { return core.NewVec3(1, 0.5, 0.25) }
	k := rig.kernel()

	state := NewCameraPath(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), 0)
	state.Throughput = core.NewVec3(0.3, 0.6, 0.9)
	k.integrateBackground(&state)

	w := rig.accum.background[0]
	if w.L != core.NewVec3(1, 0.5, 0.25) {
		t.Errorf("L = %v, want world color for the background pass", w.L)
	}
	if math.Abs(w.transparent-0.6) > 1e-12 {
		t.Errorf("transparent = %f, want 0.6", w.transparent)
	}

	// Without pass support the background pass cannot be requested
	rig.config.Features.Passes = false
	rig.accum.background = nil
	state = NewCameraPath(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), 0)
	rig.kernel().integrateBackground(&state)
	if !rig.accum.background[0].L.IsZero() {
		t.Errorf("L = %v, want zero when passes are disabled", rig.accum.background[0].L)
	}
}

func TestIntegrateBackground_TransparentFlagNotSet(t *testing.T) {
	rig := newTestRig()
	rig.config.Background.Transparent = true
	rig.shaders.constant[worldShader] = core.NewVec3(1, 1, 1)

	// Rays that passed through a non-transparent surface keep the world
	state := indirectPath(0.5)
	rig.kernel().integrateBackground(&state)

	w := rig.accum.background[0]
	if w.isTransparentBackgroundRay || w.transparent != 0 || w.L != core.NewVec3(1, 1, 1) {
		t.Errorf("unexpected write %+v", w)
	}
}

func TestIntegrateBackground_AOBounceFactor(t *testing.T) {
	rig := newTestRig()
	rig.config.Integrator.AOBouncesFactor = 0.25
	rig.shaders.constant[worldShader] = core.NewVec3(4, 8, 12)
	k := rig.kernel()

	state := indirectPath(0.5)
	state.AOBounce = true
	k.integrateBackground(&state)
	if got := rig.accum.background[0].L; got != core.NewVec3(1, 2, 3) {
		t.Errorf("AO bounce L = %v, want (1,2,3)", got)
	}

	state.AOBounce = false
	k.integrateBackground(&state)
	if got := rig.accum.background[1].L; got != core.NewVec3(4, 8, 12) {
		t.Errorf("regular L = %v, want (4,8,12)", got)
	}
}
