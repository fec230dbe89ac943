package kernel

import "github.com/df07/go-wavefront-tracer/pkg/core"

// fakeShaders is an in-memory ShaderEvaluator for kernel tests
type fakeShaders struct {
	flags      map[ShaderID]ShaderFlag
	constant   map[ShaderID]core.Vec3
	background func(ray core.Ray) core.Vec3
	lightEval  map[ShaderID]core.Vec3
	prims      map[int]ShaderID

	backgroundEvals int
	lastEvalFlag    PathFlag
	lastEvalMask    FeatureMask
	lightEvals      []int
}

func newFakeShaders() *fakeShaders {
	return &fakeShaders{
		flags:     map[ShaderID]ShaderFlag{},
		constant:  map[ShaderID]core.Vec3{},
		lightEval: map[ShaderID]core.Vec3{},
		prims:     map[int]ShaderID{},
	}
}

func (f *fakeShaders) Flags(id ShaderID) ShaderFlag {
	return f.flags[id]
}

func (f *fakeShaders) ConstantEmission(id ShaderID) (core.Vec3, bool) {
	L, ok := f.constant[id]
	return L, ok
}

func (f *fakeShaders) EvalBackground(id ShaderID, ray core.Ray, pathFlag PathFlag, mask FeatureMask) core.Vec3 {
	f.backgroundEvals++
	f.lastEvalFlag = pathFlag
	f.lastEvalMask = mask
	if f.background == nil {
		return core.Vec3{}
	}
	return f.background(ray)
}

func (f *fakeShaders) EvalLight(ls *LightSample, time float64) core.Vec3 {
	f.lightEvals = append(f.lightEvals, ls.Lamp)
	return f.lightEval[ls.Shader]
}

func (f *fakeShaders) ShaderForPrim(prim int) ShaderID {
	if id, ok := f.prims[prim]; ok {
		return id
	}
	return ShaderNone
}

// fakeLight is one entry of fakeLights
type fakeLight struct {
	distant bool
	sample  LightSample
}

// fakeLights is an in-memory LightSampler for kernel tests
type fakeLights struct {
	lights        []fakeLight
	backgroundPDF float64

	lastPDFPoint core.Vec3
	pdfCalls     int
}

func (f *fakeLights) NumLights() int {
	return len(f.lights)
}

func (f *fakeLights) SampleFromDistantRay(d core.Vec3, lamp int) (LightSample, bool) {
	l := f.lights[lamp]
	if !l.distant {
		return LightSample{}, false
	}
	ls := l.sample
	ls.Lamp = lamp
	ls.D = d
	return ls, true
}

func (f *fakeLights) BackgroundPDF(p, d core.Vec3) float64 {
	f.pdfCalls++
	f.lastPDFPoint = p
	return f.backgroundPDF
}

type backgroundWrite struct {
	L                          core.Vec3
	transparent                float64
	isTransparentBackgroundRay bool
}

type emissionWrite struct {
	throughput core.Vec3
	L          core.Vec3
}

// recordingAccumulator keeps every write for inspection
type recordingAccumulator struct {
	background []backgroundWrite
	emission   []emissionWrite
}

func (r *recordingAccumulator) AccumulateBackground(state *PathState, L core.Vec3, transparent float64, isTransparentBackgroundRay bool) {
	r.background = append(r.background, backgroundWrite{L, transparent, isTransparentBackgroundRay})
}

func (r *recordingAccumulator) AccumulateEmission(state *PathState, throughput, L core.Vec3) {
	r.emission = append(r.emission, emissionWrite{throughput, L})
}

// testRig bundles a kernel with its fakes
type testRig struct {
	shaders *fakeShaders
	lights  *fakeLights
	accum   *recordingAccumulator
	config  Config
}

const worldShader ShaderID = 0

func newTestRig() *testRig {
	config := DefaultConfig()
	config.Background.SurfaceShader = worldShader
	return &testRig{
		shaders: newFakeShaders(),
		lights:  &fakeLights{},
		accum:   &recordingAccumulator{},
		config:  config,
	}
}

func (r *testRig) kernel() *Kernel {
	return NewKernel(r.config, r.shaders, r.lights, r.accum)
}

// indirectPath returns a diffuse bounce path with MIS history
func indirectPath(misPDF float64) PathState {
	return PathState{
		Ray:        core.NewRayAt(core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0), 0.5),
		Throughput: core.NewVec3(1, 1, 1),
		Flag:       PathRayDiffuse | PathRayReflect,
		MISRayPDF:  misPDF,
		MISRayT:    2.0,
		Isect:      Intersection{Prim: -1, Shader: ShaderNone},
		Bounce:     1,
	}
}
