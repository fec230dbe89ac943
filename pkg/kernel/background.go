package kernel

import "github.com/df07/go-wavefront-tracer/pkg/core"

// backgroundDisabledColor is returned when world shading is compiled out
var backgroundDisabledColor = core.NewVec3(0.8, 0.8, 0.8)

// evalBackgroundShader returns the radiance arriving along the ray from the world
func (k *Kernel) evalBackgroundShader(state *PathState) core.Vec3 {
	if !k.config.Features.Background {
		return backgroundDisabledColor
	}

	shader := k.config.Background.SurfaceShader
	pathFlag := state.Flag

	if IsExcluded(pathFlag, k.shaders.Flags(shader)) {
		return core.Vec3{}
	}

	// Constant worlds skip graph evaluation entirely
	if L, ok := k.shaders.ConstantEmission(shader); ok {
		return L
	}

	L := k.shaders.EvalBackground(shader, state.Ray, pathFlag|PathRayEmission, FeatureNodeMaskSurfaceLight)

	if k.config.Features.BackgroundMIS && !pathFlag.Has(PathRayMISSkip) && k.config.Background.UseMIS {
		rayP := state.Ray.Origin
		rayD := state.Ray.Direction

		// Light sampling picks the direction from the previous vertex, not
		// from the current ray origin.
		pdf := k.lights.BackgroundPDF(rayP.Subtract(rayD.Multiply(state.MISRayT)), rayD)
		L = L.Multiply(powerHeuristic(state.MISRayPDF, pdf))
	}

	return L
}

// integrateBackground evaluates the world and writes it, together with the
// path's transparency, to the render buffer.
func (k *Kernel) integrateBackground(state *PathState) {
	evalBackground := true
	transparent := 0.0

	isTransparentBackgroundRay := k.config.Background.Transparent &&
		state.Flag.Has(PathRayTransparentBackground)

	if isTransparentBackgroundRay {
		transparent = state.Throughput.Average()
		// The world is invisible in the combined pass, it only matters for
		// the background pass.
		evalBackground = k.config.Features.Passes && k.config.Film.PassBackground
	}

	var L core.Vec3
	if evalBackground {
		L = k.evalBackgroundShader(state)
	}

	if state.AOBounce {
		L = L.Multiply(k.config.Integrator.AOBouncesFactor)
	}

	k.accum.AccumulateBackground(state, L, transparent, isTransparentBackgroundRay)
}
