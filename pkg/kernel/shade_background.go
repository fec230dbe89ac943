package kernel

import "github.com/df07/go-wavefront-tracer/pkg/core"

// ShadeBackground runs the stage for a path whose ray left the scene and
// returns the stage the path continues in.
//
// Shadow catcher paths that reach the background are sent back to shade the
// catcher surface they came from, once. Every other path terminates here.
func (k *Kernel) ShadeBackground(state *PathState) NextStage {
	// TODO: evaluate distant lights and the world in one loop so each ray
	// needs a single shader evaluation call.
	k.integrateDistantLights(state)
	k.integrateBackground(state)

	if k.config.Features.ShadowCatcher && state.Flag.Has(PathRayShadowCatcherBackground) {
		state.Flag &^= PathRayShadowCatcherBackground

		shader := k.shaders.ShaderForPrim(state.Isect.Prim)
		shaderFlags := k.shaders.Flags(shader)

		if shaderFlags.Has(ShaderHasRaytrace) || k.config.Film.PassAO {
			return NextStage{Kernel: DeviceKernelShadeSurfaceRaytrace, Shader: shader}
		}
		return NextStage{Kernel: DeviceKernelShadeSurface, Shader: shader}
	}

	return NextStage{Kernel: DeviceKernelTerminated, Shader: ShaderNone}
}

func powerHeuristic(a, b float64) float64 {
	return core.PowerHeuristic(1, a, 1, b)
}
