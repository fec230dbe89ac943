package kernel

// integrateDistantLights adds the emission of distant lights the ray
// direction points into.
//
// The loop does not necessarily visit every light. With the default
// DistantLightsFirstMatch policy only the first light hit by the ray is
// handled; a light that is invisible to this ray or evaluates to black ends
// the search as well. See DistantLightPolicy for the alternatives.
func (k *Kernel) integrateDistantLights(state *PathState) {
	rayD := state.Ray.Direction
	rayTime := state.Ray.Time
	pathFlag := state.Flag

	numLights := k.lights.NumLights()
	for lamp := 0; lamp < numLights; lamp++ {
		ls, hit := k.lights.SampleFromDistantRay(rayD, lamp)
		if !hit {
			continue
		}

		if k.config.Features.Passes && IsExcluded(pathFlag, k.shaders.Flags(ls.Shader)) {
			if k.stopAfterRejectedLight() {
				return
			}
			continue
		}

		lightEval := k.shaders.EvalLight(&ls, rayTime)
		if lightEval.IsZero() {
			if k.stopAfterRejectedLight() {
				return
			}
			continue
		}

		if !pathFlag.Has(PathRayMISSkip) {
			lightEval = lightEval.Multiply(powerHeuristic(state.MISRayPDF, ls.PDF))
		}

		k.accum.AccumulateEmission(state, state.Throughput, lightEval)

		if k.config.Integrator.DistantLights == DistantLightsFirstMatch {
			return
		}
	}
}

// stopAfterRejectedLight reports whether a light that was hit but did not
// contribute ends the search
func (k *Kernel) stopAfterRejectedLight() bool {
	return k.config.Integrator.DistantLights != DistantLightsAll
}
