package kernel

import "fmt"

// Features switches whole code paths of the integrator on or off
type Features struct {
	Background    bool // Evaluate world shaders; when off the background is a fixed grey
	BackgroundMIS bool // Weight background hits against light sampling
	ShadowCatcher bool // Route shadow catcher paths back to surface shading
	Passes        bool // Render passes and light visibility settings are supported
}

// AllFeatures enables every code path
func AllFeatures() Features {
	return Features{Background: true, BackgroundMIS: true, ShadowCatcher: true, Passes: true}
}

// BackgroundData describes the world
type BackgroundData struct {
	SurfaceShader ShaderID
	Transparent   bool // Film is rendered with a transparent background
	UseMIS        bool // The world takes part in light sampling
}

// FilmData lists the passes the film writes
type FilmData struct {
	PassBackground bool
	PassAO         bool
}

// DistantLightPolicy controls how many distant lights one ray may collect
// when its direction falls inside several sun disks.
type DistantLightPolicy int

const (
	// DistantLightsFirstMatch handles the first light the ray hits and then
	// stops, whether that light contributed or not. This is the default.
	DistantLightsFirstMatch DistantLightPolicy = iota
	// DistantLightsStopOnReject keeps going after a light contributes and
	// stops at the first light that is invisible to the ray or black.
	DistantLightsStopOnReject
	// DistantLightsAll handles every light the ray hits.
	DistantLightsAll
)

func (p DistantLightPolicy) String() string {
	switch p {
	case DistantLightsFirstMatch:
		return "first"
	case DistantLightsStopOnReject:
		return "reject"
	case DistantLightsAll:
		return "all"
	default:
		return fmt.Sprintf("DistantLightPolicy(%d)", int(p))
	}
}

// ParseDistantLightPolicy parses "first", "reject" or "all"
func ParseDistantLightPolicy(s string) (DistantLightPolicy, error) {
	switch s {
	case "", "first":
		return DistantLightsFirstMatch, nil
	case "reject":
		return DistantLightsStopOnReject, nil
	case "all":
		return DistantLightsAll, nil
	default:
		return 0, fmt.Errorf("unknown distant light policy %q", s)
	}
}

// IntegratorData holds integrator settings
type IntegratorData struct {
	AOBouncesFactor float64
	DistantLights   DistantLightPolicy
}

// Config is the read-only scene data the background stage consumes
type Config struct {
	Features   Features
	Background BackgroundData
	Film       FilmData
	Integrator IntegratorData
}

// DefaultConfig returns a configuration with every feature enabled, an
// opaque world without MIS and no extra passes.
func DefaultConfig() Config {
	return Config{
		Features: AllFeatures(),
		Background: BackgroundData{
			SurfaceShader: ShaderNone,
		},
		Integrator: IntegratorData{
			AOBouncesFactor: 1.0,
			DistantLights:   DistantLightsFirstMatch,
		},
	}
}
