package kernel

import "strings"

// PathFlag describes the category of the ray a path is currently tracing
// and the bookkeeping bits the integrator carries with it.
type PathFlag uint32

const (
	PathRayCamera PathFlag = 1 << iota
	PathRayReflect
	PathRayTransmit
	PathRayDiffuse
	PathRayGlossy
	PathRaySingular
	PathRayTransparent
	PathRayVolumeScatter
	PathRayEmission
	PathRayMISSkip
	PathRayTransparentBackground
	PathRayShadowCatcherBackground
)

var pathFlagNames = []string{
	"camera",
	"reflect",
	"transmit",
	"diffuse",
	"glossy",
	"singular",
	"transparent",
	"volume_scatter",
	"emission",
	"mis_skip",
	"transparent_background",
	"shadow_catcher_background",
}

// Has reports whether any bit of mask is set
func (f PathFlag) Has(mask PathFlag) bool {
	return f&mask != 0
}

// HasAll reports whether every bit of mask is set
func (f PathFlag) HasAll(mask PathFlag) bool {
	return f&mask == mask
}

func (f PathFlag) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	for i, name := range pathFlagNames {
		if f&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}

// ShaderFlag holds per-shader capability and visibility bits
type ShaderFlag uint32

const (
	ShaderExcludeDiffuse ShaderFlag = 1 << iota
	ShaderExcludeGlossy
	ShaderExcludeTransmit
	ShaderExcludeCamera
	ShaderExcludeScatter
	// ShaderHasRaytrace marks shaders whose evaluation issues further scene queries
	ShaderHasRaytrace
	// ShaderUseMIS marks emissive shaders that take part in light sampling
	ShaderUseMIS

	ShaderExcludeAny = ShaderExcludeDiffuse | ShaderExcludeGlossy | ShaderExcludeTransmit |
		ShaderExcludeCamera | ShaderExcludeScatter
)

// Has reports whether any bit of mask is set
func (f ShaderFlag) Has(mask ShaderFlag) bool {
	return f&mask != 0
}

// ParseExclusion maps visibility category names ("camera", "diffuse",
// "glossy", "transmission", "scatter") to exclusion bits. Unknown names are
// returned so callers can report them.
func ParseExclusion(names []string) (ShaderFlag, []string) {
	var flags ShaderFlag
	var unknown []string
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "camera":
			flags |= ShaderExcludeCamera
		case "diffuse":
			flags |= ShaderExcludeDiffuse
		case "glossy":
			flags |= ShaderExcludeGlossy
		case "transmission", "transmit":
			flags |= ShaderExcludeTransmit
		case "scatter", "volume_scatter":
			flags |= ShaderExcludeScatter
		case "":
		default:
			unknown = append(unknown, name)
		}
	}
	return flags, unknown
}

// ShaderID indexes the scene's shader table
type ShaderID int

// ShaderNone is the id of an unbound shader slot
const ShaderNone ShaderID = -1

// FeatureMask restricts which shader node groups are evaluated
type FeatureMask uint32

const (
	FeatureNodeEmission FeatureMask = 1 << iota
	FeatureNodeTexture
	FeatureNodeRaytrace

	// FeatureNodeMaskSurfaceLight is the subset used for background and light shaders
	FeatureNodeMaskSurfaceLight = FeatureNodeEmission | FeatureNodeTexture
	FeatureNodeMaskSurface      = FeatureNodeMaskSurfaceLight | FeatureNodeRaytrace
)
