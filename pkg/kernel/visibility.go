package kernel

// IsExcluded reports whether a shader's visibility settings hide it from a
// ray of the given category. A glossy exclusion only applies to rays that are
// both glossy and reflected.
func IsExcluded(pathFlag PathFlag, shaderFlag ShaderFlag) bool {
	if !shaderFlag.Has(ShaderExcludeAny) {
		return false
	}
	return (shaderFlag.Has(ShaderExcludeDiffuse) && pathFlag.Has(PathRayDiffuse)) ||
		(shaderFlag.Has(ShaderExcludeGlossy) && pathFlag.HasAll(PathRayGlossy|PathRayReflect)) ||
		(shaderFlag.Has(ShaderExcludeTransmit) && pathFlag.Has(PathRayTransmit)) ||
		(shaderFlag.Has(ShaderExcludeCamera) && pathFlag.Has(PathRayCamera)) ||
		(shaderFlag.Has(ShaderExcludeScatter) && pathFlag.Has(PathRayVolumeScatter))
}
