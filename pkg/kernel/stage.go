package kernel

import "fmt"

// DeviceKernel identifies an integrator stage in the wavefront pipeline
type DeviceKernel int

const (
	DeviceKernelShadeBackground DeviceKernel = iota
	DeviceKernelShadeSurfaceRaytrace
	DeviceKernelShadeSurface
	DeviceKernelTerminated

	numDeviceKernels
)

// NumDeviceKernels is the number of distinct stages, for sizing per-stage tables
const NumDeviceKernels = int(numDeviceKernels)

func (k DeviceKernel) String() string {
	switch k {
	case DeviceKernelShadeBackground:
		return "shade_background"
	case DeviceKernelShadeSurfaceRaytrace:
		return "shade_surface_raytrace"
	case DeviceKernelShadeSurface:
		return "shade_surface"
	case DeviceKernelTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("DeviceKernel(%d)", int(k))
	}
}

// NextStage is the scheduling decision for a path. Shader is the sort key
// for surface stages and ShaderNone for terminated paths.
type NextStage struct {
	Kernel DeviceKernel
	Shader ShaderID
}

// Terminated reports whether the path is finished
func (n NextStage) Terminated() bool {
	return n.Kernel == DeviceKernelTerminated
}
