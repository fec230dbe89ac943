package shader

import (
	"fmt"

	"github.com/df07/go-wavefront-tracer/pkg/core"
	"github.com/df07/go-wavefront-tracer/pkg/kernel"
)

// entry is one compiled shader
type entry struct {
	name  string
	root  Node
	flags kernel.ShaderFlag
}

// Table holds the scene's shaders and the primitive to shader bindings.
// It is built single-threaded and read concurrently during rendering.
type Table struct {
	shaders []entry
	byName  map[string]kernel.ShaderID
	prims   map[int]kernel.ShaderID
}

// NewTable creates an empty shader table
func NewTable() *Table {
	return &Table{
		byName: make(map[string]kernel.ShaderID),
		prims:  make(map[int]kernel.ShaderID),
	}
}

// Add registers a shader graph and returns its id. Graphs containing
// raytrace nodes get ShaderHasRaytrace automatically.
func (t *Table) Add(name string, root Node, flags kernel.ShaderFlag) (kernel.ShaderID, error) {
	if root == nil {
		return kernel.ShaderNone, fmt.Errorf("shader %q has no output node", name)
	}
	if _, exists := t.byName[name]; exists {
		return kernel.ShaderNone, fmt.Errorf("duplicate shader name %q", name)
	}
	if root.Feature()&kernel.FeatureNodeRaytrace != 0 {
		flags |= kernel.ShaderHasRaytrace
	}

	id := kernel.ShaderID(len(t.shaders))
	t.shaders = append(t.shaders, entry{name: name, root: root, flags: flags})
	t.byName[name] = id
	return id, nil
}

// Lookup finds a shader by name
func (t *Table) Lookup(name string) (kernel.ShaderID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Name returns the name of a shader, or "" for an unknown id
func (t *Table) Name(id kernel.ShaderID) string {
	if !t.valid(id) {
		return ""
	}
	return t.shaders[id].name
}

// Len returns the number of shaders
func (t *Table) Len() int {
	return len(t.shaders)
}

// BindPrimitive attaches a shader to a primitive index
func (t *Table) BindPrimitive(prim int, id kernel.ShaderID) error {
	if !t.valid(id) {
		return fmt.Errorf("bind primitive %d: unknown shader %d", prim, id)
	}
	t.prims[prim] = id
	return nil
}

// Flags implements kernel.ShaderEvaluator. Unknown ids have no flags.
func (t *Table) Flags(id kernel.ShaderID) kernel.ShaderFlag {
	if !t.valid(id) {
		return 0
	}
	return t.shaders[id].flags
}

// ConstantEmission implements kernel.ShaderEvaluator. An unknown id, such
// as ShaderNone for a scene without a world, reads as constant black.
func (t *Table) ConstantEmission(id kernel.ShaderID) (core.Vec3, bool) {
	if !t.valid(id) {
		return core.Vec3{}, true
	}
	if c, ok := t.shaders[id].root.(*Constant); ok {
		return c.Emission(), true
	}
	return core.Vec3{}, false
}

// EvalBackground implements kernel.ShaderEvaluator
func (t *Table) EvalBackground(id kernel.ShaderID, ray core.Ray, pathFlag kernel.PathFlag, mask kernel.FeatureMask) core.Vec3 {
	if !t.valid(id) {
		return core.Vec3{}
	}
	sd := newBackgroundShaderData(ray, pathFlag)
	return t.shaders[id].root.Eval(&sd, mask)
}

// EvalLight implements kernel.ShaderEvaluator. The emission is scaled by the
// sample's evaluation factor.
func (t *Table) EvalLight(ls *kernel.LightSample, time float64) core.Vec3 {
	if !t.valid(ls.Shader) {
		return core.Vec3{}
	}
	var L core.Vec3
	if c, ok := t.shaders[ls.Shader].root.(*Constant); ok {
		L = c.Emission()
	} else {
		sd := newLightShaderData(ls, time)
		L = t.shaders[ls.Shader].root.Eval(&sd, kernel.FeatureNodeMaskSurfaceLight)
	}
	return L.Multiply(ls.EvalFac)
}

// ShaderForPrim implements kernel.ShaderEvaluator
func (t *Table) ShaderForPrim(prim int) kernel.ShaderID {
	if id, ok := t.prims[prim]; ok {
		return id
	}
	return kernel.ShaderNone
}

func (t *Table) valid(id kernel.ShaderID) bool {
	return id >= 0 && int(id) < len(t.shaders)
}
