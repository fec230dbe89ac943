package geometry

import "github.com/df07/go-wavefront-tracer/pkg/core"

// Primitives is a flat list of shapes addressed by index
type Primitives struct {
	shapes []Shape
}

// NewPrimitives creates an empty primitive list
func NewPrimitives() *Primitives {
	return &Primitives{}
}

// Add appends a shape and returns its primitive index
func (p *Primitives) Add(shape Shape) int {
	p.shapes = append(p.shapes, shape)
	return len(p.shapes) - 1
}

// Len returns the number of primitives
func (p *Primitives) Len() int {
	return len(p.shapes)
}

// Shape returns primitive i, or nil when out of range
func (p *Primitives) Shape(i int) Shape {
	if i < 0 || i >= len(p.shapes) {
		return nil
	}
	return p.shapes[i]
}

// Intersect finds the closest primitive along the ray. It returns -1 when
// nothing is hit.
func (p *Primitives) Intersect(ray core.Ray, tMin, tMax float64) (int, Hit) {
	prim := -1
	var closest Hit
	for i, shape := range p.shapes {
		if hit, ok := shape.Hit(ray, tMin, tMax); ok {
			prim = i
			closest = hit
			tMax = hit.T
		}
	}
	return prim, closest
}
