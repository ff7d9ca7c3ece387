package uml

import "fmt"

// DropLocation is a rectangular target area on a drag-and-drop
// background. Coordinates are percentages of the background size.
type DropLocation struct {
	base
	x, y          float64
	width, height float64
}

// NewDropLocation creates a drop location. Negative sizes are treated as
// zero.
func NewDropLocation(id string, x, y, width, height float64) *DropLocation {
	return &DropLocation{
		base:   base{id: id},
		x:      x,
		y:      y,
		width:  max(width, 0),
		height: max(height, 0),
	}
}

func (d *DropLocation) Kind() ElementKind { return KindDropLocation }

// Bounds returns x, y, width and height
func (d *DropLocation) Bounds() (x, y, width, height float64) {
	return d.x, d.y, d.width, d.height
}

// Similarity is the intersection over union of both rectangles.
func (d *DropLocation) Similarity(other Element) float64 {
	ref, ok := other.(*DropLocation)
	if !ok || ref == nil || d == nil {
		return 0
	}

	union := d.area() + ref.area()
	if union == 0 {
		if d.x == ref.x && d.y == ref.y {
			return 1
		}
		return 0
	}

	overlapW := min(d.x+d.width, ref.x+ref.width) - max(d.x, ref.x)
	overlapH := min(d.y+d.height, ref.y+ref.height) - max(d.y, ref.y)
	if overlapW <= 0 || overlapH <= 0 {
		return 0
	}

	intersection := overlapW * overlapH
	return clamp(intersection / (union - intersection))
}

func (d *DropLocation) area() float64 {
	return d.width * d.height
}

func (d *DropLocation) Equal(other Element) bool {
	ref, ok := other.(*DropLocation)
	if !ok || ref == nil || d == nil {
		return false
	}
	return d.x == ref.x && d.y == ref.y && d.width == ref.width && d.height == ref.height
}

func (d *DropLocation) String() string {
	return fmt.Sprintf("drop location (%.1f, %.1f, %.1f x %.1f)", d.x, d.y, d.width, d.height)
}
