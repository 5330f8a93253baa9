package graph

// Point is a 2D coordinate used by geometries for offsets, dangling edge
// endpoints and routing waypoints.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Geometry describes the spatial information of a cell: the bounds of a
// vertex, or the routing hints of an edge. A Geometry is plain data; cells
// adopt a new geometry only through Model.SetGeometry so the replacement is
// recorded and reversible.
type Geometry struct {
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Relative marks X and Y as fractions of the parent bounds instead of
	// absolute coordinates. Edge labels and ports use this.
	Relative bool `json:"relative,omitempty"`

	// Offset is an absolute displacement applied after relative
	// positioning, typically for label placement.
	Offset *Point `json:"offset,omitempty"`

	// SourcePoint and TargetPoint locate dangling edge endpoints while the
	// corresponding terminal is unset.
	SourcePoint *Point `json:"source_point,omitempty"`
	TargetPoint *Point `json:"target_point,omitempty"`

	// Points holds intermediate routing waypoints of an edge. The model
	// stores them verbatim; computing them is a routing concern.
	Points []Point `json:"points,omitempty"`

	// Alternate keeps the bounds to switch to when a cell is folded, and
	// afterwards the bounds to restore on expand.
	Alternate *Geometry `json:"alternate,omitempty"`
}

// NewGeometry creates an absolute geometry with the given bounds.
func NewGeometry(x, y, width, height float64) *Geometry {
	return &Geometry{X: x, Y: y, Width: width, Height: height}
}

// Clone returns a deep copy of the geometry. A nil receiver yields nil.
func (g *Geometry) Clone() *Geometry {
	if g == nil {
		return nil
	}
	clone := *g
	clone.Offset = clonePoint(g.Offset)
	clone.SourcePoint = clonePoint(g.SourcePoint)
	clone.TargetPoint = clonePoint(g.TargetPoint)
	if g.Points != nil {
		clone.Points = make([]Point, len(g.Points))
		copy(clone.Points, g.Points)
	}
	clone.Alternate = g.Alternate.Clone()
	return &clone
}

// Equal reports whether two geometries describe the same spatial data.
// Two nil geometries are equal.
func (g *Geometry) Equal(other *Geometry) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.X != other.X || g.Y != other.Y ||
		g.Width != other.Width || g.Height != other.Height ||
		g.Relative != other.Relative {
		return false
	}
	if !pointEqual(g.Offset, other.Offset) ||
		!pointEqual(g.SourcePoint, other.SourcePoint) ||
		!pointEqual(g.TargetPoint, other.TargetPoint) {
		return false
	}
	if len(g.Points) != len(other.Points) {
		return false
	}
	for i := range g.Points {
		if g.Points[i] != other.Points[i] {
			return false
		}
	}
	return g.Alternate.Equal(other.Alternate)
}

// Swapped returns a clone with the main bounds and the alternate bounds
// exchanged. Folding uses this so that collapse and expand are both a single
// recorded geometry replacement. Without alternate bounds the result is a
// plain clone.
func (g *Geometry) Swapped() *Geometry {
	clone := g.Clone()
	if clone == nil || clone.Alternate == nil {
		return clone
	}
	clone.X, clone.Alternate.X = clone.Alternate.X, clone.X
	clone.Y, clone.Alternate.Y = clone.Alternate.Y, clone.Y
	clone.Width, clone.Alternate.Width = clone.Alternate.Width, clone.Width
	clone.Height, clone.Alternate.Height = clone.Alternate.Height, clone.Height
	return clone
}

func clonePoint(p *Point) *Point {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func pointEqual(a, b *Point) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
