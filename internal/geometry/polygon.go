package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the distance under which a point is treated as lying on an edge.
const Epsilon = 1e-10

// Orientation is the winding direction of a vertex ring.
type Orientation int

const (
	Collinear Orientation = iota // zero signed area
	CounterClockwise
	Clockwise
)

func (o Orientation) String() string {
	switch o {
	case Collinear:
		return "collinear"
	case CounterClockwise:
		return "counter-clockwise"
	case Clockwise:
		return "clockwise"
	default:
		return fmt.Sprintf("orientation(%d)", int(o))
	}
}

// Polygon is an ordered ring of at least three vertices. The ring is closed
// implicitly: the last vertex connects back to the first.
type Polygon struct {
	points []r2.Vec
	area   float64
	box    r2.Box
}

// NewPolygon builds a polygon over a copy of points. It panics when fewer
// than three points are supplied or a coordinate is NaN; both are caller bugs.
func NewPolygon(points []r2.Vec) *Polygon {
	if len(points) < 3 {
		panic(fmt.Sprintf("geometry: polygon needs at least 3 points, got %d", len(points)))
	}
	pts := make([]r2.Vec, len(points))
	copy(pts, points)
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			panic(fmt.Sprintf("geometry: NaN coordinate at vertex %d", i))
		}
		xs[i], ys[i] = p.X, p.Y
	}
	return &Polygon{
		points: pts,
		area:   SignedArea(pts),
		box: r2.Box{
			Min: r2.Vec{X: floats.Min(xs), Y: floats.Min(ys)},
			Max: r2.Vec{X: floats.Max(xs), Y: floats.Max(ys)},
		},
	}
}

// Points returns the vertices in their original order. The slice is shared;
// callers must not modify it.
func (p *Polygon) Points() []r2.Vec { return p.points }

// NumPoints returns the vertex count.
func (p *Polygon) NumPoints() int { return len(p.points) }

// SignedArea is positive for counter-clockwise rings.
func (p *Polygon) SignedArea() float64 { return p.area }

// Orientation reports the winding of the ring.
func (p *Polygon) Orientation() Orientation { return OrientationOf(p.area) }

// BoundingBox returns the axis-aligned bounds of the vertices.
func (p *Polygon) BoundingBox() r2.Box { return p.box }

// IsPointOnBoundary reports whether pt lies on any edge within Epsilon.
func (p *Polygon) IsPointOnBoundary(pt r2.Vec) bool {
	n := len(p.points)
	for i := 0; i < n; i++ {
		if distanceToSegment(pt, p.points[i], p.points[(i+1)%n]) <= Epsilon {
			return true
		}
	}
	return false
}

// IsPointIn reports whether pt lies inside the polygon or on its boundary.
func (p *Polygon) IsPointIn(pt r2.Vec) bool {
	if !boxContains(p.box, pt) {
		return false
	}
	if p.IsPointOnBoundary(pt) {
		return true
	}
	inside := false
	n := len(p.points)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := p.points[i], p.points[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := a.X + (pt.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if pt.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// HasOverlap reports whether the two polygons share any point, including
// touching edges.
func (p *Polygon) HasOverlap(other *Polygon) bool {
	if !boxesIntersect(p.box, other.box) {
		return false
	}
	// Either ring fully inside the other.
	if p.IsPointIn(other.points[0]) || other.IsPointIn(p.points[0]) {
		return true
	}
	n, m := len(p.points), len(other.points)
	for i := 0; i < n; i++ {
		a, b := p.points[i], p.points[(i+1)%n]
		for j := 0; j < m; j++ {
			if segmentsIntersect(a, b, other.points[j], other.points[(j+1)%m]) {
				return true
			}
		}
	}
	return false
}

// SignedArea computes the shoelace area of a ring; positive means
// counter-clockwise.
func SignedArea(points []r2.Vec) float64 {
	var sum float64
	n := len(points)
	for i := 0; i < n; i++ {
		sum += r2.Cross(points[i], points[(i+1)%n])
	}
	return sum / 2
}

// OrientationOf maps a signed area to an Orientation.
func OrientationOf(area float64) Orientation {
	switch {
	case area > Epsilon:
		return CounterClockwise
	case area < -Epsilon:
		return Clockwise
	default:
		return Collinear
	}
}

// Reversed returns a copy of points in reverse order.
func Reversed(points []r2.Vec) []r2.Vec {
	out := make([]r2.Vec, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}

func boxContains(b r2.Box, pt r2.Vec) bool {
	return pt.X >= b.Min.X-Epsilon && pt.X <= b.Max.X+Epsilon &&
		pt.Y >= b.Min.Y-Epsilon && pt.Y <= b.Max.Y+Epsilon
}

// BoxesIntersect reports whether two closed boxes share any point.
func BoxesIntersect(a, b r2.Box) bool { return boxesIntersect(a, b) }

func boxesIntersect(a, b r2.Box) bool {
	return a.Min.X <= b.Max.X+Epsilon && b.Min.X <= a.Max.X+Epsilon &&
		a.Min.Y <= b.Max.Y+Epsilon && b.Min.Y <= a.Max.Y+Epsilon
}

func distanceToSegment(pt, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	l2 := r2.Dot(ab, ab)
	if l2 <= Epsilon*Epsilon {
		return r2.Norm(r2.Sub(pt, a))
	}
	u := r2.Dot(r2.Sub(pt, a), ab) / l2
	u = math.Max(0, math.Min(1, u))
	return r2.Norm(r2.Sub(pt, r2.Add(a, r2.Scale(u, ab))))
}

// cross of (b-a) x (c-a).
func cross3(a, b, c r2.Vec) float64 {
	return r2.Cross(r2.Sub(b, a), r2.Sub(c, a))
}

func onSegment(a, b, pt r2.Vec) bool {
	return pt.X >= math.Min(a.X, b.X)-Epsilon && pt.X <= math.Max(a.X, b.X)+Epsilon &&
		pt.Y >= math.Min(a.Y, b.Y)-Epsilon && pt.Y <= math.Max(a.Y, b.Y)+Epsilon
}

func sign(v float64) int {
	switch {
	case v > Epsilon:
		return 1
	case v < -Epsilon:
		return -1
	default:
		return 0
	}
}

func segmentsIntersect(a, b, c, d r2.Vec) bool {
	d1 := sign(cross3(a, b, c))
	d2 := sign(cross3(a, b, d))
	d3 := sign(cross3(c, d, a))
	d4 := sign(cross3(c, d, b))
	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}
	return (d1 == 0 && onSegment(a, b, c)) ||
		(d2 == 0 && onSegment(a, b, d)) ||
		(d3 == 0 && onSegment(c, d, a)) ||
		(d4 == 0 && onSegment(c, d, b))
}
