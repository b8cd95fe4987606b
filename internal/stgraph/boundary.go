package stgraph

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/stgraph/internal/geometry"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// DefaultCharacteristicLength is the effective size given to a boundary
	// until the caller sets one.
	DefaultCharacteristicLength = 1.0
	// DefaultStationCeiling is the open end of the drivable station range.
	DefaultStationCeiling = 200.0
)

var (
	ErrInvalidCharacteristicLength = errors.New("characteristic length must be positive")
	ErrInvalidStationCeiling       = errors.New("station ceiling must be positive")
)

// Obstacle is the source record a boundary was projected from. The boundary
// holds it by reference only; the record must stay valid for the planning
// cycle that owns the boundary.
type Obstacle interface {
	ID() string
}

// Boundary is one obstacle's footprint in the S-T plane for the current cycle.
type Boundary struct {
	polygon  *geometry.Polygon
	obstacle Obstacle

	boundaryType         BoundaryType
	id                   string
	characteristicLength float64
	stationCeiling       float64

	tMin, tMax float64
	sealed     bool
}

// NewBoundary builds a boundary from station-time vertices listed
// counter-clockwise (time increasing along the lower edge). obstacle may be
// nil for virtual boundaries such as stop lines.
//
// Malformed geometry panics: fewer than three vertices, a NaN coordinate, or
// a clockwise ring. Collinear rings are accepted as degenerate boundaries.
func NewBoundary(obstacle Obstacle, points []STPoint) *Boundary {
	vecs := make([]r2.Vec, len(points))
	for i, p := range points {
		vecs[i] = p.Vec()
	}
	return newBoundary(obstacle, vecs)
}

// NewBoundaryFromPoints is NewBoundary for vertices already in (t, s) form.
func NewBoundaryFromPoints(obstacle Obstacle, points []r2.Vec) *Boundary {
	return newBoundary(obstacle, points)
}

func newBoundary(obstacle Obstacle, points []r2.Vec) *Boundary {
	polygon := geometry.NewPolygon(points)
	if polygon.Orientation() == geometry.Clockwise {
		panic(fmt.Sprintf("stgraph: boundary vertices must be counter-clockwise (signed area %.6f)", polygon.SignedArea()))
	}
	box := polygon.BoundingBox()
	return &Boundary{
		polygon:              polygon,
		obstacle:             obstacle,
		boundaryType:         BoundaryTypeUnknown,
		characteristicLength: DefaultCharacteristicLength,
		stationCeiling:       DefaultStationCeiling,
		tMin:                 box.Min.X,
		tMax:                 box.Max.X,
	}
}

// Seal freezes the boundary. Setters panic afterwards, so the type cannot
// change once the speed search has started reading it.
func (b *Boundary) Seal() { b.sealed = true }

// IsSealed reports whether Seal has been called.
func (b *Boundary) IsSealed() bool { return b.sealed }

func (b *Boundary) mustBeMutable(op string) {
	if b.sealed {
		panic(fmt.Sprintf("stgraph: %s on sealed boundary %q", op, b.id))
	}
}

// Obstacle returns the source record, or nil.
func (b *Boundary) Obstacle() Obstacle { return b.obstacle }

func (b *Boundary) ID() string { return b.id }

func (b *Boundary) SetID(id string) {
	b.mustBeMutable("SetID")
	b.id = id
}

func (b *Boundary) Type() BoundaryType { return b.boundaryType }

// SetType sets the planning decision. An undefined value panics.
func (b *Boundary) SetType(bt BoundaryType) {
	b.mustBeMutable("SetType")
	if !bt.IsValid() {
		panic(fmt.Sprintf("stgraph: invalid boundary type %d", int(bt)))
	}
	b.boundaryType = bt
}

func (b *Boundary) CharacteristicLength() float64 { return b.characteristicLength }

// SetCharacteristicLength rejects zero, negative and NaN lengths and keeps the
// previous value in that case.
func (b *Boundary) SetCharacteristicLength(length float64) error {
	b.mustBeMutable("SetCharacteristicLength")
	if !(length > 0) || math.IsInf(length, 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidCharacteristicLength, length)
	}
	b.characteristicLength = length
	return nil
}

func (b *Boundary) StationCeiling() float64 { return b.stationCeiling }

// SetStationCeiling rejects zero, negative and NaN ceilings.
func (b *Boundary) SetStationCeiling(ceiling float64) error {
	b.mustBeMutable("SetStationCeiling")
	if !(ceiling > 0) || math.IsInf(ceiling, 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidStationCeiling, ceiling)
	}
	b.stationCeiling = ceiling
	return nil
}

// NumPoints returns the vertex count.
func (b *Boundary) NumPoints() int { return b.polygon.NumPoints() }

// Point returns vertex i. It panics when i is out of range.
func (b *Boundary) Point(i int) r2.Vec {
	pts := b.polygon.Points()
	if i < 0 || i >= len(pts) {
		panic(fmt.Sprintf("stgraph: vertex index %d out of range [0,%d)", i, len(pts)))
	}
	return pts[i]
}

// Points returns a copy of the vertices in construction order.
func (b *Boundary) Points() []r2.Vec {
	out := make([]r2.Vec, b.polygon.NumPoints())
	copy(out, b.polygon.Points())
	return out
}

// STPoints returns the vertices as station-time points.
func (b *Boundary) STPoints() []STPoint {
	pts := b.polygon.Points()
	out := make([]STPoint, len(pts))
	for i, p := range pts {
		out[i] = STPointFromVec(p)
	}
	return out
}

// BoundingBox returns the S-T bounds (X time, Y station).
func (b *Boundary) BoundingBox() r2.Box { return b.polygon.BoundingBox() }

// ContainsPoint reports whether p lies inside the boundary or on its edge.
func (b *Boundary) ContainsPoint(p STPoint) bool {
	return b.polygon.IsPointIn(p.Vec())
}

// ContainsGraphPoint is ContainsPoint for a search lattice point.
func (b *Boundary) ContainsGraphPoint(p GraphPoint) bool {
	return b.ContainsPoint(p.Point)
}

// HasOverlap reports whether two boundaries share any S-T point.
func (b *Boundary) HasOverlap(other *Boundary) bool {
	return b.polygon.HasOverlap(other.polygon)
}

func (b *Boundary) String() string {
	return fmt.Sprintf("boundary{id=%q type=%s t=[%.2f,%.2f] n=%d}",
		b.id, b.boundaryType, b.tMin, b.tMax, b.polygon.NumPoints())
}
