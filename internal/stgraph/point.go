package stgraph

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// STPoint is a single station-time coordinate. T is seconds from the start of
// the planning cycle; S is metres along the reference path and may be
// negative for positions behind the planning origin.
type STPoint struct {
	T float64 `json:"t"`
	S float64 `json:"s"`
}

// Vec projects the point onto the plane used by the polygon primitive.
func (p STPoint) Vec() r2.Vec { return r2.Vec{X: p.T, Y: p.S} }

func (p STPoint) String() string { return fmt.Sprintf("(t=%.3f, s=%.3f)", p.T, p.S) }

// STPointFromVec is the inverse of STPoint.Vec.
func STPointFromVec(v r2.Vec) STPoint { return STPoint{T: v.X, S: v.Y} }

// GraphIndex locates a point on the speed-search lattice.
type GraphIndex struct {
	T uint32 // time column
	S uint32 // station row
}

// GraphCost carries the search costs attached to a lattice point.
type GraphCost struct {
	Reference float64
	Obstacle  float64
	Total     float64
}

// GraphPoint is a lattice point of the speed search. Only Point takes part in
// geometric tests; the rest is search bookkeeping.
type GraphPoint struct {
	Index       GraphIndex
	Point       STPoint
	Cost        GraphCost
	Predecessor *GraphPoint
}
