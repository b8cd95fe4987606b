package stgraph

import (
	"fmt"
	"math"
)

// timeEpsilon is the span under which an edge is treated as vertical.
const timeEpsilon = 1e-9

// SRange is a station interval [Lower, Upper]. For unblocked ranges the end
// touching the obstacle is exclusive: [0, s_lower) behind it and
// (s_upper, ceiling] ahead of it.
type SRange struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// IsEmpty reports whether the range admits no station.
func (r SRange) IsEmpty() bool { return !(r.Upper > r.Lower) }

// Length returns Upper-Lower, or 0 for an empty range.
func (r SRange) Length() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.Upper - r.Lower
}

// TimeScope returns the earliest and latest vertex times. Outside this window
// the obstacle does not exist in the S-T plane.
func (b *Boundary) TimeScope() (tMin, tMax float64) {
	return b.tMin, b.tMax
}

// InTimeScope reports whether t lies inside TimeScope.
func (b *Boundary) InTimeScope(t float64) bool {
	return t >= b.tMin && t <= b.tMax
}

// BoundarySRange returns the stations where the vertical line at time t
// crosses the lower and upper edges of the boundary. It reports false, with a
// zero range, when t is outside the time scope.
//
// In a counter-clockwise ring the lower chain is traversed with time
// increasing and the upper chain with time decreasing, so the direction of an
// edge identifies its chain. Vertical edges occur only at the first and last
// instant and contribute both endpoints.
func (b *Boundary) BoundarySRange(t float64) (SRange, bool) {
	if math.IsNaN(t) || !b.InTimeScope(t) {
		return SRange{}, false
	}

	lower, upper := math.Inf(1), math.Inf(-1)
	pts := b.polygon.Points()
	n := len(pts)
	for i := 0; i < n; i++ {
		p, q := pts[i], pts[(i+1)%n]
		if t < math.Min(p.X, q.X) || t > math.Max(p.X, q.X) {
			continue
		}
		dt := q.X - p.X
		if math.Abs(dt) <= timeEpsilon {
			lower = math.Min(lower, math.Min(p.Y, q.Y))
			upper = math.Max(upper, math.Max(p.Y, q.Y))
			continue
		}
		s := p.Y + (t-p.X)*(q.Y-p.Y)/dt
		if dt > 0 {
			lower = math.Min(lower, s)
		} else {
			upper = math.Max(upper, s)
		}
	}

	// Collinear rings may only populate one chain.
	if math.IsInf(lower, 1) {
		lower = upper
	}
	if math.IsInf(upper, -1) {
		upper = lower
	}
	if lower > upper {
		lower, upper = upper, lower
	}
	return SRange{Lower: lower, Upper: upper}, true
}

// UnblockSRange returns the stations the ego vehicle may occupy at time t
// given the boundary type:
//
//   - stop, follow, yield: behind the obstacle, [0, s_lower)
//   - overtake: ahead of it, (s_upper, station ceiling]
//   - unknown: nothing; an unclassified obstacle blocks the whole axis
//
// The lower end behind the obstacle is not clamped, so a boundary reaching
// below station 0 yields an empty range. It reports false outside the time
// scope.
func (b *Boundary) UnblockSRange(t float64) (SRange, bool) {
	occupied, ok := b.BoundarySRange(t)
	if !ok {
		return SRange{}, false
	}
	switch b.boundaryType {
	case BoundaryTypeStop, BoundaryTypeFollow, BoundaryTypeYield:
		return SRange{Lower: 0, Upper: occupied.Lower}, true
	case BoundaryTypeOvertake:
		return SRange{Lower: occupied.Upper, Upper: b.stationCeiling}, true
	case BoundaryTypeUnknown:
		return SRange{}, true
	default:
		panic(fmt.Sprintf("stgraph: unblock range undefined for boundary type %s", b.boundaryType))
	}
}
