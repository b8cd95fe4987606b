package planning

import (
	"math"
	"sort"
	"time"

	"github.com/banshee-data/stgraph/internal/stgraph"
)

// Cycle is the read-only result of one boundary construction pass. All of its
// boundaries are sealed, so a Cycle may be shared across goroutines.
type Cycle struct {
	ID            string
	StartedAt     time.Time
	BuildDuration time.Duration
	ObstacleCount int
	Skipped       []string // obstacle ids dropped by confidence or horizon

	boundaries []*stgraph.Boundary
	index      *stgraph.BoundaryIndex
}

// NewCycle wraps already built boundaries, for example ones replayed from a
// recording. Every boundary must be sealed.
func NewCycle(id string, startedAt time.Time, boundaries []*stgraph.Boundary) *Cycle {
	for _, b := range boundaries {
		if !b.IsSealed() {
			panic("planning: cycle boundary " + b.ID() + " is not sealed")
		}
	}
	bs := make([]*stgraph.Boundary, len(boundaries))
	copy(bs, boundaries)
	return &Cycle{
		ID:            id,
		StartedAt:     startedAt,
		ObstacleCount: len(bs),
		boundaries:    bs,
		index:         stgraph.NewBoundaryIndex(bs...),
	}
}

// Boundaries returns the cycle's boundaries in obstacle input order.
func (c *Cycle) Boundaries() []*stgraph.Boundary {
	out := make([]*stgraph.Boundary, len(c.boundaries))
	copy(out, c.boundaries)
	return out
}

// Index returns the spatial index over the cycle's boundaries.
func (c *Cycle) Index() *stgraph.BoundaryIndex { return c.index }

// Boundary returns the boundary with the given id.
func (c *Cycle) Boundary(id string) (*stgraph.Boundary, bool) {
	for _, b := range c.boundaries {
		if b.ID() == id {
			return b, true
		}
	}
	return nil, false
}

// Overlap names two boundaries whose S-T regions intersect.
type Overlap struct {
	A, B string
}

// Overlaps returns every pair of overlapping boundaries, each pair once, with
// A preceding B in input order. Candidates come from the index by time scope.
func (c *Cycle) Overlaps() []Overlap {
	pos := make(map[*stgraph.Boundary]int, len(c.boundaries))
	for i, b := range c.boundaries {
		pos[b] = i
	}
	var out []Overlap
	for i, b := range c.boundaries {
		tMin, tMax := b.TimeScope()
		var later []int
		for _, cand := range c.index.InWindow(tMin, tMax) {
			if j, ok := pos[cand]; ok && j > i {
				later = append(later, j)
			}
		}
		sort.Ints(later)
		for _, j := range later {
			if b.HasOverlap(c.boundaries[j]) {
				out = append(out, Overlap{A: b.ID(), B: c.boundaries[j].ID()})
			}
		}
	}
	return out
}

// BoundaryQuery is one boundary's answer at a query time.
type BoundaryQuery struct {
	BoundaryID string               `json:"boundary_id"`
	Type       stgraph.BoundaryType `json:"type"`
	Active     bool                 `json:"active"`
	Occupied   stgraph.SRange       `json:"occupied"`
	Unblocked  stgraph.SRange       `json:"unblocked"`
}

// Query evaluates every boundary at time t. Boundaries outside their time
// scope are reported with Active false and zero ranges.
func (c *Cycle) Query(t float64) []BoundaryQuery {
	out := make([]BoundaryQuery, len(c.boundaries))
	for i, b := range c.boundaries {
		q := BoundaryQuery{BoundaryID: b.ID(), Type: b.Type()}
		if occ, ok := b.BoundarySRange(t); ok {
			q.Active = true
			q.Occupied = occ
			q.Unblocked, _ = b.UnblockSRange(t)
		}
		out[i] = q
	}
	return out
}

// Sample is the set of boundary answers at one time.
type Sample struct {
	T       float64         `json:"t"`
	Queries []BoundaryQuery `json:"queries"`
}

// Sample queries the cycle at t = 0, step, 2*step, ... up to and including
// horizon. A non-positive step or negative horizon yields nil.
func (c *Cycle) Sample(step, horizon float64) []Sample {
	if !(step > 0) || horizon < 0 || math.IsInf(horizon, 1) {
		return nil
	}
	n := int(math.Floor(horizon/step+1e-9)) + 1
	out := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		t := float64(i) * step
		out = append(out, Sample{T: t, Queries: c.Query(t)})
	}
	return out
}

// BoundaryRecord is the persisted form of one boundary.
type BoundaryRecord struct {
	BoundaryID           string
	ObstacleID           string
	Type                 stgraph.BoundaryType
	CharacteristicLength float64
	StationCeiling       float64
	TMin, TMax           float64
	Vertices             []stgraph.STPoint
}

// CycleRecord is the persisted form of a Cycle.
type CycleRecord struct {
	CycleID       string
	StartedAt     time.Time
	BuildDuration time.Duration
	ObstacleCount int
	Skipped       []string
	Boundaries    []BoundaryRecord
}

// Record converts the cycle into its persisted form.
func (c *Cycle) Record() *CycleRecord {
	rec := &CycleRecord{
		CycleID:       c.ID,
		StartedAt:     c.StartedAt,
		BuildDuration: c.BuildDuration,
		ObstacleCount: c.ObstacleCount,
		Skipped:       append([]string(nil), c.Skipped...),
		Boundaries:    make([]BoundaryRecord, len(c.boundaries)),
	}
	for i, b := range c.boundaries {
		tMin, tMax := b.TimeScope()
		br := BoundaryRecord{
			BoundaryID:           b.ID(),
			Type:                 b.Type(),
			CharacteristicLength: b.CharacteristicLength(),
			StationCeiling:       b.StationCeiling(),
			TMin:                 tMin,
			TMax:                 tMax,
			Vertices:             b.STPoints(),
		}
		if obs := b.Obstacle(); obs != nil {
			br.ObstacleID = obs.ID()
		}
		rec.Boundaries[i] = br
	}
	return rec
}
