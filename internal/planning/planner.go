package planning

import (
	"context"
	"errors"
	"fmt"

	"github.com/banshee-data/stgraph/internal/config"
	"github.com/banshee-data/stgraph/internal/geometry"
	"github.com/banshee-data/stgraph/internal/monitoring"
	"github.com/banshee-data/stgraph/internal/obstacle"
	"github.com/banshee-data/stgraph/internal/stgraph"
	"github.com/banshee-data/stgraph/internal/timeutil"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrInvalidObstacle wraps validation failures of an input obstacle record.
var ErrInvalidObstacle = errors.New("invalid obstacle")

// Recorder persists built cycles for replay and debugging.
type Recorder interface {
	RecordCycle(ctx context.Context, rec *CycleRecord) error
}

// Source supplies the obstacle records for each planning cycle.
type Source interface {
	Snapshot(ctx context.Context) ([]*obstacle.PathObstacle, error)
}

// Planner builds S-T boundaries for planning cycles.
type Planner struct {
	cfg      *config.PlannerConfig
	clock    timeutil.Clock
	recorder Recorder
}

// Option configures a Planner.
type Option func(*Planner)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c timeutil.Clock) Option {
	return func(p *Planner) { p.clock = c }
}

// WithRecorder records every built cycle.
func WithRecorder(r Recorder) Option {
	return func(p *Planner) { p.recorder = r }
}

// NewPlanner creates a Planner. A nil cfg uses built-in defaults.
func NewPlanner(cfg *config.PlannerConfig, opts ...Option) *Planner {
	if cfg == nil {
		cfg = config.EmptyPlannerConfig()
	}
	p := &Planner{cfg: cfg, clock: timeutil.RealClock{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BuildCycle builds one sealed boundary per obstacle. Obstacles below the
// configured confidence, or entirely beyond the planning horizon, are listed
// in Cycle.Skipped. Any invalid obstacle fails the whole cycle: dropping an
// obstacle the producer meant to report is not safe.
//
// Boundaries are independent, so construction fans out over build_workers
// goroutines. The output keeps input order.
func (p *Planner) BuildCycle(ctx context.Context, obstacles []*obstacle.PathObstacle) (*Cycle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := p.clock.Now()

	minConfidence := p.cfg.GetMinConfidence()
	horizon := p.cfg.GetPlanningHorizon()

	kept := make([]pendingBoundary, 0, len(obstacles))
	var skipped []string
	for i, o := range obstacles {
		if o == nil {
			return nil, fmt.Errorf("%w: obstacle %d is nil", ErrInvalidObstacle, i)
		}
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidObstacle, err)
		}
		if o.Confidence < minConfidence {
			monitoring.Debugf("skip obstacle %s: confidence %.2f < %.2f", o.ID(), o.Confidence, minConfidence)
			skipped = append(skipped, o.ID())
			continue
		}
		clipped := o.Clip(horizon)
		if clipped == nil {
			monitoring.Debugf("skip obstacle %s: beyond %.1fs horizon", o.ID(), horizon)
			skipped = append(skipped, o.ID())
			continue
		}
		vertices, ok := orientRing(clipped.STVertices(), p.cfg.GetReverseClockwise())
		if !ok {
			return nil, fmt.Errorf("%w: obstacle %q: %w", ErrInvalidObstacle, o.ID(), obstacle.ErrClockwisePolygon)
		}
		kept = append(kept, pendingBoundary{source: o, vertices: vertices})
	}

	boundaries := make([]*stgraph.Boundary, len(kept))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.GetBuildWorkers())
	for i, pb := range kept {
		i, pb := i, pb
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := p.buildBoundary(pb)
			if err != nil {
				return err
			}
			boundaries[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cycle := &Cycle{
		ID:            uuid.New().String(),
		StartedAt:     start,
		BuildDuration: p.clock.Since(start),
		ObstacleCount: len(obstacles),
		Skipped:       skipped,
		boundaries:    boundaries,
		index:         stgraph.NewBoundaryIndex(boundaries...),
	}
	monitoring.Logf("cycle %s: %d obstacles, %d boundaries, %d skipped in %s",
		cycle.ID, cycle.ObstacleCount, len(boundaries), len(skipped), cycle.BuildDuration)
	if monitoring.DebugEnabled() {
		for _, ov := range cycle.Overlaps() {
			monitoring.Debugf("cycle %s: boundaries %s and %s overlap", cycle.ID, ov.A, ov.B)
		}
	}

	if p.recorder != nil {
		if err := p.recorder.RecordCycle(ctx, cycle.Record()); err != nil {
			monitoring.Logf("cycle %s: record failed: %v", cycle.ID, err)
		}
	}
	return cycle, nil
}

// pendingBoundary pairs the caller's record with the oriented S-T ring taken
// from its horizon-clipped copy. The boundary refers back to source.
type pendingBoundary struct {
	source   *obstacle.PathObstacle
	vertices []stgraph.STPoint
}

// buildBoundary projects one obstacle. Geometry preconditions are enforced by
// stgraph and panic; only setter rejections come back as errors.
func (p *Planner) buildBoundary(pb pendingBoundary) (*stgraph.Boundary, error) {
	o := pb.source
	b := stgraph.NewBoundary(o, pb.vertices)
	b.SetID(o.ID())
	if bt, ok := o.PlanningDecision(); ok {
		b.SetType(bt)
	}
	if err := b.SetCharacteristicLength(p.cfg.GetCharacteristicLength()); err != nil {
		return nil, fmt.Errorf("boundary %s: %w", o.ID(), err)
	}
	if err := b.SetStationCeiling(p.cfg.GetStationCeiling()); err != nil {
		return nil, fmt.Errorf("boundary %s: %w", o.ID(), err)
	}
	b.Seal()

	tMin, tMax := b.TimeScope()
	monitoring.Debugf("boundary %s type=%s t=[%.2f,%.2f] vertices=%d", b.ID(), b.Type(), tMin, tMax, b.NumPoints())
	return b, nil
}

// orientRing returns a counter-clockwise ring. A clockwise ring is reversed
// when reverse is set and rejected otherwise.
func orientRing(ring []stgraph.STPoint, reverse bool) ([]stgraph.STPoint, bool) {
	vecs := make([]r2.Vec, len(ring))
	for i, pt := range ring {
		vecs[i] = pt.Vec()
	}
	if geometry.OrientationOf(geometry.SignedArea(vecs)) != geometry.Clockwise {
		return ring, true
	}
	if !reverse {
		return nil, false
	}
	out := make([]stgraph.STPoint, len(ring))
	for i, v := range geometry.Reversed(vecs) {
		out[i] = stgraph.STPointFromVec(v)
	}
	return out, true
}

// Run builds a cycle every cycle_period until ctx is done, passing each
// cycle to handle. Source and build failures are logged and the tick is
// skipped; the next tick starts from fresh obstacle data.
func (p *Planner) Run(ctx context.Context, src Source, handle func(*Cycle)) error {
	period := p.cfg.GetCyclePeriod()
	ticker := p.clock.NewTicker(period)
	defer ticker.Stop()

	monitoring.Logf("planning loop started: period=%s workers=%d", period, p.cfg.GetBuildWorkers())
	for {
		select {
		case <-ctx.Done():
			monitoring.Logf("planning loop stopped: %v", ctx.Err())
			return ctx.Err()
		case <-ticker.C():
			obstacles, err := src.Snapshot(ctx)
			if err != nil {
				monitoring.Logf("obstacle snapshot failed: %v", err)
				continue
			}
			cycle, err := p.BuildCycle(ctx, obstacles)
			if err != nil {
				monitoring.Logf("cycle build failed: %v", err)
				continue
			}
			if handle != nil {
				handle(cycle)
			}
		}
	}
}
