package obstacle

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/stgraph/internal/stgraph"
)

var (
	ErrMissingID         = errors.New("obstacle id is required")
	ErrTooFewSamples     = errors.New("trajectory needs at least 2 samples")
	ErrNonMonotonicTime  = errors.New("trajectory sample times must strictly increase")
	ErrInvertedExtent    = errors.New("s_back must not exceed s_front")
	ErrInvalidConfidence = errors.New("confidence must be within [0, 1]")
	ErrInvalidSample     = errors.New("trajectory sample has a non-finite value")
	ErrAmbiguousShape    = errors.New("set either trajectory or polygon, not both")
	ErrTooFewVertices    = errors.New("polygon needs at least 3 vertices")
	ErrClockwisePolygon  = errors.New("polygon vertices must be counter-clockwise")
)

// TrajectoryPoint is the predicted occupancy of the reference path at one
// instant: the obstacle covers stations [SBack, SFront] at time T.
type TrajectoryPoint struct {
	T      float64 `json:"t"`
	SBack  float64 `json:"s_back"`
	SFront float64 `json:"s_front"`
}

// PathObstacle is one obstacle projected onto the ego reference path. Its S-T
// footprint comes either from Trajectory samples or, for producers that
// already work in the S-T plane, from an explicit Polygon ring.
type PathObstacle struct {
	ObstacleID string                `json:"id"`
	Confidence float64               `json:"confidence"`
	Decision   *stgraph.BoundaryType `json:"decision,omitempty"`
	Trajectory []TrajectoryPoint     `json:"trajectory,omitempty"`
	Polygon    []stgraph.STPoint     `json:"polygon,omitempty"`
}

// ID implements stgraph.Obstacle.
func (o *PathObstacle) ID() string { return o.ObstacleID }

// PlanningDecision returns the pre-computed decision, if one was supplied.
func (o *PathObstacle) PlanningDecision() (stgraph.BoundaryType, bool) {
	if o.Decision == nil {
		return stgraph.BoundaryTypeUnknown, false
	}
	return *o.Decision, true
}

// WithDecision sets the decision and returns o for chaining.
func (o *PathObstacle) WithDecision(bt stgraph.BoundaryType) *PathObstacle {
	o.Decision = &bt
	return o
}

// New builds a fully confident obstacle from trajectory samples.
func New(id string, samples ...TrajectoryPoint) *PathObstacle {
	return &PathObstacle{ObstacleID: id, Confidence: 1, Trajectory: samples}
}

// NewStatic builds an obstacle that holds stations [sStart, sEnd] from t=0 to
// the horizon: a stopped vehicle, a closed lane or a stop line.
func NewStatic(id string, sStart, sEnd, horizon float64) *PathObstacle {
	return New(id,
		TrajectoryPoint{T: 0, SBack: sStart, SFront: sEnd},
		TrajectoryPoint{T: horizon, SBack: sStart, SFront: sEnd},
	)
}

// Validate checks the record is usable for boundary construction.
func (o *PathObstacle) Validate() error {
	if o.ObstacleID == "" {
		return ErrMissingID
	}
	if math.IsNaN(o.Confidence) || o.Confidence < 0 || o.Confidence > 1 {
		return fmt.Errorf("obstacle %q: %w, got %v", o.ObstacleID, ErrInvalidConfidence, o.Confidence)
	}
	if o.Decision != nil && !o.Decision.IsValid() {
		return fmt.Errorf("obstacle %q: %w: %d", o.ObstacleID, stgraph.ErrUnknownBoundaryType, int(*o.Decision))
	}
	if len(o.Polygon) > 0 {
		return o.validatePolygon()
	}
	if len(o.Trajectory) < 2 {
		return fmt.Errorf("obstacle %q: %w, got %d", o.ObstacleID, ErrTooFewSamples, len(o.Trajectory))
	}
	for i, p := range o.Trajectory {
		if !finite(p.T) || !finite(p.SBack) || !finite(p.SFront) {
			return fmt.Errorf("obstacle %q sample %d: %w", o.ObstacleID, i, ErrInvalidSample)
		}
		if p.SBack > p.SFront {
			return fmt.Errorf("obstacle %q sample %d: %w (%.3f > %.3f)", o.ObstacleID, i, ErrInvertedExtent, p.SBack, p.SFront)
		}
		if i > 0 && p.T <= o.Trajectory[i-1].T {
			return fmt.Errorf("obstacle %q sample %d: %w", o.ObstacleID, i, ErrNonMonotonicTime)
		}
	}
	return nil
}

func (o *PathObstacle) validatePolygon() error {
	if len(o.Trajectory) > 0 {
		return fmt.Errorf("obstacle %q: %w", o.ObstacleID, ErrAmbiguousShape)
	}
	if len(o.Polygon) < 3 {
		return fmt.Errorf("obstacle %q: %w, got %d", o.ObstacleID, ErrTooFewVertices, len(o.Polygon))
	}
	for i, p := range o.Polygon {
		if !finite(p.T) || !finite(p.S) {
			return fmt.Errorf("obstacle %q vertex %d: %w", o.ObstacleID, i, ErrInvalidSample)
		}
	}
	return nil
}

// STVertices returns the S-T ring for the obstacle. An explicit Polygon is
// returned as given, in the caller's vertex order. Otherwise the ring is
// built counter-clockwise from the trajectory: the rear edge forward in
// time, then the front edge backward in time. The record must pass Validate.
func (o *PathObstacle) STVertices() []stgraph.STPoint {
	if len(o.Polygon) > 0 {
		out := make([]stgraph.STPoint, len(o.Polygon))
		copy(out, o.Polygon)
		return out
	}
	n := len(o.Trajectory)
	out := make([]stgraph.STPoint, 0, 2*n)
	for _, p := range o.Trajectory {
		out = append(out, stgraph.STPoint{T: p.T, S: p.SBack})
	}
	for i := n - 1; i >= 0; i-- {
		p := o.Trajectory[i]
		out = append(out, stgraph.STPoint{T: p.T, S: p.SFront})
	}
	return out
}

// Clip returns a copy of o whose trajectory ends at horizon, interpolating a
// final sample when the horizon falls between two samples. It returns nil
// when the trajectory starts after the horizon or fewer than two samples
// remain. Explicit polygons are not cut; o is returned unchanged unless the
// whole polygon lies after the horizon.
func (o *PathObstacle) Clip(horizon float64) *PathObstacle {
	if len(o.Polygon) > 0 {
		for _, p := range o.Polygon {
			if p.T <= horizon {
				return o
			}
		}
		return nil
	}
	clipped := *o
	clipped.Trajectory = nil
	for i, p := range o.Trajectory {
		if p.T <= horizon {
			clipped.Trajectory = append(clipped.Trajectory, p)
			continue
		}
		if i > 0 {
			prev := o.Trajectory[i-1]
			if prev.T < horizon {
				f := (horizon - prev.T) / (p.T - prev.T)
				clipped.Trajectory = append(clipped.Trajectory, TrajectoryPoint{
					T:      horizon,
					SBack:  prev.SBack + f*(p.SBack-prev.SBack),
					SFront: prev.SFront + f*(p.SFront-prev.SFront),
				})
			}
		}
		break
	}
	if len(clipped.Trajectory) < 2 {
		return nil
	}
	return &clipped
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
