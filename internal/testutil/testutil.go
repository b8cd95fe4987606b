// Package testutil provides shared test fixtures and helpers for the
// planning packages.
package testutil

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/banshee-data/stgraph/internal/monitoring"
	"github.com/banshee-data/stgraph/internal/obstacle"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// MovingObstacle returns an obstacle of the given length whose rear starts at
// s0 and moves at a constant speed (m/s), sampled every dt seconds up to
// horizon.
func MovingObstacle(id string, s0, length, speed, horizon, dt float64) *obstacle.PathObstacle {
	n := int(math.Ceil(horizon/dt-1e-9)) + 1
	samples := make([]obstacle.TrajectoryPoint, 0, n)
	for i := 0; i < n; i++ {
		t := math.Min(float64(i)*dt, horizon)
		back := s0 + speed*t
		samples = append(samples, obstacle.TrajectoryPoint{T: t, SBack: back, SFront: back + length})
	}
	return obstacle.New(id, samples...)
}

// LogCapture collects monitoring output for assertions. It is safe for
// concurrent use.
type LogCapture struct {
	mu    sync.Mutex
	lines []string
}

// Lines returns a copy of the captured lines.
func (c *LogCapture) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func (c *LogCapture) logf(format string, v ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, fmt.Sprintf(format, v...))
}

// CaptureLogs redirects monitoring.Logf into a LogCapture until the test
// ends. Tests using it must not run in parallel with other tests that
// replace the logger.
func CaptureLogs(t *testing.T) *LogCapture {
	t.Helper()
	original := monitoring.Logf
	c := &LogCapture{}
	monitoring.SetLogger(c.logf)
	t.Cleanup(func() { monitoring.SetLogger(original) })
	return c
}
