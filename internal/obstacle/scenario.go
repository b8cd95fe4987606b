package obstacle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// maxScenarioSize caps scenario files at 1MB.
const maxScenarioSize = 1 * 1024 * 1024

// Scenario is a fixed set of obstacles, typically loaded from a JSON file for
// offline runs of the boundary builder.
type Scenario struct {
	Name      string          `json:"name,omitempty"`
	Obstacles []*PathObstacle `json:"obstacles"`
}

// LoadScenario reads and validates a scenario file. The file must have a
// .json extension.
func LoadScenario(path string) (*Scenario, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("scenario file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat scenario file: %w", err)
	}
	if fileInfo.Size() > maxScenarioSize {
		return nil, fmt.Errorf("scenario file too large: %d bytes (max %d)", fileInfo.Size(), maxScenarioSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var sc Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario JSON: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

// Validate checks every obstacle and rejects duplicate ids.
func (s *Scenario) Validate() error {
	seen := make(map[string]int, len(s.Obstacles))
	for i, o := range s.Obstacles {
		if o == nil {
			return fmt.Errorf("obstacle %d is null", i)
		}
		if err := o.Validate(); err != nil {
			return fmt.Errorf("obstacle %d: %w", i, err)
		}
		if prev, dup := seen[o.ObstacleID]; dup {
			return fmt.Errorf("obstacle %d: duplicate id %q (first at %d)", i, o.ObstacleID, prev)
		}
		seen[o.ObstacleID] = i
	}
	return nil
}

// Snapshot returns the scenario's obstacles. It lets a Scenario act as the
// obstacle source of a planning loop that replays the same frame each cycle.
func (s *Scenario) Snapshot(ctx context.Context) ([]*PathObstacle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Obstacles, nil
}
