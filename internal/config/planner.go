package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// DefaultConfigPath is the path to the canonical planner defaults file.
const DefaultConfigPath = "config/planner.defaults.json"

// PlannerConfig holds the tuning for S-T boundary construction and the
// planning loop. Every field is optional; Get* accessors fall back to the
// built-in defaults for fields the JSON omits.
type PlannerConfig struct {
	// Boundary params
	StationCeiling       *float64 `json:"station_ceiling,omitempty"`
	CharacteristicLength *float64 `json:"characteristic_length,omitempty"`
	ReverseClockwise     *bool    `json:"reverse_clockwise,omitempty"`
	MinConfidence        *float64 `json:"min_confidence,omitempty"`

	// Cycle params
	BuildWorkers    *int     `json:"build_workers,omitempty"`
	CyclePeriod     *string  `json:"cycle_period,omitempty"` // duration string like "100ms"
	PlanningHorizon *float64 `json:"planning_horizon,omitempty"`
	QueryTimeStep   *float64 `json:"query_time_step,omitempty"`
}

// EmptyPlannerConfig returns a PlannerConfig with every field nil, so all
// accessors return defaults.
func EmptyPlannerConfig() *PlannerConfig {
	return &PlannerConfig{}
}

// LoadPlannerConfig loads a PlannerConfig from a JSON file. The file must
// have a .json extension and be under 1MB. Omitted fields keep their
// defaults, so partial configs are safe.
func LoadPlannerConfig(path string) (*PlannerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPlannerConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching from the current
// directory up towards the repository root. Panics if the file cannot be
// loaded; intended for test setup.
func MustLoadDefaultConfig() *PlannerConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/<tool>/ subpackages
	}
	for _, path := range candidates {
		if cfg, err := LoadPlannerConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

func positive(name string, v *float64) error {
	if v != nil && (!(*v > 0) || math.IsInf(*v, 1)) {
		return fmt.Errorf("%s must be positive and finite, got %v", name, *v)
	}
	return nil
}

// Validate checks that any set values are usable.
func (c *PlannerConfig) Validate() error {
	if err := positive("station_ceiling", c.StationCeiling); err != nil {
		return err
	}
	if err := positive("characteristic_length", c.CharacteristicLength); err != nil {
		return err
	}
	if err := positive("planning_horizon", c.PlanningHorizon); err != nil {
		return err
	}
	if err := positive("query_time_step", c.QueryTimeStep); err != nil {
		return err
	}

	if c.MinConfidence != nil {
		if *c.MinConfidence < 0 || *c.MinConfidence > 1 {
			return fmt.Errorf("min_confidence must be between 0 and 1, got %f", *c.MinConfidence)
		}
	}

	if c.BuildWorkers != nil && *c.BuildWorkers < 0 {
		return fmt.Errorf("build_workers must be non-negative, got %d", *c.BuildWorkers)
	}

	if c.CyclePeriod != nil && *c.CyclePeriod != "" {
		d, err := time.ParseDuration(*c.CyclePeriod)
		if err != nil {
			return fmt.Errorf("invalid cycle_period '%s': %w", *c.CyclePeriod, err)
		}
		if d <= 0 {
			return fmt.Errorf("cycle_period must be positive, got %s", d)
		}
	}

	return nil
}

// GetStationCeiling returns the station_ceiling value or the default.
func (c *PlannerConfig) GetStationCeiling() float64 {
	if c.StationCeiling == nil {
		return 200.0
	}
	return *c.StationCeiling
}

// GetCharacteristicLength returns the characteristic_length value or the default.
func (c *PlannerConfig) GetCharacteristicLength() float64 {
	if c.CharacteristicLength == nil {
		return 1.0
	}
	return *c.CharacteristicLength
}

// GetReverseClockwise returns the reverse_clockwise value or the default.
// When false, clockwise vertex rings are a programming error and panic.
func (c *PlannerConfig) GetReverseClockwise() bool {
	if c.ReverseClockwise == nil {
		return false
	}
	return *c.ReverseClockwise
}

// GetMinConfidence returns the min_confidence value or the default.
func (c *PlannerConfig) GetMinConfidence() float64 {
	if c.MinConfidence == nil {
		return 0.0
	}
	return *c.MinConfidence
}

// GetBuildWorkers returns the worker count for boundary construction.
// Zero or unset means one worker per CPU.
func (c *PlannerConfig) GetBuildWorkers() int {
	if c.BuildWorkers == nil || *c.BuildWorkers == 0 {
		return runtime.NumCPU()
	}
	return *c.BuildWorkers
}

// GetCyclePeriod parses and returns the CyclePeriod as a time.Duration.
func (c *PlannerConfig) GetCyclePeriod() time.Duration {
	if c.CyclePeriod == nil || *c.CyclePeriod == "" {
		return 100 * time.Millisecond // default
	}
	d, err := time.ParseDuration(*c.CyclePeriod)
	if err != nil || d <= 0 {
		return 100 * time.Millisecond // default on parse error
	}
	return d
}

// GetPlanningHorizon returns the planning_horizon value (seconds) or the default.
func (c *PlannerConfig) GetPlanningHorizon() float64 {
	if c.PlanningHorizon == nil {
		return 8.0
	}
	return *c.PlanningHorizon
}

// GetQueryTimeStep returns the query_time_step value (seconds) or the default.
func (c *PlannerConfig) GetQueryTimeStep() float64 {
	if c.QueryTimeStep == nil {
		return 0.5
	}
	return *c.QueryTimeStep
}
