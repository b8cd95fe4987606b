package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/stgraph/internal/planning"
	"github.com/banshee-data/stgraph/internal/stgraph"
)

// ErrCycleNotFound is returned when a cycle id has no recorded row.
var ErrCycleNotFound = errors.New("cycle not found")

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
	"PRAGMA foreign_keys=ON",
}

// Store is a SQLite-backed cycle recorder.
type Store struct {
	db *sql.DB
}

var _ planning.Recorder = (*Store)(nil)

// Open opens (or creates) the database at path, applies connection pragmas
// and migrates the schema to the latest version.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// Pragmas are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CycleSummary is one row of the cycle listing.
type CycleSummary struct {
	CycleID       string        `json:"cycle_id"`
	StartedAt     time.Time     `json:"started_at"`
	BuildDuration time.Duration `json:"build_duration"`
	ObstacleCount int           `json:"obstacle_count"`
	BoundaryCount int           `json:"boundary_count"`
	Skipped       []string      `json:"skipped,omitempty"`
}

// RecordCycle stores a cycle and all of its boundaries in one transaction.
func (s *Store) RecordCycle(ctx context.Context, rec *planning.CycleRecord) error {
	if rec == nil || rec.CycleID == "" {
		return errors.New("record cycle: missing cycle id")
	}
	skipped := rec.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	skippedJSON, err := json.Marshal(skipped)
	if err != nil {
		return fmt.Errorf("encode skipped ids: %w", err)
	}

	vertices := make([]string, len(rec.Boundaries))
	for i, b := range rec.Boundaries {
		v, err := json.Marshal(b.Vertices)
		if err != nil {
			return fmt.Errorf("encode boundary %s vertices: %w", b.BoundaryID, err)
		}
		vertices[i] = string(v)
	}

	return retryOnBusy(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO planning_cycles (
				cycle_id, started_at, build_duration_ns, obstacle_count,
				boundary_count, skipped_json
			) VALUES (?, ?, ?, ?, ?, ?)`,
			rec.CycleID, rec.StartedAt.UnixNano(), int64(rec.BuildDuration),
			rec.ObstacleCount, len(rec.Boundaries), string(skippedJSON),
		)
		if err != nil {
			return fmt.Errorf("insert cycle %s: %w", rec.CycleID, err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO st_boundaries (
				cycle_id, seq, boundary_id, obstacle_id, boundary_type,
				characteristic_length, station_ceiling, t_min, t_max, vertices_json
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, b := range rec.Boundaries {
			_, err := stmt.ExecContext(ctx,
				rec.CycleID, i, b.BoundaryID, b.ObstacleID, b.Type.String(),
				b.CharacteristicLength, b.StationCeiling, b.TMin, b.TMax, vertices[i],
			)
			if err != nil {
				return fmt.Errorf("insert boundary %d of cycle %s: %w", i, rec.CycleID, err)
			}
		}
		return tx.Commit()
	})
}

// ListCycles returns the most recent cycles, newest first. A non-positive
// limit returns every cycle.
func (s *Store) ListCycles(ctx context.Context, limit int) ([]CycleSummary, error) {
	query := `
		SELECT cycle_id, started_at, build_duration_ns, obstacle_count,
		       boundary_count, skipped_json
		FROM planning_cycles
		ORDER BY started_at DESC, cycle_id`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleSummary
	for rows.Next() {
		var (
			c           CycleSummary
			startedAt   int64
			durationNs  int64
			skippedJSON string
		)
		if err := rows.Scan(&c.CycleID, &startedAt, &durationNs, &c.ObstacleCount, &c.BoundaryCount, &skippedJSON); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		c.StartedAt = time.Unix(0, startedAt).UTC()
		c.BuildDuration = time.Duration(durationNs)
		if err := json.Unmarshal([]byte(skippedJSON), &c.Skipped); err != nil {
			return nil, fmt.Errorf("decode skipped ids of cycle %s: %w", c.CycleID, err)
		}
		if len(c.Skipped) == 0 {
			c.Skipped = nil
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LoadBoundaries returns the recorded boundaries of a cycle in build order.
func (s *Store) LoadBoundaries(ctx context.Context, cycleID string) ([]planning.BoundaryRecord, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM planning_cycles WHERE cycle_id = ?`, cycleID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("lookup cycle %s: %w", cycleID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCycleNotFound, cycleID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT boundary_id, obstacle_id, boundary_type, characteristic_length,
		       station_ceiling, t_min, t_max, vertices_json
		FROM st_boundaries
		WHERE cycle_id = ?
		ORDER BY seq`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("query boundaries of cycle %s: %w", cycleID, err)
	}
	defer rows.Close()

	out := []planning.BoundaryRecord{}
	for rows.Next() {
		var (
			b            planning.BoundaryRecord
			typeName     string
			verticesJSON string
		)
		if err := rows.Scan(&b.BoundaryID, &b.ObstacleID, &typeName, &b.CharacteristicLength,
			&b.StationCeiling, &b.TMin, &b.TMax, &verticesJSON); err != nil {
			return nil, fmt.Errorf("scan boundary: %w", err)
		}
		if b.Type, err = stgraph.ParseBoundaryType(typeName); err != nil {
			return nil, fmt.Errorf("boundary %s: %w", b.BoundaryID, err)
		}
		if err := json.Unmarshal([]byte(verticesJSON), &b.Vertices); err != nil {
			return nil, fmt.Errorf("decode boundary %s vertices: %w", b.BoundaryID, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteCycle removes a cycle and its boundaries.
func (s *Store) DeleteCycle(ctx context.Context, cycleID string) error {
	return retryOnBusy(func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM planning_cycles WHERE cycle_id = ?`, cycleID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrCycleNotFound, cycleID)
		}
		return nil
	})
}

// Rebuild reconstructs sealed boundaries from recorded rows, for rendering
// or re-querying a stored cycle.
func Rebuild(records []planning.BoundaryRecord) []*stgraph.Boundary {
	out := make([]*stgraph.Boundary, len(records))
	for i, r := range records {
		b := stgraph.NewBoundary(recordedObstacle(r.ObstacleID), r.Vertices)
		b.SetID(r.BoundaryID)
		b.SetType(r.Type)
		// Values came from a sealed boundary, so the setters cannot reject them.
		_ = b.SetCharacteristicLength(r.CharacteristicLength)
		_ = b.SetStationCeiling(r.StationCeiling)
		b.Seal()
		out[i] = b
	}
	return out
}

// recordedObstacle stands in for the obstacle of a replayed boundary.
type recordedObstacle string

func (o recordedObstacle) ID() string { return string(o) }

const (
	maxBusyAttempts = 5
	busyBackoff     = 10 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy runs fn up to maxBusyAttempts times, backing off exponentially
// while SQLite reports the database as busy.
func retryOnBusy(fn func() error) error {
	delay := busyBackoff
	var err error
	for attempt := 0; attempt < maxBusyAttempts; attempt++ {
		if err = fn(); !isSQLiteBusy(err) {
			return err
		}
		if attempt < maxBusyAttempts-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return fmt.Errorf("database busy after %d attempts: %w", maxBusyAttempts, err)
}
