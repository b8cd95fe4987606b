// Command stgraph builds the S-T graph for a scenario file and prints the
// occupied and unblocked station ranges of every boundary over time.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/banshee-data/stgraph/internal/config"
	"github.com/banshee-data/stgraph/internal/monitoring"
	"github.com/banshee-data/stgraph/internal/obstacle"
	"github.com/banshee-data/stgraph/internal/planning"
	"github.com/banshee-data/stgraph/internal/stgraph"
	"github.com/banshee-data/stgraph/internal/store"
	"github.com/banshee-data/stgraph/internal/stplot"
	"github.com/banshee-data/stgraph/internal/units"
	"github.com/banshee-data/stgraph/internal/version"
)

var (
	configPath   = flag.String("config", "", "Planner config JSON (built-in defaults when empty)")
	scenarioPath = flag.String("scenario", "", "Scenario JSON with the obstacles to project")
	step         = flag.Float64("step", 0, "Query time step in seconds (config query_time_step when 0)")
	horizon      = flag.Float64("horizon", 0, "Last query time in seconds (config planning_horizon when 0)")
	pngPath      = flag.String("png", "", "Write the S-T graph as an image to this path")
	htmlPath     = flag.String("html", "", "Write the S-T graph as an interactive HTML page to this path")
	dbPath       = flag.String("db", "", "Record the cycle into this SQLite database")
	replayID     = flag.String("replay", "", "Load this cycle id from -db instead of building from -scenario")
	listCycles   = flag.Int("list-cycles", 0, "List the N most recent cycles in -db and exit")
	speedUnits   = flag.String("units", units.MPS, "Speed units for the boundary summary (mps, mph, kmph, kph)")
	debug        = flag.Bool("debug", false, "Log per-boundary diagnostics")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

type cliOptions struct {
	ConfigPath   string
	ScenarioPath string
	Step         float64
	Horizon      float64
	PNGPath      string
	HTMLPath     string
	DBPath       string
	ReplayID     string
	ListCycles   int
	Units        string
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	monitoring.SetDebug(*debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := cliOptions{
		ConfigPath:   *configPath,
		ScenarioPath: *scenarioPath,
		Step:         *step,
		Horizon:      *horizon,
		PNGPath:      *pngPath,
		HTMLPath:     *htmlPath,
		DBPath:       *dbPath,
		ReplayID:     *replayID,
		ListCycles:   *listCycles,
		Units:        *speedUnits,
	}
	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Fatalf("stgraph: %v", err)
	}
}

func run(ctx context.Context, o cliOptions, out io.Writer) error {
	if err := units.Validate(o.Units); err != nil {
		return err
	}
	if (o.ReplayID != "" || o.ListCycles > 0) && o.DBPath == "" {
		return errors.New("-replay and -list-cycles require -db")
	}
	if o.ReplayID == "" && o.ListCycles <= 0 && o.ScenarioPath == "" {
		return errors.New("-scenario is required")
	}

	cfg := config.EmptyPlannerConfig()
	if o.ConfigPath != "" {
		var err error
		if cfg, err = config.LoadPlannerConfig(o.ConfigPath); err != nil {
			return err
		}
	}
	queryStep := o.Step
	if queryStep <= 0 {
		queryStep = cfg.GetQueryTimeStep()
	}
	queryHorizon := o.Horizon
	if queryHorizon <= 0 {
		queryHorizon = cfg.GetPlanningHorizon()
	}

	var st *store.Store
	if o.DBPath != "" {
		var err error
		if st, err = store.Open(o.DBPath); err != nil {
			return err
		}
		defer st.Close()
	}

	if o.ListCycles > 0 {
		cycles, err := st.ListCycles(ctx, o.ListCycles)
		if err != nil {
			return err
		}
		return writeCycleList(out, cycles)
	}

	var cycle *planning.Cycle
	if o.ReplayID != "" {
		records, err := st.LoadBoundaries(ctx, o.ReplayID)
		if err != nil {
			return err
		}
		cycle = planning.NewCycle(o.ReplayID, time.Time{}, store.Rebuild(records))
	} else {
		scenario, err := obstacle.LoadScenario(o.ScenarioPath)
		if err != nil {
			return err
		}
		obstacles, err := scenario.Snapshot(ctx)
		if err != nil {
			return err
		}
		var popts []planning.Option
		if st != nil {
			popts = append(popts, planning.WithRecorder(st))
		}
		if cycle, err = planning.NewPlanner(cfg, popts...).BuildCycle(ctx, obstacles); err != nil {
			return err
		}
	}

	if err := writeSummary(out, cycle, o.Units); err != nil {
		return err
	}
	if err := writeSamples(out, cycle.Sample(queryStep, queryHorizon)); err != nil {
		return err
	}

	boundaries := cycle.Boundaries()
	plotOpts := stplot.Options{Title: fmt.Sprintf("S-T graph %s", cycle.ID)}
	if o.PNGPath != "" {
		if err := stplot.SavePNG(o.PNGPath, boundaries, plotOpts); err != nil {
			return err
		}
		log.Printf("wrote %s", o.PNGPath)
	}
	if o.HTMLPath != "" {
		if err := writeHTMLFile(o.HTMLPath, boundaries, plotOpts); err != nil {
			return err
		}
		log.Printf("wrote %s", o.HTMLPath)
	}
	return nil
}

func writeHTMLFile(path string, boundaries []*stgraph.Boundary, o stplot.Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := stplot.WriteHTML(f, boundaries, o); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newTSVWriter(out io.Writer) *csv.Writer {
	w := csv.NewWriter(out)
	w.Comma = '\t'
	return w
}

// writeSummary prints one row per boundary: identity, time scope and the
// mean speed of its rear edge.
func writeSummary(out io.Writer, cycle *planning.Cycle, unit string) error {
	fmt.Fprintf(out, "# cycle %s boundaries=%d skipped=%s\n",
		cycle.ID, len(cycle.Boundaries()), strings.Join(cycle.Skipped, ","))

	w := newTSVWriter(out)
	w.Write([]string{"boundary", "obstacle", "type", "t_min", "t_max", "speed_" + unit})
	for _, b := range cycle.Boundaries() {
		tMin, tMax := b.TimeScope()
		obstacleID := ""
		if obs := b.Obstacle(); obs != nil {
			obstacleID = obs.ID()
		}
		w.Write([]string{
			b.ID(), obstacleID, b.Type().String(),
			formatFloat(tMin), formatFloat(tMax),
			formatFloat(units.ConvertSpeed(meanSpeed(b), unit)),
		})
	}
	w.Flush()
	return w.Error()
}

// writeSamples prints the occupied and unblocked ranges of every active
// boundary at each sample time. Empty unblocked ranges print as "-".
func writeSamples(out io.Writer, samples []planning.Sample) error {
	fmt.Fprintln(out)
	w := newTSVWriter(out)
	w.Write([]string{"t", "boundary", "type", "occupied_lower", "occupied_upper", "unblocked_lower", "unblocked_upper"})
	for _, s := range samples {
		for _, q := range s.Queries {
			if !q.Active {
				continue
			}
			lo, hi := "-", "-"
			if !q.Unblocked.IsEmpty() {
				lo, hi = formatFloat(q.Unblocked.Lower), formatFloat(q.Unblocked.Upper)
			}
			w.Write([]string{
				formatFloat(s.T), q.BoundaryID, q.Type.String(),
				formatFloat(q.Occupied.Lower), formatFloat(q.Occupied.Upper), lo, hi,
			})
		}
	}
	w.Flush()
	return w.Error()
}

func writeCycleList(out io.Writer, cycles []store.CycleSummary) error {
	w := newTSVWriter(out)
	w.Write([]string{"cycle_id", "started_at", "build_duration", "obstacles", "boundaries", "skipped"})
	for _, c := range cycles {
		w.Write([]string{
			c.CycleID, c.StartedAt.Format(time.RFC3339Nano), c.BuildDuration.String(),
			strconv.Itoa(c.ObstacleCount), strconv.Itoa(c.BoundaryCount), strings.Join(c.Skipped, ","),
		})
	}
	w.Flush()
	return w.Error()
}

// meanSpeed is the average rate of change of the boundary's lower station
// over its time scope, in m/s. Instantaneous boundaries report 0.
func meanSpeed(b *stgraph.Boundary) float64 {
	tMin, tMax := b.TimeScope()
	if tMax-tMin <= 0 {
		return 0
	}
	start, ok1 := b.BoundarySRange(tMin)
	end, ok2 := b.BoundarySRange(tMax)
	if !ok1 || !ok2 {
		return 0
	}
	return (end.Lower - start.Lower) / (tMax - tMin)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
