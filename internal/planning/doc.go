// Package planning runs the per-cycle S-T boundary construction step.
//
// Each cycle takes the obstacle records for one control tick, builds one
// sealed stgraph.Boundary per obstacle on a bounded worker pool, and hands the
// result to the speed search as an immutable Cycle. Boundaries are never
// carried across cycles.
//
// Dependency rule: planning may depend on stgraph, obstacle, config,
// monitoring and timeutil. Persistence is reached only through the Recorder
// interface; no SQL lives here.
package planning
