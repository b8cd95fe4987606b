// Package obstacle holds the per-cycle obstacle records the S-T boundary
// builder consumes: an identifier, a classification confidence, an optional
// pre-computed planning decision, and the obstacle's predicted occupancy along
// the reference path sampled over time.
//
// Producing the prediction is upstream of this package. Records here are
// plain data scoped to one planning cycle.
package obstacle
