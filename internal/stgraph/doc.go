// Package stgraph owns the station-time (S-T) boundary model used by the
// speed planner.
//
// Each obstacle relevant to a planning cycle is projected onto the S-T plane
// as a counter-clockwise polygon (time on X, station on Y). A Boundary pairs
// that polygon with the planning decision already taken for the obstacle
// (stop, follow, yield or overtake) and answers time-indexed station range
// queries for the downstream speed search.
//
// Boundaries are rebuilt every cycle. They are mutable only between
// construction and Seal; after that every method is a pure read and may be
// called from any number of goroutines without locking.
//
// Dependency rule: stgraph depends on geometry only. Obstacle records reach it
// through the Obstacle interface; it never imports the obstacle package.
package stgraph
