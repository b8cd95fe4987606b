// Package store records planning cycles and their S-T boundaries in SQLite
// so that a run can be inspected or replayed after the fact.
//
// The schema is managed with golang-migrate from migrations embedded in the
// binary. Store implements planning.Recorder.
package store
