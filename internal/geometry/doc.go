// Package geometry holds the planar polygon primitive the S-T graph is built on.
//
// Points are gonum r2 vectors. For station-time work X carries time (s) and Y
// carries station (m). Polygons are simple and listed counter-clockwise; the
// containment and overlap tests assume that ordering and do not re-check it.
package geometry
