// Package stplot renders S-T graphs: every boundary polygon drawn in the
// (time, station) plane, coloured by boundary type, with the station ceiling.
//
// SavePNG produces a static image with gonum/plot. WriteHTML produces an
// interactive go-echarts page.
package stplot
