package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func square(x0, y0, x1, y1 float64) []r2.Vec {
	return []r2.Vec{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func TestNewPolygon(t *testing.T) {
	t.Parallel()

	t.Run("copies input", func(t *testing.T) {
		t.Parallel()
		in := square(0, 0, 2, 2)
		p := NewPolygon(in)
		in[0] = r2.Vec{X: 99, Y: 99}
		assert.Equal(t, r2.Vec{X: 0, Y: 0}, p.Points()[0])
		assert.Equal(t, 4, p.NumPoints())
	})

	t.Run("too few points panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { NewPolygon([]r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 1}}) })
	})

	t.Run("bounding box", func(t *testing.T) {
		t.Parallel()
		p := NewPolygon([]r2.Vec{{X: -1, Y: 2}, {X: 3, Y: -4}, {X: 5, Y: 6}})
		box := p.BoundingBox()
		assert.Equal(t, r2.Vec{X: -1, Y: -4}, box.Min)
		assert.Equal(t, r2.Vec{X: 5, Y: 6}, box.Max)
	})
}

func TestOrientation(t *testing.T) {
	t.Parallel()

	ccw := NewPolygon(square(0, 0, 2, 3))
	assert.InDelta(t, 6.0, ccw.SignedArea(), 1e-12)
	assert.Equal(t, CounterClockwise, ccw.Orientation())

	cw := NewPolygon(Reversed(square(0, 0, 2, 3)))
	assert.InDelta(t, -6.0, cw.SignedArea(), 1e-12)
	assert.Equal(t, Clockwise, cw.Orientation())

	flat := NewPolygon([]r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}})
	assert.Equal(t, Collinear, flat.Orientation())
	assert.Equal(t, "collinear", flat.Orientation().String())
}

func TestIsPointIn(t *testing.T) {
	t.Parallel()

	p := NewPolygon(square(0, 10, 5, 20))
	cases := []struct {
		name string
		pt   r2.Vec
		want bool
	}{
		{"interior", r2.Vec{X: 2.5, Y: 15}, true},
		{"vertex", r2.Vec{X: 5, Y: 20}, true},
		{"edge", r2.Vec{X: 0, Y: 12}, true},
		{"left", r2.Vec{X: -0.1, Y: 15}, false},
		{"far", r2.Vec{X: 100, Y: -100}, false},
		{"above", r2.Vec{X: 2, Y: 20.5}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.IsPointIn(tc.pt))
		})
	}

	t.Run("concave notch", func(t *testing.T) {
		// U shape opening upward.
		u := NewPolygon([]r2.Vec{
			{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 3}, {X: 2, Y: 3},
			{X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 3}, {X: 0, Y: 3},
		})
		assert.False(t, u.IsPointIn(r2.Vec{X: 1.5, Y: 2}))
		assert.True(t, u.IsPointIn(r2.Vec{X: 0.5, Y: 2}))
	})

	t.Run("degenerate line", func(t *testing.T) {
		line := NewPolygon([]r2.Vec{{X: 1, Y: 0}, {X: 1, Y: 5}, {X: 1, Y: 2}})
		assert.True(t, line.IsPointIn(r2.Vec{X: 1, Y: 4}))
		assert.False(t, line.IsPointIn(r2.Vec{X: 1.5, Y: 4}))
	})
}

func TestHasOverlap(t *testing.T) {
	t.Parallel()

	a := NewPolygon(square(0, 0, 4, 4))
	require.True(t, a.HasOverlap(NewPolygon(square(2, 2, 6, 6))), "partial overlap")
	assert.True(t, a.HasOverlap(NewPolygon(square(1, 1, 2, 2))), "contained")
	assert.True(t, NewPolygon(square(1, 1, 2, 2)).HasOverlap(a), "container")
	assert.True(t, a.HasOverlap(NewPolygon(square(4, 0, 8, 4))), "shared edge")
	assert.False(t, a.HasOverlap(NewPolygon(square(5, 5, 6, 6))), "disjoint")

	// Crossing bars with no vertex inside the other polygon.
	h := NewPolygon(square(-1, 1, 5, 2))
	v := NewPolygon(square(1, -1, 2, 5))
	assert.True(t, h.HasOverlap(v))
}

func TestBoxesIntersect(t *testing.T) {
	t.Parallel()
	a := r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 1, Y: 1}}
	assert.True(t, BoxesIntersect(a, r2.Box{Min: r2.Vec{X: 1, Y: 1}, Max: r2.Vec{X: 2, Y: 2}}))
	assert.False(t, BoxesIntersect(a, r2.Box{Min: r2.Vec{X: 1.5, Y: 0}, Max: r2.Vec{X: 2, Y: 1}}))
}
