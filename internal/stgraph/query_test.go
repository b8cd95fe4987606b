package stgraph

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typedBlock(bt BoundaryType) *Boundary {
	b := NewBoundary(stubObstacle("block"), staticBlock())
	b.SetType(bt)
	return b
}

// movingCar is a 4 m car starting 30 m ahead and closing at 2 m/s for 6 s,
// sampled every 2 s so the lower and upper chains both have interior vertices.
func movingCar() []STPoint {
	return []STPoint{
		{T: 0, S: 30}, {T: 2, S: 26}, {T: 4, S: 22}, {T: 6, S: 18},
		{T: 6, S: 22}, {T: 4, S: 26}, {T: 2, S: 30}, {T: 0, S: 34},
	}
}

// ---------------------------------------------------------------------------
// Time scope
// ---------------------------------------------------------------------------

func TestTimeScope(t *testing.T) {
	t.Parallel()

	tMin, tMax := NewBoundary(nil, staticBlock()).TimeScope()
	assert.Equal(t, 0.0, tMin)
	assert.Equal(t, 5.0, tMax)

	tMin, tMax = NewBoundary(nil, []STPoint{{T: 1.5, S: 0}, {T: 7.25, S: 3}, {T: 3, S: 9}}).TimeScope()
	assert.Equal(t, 1.5, tMin)
	assert.Equal(t, 7.25, tMax)
}

// ---------------------------------------------------------------------------
// BoundarySRange
// ---------------------------------------------------------------------------

func TestBoundarySRange(t *testing.T) {
	t.Parallel()

	t.Run("static block", func(t *testing.T) {
		t.Parallel()
		b := typedBlock(BoundaryTypeStop)

		r, ok := b.BoundarySRange(2.5)
		require.True(t, ok)
		assert.Equal(t, SRange{Lower: 10, Upper: 20}, r)

		r, ok = b.BoundarySRange(6)
		assert.False(t, ok)
		assert.Equal(t, SRange{}, r)
	})

	t.Run("vertex times", func(t *testing.T) {
		t.Parallel()
		b := NewBoundary(nil, staticBlock())
		for _, tq := range []float64{0, 5} {
			r, ok := b.BoundarySRange(tq)
			require.True(t, ok, "t=%v", tq)
			assert.Equal(t, SRange{Lower: 10, Upper: 20}, r, "t=%v", tq)
		}
	})

	t.Run("interpolates along both chains", func(t *testing.T) {
		t.Parallel()
		b := NewBoundary(nil, movingCar())
		cases := []struct {
			t            float64
			lower, upper float64
		}{
			{0, 30, 34},
			{1, 28, 32},
			{2, 26, 30},
			{3.5, 23, 27},
			{6, 18, 22},
		}
		for _, tc := range cases {
			r, ok := b.BoundarySRange(tc.t)
			require.True(t, ok, "t=%v", tc.t)
			assert.InDelta(t, tc.lower, r.Lower, 1e-9, "lower at t=%v", tc.t)
			assert.InDelta(t, tc.upper, r.Upper, 1e-9, "upper at t=%v", tc.t)
		}
	})

	t.Run("triangle apex", func(t *testing.T) {
		t.Parallel()
		// Appears at t=0 as a point, grows to stations 5-15 at t=4.
		b := NewBoundary(nil, []STPoint{{T: 0, S: 10}, {T: 4, S: 5}, {T: 4, S: 15}})
		r, ok := b.BoundarySRange(0)
		require.True(t, ok)
		assert.InDelta(t, 10, r.Lower, 1e-9)
		assert.InDelta(t, 10, r.Upper, 1e-9)

		r, ok = b.BoundarySRange(2)
		require.True(t, ok)
		assert.InDelta(t, 7.5, r.Lower, 1e-9)
		assert.InDelta(t, 12.5, r.Upper, 1e-9)
	})

	t.Run("instantaneous boundary", func(t *testing.T) {
		t.Parallel()
		// All vertices share one time; only that instant is in scope.
		b := NewBoundary(nil, []STPoint{{T: 3, S: 4}, {T: 3, S: 9}, {T: 3, S: 6}})
		r, ok := b.BoundarySRange(3)
		require.True(t, ok)
		assert.Equal(t, SRange{Lower: 4, Upper: 9}, r)
		_, ok = b.BoundarySRange(3.01)
		assert.False(t, ok)
	})

	t.Run("NaN time", func(t *testing.T) {
		t.Parallel()
		_, ok := NewBoundary(nil, staticBlock()).BoundarySRange(math.NaN())
		assert.False(t, ok)
	})
}

func TestBoundarySRangeProperties(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	b := NewBoundary(nil, movingCar())
	tMin, tMax := b.TimeScope()

	for i := 0; i < 500; i++ {
		tq := -2 + rng.Float64()*10
		r, ok := b.BoundarySRange(tq)
		inScope := tq >= tMin && tq <= tMax
		require.Equal(t, inScope, ok, "t=%v", tq)
		if ok {
			assert.LessOrEqual(t, r.Lower, r.Upper, "t=%v", tq)
			assert.True(t, b.ContainsPoint(STPoint{T: tq, S: (r.Lower + r.Upper) / 2}), "midpoint at t=%v", tq)
		} else {
			assert.Equal(t, SRange{}, r)
		}
	}
}

// ---------------------------------------------------------------------------
// UnblockSRange
// ---------------------------------------------------------------------------

func TestUnblockSRange(t *testing.T) {
	t.Parallel()

	t.Run("stop scenario", func(t *testing.T) {
		t.Parallel()
		r, ok := typedBlock(BoundaryTypeStop).UnblockSRange(2.5)
		require.True(t, ok)
		assert.Equal(t, SRange{Lower: 0, Upper: 10}, r)
	})

	t.Run("overtake scenario", func(t *testing.T) {
		t.Parallel()
		r, ok := typedBlock(BoundaryTypeOvertake).UnblockSRange(2.5)
		require.True(t, ok)
		assert.Equal(t, SRange{Lower: 20, Upper: 200}, r)
	})

	t.Run("overtake tracks the upper edge", func(t *testing.T) {
		t.Parallel()
		b := NewBoundary(nil, movingCar())
		b.SetType(BoundaryTypeOvertake)
		require.NoError(t, b.SetStationCeiling(120))
		for _, tq := range []float64{0, 1.3, 2, 4, 5.5, 6} {
			occ, ok := b.BoundarySRange(tq)
			require.True(t, ok)
			r, ok := b.UnblockSRange(tq)
			require.True(t, ok)
			assert.Equal(t, occ.Upper, r.Lower, "t=%v", tq)
			assert.Equal(t, 120.0, r.Upper, "t=%v", tq)
		}
	})

	t.Run("overtake uses station ceiling", func(t *testing.T) {
		t.Parallel()
		b := NewBoundary(nil, staticBlock())
		b.SetType(BoundaryTypeOvertake)
		require.NoError(t, b.SetStationCeiling(80))
		r, ok := b.UnblockSRange(1)
		require.True(t, ok)
		assert.Equal(t, SRange{Lower: 20, Upper: 80}, r)
	})

	t.Run("behind-types share the lower edge", func(t *testing.T) {
		t.Parallel()
		for _, bt := range []BoundaryType{BoundaryTypeStop, BoundaryTypeFollow, BoundaryTypeYield} {
			b := NewBoundary(nil, movingCar())
			b.SetType(bt)
			for _, tq := range []float64{0, 1.3, 4, 6} {
				occ, ok := b.BoundarySRange(tq)
				require.True(t, ok)
				r, ok := b.UnblockSRange(tq)
				require.True(t, ok)
				assert.Equal(t, 0.0, r.Lower, "%s t=%v", bt, tq)
				assert.Equal(t, occ.Lower, r.Upper, "%s t=%v", bt, tq)
			}
		}
	})

	t.Run("unknown is fully blocking", func(t *testing.T) {
		t.Parallel()
		r, ok := typedBlock(BoundaryTypeUnknown).UnblockSRange(2.5)
		require.True(t, ok)
		assert.True(t, r.IsEmpty())
		assert.Equal(t, 0.0, r.Length())
	})

	t.Run("out of scope for every type", func(t *testing.T) {
		t.Parallel()
		for _, bt := range AllBoundaryTypes() {
			b := typedBlock(bt)
			for _, tq := range []float64{-0.1, 5.0001, 100} {
				r, ok := b.UnblockSRange(tq)
				assert.False(t, ok, "%s t=%v", bt, tq)
				assert.Equal(t, SRange{}, r)
			}
		}
	})

	t.Run("negative lower edge is not clamped", func(t *testing.T) {
		t.Parallel()
		b := NewBoundary(nil, []STPoint{{T: 0, S: -5}, {T: 2, S: -5}, {T: 2, S: 3}, {T: 0, S: 3}})
		b.SetType(BoundaryTypeStop)
		r, ok := b.UnblockSRange(1)
		require.True(t, ok)
		assert.Equal(t, SRange{Lower: 0, Upper: -5}, r)
		assert.True(t, r.IsEmpty())
	})

	t.Run("undefined type panics", func(t *testing.T) {
		t.Parallel()
		b := NewBoundary(nil, staticBlock())
		b.boundaryType = BoundaryType(99)
		assert.Panics(t, func() { b.UnblockSRange(1) })
	})

	t.Run("every defined type has a policy", func(t *testing.T) {
		t.Parallel()
		for _, bt := range AllBoundaryTypes() {
			b := typedBlock(bt)
			assert.NotPanics(t, func() { b.UnblockSRange(1) }, "%s", bt)
		}
	})
}

func TestConcurrentQueriesOnSealedBoundary(t *testing.T) {
	t.Parallel()

	b := NewBoundary(stubObstacle("car"), movingCar())
	b.SetType(BoundaryTypeFollow)
	b.Seal()

	want := make(map[float64]SRange)
	for tq := 0.0; tq <= 6; tq += 0.25 {
		r, _ := b.UnblockSRange(tq)
		want[tq] = r
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tq, expected := range want {
				got, ok := b.UnblockSRange(tq)
				assert.True(t, ok)
				assert.Equal(t, expected, got)
				b.ContainsPoint(STPoint{T: tq, S: 20})
			}
		}()
	}
	wg.Wait()
}

func TestSRange(t *testing.T) {
	t.Parallel()
	assert.False(t, SRange{Lower: 1, Upper: 3}.IsEmpty())
	assert.Equal(t, 2.0, SRange{Lower: 1, Upper: 3}.Length())
	assert.True(t, SRange{Lower: 3, Upper: 3}.IsEmpty())
	assert.True(t, SRange{Lower: 4, Upper: 3}.IsEmpty())
}
