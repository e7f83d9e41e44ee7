package course

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// circleWaypoints returns n+1 waypoints around a circle of the given radius,
// closed by repeating the starting point at the far end.
func circleWaypoints(radius float64, n int) []Waypoint {
	waypoints := make([]Waypoint, 0, n+1)
	for k := 0; k <= n; k++ {
		a := 2 * math.Pi * float64(k) / float64(n)
		waypoints = append(waypoints, Waypoint{X: radius * math.Cos(a), Y: radius * math.Sin(a)})
	}
	return waypoints
}

func TestGenerateDegenerateInput(t *testing.T) {
	t.Parallel()

	t.Run("fewer than two waypoints", func(t *testing.T) {
		t.Parallel()
		_, err := Generate([]Waypoint{{X: 1, Y: 2}}, 0.1)
		var degenerate *DegenerateInputError
		require.ErrorAs(t, err, &degenerate)
	})

	t.Run("coincident consecutive waypoints", func(t *testing.T) {
		t.Parallel()
		_, err := Generate([]Waypoint{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 1}}, 0.1)
		var degenerate *DegenerateInputError
		require.ErrorAs(t, err, &degenerate)
	})

	t.Run("non-positive sampling interval", func(t *testing.T) {
		t.Parallel()
		_, err := Generate([]Waypoint{{X: 0, Y: 0}, {X: 1, Y: 0}}, 0)
		var degenerate *DegenerateInputError
		require.ErrorAs(t, err, &degenerate)
	})

	t.Run("two distinct waypoints succeed", func(t *testing.T) {
		t.Parallel()
		path, err := Generate([]Waypoint{{X: 0, Y: 0}, {X: 1, Y: 0}}, 0.1)
		require.NoError(t, err)
		assert.Equal(t, 11, path.Len())
	})
}

func TestGenerateStraightLine(t *testing.T) {
	t.Parallel()

	waypoints := []Waypoint{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}, {X: 35, Y: 0}, {X: 50, Y: 0}}
	path, err := Generate(waypoints, 0.5)
	require.NoError(t, err)

	assert.Equal(t, int(math.Floor(50/0.5))+1, path.Len())
	assert.InDelta(t, 50.0, path.Total(), 1e-12)

	for _, s := range path.Samples {
		assert.InDelta(t, 0.0, s.Yaw, 1e-9, "yaw at s=%f", s.S)
		assert.InDelta(t, 0.0, s.Curvature, 1e-9, "curvature at s=%f", s.S)
		assert.InDelta(t, 0.0, s.Y, 1e-9, "y at s=%f", s.S)
	}
}

func TestGenerateSampleSpacing(t *testing.T) {
	t.Parallel()

	waypoints := []Waypoint{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 10, Y: 4}, {X: 13, Y: 9}}
	ds := 0.25
	path, err := Generate(waypoints, ds)
	require.NoError(t, err)

	total := 5.0 + 7.0 + math.Hypot(3, 5)
	assert.InDelta(t, total, path.Total(), 1e-12)
	require.Equal(t, int(math.Floor(total/ds))+1, path.Len())

	for i := 1; i < path.Len()-1; i++ {
		assert.InDelta(t, ds, path.Samples[i].S-path.Samples[i-1].S, 1e-12)
	}
	// The final sample sits exactly at the total length; its spacing may be
	// anything in (0, ds] plus the floor remainder.
	last := path.Samples[path.Len()-1]
	assert.InDelta(t, total, last.S, 1e-12)
}

func TestGeneratePassesThroughWaypoints(t *testing.T) {
	t.Parallel()

	waypoints := []Waypoint{{X: 0, Y: 0}, {X: 5, Y: 3}, {X: 9, Y: -1}, {X: 15, Y: 4}, {X: 21, Y: 2}}

	// Rebuild the chord-length parameters the generator uses and evaluate
	// the fitted splines at each knot.
	s := make([]float64, len(waypoints))
	xs := make([]float64, len(waypoints))
	ys := make([]float64, len(waypoints))
	xs[0], ys[0] = waypoints[0].X, waypoints[0].Y
	for i := 1; i < len(waypoints); i++ {
		s[i] = s[i-1] + math.Hypot(waypoints[i].X-waypoints[i-1].X, waypoints[i].Y-waypoints[i-1].Y)
		xs[i], ys[i] = waypoints[i].X, waypoints[i].Y
	}

	sx, err := fitSpline(s, xs)
	require.NoError(t, err)
	sy, err := fitSpline(s, ys)
	require.NoError(t, err)

	for i := range waypoints {
		x, _, _ := sx.at(s[i])
		y, _, _ := sy.at(s[i])
		assert.InDelta(t, waypoints[i].X, x, 1e-9, "x at knot %d", i)
		assert.InDelta(t, waypoints[i].Y, y, 1e-9, "y at knot %d", i)
	}

	// The dense path starts and ends on the first and last waypoints.
	path, err := Generate(waypoints, 0.1)
	require.NoError(t, err)
	first, last := path.Samples[0], path.Samples[path.Len()-1]
	assert.InDelta(t, waypoints[0].X, first.X, 1e-9)
	assert.InDelta(t, waypoints[0].Y, first.Y, 1e-9)
	assert.InDelta(t, waypoints[len(waypoints)-1].X, last.X, 1e-9)
	assert.InDelta(t, waypoints[len(waypoints)-1].Y, last.Y, 1e-9)
}

func TestGenerateCircleCurvature(t *testing.T) {
	t.Parallel()

	const radius = 50.0
	path, err := Generate(circleWaypoints(radius, 24), 0.5)
	require.NoError(t, err)

	// Counterclockwise course: curvature is positive 1/r everywhere, within
	// the tolerance of the chord-length approximation.
	want := 1 / radius
	var sum float64
	for _, s := range path.Samples {
		assert.InDelta(t, want, s.Curvature, 0.2*want, "curvature at s=%f", s.S)
		sum += s.Curvature
	}
	mean := sum / float64(path.Len())
	assert.InDelta(t, want, mean, 0.02*want)
}

func TestSplineReproducesCubic(t *testing.T) {
	t.Parallel()

	// Not-a-knot boundary conditions reproduce a single cubic exactly.
	poly := func(s float64) float64 { return s*s*s - 2*s*s + s - 3 }
	d1 := func(s float64) float64 { return 3*s*s - 4*s + 1 }
	d2 := func(s float64) float64 { return 6*s - 4 }

	knots := []float64{0, 1, 2.5, 3, 4.5, 6}
	values := make([]float64, len(knots))
	for i, s := range knots {
		values[i] = poly(s)
	}

	sp, err := fitSpline(knots, values)
	require.NoError(t, err)

	for _, q := range []float64{0, 0.3, 1.7, 2.5, 3.9, 5.2, 6} {
		v, dv, ddv := sp.at(q)
		assert.InDelta(t, poly(q), v, 1e-9, "value at %f", q)
		assert.InDelta(t, d1(q), dv, 1e-9, "first derivative at %f", q)
		assert.InDelta(t, d2(q), ddv, 1e-9, "second derivative at %f", q)
	}
}

func TestSplineThreeKnotsParabola(t *testing.T) {
	t.Parallel()

	// Three knots fit the unique parabola through them.
	poly := func(s float64) float64 { return 2*s*s - s + 1 }
	knots := []float64{0, 2, 5}
	values := []float64{poly(0), poly(2), poly(5)}

	sp, err := fitSpline(knots, values)
	require.NoError(t, err)

	for _, q := range []float64{0, 0.5, 2, 3.7, 5} {
		v, _, ddv := sp.at(q)
		assert.InDelta(t, poly(q), v, 1e-9)
		assert.InDelta(t, 4.0, ddv, 1e-9)
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	_, err := Generate(nil, 0.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "degenerate waypoint input")
	assert.True(t, errors.As(err, new(*DegenerateInputError)))
}
