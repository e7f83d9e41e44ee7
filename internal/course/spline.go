package course

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// spline is a piecewise cubic interpolant in second-derivative form: for each
// knot i it stores the parameter s[i], the value y[i] and the second
// derivative m[i]. Boundary conditions are not-a-knot (the first two and last
// two polynomial pieces coincide), which keeps curvature meaningful at the
// path endpoints. A natural spline would pin the end curvature to zero.
type spline struct {
	s []float64
	y []float64
	m []float64
}

// fitSpline solves for the knot second derivatives. The system is nearly
// tridiagonal but the not-a-knot corner rows reach one column further, so it
// is solved densely; knot counts are waypoint counts and stay small.
func fitSpline(s, y []float64) (*spline, error) {
	n := len(s)
	if n != len(y) {
		return nil, fmt.Errorf("knot count mismatch: %d parameters, %d values", n, len(y))
	}
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 knots, got %d", n)
	}

	h := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		h[i] = s[i+1] - s[i]
		if h[i] <= 0 {
			return nil, fmt.Errorf("knot parameters must be strictly increasing at index %d", i+1)
		}
	}

	// Two knots: the interpolant is the straight chord.
	if n == 2 {
		return &spline{s: s, y: y, m: make([]float64, n)}, nil
	}

	a := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)

	// Interior rows: continuity of the first derivative at each inner knot.
	for i := 1; i < n-1; i++ {
		a.Set(i, i-1, h[i-1])
		a.Set(i, i, 2*(h[i-1]+h[i]))
		a.Set(i, i+1, h[i])
		b.SetVec(i, 6*((y[i+1]-y[i])/h[i]-(y[i]-y[i-1])/h[i-1]))
	}

	if n == 3 {
		// Not-a-knot degenerates for three knots; fit the single parabola
		// through them by holding the second derivative constant.
		a.Set(0, 0, 1)
		a.Set(0, 1, -1)
		a.Set(n-1, n-2, 1)
		a.Set(n-1, n-1, -1)
	} else {
		// Not-a-knot: third derivative continuous across the second and
		// second-to-last knots.
		a.Set(0, 0, h[1])
		a.Set(0, 1, -(h[0] + h[1]))
		a.Set(0, 2, h[0])
		a.Set(n-1, n-3, h[n-2])
		a.Set(n-1, n-2, -(h[n-3] + h[n-2]))
		a.Set(n-1, n-1, h[n-3])
	}

	var m mat.VecDense
	if err := m.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("spline system is singular: %w", err)
	}

	return &spline{s: s, y: y, m: m.RawVector().Data}, nil
}

// at evaluates the spline and its first two derivatives at parameter q.
// Queries outside the knot range are clamped to the end segments.
func (sp *spline) at(q float64) (v, d1, d2 float64) {
	n := len(sp.s)

	// Locate the segment containing q: the largest i with s[i] <= q.
	i := sort.SearchFloat64s(sp.s, q) - 1
	if i < 0 {
		i = 0
	}
	if i > n-2 {
		i = n - 2
	}

	h := sp.s[i+1] - sp.s[i]
	ra := (sp.s[i+1] - q) / h
	rb := (q - sp.s[i]) / h

	v = ra*sp.y[i] + rb*sp.y[i+1] +
		((ra*ra*ra-ra)*sp.m[i]+(rb*rb*rb-rb)*sp.m[i+1])*h*h/6
	d1 = (sp.y[i+1]-sp.y[i])/h -
		(3*ra*ra-1)/6*h*sp.m[i] +
		(3*rb*rb-1)/6*h*sp.m[i+1]
	d2 = ra*sp.m[i] + rb*sp.m[i+1]
	return v, d1, d2
}
