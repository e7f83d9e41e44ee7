// Package course turns sparse waypoints into a dense reference path with
// heading and curvature at every sample. The path is generated once and is
// immutable afterwards; concurrent readers need no locking.
package course

import (
	"fmt"
	"math"
)

// DegenerateInputError reports waypoint input that cannot produce a path:
// fewer than two waypoints, coincident consecutive waypoints, or a
// non-positive sampling interval.
type DegenerateInputError struct {
	Reason string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("degenerate waypoint input: %s", e.Reason)
}

// Waypoint is a raw (x, y) input point. Order defines the path direction.
type Waypoint struct {
	X float64
	Y float64
}

// Sample is one point of the dense reference path. S is the chord-length
// parameter the sample was evaluated at; consecutive samples are ds apart
// except possibly the final one, which sits exactly at the total length.
type Sample struct {
	X         float64
	Y         float64
	Yaw       float64
	Curvature float64
	S         float64
}

// Path is the dense, arc-length-sampled reference trajectory.
type Path struct {
	Samples []Sample

	step  float64
	total float64
}

// Len returns the number of samples.
func (p *Path) Len() int { return len(p.Samples) }

// Step returns the sampling interval ds the path was generated with.
func (p *Path) Step() float64 { return p.step }

// Total returns the total chord length of the fitted course.
func (p *Path) Total() float64 { return p.total }

// Generate fits x(s) and y(s) as cubic splines over cumulative chord length
// and resamples them every ds from 0 to the total length inclusive. Yaw is
// atan2(y', x'); curvature is the signed (x'y'' − y'x'') / (x'²+y'²)^(3/2).
// The sample count is floor(total/ds)+1.
func Generate(waypoints []Waypoint, ds float64) (*Path, error) {
	if ds <= 0 {
		return nil, &DegenerateInputError{Reason: fmt.Sprintf("sampling interval %g is not positive", ds)}
	}
	if len(waypoints) < 2 {
		return nil, &DegenerateInputError{Reason: fmt.Sprintf("need at least 2 waypoints, got %d", len(waypoints))}
	}

	// Cumulative chord length is the spline parameter. Coincident consecutive
	// waypoints would collapse a knot interval and make the fit singular, so
	// they are rejected rather than silently dropped.
	s := make([]float64, len(waypoints))
	xs := make([]float64, len(waypoints))
	ys := make([]float64, len(waypoints))
	xs[0], ys[0] = waypoints[0].X, waypoints[0].Y
	for i := 1; i < len(waypoints); i++ {
		d := math.Hypot(waypoints[i].X-waypoints[i-1].X, waypoints[i].Y-waypoints[i-1].Y)
		if d == 0 {
			return nil, &DegenerateInputError{Reason: fmt.Sprintf("coincident consecutive waypoints at index %d", i)}
		}
		s[i] = s[i-1] + d
		xs[i], ys[i] = waypoints[i].X, waypoints[i].Y
	}
	total := s[len(s)-1]
	if total == 0 {
		return nil, &DegenerateInputError{Reason: "total chord length is zero"}
	}

	sx, err := fitSpline(s, xs)
	if err != nil {
		return nil, fmt.Errorf("fit x(s): %w", err)
	}
	sy, err := fitSpline(s, ys)
	if err != nil {
		return nil, fmt.Errorf("fit y(s): %w", err)
	}

	count := int(math.Floor(total/ds)) + 1
	samples := make([]Sample, count)
	for k := 0; k < count; k++ {
		q := float64(k) * ds
		if k == count-1 {
			q = total
		}

		x, dx, ddx := sx.at(q)
		y, dy, ddy := sy.at(q)

		speed2 := dx*dx + dy*dy
		var curvature float64
		if speed2 > 0 {
			curvature = (dx*ddy - dy*ddx) / math.Pow(speed2, 1.5)
		}

		samples[k] = Sample{
			X:         x,
			Y:         y,
			Yaw:       math.Atan2(dy, dx),
			Curvature: curvature,
			S:         q,
		}
	}

	return &Path{Samples: samples, step: ds, total: total}, nil
}
