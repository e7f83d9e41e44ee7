// Package control implements the Stanley lateral steering law: heading error
// plus a velocity-softened correction proportional to the front axle's
// cross-track error.
package control

import (
	"math"

	"github.com/banshee-data/pathtrack/internal/course"
	"github.com/banshee-data/pathtrack/internal/vehicle"
)

// EmptyPathError reports a controller invocation against a path with no
// samples. It indicates an integration bug upstream, not a runtime condition.
type EmptyPathError struct{}

func (e *EmptyPathError) Error() string {
	return "reference path has no samples"
}

// Params holds the immutable controller configuration.
type Params struct {
	Gain          float64 // k, cross-track gain
	Softening     float64 // ksoft, keeps the correction finite at zero speed
	YawRateGain   float64 // kyaw, yaw-rate damping
	SteerRateGain float64 // ksteer, low-pass toward the previous command
	MaxSteer      float64 // output clamp (rad)
	Wheelbase     float64 // used to project the pose to the front axle (m)
}

// Output is the per-tick controller result. It is recomputed every tick;
// only the cross-track error is interesting beyond immediate consumption.
type Output struct {
	Steering    float64 // clamped steering command (rad)
	TargetIndex int     // index of the nearest path sample
	CrossTrack  float64 // signed error, positive right of the path direction
}

// SteeringCommand computes the steering command for the current state
// against the reference path. The previous steering angle and yaw rate are
// read from the state, so the function keeps no hidden state and is
// deterministic for identical inputs.
//
// The nearest-target search is a full linear scan over the path, O(path
// length) per call. At the path sizes this simulator produces the scan costs
// microseconds and has no cusp or loop corner cases.
func SteeringCommand(p Params, path *course.Path, s vehicle.State) (Output, error) {
	if path == nil || path.Len() == 0 {
		return Output{}, &EmptyPathError{}
	}

	// Front axle position: pose projected half a wheelbase along the heading.
	sin, cos := math.Sincos(s.Yaw)
	fx := s.X + 0.5*p.Wheelbase*cos
	fy := s.Y + 0.5*p.Wheelbase*sin

	target := 0
	best := math.Inf(1)
	for i, sample := range path.Samples {
		dx := fx - sample.X
		dy := fy - sample.Y
		if d := dx*dx + dy*dy; d < best {
			best = d
			target = i
		}
	}
	nearest := path.Samples[target]

	// Signed cross-track error: positive when the front axle lies to the
	// right of the path direction. With counterclockwise-positive yaw this
	// makes a positive error produce a positive (leftward) correction.
	ox := fx - nearest.X
	oy := fy - nearest.Y
	pSin, pCos := math.Sincos(nearest.Yaw)
	crossTrack := ox*pSin - oy*pCos

	headingErr := vehicle.NormalizeAngle(nearest.Yaw - s.Yaw)
	crossTerm := math.Atan2(p.Gain*crossTrack, p.Softening+s.Velocity)

	desired := headingErr + crossTerm - p.YawRateGain*s.YawRate
	desired = clamp(desired, p.MaxSteer)

	// Rate limiting: pull the command toward the previous steering angle.
	desired -= p.SteerRateGain * (desired - s.Steer)

	return Output{
		Steering:    clamp(desired, p.MaxSteer),
		TargetIndex: target,
		CrossTrack:  crossTrack,
	}, nil
}

func clamp(v, bound float64) float64 {
	if v > bound {
		return bound
	}
	if v < -bound {
		return -bound
	}
	return v
}
