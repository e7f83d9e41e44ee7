// Package vehicle implements a kinematic bicycle model: a single-track,
// no-slip vehicle advanced by explicit Euler integration.
package vehicle

import (
	"fmt"
	"math"
)

// steerTolerance is the numerical slack allowed when checking a steering
// command against the configured bound. Commands beyond it are caller bugs.
const steerTolerance = 1e-9

// Params holds immutable vehicle configuration.
type Params struct {
	Wheelbase         float64 // distance between axles (m)
	MaxSteer          float64 // steering angle bound (rad)
	RollingResistance float64 // c_r, linear drag coefficient
	AeroDrag          float64 // c_a, quadratic drag coefficient
	Timestep          float64 // integration step dt (s)
}

// State is the full vehicle state. It is a plain value; Step returns a new
// one rather than mutating in place, so a state is never shared mid-update.
type State struct {
	X        float64
	Y        float64
	Yaw      float64 // heading (rad), normalised to (-pi, pi]
	Velocity float64 // longitudinal speed (m/s); negative means reverse
	Steer    float64 // steering angle applied on the last step (rad)
	YawRate  float64 // heading rate on the last step (rad/s)
}

// InvalidSteeringError reports a steering command outside the configured
// bound by more than the numerical tolerance.
type InvalidSteeringError struct {
	Steering float64
	MaxSteer float64
}

func (e *InvalidSteeringError) Error() string {
	return fmt.Sprintf("steering command %.6f rad exceeds bound %.6f rad", e.Steering, e.MaxSteer)
}

// NormalizeAngle wraps an angle into (-pi, pi].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// Step advances the state by one timestep under the given steering command
// and throttle. Position and yaw are integrated with the pre-update velocity
// and yaw (pure explicit Euler on the old state), then velocity is advanced.
//
// Net acceleration is throttle minus rolling resistance (c_r·v) minus
// aerodynamic drag (c_a·v·|v|); the drag term uses v·|v| rather than v² so
// resistance always opposes the direction of motion, including in reverse.
// The returned float64 is that net acceleration, for diagnostics.
//
// Steering is expected pre-clamped by the controller; commands beyond
// MaxSteer (plus tolerance) return an InvalidSteeringError.
func Step(p Params, s State, steering, throttle float64) (State, float64, error) {
	if math.Abs(steering) > p.MaxSteer+steerTolerance {
		return s, 0, &InvalidSteeringError{Steering: steering, MaxSteer: p.MaxSteer}
	}

	accel := throttle - p.RollingResistance*s.Velocity - p.AeroDrag*s.Velocity*math.Abs(s.Velocity)
	yawRate := s.Velocity * math.Tan(steering) / p.Wheelbase

	next := State{
		X:        s.X + s.Velocity*math.Cos(s.Yaw)*p.Timestep,
		Y:        s.Y + s.Velocity*math.Sin(s.Yaw)*p.Timestep,
		Yaw:      NormalizeAngle(s.Yaw + yawRate*p.Timestep),
		Velocity: s.Velocity + accel*p.Timestep,
		Steer:    steering,
		YawRate:  yawRate,
	}
	return next, accel, nil
}
