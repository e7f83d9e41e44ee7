// Package sim owns the control loop: once per tick it asks the lateral
// controller for a steering command and then advances the vehicle model, in
// that fixed order. Execution is single-threaded and synchronous; each tick
// is atomic with respect to the state it touches, so cancellation simply
// stops issuing ticks.
package sim

import (
	"context"

	"github.com/banshee-data/pathtrack/internal/control"
	"github.com/banshee-data/pathtrack/internal/course"
	"github.com/banshee-data/pathtrack/internal/vehicle"
)

// Phase is the loop lifecycle state.
type Phase string

const (
	// PhaseReady means the path and vehicle are initialised and no tick has run.
	PhaseReady Phase = "ready"
	// PhaseRunning means at least one tick has executed. The loop stays in
	// this phase until the host stops issuing ticks; there is no terminal
	// phase inside the core.
	PhaseRunning Phase = "running"
)

// Snapshot is the per-tick surface handed to the host: the pose and speed for
// rendering, the cross-track error for diagnostics, and the target index for
// highlighting the tracked path sample.
type Snapshot struct {
	Tick         int
	Time         float64 // sim time at the end of the tick (s)
	X            float64
	Y            float64
	Yaw          float64
	Velocity     float64
	Steer        float64
	YawRate      float64
	Acceleration float64
	CrossTrack   float64
	TargetIndex  int
}

// Loop drives one vehicle against one immutable path. The loop owns the
// mutable vehicle state exclusively; the path is read-only shared data, so
// several loops may simulate independent vehicles against the same path.
type Loop struct {
	path  *course.Path
	ctrl  control.Params
	veh   vehicle.Params
	state vehicle.State
	phase Phase
	tick  int
}

// New builds a loop in the READY phase.
func New(path *course.Path, ctrl control.Params, veh vehicle.Params, initial vehicle.State) *Loop {
	return &Loop{
		path:  path,
		ctrl:  ctrl,
		veh:   veh,
		state: initial,
		phase: PhaseReady,
	}
}

// Phase returns the current lifecycle phase.
func (l *Loop) Phase() Phase { return l.phase }

// State returns a copy of the current vehicle state.
func (l *Loop) State() vehicle.State { return l.state }

// Path returns the immutable reference path the loop tracks.
func (l *Loop) Path() *course.Path { return l.path }

// Tick runs one controller-then-model step with the given throttle and
// returns the resulting snapshot. The first call moves the loop from READY
// to RUNNING. On error the vehicle state is left unchanged.
func (l *Loop) Tick(throttle float64) (Snapshot, error) {
	out, err := control.SteeringCommand(l.ctrl, l.path, l.state)
	if err != nil {
		return Snapshot{}, err
	}

	next, accel, err := vehicle.Step(l.veh, l.state, out.Steering, throttle)
	if err != nil {
		return Snapshot{}, err
	}

	l.phase = PhaseRunning
	l.state = next
	l.tick++

	return Snapshot{
		Tick:         l.tick,
		Time:         float64(l.tick) * l.veh.Timestep,
		X:            next.X,
		Y:            next.Y,
		Yaw:          next.Yaw,
		Velocity:     next.Velocity,
		Steer:        next.Steer,
		YawRate:      next.YawRate,
		Acceleration: accel,
		CrossTrack:   out.CrossTrack,
		TargetIndex:  out.TargetIndex,
	}, nil
}

// Run issues up to n ticks, drawing throttle from the policy, and passes
// every snapshot to observe (which may be nil). It returns early with
// ctx.Err() if the context is cancelled between ticks, or with the first
// error from a tick or the observer.
func (l *Loop) Run(ctx context.Context, n int, policy ThrottlePolicy, observe func(Snapshot) error) error {
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		snap, err := l.Tick(policy.Throttle(i))
		if err != nil {
			return err
		}
		if observe != nil {
			if err := observe(snap); err != nil {
				return err
			}
		}
	}
	return nil
}
