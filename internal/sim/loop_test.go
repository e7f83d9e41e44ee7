package sim

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pathtrack/internal/control"
	"github.com/banshee-data/pathtrack/internal/course"
	"github.com/banshee-data/pathtrack/internal/vehicle"
)

func testControlParams() control.Params {
	return control.Params{
		Gain:      8.0,
		Softening: 1.0,
		MaxSteer:  33 * math.Pi / 180,
		Wheelbase: 2.96,
	}
}

func testVehicleParams() vehicle.Params {
	return vehicle.Params{
		Wheelbase:         2.96,
		MaxSteer:          33 * math.Pi / 180,
		RollingResistance: 0.01,
		AeroDrag:          2.0,
		Timestep:          0.02,
	}
}

func straightPath(t *testing.T, length float64) *course.Path {
	t.Helper()
	waypoints := []course.Waypoint{
		{X: 0, Y: 0},
		{X: length / 4, Y: 0},
		{X: length / 2, Y: 0},
		{X: 3 * length / 4, Y: 0},
		{X: length, Y: 0},
	}
	path, err := course.Generate(waypoints, 0.1)
	require.NoError(t, err)
	return path
}

// holdSpeedThrottle balances the drag terms at the given speed, so a vehicle
// already at that speed stays there.
func holdSpeedThrottle(p vehicle.Params, speed float64) FixedThrottle {
	return FixedThrottle(p.RollingResistance*speed + p.AeroDrag*speed*math.Abs(speed))
}

func TestLoopPhases(t *testing.T) {
	t.Parallel()

	path := straightPath(t, 100)
	loop := New(path, testControlParams(), testVehicleParams(), vehicle.State{Velocity: 5})
	require.Equal(t, PhaseReady, loop.Phase())

	snap, err := loop.Tick(0)
	require.NoError(t, err)
	assert.Equal(t, PhaseRunning, loop.Phase())
	assert.Equal(t, 1, snap.Tick)
	assert.InDelta(t, 0.02, snap.Time, 1e-12)

	snap, err = loop.Tick(0)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Tick)
	assert.InDelta(t, 0.04, snap.Time, 1e-12)
}

func TestLoopTickOrder(t *testing.T) {
	t.Parallel()

	// The controller must see the pre-tick state: its command for an offset
	// start equals what a direct controller call on the initial state gives.
	path := straightPath(t, 100)
	initial := vehicle.State{X: 0, Y: 2, Yaw: 0, Velocity: 5}

	want, err := control.SteeringCommand(testControlParams(), path, initial)
	require.NoError(t, err)

	loop := New(path, testControlParams(), testVehicleParams(), initial)
	snap, err := loop.Tick(0)
	require.NoError(t, err)
	assert.InDelta(t, want.Steering, snap.Steer, 1e-12)
	assert.Equal(t, want.TargetIndex, snap.TargetIndex)
	assert.InDelta(t, want.CrossTrack, snap.CrossTrack, 1e-12)
}

func TestLoopTickErrorLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	initial := vehicle.State{X: 1, Y: 2, Velocity: 5}
	loop := New(&course.Path{}, testControlParams(), testVehicleParams(), initial)

	_, err := loop.Tick(0)
	var empty *control.EmptyPathError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, PhaseReady, loop.Phase())
	assert.Equal(t, initial, loop.State())
}

func TestLoopConvergesFromOffset(t *testing.T) {
	t.Parallel()

	// Start two metres off a straight course at constant speed: the
	// cross-track error must shrink toward zero without diverging.
	path := straightPath(t, 200)
	veh := testVehicleParams()
	loop := New(path, testControlParams(), veh, vehicle.State{X: 0, Y: 2, Yaw: 0, Velocity: 5})

	throttle := holdSpeedThrottle(veh, 5)
	var first, last Snapshot
	maxAbs := 0.0
	err := loop.Run(context.Background(), 800, throttle, func(s Snapshot) error {
		if s.Tick == 1 {
			first = s
		}
		last = s
		maxAbs = math.Max(maxAbs, math.Abs(s.CrossTrack))
		return nil
	})
	require.NoError(t, err)

	assert.InDelta(t, -2.0, first.CrossTrack, 0.05)
	assert.Less(t, math.Abs(last.CrossTrack), 0.05)
	// No divergence beyond a small overshoot of the initial offset.
	assert.Less(t, maxAbs, 2.5)
	// Speed stayed where the throttle pinned it.
	assert.InDelta(t, 5.0, last.Velocity, 0.1)
}

func TestLoopDeterministic(t *testing.T) {
	t.Parallel()

	path := straightPath(t, 200)
	run := func() []Snapshot {
		loop := New(path, testControlParams(), testVehicleParams(), vehicle.State{Y: 1, Velocity: 3})
		policy := NewUniformThrottle(150, 200, 42)
		var snaps []Snapshot
		err := loop.Run(context.Background(), 300, policy, func(s Snapshot) error {
			snaps = append(snaps, s)
			return nil
		})
		require.NoError(t, err)
		return snaps
	}

	a := run()
	b := run()
	require.Len(t, a, 300)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("identical seeded runs diverged (-first +second):\n%s", diff)
	}
}

func TestLoopRunCancelled(t *testing.T) {
	t.Parallel()

	path := straightPath(t, 100)
	loop := New(path, testControlParams(), testVehicleParams(), vehicle.State{Velocity: 5})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := loop.Run(ctx, 100, FixedThrottle(0), nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, PhaseReady, loop.Phase())
}

func TestLoopRunObserverError(t *testing.T) {
	t.Parallel()

	path := straightPath(t, 100)
	loop := New(path, testControlParams(), testVehicleParams(), vehicle.State{Velocity: 5})

	sentinel := assert.AnError
	ticks := 0
	err := loop.Run(context.Background(), 100, FixedThrottle(0), func(Snapshot) error {
		ticks++
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, ticks)
}

func TestUniformThrottleBounds(t *testing.T) {
	t.Parallel()

	policy := NewUniformThrottle(150, 200, 7)
	for i := 0; i < 1000; i++ {
		v := policy.Throttle(i)
		require.GreaterOrEqual(t, v, 150.0)
		require.Less(t, v, 200.0)
	}
}
