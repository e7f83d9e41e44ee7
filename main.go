// Command pathtrack simulates a ground vehicle tracking a waypoint course
// with a Stanley lateral controller and a kinematic bicycle model. Each run
// is recorded to sqlite; finished runs can be rendered to PNG plots or
// inspected through the monitor HTTP server.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/banshee-data/pathtrack/internal/config"
	"github.com/banshee-data/pathtrack/internal/course"
	"github.com/banshee-data/pathtrack/internal/monitor"
	"github.com/banshee-data/pathtrack/internal/render"
	"github.com/banshee-data/pathtrack/internal/sim"
	"github.com/banshee-data/pathtrack/internal/telemetry"
	"github.com/banshee-data/pathtrack/internal/units"
	"github.com/banshee-data/pathtrack/internal/vehicle"
)

var (
	waypointsFile = flag.String("waypoints", "data/waypoints.csv", "Waypoint CSV file (header row, x and y columns)")
	configFile    = flag.String("config", "", "Simulation config JSON (defaults used when empty)")
	ticksFlag     = flag.Int("ticks", 0, "Number of ticks to simulate (0 = config default)")
	dbFile        = flag.String("db", "pathtrack.db", "Telemetry sqlite database")
	migrationsDir = flag.String("migrations", "migrations", "Telemetry schema migrations directory")
	plotsDir      = flag.String("plots", "", "Directory for run PNG plots (skipped when empty)")
	listen        = flag.String("listen", "", "Monitor HTTP listen address (serves after the run when set)")
	speedUnits    = flag.String("units", units.MPS, "Display units for logged speed")
	throttleFlag  = flag.Float64("throttle", 0, "Fixed throttle (0 = uniform policy from config)")
)

// logEvery controls how often tick diagnostics are logged.
const logEvery = 100

func main() {
	flag.Parse()

	if !units.IsValid(*speedUnits) {
		log.Fatalf("invalid units %q, want one of: %s", *speedUnits, units.ValidUnitsString())
	}

	cfg := config.EmptySimConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.LoadSimConfig(*configFile)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	waypoints, err := course.LoadWaypoints(*waypointsFile)
	if err != nil {
		log.Fatalf("failed to load waypoints: %v", err)
	}

	path, err := course.Generate(waypoints, cfg.GetSampleStepMeters())
	if err != nil {
		log.Fatalf("failed to generate course: %v", err)
	}
	log.Printf("course: %d waypoints -> %d samples over %.1f m", len(waypoints), path.Len(), path.Total())

	store, err := telemetry.NewStore(*dbFile)
	if err != nil {
		log.Fatalf("failed to open telemetry store: %v", err)
	}
	defer store.Close()
	if err := store.MigrateUp(*migrationsDir); err != nil {
		log.Fatalf("failed to migrate telemetry store: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snaps, err := runSimulation(ctx, cfg, len(waypoints), path, store)
	if err != nil && err != context.Canceled {
		log.Fatalf("simulation failed: %v", err)
	}

	if *plotsDir != "" && len(snaps) > 0 {
		desc := vehicle.DefaultDescription(cfg.GetWheelbaseMeters())
		n, err := render.SaveRunPlots(*plotsDir, path, snaps, desc)
		if err != nil {
			log.Fatalf("failed to render plots: %v", err)
		}
		log.Printf("wrote %d plots to %s", n, *plotsDir)
	}

	if *listen != "" && ctx.Err() == nil {
		ws := monitor.NewWebServer(monitor.WebServerConfig{
			Address: *listen,
			Store:   store,
			Path:    path,
		})
		if err := ws.Start(ctx); err != nil {
			log.Fatalf("monitor server: %v", err)
		}
	}
}

// runSimulation drives the control loop for the configured tick count (or
// until the context is cancelled), recording batches of snapshots to the
// store as it goes. It returns every snapshot of the run.
func runSimulation(ctx context.Context, cfg *config.SimConfig, waypointCount int, path *course.Path, store *telemetry.Store) ([]sim.Snapshot, error) {
	// The vehicle starts on the first path sample, facing along it.
	start := path.Samples[0]
	initial := vehicle.State{X: start.X, Y: start.Y, Yaw: start.Yaw}
	loop := sim.New(path, cfg.ControlParams(), cfg.VehicleParams(), initial)

	var policy sim.ThrottlePolicy
	if *throttleFlag > 0 {
		policy = sim.FixedThrottle(*throttleFlag)
	} else {
		policy = sim.NewUniformThrottle(cfg.GetThrottleMin(), cfg.GetThrottleMax(), cfg.GetSeed())
	}

	ticks := cfg.GetTicks()
	if *ticksFlag > 0 {
		ticks = *ticksFlag
	}

	runID, err := store.BeginRun(waypointCount, path.Len(), cfg.GetTimestepSeconds())
	if err != nil {
		return nil, err
	}
	log.Printf("recording run %s (%d ticks)", runID, ticks)

	const flushEvery = 500
	snaps := make([]sim.Snapshot, 0, ticks)
	pending := make([]sim.Snapshot, 0, flushEvery)

	runErr := loop.Run(ctx, ticks, policy, func(snap sim.Snapshot) error {
		snaps = append(snaps, snap)
		pending = append(pending, snap)
		if len(pending) >= flushEvery {
			if err := store.RecordTicks(runID, pending); err != nil {
				return err
			}
			pending = pending[:0]
		}
		if snap.Tick%logEvery == 0 {
			log.Printf("tick %5d  t=%6.2fs  crosstrack=%+.3f m  speed=%.2f %s",
				snap.Tick, snap.Time, snap.CrossTrack,
				units.ConvertSpeed(snap.Velocity, *speedUnits), *speedUnits)
		}
		return nil
	})

	if len(pending) > 0 {
		if err := store.RecordTicks(runID, pending); err != nil && runErr == nil {
			runErr = err
		}
	}
	return snaps, runErr
}
