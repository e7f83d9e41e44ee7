// Package telemetry records simulation runs to sqlite so finished runs can
// be inspected and compared after the fact. One row per run, one row per
// tick; the schema lives in the migrations directory.
package telemetry

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/pathtrack/internal/sim"
)

// Store wraps the sqlite database holding run telemetry.
type Store struct {
	*sql.DB
}

// NewStore opens (or creates) the sqlite database at path. Run Migrate
// before recording.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry db: %w", err)
	}
	return &Store{db}, nil
}

// Run summarises one recorded simulation run.
type Run struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	Waypoints   int       `json:"waypoints"`
	PathSamples int       `json:"path_samples"`
	Timestep    float64   `json:"timestep"`
	Ticks       int       `json:"ticks"`
}

// BeginRun inserts a new run row and returns its id.
func (s *Store) BeginRun(waypoints, pathSamples int, timestep float64) (string, error) {
	runID := fmt.Sprintf("run_%s", uuid.NewString())
	_, err := s.Exec(
		`INSERT INTO runs (run_id, started_at, waypoints, path_samples, timestep, ticks)
		 VALUES (?, ?, ?, ?, ?, 0)`,
		runID, time.Now().UTC(), waypoints, pathSamples, timestep,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordTicks appends a batch of snapshots to the run inside one
// transaction and bumps the run's tick count.
func (s *Store) RecordTicks(runID string, snaps []sim.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	tx, err := s.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO ticks (run_id, tick, sim_time, x, y, yaw, velocity, steer,
			yaw_rate, acceleration, crosstrack, target_index)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare tick insert: %w", err)
	}
	defer stmt.Close()

	for _, snap := range snaps {
		if _, err := stmt.Exec(
			runID, snap.Tick, snap.Time, snap.X, snap.Y, snap.Yaw, snap.Velocity,
			snap.Steer, snap.YawRate, snap.Acceleration, snap.CrossTrack, snap.TargetIndex,
		); err != nil {
			return fmt.Errorf("failed to insert tick %d: %w", snap.Tick, err)
		}
	}

	if _, err := tx.Exec(
		`UPDATE runs SET ticks = (SELECT COUNT(*) FROM ticks WHERE run_id = ?) WHERE run_id = ?`,
		runID, runID,
	); err != nil {
		return fmt.Errorf("failed to update run tick count: %w", err)
	}

	return tx.Commit()
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.Query(
		`SELECT run_id, started_at, waypoints, path_samples, timestep, ticks
		 FROM runs ORDER BY started_at DESC LIMIT 100`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.Waypoints, &r.PathSamples, &r.Timestep, &r.Ticks); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// Ticks returns the recorded snapshots of a run in tick order.
func (s *Store) Ticks(runID string) ([]sim.Snapshot, error) {
	rows, err := s.Query(
		`SELECT tick, sim_time, x, y, yaw, velocity, steer, yaw_rate,
			acceleration, crosstrack, target_index
		 FROM ticks WHERE run_id = ? ORDER BY tick ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []sim.Snapshot
	for rows.Next() {
		var snap sim.Snapshot
		if err := rows.Scan(
			&snap.Tick, &snap.Time, &snap.X, &snap.Y, &snap.Yaw, &snap.Velocity,
			&snap.Steer, &snap.YawRate, &snap.Acceleration, &snap.CrossTrack, &snap.TargetIndex,
		); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snaps, nil
}
