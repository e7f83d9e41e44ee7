// Package config loads simulation parameters from JSON. Fields omitted from
// the file keep their defaults, so partial configs are safe; the Get*
// accessors are the single source of default values.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/pathtrack/internal/control"
	"github.com/banshee-data/pathtrack/internal/vehicle"
)

// DefaultConfigPath is the path to the canonical simulation defaults file.
const DefaultConfigPath = "config/sim.defaults.json"

// SimConfig represents the root simulation configuration. Pointer fields
// distinguish "omitted" from zero values.
type SimConfig struct {
	// Controller params
	Gain          *float64 `json:"gain,omitempty"`
	Softening     *float64 `json:"softening,omitempty"`
	YawRateGain   *float64 `json:"yaw_rate_gain,omitempty"`
	SteerRateGain *float64 `json:"steer_rate_gain,omitempty"`

	// Vehicle params
	WheelbaseMeters   *float64 `json:"wheelbase_meters,omitempty"`
	MaxSteerDegrees   *float64 `json:"max_steer_degrees,omitempty"`
	RollingResistance *float64 `json:"rolling_resistance,omitempty"`
	AeroDrag          *float64 `json:"aero_drag,omitempty"`
	TimestepSeconds   *float64 `json:"timestep_seconds,omitempty"`

	// Course params
	SampleStepMeters *float64 `json:"sample_step_meters,omitempty"`

	// Run params
	Ticks       *int     `json:"ticks,omitempty"`
	ThrottleMin *float64 `json:"throttle_min,omitempty"`
	ThrottleMax *float64 `json:"throttle_max,omitempty"`
	Seed        *int64   `json:"seed,omitempty"`
}

// EmptySimConfig returns a SimConfig with all fields unset.
func EmptySimConfig() *SimConfig {
	return &SimConfig{}
}

// LoadSimConfig loads a SimConfig from a JSON file. The file must have a
// .json extension and stay under the max file size.
func LoadSimConfig(path string) (*SimConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptySimConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and common parent directories. Panics if
// the file cannot be loaded; intended for test setup.
func MustLoadDefaultConfig() *SimConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadSimConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are usable.
func (c *SimConfig) Validate() error {
	if c.WheelbaseMeters != nil && *c.WheelbaseMeters <= 0 {
		return fmt.Errorf("wheelbase_meters must be positive, got %f", *c.WheelbaseMeters)
	}
	if c.MaxSteerDegrees != nil && (*c.MaxSteerDegrees <= 0 || *c.MaxSteerDegrees >= 90) {
		return fmt.Errorf("max_steer_degrees must be in (0, 90), got %f", *c.MaxSteerDegrees)
	}
	if c.TimestepSeconds != nil && *c.TimestepSeconds <= 0 {
		return fmt.Errorf("timestep_seconds must be positive, got %f", *c.TimestepSeconds)
	}
	if c.SampleStepMeters != nil && *c.SampleStepMeters <= 0 {
		return fmt.Errorf("sample_step_meters must be positive, got %f", *c.SampleStepMeters)
	}
	if c.Ticks != nil && *c.Ticks < 0 {
		return fmt.Errorf("ticks must be non-negative, got %d", *c.Ticks)
	}
	if c.ThrottleMin != nil && c.ThrottleMax != nil && *c.ThrottleMin > *c.ThrottleMax {
		return fmt.Errorf("throttle_min %f exceeds throttle_max %f", *c.ThrottleMin, *c.ThrottleMax)
	}
	return nil
}

// GetGain returns the cross-track gain k or the default.
func (c *SimConfig) GetGain() float64 {
	if c.Gain == nil {
		return 8.0
	}
	return *c.Gain
}

// GetSoftening returns the softening constant ksoft or the default.
func (c *SimConfig) GetSoftening() float64 {
	if c.Softening == nil {
		return 1.0
	}
	return *c.Softening
}

// GetYawRateGain returns the yaw-rate damping gain or the default.
func (c *SimConfig) GetYawRateGain() float64 {
	if c.YawRateGain == nil {
		return 0.01
	}
	return *c.YawRateGain
}

// GetSteerRateGain returns the steering-rate gain or the default.
func (c *SimConfig) GetSteerRateGain() float64 {
	if c.SteerRateGain == nil {
		return 0
	}
	return *c.SteerRateGain
}

// GetWheelbaseMeters returns the wheelbase or the default.
func (c *SimConfig) GetWheelbaseMeters() float64 {
	if c.WheelbaseMeters == nil {
		return 2.96
	}
	return *c.WheelbaseMeters
}

// GetMaxSteerRadians returns the steering bound converted to radians.
func (c *SimConfig) GetMaxSteerRadians() float64 {
	deg := 33.0
	if c.MaxSteerDegrees != nil {
		deg = *c.MaxSteerDegrees
	}
	return deg * math.Pi / 180
}

// GetRollingResistance returns c_r or the default.
func (c *SimConfig) GetRollingResistance() float64 {
	if c.RollingResistance == nil {
		return 0.01
	}
	return *c.RollingResistance
}

// GetAeroDrag returns c_a or the default.
func (c *SimConfig) GetAeroDrag() float64 {
	if c.AeroDrag == nil {
		return 2.0
	}
	return *c.AeroDrag
}

// GetTimestepSeconds returns dt or the default (50 Hz).
func (c *SimConfig) GetTimestepSeconds() float64 {
	if c.TimestepSeconds == nil {
		return 0.02
	}
	return *c.TimestepSeconds
}

// GetSampleStepMeters returns the path sampling interval ds or the default.
func (c *SimConfig) GetSampleStepMeters() float64 {
	if c.SampleStepMeters == nil {
		return 0.05
	}
	return *c.SampleStepMeters
}

// GetTicks returns the number of simulation ticks or the default.
func (c *SimConfig) GetTicks() int {
	if c.Ticks == nil {
		return 2500
	}
	return *c.Ticks
}

// GetThrottleMin returns the lower throttle bound or the default.
func (c *SimConfig) GetThrottleMin() float64 {
	if c.ThrottleMin == nil {
		return 150
	}
	return *c.ThrottleMin
}

// GetThrottleMax returns the upper throttle bound or the default.
func (c *SimConfig) GetThrottleMax() float64 {
	if c.ThrottleMax == nil {
		return 200
	}
	return *c.ThrottleMax
}

// GetSeed returns the throttle policy seed or the default.
func (c *SimConfig) GetSeed() int64 {
	if c.Seed == nil {
		return 1
	}
	return *c.Seed
}

// ControlParams assembles the controller configuration.
func (c *SimConfig) ControlParams() control.Params {
	return control.Params{
		Gain:          c.GetGain(),
		Softening:     c.GetSoftening(),
		YawRateGain:   c.GetYawRateGain(),
		SteerRateGain: c.GetSteerRateGain(),
		MaxSteer:      c.GetMaxSteerRadians(),
		Wheelbase:     c.GetWheelbaseMeters(),
	}
}

// VehicleParams assembles the vehicle configuration.
func (c *SimConfig) VehicleParams() vehicle.Params {
	return vehicle.Params{
		Wheelbase:         c.GetWheelbaseMeters(),
		MaxSteer:          c.GetMaxSteerRadians(),
		RollingResistance: c.GetRollingResistance(),
		AeroDrag:          c.GetAeroDrag(),
		Timestep:          c.GetTimestepSeconds(),
	}
}
