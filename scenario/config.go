// Package scenario loads observatory configuration and scripted command
// sequences from YAML, and plays scripts back as the external command source
// for the simulation loop.
package scenario

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JordanK1ng/TelescopeVisualization/model"
	"github.com/JordanK1ng/TelescopeVisualization/motion"
)

// AxisConfig is the YAML shape of one axis profile. Angles are physical
// degrees; elevation bounds are ignored for the wrapping azimuth axis.
type AxisConfig struct {
	MaxSpeed     float64 `yaml:"max_speed"`
	Acceleration float64 `yaml:"acceleration"`
	Deceleration float64 `yaml:"deceleration"`
	MinAngle     float64 `yaml:"min_angle"`
	MaxAngle     float64 `yaml:"max_angle"`
}

// TelescopeConfig mirrors motion.Config in YAML form.
type TelescopeConfig struct {
	Azimuth   AxisConfig `yaml:"azimuth"`
	Elevation AxisConfig `yaml:"elevation"`

	ElevationOffset  float64 `yaml:"elevation_offset"`
	InitialAzimuth   float64 `yaml:"initial_azimuth"`
	InitialElevation float64 `yaml:"initial_elevation"`

	HomeAzimuth   float64 `yaml:"home_azimuth"`
	HomeElevation float64 `yaml:"home_elevation"`
}

// ServerConfig configures the telemetry HTTP endpoint.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// ObserverConfig is the ground location used for satellite tracking.
type ObserverConfig struct {
	Latitude   float64 `yaml:"latitude"`
	Longitude  float64 `yaml:"longitude"`
	AltitudeKm float64 `yaml:"altitude_km"`
}

// TrackingConfig names a two-line-element target to follow.
type TrackingConfig struct {
	Name     string         `yaml:"name"`
	TLE1     string         `yaml:"tle1"`
	TLE2     string         `yaml:"tle2"`
	Observer ObserverConfig `yaml:"observer"`
}

// MoveStep commands a single-axis move. Degrees are relative by default;
// with Absolute set they name a physical-frame target angle.
type MoveStep struct {
	Axis     string  `yaml:"axis"`
	Degrees  float64 `yaml:"degrees"`
	Absolute bool    `yaml:"absolute"`
}

// JogStep holds a directional jog for the duration of its step.
type JogStep struct {
	Axis     string `yaml:"axis"`
	Positive bool   `yaml:"positive"`
}

// Step is one entry of the scripted command sequence. Exactly one of the
// action fields should be set; Hold is how long the step stays current, in
// seconds.
type Step struct {
	Hold   float64   `yaml:"hold"`
	Move   *MoveStep `yaml:"move,omitempty"`
	Jog    *JogStep  `yaml:"jog,omitempty"`
	Stop   bool      `yaml:"stop,omitempty"`
	Home   bool      `yaml:"home,omitempty"`
	Ignore bool      `yaml:"ignore,omitempty"`
}

// Config aggregates the full observatory scenario file.
type Config struct {
	Telescope TelescopeConfig `yaml:"telescope"`
	Server    ServerConfig    `yaml:"server"`
	Script    []Step          `yaml:"script"`
	Tracking  *TrackingConfig `yaml:"tracking,omitempty"`
}

// Load reads and validates a scenario from r.
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads and validates a scenario from a file path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario %q: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

func (c *Config) validate() error {
	applyAxisDefaults(&c.Telescope.Azimuth, 5, 2, 2)
	applyAxisDefaults(&c.Telescope.Elevation, 4, 1.5, 1.5)

	if c.Telescope.Elevation.MinAngle == 0 && c.Telescope.Elevation.MaxAngle == 0 {
		c.Telescope.Elevation.MinAngle = -8
		c.Telescope.Elevation.MaxAngle = 92
	}
	if c.Telescope.Elevation.MinAngle >= c.Telescope.Elevation.MaxAngle {
		return fmt.Errorf("elevation range [%g, %g] is empty",
			c.Telescope.Elevation.MinAngle, c.Telescope.Elevation.MaxAngle)
	}
	lo, hi := c.Telescope.Elevation.MinAngle, c.Telescope.Elevation.MaxAngle
	if el := c.Telescope.InitialElevation; el < lo || el > hi {
		return fmt.Errorf("initial_elevation %g outside elevation range [%g, %g]", el, lo, hi)
	}
	if el := c.Telescope.HomeElevation; el < lo || el > hi {
		return fmt.Errorf("home_elevation %g outside elevation range [%g, %g]", el, lo, hi)
	}
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}

	for i := range c.Script {
		step := &c.Script[i]
		if step.Hold <= 0 {
			return fmt.Errorf("script step %d: hold must be > 0 seconds", i)
		}
		if step.Move != nil {
			if _, err := ParseAxis(step.Move.Axis); err != nil {
				return fmt.Errorf("script step %d: %w", i, err)
			}
		}
		if step.Jog != nil {
			if _, err := ParseAxis(step.Jog.Axis); err != nil {
				return fmt.Errorf("script step %d: %w", i, err)
			}
		}
	}

	if c.Tracking != nil {
		if c.Tracking.TLE1 == "" || c.Tracking.TLE2 == "" {
			return fmt.Errorf("tracking target %q: both TLE lines are required", c.Tracking.Name)
		}
	}
	return nil
}

func applyAxisDefaults(a *AxisConfig, maxSpeed, accel, decel float64) {
	if a.MaxSpeed <= 0 {
		a.MaxSpeed = maxSpeed
	}
	if a.Acceleration <= 0 {
		a.Acceleration = accel
	}
	if a.Deceleration <= 0 {
		a.Deceleration = decel
	}
}

// MotionConfig converts the YAML telescope section into the motion package's
// configuration.
func (c *Config) MotionConfig() motion.Config {
	return motion.Config{
		Azimuth: model.AxisProfile{
			MaxSpeed:     c.Telescope.Azimuth.MaxSpeed,
			Acceleration: c.Telescope.Azimuth.Acceleration,
			Deceleration: c.Telescope.Azimuth.Deceleration,
			Wraps:        true,
		},
		Elevation: model.AxisProfile{
			MaxSpeed:     c.Telescope.Elevation.MaxSpeed,
			Acceleration: c.Telescope.Elevation.Acceleration,
			Deceleration: c.Telescope.Elevation.Deceleration,
			MinAngle:     c.Telescope.Elevation.MinAngle,
			MaxAngle:     c.Telescope.Elevation.MaxAngle,
		},
		ElevationOffset:  c.Telescope.ElevationOffset,
		InitialAzimuth:   c.Telescope.InitialAzimuth,
		InitialElevation: c.Telescope.InitialElevation,
	}
}

// ParseAxis maps a YAML axis name to the model enum.
func ParseAxis(name string) (model.AxisSelect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "azimuth", "az":
		return model.Azimuth, nil
	case "elevation", "el":
		return model.Elevation, nil
	default:
		return model.Azimuth, fmt.Errorf("unknown axis %q", name)
	}
}
