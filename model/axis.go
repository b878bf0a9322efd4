package model

import "fmt"

// AxisSelect identifies one of the telescope's two rotational axes.
type AxisSelect int

const (
	// Azimuth is the horizontal, fully wrapping axis.
	Azimuth AxisSelect = iota
	// Elevation is the vertical, hard-limited axis.
	Elevation
)

func (a AxisSelect) String() string {
	switch a {
	case Azimuth:
		return "azimuth"
	case Elevation:
		return "elevation"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// AxisProfile is the static per-axis drive configuration. It is created once
// at configuration time and never mutated for the duration of a session.
//
// All angles are degrees, speeds deg/s, accelerations deg/s².
type AxisProfile struct {
	// MaxSpeed is the cruise speed ceiling, > 0.
	MaxSpeed float64
	// Acceleration is the ramp-up rate, > 0.
	Acceleration float64
	// Deceleration is the ramp-down rate for normal moves, > 0.
	Deceleration float64
	// MinAngle and MaxAngle bound travel for clamped axes. They are ignored
	// when Wraps is true.
	MinAngle float64
	MaxAngle float64
	// Wraps selects the range policy: a wrapping axis takes its angle mod 360,
	// a clamped axis is held inside [MinAngle, MaxAngle].
	Wraps bool
}

// Validate reports whether the profile describes a usable drive.
func (p AxisProfile) Validate() error {
	if p.MaxSpeed <= 0 {
		return fmt.Errorf("axis profile: max speed must be > 0, got %g", p.MaxSpeed)
	}
	if p.Acceleration <= 0 {
		return fmt.Errorf("axis profile: acceleration must be > 0, got %g", p.Acceleration)
	}
	if p.Deceleration <= 0 {
		return fmt.Errorf("axis profile: deceleration must be > 0, got %g", p.Deceleration)
	}
	if !p.Wraps && p.MinAngle >= p.MaxAngle {
		return fmt.Errorf("axis profile: min angle %g must be below max angle %g", p.MinAngle, p.MaxAngle)
	}
	return nil
}

// AxisState is the mutable runtime state of one axis. It is owned and updated
// by the axis controller once per tick; everyone else reads copies.
//
// Invariant: Moving ⇔ Speed != 0. PositiveMotion is only meaningful while
// Moving. For a clamped axis the angle never leaves [MinAngle, MaxAngle].
type AxisState struct {
	// Angle is the current position in degrees (internal frame).
	Angle float64
	// Speed is the signed current speed in deg/s; its sign is the direction
	// of travel.
	Speed float64

	Moving         bool
	PositiveMotion bool
	Accelerating   bool
	Decelerating   bool

	// Homed records that the axis has completed a homing run since the last
	// move, making its reported position a trusted absolute origin.
	Homed bool
}
