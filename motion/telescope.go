package motion

import (
	"fmt"
	"math"

	"github.com/JordanK1ng/TelescopeVisualization/internal/logging"
	"github.com/JordanK1ng/TelescopeVisualization/model"
)

// jogStep is the synthetic per-tick delta, in degrees, re-issued for the
// selected axis while a jog is held. The jog flag also pins the move's
// progress at zero, so a held jog ramps up and cruises like the opening half
// of an ordinary move.
const jogStep = 1.0

// Config assembles the static configuration of both axes. Elevation angles
// are given in the physical frame; the calibration offset reconciles the
// simulation's internal zero with the physically reported zero.
type Config struct {
	Azimuth   model.AxisProfile
	Elevation model.AxisProfile

	// ElevationOffset is added to physical elevation angles to obtain the
	// internal frame, and subtracted again on the way out.
	ElevationOffset float64

	// InitialAzimuth and InitialElevation seed the axes at startup, physical
	// frame.
	InitialAzimuth   float64
	InitialElevation float64
}

// Validate checks both axis profiles.
func (c Config) Validate() error {
	if err := c.Azimuth.Validate(); err != nil {
		return fmt.Errorf("azimuth: %w", err)
	}
	if err := c.Elevation.Validate(); err != nil {
		return fmt.Errorf("elevation: %w", err)
	}
	return nil
}

// Option customises TelescopeController construction.
type Option func(*TelescopeController)

// WithEventSink routes the controllers' diagnostic events into sink.
func WithEventSink(sink EventSink) Option {
	return func(t *TelescopeController) {
		if sink != nil {
			t.events = sink
		}
	}
}

// WithLogger attaches a structured logger; events are mirrored into it in
// addition to any configured sink.
func WithLogger(log logging.Logger) Option {
	return func(t *TelescopeController) {
		if log != nil {
			t.log = log
		}
	}
}

// TelescopeController composes the two axis controllers, applies one
// MotionCommand per tick, and exposes consolidated read-only state for
// display and telemetry. It is single-threaded by contract: exactly one Tick
// call per external frame, no concurrent mutation.
type TelescopeController struct {
	az *AxisController
	el *AxisController

	elOffset float64

	events EventSink
	log    logging.Logger

	// Pending remainders from the last tick, kept for target reporting.
	azRemaining float64
	elRemaining float64

	executingRelativeMove bool
	invalidAzimuth        bool
	invalidElevation      bool
	invalidInput          bool
}

// NewTelescopeController builds the two-axis controller from cfg.
func NewTelescopeController(cfg Config, opts ...Option) (*TelescopeController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &TelescopeController{
		elOffset: cfg.ElevationOffset,
		events:   NoopSink(),
		log:      logging.Noop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	sink := MultiSink(t.events, NewLogSink(t.log))

	elProfile := cfg.Elevation
	elProfile.MinAngle += cfg.ElevationOffset
	elProfile.MaxAngle += cfg.ElevationOffset

	t.az = NewAxisController(
		model.Azimuth,
		cfg.Azimuth,
		Wrapping{},
		normalizeDegrees(cfg.InitialAzimuth),
		sink,
	)
	t.el = NewAxisController(
		model.Elevation,
		elProfile,
		Clamped{Min: elProfile.MinAngle, Max: elProfile.MaxAngle},
		cfg.InitialElevation+cfg.ElevationOffset,
		sink,
	)
	return t, nil
}

// Tick applies one MotionCommand for one frame. dt is elapsed seconds since
// the previous tick; negative samples are treated as zero. The command is
// read-only; all updates flow back through the returned MotionResult.
func (t *TelescopeController) Tick(cmd model.MotionCommand, dt float64) model.MotionResult {
	if cmd.Ignore {
		return t.result(model.AxisResult{Delta: t.azRemaining}, model.AxisResult{Delta: t.elRemaining})
	}
	if dt < 0 {
		dt = 0
	}

	azReq := t.sanitize(model.Azimuth, cmd.Azimuth)
	elReq := t.sanitize(model.Elevation, cmd.Elevation)

	// A held jog re-issues a one-unit directional delta for the selected axis
	// every tick, producing continuous motion for as long as it is asserted.
	if cmd.Jog {
		step := jogStep
		if !cmd.JogPositive {
			step = -jogStep
		}
		if cmd.JogAxis == model.Elevation {
			elReq = model.AxisRequest{Delta: step, CachedDelta: step}
		} else {
			azReq = model.AxisRequest{Delta: step, CachedDelta: step}
		}
	}

	azRes := t.az.Advance(azReq, cmd.Jog && cmd.JogAxis == model.Azimuth, cmd.Stop, cmd.Home, dt)
	elRes := t.el.Advance(elReq, cmd.Jog && cmd.JogAxis == model.Elevation, cmd.Stop, cmd.Home, dt)

	// Limit-switch fault: the request keeps pushing an axis that already sits
	// at or beyond its bound. Checked even when motion is blocked so the
	// operator error stays visible.
	t.invalidInput = t.el.Range().Overruns(t.el.State().Angle, elReq.Delta, defaultEpsilon)
	if t.invalidInput {
		t.invalidElevation = true
	}

	if cmd.Home {
		if !t.az.State().Moving {
			t.invalidAzimuth = false
		}
		if !t.el.State().Moving {
			t.invalidElevation = false
		}
	}

	if cmd.RelativeMove {
		t.executingRelativeMove = true
	} else if !cmd.Stop {
		// A stop on its own must not clear the latch: the consumer still
		// needs to observe that a relative move was in flight.
		t.executingRelativeMove = false
	}

	t.azRemaining = azRes.Delta
	t.elRemaining = elRes.Delta
	return t.result(azRes, elRes)
}

// sanitize absorbs non-finite request deltas into the sticky position fault
// for the axis instead of propagating them through the kinematics.
func (t *TelescopeController) sanitize(axis model.AxisSelect, req model.AxisRequest) model.AxisRequest {
	if math.IsNaN(req.Delta) || math.IsInf(req.Delta, 0) ||
		math.IsNaN(req.CachedDelta) || math.IsInf(req.CachedDelta, 0) {
		if axis == model.Elevation {
			t.invalidElevation = true
		} else {
			t.invalidAzimuth = true
		}
		return model.AxisRequest{}
	}
	return req
}

func (t *TelescopeController) result(az, el model.AxisResult) model.MotionResult {
	return model.MotionResult{
		Azimuth:                  az,
		Elevation:                el,
		InvalidInput:             t.invalidInput,
		InvalidAzimuthPosition:   t.invalidAzimuth,
		InvalidElevationPosition: t.invalidElevation,
	}
}

// AzimuthAngle returns the current azimuth in [0, 360).
func (t *TelescopeController) AzimuthAngle() float64 { return t.az.State().Angle }

// ElevationAngle returns the current elevation in the physical frame.
func (t *TelescopeController) ElevationAngle() float64 {
	return t.el.State().Angle - t.elOffset
}

// ElevationOffset returns the calibration offset between the internal and
// physical elevation frames.
func (t *TelescopeController) ElevationOffset() float64 { return t.elOffset }

// TargetAzimuth returns where the azimuth axis is headed: the current angle
// plus the pending delta, wrapped into [0, 360).
func (t *TelescopeController) TargetAzimuth() float64 {
	return normalizeDegrees(t.az.State().Angle + t.azRemaining)
}

// TargetElevation returns where the elevation axis is headed, physical frame.
func (t *TelescopeController) TargetElevation() float64 {
	return t.el.State().Angle + t.elRemaining - t.elOffset
}

// ExecutingRelativeMove reports whether a relative move is still in flight.
func (t *TelescopeController) ExecutingRelativeMove() bool { return t.executingRelativeMove }

// AxisState returns a copy of the runtime state for the given axis, internal
// frame.
func (t *TelescopeController) AxisState(axis model.AxisSelect) model.AxisState {
	if axis == model.Elevation {
		return t.el.State()
	}
	return t.az.State()
}

// Status assembles the full read-only snapshot consumed by display and
// telemetry collaborators. Elevation values are offset-corrected.
func (t *TelescopeController) Status() model.TelescopeStatus {
	az := t.az.State()
	el := t.el.State()
	return model.TelescopeStatus{
		Azimuth: model.AxisStatus{
			Angle:          az.Angle,
			Speed:          az.Speed,
			Target:         t.TargetAzimuth(),
			Moving:         az.Moving,
			PositiveMotion: az.PositiveMotion,
			Accelerating:   az.Accelerating,
			Decelerating:   az.Decelerating,
			Homed:          az.Homed,
		},
		Elevation: model.AxisStatus{
			Angle:          el.Angle - t.elOffset,
			Speed:          el.Speed,
			Target:         t.TargetElevation(),
			Moving:         el.Moving,
			PositiveMotion: el.PositiveMotion,
			Accelerating:   el.Accelerating,
			Decelerating:   el.Decelerating,
			Homed:          el.Homed,
		},
		ExecutingRelativeMove:    t.executingRelativeMove,
		InvalidInput:             t.invalidInput,
		InvalidAzimuthPosition:   t.invalidAzimuth,
		InvalidElevationPosition: t.invalidElevation,
	}
}
