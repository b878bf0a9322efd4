package motion

import (
	"math"

	"github.com/JordanK1ng/TelescopeVisualization/model"
)

// defaultEpsilon is the arrival threshold in degrees: a remaining distance at
// or below it is treated as arrived, preventing perpetual micro-jitter from
// floating-point remainders.
const defaultEpsilon = 0.001

// AxisController advances one axis through a single tick: speed shaping via
// ShiftSpeed, position update via the range policy, limit-stall detection,
// epsilon snapping, and homed bookkeeping. It owns the axis's AxisState.
//
// There is no fatal error path. Every anomaly is absorbed into flags and
// events and each tick yields a valid next state.
type AxisController struct {
	axis    model.AxisSelect
	profile model.AxisProfile
	rng     RangePolicy
	state   model.AxisState
	events  EventSink
	epsilon float64
}

// NewAxisController builds a controller for one axis, seeded at the given
// initial angle (internal frame).
func NewAxisController(axis model.AxisSelect, profile model.AxisProfile, rp RangePolicy, initialAngle float64, events EventSink) *AxisController {
	if events == nil {
		events = NoopSink()
	}
	return &AxisController{
		axis:    axis,
		profile: profile,
		rng:     rp,
		state:   model.AxisState{Angle: initialAngle},
		events:  events,
		epsilon: defaultEpsilon,
	}
}

// State returns a copy of the axis's current runtime state.
func (c *AxisController) State() model.AxisState { return c.state }

// Profile returns the axis's static configuration.
func (c *AxisController) Profile() model.AxisProfile { return c.profile }

// Range returns the axis's range policy.
func (c *AxisController) Range() RangePolicy { return c.rng }

// Advance runs one tick for the axis. req is this axis's view of the command;
// jog, stop and home are the shared command flags as they apply to this axis.
// dt is elapsed seconds since the previous tick.
func (c *AxisController) Advance(req model.AxisRequest, jog, stop, home bool, dt float64) model.AxisResult {
	remaining := req.Delta
	var moved float64
	var stalled bool

	// Shift speed whenever there is distance left to cover or the axis is
	// still turning, so an axis whose remainder was zeroed (a stop, say) can
	// still decelerate to a full rest.
	if remaining != 0 || c.state.Speed != 0 {
		c.state.Speed, c.state.Accelerating, c.state.Decelerating = ShiftSpeed(SpeedInput{
			Remaining:   remaining,
			CachedDelta: req.CachedDelta,
			Speed:       c.state.Speed,
			Jog:         jog,
			Stop:        stop,
		}, c.profile, dt)
	}

	if c.state.Speed != 0 {
		var next float64
		next, moved = MoveAxis(c.state.Angle, c.state.Speed, dt, c.rng)
		c.state.Angle = next
		remaining -= moved

		if moved == 0 && c.rng.AtLimit(c.state.Angle, c.state.Speed > 0, c.epsilon) {
			// Stall at limit: the bound is a hard mechanical stop.
			c.events.Emit(Event{Kind: EventLimitContact, Axis: c.axis, Value: c.state.Angle})
			c.state.Speed = 0
			c.state.Accelerating = false
			c.state.Decelerating = false
			stalled = true
		}

		if r := math.Abs(remaining); r > 0 && r <= c.epsilon {
			c.events.Emit(Event{Kind: EventResidueDiscarded, Axis: c.axis, Value: remaining})
			remaining = 0
		}
	}

	c.state.Moving = c.state.Speed != 0
	c.state.PositiveMotion = c.state.Speed > 0

	switch {
	case home && !c.state.Moving:
		if !c.state.Homed {
			c.events.Emit(Event{Kind: EventHomeCompleted, Axis: c.axis, Value: c.state.Angle})
		}
		c.state.Homed = true
	case !home && moved != 0:
		c.state.Homed = false
	}

	return model.AxisResult{
		Delta:       remaining,
		CachedDelta: req.CachedDelta,
		Moved:       moved,
		Stalled:     stalled,
	}
}
