package model

// AxisRequest is the per-axis slice of a MotionCommand: how far the axis
// still has to travel and how long the move was when it started.
type AxisRequest struct {
	// Delta is the remaining signed distance to travel, in degrees. The
	// command source decrements it with the per-tick result as travel occurs.
	Delta float64
	// CachedDelta is Delta as it was when the current move began. It is the
	// denominator of the move's progress fraction and must be reset by the
	// command source whenever a new distinct move is issued.
	CachedDelta float64
}

// MotionCommand describes the requested motion for both axes for exactly one
// tick. The controller treats it as an immutable snapshot: it never writes to
// the command, and hands all updates back through a MotionResult that the
// command source merges before the next tick.
type MotionCommand struct {
	Azimuth   AxisRequest
	Elevation AxisRequest

	// Jog requests a continual directional move on JogAxis with no fixed
	// target; the controller re-synthesizes a one-degree delta for that axis
	// every tick for as long as Jog stays asserted.
	Jog         bool
	JogPositive bool
	JogAxis     AxisSelect

	// Home marks the current command as a homing run; an axis that comes to
	// rest while Home is asserted is marked homed.
	Home bool
	// Stop requests deceleration to zero speed along the current direction of
	// travel, regardless of any remaining delta.
	Stop bool
	// RelativeMove is asserted by the source while a relative move is being
	// executed; it drives the controller's executing-relative-move latch.
	RelativeMove bool
	// Ignore skips all processing for this tick.
	Ignore bool
}

// Request returns the AxisRequest addressed to the given axis.
func (c MotionCommand) Request(axis AxisSelect) AxisRequest {
	if axis == Elevation {
		return c.Elevation
	}
	return c.Azimuth
}

// AxisResult reports what one axis did during a tick.
type AxisResult struct {
	// Delta is the remaining distance after this tick's travel and epsilon
	// snapping; the command source stores it back into its next request.
	Delta float64
	// CachedDelta is carried through unchanged for the source's bookkeeping.
	CachedDelta float64
	// Moved is the actual angular displacement applied this tick, in degrees.
	Moved float64
	// Stalled reports that a clamped axis was driven into its limit and had
	// its speed forced to zero.
	Stalled bool
}

// MotionResult is the controller's per-tick output: the updated per-axis
// remainders plus the fault flags raised while applying the command.
type MotionResult struct {
	Azimuth   AxisResult
	Elevation AxisResult

	// InvalidInput is set when the elevation axis sits at or beyond a travel
	// bound and the requested delta would push it further out. It is
	// recomputed every tick so the operator error stays visible while the
	// request persists.
	InvalidInput bool

	// InvalidAzimuthPosition and InvalidElevationPosition mirror the
	// controller's sticky per-axis position faults, cleared only by a
	// completed homing run.
	InvalidAzimuthPosition   bool
	InvalidElevationPosition bool
}

// Result returns the AxisResult for the given axis.
func (r MotionResult) Result(axis AxisSelect) AxisResult {
	if axis == Elevation {
		return r.Elevation
	}
	return r.Azimuth
}
