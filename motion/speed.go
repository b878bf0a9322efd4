package motion

import (
	"math"

	"github.com/JordanK1ng/TelescopeVisualization/model"
)

// stopDeceleration is the fixed ramp-down rate applied to operator stop
// requests, in deg/s². Stops deliberately use a gentler, profile-independent
// rate than the end-of-move deceleration.
const stopDeceleration = 0.9

// SpeedInput bundles the per-tick inputs to ShiftSpeed for one axis.
type SpeedInput struct {
	// Remaining is the signed distance still to travel, degrees.
	Remaining float64
	// CachedDelta is the signed distance of the move at its start; together
	// with Remaining it yields the progress fraction.
	CachedDelta float64
	// Speed is the axis's current signed speed, deg/s.
	Speed float64
	// Jog forces progress to zero: a held jog is an unbounded move that is
	// always treated as just starting.
	Jog bool
	// Stop forces progress to one and decelerates along the current
	// direction of travel at stopDeceleration.
	Stop bool
}

// ShiftSpeed computes the next-tick speed for one axis. It is pure: the same
// inputs always produce the same outputs and nothing is mutated.
//
// The first half of a commanded move always accelerates, which keeps ramps
// symmetric for any distance long enough for the ramp to matter. Past the
// halfway point the axis cruises until the kinematic stopping distance at the
// current speed reaches the remaining distance, then decelerates so that zero
// speed lands exactly on the target. An axis carried past its target, or at
// rest short of it with the ramp already spent, never cruises: it bleeds
// speed off, then creeps back onto the target.
func ShiftSpeed(in SpeedInput, p model.AxisProfile, dt float64) (speed float64, accelerating, decelerating bool) {
	sign := 1.0
	if in.Remaining <= 0 {
		sign = -1
	}
	rem := math.Abs(in.Remaining)

	progress := 1.0
	if rem > 0 && in.CachedDelta != 0 {
		progress = 1 - rem/math.Abs(in.CachedDelta)
	}
	if in.Jog {
		progress = 0
	}

	decel := p.Deceleration
	if in.Stop {
		progress = 1
		if in.Speed > 0 {
			sign = 1
		} else {
			sign = -1
		}
		decel = stopDeceleration
	}

	speed = in.Speed

	if progress <= 0.5 {
		speed += sign * p.Acceleration * dt
		if math.Abs(speed) > p.MaxSpeed {
			speed = sign * p.MaxSpeed
		}
		return speed, math.Abs(speed) != p.MaxSpeed, false
	}

	// Past halfway: cruise only while travelling toward the target outside
	// its stopping distance. speed*sign <= 0 catches both an overrun (the
	// remainder now points against the travel) and an axis at rest with
	// distance still left; cruising in either state never terminates.
	stopping := speed * speed / (2 * decel)
	if progress == 1 || speed*sign <= 0 || stopping >= rem || math.Abs(speed)*dt > rem {
		if speed == 0 {
			if in.Stop || rem == 0 {
				return 0, false, false
			}
			// At rest short of the target with the ramp already spent: creep
			// the final fraction so a discrete tick size cannot strand the
			// axis just outside the arrival epsilon.
			creep := math.Min(p.Acceleration*dt, rem/dt)
			return sign * creep, false, true
		}

		// Decelerate against the actual direction of travel. For a normal
		// end-of-move ramp this matches the sign of the remaining distance;
		// once the remainder has reached zero (stop, arrival with leftover
		// speed) only the velocity knows which way the axis is still turning.
		dir := 1.0
		if speed < 0 {
			dir = -1
		}
		speed -= dir * decel * dt
		if speed*dir <= 0 {
			speed = 0
		}

		// Exact landing: when one tick at the decremented speed would step
		// over the target, or the ramp bottomed out with distance left, pin
		// the speed so this tick's travel is the remaining distance itself.
		if !in.Stop && dir == sign && rem > 0 {
			if limit := rem / dt; speed*dir >= limit || speed == 0 {
				speed = dir * limit
			}
		}
		return speed, false, speed != 0
	}

	// Cruise: past halfway but not yet inside the stopping distance.
	return speed, false, false
}
