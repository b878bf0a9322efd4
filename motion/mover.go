package motion

import "math"

// RangePolicy bounds one axis's travel. The two implementations, Wrapping and
// Clamped, are the only range behaviours the simulator models; the mover and
// controller are written once against this interface instead of duplicating
// azimuth and elevation variants.
type RangePolicy interface {
	// Move applies a signed displacement to the current angle and returns the
	// bounded new angle together with the displacement actually achieved.
	Move(current, displacement float64) (newAngle, moved float64)
	// AtLimit reports whether the angle sits within eps of the travel bound
	// active in the given direction. A wrapping axis has no limits.
	AtLimit(angle float64, positive bool, eps float64) bool
	// Overruns reports whether applying the requested delta from the given
	// angle would push past a bound. Always false for wrapping axes.
	Overruns(angle, delta, eps float64) bool
}

// Wrapping is the azimuth range policy: angles live in [0, 360) and motion
// passes freely through the 0/360 seam.
type Wrapping struct{}

func (Wrapping) Move(current, displacement float64) (float64, float64) {
	next := normalizeDegrees(current + displacement)
	// Per-tick displacement is small relative to a full turn, so the signed
	// shortest path between old and new angle is the displacement actually
	// applied, seam crossings included.
	moved := next - current
	if moved > 180 {
		moved -= 360
	} else if moved < -180 {
		moved += 360
	}
	return next, moved
}

func (Wrapping) AtLimit(float64, bool, float64) bool { return false }

func (Wrapping) Overruns(float64, float64, float64) bool { return false }

// Clamped is the elevation range policy: travel is hard-limited to
// [Min, Max] and the axis arrives exactly on a bound, never past it.
type Clamped struct {
	Min float64
	Max float64
}

func (c Clamped) Move(current, displacement float64) (float64, float64) {
	next := current + displacement
	if next > c.Max {
		next = c.Max
	} else if next < c.Min {
		next = c.Min
	}
	return next, next - current
}

func (c Clamped) AtLimit(angle float64, positive bool, eps float64) bool {
	if positive {
		return angle >= c.Max-eps
	}
	return angle <= c.Min+eps
}

func (c Clamped) Overruns(angle, delta, eps float64) bool {
	if delta > 0 {
		return angle >= c.Max-eps
	}
	if delta < 0 {
		return angle <= c.Min+eps
	}
	return false
}

// MoveAxis advances an axis position by one tick's worth of travel at the
// given speed and returns the bounded new angle plus the displacement
// actually applied. Callers showing a rendered axis must rotate it by the
// same displacement to keep model and display in sync.
func MoveAxis(angle, speed, dt float64, rp RangePolicy) (newAngle, moved float64) {
	return rp.Move(angle, speed*dt)
}

// normalizeDegrees maps an angle into [0, 360).
func normalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
