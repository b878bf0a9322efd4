package motion

import (
	"math"
	"testing"

	"github.com/JordanK1ng/TelescopeVisualization/model"
)

var testProfile = model.AxisProfile{
	MaxSpeed:     5,
	Acceleration: 2,
	Deceleration: 2,
	Wraps:        true,
}

func TestShiftSpeed_AcceleratesFromRest(t *testing.T) {
	speed, accelerating, decelerating := ShiftSpeed(SpeedInput{
		Remaining:   20,
		CachedDelta: 20,
		Speed:       0,
	}, testProfile, 0.1)

	if want := 0.2; math.Abs(speed-want) > 1e-12 {
		t.Fatalf("expected speed %g after first tick, got %g", want, speed)
	}
	if !accelerating || decelerating {
		t.Fatalf("expected accelerating=true decelerating=false, got %v/%v", accelerating, decelerating)
	}
}

func TestShiftSpeed_AcceleratesNegativeForNegativeMove(t *testing.T) {
	speed, accelerating, _ := ShiftSpeed(SpeedInput{
		Remaining:   -20,
		CachedDelta: -20,
		Speed:       0,
	}, testProfile, 0.1)

	if want := -0.2; math.Abs(speed-want) > 1e-12 {
		t.Fatalf("expected speed %g, got %g", want, speed)
	}
	if !accelerating {
		t.Fatalf("expected accelerating while ramping in the negative direction")
	}
}

func TestShiftSpeed_SnapsToMaxSpeed(t *testing.T) {
	speed, accelerating, _ := ShiftSpeed(SpeedInput{
		Remaining:   18,
		CachedDelta: 20,
		Speed:       4.9,
	}, testProfile, 0.1)

	if speed != testProfile.MaxSpeed {
		t.Fatalf("expected overshoot to snap to max speed %g, got %g", testProfile.MaxSpeed, speed)
	}
	if accelerating {
		t.Fatalf("an axis pinned at max speed must not report accelerating")
	}
}

func TestShiftSpeed_CruisesPastHalfway(t *testing.T) {
	// Past halfway, stopping distance 25/4 = 6.25 < 8 remaining: hold speed.
	speed, accelerating, decelerating := ShiftSpeed(SpeedInput{
		Remaining:   8,
		CachedDelta: 20,
		Speed:       5,
	}, testProfile, 0.1)

	if speed != 5 {
		t.Fatalf("expected cruise to hold speed 5, got %g", speed)
	}
	if accelerating || decelerating {
		t.Fatalf("cruise must report neither accelerating nor decelerating, got %v/%v", accelerating, decelerating)
	}
}

func TestShiftSpeed_DeceleratesInsideStoppingDistance(t *testing.T) {
	// Stopping distance 25/4 = 6.25 >= 6 remaining: ramp down.
	speed, accelerating, decelerating := ShiftSpeed(SpeedInput{
		Remaining:   6,
		CachedDelta: 20,
		Speed:       5,
	}, testProfile, 0.1)

	if want := 4.8; math.Abs(speed-want) > 1e-12 {
		t.Fatalf("expected speed %g while decelerating, got %g", want, speed)
	}
	if accelerating || !decelerating {
		t.Fatalf("expected accelerating=false decelerating=true, got %v/%v", accelerating, decelerating)
	}
}

func TestShiftSpeed_FinalStepLandsExactly(t *testing.T) {
	// The ramp-down from 0.1 deg/s bottoms out before covering the last
	// 0.001 degrees; the final step must pin the speed so one tick's travel
	// is exactly the remainder instead of stranding the axis short of it.
	speed, _, decelerating := ShiftSpeed(SpeedInput{
		Remaining:   0.001,
		CachedDelta: 20,
		Speed:       0.1,
	}, testProfile, 0.1)

	if want := 0.001 / 0.1; math.Abs(speed-want) > 1e-12 {
		t.Fatalf("expected the landing speed %g, got %g", want, speed)
	}
	if !decelerating {
		t.Fatalf("the landing step is part of the ramp-down")
	}
}

func TestShiftSpeed_OvershootSpeedClampedToRemainder(t *testing.T) {
	// Past halfway with 0.03 degrees left, one tick at the current speed
	// would step over the target; the speed must be cut to land on it.
	speed, _, decelerating := ShiftSpeed(SpeedInput{
		Remaining:   0.03,
		CachedDelta: 20,
		Speed:       0.6,
	}, testProfile, 0.1)

	if want := 0.3; math.Abs(speed-want) > 1e-12 {
		t.Fatalf("expected speed clamped to %g, got %g", want, speed)
	}
	if !decelerating {
		t.Fatalf("expected decelerating during the landing clamp")
	}
}

func TestShiftSpeed_ZeroRemainingDeceleratesAlongTravel(t *testing.T) {
	// Remaining already zero but the axis still turns forward. The ramp-down
	// must follow the travel direction and never push through zero.
	speed, _, decelerating := ShiftSpeed(SpeedInput{
		Remaining:   0,
		CachedDelta: 20,
		Speed:       3,
	}, testProfile, 0.1)

	if want := 2.8; math.Abs(speed-want) > 1e-12 {
		t.Fatalf("expected %g, got %g", want, speed)
	}
	if !decelerating {
		t.Fatalf("expected decelerating with leftover speed and nothing left to travel")
	}

	for i := 0; i < 100 && speed != 0; i++ {
		prev := speed
		speed, _, _ = ShiftSpeed(SpeedInput{CachedDelta: 20, Speed: speed}, testProfile, 0.1)
		if speed < 0 {
			t.Fatalf("deceleration overshot through zero: %g -> %g", prev, speed)
		}
	}
	if speed != 0 {
		t.Fatalf("expected the axis to come to rest, still at %g", speed)
	}
}

func TestShiftSpeed_PastTargetDecelerates(t *testing.T) {
	// The axis overran: the remainder points back against the current speed,
	// and the stopping distance (0.076) is smaller than the distance behind
	// the axis. Cruising here would carry it away from the target forever.
	speed, accelerating, decelerating := ShiftSpeed(SpeedInput{
		Remaining:   -0.18,
		CachedDelta: 45,
		Speed:       0.55,
	}, testProfile, 0.1)

	if want := 0.35; math.Abs(speed-want) > 1e-12 {
		t.Fatalf("expected the overrun to bleed speed to %g, got %g", want, speed)
	}
	if accelerating || !decelerating {
		t.Fatalf("expected decelerating past the target, got accelerating=%v decelerating=%v", accelerating, decelerating)
	}
}

func TestShiftSpeed_SettlesAfterOverrun(t *testing.T) {
	// Feed the overrun state back through the shaper: the axis must shed its
	// speed, creep back, and land on the target rather than drift.
	in := SpeedInput{Remaining: -0.18, CachedDelta: 45, Speed: 0.55}
	settled := false
	for i := 0; i < 200; i++ {
		speed, _, _ := ShiftSpeed(in, testProfile, 0.1)
		in.Remaining -= speed * 0.1
		in.Speed = speed
		if math.Abs(in.Remaining) > 0.5 {
			t.Fatalf("tick %d: overrun grew to %g instead of recovering", i, in.Remaining)
		}
		if math.Abs(in.Remaining) < 1e-9 {
			settled = true
			break
		}
	}
	if !settled {
		t.Fatalf("axis never recovered onto the target: remaining=%g speed=%g", in.Remaining, in.Speed)
	}
}

func TestShiftSpeed_CreepsWhenStrandedAtRest(t *testing.T) {
	// At rest short of the target with the ramp already spent: the shaper
	// restarts travel with one acceleration-sized step so no remainder can
	// survive at zero speed.
	speed, accelerating, decelerating := ShiftSpeed(SpeedInput{
		Remaining:   0.2,
		CachedDelta: 45,
	}, testProfile, 0.1)
	if want := 0.2; math.Abs(speed-want) > 1e-12 {
		t.Fatalf("expected creep at one acceleration step %g, got %g", want, speed)
	}
	if accelerating || !decelerating {
		t.Fatalf("the creep is part of the ramp-down, got accelerating=%v decelerating=%v", accelerating, decelerating)
	}

	// Within one tick of the target the creep is the remainder itself, so
	// the tick lands exactly.
	speed, _, _ = ShiftSpeed(SpeedInput{
		Remaining:   -0.004,
		CachedDelta: -45,
	}, testProfile, 0.1)
	if want := -0.04; math.Abs(speed-want) > 1e-12 {
		t.Fatalf("expected the landing creep %g, got %g", want, speed)
	}

	// The same recovery applies when the cached distance is gone entirely.
	speed, _, _ = ShiftSpeed(SpeedInput{
		Remaining: 0.4,
	}, testProfile, 0.1)
	if want := 0.2; math.Abs(speed-want) > 1e-12 {
		t.Fatalf("expected creep %g with no cached distance, got %g", want, speed)
	}
}

func TestShiftSpeed_ZeroCachedDeltaIsArrival(t *testing.T) {
	speed, accelerating, decelerating := ShiftSpeed(SpeedInput{
		Remaining:   5,
		CachedDelta: 0,
		Speed:       2,
	}, testProfile, 0.1)

	if speed >= 2 {
		t.Fatalf("a move with no cached distance must decelerate, got %g", speed)
	}
	if accelerating || !decelerating {
		t.Fatalf("expected decelerating, got accelerating=%v decelerating=%v", accelerating, decelerating)
	}
}

func TestShiftSpeed_StopUsesFixedRampAndTravelDirection(t *testing.T) {
	// A stop ignores the remaining distance entirely and ramps down at the
	// fixed stop rate, directed by the current speed.
	speed, accelerating, decelerating := ShiftSpeed(SpeedInput{
		Remaining:   100,
		CachedDelta: 200,
		Speed:       5,
		Stop:        true,
	}, testProfile, 0.1)

	if want := 5 - stopDeceleration*0.1; math.Abs(speed-want) > 1e-12 {
		t.Fatalf("expected stop ramp to %g, got %g", want, speed)
	}
	if accelerating || !decelerating {
		t.Fatalf("expected decelerating during stop, got accelerating=%v decelerating=%v", accelerating, decelerating)
	}

	speed, _, _ = ShiftSpeed(SpeedInput{
		Remaining:   -100,
		CachedDelta: -200,
		Speed:       -5,
		Stop:        true,
	}, testProfile, 0.1)
	if want := -5 + stopDeceleration*0.1; math.Abs(speed-want) > 1e-12 {
		t.Fatalf("expected negative stop ramp to %g, got %g", want, speed)
	}
}

func TestShiftSpeed_JogAlwaysAccelerates(t *testing.T) {
	// The synthetic jog delta keeps remaining near cached, but even a stale
	// ratio must not push a held jog into the deceleration half.
	speed, accelerating, _ := ShiftSpeed(SpeedInput{
		Remaining:   0.2,
		CachedDelta: 1,
		Speed:       1,
		Jog:         true,
	}, testProfile, 0.1)

	if want := 1.2; math.Abs(speed-want) > 1e-12 {
		t.Fatalf("expected jog to keep accelerating to %g, got %g", want, speed)
	}
	if !accelerating {
		t.Fatalf("expected accelerating during a held jog")
	}
}
