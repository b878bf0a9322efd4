package motion

import (
	"math"
	"testing"

	"github.com/JordanK1ng/TelescopeVisualization/model"
)

type capturingSink struct {
	events []Event
}

func (c *capturingSink) Emit(ev Event) { c.events = append(c.events, ev) }

func (c *capturingSink) count(kind EventKind) int {
	n := 0
	for _, ev := range c.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// driveMove runs the controller until the move completes (remaining zero and
// axis at rest) or maxTicks elapses, returning the final remaining distance.
func driveMove(t *testing.T, c *AxisController, delta float64, dt float64, maxTicks int) float64 {
	t.Helper()
	req := model.AxisRequest{Delta: delta, CachedDelta: delta}
	for i := 0; i < maxTicks; i++ {
		res := c.Advance(req, false, false, false, dt)
		req.Delta = res.Delta
		if req.Delta == 0 && !c.State().Moving {
			return req.Delta
		}
	}
	t.Fatalf("move of %g did not complete in %d ticks: remaining=%g speed=%g",
		delta, maxTicks, req.Delta, c.State().Speed)
	return req.Delta
}

func TestAxisController_CompletesCommandedMove(t *testing.T) {
	sink := &capturingSink{}
	c := NewAxisController(model.Azimuth, testProfile, Wrapping{}, 0, sink)

	driveMove(t, c, 20, 0.1, 300)

	if got := c.State().Angle; math.Abs(got-20) > 0.05 {
		t.Fatalf("expected to land on 20 within tolerance, got %g", got)
	}
	st := c.State()
	if st.Moving || st.Speed != 0 || st.Accelerating || st.Decelerating {
		t.Fatalf("expected the axis at rest after arrival, got %+v", st)
	}
}

func TestAxisController_CompletesNegativeMove(t *testing.T) {
	c := NewAxisController(model.Azimuth, testProfile, Wrapping{}, 90, NoopSink())

	driveMove(t, c, -30, 0.1, 300)

	if got := c.State().Angle; math.Abs(got-60) > 0.05 {
		t.Fatalf("expected to land on 60 within tolerance, got %g", got)
	}
}

func TestAxisController_SnapsSubEpsilonResidue(t *testing.T) {
	sink := &capturingSink{}
	c := NewAxisController(model.Azimuth, testProfile, Wrapping{}, 0, sink)

	// One acceleration tick covers 0.02 degrees, leaving 0.0005: inside the
	// arrival epsilon, so the remainder must be discarded, not chased.
	res := c.Advance(model.AxisRequest{Delta: 0.0205, CachedDelta: 0.0205}, false, false, false, 0.1)

	if res.Delta != 0 {
		t.Fatalf("expected sub-epsilon remainder snapped to zero, got %g", res.Delta)
	}
	if sink.count(EventResidueDiscarded) != 1 {
		t.Fatalf("expected one residue event, got %d", sink.count(EventResidueDiscarded))
	}

	// The leftover speed now has nothing to cover; the next ticks must ramp it
	// back down to rest without re-accelerating.
	for i := 0; i < 10 && c.State().Speed != 0; i++ {
		res = c.Advance(model.AxisRequest{Delta: res.Delta, CachedDelta: 0.0205}, false, false, false, 0.1)
	}
	if c.State().Speed != 0 {
		t.Fatalf("expected leftover speed to decay to zero, got %g", c.State().Speed)
	}
}

func TestAxisController_StallsAtLimit(t *testing.T) {
	sink := &capturingSink{}
	profile := testProfile
	profile.Wraps = false
	profile.MinAngle = 7
	profile.MaxAngle = 107
	c := NewAxisController(model.Elevation, profile, Clamped{Min: 7, Max: 107}, 107, sink)

	res := c.Advance(model.AxisRequest{Delta: 5, CachedDelta: 5}, false, false, false, 0.1)

	if !res.Stalled {
		t.Fatalf("expected a stall pushing past the upper bound")
	}
	if c.State().Speed != 0 || c.State().Moving {
		t.Fatalf("a stalled axis must be stopped, got speed=%g moving=%v", c.State().Speed, c.State().Moving)
	}
	if c.State().Angle != 107 {
		t.Fatalf("a stalled axis must hold the bound, got %g", c.State().Angle)
	}
	if sink.count(EventLimitContact) != 1 {
		t.Fatalf("expected one limit contact event, got %d", sink.count(EventLimitContact))
	}
}

func TestAxisController_HomedLifecycle(t *testing.T) {
	sink := &capturingSink{}
	c := NewAxisController(model.Azimuth, testProfile, Wrapping{}, 0, sink)

	// Homing completes only once the axis is at rest.
	c.Advance(model.AxisRequest{}, false, false, true, 0.1)
	if !c.State().Homed {
		t.Fatalf("expected homed after a home request at rest")
	}
	if sink.count(EventHomeCompleted) != 1 {
		t.Fatalf("expected one home event, got %d", sink.count(EventHomeCompleted))
	}

	// Re-asserting home while already homed is not a new completion.
	c.Advance(model.AxisRequest{}, false, false, true, 0.1)
	if sink.count(EventHomeCompleted) != 1 {
		t.Fatalf("expected no duplicate home event, got %d", sink.count(EventHomeCompleted))
	}

	// Any subsequent travel invalidates the homed origin.
	c.Advance(model.AxisRequest{Delta: 10, CachedDelta: 10}, false, false, false, 0.1)
	if c.State().Homed {
		t.Fatalf("expected homed cleared once the axis moves")
	}
}

func TestAxisController_HomeWhileMovingDoesNotComplete(t *testing.T) {
	sink := &capturingSink{}
	c := NewAxisController(model.Azimuth, testProfile, Wrapping{}, 0, sink)

	// Kick off a long move, then assert home mid-flight.
	res := c.Advance(model.AxisRequest{Delta: 20, CachedDelta: 20}, false, false, false, 0.1)
	res = c.Advance(model.AxisRequest{Delta: res.Delta, CachedDelta: 20}, false, false, true, 0.1)

	if c.State().Homed {
		t.Fatalf("home must not complete while the axis is still moving")
	}
	if sink.count(EventHomeCompleted) != 0 {
		t.Fatalf("expected no home event mid-flight, got %d", sink.count(EventHomeCompleted))
	}
	_ = res
}

func TestAxisController_SettlesAfterLandingWithLeftoverSpeed(t *testing.T) {
	// Profile and distance chosen so the discrete ramp-down reaches the
	// target with speed still on the axis. The leftover must be shed and the
	// axis brought back to rest on the target, not carried past it.
	profile := model.AxisProfile{MaxSpeed: 4, Acceleration: 1.5, Deceleration: 1.5}
	c := NewAxisController(model.Elevation, profile, Clamped{Min: 0, Max: 120}, 15, NoopSink())

	driveMove(t, c, 45, 0.1, 500)

	st := c.State()
	if math.Abs(st.Angle-60) > 0.05 {
		t.Fatalf("expected to settle on 60 within tolerance, got %g", st.Angle)
	}
	if st.Moving || st.Speed != 0 {
		t.Fatalf("expected the axis at rest after the recovery, got %+v", st)
	}
}

func TestAxisController_RampsAreSymmetric(t *testing.T) {
	c := NewAxisController(model.Azimuth, testProfile, Wrapping{}, 0, NoopSink())

	// Over a 100 degree move the ramps fit comfortably inside the travel; the
	// distance spent accelerating and decelerating should match to within a
	// tick's worth of discretization.
	var accelDist, decelDist float64
	req := model.AxisRequest{Delta: 100, CachedDelta: 100}
	for i := 0; i < 1000; i++ {
		res := c.Advance(req, false, false, false, 0.1)
		st := c.State()
		if st.Accelerating {
			accelDist += res.Moved
		}
		if st.Decelerating {
			decelDist += res.Moved
			if st.Angle < 50 {
				t.Fatalf("deceleration began before halfway, at %g degrees", st.Angle)
			}
		}
		req.Delta = res.Delta
		if req.Delta == 0 && !st.Moving {
			break
		}
	}
	if req.Delta != 0 || c.State().Moving {
		t.Fatalf("move did not finish: remaining=%g speed=%g", req.Delta, c.State().Speed)
	}
	if math.Abs(accelDist-decelDist) > 1 {
		t.Fatalf("ramp distances diverged: accel %g vs decel %g", accelDist, decelDist)
	}
}

func TestAxisController_StopOverridesRemaining(t *testing.T) {
	c := NewAxisController(model.Azimuth, testProfile, Wrapping{}, 0, NoopSink())

	// Reach cruise speed first.
	req := model.AxisRequest{Delta: 200, CachedDelta: 200}
	for i := 0; i < 30; i++ {
		res := c.Advance(req, false, false, false, 0.1)
		req.Delta = res.Delta
	}
	if c.State().Speed != testProfile.MaxSpeed {
		t.Fatalf("expected cruise speed %g before the stop, got %g", testProfile.MaxSpeed, c.State().Speed)
	}

	// The stop ramps down at the fixed stop rate regardless of the large
	// remaining distance.
	prev := c.State().Speed
	for i := 0; i < 200 && c.State().Speed != 0; i++ {
		c.Advance(model.AxisRequest{}, false, true, false, 0.1)
		if s := c.State().Speed; s > prev {
			t.Fatalf("speed rose during stop: %g -> %g", prev, s)
		} else {
			prev = s
		}
	}
	if c.State().Speed != 0 || c.State().Moving {
		t.Fatalf("expected full rest after stop, got speed=%g", c.State().Speed)
	}
}
