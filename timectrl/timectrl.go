// Package timectrl drives the simulation's tick loop. The motion core is
// frame-rate independent: every listener receives the elapsed dt alongside
// the simulation time and must scale all rates by it.
package timectrl

import (
	"sync"
	"time"
)

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime paces ticks with a wall-clock ticker; dt is the measured
	// elapsed time between ticks.
	RealTime Mode = iota
	// Accelerated steps a fixed dt per tick as fast as the loop can run.
	Accelerated
)

// TickListener is invoked once per tick with the current simulation time and
// the elapsed simulation seconds since the previous tick. dt is always
// non-negative.
type TickListener func(simTime time.Time, dt float64)

// TimeController drives simulation time and notifies registered listeners.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentTime time.Time

	listeners []TickListener
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current simulation time.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// SetTime jumps the simulation clock, e.g. to line a tracking run up with a
// satellite pass. Call it before Start.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.StartTime = t
	tc.currentTime = t
}

// AddListener registers a callback invoked on every tick. Listeners must be
// registered before Start.
func (tc *TimeController) AddListener(fn TickListener) {
	tc.listeners = append(tc.listeners, fn)
}

// Start runs the controller for the specified simulation duration in a
// separate goroutine and returns a channel that is closed when it finishes.
// A non-positive duration runs unbounded.
func (tc *TimeController) Start(duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		tc.mu.Lock()
		simTime := tc.StartTime
		tc.currentTime = simTime
		tc.mu.Unlock()

		elapsed := time.Duration(0)
		dt := tc.Tick.Seconds()

		var ticker *time.Ticker
		if tc.Mode == RealTime {
			ticker = time.NewTicker(tc.Tick)
			defer ticker.Stop()
		}
		lastWall := time.Now()

		for {
			if duration > 0 && elapsed >= duration {
				return
			}

			if ticker != nil {
				<-ticker.C
				now := time.Now()
				// Real-time mode samples the actual elapsed wall time, which
				// absorbs scheduler jitter instead of accumulating it.
				dt = now.Sub(lastWall).Seconds()
				lastWall = now
			}

			simTime = simTime.Add(tc.Tick)
			elapsed += tc.Tick

			tc.mu.Lock()
			tc.currentTime = simTime
			tc.mu.Unlock()

			for _, fn := range tc.listeners {
				fn(simTime, dt)
			}
		}
	}()
	return done
}
