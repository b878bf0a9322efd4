// Package state owns the shared runtime view of the simulated observatory.
// The motion controller itself is single-threaded; ObservatoryState is the
// boundary that lets telemetry consumers read consistent snapshots while the
// tick loop advances the simulation.
package state

import (
	"errors"
	"sync"
	"time"

	"github.com/JordanK1ng/TelescopeVisualization/internal/logging"
	"github.com/JordanK1ng/TelescopeVisualization/model"
	"github.com/JordanK1ng/TelescopeVisualization/motion"
)

// ErrNilController indicates ObservatoryState was built without a controller.
var ErrNilController = errors.New("observatory state: nil telescope controller")

// MetricsRecorder receives per-tick updates for Prometheus-friendly gauges
// and counters. It is optional; a nil recorder disables recording.
type MetricsRecorder interface {
	RecordStatus(model.TelescopeStatus)
	CountCommand(model.MotionCommand)
	ObserveTick(seconds float64)
}

// Option customises ObservatoryState construction.
type Option func(*ObservatoryState)

// WithMetricsRecorder attaches an optional metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *ObservatoryState) {
		s.metrics = m
	}
}

// ObservatoryState serialises access to the telescope controller. The tick
// loop holds the write lock for the duration of one Advance pass; snapshot
// readers take the read lock and get copies, never live state.
type ObservatoryState struct {
	mu sync.RWMutex

	controller *motion.TelescopeController
	log        logging.Logger
	metrics    MetricsRecorder

	status model.TelescopeStatus
	ticks  uint64
}

// NewObservatoryState wraps a telescope controller for shared consumption.
func NewObservatoryState(tc *motion.TelescopeController, log logging.Logger, opts ...Option) (*ObservatoryState, error) {
	if tc == nil {
		return nil, ErrNilController
	}
	if log == nil {
		log = logging.Noop()
	}
	s := &ObservatoryState{
		controller: tc,
		log:        log,
		status:     tc.Status(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// RunTick advances the simulation by one frame under the write lock and
// returns the controller's result for the command source to merge.
func (s *ObservatoryState) RunTick(cmd model.MotionCommand, dt float64) model.MotionResult {
	start := time.Now()

	s.mu.Lock()
	res := s.controller.Tick(cmd, dt)
	s.status = s.controller.Status()
	s.ticks++
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.CountCommand(cmd)
		s.metrics.RecordStatus(s.status)
		s.metrics.ObserveTick(time.Since(start).Seconds())
	}
	return res
}

// Snapshot returns the telescope status as of the most recent tick. The
// returned value is a copy and safe to retain.
func (s *ObservatoryState) Snapshot() model.TelescopeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Ticks returns how many frames have been simulated.
func (s *ObservatoryState) Ticks() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticks
}
