// Package motion implements the kinematic core of the telescope simulator:
// per-axis trapezoidal speed profiles, bounded travel, limit-switch faults,
// and homing state, advanced one tick at a time by an external driver.
package motion

import (
	"context"

	"github.com/JordanK1ng/TelescopeVisualization/internal/logging"
	"github.com/JordanK1ng/TelescopeVisualization/model"
)

// EventKind enumerates the diagnostic events the motion core can emit.
type EventKind int

const (
	// EventResidueDiscarded reports a sub-epsilon remaining distance that was
	// snapped to zero. Expected floating-point settling, not an error.
	EventResidueDiscarded EventKind = iota
	// EventLimitContact reports a clamped axis stalling against a travel
	// bound while still commanded to move.
	EventLimitContact
	// EventHomeCompleted reports an axis coming to rest with a home request
	// active, establishing a trusted position origin.
	EventHomeCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventResidueDiscarded:
		return "residue_discarded"
	case EventLimitContact:
		return "limit_contact"
	case EventHomeCompleted:
		return "home_completed"
	default:
		return "unknown"
	}
}

// Event is one structured diagnostic record from the motion core.
type Event struct {
	Kind EventKind
	Axis model.AxisSelect
	// Value carries the event payload: the discarded residue in degrees for
	// EventResidueDiscarded, the contacted angle for EventLimitContact.
	Value float64
}

// EventSink receives diagnostic events from the controllers. Implementations
// must be cheap and non-blocking; Emit is called from inside the tick.
type EventSink interface {
	Emit(Event)
}

// NoopSink returns a sink that drops all events.
func NoopSink() EventSink { return noopSink{} }

type noopSink struct{}

func (noopSink) Emit(Event) {}

// NewLogSink adapts a structured logger into an EventSink. Residue events log
// at debug, limit contacts at warn.
func NewLogSink(log logging.Logger) EventSink {
	if log == nil {
		log = logging.Noop()
	}
	return &logSink{log: log}
}

type logSink struct {
	log logging.Logger
}

func (s *logSink) Emit(ev Event) {
	ctx := context.Background()
	fields := []logging.Field{
		logging.String("axis", ev.Axis.String()),
		logging.Any("value", ev.Value),
	}
	switch ev.Kind {
	case EventLimitContact:
		s.log.Warn(ctx, "axis stalled at travel limit", fields...)
	case EventHomeCompleted:
		s.log.Info(ctx, "axis homed", fields...)
	default:
		s.log.Debug(ctx, "discarded sub-epsilon residue", fields...)
	}
}

// MultiSink fans events out to several sinks in order.
func MultiSink(sinks ...EventSink) EventSink {
	out := make([]EventSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return multiSink(out)
}

type multiSink []EventSink

func (m multiSink) Emit(ev Event) {
	for _, s := range m {
		s.Emit(ev)
	}
}
