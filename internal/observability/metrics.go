// Package observability wires the simulator into Prometheus and
// OpenTelemetry. Metrics and tracing are optional collaborators: the motion
// core never imports this package.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JordanK1ng/TelescopeVisualization/model"
	"github.com/JordanK1ng/TelescopeVisualization/motion"
)

// MotionCollector bundles the Prometheus metrics for the motion simulation
// and provides the /metrics handler. It implements motion.EventSink so the
// controllers' diagnostic events can drive fault counters directly.
type MotionCollector struct {
	gatherer prometheus.Gatherer

	AxisAngle  *prometheus.GaugeVec
	AxisSpeed  *prometheus.GaugeVec
	AxisTarget *prometheus.GaugeVec
	AxisMoving *prometheus.GaugeVec

	Commands     *prometheus.CounterVec
	LimitFaults  *prometheus.CounterVec
	ResidueDrops *prometheus.CounterVec
	HomeRuns     *prometheus.CounterVec

	TickDuration prometheus.Histogram
}

// NewMotionCollector registers the motion metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewMotionCollector(reg prometheus.Registerer) (*MotionCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	angle, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "telescope_axis_angle_degrees",
		Help: "Current axis angle in degrees, physical frame.",
	}, []string{"axis"}), "telescope_axis_angle_degrees")
	if err != nil {
		return nil, err
	}
	speed, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "telescope_axis_speed_degrees_per_second",
		Help: "Current signed axis speed in deg/s.",
	}, []string{"axis"}), "telescope_axis_speed_degrees_per_second")
	if err != nil {
		return nil, err
	}
	target, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "telescope_axis_target_degrees",
		Help: "Target axis angle in degrees, physical frame.",
	}, []string{"axis"}), "telescope_axis_target_degrees")
	if err != nil {
		return nil, err
	}
	moving, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "telescope_axis_moving",
		Help: "1 while the axis is in motion, 0 at rest.",
	}, []string{"axis"}), "telescope_axis_moving")
	if err != nil {
		return nil, err
	}

	commands, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telescope_commands_total",
		Help: "Motion commands processed, labeled by kind.",
	}, []string{"kind"}), "telescope_commands_total")
	if err != nil {
		return nil, err
	}
	limits, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telescope_limit_contacts_total",
		Help: "Stalls against a travel limit, labeled by axis.",
	}, []string{"axis"}), "telescope_limit_contacts_total")
	if err != nil {
		return nil, err
	}
	residue, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telescope_residue_discarded_total",
		Help: "Sub-epsilon command remainders snapped to zero, labeled by axis.",
	}, []string{"axis"}), "telescope_residue_discarded_total")
	if err != nil {
		return nil, err
	}
	homes, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telescope_home_completions_total",
		Help: "Completed homing runs, labeled by axis.",
	}, []string{"axis"}), "telescope_home_completions_total")
	if err != nil {
		return nil, err
	}

	tick := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "telescope_tick_duration_seconds",
		Help:    "Wall time spent advancing one simulation tick.",
		Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
	})
	tick, err = registerHistogram(reg, tick, "telescope_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &MotionCollector{
		gatherer:     gatherer,
		AxisAngle:    angle,
		AxisSpeed:    speed,
		AxisTarget:   target,
		AxisMoving:   moving,
		Commands:     commands,
		LimitFaults:  limits,
		ResidueDrops: residue,
		HomeRuns:     homes,
		TickDuration: tick,
	}, nil
}

// RecordStatus pushes a per-tick telescope snapshot into the gauges.
func (c *MotionCollector) RecordStatus(st model.TelescopeStatus) {
	if c == nil {
		return
	}
	c.recordAxis("azimuth", st.Azimuth)
	c.recordAxis("elevation", st.Elevation)
}

func (c *MotionCollector) recordAxis(name string, st model.AxisStatus) {
	c.AxisAngle.WithLabelValues(name).Set(st.Angle)
	c.AxisSpeed.WithLabelValues(name).Set(st.Speed)
	c.AxisTarget.WithLabelValues(name).Set(st.Target)
	moving := 0.0
	if st.Moving {
		moving = 1
	}
	c.AxisMoving.WithLabelValues(name).Set(moving)
}

// CountCommand increments the processed-command counter for one tick.
func (c *MotionCollector) CountCommand(cmd model.MotionCommand) {
	if c == nil {
		return
	}
	switch {
	case cmd.Ignore:
		c.Commands.WithLabelValues("ignore").Inc()
	case cmd.Stop:
		c.Commands.WithLabelValues("stop").Inc()
	case cmd.Home:
		c.Commands.WithLabelValues("home").Inc()
	case cmd.Jog:
		c.Commands.WithLabelValues("jog").Inc()
	case cmd.RelativeMove:
		c.Commands.WithLabelValues("relative_move").Inc()
	default:
		c.Commands.WithLabelValues("idle").Inc()
	}
}

// ObserveTick records the wall time of one tick.
func (c *MotionCollector) ObserveTick(seconds float64) {
	if c == nil {
		return
	}
	c.TickDuration.Observe(seconds)
}

// Emit implements motion.EventSink, mapping diagnostic events to counters.
func (c *MotionCollector) Emit(ev motion.Event) {
	if c == nil {
		return
	}
	axis := ev.Axis.String()
	switch ev.Kind {
	case motion.EventLimitContact:
		c.LimitFaults.WithLabelValues(axis).Inc()
	case motion.EventResidueDiscarded:
		c.ResidueDrops.WithLabelValues(axis).Inc()
	case motion.EventHomeCompleted:
		c.HomeRuns.WithLabelValues(axis).Inc()
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *MotionCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}
