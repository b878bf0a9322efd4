// Command telescope-sim runs the observatory motion simulation: it loads a
// scenario, advances the two-axis telescope model on a tick loop, and serves
// live telemetry over HTTP and websocket.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/JordanK1ng/TelescopeVisualization/internal/logging"
	"github.com/JordanK1ng/TelescopeVisualization/internal/observability"
	"github.com/JordanK1ng/TelescopeVisualization/internal/sim/state"
	"github.com/JordanK1ng/TelescopeVisualization/internal/telemetry"
	"github.com/JordanK1ng/TelescopeVisualization/model"
	"github.com/JordanK1ng/TelescopeVisualization/motion"
	"github.com/JordanK1ng/TelescopeVisualization/scenario"
	"github.com/JordanK1ng/TelescopeVisualization/timectrl"
	"github.com/JordanK1ng/TelescopeVisualization/tracking"
)

// CommandSource produces one MotionCommand per tick and merges the
// controller's result before the next. Both the scripted player and the
// satellite tracker satisfy it.
type CommandSource interface {
	Command(st model.TelescopeStatus, simTime time.Time, dt float64) model.MotionCommand
	Merge(model.MotionResult)
}

func main() {
	configPath := flag.String("config", "configs/observatory.yaml", "scenario configuration file")
	duration := flag.Duration("duration", 0, "total simulation duration (0 runs until the script ends or forever)")
	tick := flag.Duration("tick", 100*time.Millisecond, "tick interval")
	accelerated := flag.Bool("accelerated", false, "run in accelerated mode (vs real-time)")
	listen := flag.String("listen", "", "telemetry listen address (overrides config)")
	track := flag.Bool("track", false, "follow the configured TLE target instead of the script")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	if err := run(ctx, log, *configPath, *duration, *tick, *accelerated, *listen, *track); err != nil {
		log.Error(ctx, "simulator failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, log logging.Logger, configPath string, duration, tick time.Duration, accelerated bool, listen string, track bool) error {
	cfg, err := scenario.LoadFile(configPath)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewMotionCollector(nil)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	controller, err := motion.NewTelescopeController(
		cfg.MotionConfig(),
		motion.WithEventSink(collector),
		motion.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("build telescope controller: %w", err)
	}

	obs, err := state.NewObservatoryState(controller, log, state.WithMetricsRecorder(collector))
	if err != nil {
		return err
	}

	source, err := buildSource(cfg, track, log)
	if err != nil {
		return err
	}

	broadcaster := telemetry.NewBroadcaster()
	server := telemetry.NewServer(cfg.Server.Listen, obs, broadcaster, collector.Handler(), log)
	serveErr := server.Start()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn(ctx, "telemetry shutdown failed", logging.String("error", err.Error()))
		}
	}()

	mode := timectrl.RealTime
	if accelerated {
		mode = timectrl.Accelerated
	}
	tc := timectrl.NewTimeController(time.Now().UTC(), tick, mode)

	tracer := otel.Tracer("telescope-sim")
	tc.AddListener(func(simTime time.Time, dt float64) {
		_, span := tracer.Start(ctx, "sim.tick")

		cmd := source.Command(obs.Snapshot(), simTime, dt)
		res := obs.RunTick(cmd, dt)
		source.Merge(res)
		broadcaster.Publish(obs.Snapshot())

		span.SetAttributes(
			attribute.Float64("sim.dt_seconds", dt),
			attribute.Float64("telescope.azimuth_remaining", res.Azimuth.Delta),
			attribute.Float64("telescope.elevation_remaining", res.Elevation.Delta),
			attribute.Bool("telescope.invalid_input", res.InvalidInput),
		)
		span.End()
	})

	log.Info(ctx, "starting simulation",
		logging.String("config", configPath),
		logging.String("tick", tick.String()),
		logging.Any("accelerated", accelerated),
		logging.Any("tracking", track),
		logging.Int("script_steps", len(cfg.Script)),
	)

	done := tc.Start(duration)
	select {
	case <-done:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("telemetry server: %w", err)
		}
		<-done
	}

	st := obs.Snapshot()
	log.Info(ctx, "simulation complete",
		logging.Any("ticks", obs.Ticks()),
		logging.Float("azimuth", st.Azimuth.Angle),
		logging.Float("elevation", st.Elevation.Angle),
	)
	return nil
}

// buildSource picks the tick command source: the satellite tracker when
// requested and configured, otherwise the scripted player.
func buildSource(cfg *scenario.Config, track bool, log logging.Logger) (CommandSource, error) {
	if !track {
		return scenario.NewPlayer(cfg, log), nil
	}
	if cfg.Tracking == nil {
		return nil, fmt.Errorf("-track requested but no tracking target configured")
	}
	return tracking.NewTracker(
		tracking.Target{
			Name: cfg.Tracking.Name,
			TLE1: cfg.Tracking.TLE1,
			TLE2: cfg.Tracking.TLE2,
		},
		tracking.Observer{
			LatitudeDeg:  cfg.Tracking.Observer.Latitude,
			LongitudeDeg: cfg.Tracking.Observer.Longitude,
			AltitudeKm:   cfg.Tracking.Observer.AltitudeKm,
		},
		cfg.Telescope.Elevation.MinAngle,
		cfg.Telescope.Elevation.MaxAngle,
		log,
	)
}
