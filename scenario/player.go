package scenario

import (
	"context"
	"math"
	"time"

	"github.com/JordanK1ng/TelescopeVisualization/internal/logging"
	"github.com/JordanK1ng/TelescopeVisualization/model"
)

// axisMove is the player's per-axis move bookkeeping: the remaining signed
// delta and the cached full distance of the move in flight.
type axisMove struct {
	delta  float64
	cached float64
}

func (m axisMove) request() model.AxisRequest {
	return model.AxisRequest{Delta: m.delta, CachedDelta: m.cached}
}

func (m *axisMove) begin(delta float64) {
	m.delta = delta
	m.cached = delta
}

// Player walks a scripted step sequence and acts as the simulation's command
// source: each tick it assembles one MotionCommand from the current step and
// merges the controller's result back into its pending moves.
type Player struct {
	cfg *Config
	log logging.Logger

	stepIdx   int
	stepClock float64
	entered   bool

	az axisMove
	el axisMove

	relativeMove bool
	homing       bool
}

// NewPlayer builds a Player over the loaded scenario's script.
func NewPlayer(cfg *Config, log logging.Logger) *Player {
	if log == nil {
		log = logging.Noop()
	}
	return &Player{cfg: cfg, log: log}
}

// Done reports whether the script is exhausted and no move is still pending.
func (p *Player) Done() bool {
	return p.stepIdx >= len(p.cfg.Script) && p.az.delta == 0 && p.el.delta == 0
}

// Command assembles the MotionCommand for the next tick. st is the telescope
// snapshot from the previous tick, used to resolve absolute move targets.
func (p *Player) Command(st model.TelescopeStatus, simTime time.Time, dt float64) model.MotionCommand {
	p.advanceClock(st, simTime, dt)

	cmd := model.MotionCommand{
		Azimuth:      p.az.request(),
		Elevation:    p.el.request(),
		RelativeMove: p.relativeMove && (p.az.delta != 0 || p.el.delta != 0),
		Home:         p.homing,
	}

	if p.stepIdx < len(p.cfg.Script) {
		step := p.cfg.Script[p.stepIdx]
		switch {
		case step.Ignore:
			cmd.Ignore = true
		case step.Stop:
			cmd.Stop = true
		case step.Jog != nil:
			axis, _ := ParseAxis(step.Jog.Axis)
			cmd.Jog = true
			cmd.JogAxis = axis
			cmd.JogPositive = step.Jog.Positive
		}
	}
	return cmd
}

// advanceClock moves the script clock by dt and applies entry actions of any
// step that becomes current.
func (p *Player) advanceClock(st model.TelescopeStatus, simTime time.Time, dt float64) {
	if p.stepIdx >= len(p.cfg.Script) {
		return
	}

	if p.entered {
		p.stepClock += dt
		if p.stepClock < p.cfg.Script[p.stepIdx].Hold {
			return
		}
		p.stepClock = 0
		p.stepIdx++
		p.entered = false
		if p.stepIdx >= len(p.cfg.Script) {
			return
		}
	}

	step := p.cfg.Script[p.stepIdx]
	p.enterStep(step, st, simTime)
	p.entered = true
}

func (p *Player) enterStep(step Step, st model.TelescopeStatus, simTime time.Time) {
	ctx := context.Background()
	at := logging.String("sim_time", simTime.Format(time.RFC3339))
	p.homing = false

	switch {
	case step.Move != nil:
		axis, _ := ParseAxis(step.Move.Axis)
		delta := p.moveDelta(axis, *step.Move, st)
		p.relativeMove = !step.Move.Absolute
		if axis == model.Elevation {
			p.el.begin(delta)
		} else {
			p.az.begin(delta)
		}
		p.log.Info(ctx, "script move",
			logging.String("axis", axis.String()),
			logging.Float("delta", delta),
			at,
		)
	case step.Home:
		// Homing is an absolute slew to the configured park position with the
		// home flag held for its duration.
		p.homing = true
		p.relativeMove = false
		p.az.begin(shortestAzimuthDelta(st.Azimuth.Angle, p.cfg.Telescope.HomeAzimuth))
		p.el.begin(p.cfg.Telescope.HomeElevation - st.Elevation.Angle)
		p.log.Info(ctx, "script home",
			logging.Float("home_azimuth", p.cfg.Telescope.HomeAzimuth),
			logging.Float("home_elevation", p.cfg.Telescope.HomeElevation),
			at,
		)
	case step.Stop:
		p.az.delta = 0
		p.el.delta = 0
		p.log.Info(ctx, "script stop", at)
	case step.Jog != nil:
		p.log.Info(ctx, "script jog",
			logging.String("axis", step.Jog.Axis),
			logging.Any("positive", step.Jog.Positive),
			at,
		)
	case step.Ignore:
		p.log.Debug(ctx, "script ignore", at)
	}
}

func (p *Player) moveDelta(axis model.AxisSelect, mv MoveStep, st model.TelescopeStatus) float64 {
	if !mv.Absolute {
		return mv.Degrees
	}
	if axis == model.Azimuth {
		return shortestAzimuthDelta(st.Azimuth.Angle, mv.Degrees)
	}
	return mv.Degrees - st.Elevation.Angle
}

// Merge folds the controller's per-tick result back into the pending moves.
func (p *Player) Merge(res model.MotionResult) {
	p.az.delta = res.Azimuth.Delta
	p.az.cached = res.Azimuth.CachedDelta
	p.el.delta = res.Elevation.Delta
	p.el.cached = res.Elevation.CachedDelta

	if p.homing && p.az.delta == 0 && p.el.delta == 0 {
		p.homing = false
	}
}

// shortestAzimuthDelta returns the signed shortest rotation from one azimuth
// to another, in (-180, 180].
func shortestAzimuthDelta(from, to float64) float64 {
	d := math.Mod(to-from, 360)
	if d > 180 {
		d -= 360
	}
	if d <= -180 {
		d += 360
	}
	return d
}
