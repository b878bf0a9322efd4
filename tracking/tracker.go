// Package tracking slews the telescope after an orbiting target. It
// propagates a two-line element set with SGP4, converts the result to look
// angles for a ground observer, and feeds the pointing error into the motion
// loop as ordinary move commands.
package tracking

import (
	"context"
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/JordanK1ng/TelescopeVisualization/internal/logging"
	"github.com/JordanK1ng/TelescopeVisualization/model"
)

// retargetThreshold is the pointing error, in degrees, below which the
// tracker leaves the current move alone instead of issuing a fresh one. It
// keeps the cached move distance meaningful over many near-identical ticks.
const retargetThreshold = 0.05

// Observer is the ground station location. Latitude and longitude are in
// degrees, altitude in kilometres above the ellipsoid.
type Observer struct {
	LatitudeDeg  float64
	LongitudeDeg float64
	AltitudeKm   float64
}

// Target is a named two-line element set.
type Target struct {
	Name string
	TLE1 string
	TLE2 string
}

// LookAngles is a pointing solution in degrees.
type LookAngles struct {
	AzimuthDeg   float64
	ElevationDeg float64
	RangeKm      float64
}

// Tracker is a command source that follows a satellite. It owns the same
// per-axis move bookkeeping as a scripted source, but recomputes the target
// whenever the pointing error exceeds the retarget threshold.
type Tracker struct {
	sat      satellite.Satellite
	observer satellite.LatLong
	altKm    float64
	name     string
	log      logging.Logger

	minElevation float64
	maxElevation float64

	az axisMove
	el axisMove
}

type axisMove struct {
	delta  float64
	cached float64
}

// NewTracker parses the target TLE and prepares a tracker for the given
// observer. Elevation bounds are physical-frame degrees; desired elevations
// outside them are clamped so the tracker never drives the axis into a limit.
func NewTracker(target Target, obs Observer, minEl, maxEl float64, log logging.Logger) (*Tracker, error) {
	if target.TLE1 == "" || target.TLE2 == "" {
		return nil, fmt.Errorf("tracking target %q: both TLE lines are required", target.Name)
	}
	if log == nil {
		log = logging.Noop()
	}

	sat := satellite.TLEToSat(target.TLE1, target.TLE2, satellite.GravityWGS72)
	return &Tracker{
		sat: sat,
		observer: satellite.LatLong{
			Latitude:  obs.LatitudeDeg * satellite.DEG2RAD,
			Longitude: obs.LongitudeDeg * satellite.DEG2RAD,
		},
		altKm:        obs.AltitudeKm,
		name:         target.Name,
		log:          log,
		minElevation: minEl,
		maxElevation: maxEl,
	}, nil
}

// Look propagates the target to t and returns its look angles for the
// observer, in degrees.
func (tr *Tracker) Look(t time.Time) LookAngles {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	pos, _ := satellite.Propagate(tr.sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	la := satellite.ECIToLookAngles(pos, tr.observer, tr.altKm, jd)

	return LookAngles{
		AzimuthDeg:   normalize360(la.Az * satellite.RAD2DEG),
		ElevationDeg: la.El * satellite.RAD2DEG,
		RangeKm:      la.Rg,
	}
}

// Command computes the next MotionCommand: if the pointing error has drifted
// past the retarget threshold, new per-axis moves replace the pending ones.
func (tr *Tracker) Command(st model.TelescopeStatus, simTime time.Time, dt float64) model.MotionCommand {
	look := tr.Look(simTime)

	wantEl := look.ElevationDeg
	if wantEl < tr.minElevation {
		wantEl = tr.minElevation
	}
	if wantEl > tr.maxElevation {
		wantEl = tr.maxElevation
	}

	azErr := shortestAzimuthDelta(st.Azimuth.Angle, look.AzimuthDeg)
	elErr := wantEl - st.Elevation.Angle

	if math.Abs(azErr-tr.az.delta) > retargetThreshold {
		tr.az = axisMove{delta: azErr, cached: azErr}
	}
	if math.Abs(elErr-tr.el.delta) > retargetThreshold {
		tr.el = axisMove{delta: elErr, cached: elErr}
	}

	tr.log.Debug(context.Background(), "tracking target",
		logging.String("target", tr.name),
		logging.Float("azimuth", look.AzimuthDeg),
		logging.Float("elevation", look.ElevationDeg),
		logging.Float("range_km", look.RangeKm),
	)

	return model.MotionCommand{
		Azimuth:   model.AxisRequest{Delta: tr.az.delta, CachedDelta: tr.az.cached},
		Elevation: model.AxisRequest{Delta: tr.el.delta, CachedDelta: tr.el.cached},
	}
}

// Merge folds the controller's result back into the pending moves.
func (tr *Tracker) Merge(res model.MotionResult) {
	tr.az.delta = res.Azimuth.Delta
	tr.az.cached = res.Azimuth.CachedDelta
	tr.el.delta = res.Elevation.Delta
	tr.el.cached = res.Elevation.CachedDelta
}

// Name returns the tracked target's name.
func (tr *Tracker) Name() string { return tr.name }

func normalize360(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

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
