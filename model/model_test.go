package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAxisSelectString(t *testing.T) {
	if Azimuth.String() != "azimuth" || Elevation.String() != "elevation" {
		t.Fatalf("unexpected axis names: %q, %q", Azimuth.String(), Elevation.String())
	}
	if got := AxisSelect(7).String(); got != "axis(7)" {
		t.Fatalf("unknown axis name = %q", got)
	}
}

func TestAxisProfileValidate(t *testing.T) {
	good := AxisProfile{MaxSpeed: 5, Acceleration: 2, Deceleration: 2, MinAngle: 0, MaxAngle: 90}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid profile rejected: %v", err)
	}

	cases := []AxisProfile{
		{MaxSpeed: 0, Acceleration: 2, Deceleration: 2, MaxAngle: 90},
		{MaxSpeed: 5, Acceleration: 0, Deceleration: 2, MaxAngle: 90},
		{MaxSpeed: 5, Acceleration: 2, Deceleration: 0, MaxAngle: 90},
		{MaxSpeed: 5, Acceleration: 2, Deceleration: 2, MinAngle: 90, MaxAngle: 10},
	}
	for i, p := range cases {
		if err := p.Validate(); err == nil {
			t.Errorf("case %d: expected profile %+v rejected", i, p)
		}
	}

	// An inverted range is irrelevant for a wrapping axis.
	wrap := AxisProfile{MaxSpeed: 5, Acceleration: 2, Deceleration: 2, Wraps: true}
	if err := wrap.Validate(); err != nil {
		t.Fatalf("wrapping profile rejected: %v", err)
	}
}

func TestMotionCommandRequestSelectsAxis(t *testing.T) {
	cmd := MotionCommand{
		Azimuth:   AxisRequest{Delta: 1, CachedDelta: 2},
		Elevation: AxisRequest{Delta: 3, CachedDelta: 4},
	}
	if got := cmd.Request(Azimuth); got.Delta != 1 {
		t.Fatalf("azimuth request = %+v", got)
	}
	if got := cmd.Request(Elevation); got.CachedDelta != 4 {
		t.Fatalf("elevation request = %+v", got)
	}
}

func TestMotionResultResultSelectsAxis(t *testing.T) {
	res := MotionResult{
		Azimuth:   AxisResult{Moved: 0.5},
		Elevation: AxisResult{Stalled: true},
	}
	if got := res.Result(Azimuth); got.Moved != 0.5 {
		t.Fatalf("azimuth result = %+v", got)
	}
	if got := res.Result(Elevation); !got.Stalled {
		t.Fatalf("elevation result = %+v", got)
	}
}

func TestTelescopeStatusJSONShape(t *testing.T) {
	data, err := json.Marshal(TelescopeStatus{
		Azimuth: AxisStatus{Angle: 1.5, Moving: true},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(data)
	for _, key := range []string{
		`"azimuth"`, `"elevation"`, `"angle"`, `"moving"`,
		`"executing_relative_move"`, `"invalid_input"`,
		`"invalid_azimuth_position"`, `"invalid_elevation_position"`,
	} {
		if !strings.Contains(body, key) {
			t.Fatalf("expected %s in the status JSON, got %s", key, body)
		}
	}
}
