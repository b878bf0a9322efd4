package model

// AxisStatus is the read-only per-axis view handed to display and telemetry
// consumers. Angles are reported in the physical frame (the elevation
// calibration offset already subtracted).
type AxisStatus struct {
	Angle          float64 `json:"angle"`
	Speed          float64 `json:"speed"`
	Target         float64 `json:"target"`
	Moving         bool    `json:"moving"`
	PositiveMotion bool    `json:"positive_motion"`
	Accelerating   bool    `json:"accelerating"`
	Decelerating   bool    `json:"decelerating"`
	Homed          bool    `json:"homed"`
}

// TelescopeStatus is a consistent snapshot of both axes plus the
// controller-level flags, safe to hand across goroutines by value.
type TelescopeStatus struct {
	Azimuth   AxisStatus `json:"azimuth"`
	Elevation AxisStatus `json:"elevation"`

	ExecutingRelativeMove    bool `json:"executing_relative_move"`
	InvalidInput             bool `json:"invalid_input"`
	InvalidAzimuthPosition   bool `json:"invalid_azimuth_position"`
	InvalidElevationPosition bool `json:"invalid_elevation_position"`
}
