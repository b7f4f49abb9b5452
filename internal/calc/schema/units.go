package schema

import (
	"fmt"
	"math"
	"strings"

	"Erosion/internal/calc/dnv"
)

// Dimension names the canonical unit of a field.
type Dimension string

const (
	Pressure         Dimension = "bar"
	Temperature      Dimension = "celsius"
	Density          Dimension = "kg/m3"
	VolumeRate       Dimension = "m3/h"
	Viscosity        Dimension = "kg/ms"
	Concentration    Dimension = "ppmW"
	ParticleSizeUnit Dimension = "micrometers"
	Length           Dimension = "m"
	PipeDiameters    Dimension = "pipe_diameters"
	Angle            Dimension = "degrees"
	ErosionK         Dimension = "(m/s)^-n"
	Dimensionless    Dimension = "dimensionless"
	Time             Dimension = "year"
	MassFlow         Dimension = "kg/s"
	WallLoss         Dimension = "mm"
	ErosionRate      Dimension = "mm/year"
)

// Spellings accepted for each canonical unit. No conversion takes place.
var aliases = map[Dimension][]string{
	Pressure:         {"bar", "bara"},
	Temperature:      {"celsius", "°c", "degc", "c", "deg c"},
	Density:          {"kg/m3", "kg/m³", "kg/m^3"},
	VolumeRate:       {"m3/h", "m³/h", "m3/hr", "m^3/h"},
	Viscosity:        {"kg/ms", "kg/m.s", "kg/(m·s)", "kg/(m s)", "pa.s", "pa·s", "pa s", "pas"},
	Concentration:    {"ppmw", "ppm", "ppm(w)"},
	ParticleSizeUnit: {"micrometers", "micrometres", "μm", "µm", "um", "micron", "microns"},
	Length:           {"m", "meter", "meters", "metre", "metres"},
	PipeDiameters:    {"pipe_diameters", "d", "diameters"},
	Angle:            {"degrees", "degree", "deg", "°"},
	ErosionK:         {"(m/s)^-n", "(m/s)^(-n)", "(m/s)-n"},
	Dimensionless:    {"dimensionless", "-", "1"},
	Time:             {"year", "years", "yr", "y"},
	MassFlow:         {"kg/s"},
	WallLoss:         {"mm"},
	ErosionRate:      {"mm/year", "mm/yr", "mm/y"},
}

// GeometryDimension returns the unit expected for a geometry key.
func GeometryDimension(key string) (Dimension, bool) {
	switch key {
	case "internal_diameter", "length", "weld_height", "inlet_diameter", "outlet_diameter", "pipe_diameter":
		return Length, true
	case "radius_of_curvature":
		return PipeDiameters, true
	case "impact_angle", "angle", "probe_angle":
		return Angle, true
	}
	return "", false
}

// Accepts reports whether unit is a spelling of d. An empty unit is taken as the canonical one.
func (d Dimension) Accepts(unit string) bool {
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		return true
	}
	for _, a := range aliases[d] {
		if u == a {
			return true
		}
	}
	return false
}

// In returns the value after checking the unit and finiteness.
func (q Quantity) In(field string, d Dimension) (float64, error) {
	if !d.Accepts(q.Unit) {
		return 0, fmt.Errorf("%w: %s: unit %q is not supported, expected %s", dnv.ErrValidation, field, q.Unit, d)
	}
	if math.IsNaN(q.Value) || math.IsInf(q.Value, 0) {
		return 0, fmt.Errorf("%w: %s: value must be finite", dnv.ErrValidation, field)
	}
	return q.Value, nil
}
