package dnv

import (
	"math"
)

// ParticleRatio is the input of the particle-size correction curve.
type ParticleRatio struct {
	Diameter float64 // γ = d_p / D
	Density  float64 // β = ρ_p / ρ_f
	A        float64 // dimensionless flow group of the model
}

// Correction is the particle-size correction G together with the critical diameter ratio γc.
// CriticalRatio is +Inf when particles follow the streamlines.
type Correction struct {
	G             float64
	CriticalRatio float64
}

// Tables is the lookup collaborator for the published curves and model constants.
type Tables interface {
	MaterialFunction(alphaDeg float64, d Ductility) (float64, error)
	ParticleCorrection(p ParticleRatio) (Correction, error)
	ModelConstant(t ComponentType) (float64, error)
	LocationFactor(t ComponentType, location string) (float64, error)
}

// RateInput collects the terms of the generalized relative erosion rate.
type RateInput struct {
	Material       Material
	Velocity       float64 // characteristic impact velocity, m/s
	F              float64
	G              float64
	C1             float64
	GeometryFactor float64
	Area           float64 // exposed area, m2
}

// RelativeErosionRate returns mm of wall loss per ton of sand:
//
//	K * V^n * F * G * C1 * GF / (rho_wall * A) * 1e6
func RelativeErosionRate(in RateInput) (float64, error) {
	if !positive(in.Area) {
		return 0, computation("exposed area must be > 0, got %v", in.Area)
	}
	if in.Velocity < 0 {
		return 0, invalid("impact velocity must be >= 0, got %v", in.Velocity)
	}
	m := in.Material
	e := m.ErosionConstantK * math.Pow(in.Velocity, m.VelocityExponentN) *
		in.F * in.G * in.C1 * in.GeometryFactor / (m.Density * in.Area) * 1e6
	if math.IsNaN(e) || math.IsInf(e, 0) {
		return 0, computation("relative erosion rate is not finite")
	}
	return e, nil
}

// Annualize converts a relative rate (mm/ton) and a sand mass flow (kg/s) into mm/year and
// the erosion over period years.
func Annualize(relative, massFlow, period float64) (annual, forPeriod float64) {
	annual = relative * SandTonsPerYear(massFlow)
	return annual, annual * period
}

// SandTonsPerYear converts kg/s into tons/year.
func SandTonsPerYear(massFlow float64) float64 {
	return massFlow * SecondsPerYear / 1000
}

// CheckInputs validates the shared inputs of a calculation call.
func CheckInputs(fluid FluidProperties, sand SandProperties, opts Options) error {
	if err := fluid.Validate(); err != nil {
		return err
	}
	if err := sand.Validate(); err != nil {
		return err
	}
	return opts.Validate()
}

// CheckResult rejects non-finite or negative figures.
func CheckResult(r ErosionResult) error {
	values := map[string]float64{
		"relative_erosion_rate": r.RelativeErosionRate,
		"annual_erosion_rate":   r.AnnualErosionRate,
		"erosion_for_period":    r.ErosionForPeriod,
		"erosion_area":          r.ErosionArea,
		"sand_mass_flow":        r.SandMassFlow,
	}
	for k, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return computation("%s %s: %s = %v", r.ComponentType, r.ComponentID, k, v)
		}
	}
	return nil
}

// Radians converts degrees.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
