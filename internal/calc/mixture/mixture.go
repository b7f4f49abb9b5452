package mixture

import (
	"fmt"
	"math"

	"Erosion/internal/calc/dnv"
)

// Standard reference state of the phase densities and rates.
const (
	StdPressure    = 1.01325 // bar
	StdTemperature = 15.0    // °C
	kelvin         = 273.15
)

// Phase is one stream at standard conditions. Gas phases are corrected to the system state,
// liquids are treated as incompressible.
type Phase struct {
	Name       string
	DensityStd float64 // kg/m3
	RateStd    float64 // m3/h
	Viscosity  float64 // kg/ms
	Gas        bool
}

// Conditions is the operating pressure (bar) and temperature (°C).
type Conditions struct {
	Pressure    float64
	Temperature float64
}

// Mixture is the homogeneous mixture state over the reference diameter.
type Mixture struct {
	Density        float64 // kg/m3
	Viscosity      float64 // kg/ms
	Velocity       float64 // m/s
	Reynolds       float64
	VolumetricRate float64 // m3/s at system conditions
	MassFlow       float64 // kg/s
	Diameter       float64 // m
}

// Fluid returns the shared fluid state handed to every component.
func (m Mixture) Fluid() dnv.FluidProperties {
	return dnv.FluidProperties{
		Velocity:       m.Velocity,
		Density:        m.Density,
		Viscosity:      m.Viscosity,
		ReynoldsNumber: m.Reynolds,
	}
}

// Actual returns the phase density (kg/m3) and rate (m3/s) at the system conditions.
func (p Phase) Actual(c Conditions) (density, rate float64) {
	rate = p.RateStd / 3600
	if !p.Gas {
		return p.DensityStd, rate
	}
	pr := c.Pressure / StdPressure
	tr := (c.Temperature + kelvin) / (StdTemperature + kelvin)
	return p.DensityStd * pr / tr, rate * tr / pr
}

func (p Phase) validate() error {
	if !(p.DensityStd > 0) || math.IsInf(p.DensityStd, 0) {
		return fmt.Errorf("%w: %s density must be > 0, got %v", dnv.ErrValidation, p.Name, p.DensityStd)
	}
	if math.IsNaN(p.RateStd) || math.IsInf(p.RateStd, 0) || p.RateStd < 0 {
		return fmt.Errorf("%w: %s rate must be >= 0, got %v", dnv.ErrValidation, p.Name, p.RateStd)
	}
	if !(p.Viscosity > 0) || math.IsInf(p.Viscosity, 0) {
		return fmt.Errorf("%w: %s viscosity must be > 0, got %v", dnv.ErrValidation, p.Name, p.Viscosity)
	}
	return nil
}

func (c Conditions) validate(gas bool) error {
	if !gas {
		return nil
	}
	if !(c.Pressure > 0) {
		return fmt.Errorf("%w: system pressure must be > 0 bar with a gas phase, got %v", dnv.ErrValidation, c.Pressure)
	}
	if !(c.Temperature+kelvin > 0) {
		return fmt.Errorf("%w: system temperature must be above absolute zero, got %v °C", dnv.ErrValidation, c.Temperature)
	}
	return nil
}

// Mix combines the phases into volume-weighted density and viscosity and computes the superficial
// mixture velocity over a bore of the given diameter. With no flow at all the properties fall back
// to the plain phase averages and the velocity is zero.
func Mix(phases []Phase, c Conditions, diameter float64) (Mixture, error) {
	if len(phases) == 0 {
		return Mixture{}, fmt.Errorf("%w: at least one fluid phase is required", dnv.ErrValidation)
	}
	if !(diameter > 0) || math.IsInf(diameter, 0) {
		return Mixture{}, fmt.Errorf("%w: reference diameter must be > 0, got %v", dnv.ErrValidation, diameter)
	}
	gas := false
	for _, p := range phases {
		if err := p.validate(); err != nil {
			return Mixture{}, err
		}
		gas = gas || p.Gas
	}
	if err := c.validate(gas); err != nil {
		return Mixture{}, err
	}

	var q, mass, mu, rhoSum, muSum float64
	for _, p := range phases {
		rho, rate := p.Actual(c)
		q += rate
		mass += rho * rate
		mu += p.Viscosity * rate
		rhoSum += rho
		muSum += p.Viscosity
	}

	m := Mixture{VolumetricRate: q, MassFlow: mass, Diameter: diameter}
	if q > 0 {
		m.Density = mass / q
		m.Viscosity = mu / q
		m.Velocity = q / dnv.CrossSection(diameter)
	} else {
		n := float64(len(phases))
		m.Density = rhoSum / n
		m.Viscosity = muSum / n
	}
	m.Reynolds = m.Density * m.Velocity * diameter / m.Viscosity
	if math.IsNaN(m.Reynolds) || math.IsInf(m.Reynolds, 0) {
		return Mixture{}, fmt.Errorf("%w: mixture Reynolds number is not finite", dnv.ErrComputation)
	}
	return m, nil
}

// MassBalance returns the relative difference between the transported mass (ρm·U·A) and the sum
// of the phase mass rates.
func (m Mixture) MassBalance() float64 {
	if m.MassFlow == 0 {
		return 0
	}
	transported := m.Density * m.Velocity * dnv.CrossSection(m.Diameter)
	return math.Abs(transported-m.MassFlow) / m.MassFlow
}
