package probe

import (
	"fmt"

	"Erosion/internal/calc/dnv"
)

// DefaultMinVelocity is the mixture velocity (m/s) above which the implied sand production is valid.
const DefaultMinVelocity = 5.0

type Geometry struct {
	PipeDiameterM float64
	ProbeAngleDeg float64
}

func Parse(p dnv.Params) (Geometry, error) {
	if err := p.Require(dnv.ErosionProbe, "pipe_diameter", "probe_angle"); err != nil {
		return Geometry{}, err
	}
	g := Geometry{PipeDiameterM: p["pipe_diameter"], ProbeAngleDeg: p["probe_angle"]}
	return g, g.Validate()
}

func (g Geometry) Validate() error {
	if err := dnv.Length(dnv.ErosionProbe, "pipe_diameter", g.PipeDiameterM); err != nil {
		return err
	}
	return dnv.Angle(dnv.ErosionProbe, "probe_angle", g.ProbeAngleDeg, 0, 90)
}

func (g Geometry) Params() dnv.Params {
	return dnv.Params{"pipe_diameter": g.PipeDiameterM, "probe_angle": g.ProbeAngleDeg}
}

// ImpactArea is the equivalent impact area of the probe tip, πDp²/4.
func (g Geometry) ImpactArea() float64 {
	return dnv.CrossSection(g.PipeDiameterM)
}

type Probe struct {
	dnv.Base
	geo         Geometry
	tables      dnv.Tables
	minVelocity float64
}

func New(id string, m dnv.Material, g Geometry, tables dnv.Tables, minVelocity float64) (*Probe, error) {
	base, err := dnv.NewBase(id, dnv.ErosionProbe, m, g)
	if err != nil {
		return nil, err
	}
	if tables == nil {
		return nil, fmt.Errorf("%w: erosion probe %s: no curve tables", dnv.ErrValidation, id)
	}
	if !(minVelocity >= 0) {
		return nil, fmt.Errorf("%w: erosion probe %s: minimum velocity must be >= 0", dnv.ErrValidation, id)
	}
	return &Probe{Base: base, geo: g, tables: tables, minVelocity: minVelocity}, nil
}

func FromParams(id string, m dnv.Material, p dnv.Params, tables dnv.Tables, minVelocity float64) (dnv.Component, error) {
	g, err := Parse(p)
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", id, err)
	}
	pr, err := New(id, m, g, tables, minVelocity)
	if err != nil {
		return nil, err
	}
	return pr, nil
}

func (p *Probe) MinVelocity() float64 { return p.minVelocity }

// CalculateErosion predicts the probe loss and back-calculates the sand production that the
// measured (or, without a measurement, the predicted) loss implies.
func (p *Probe) CalculateErosion(fluid dnv.FluidProperties, sand dnv.SandProperties, opts dnv.Options) (dnv.ErosionResult, error) {
	if err := dnv.CheckInputs(fluid, sand, opts); err != nil {
		return dnv.ErosionResult{}, err
	}
	re, err := dnv.Reynolds(fluid, p.geo.PipeDiameterM)
	if err != nil {
		return dnv.ErosionResult{}, err
	}
	massFlow := dnv.SandMassFlow(fluid, sand, p.geo.PipeDiameterM)

	imp := dnv.Impact{
		AngleDeg: p.geo.ProbeAngleDeg,
		Velocity: fluid.Velocity,
		A:        re / (sand.Density / fluid.Density),
		Diameter: p.geo.PipeDiameterM,
		Area:     p.geo.ImpactArea(),
	}
	terms, err := dnv.Relative(p.tables, dnv.ErosionProbe, p.Material(), fluid, sand, imp, opts.GeometryFactor)
	if err != nil {
		return dnv.ErosionResult{}, fmt.Errorf("erosion probe %s: %w", p.ID(), err)
	}

	res := p.NewResult(terms.Relative, massFlow, imp.Area, "probe tip", opts)
	res.Details.Add("probe_angle", p.geo.ProbeAngleDeg, "degrees")
	res.Details.Add("material_function_F_alpha", terms.F, "dimensionless")
	res.Details.Add("particle_correction_factor", terms.G, "dimensionless")
	res.Details.Add("equivalent_impact_area", imp.Area, "m2")

	measured := res.AnnualErosionRate
	if opts.MeasuredErosionRate != nil {
		measured = *opts.MeasuredErosionRate
		res.Details.Add("measured_erosion_rate", measured, "mm/year")
	}
	switch {
	case fluid.Velocity <= p.minVelocity:
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"erosion probe %s: mixture velocity %.3g m/s is not above %.3g m/s, sand production from erosion omitted",
			p.ID(), fluid.Velocity, p.minVelocity))
	case terms.Relative <= 0:
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"erosion probe %s: zero relative erosion rate, sand production from erosion omitted", p.ID()))
	default:
		implied := measured / (terms.Relative * dnv.SecondsPerYear / 1000)
		res.ImpliedSandProduction = &implied
	}
	return res, dnv.CheckResult(res)
}
