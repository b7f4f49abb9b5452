package tee

import (
	"fmt"

	"Erosion/internal/calc/dnv"
)

// impactAngle of the flow turning into the blind leg.
const impactAngle = 90.0

type Geometry struct {
	InternalDiameterM float64
}

func Parse(p dnv.Params) (Geometry, error) {
	if err := p.Require(dnv.BlindedTee, "internal_diameter"); err != nil {
		return Geometry{}, err
	}
	g := Geometry{InternalDiameterM: p["internal_diameter"]}
	return g, g.Validate()
}

func (g Geometry) Validate() error {
	return dnv.Length(dnv.BlindedTee, "internal_diameter", g.InternalDiameterM)
}

func (g Geometry) Params() dnv.Params {
	return dnv.Params{"internal_diameter": g.InternalDiameterM}
}

func (g Geometry) InternalDiameter() float64 { return g.InternalDiameterM }

type Tee struct {
	dnv.Base
	geo    Geometry
	tables dnv.Tables
}

func New(id string, m dnv.Material, g Geometry, tables dnv.Tables) (*Tee, error) {
	base, err := dnv.NewBase(id, dnv.BlindedTee, m, g)
	if err != nil {
		return nil, err
	}
	if tables == nil {
		return nil, fmt.Errorf("%w: blinded tee %s: no curve tables", dnv.ErrValidation, id)
	}
	return &Tee{Base: base, geo: g, tables: tables}, nil
}

func FromParams(id string, m dnv.Material, p dnv.Params, tables dnv.Tables) (dnv.Component, error) {
	g, err := Parse(p)
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", id, err)
	}
	t, err := New(id, m, g, tables)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CalculateErosion models direct impingement on the blind face.
func (t *Tee) CalculateErosion(fluid dnv.FluidProperties, sand dnv.SandProperties, opts dnv.Options) (dnv.ErosionResult, error) {
	if err := dnv.CheckInputs(fluid, sand, opts); err != nil {
		return dnv.ErosionResult{}, err
	}
	re, err := t.ReynoldsNumber(fluid)
	if err != nil {
		return dnv.ErosionResult{}, err
	}
	massFlow, err := t.SandMassFlow(fluid, sand)
	if err != nil {
		return dnv.ErosionResult{}, err
	}

	beta := sand.Density / fluid.Density
	imp := dnv.Impact{
		AngleDeg: impactAngle,
		Velocity: fluid.Velocity,
		A:        re / beta,
		Diameter: t.geo.InternalDiameterM,
		Area:     dnv.CrossSection(t.geo.InternalDiameterM),
	}
	terms, err := dnv.Relative(t.tables, dnv.BlindedTee, t.Material(), fluid, sand, imp, opts.GeometryFactor)
	if err != nil {
		return dnv.ErosionResult{}, fmt.Errorf("blinded tee %s: %w", t.ID(), err)
	}

	res := t.NewResult(terms.Relative, massFlow, imp.Area, "blind zone center", opts)
	res.Details.Add("particle_diameter_ratio", terms.Gamma, "dimensionless")
	res.Details.Add("density_ratio_beta", terms.Beta, "dimensionless")
	res.Details.Add("reynolds_number", re, "dimensionless")
	res.Details.AddCritical("critical_particle_diameter", terms.Critical)
	res.Details.Add("particle_correction_factor", terms.G, "dimensionless")
	res.Details.Add("material_function_F_alpha", terms.F, "dimensionless")
	res.Details.Add("model_factor_C1", terms.C1, "dimensionless")
	return res, dnv.CheckResult(res)
}
