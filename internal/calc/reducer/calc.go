package reducer

import (
	"fmt"
	"math"

	"Erosion/internal/calc/dnv"
)

type Geometry struct {
	InletDiameterM  float64
	OutletDiameterM float64
	AngleDeg        float64 // taper half-angle
}

func Parse(p dnv.Params) (Geometry, error) {
	if err := p.Require(dnv.Reducer, "inlet_diameter", "outlet_diameter", "angle"); err != nil {
		return Geometry{}, err
	}
	g := Geometry{
		InletDiameterM:  p["inlet_diameter"],
		OutletDiameterM: p["outlet_diameter"],
		AngleDeg:        p["angle"],
	}
	return g, g.Validate()
}

func (g Geometry) Validate() error {
	if err := dnv.Length(dnv.Reducer, "inlet_diameter", g.InletDiameterM); err != nil {
		return err
	}
	if err := dnv.Length(dnv.Reducer, "outlet_diameter", g.OutletDiameterM); err != nil {
		return err
	}
	if g.OutletDiameterM >= g.InletDiameterM {
		return dnv.OutOfRange(dnv.Reducer, "outlet_diameter", "must be smaller than inlet_diameter (area ratio < 1)")
	}
	if math.IsNaN(g.AngleDeg) || g.AngleDeg <= 0 || g.AngleDeg >= 90 {
		return dnv.OutOfRange(dnv.Reducer, "angle", "taper angle must lie in (0, 90) degrees")
	}
	return nil
}

func (g Geometry) Params() dnv.Params {
	return dnv.Params{
		"inlet_diameter":  g.InletDiameterM,
		"outlet_diameter": g.OutletDiameterM,
		"angle":           g.AngleDeg,
	}
}

// AreaRatio is A_out / A_in.
func (g Geometry) AreaRatio() float64 {
	r := g.OutletDiameterM / g.InletDiameterM
	return r * r
}

// OutletVelocity follows from continuity through the contraction.
func (g Geometry) OutletVelocity(inlet float64) float64 {
	return inlet / g.AreaRatio()
}

// TaperArea is the lateral wall of the frustum, π(r1+r2)(r1−r2)/sin α.
func (g Geometry) TaperArea() float64 {
	r1, r2 := g.InletDiameterM/2, g.OutletDiameterM/2
	return math.Pi * (r1 + r2) * (r1 - r2) / math.Sin(dnv.Radians(g.AngleDeg))
}

type Reducer struct {
	dnv.Base
	geo    Geometry
	tables dnv.Tables
}

func New(id string, m dnv.Material, g Geometry, tables dnv.Tables) (*Reducer, error) {
	base, err := dnv.NewBase(id, dnv.Reducer, m, g)
	if err != nil {
		return nil, err
	}
	if tables == nil {
		return nil, fmt.Errorf("%w: reducer %s: no curve tables", dnv.ErrValidation, id)
	}
	return &Reducer{Base: base, geo: g, tables: tables}, nil
}

func FromParams(id string, m dnv.Material, p dnv.Params, tables dnv.Tables) (dnv.Component, error) {
	g, err := Parse(p)
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", id, err)
	}
	r, err := New(id, m, g, tables)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CalculateErosion takes the mixture velocity as the inlet velocity. Impact velocity and Reynolds
// number are evaluated at the outlet, the sand mass flow over the inlet bore.
func (r *Reducer) CalculateErosion(fluid dnv.FluidProperties, sand dnv.SandProperties, opts dnv.Options) (dnv.ErosionResult, error) {
	if err := dnv.CheckInputs(fluid, sand, opts); err != nil {
		return dnv.ErosionResult{}, err
	}
	outlet := fluid
	outlet.Velocity = r.geo.OutletVelocity(fluid.Velocity)
	re, err := dnv.Reynolds(outlet, r.geo.OutletDiameterM)
	if err != nil {
		return dnv.ErosionResult{}, err
	}
	massFlow := dnv.SandMassFlow(fluid, sand, r.geo.InletDiameterM)

	imp := dnv.Impact{
		AngleDeg: r.geo.AngleDeg,
		Velocity: outlet.Velocity,
		A:        re / (sand.Density / fluid.Density),
		Diameter: r.geo.OutletDiameterM,
		Area:     r.geo.TaperArea(),
	}
	terms, err := dnv.Relative(r.tables, dnv.Reducer, r.Material(), outlet, sand, imp, opts.GeometryFactor)
	if err != nil {
		return dnv.ErosionResult{}, fmt.Errorf("reducer %s: %w", r.ID(), err)
	}

	res := r.NewResult(terms.Relative, massFlow, imp.Area, "tapered section", opts)
	res.Details.Add("inlet_velocity", fluid.Velocity, "m/s")
	res.Details.Add("outlet_velocity", outlet.Velocity, "m/s")
	res.Details.Add("area_ratio", r.geo.AreaRatio(), "dimensionless")
	res.Details.Add("impact_angle", r.geo.AngleDeg, "degrees")
	res.Details.Add("material_function_F_alpha", terms.F, "dimensionless")
	res.Details.Add("particle_correction_factor", terms.G, "dimensionless")
	res.Details.Add("outlet_reynolds_number", re, "dimensionless")
	res.Details.Add("model_geometry_factor_C1", terms.C1, "dimensionless")
	return res, dnv.CheckResult(res)
}
