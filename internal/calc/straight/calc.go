package straight

import (
	"fmt"
	"math"

	"Erosion/internal/calc/dnv"
)

// Reynolds bounds of the flow regimes.
const (
	laminarLimit   = 2300
	turbulentLimit = 4000
)

type Geometry struct {
	InternalDiameterM float64
	LengthM           float64
}

func Parse(p dnv.Params) (Geometry, error) {
	if err := p.Require(dnv.StraightPipe, "internal_diameter", "length"); err != nil {
		return Geometry{}, err
	}
	g := Geometry{InternalDiameterM: p["internal_diameter"], LengthM: p["length"]}
	return g, g.Validate()
}

func (g Geometry) Validate() error {
	if err := dnv.Length(dnv.StraightPipe, "internal_diameter", g.InternalDiameterM); err != nil {
		return err
	}
	return dnv.Length(dnv.StraightPipe, "length", g.LengthM)
}

func (g Geometry) Params() dnv.Params {
	return dnv.Params{"internal_diameter": g.InternalDiameterM, "length": g.LengthM}
}

func (g Geometry) InternalDiameter() float64 { return g.InternalDiameterM }

// WettedArea is the full inner wall, πDL.
func (g Geometry) WettedArea() float64 {
	return math.Pi * g.InternalDiameterM * g.LengthM
}

// FlowRegime names the regime of a Reynolds number.
func FlowRegime(re float64) string {
	switch {
	case re < laminarLimit:
		return "laminar"
	case re < turbulentLimit:
		return "transitional"
	}
	return "turbulent"
}

type Pipe struct {
	dnv.Base
	geo    Geometry
	tables dnv.Tables
}

func New(id string, m dnv.Material, g Geometry, tables dnv.Tables) (*Pipe, error) {
	base, err := dnv.NewBase(id, dnv.StraightPipe, m, g)
	if err != nil {
		return nil, err
	}
	if tables == nil {
		return nil, fmt.Errorf("%w: straight pipe %s: no curve tables", dnv.ErrValidation, id)
	}
	return &Pipe{Base: base, geo: g, tables: tables}, nil
}

func FromParams(id string, m dnv.Material, p dnv.Params, tables dnv.Tables) (dnv.Component, error) {
	g, err := Parse(p)
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", id, err)
	}
	c, err := New(id, m, g, tables)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CalculateErosion treats the run as grazing flow (α = 0) spread over the whole wetted wall.
func (c *Pipe) CalculateErosion(fluid dnv.FluidProperties, sand dnv.SandProperties, opts dnv.Options) (dnv.ErosionResult, error) {
	if err := dnv.CheckInputs(fluid, sand, opts); err != nil {
		return dnv.ErosionResult{}, err
	}
	re, err := c.ReynoldsNumber(fluid)
	if err != nil {
		return dnv.ErosionResult{}, err
	}
	massFlow, err := c.SandMassFlow(fluid, sand)
	if err != nil {
		return dnv.ErosionResult{}, err
	}

	imp := dnv.Impact{
		AngleDeg: 0,
		Velocity: fluid.Velocity,
		A:        re / (sand.Density / fluid.Density),
		Diameter: c.geo.InternalDiameterM,
		Area:     c.geo.WettedArea(),
	}
	terms, err := dnv.Relative(c.tables, dnv.StraightPipe, c.Material(), fluid, sand, imp, opts.GeometryFactor)
	if err != nil {
		return dnv.ErosionResult{}, fmt.Errorf("straight pipe %s: %w", c.ID(), err)
	}

	res := c.NewResult(terms.Relative, massFlow, imp.Area, "distributed along pipe", opts)
	res.Details.Note("flow_regime", FlowRegime(re))
	res.Details.Add("reynolds_number", re, "dimensionless")
	res.Details.Add("material_function_F_alpha", terms.F, "dimensionless")
	res.Details.Add("particle_correction_factor_G", terms.G, "dimensionless")
	res.Details.Add("model_geometry_factor_C1", terms.C1, "dimensionless")
	res.Details.Add("wetted_length", c.geo.LengthM, "m")
	if FlowRegime(re) != "turbulent" && fluid.Velocity > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("straight pipe %s: %s flow, the grazing-flow model assumes turbulent conditions", c.ID(), FlowRegime(re)))
	}
	return res, dnv.CheckResult(res)
}
