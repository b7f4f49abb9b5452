package weld

import (
	"fmt"
	"math"

	"Erosion/internal/calc/dnv"
)

// Reported locations of a welded joint.
const (
	FlowFacing = "flow_facing_weld"
	Downstream = "downstream_weld"
)

type Geometry struct {
	InternalDiameterM float64
	WeldHeightM       float64
	ImpactAngleDeg    float64
}

func Parse(p dnv.Params) (Geometry, error) {
	if err := p.Require(dnv.WeldedJoint, "internal_diameter", "weld_height", "impact_angle"); err != nil {
		return Geometry{}, err
	}
	g := Geometry{
		InternalDiameterM: p["internal_diameter"],
		WeldHeightM:       p["weld_height"],
		ImpactAngleDeg:    p["impact_angle"],
	}
	return g, g.Validate()
}

func (g Geometry) Validate() error {
	if err := dnv.Length(dnv.WeldedJoint, "internal_diameter", g.InternalDiameterM); err != nil {
		return err
	}
	if err := dnv.Length(dnv.WeldedJoint, "weld_height", g.WeldHeightM); err != nil {
		return err
	}
	if g.WeldHeightM >= g.InternalDiameterM/2 {
		return dnv.OutOfRange(dnv.WeldedJoint, "weld_height", "must be less than half the internal diameter")
	}
	return dnv.Angle(dnv.WeldedJoint, "impact_angle", g.ImpactAngleDeg, 0, 90)
}

func (g Geometry) Params() dnv.Params {
	return dnv.Params{
		"internal_diameter": g.InternalDiameterM,
		"weld_height":       g.WeldHeightM,
		"impact_angle":      g.ImpactAngleDeg,
	}
}

func (g Geometry) InternalDiameter() float64 { return g.InternalDiameterM }

// FaceArea is the weld face band πDh.
func (g Geometry) FaceArea() float64 {
	return math.Pi * g.InternalDiameterM * g.WeldHeightM
}

// InterceptedFraction is the share of the flow area blocked by the weld root, 1 − (1 − 2h/D)².
func (g Geometry) InterceptedFraction() float64 {
	r := 1 - 2*g.WeldHeightM/g.InternalDiameterM
	return 1 - r*r
}

type Joint struct {
	dnv.Base
	geo    Geometry
	tables dnv.Tables
}

func New(id string, m dnv.Material, g Geometry, tables dnv.Tables) (*Joint, error) {
	base, err := dnv.NewBase(id, dnv.WeldedJoint, m, g)
	if err != nil {
		return nil, err
	}
	if tables == nil {
		return nil, fmt.Errorf("%w: welded joint %s: no curve tables", dnv.ErrValidation, id)
	}
	return &Joint{Base: base, geo: g, tables: tables}, nil
}

func FromParams(id string, m dnv.Material, p dnv.Params, tables dnv.Tables) (dnv.Component, error) {
	g, err := Parse(p)
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", id, err)
	}
	j, err := New(id, m, g, tables)
	if err != nil {
		return nil, err
	}
	return j, nil
}

// CalculateErosion reports the weld face and the wall just downstream of it. The downstream
// location governs.
func (j *Joint) CalculateErosion(fluid dnv.FluidProperties, sand dnv.SandProperties, opts dnv.Options) (dnv.ErosionResult, error) {
	if err := dnv.CheckInputs(fluid, sand, opts); err != nil {
		return dnv.ErosionResult{}, err
	}
	re, err := j.ReynoldsNumber(fluid)
	if err != nil {
		return dnv.ErosionResult{}, err
	}
	massFlow, err := j.SandMassFlow(fluid, sand)
	if err != nil {
		return dnv.ErosionResult{}, err
	}

	imp := dnv.Impact{
		AngleDeg: j.geo.ImpactAngleDeg,
		Velocity: fluid.Velocity,
		A:        re / (sand.Density / fluid.Density),
		Diameter: j.geo.InternalDiameterM,
		Area:     j.geo.FaceArea(),
	}
	terms, err := dnv.Relative(j.tables, dnv.WeldedJoint, j.Material(), fluid, sand, imp, opts.GeometryFactor)
	if err != nil {
		return dnv.ErosionResult{}, fmt.Errorf("welded joint %s: %w", j.ID(), err)
	}
	faceFactor, err := j.tables.LocationFactor(dnv.WeldedJoint, FlowFacing)
	if err != nil {
		return dnv.ErosionResult{}, err
	}
	downFactor, err := j.tables.LocationFactor(dnv.WeldedJoint, Downstream)
	if err != nil {
		return dnv.ErosionResult{}, err
	}

	fraction := j.geo.InterceptedFraction()
	faceRel := terms.Relative * fraction * faceFactor
	downRel := terms.Relative * fraction * downFactor
	if downRel < faceRel {
		return dnv.ErosionResult{}, fmt.Errorf("%w: welded joint %s: downstream rate below weld face rate", dnv.ErrComputation, j.ID())
	}

	res := j.NewResult(downRel, massFlow, imp.Area, "downstream of weld", opts)
	for _, loc := range []struct {
		name string
		rel  float64
		note string
	}{
		{FlowFacing, faceRel, "Weld rounding, typically not structural concern"},
		{Downstream, downRel, ""},
	} {
		annual, period := dnv.Annualize(loc.rel, massFlow, opts.TimePeriod)
		res.Locations = append(res.Locations, dnv.LocationRate{
			Name:                loc.name,
			RelativeErosionRate: loc.rel,
			AnnualErosionRate:   annual,
			ErosionForPeriod:    period,
			Note:                loc.note,
		})
	}
	res.Details.Add("impact_angle", j.geo.ImpactAngleDeg, "degrees")
	res.Details.Add("material_function_F_alpha", terms.F, "dimensionless")
	res.Details.Add("particle_correction_factor_C2", terms.G, "dimensionless")
	res.Details.Add("intercepted_mass_fraction", fraction, "dimensionless")
	res.Details.Add("weld_face_area", imp.Area, "m2")
	res.Details.Add("model_geometry_factor_C1", terms.C1, "dimensionless")
	return res, dnv.CheckResult(res)
}
