package bend

import (
	"fmt"
	"math"

	"Erosion/internal/calc/dnv"
)

// Geometry of a pipe bend. RadiusOfCurvature is in pipe diameters.
type Geometry struct {
	InternalDiameterM float64
	RadiusOfCurvature float64
}

func Parse(p dnv.Params) (Geometry, error) {
	if err := p.Require(dnv.PipeBend, "internal_diameter", "radius_of_curvature"); err != nil {
		return Geometry{}, err
	}
	g := Geometry{InternalDiameterM: p["internal_diameter"], RadiusOfCurvature: p["radius_of_curvature"]}
	return g, g.Validate()
}

func (g Geometry) Validate() error {
	if err := dnv.Length(dnv.PipeBend, "internal_diameter", g.InternalDiameterM); err != nil {
		return err
	}
	return dnv.Length(dnv.PipeBend, "radius_of_curvature", g.RadiusOfCurvature)
}

func (g Geometry) Params() dnv.Params {
	return dnv.Params{"internal_diameter": g.InternalDiameterM, "radius_of_curvature": g.RadiusOfCurvature}
}

func (g Geometry) InternalDiameter() float64 { return g.InternalDiameterM }

// ImpactAngle is the characteristic impact angle α = atan(1/√(2R)) in degrees.
func (g Geometry) ImpactAngle() float64 {
	return dnv.Degrees(math.Atan(1 / math.Sqrt(2*g.RadiusOfCurvature)))
}

// MaxErosionAngle is the offset of the worst point from the bend inlet, in degrees.
func (g Geometry) MaxErosionAngle() float64 {
	return dnv.Degrees(math.Acos(g.RadiusOfCurvature / (g.RadiusOfCurvature + 0.5)))
}

// ExposedArea is the pipe cross-section projected on the outer wall, (πD²/4)/sin α.
func (g Geometry) ExposedArea() float64 {
	return dnv.CrossSection(g.InternalDiameterM) / math.Sin(dnv.Radians(g.ImpactAngle()))
}

type Bend struct {
	dnv.Base
	geo    Geometry
	tables dnv.Tables
}

func New(id string, m dnv.Material, g Geometry, tables dnv.Tables) (*Bend, error) {
	base, err := dnv.NewBase(id, dnv.PipeBend, m, g)
	if err != nil {
		return nil, err
	}
	if tables == nil {
		return nil, fmt.Errorf("%w: pipe bend %s: no curve tables", dnv.ErrValidation, id)
	}
	return &Bend{Base: base, geo: g, tables: tables}, nil
}

// FromParams parses the geometry bag and builds the component.
func FromParams(id string, m dnv.Material, p dnv.Params, tables dnv.Tables) (dnv.Component, error) {
	g, err := Parse(p)
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", id, err)
	}
	b, err := New(id, m, g, tables)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bend) CalculateErosion(fluid dnv.FluidProperties, sand dnv.SandProperties, opts dnv.Options) (dnv.ErosionResult, error) {
	if err := dnv.CheckInputs(fluid, sand, opts); err != nil {
		return dnv.ErosionResult{}, err
	}
	re, err := b.ReynoldsNumber(fluid)
	if err != nil {
		return dnv.ErosionResult{}, err
	}
	massFlow, err := b.SandMassFlow(fluid, sand)
	if err != nil {
		return dnv.ErosionResult{}, err
	}

	alpha := b.geo.ImpactAngle()
	beta := sand.Density / fluid.Density
	imp := dnv.Impact{
		AngleDeg: alpha,
		Velocity: fluid.Velocity,
		A:        re * math.Tan(dnv.Radians(alpha)) / beta,
		Diameter: b.geo.InternalDiameterM,
		Area:     b.geo.ExposedArea(),
	}
	terms, err := dnv.Relative(b.tables, dnv.PipeBend, b.Material(), fluid, sand, imp, opts.GeometryFactor)
	if err != nil {
		return dnv.ErosionResult{}, fmt.Errorf("pipe bend %s: %w", b.ID(), err)
	}

	location := fmt.Sprintf("%.0f degrees from bend inlet", b.geo.MaxErosionAngle())
	res := b.NewResult(terms.Relative, massFlow, imp.Area, location, opts)
	res.Details.Add("characteristic_impact_angle", alpha, "degrees")
	res.Details.Add("dimensionless_parameter_A", imp.A, "dimensionless")
	res.Details.AddCritical("critical_particle_diameter", terms.Critical)
	res.Details.Add("particle_correction_factor_G", terms.G, "dimensionless")
	res.Details.Add("material_function_F_alpha", terms.F, "dimensionless")
	res.Details.Add("model_geometry_factor_C1", terms.C1, "dimensionless")
	res.Details.Add("geometry_factor", opts.GeometryFactor, "dimensionless")
	if b.geo.RadiusOfCurvature < 1 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("pipe bend %s: radius of curvature %.2g D is below the validated range of the bend model", b.ID(), b.geo.RadiusOfCurvature))
	}
	return res, dnv.CheckResult(res)
}
