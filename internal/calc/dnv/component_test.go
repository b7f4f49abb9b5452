package dnv

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type boreGeometry struct {
	d float64
}

func (g boreGeometry) Validate() error           { return Length("test_pipe", "internal_diameter", g.d) }
func (g boreGeometry) Params() Params            { return Params{"internal_diameter": g.d} }
func (g boreGeometry) InternalDiameter() float64 { return g.d }

type flatGeometry struct{}

func (flatGeometry) Validate() error { return nil }
func (flatGeometry) Params() Params  { return Params{"width": 1} }

func carbonSteel() Material {
	return Material{Type: "carbon_steel", Density: 7800, ErosionConstantK: 2e-9, VelocityExponentN: 2.6, Ductility: Ductile}
}

func fluid() FluidProperties {
	return FluidProperties{Velocity: 15, Density: 650, Viscosity: 0.001}
}

func sand() SandProperties {
	return SandProperties{Concentration: 10, ParticleSizeD50: 250, Density: 2650, SandType: "quartz_sand"}
}

func TestReynoldsNumber(t *testing.T) {
	b, err := NewBase("c1", "test_pipe", carbonSteel(), boreGeometry{d: 0.1})
	require.NoError(t, err)

	re, err := b.ReynoldsNumber(fluid())
	require.NoError(t, err)
	assert.InDelta(t, 975000.0, re, 1e-6)

	faster := fluid()
	faster.Velocity = 20
	re2, err := b.ReynoldsNumber(faster)
	require.NoError(t, err)
	assert.Greater(t, re2, re)

	thicker := fluid()
	thicker.Viscosity = 0.002
	re3, err := b.ReynoldsNumber(thicker)
	require.NoError(t, err)
	assert.Less(t, re3, re)
}

func TestSandMassFlowDerived(t *testing.T) {
	b, err := NewBase("c1", "test_pipe", carbonSteel(), boreGeometry{d: 0.1})
	require.NoError(t, err)

	m, err := b.SandMassFlow(fluid(), sand())
	require.NoError(t, err)
	assert.InDelta(t, 0.00076576, m, 1e-6)
	assert.InDelta(t, math.Pi*0.0025, CrossSection(0.1), 1e-12)
}

func TestSandMassFlowSupplied(t *testing.T) {
	b, err := NewBase("c1", "test_pipe", carbonSteel(), boreGeometry{d: 0.1})
	require.NoError(t, err)

	s := sand().WithMassFlow(0.05, false)
	s.Concentration = 999
	m, err := b.SandMassFlow(fluid(), s)
	require.NoError(t, err)
	assert.Equal(t, 0.05, m)
}

func TestMissingInternalDiameter(t *testing.T) {
	b, err := NewBase("c1", "test_plate", carbonSteel(), flatGeometry{})
	require.NoError(t, err)

	_, err = b.ReynoldsNumber(fluid())
	assert.ErrorIs(t, err, ErrMissingGeometryParameter)

	_, err = b.SandMassFlow(fluid(), sand())
	assert.ErrorIs(t, err, ErrMissingGeometryParameter)

	var ge *GeometryError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, "internal_diameter", ge.Key)
	assert.Equal(t, "MissingGeometryParameter", Kind(err))
}

func TestNewBaseRejects(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		material Material
		geometry Geometry
	}{
		{"empty id", "  ", carbonSteel(), boreGeometry{d: 0.1}},
		{"nil geometry", "c1", carbonSteel(), nil},
		{"zero-value material", "c1", Material{}, boreGeometry{d: 0.1}},
		{"negative k", "c1", Material{Type: "x", Density: 1, ErosionConstantK: -1, VelocityExponentN: 2, Ductility: Ductile}, boreGeometry{d: 0.1}},
		{"bad diameter", "c1", carbonSteel(), boreGeometry{d: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBase(tt.id, "test_pipe", tt.material, tt.geometry)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRequire(t *testing.T) {
	err := Params{}.Require(PipeBend, "internal_diameter")
	assert.ErrorIs(t, err, ErrValidation)

	err = Params{"internal_diameter": 0.1}.Require(PipeBend, "internal_diameter", "radius_of_curvature")
	assert.ErrorIs(t, err, ErrMissingGeometryParameter)
	assert.Contains(t, err.Error(), "radius_of_curvature")
}

func TestInfoAndString(t *testing.T) {
	b, err := NewBase("c9", "test_pipe", carbonSteel(), boreGeometry{d: 0.2})
	require.NoError(t, err)

	info := b.Info()
	assert.Equal(t, "c9", info.ComponentID)
	assert.Equal(t, "carbon_steel", info.MaterialType)
	assert.Equal(t, 0.2, info.Geometry["internal_diameter"])
	assert.Equal(t, "test_pipe(id='c9', material='carbon_steel')", b.String())
}

func TestRelativeErosionRate(t *testing.T) {
	in := RateInput{Material: carbonSteel(), Velocity: 15, F: 1, G: 1, C1: 1, GeometryFactor: 1, Area: 0.01}
	base, err := RelativeErosionRate(in)
	require.NoError(t, err)
	want := 2e-9 * math.Pow(15, 2.6) / (7800 * 0.01) * 1e6
	assert.InDelta(t, want, base, 1e-12)

	in.Velocity = 0
	zero, err := RelativeErosionRate(in)
	require.NoError(t, err)
	assert.Zero(t, zero)

	in.Velocity = 15
	in.GeometryFactor = 2
	doubled, err := RelativeErosionRate(in)
	require.NoError(t, err)
	assert.InDelta(t, 2*base, doubled, 1e-12)

	in.Area = 0
	_, err = RelativeErosionRate(in)
	assert.ErrorIs(t, err, ErrComputation)
}

func TestAnnualizeLinear(t *testing.T) {
	annual, _ := Annualize(0.02, 0.001, 1)
	for _, period := range []float64{0, 1, 5, 10} {
		a, p := Annualize(0.02, 0.001, period)
		assert.Equal(t, annual, a)
		assert.InDelta(t, annual*period, p, 1e-15)
	}
	a2, _ := Annualize(0.02, 0.002, 1)
	assert.InDelta(t, 2*annual, a2, 1e-15)
}

func TestCheckInputs(t *testing.T) {
	f := fluid()
	f.Velocity = 0
	assert.NoError(t, CheckInputs(f, sand(), DefaultOptions()))

	f.Velocity = -1
	assert.ErrorIs(t, CheckInputs(f, sand(), DefaultOptions()), ErrValidation)

	f = fluid()
	f.Viscosity = 0
	assert.ErrorIs(t, CheckInputs(f, sand(), DefaultOptions()), ErrValidation)

	opts := DefaultOptions()
	opts.GeometryFactor = -0.5
	assert.ErrorIs(t, CheckInputs(fluid(), sand(), opts), ErrValidation)
}

func TestCheckResult(t *testing.T) {
	assert.NoError(t, CheckResult(ErosionResult{ComponentID: "c1", AnnualErosionRate: 0.1}))
	assert.ErrorIs(t, CheckResult(ErosionResult{ComponentID: "c1", AnnualErosionRate: math.NaN()}), ErrComputation)
	assert.ErrorIs(t, CheckResult(ErosionResult{ComponentID: "c1", ErosionArea: math.Inf(1)}), ErrComputation)
}

func TestWorst(t *testing.T) {
	assert.Equal(t, RiskHigh, Worst(RiskLow, RiskHigh))
	assert.Equal(t, RiskMedium, Worst(RiskMedium, RiskNegligible))
	assert.Equal(t, RiskNegligible, Worst("", RiskNegligible))
}
