package straight

import (
	"math"
	"testing"

	"Erosion/internal/calc/curves"
	"Erosion/internal/calc/dnv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipe(t *testing.T) *Pipe {
	t.Helper()
	tables, err := curves.Default()
	require.NoError(t, err)
	m := dnv.Material{Type: "stainless_steel_316", Density: 8000, ErosionConstantK: 2e-9, VelocityExponentN: 2.6, Ductility: dnv.Ductile}
	p, err := New("component_002", m, Geometry{InternalDiameterM: 0.1, LengthM: 50}, tables)
	require.NoError(t, err)
	return p
}

func fluid(v float64) dnv.FluidProperties {
	return dnv.FluidProperties{Velocity: v, Density: 650, Viscosity: 0.001}
}

func sand() dnv.SandProperties {
	return dnv.SandProperties{Concentration: 10, ParticleSizeD50: 250, Density: 2650}
}

func TestWettedArea(t *testing.T) {
	g := Geometry{InternalDiameterM: 0.1, LengthM: 50}
	assert.InDelta(t, 15.708, g.WettedArea(), 1e-3)
}

func TestFlowRegime(t *testing.T) {
	assert.Equal(t, "laminar", FlowRegime(1000))
	assert.Equal(t, "transitional", FlowRegime(3000))
	assert.Equal(t, "turbulent", FlowRegime(975000))
}

func TestCalculateErosion(t *testing.T) {
	p := newPipe(t)
	res, err := p.CalculateErosion(fluid(15), sand(), dnv.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "distributed along pipe", res.MaxErosionLocation)
	assert.InDelta(t, math.Pi*0.1*50, res.ErosionArea, 1e-12)
	assert.Greater(t, res.AnnualErosionRate, 0.0)
	assert.Less(t, res.AnnualErosionRate, 1e-4)

	regime, ok := res.Details.Lookup("flow_regime")
	require.True(t, ok)
	assert.Equal(t, "turbulent", regime.Text)
	f, ok := res.Details.Lookup("material_function_F_alpha")
	require.True(t, ok)
	assert.Equal(t, 0.01, f.Value)
	assert.Empty(t, res.Warnings)
}

func TestMonotonicAndZero(t *testing.T) {
	p := newPipe(t)
	prev := -1.0
	for _, v := range []float64{0, 2, 8, 15, 30} {
		res, err := p.CalculateErosion(fluid(v), sand(), dnv.DefaultOptions())
		require.NoError(t, err)
		if v == 0 {
			assert.Zero(t, res.AnnualErosionRate)
		}
		assert.GreaterOrEqual(t, res.RelativeErosionRate, prev)
		prev = res.RelativeErosionRate
	}
}

func TestPeriodLinear(t *testing.T) {
	p := newPipe(t)
	for _, period := range []float64{0, 1, 5, 10} {
		opts := dnv.DefaultOptions()
		opts.TimePeriod = period
		res, err := p.CalculateErosion(fluid(15), sand(), opts)
		require.NoError(t, err)
		assert.InDelta(t, res.AnnualErosionRate*period, res.ErosionForPeriod, 1e-18)
	}
}

func TestParse(t *testing.T) {
	_, err := Parse(dnv.Params{"internal_diameter": 0.1})
	assert.ErrorIs(t, err, dnv.ErrMissingGeometryParameter)

	_, err = Parse(dnv.Params{"internal_diameter": 0.1, "length": 0})
	assert.ErrorIs(t, err, dnv.ErrValidation)

	g, err := Parse(dnv.Params{"internal_diameter": 0.1, "length": 12})
	require.NoError(t, err)
	assert.Equal(t, 12.0, g.LengthM)
}
