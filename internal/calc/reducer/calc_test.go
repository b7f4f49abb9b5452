package reducer

import (
	"math"
	"testing"

	"Erosion/internal/calc/curves"
	"Erosion/internal/calc/dnv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func carbonSteel() dnv.Material {
	return dnv.Material{Type: "carbon_steel", Density: 7800, ErosionConstantK: 2e-9, VelocityExponentN: 2.6, Ductility: dnv.Ductile}
}

func newReducer(t *testing.T) *Reducer {
	t.Helper()
	tables, err := curves.Default()
	require.NoError(t, err)
	r, err := New("component_005", carbonSteel(), Geometry{InletDiameterM: 0.15, OutletDiameterM: 0.1, AngleDeg: 30}, tables)
	require.NoError(t, err)
	return r
}

func fluid(v float64) dnv.FluidProperties {
	return dnv.FluidProperties{Velocity: v, Density: 650, Viscosity: 0.001}
}

func sand() dnv.SandProperties {
	return dnv.SandProperties{Concentration: 10, ParticleSizeD50: 250, Density: 2650}
}

func TestGeometry(t *testing.T) {
	g := Geometry{InletDiameterM: 0.15, OutletDiameterM: 0.1, AngleDeg: 30}
	assert.InDelta(t, 0.4444, g.AreaRatio(), 1e-4)
	assert.InDelta(t, 33.75, g.OutletVelocity(15), 1e-9)
	assert.InDelta(t, math.Pi*0.125*0.025/0.5, g.TaperArea(), 1e-12)
}

func TestRejectsExpansion(t *testing.T) {
	tables, err := curves.Default()
	require.NoError(t, err)

	for _, out := range []float64{0.15, 0.2} {
		_, err := New("r1", carbonSteel(), Geometry{InletDiameterM: 0.15, OutletDiameterM: out, AngleDeg: 30}, tables)
		assert.ErrorIs(t, err, dnv.ErrValidation, "outlet=%v", out)
		var ge *dnv.GeometryError
		require.ErrorAs(t, err, &ge)
		assert.Equal(t, "outlet_diameter", ge.Key)
	}

	_, err = Parse(dnv.Params{"inlet_diameter": 0.15, "outlet_diameter": 0.1, "angle": 90})
	assert.ErrorIs(t, err, dnv.ErrValidation)
	_, err = Parse(dnv.Params{"inlet_diameter": 0.15, "outlet_diameter": 0.1})
	assert.ErrorIs(t, err, dnv.ErrMissingGeometryParameter)
}

func TestCalculateErosion(t *testing.T) {
	r := newReducer(t)
	res, err := r.CalculateErosion(fluid(15), sand(), dnv.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "tapered section", res.MaxErosionLocation)
	out, ok := res.Details.Lookup("outlet_velocity")
	require.True(t, ok)
	assert.InDelta(t, 33.75, out.Value, 1e-9)

	wantSand := 10 * 650 * 15 * dnv.CrossSection(0.15) / 1e6
	assert.InDelta(t, wantSand, res.SandMassFlow, 1e-12)
	assert.Greater(t, res.AnnualErosionRate, 0.0)
}

func TestZeroVelocityMonotonicPeriod(t *testing.T) {
	r := newReducer(t)
	zero, err := r.CalculateErosion(fluid(0), sand(), dnv.DefaultOptions())
	require.NoError(t, err)
	assert.Zero(t, zero.AnnualErosionRate)

	prev := -1.0
	for _, v := range []float64{1, 5, 15, 30} {
		res, err := r.CalculateErosion(fluid(v), sand(), dnv.DefaultOptions())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.RelativeErosionRate, prev)
		prev = res.RelativeErosionRate
	}

	for _, period := range []float64{0, 1, 5, 10} {
		opts := dnv.DefaultOptions()
		opts.TimePeriod = period
		res, err := r.CalculateErosion(fluid(15), sand(), opts)
		require.NoError(t, err)
		assert.InDelta(t, res.AnnualErosionRate*period, res.ErosionForPeriod, 1e-15)
	}
}
