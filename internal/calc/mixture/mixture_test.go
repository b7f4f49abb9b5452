package mixture

import (
	"math"
	"testing"

	"Erosion/internal/calc/dnv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liquids() []Phase {
	return []Phase{
		{Name: "oil", DensityStd: 800, RateStd: 1000, Viscosity: 0.002},
		{Name: "water", DensityStd: 1025, RateStd: 1000, Viscosity: 0.001},
	}
}

func TestMixLiquids(t *testing.T) {
	m, err := Mix(liquids(), Conditions{Pressure: 50, Temperature: 80}, 0.2)
	require.NoError(t, err)

	q := 2000.0 / 3600
	assert.InDelta(t, q, m.VolumetricRate, 1e-12)
	assert.InDelta(t, (800+1025)/2.0, m.Density, 1e-9)
	assert.InDelta(t, 0.0015, m.Viscosity, 1e-12)
	assert.InDelta(t, q/(math.Pi*0.01), m.Velocity, 1e-9)
	assert.InDelta(t, m.Density*m.Velocity*0.2/m.Viscosity, m.Reynolds, 1e-6)
	assert.Less(t, m.MassBalance(), 1e-12)

	f := m.Fluid()
	assert.Equal(t, m.Velocity, f.Velocity)
	assert.Equal(t, m.Reynolds, f.ReynoldsNumber)
}

func TestMixGasCorrection(t *testing.T) {
	gas := Phase{Name: "gas", DensityStd: 0.8, RateStd: 36000, Viscosity: 1.5e-5, Gas: true}

	atStd, err := Mix([]Phase{gas}, Conditions{Pressure: StdPressure, Temperature: StdTemperature}, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, atStd.Density, 1e-12)
	assert.InDelta(t, 10.0, atStd.VolumetricRate, 1e-12)

	compressed, err := Mix([]Phase{gas}, Conditions{Pressure: 10 * StdPressure, Temperature: StdTemperature}, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, compressed.Density, 1e-9)
	assert.InDelta(t, 1.0, compressed.VolumetricRate, 1e-12)
	assert.InDelta(t, atStd.MassFlow, compressed.MassFlow, 1e-9)

	hot, err := Mix([]Phase{gas}, Conditions{Pressure: StdPressure, Temperature: 2*StdTemperature + kelvin}, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, hot.Density, 1e-9)
	assert.Less(t, hot.MassBalance(), 1e-12)
}

func TestMixMassBalance(t *testing.T) {
	phases := append(liquids(), Phase{Name: "gas", DensityStd: 1.2, RateStd: 5000, Viscosity: 1.8e-5, Gas: true})
	m, err := Mix(phases, Conditions{Pressure: 50, Temperature: 80}, 0.15)
	require.NoError(t, err)

	var want float64
	for _, p := range phases {
		rho, q := p.Actual(Conditions{Pressure: 50, Temperature: 80})
		want += rho * q
	}
	assert.InDelta(t, want, m.Density*m.Velocity*dnv.CrossSection(0.15), 1e-9)
	assert.InDelta(t, want, m.MassFlow, 1e-12)
}

func TestMixNoFlow(t *testing.T) {
	phases := liquids()
	for i := range phases {
		phases[i].RateStd = 0
	}
	m, err := Mix(phases, Conditions{}, 0.1)
	require.NoError(t, err)
	assert.Zero(t, m.Velocity)
	assert.Zero(t, m.Reynolds)
	assert.InDelta(t, 912.5, m.Density, 1e-9)
}

func TestMixRejects(t *testing.T) {
	tests := []struct {
		name     string
		phases   []Phase
		cond     Conditions
		diameter float64
	}{
		{"no phases", nil, Conditions{}, 0.1},
		{"zero diameter", liquids(), Conditions{}, 0},
		{"zero density", []Phase{{Name: "oil", RateStd: 1, Viscosity: 0.001}}, Conditions{}, 0.1},
		{"zero viscosity", []Phase{{Name: "oil", DensityStd: 800, RateStd: 1}}, Conditions{}, 0.1},
		{"negative rate", []Phase{{Name: "oil", DensityStd: 800, RateStd: -1, Viscosity: 0.001}}, Conditions{}, 0.1},
		{"gas without pressure", []Phase{{Name: "gas", DensityStd: 1, RateStd: 1, Viscosity: 1e-5, Gas: true}}, Conditions{Temperature: 20}, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Mix(tt.phases, tt.cond, tt.diameter)
			assert.ErrorIs(t, err, dnv.ErrValidation)
		})
	}
}

func TestStream(t *testing.T) {
	m := Mixture{MassFlow: 76.5763}
	sand := dnv.SandProperties{Concentration: 10, ParticleSizeD50: 250, Density: 2650}

	derived, err := Stream(sand, m)
	require.NoError(t, err)
	require.NotNil(t, derived.MassFlowRate)
	assert.True(t, derived.Derived)
	assert.InDelta(t, 0.00076576, *derived.MassFlowRate, 1e-6)
	assert.Nil(t, sand.MassFlowRate)

	supplied, err := Stream(sand.WithMassFlow(0.01, false), m)
	require.NoError(t, err)
	assert.False(t, supplied.Derived)
	assert.Equal(t, 0.01, *supplied.MassFlowRate)
	assert.InDelta(t, 0.01*dnv.SecondsPerYear/1000, AnnualSand(supplied), 1e-9)

	more, err := Stream(dnv.SandProperties{Concentration: 20, ParticleSizeD50: 250, Density: 2650}, m)
	require.NoError(t, err)
	assert.InDelta(t, 2**derived.MassFlowRate, *more.MassFlowRate, 1e-12)

	_, err = Stream(dnv.SandProperties{Concentration: -1, ParticleSizeD50: 250, Density: 2650}, m)
	assert.ErrorIs(t, err, dnv.ErrValidation)
}
