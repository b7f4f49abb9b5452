package system

import (
	"testing"

	"Erosion/internal/calc/dnv"
	"Erosion/internal/calc/risk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(t *testing.T) []Entry {
	t.Helper()
	c, err := risk.NewClassifier(risk.DefaultThresholds(), risk.DefaultReferenceLoss)
	require.NoError(t, err)

	rows := []struct {
		id     string
		typ    dnv.ComponentType
		annual float64
	}{
		{"component_001", dnv.PipeBend, 0.0006},
		{"component_002", dnv.StraightPipe, 0.0000024},
		{"component_003", dnv.WeldedJoint, 0.0003},
		{"component_004", dnv.BlindedTee, 0.00036},
		{"component_005", dnv.Reducer, 0.00108},
		{"component_006", dnv.ErosionProbe, 0.00072},
	}
	var out []Entry
	for _, r := range rows {
		a, err := c.Assess(r.annual, 0.00076576, nil)
		require.NoError(t, err)
		out = append(out, Entry{
			ID: r.id, Type: r.typ, Annual: r.annual, MassFlow: 0.00076576,
			Level: a.Level, TimeToLimit: a.Governing().Years, GeometryFactor: 1,
		})
	}
	return out
}

func TestAggregateSixComponents(t *testing.T) {
	es := entries(t)
	s := Aggregate(es, 0, Conditions{Velocity: 15, Concentration: 10}, DefaultPolicy())

	require.NotNil(t, s.MostCritical)
	assert.Equal(t, "component_005", s.MostCritical.ID)
	assert.Equal(t, dnv.Reducer, s.MostCritical.Type)
	assert.Equal(t, 0.00108, s.MostCritical.Annual)

	worst := dnv.RiskLevel("")
	for _, e := range es {
		worst = dnv.Worst(worst, e.Level)
	}
	assert.Equal(t, worst, s.Level)
	assert.Equal(t, dnv.RiskLow, s.Level)

	assert.InDelta(t, 6*0.00076576*dnv.SecondsPerYear/1000, s.TotalSand, 1e-9)
	assert.Equal(t, 3, s.ErosionClass)
	assert.Equal(t, "Medium erosion potential", s.ClassDescription)
	assert.Equal(t, []string{
		"System operates within acceptable erosion limits",
		"Monitor reducer (component_005) more frequently",
	}, s.Recommendations)

	assert.Empty(t, s.Inspections)
	assert.True(t, s.StandardCycle)
}

func TestAggregateDoesNotMutate(t *testing.T) {
	es := entries(t)
	before := make([]Entry, len(es))
	copy(before, es)
	Aggregate(es, 0, Conditions{}, DefaultPolicy())
	assert.Equal(t, before, es)
}

func TestTieBreakByID(t *testing.T) {
	es := []Entry{
		{ID: "b", Type: dnv.BlindedTee, Annual: 0.5, Level: dnv.RiskHigh},
		{ID: "a", Type: dnv.PipeBend, Annual: 0.5, Level: dnv.RiskHigh},
		{ID: "c", Type: dnv.Reducer, Annual: 0.1, Level: dnv.RiskLow},
	}
	s := Aggregate(es, 0, Conditions{}, DefaultPolicy())
	assert.Equal(t, "a", s.MostCritical.ID)
	assert.Equal(t, dnv.RiskHigh, s.Level)
}

func TestInspectionIntervals(t *testing.T) {
	years := func(v float64) *float64 { return &v }
	es := []Entry{
		{ID: "fast", Annual: 1, TimeToLimit: years(0.4)},
		{ID: "mid", Annual: 0.25, TimeToLimit: years(4)},
		{ID: "slow", Annual: 0.01, TimeToLimit: years(100)},
		{ID: "idle", Annual: 0},
	}
	s := Aggregate(es, 0, Conditions{}, DefaultPolicy())
	assert.Equal(t, []Interval{{ID: "fast", Years: 0.5}, {ID: "mid", Years: 2}}, s.Inspections)
	assert.True(t, s.StandardCycle)
}

func TestRecommendationsForFailuresAndFactors(t *testing.T) {
	es := []Entry{{ID: "x", Type: dnv.PipeBend, Annual: 0.5, Level: dnv.RiskHigh, GeometryFactor: 1.3}}
	s := Aggregate(es, 2, Conditions{}, DefaultPolicy())
	assert.Contains(t, s.Recommendations, "Consider geometry factor validation for complex piping")
	assert.Contains(t, s.Recommendations, "Resolve 2 component calculation error(s)")
	assert.Contains(t, s.Recommendations, "Monitor pipe bend (x) more frequently")

	empty := Aggregate(nil, 3, Conditions{}, DefaultPolicy())
	assert.Nil(t, empty.MostCritical)
	assert.Equal(t, []string{"Resolve 3 component calculation error(s)"}, empty.Recommendations)
}

func TestErosionClass(t *testing.T) {
	b := DefaultPolicy().Classes
	tests := []struct {
		c    Conditions
		want int
	}{
		{Conditions{Velocity: 1, Concentration: 0.5}, 1},
		{Conditions{Velocity: 5, Concentration: 0.5}, 2},
		{Conditions{Velocity: 1, Concentration: 60}, 4},
		{Conditions{Velocity: 35, Concentration: 10}, 5},
		{Conditions{Velocity: 15, Concentration: 10}, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErosionClass(tt.c, b), "%+v", tt.c)
	}
	assert.Equal(t, "Very high erosion potential", ClassDescription(5))
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
	p := DefaultPolicy()
	p.Inspection.Min = 10
	assert.ErrorIs(t, p.Validate(), dnv.ErrValidation)
	p = DefaultPolicy()
	p.Classes.Velocity = []float64{30, 20, 8, 3}
	assert.ErrorIs(t, p.Validate(), dnv.ErrValidation)
}
