package risk

import (
	"testing"

	"Erosion/internal/calc/dnv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(DefaultThresholds(), DefaultReferenceLoss)
	require.NoError(t, err)
	return c
}

func TestLevels(t *testing.T) {
	c := classifier(t)
	tests := []struct {
		annual float64
		want   dnv.RiskLevel
	}{
		{0, dnv.RiskNegligible},
		{0.0000024, dnv.RiskNegligible},
		{1e-4, dnv.RiskNegligible},
		{0.0006, dnv.RiskLow},
		{0.00108, dnv.RiskLow},
		{0.25, dnv.RiskMedium},
		{0.4, dnv.RiskMedium},
		{2, dnv.RiskHigh},
	}
	for _, tt := range tests {
		a, err := c.Assess(tt.annual, 0.001, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, a.Level, "annual=%v", tt.annual)
	}
}

func TestMonotone(t *testing.T) {
	c := classifier(t)
	prev := 0
	for _, annual := range []float64{0, 1e-5, 1e-3, 0.05, 0.2, 0.5, 3} {
		a, err := c.Assess(annual, 0.001, nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, a.Level.Severity(), prev)
		prev = a.Level.Severity()
	}
}

func TestBudgets(t *testing.T) {
	c := classifier(t)
	a, err := c.Assess(0.0006, 0.00076576, nil)
	require.NoError(t, err)
	require.NotNil(t, a.Reference.Years)
	require.NotNil(t, a.Reference.Sand)
	assert.InDelta(t, 1666.667, *a.Reference.Years, 1e-3)
	assert.InDelta(t, *a.Reference.Years*0.00076576*dnv.SecondsPerYear/1000, *a.Reference.Sand, 1e-9)
	assert.Nil(t, a.Allowable)

	zero, err := c.Assess(0, 0.001, nil)
	require.NoError(t, err)
	assert.Nil(t, zero.Reference.Years)
	assert.Nil(t, zero.Reference.Sand)
}

func TestAllowableBudget(t *testing.T) {
	c := classifier(t)
	allowable := 0.001
	a, err := c.Assess(0.0006, 0.001, &allowable)
	require.NoError(t, err)
	assert.Equal(t, dnv.RiskHigh, a.Level)
	require.NotNil(t, a.Allowable)
	assert.InDelta(t, 0.001/0.0006, *a.Allowable.Years, 1e-9)
	assert.Equal(t, *a.Allowable.Years, *a.Governing().Years)

	generous := 10.0
	a, err = c.Assess(0.0006, 0.001, &generous)
	require.NoError(t, err)
	assert.Equal(t, dnv.RiskNegligible, a.Level)

	bad := 0.0
	_, err = c.Assess(0.0006, 0.001, &bad)
	assert.ErrorIs(t, err, dnv.ErrValidation)
}

func TestRejects(t *testing.T) {
	_, err := NewClassifier(Thresholds{Negligible: 0.5, Low: 0.1, Medium: 0.4}, 1)
	assert.ErrorIs(t, err, dnv.ErrValidation)
	_, err = NewClassifier(DefaultThresholds(), 0)
	assert.ErrorIs(t, err, dnv.ErrValidation)

	c := classifier(t)
	_, err = c.Assess(-1, 0, nil)
	assert.ErrorIs(t, err, dnv.ErrComputation)
}
