package risk

import (
	"fmt"
	"math"

	"Erosion/internal/calc/dnv"
)

// DefaultReferenceLoss is the wall loss (mm) behind time_to_1mm_erosion.
const DefaultReferenceLoss = 1.0

// Thresholds are inclusive upper bounds of the annual erosion rate (mm/year) of each level.
// Anything above Medium is high.
type Thresholds struct {
	Negligible float64
	Low        float64
	Medium     float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Negligible: 1e-4, Low: 0.1, Medium: 0.4}
}

func (t Thresholds) Validate() error {
	if !(t.Negligible > 0 && t.Negligible < t.Low && t.Low < t.Medium) || math.IsInf(t.Medium, 0) {
		return fmt.Errorf("%w: risk thresholds must be positive and ascending, got %v / %v / %v",
			dnv.ErrValidation, t.Negligible, t.Low, t.Medium)
	}
	return nil
}

// Level classifies a rate.
func (t Thresholds) Level(rate float64) dnv.RiskLevel {
	switch {
	case rate <= t.Negligible:
		return dnv.RiskNegligible
	case rate <= t.Low:
		return dnv.RiskLow
	case rate <= t.Medium:
		return dnv.RiskMedium
	}
	return dnv.RiskHigh
}

type Classifier struct {
	Thresholds    Thresholds
	ReferenceLoss float64 // mm
}

func NewClassifier(t Thresholds, referenceLoss float64) (*Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if !(referenceLoss > 0) || math.IsInf(referenceLoss, 0) {
		return nil, fmt.Errorf("%w: reference wall loss must be > 0 mm, got %v", dnv.ErrValidation, referenceLoss)
	}
	return &Classifier{Thresholds: t, ReferenceLoss: referenceLoss}, nil
}

// Budget is the time and sand needed to erode a given wall loss. Both are nil for a zero rate.
type Budget struct {
	Loss  float64  // mm
	Years *float64 // years
	Sand  *float64 // tons
}

type Assessment struct {
	Level     dnv.RiskLevel
	Reference Budget
	// Allowable is set when the caller supplied an allowable wall loss.
	Allowable *Budget
}

// Assess classifies an annual rate (mm/year) for a component passing massFlow kg/s of sand.
// With an allowable loss (mm) the rate is scaled by reference/allowable before classification.
func (c *Classifier) Assess(annual, massFlow float64, allowable *float64) (Assessment, error) {
	if math.IsNaN(annual) || math.IsInf(annual, 0) || annual < 0 {
		return Assessment{}, fmt.Errorf("%w: annual erosion rate must be a finite value >= 0, got %v", dnv.ErrComputation, annual)
	}
	rate := annual
	a := Assessment{Reference: budget(c.ReferenceLoss, annual, massFlow)}
	if allowable != nil {
		if !(*allowable > 0) || math.IsInf(*allowable, 0) {
			return Assessment{}, fmt.Errorf("%w: allowable wall loss must be > 0 mm, got %v", dnv.ErrValidation, *allowable)
		}
		rate = annual * c.ReferenceLoss / *allowable
		b := budget(*allowable, annual, massFlow)
		a.Allowable = &b
	}
	a.Level = c.Thresholds.Level(rate)
	return a, nil
}

// Governing is the budget the inspection planning works from.
func (a Assessment) Governing() Budget {
	if a.Allowable != nil {
		return *a.Allowable
	}
	return a.Reference
}

func budget(loss, annual, massFlow float64) Budget {
	b := Budget{Loss: loss}
	if annual <= 0 {
		return b
	}
	years := loss / annual
	sand := years * dnv.SandTonsPerYear(massFlow)
	b.Years, b.Sand = &years, &sand
	return b
}
