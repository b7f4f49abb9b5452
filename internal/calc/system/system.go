package system

import (
	"fmt"
	"math"
	"sort"

	"Erosion/internal/calc/dnv"
)

// Entry is the read-only view of one successful component result.
type Entry struct {
	ID             string
	Type           dnv.ComponentType
	Annual         float64 // mm/year
	MassFlow       float64 // kg/s
	Level          dnv.RiskLevel
	TimeToLimit    *float64 // years, governing wall-loss budget
	GeometryFactor float64
}

// Inspection turns a time to the wall-loss limit into an interval: clamp(Fraction·t, Min, Max).
type Inspection struct {
	Fraction float64
	Min      float64 // years
	Max      float64 // years
}

// ClassBounds are the ascending lower bounds of erosion classes 2..5.
type ClassBounds struct {
	Velocity      []float64 // m/s
	Concentration []float64 // ppmW
}

type Policy struct {
	Inspection Inspection
	Classes    ClassBounds
}

func DefaultPolicy() Policy {
	return Policy{
		Inspection: Inspection{Fraction: 0.5, Min: 0.5, Max: 5},
		Classes: ClassBounds{
			Velocity:      []float64{3, 8, 20, 30},
			Concentration: []float64{1, 5, 50, 200},
		},
	}
}

func (p Policy) Validate() error {
	in := p.Inspection
	if !(in.Fraction > 0) || !(in.Min > 0) || !(in.Max >= in.Min) || math.IsInf(in.Max, 0) {
		return fmt.Errorf("%w: inspection policy needs fraction > 0 and 0 < min <= max", dnv.ErrValidation)
	}
	for name, b := range map[string][]float64{"velocity": p.Classes.Velocity, "concentration": p.Classes.Concentration} {
		if len(b) != 4 || !sort.Float64sAreSorted(b) {
			return fmt.Errorf("%w: %s class bounds must be four ascending values", dnv.ErrValidation, name)
		}
	}
	return nil
}

// Conditions are the request-level stream figures the erosion class is read from.
type Conditions struct {
	Velocity      float64 // m/s
	Concentration float64 // ppmW
}

type Critical struct {
	ID     string
	Type   dnv.ComponentType
	Annual float64
}

type Interval struct {
	ID    string
	Years float64
}

type Summary struct {
	MostCritical     *Critical
	TotalSand        float64 // tons/year
	Level            dnv.RiskLevel
	ErosionClass     int
	ClassDescription string
	Recommendations  []string
	// Inspections lists the components on a shortened interval, most urgent first.
	Inspections []Interval
	// StandardCycle is true when some components fall under the standard inspection cycle.
	StandardCycle bool
}

// Aggregate reduces the successful results. failed is the number of components that errored.
func Aggregate(entries []Entry, failed int, c Conditions, p Policy) Summary {
	var s Summary
	for _, e := range entries {
		s.TotalSand += dnv.SandTonsPerYear(e.MassFlow)
		s.Level = dnv.Worst(s.Level, e.Level)
		if s.MostCritical == nil || e.Annual > s.MostCritical.Annual ||
			(e.Annual == s.MostCritical.Annual && e.ID < s.MostCritical.ID) {
			s.MostCritical = &Critical{ID: e.ID, Type: e.Type, Annual: e.Annual}
		}
	}
	s.ErosionClass = ErosionClass(c, p.Classes)
	s.ClassDescription = ClassDescription(s.ErosionClass)
	s.Inspections, s.StandardCycle = inspections(entries, p.Inspection)
	s.Recommendations = recommendations(s, entries, failed)
	return s
}

func inspections(entries []Entry, in Inspection) ([]Interval, bool) {
	var out []Interval
	standard := false
	for _, e := range entries {
		if e.TimeToLimit == nil {
			standard = true
			continue
		}
		years := math.Min(math.Max(in.Fraction**e.TimeToLimit, in.Min), in.Max)
		if years >= in.Max {
			standard = true
			continue
		}
		out = append(out, Interval{ID: e.ID, Years: years})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Years != out[j].Years {
			return out[i].Years < out[j].Years
		}
		return out[i].ID < out[j].ID
	})
	return out, standard
}

func recommendations(s Summary, entries []Entry, failed int) []string {
	var recs []string
	switch s.Level {
	case dnv.RiskNegligible, dnv.RiskLow:
		recs = append(recs, "System operates within acceptable erosion limits")
	case dnv.RiskMedium:
		recs = append(recs, "Elevated erosion rates: review sand management and production velocity")
	case dnv.RiskHigh:
		recs = append(recs, "High erosion risk: reduce velocity or sand production and inspect affected components")
	}
	if s.MostCritical != nil && s.MostCritical.Annual > 0 {
		recs = append(recs, fmt.Sprintf("Monitor %s (%s) more frequently", s.MostCritical.Type.Label(), s.MostCritical.ID))
	}
	for _, e := range entries {
		if e.GeometryFactor != 1 {
			recs = append(recs, "Consider geometry factor validation for complex piping")
			break
		}
	}
	if failed > 0 {
		recs = append(recs, fmt.Sprintf("Resolve %d component calculation error(s)", failed))
	}
	return recs
}

// ErosionClass is the worse of the velocity class and the concentration class, 1..5.
func ErosionClass(c Conditions, b ClassBounds) int {
	return max(class(c.Velocity, b.Velocity), class(c.Concentration, b.Concentration))
}

func class(v float64, bounds []float64) int {
	n := 1
	for _, b := range bounds {
		if v >= b {
			n++
		}
	}
	return n
}

func ClassDescription(class int) string {
	switch class {
	case 1:
		return "Very low erosion potential"
	case 2:
		return "Low erosion potential"
	case 3:
		return "Medium erosion potential"
	case 4:
		return "High erosion potential"
	case 5:
		return "Very high erosion potential"
	}
	return "Unknown erosion potential"
}
