package dnv

import (
	"math"
	"strings"
)

// SecondsPerYear is the Julian year used to annualize mass flows.
const SecondsPerYear = 365.25 * 24 * 3600

type ComponentType string

const (
	PipeBend     ComponentType = "pipe_bend"
	StraightPipe ComponentType = "straight_pipe"
	WeldedJoint  ComponentType = "welded_joint"
	BlindedTee   ComponentType = "blinded_tee"
	Reducer      ComponentType = "reducer"
	ErosionProbe ComponentType = "erosion_probe"
)

// Label is the human readable name used in recommendations ("pipe bend").
func (t ComponentType) Label() string {
	return strings.ReplaceAll(string(t), "_", " ")
}

type Ductility string

const (
	Ductile Ductility = "ductile"
	Brittle Ductility = "brittle"
)

// Material holds the wall material erosion properties.
type Material struct {
	Type              string    `json:"type"`
	Density           float64   `json:"density"`             // kg/m3
	ErosionConstantK  float64   `json:"erosion_constant_k"`  // (m/s)^-n
	VelocityExponentN float64   `json:"velocity_exponent_n"` // dimensionless
	Ductility         Ductility `json:"ductility"`
}

func (m Material) Validate() error {
	if strings.TrimSpace(m.Type) == "" {
		return invalid("material type must be a non-empty string")
	}
	if !positive(m.Density) {
		return invalid("material %s: density must be > 0", m.Type)
	}
	if !positive(m.ErosionConstantK) {
		return invalid("material %s: erosion_constant_k must be > 0", m.Type)
	}
	if !positive(m.VelocityExponentN) {
		return invalid("material %s: velocity_exponent_n must be > 0", m.Type)
	}
	switch m.Ductility {
	case Ductile, Brittle:
	default:
		return invalid("material %s: ductility must be %q or %q, got %q", m.Type, Ductile, Brittle, m.Ductility)
	}
	return nil
}

// FluidProperties is the mixture state shared by every component of a request.
// ReynoldsNumber is computed once at request scope for the reference diameter.
type FluidProperties struct {
	Velocity       float64 // m/s
	Density        float64 // kg/m3
	Viscosity      float64 // kg/ms
	ReynoldsNumber float64
}

func (f FluidProperties) Validate() error {
	if math.IsNaN(f.Velocity) || math.IsInf(f.Velocity, 0) || f.Velocity < 0 {
		return invalid("fluid velocity must be a finite value >= 0, got %v", f.Velocity)
	}
	if !positive(f.Density) {
		return invalid("fluid density must be > 0, got %v", f.Density)
	}
	if !positive(f.Viscosity) {
		return invalid("fluid viscosity must be > 0, got %v", f.Viscosity)
	}
	return nil
}

// SandProperties describes the particulate stream. MassFlowRate is either supplied by the
// caller or derived once by the sand stream; Derived tells which.
type SandProperties struct {
	Concentration   float64 // ppmW
	ParticleSizeD50 float64 // μm
	Density         float64 // kg/m3
	SandType        string
	MassFlowRate    *float64 // kg/s
	Derived         bool
}

func (s SandProperties) Validate() error {
	if math.IsNaN(s.Concentration) || math.IsInf(s.Concentration, 0) || s.Concentration < 0 {
		return invalid("sand concentration must be >= 0 ppmW, got %v", s.Concentration)
	}
	if !positive(s.ParticleSizeD50) {
		return invalid("sand particle size d50 must be > 0, got %v", s.ParticleSizeD50)
	}
	if !positive(s.Density) {
		return invalid("sand density must be > 0, got %v", s.Density)
	}
	if s.MassFlowRate != nil {
		v := *s.MassFlowRate
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return invalid("sand mass flow rate must be >= 0, got %v", v)
		}
	}
	return nil
}

// ParticleDiameter returns D50 in metres.
func (s SandProperties) ParticleDiameter() float64 {
	return s.ParticleSizeD50 * 1e-6
}

// WithMassFlow returns a copy carrying the given mass flow.
func (s SandProperties) WithMassFlow(v float64, derived bool) SandProperties {
	s.MassFlowRate = &v
	s.Derived = derived
	return s
}

// Options are the per-call calculation knobs.
type Options struct {
	TimePeriod     float64 // years
	GeometryFactor float64
	// MeasuredErosionRate (mm/year) is only read by erosion probes.
	MeasuredErosionRate *float64
}

func DefaultOptions() Options {
	return Options{TimePeriod: 1.0, GeometryFactor: 1.0}
}

func (o Options) Validate() error {
	if math.IsNaN(o.TimePeriod) || math.IsInf(o.TimePeriod, 0) || o.TimePeriod < 0 {
		return invalid("time period must be >= 0 years, got %v", o.TimePeriod)
	}
	if math.IsNaN(o.GeometryFactor) || math.IsInf(o.GeometryFactor, 0) || o.GeometryFactor < 0 {
		return invalid("geometry factor must be >= 0, got %v", o.GeometryFactor)
	}
	if o.MeasuredErosionRate != nil && !(*o.MeasuredErosionRate >= 0) {
		return invalid("measured erosion rate must be >= 0, got %v", *o.MeasuredErosionRate)
	}
	return nil
}

type RiskLevel string

const (
	RiskNegligible RiskLevel = "negligible"
	RiskLow        RiskLevel = "low"
	RiskMedium     RiskLevel = "medium"
	RiskHigh       RiskLevel = "high"
)

// Severity orders the levels; unknown levels sort below negligible.
func (r RiskLevel) Severity() int {
	switch r {
	case RiskNegligible:
		return 1
	case RiskLow:
		return 2
	case RiskMedium:
		return 3
	case RiskHigh:
		return 4
	}
	return 0
}

// Worst returns the more severe of two levels.
func Worst(a, b RiskLevel) RiskLevel {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}

// LocationRate is the rate at one named location of a component.
type LocationRate struct {
	Name                string
	RelativeErosionRate float64 // mm/ton
	AnnualErosionRate   float64 // mm/year
	ErosionForPeriod    float64 // mm
	Note                string
}

// ErosionResult is the output of one component calculation.
type ErosionResult struct {
	ComponentID   string
	ComponentType ComponentType

	RelativeErosionRate float64 // mm/ton
	AnnualErosionRate   float64 // mm/year
	ErosionForPeriod    float64 // mm
	TimePeriod          float64 // years
	MaxErosionLocation  string
	ErosionArea         float64 // m2
	SandMassFlow        float64 // kg/s
	RiskLevel           RiskLevel

	// Locations lists every reported location when a component has more than one.
	Locations []LocationRate
	// ImpliedSandProduction (kg/s) is set by erosion probes above the velocity limit only.
	ImpliedSandProduction *float64

	Details  Trace
	Warnings []string
}

// Info is the static description of a component.
type Info struct {
	ComponentID   string        `json:"component_id"`
	ComponentType ComponentType `json:"component_type"`
	MaterialType  string        `json:"material_type"`
	Geometry      Params        `json:"geometry"`
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
