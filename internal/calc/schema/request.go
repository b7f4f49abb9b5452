package schema

// Quantity is every numeric field of the request and response documents.
type Quantity struct {
	Value             float64 `json:"value"`
	Unit              string  `json:"unit"`
	CalculationMethod string  `json:"calculation_method,omitempty"`
	Note              string  `json:"note,omitempty"`
	Calculate         bool    `json:"calculate,omitempty"`
}

// Q builds a plain quantity.
func Q(v float64, unit string) Quantity {
	return Quantity{Value: v, Unit: unit}
}

type Request struct {
	CalculationRequest CalculationRequest `json:"calculation_request"`
}

type CalculationRequest struct {
	Metadata           RequestMetadata    `json:"metadata"`
	SystemConditions   SystemConditions   `json:"system_conditions"`
	FluidProperties    FluidProperties    `json:"fluid_properties"`
	SandProperties     SandProperties     `json:"sand_properties"`
	Components         []Component        `json:"components"`
	CalculationOptions CalculationOptions `json:"calculation_options"`
}

type RequestMetadata struct {
	RequestID   string `json:"request_id"`
	Timestamp   string `json:"timestamp,omitempty"`
	Description string `json:"description,omitempty"`
	Units       string `json:"units,omitempty"`
}

type SystemConditions struct {
	Pressure    *Quantity `json:"pressure,omitempty"`
	Temperature *Quantity `json:"temperature,omitempty"`
	// ReferenceDiameter is the bore the mixture velocity is computed over. Defaults to the
	// first component's diameter.
	ReferenceDiameter *Quantity `json:"reference_diameter,omitempty"`
}

type Phase struct {
	DensityStd Quantity `json:"density_std"`
	RateStd    Quantity `json:"rate_std"`
	Viscosity  Quantity `json:"viscosity"`
}

type FluidProperties struct {
	Oil   *Phase `json:"oil,omitempty"`
	Water *Phase `json:"water,omitempty"`
	Gas   *Phase `json:"gas,omitempty"`
}

type ParticleSize struct {
	D50          Quantity `json:"d50"`
	Distribution string   `json:"distribution,omitempty"`
}

type SandProperties struct {
	Concentration Quantity     `json:"concentration"`
	ParticleSize  ParticleSize `json:"particle_size"`
	Density       Quantity     `json:"density"`
	Type          string       `json:"type,omitempty"`
	MassFlowRate  *Quantity    `json:"mass_flow_rate,omitempty"`
}

type Material struct {
	Type              string   `json:"type"`
	Density           Quantity `json:"density"`
	ErosionConstantK  Quantity `json:"erosion_constant_k"`
	VelocityExponentN Quantity `json:"velocity_exponent_n"`
	Ductility         string   `json:"ductility,omitempty"`
}

type OperatingConditions struct {
	GeometryFactor      *Quantity `json:"geometry_factor,omitempty"`
	AllowableWallLoss   *Quantity `json:"allowable_wall_loss,omitempty"`
	MeasuredErosionRate *Quantity `json:"measured_erosion_rate,omitempty"`
}

type Component struct {
	ID                  string               `json:"id"`
	Type                string               `json:"type"`
	Material            Material             `json:"material"`
	Geometry            map[string]Quantity  `json:"geometry"`
	OperatingConditions *OperatingConditions `json:"operating_conditions,omitempty"`
}

type CalculationOptions struct {
	TimePeriod             *Quantity `json:"time_period,omitempty"`
	IncludeGeometryFactors *bool     `json:"include_geometry_factors,omitempty"`
	DetailedOutput         *bool     `json:"detailed_output,omitempty"`
	ValidateInputs         *bool     `json:"validate_inputs,omitempty"`
	StrictMode             bool      `json:"strict_mode,omitempty"`
}

func enabled(b *bool) bool { return b == nil || *b }

func (o CalculationOptions) GeometryFactorsEnabled() bool { return enabled(o.IncludeGeometryFactors) }
func (o CalculationOptions) Detailed() bool               { return enabled(o.DetailedOutput) }
func (o CalculationOptions) Validating() bool             { return enabled(o.ValidateInputs) }
