package schema

type Response struct {
	CalculationResponse CalculationResponse `json:"calculation_response"`
}

type CalculationResponse struct {
	Metadata          ResponseMetadata   `json:"metadata"`
	Status            Status             `json:"status"`
	InputSummary      *InputSummary      `json:"input_summary,omitempty"`
	FluidCalculations *FluidCalculations `json:"fluid_calculations,omitempty"`
	ComponentResults  []ComponentResult  `json:"component_results"`
	SystemSummary     *SystemSummary     `json:"system_summary,omitempty"`
	ValidationResults *ValidationResults `json:"validation_results,omitempty"`
}

type ResponseMetadata struct {
	RequestID                string `json:"request_id"`
	CalculationTimestamp     string `json:"calculation_timestamp"`
	ProcessingTimeMs         int64  `json:"processing_time_ms"`
	DnvRpVersion             string `json:"dnv_rp_version"`
	CalculationEngineVersion string `json:"calculation_engine_version"`
}

type Status struct {
	Success          bool     `json:"success"`
	ValidationPassed bool     `json:"validation_passed"`
	Warnings         []string `json:"warnings"`
	Errors           []string `json:"errors"`
}

type InputSummary struct {
	TotalComponents         int      `json:"total_components"`
	ComponentTypes          []string `json:"component_types"`
	MixtureVelocity         Quantity `json:"mixture_velocity"`
	SandConcentration       Quantity `json:"sand_concentration"`
	ErosionClass            int      `json:"erosion_class"`
	ErosionClassDescription string   `json:"erosion_class_description"`
}

type MixtureProperties struct {
	Density        Quantity `json:"density"`
	Viscosity      Quantity `json:"viscosity"`
	Velocity       Quantity `json:"velocity"`
	ReynoldsNumber Quantity `json:"reynolds_number"`
}

type FluidCalculations struct {
	MixtureProperties MixtureProperties `json:"mixture_properties"`
	SandMassFlow      Quantity          `json:"sand_mass_flow"`
	ReferenceDiameter *Quantity         `json:"reference_diameter,omitempty"`
}

// Component result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type ComponentResult struct {
	ComponentID         string          `json:"component_id"`
	ComponentType       string          `json:"component_type"`
	Status              string          `json:"status"`
	ErosionCalculations Object          `json:"erosion_calculations,omitempty"`
	ErosionResults      *ErosionResults `json:"erosion_results,omitempty"`
	MonitoringData      *MonitoringData `json:"monitoring_data,omitempty"`
	RiskAssessment      *RiskAssessment `json:"risk_assessment,omitempty"`
	Warnings            []string        `json:"warnings,omitempty"`
	Error               *ErrorInfo      `json:"error,omitempty"`
}

type LocationResult struct {
	RelativeErosionRate       Quantity  `json:"relative_erosion_rate"`
	AnnualErosionRate         Quantity  `json:"annual_erosion_rate"`
	ErosionForSpecifiedPeriod *Quantity `json:"erosion_for_specified_period,omitempty"`
	Note                      string    `json:"note,omitempty"`
}

type ErosionResults struct {
	RelativeErosionRate       Quantity        `json:"relative_erosion_rate"`
	AnnualErosionRate         Quantity        `json:"annual_erosion_rate"`
	ErosionForSpecifiedPeriod Quantity        `json:"erosion_for_specified_period"`
	MaximumErosionLocation    string          `json:"maximum_erosion_location,omitempty"`
	ErosionArea               *Quantity       `json:"erosion_area,omitempty"`
	FlowFacingWeld            *LocationResult `json:"flow_facing_weld,omitempty"`
	DownstreamWeld            *LocationResult `json:"downstream_weld,omitempty"`
}

type MonitoringData struct {
	SandProductionFromErosion *Quantity `json:"sand_production_from_erosion,omitempty"`
	ValidAboveVelocity        Quantity  `json:"valid_above_velocity"`
}

type RiskAssessment struct {
	RiskLevel                    string    `json:"risk_level"`
	CriticalLocation             string    `json:"critical_location,omitempty"`
	TimeTo1mmErosion             *Quantity `json:"time_to_1mm_erosion,omitempty"`
	SandRequiredFor1mm           *Quantity `json:"sand_required_for_1mm,omitempty"`
	AllowableWallLoss            *Quantity `json:"allowable_wall_loss,omitempty"`
	TimeToAllowableLoss          *Quantity `json:"time_to_allowable_loss,omitempty"`
	SandRequiredForAllowableLoss *Quantity `json:"sand_required_for_allowable_loss,omitempty"`
}

type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type MostCritical struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	MaxErosionRate Quantity `json:"max_erosion_rate"`
}

type OverallRisk struct {
	SystemRiskLevel string   `json:"system_risk_level"`
	ErosionClass    int      `json:"erosion_class"`
	Recommendations []string `json:"recommendations"`
}

type SystemSummary struct {
	MostCriticalComponent         *MostCritical `json:"most_critical_component,omitempty"`
	TotalSandConsumption          Quantity      `json:"total_sand_consumption"`
	OverallRiskAssessment         OverallRisk   `json:"overall_risk_assessment"`
	NextInspectionRecommendations Object        `json:"next_inspection_recommendations"`
}

type InputValidation struct {
	ParameterRanges    string   `json:"parameter_ranges"`
	ModelApplicability string   `json:"model_applicability"`
	Warnings           []string `json:"warnings"`
}

type CalculationValidation struct {
	MassBalance         string `json:"mass_balance"`
	DimensionalAnalysis string `json:"dimensional_analysis"`
	Convergence         string `json:"convergence"`
}

type ValidationResults struct {
	InputValidation       InputValidation       `json:"input_validation"`
	CalculationValidation CalculationValidation `json:"calculation_validation"`
}
