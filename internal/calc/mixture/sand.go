package mixture

import (
	"Erosion/internal/calc/dnv"
)

// Stream fixes the sand mass flow for the request. A supplied mass flow is kept as is,
// otherwise it is derived once from the ppmW concentration and the mixture mass flow.
func Stream(sand dnv.SandProperties, m Mixture) (dnv.SandProperties, error) {
	if err := sand.Validate(); err != nil {
		return dnv.SandProperties{}, err
	}
	if sand.MassFlowRate != nil {
		return sand.WithMassFlow(*sand.MassFlowRate, false), nil
	}
	return sand.WithMassFlow(sand.Concentration*m.MassFlow/1e6, true), nil
}

// AnnualSand is the sand throughput in tons per year.
func AnnualSand(sand dnv.SandProperties) float64 {
	if sand.MassFlowRate == nil {
		return 0
	}
	return dnv.SandTonsPerYear(*sand.MassFlowRate)
}
