package sheet

import (
	"sort"
	"strconv"

	"Erosion/internal/calc/schema"

	"github.com/xuri/excelize/v2"
)

func row(f *excelize.File, sheet string, n int, values ...any) error {
	ref, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, ref, &values)
}

func newBook(first string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", first); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Template writes a request in the workbook layout read by Import.
func Template(req schema.Request) (*excelize.File, error) {
	in := req.CalculationRequest
	f, err := newBook(ConditionsSheet)
	if err != nil {
		return nil, err
	}

	type entry struct {
		key  string
		q    *schema.Quantity
		text string
	}
	entries := []entry{
		{key: "request_id", text: in.Metadata.RequestID},
		{key: "description", text: in.Metadata.Description},
		{key: "pressure", q: in.SystemConditions.Pressure},
		{key: "temperature", q: in.SystemConditions.Temperature},
		{key: "reference_diameter", q: in.SystemConditions.ReferenceDiameter},
	}
	for _, ph := range []struct {
		name string
		p    *schema.Phase
	}{{"oil", in.FluidProperties.Oil}, {"water", in.FluidProperties.Water}, {"gas", in.FluidProperties.Gas}} {
		if ph.p == nil {
			continue
		}
		entries = append(entries,
			entry{key: ph.name + ".density_std", q: &ph.p.DensityStd},
			entry{key: ph.name + ".rate_std", q: &ph.p.RateStd},
			entry{key: ph.name + ".viscosity", q: &ph.p.Viscosity},
		)
	}
	sp := in.SandProperties
	opts := in.CalculationOptions
	entries = append(entries,
		entry{key: "sand.concentration", q: &sp.Concentration},
		entry{key: "sand.d50", q: &sp.ParticleSize.D50},
		entry{key: "sand.distribution", text: sp.ParticleSize.Distribution},
		entry{key: "sand.density", q: &sp.Density},
		entry{key: "sand.type", text: sp.Type},
		entry{key: "sand.mass_flow_rate", q: sp.MassFlowRate},
		entry{key: "time_period", q: opts.TimePeriod},
		entry{key: "include_geometry_factors", text: strconv.FormatBool(opts.GeometryFactorsEnabled())},
		entry{key: "detailed_output", text: strconv.FormatBool(opts.Detailed())},
		entry{key: "validate_inputs", text: strconv.FormatBool(opts.Validating())},
		entry{key: "strict_mode", text: strconv.FormatBool(opts.StrictMode)},
	)

	n := 1
	if err := row(f, ConditionsSheet, n, "parameter", "value", "unit"); err != nil {
		return nil, err
	}
	for _, e := range entries {
		var values []any
		switch {
		case e.q != nil:
			values = []any{e.key, e.q.Value, e.q.Unit}
		case e.text != "":
			values = []any{e.key, e.text}
		default:
			continue
		}
		n++
		if err := row(f, ConditionsSheet, n, values...); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(ComponentsSheet); err != nil {
		return nil, err
	}
	geoKeys := map[string]bool{}
	for _, c := range in.Components {
		for k := range c.Geometry {
			geoKeys[k] = true
		}
	}
	var geo []string
	for k := range geoKeys {
		geo = append(geo, k)
	}
	sort.Strings(geo)

	header := make([]any, 0, len(componentColumns)+len(geo))
	for _, h := range componentColumns {
		header = append(header, h)
	}
	for _, h := range geo {
		header = append(header, h)
	}
	if err := row(f, ComponentsSheet, 1, header...); err != nil {
		return nil, err
	}
	for i, c := range in.Components {
		values := []any{
			c.ID, c.Type, c.Material.Type, c.Material.Density.Value, c.Material.ErosionConstantK.Value,
			c.Material.VelocityExponentN.Value, c.Material.Ductility, nil, nil, nil,
		}
		if oc := c.OperatingConditions; oc != nil {
			for j, q := range []*schema.Quantity{oc.GeometryFactor, oc.AllowableWallLoss, oc.MeasuredErosionRate} {
				if q != nil {
					values[7+j] = q.Value
				}
			}
		}
		for _, k := range geo {
			if q, ok := c.Geometry[k]; ok {
				values = append(values, q.Value)
			} else {
				values = append(values, nil)
			}
		}
		if err := row(f, ComponentsSheet, i+2, values...); err != nil {
			return nil, err
		}
	}
	return f, nil
}

var resultColumns = []any{
	"component_id", "component_type", "status", "relative_erosion_rate_mm_per_ton", "annual_erosion_rate_mm_per_year",
	"erosion_for_period_mm", "maximum_erosion_location", "risk_level", "time_to_1mm_years", "sand_for_1mm_tons", "error",
}

func value(q *schema.Quantity) any {
	if q == nil {
		return nil
	}
	return q.Value
}

// Export writes a response as a results workbook.
func Export(resp schema.Response) (*excelize.File, error) {
	out := resp.CalculationResponse
	f, err := newBook("Summary")
	if err != nil {
		return nil, err
	}

	summary := [][]any{
		{"request_id", out.Metadata.RequestID},
		{"calculation_timestamp", out.Metadata.CalculationTimestamp},
		{"dnv_rp_version", out.Metadata.DnvRpVersion},
		{"calculation_engine_version", out.Metadata.CalculationEngineVersion},
		{"success", strconv.FormatBool(out.Status.Success)},
		{"validation_passed", strconv.FormatBool(out.Status.ValidationPassed)},
	}
	if s := out.InputSummary; s != nil {
		summary = append(summary,
			[]any{"mixture_velocity", s.MixtureVelocity.Value, s.MixtureVelocity.Unit},
			[]any{"sand_concentration", s.SandConcentration.Value, s.SandConcentration.Unit},
			[]any{"erosion_class", s.ErosionClass, s.ErosionClassDescription},
		)
	}
	if s := out.SystemSummary; s != nil {
		summary = append(summary,
			[]any{"system_risk_level", s.OverallRiskAssessment.SystemRiskLevel},
			[]any{"total_sand_consumption", s.TotalSandConsumption.Value, s.TotalSandConsumption.Unit},
		)
		if mc := s.MostCriticalComponent; mc != nil {
			summary = append(summary, []any{"most_critical_component", mc.ID, mc.Type},
				[]any{"max_erosion_rate", mc.MaxErosionRate.Value, mc.MaxErosionRate.Unit})
		}
		for _, rec := range s.OverallRiskAssessment.Recommendations {
			summary = append(summary, []any{"recommendation", rec})
		}
		for _, fld := range s.NextInspectionRecommendations {
			text, _ := s.NextInspectionRecommendations.Text(fld.Key)
			summary = append(summary, []any{"next_inspection", fld.Key, text})
		}
	}
	for _, w := range out.Status.Warnings {
		summary = append(summary, []any{"warning", w})
	}
	for _, e := range out.Status.Errors {
		summary = append(summary, []any{"error", e})
	}
	for i, values := range summary {
		if err := row(f, "Summary", i+1, values...); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet("Results"); err != nil {
		return nil, err
	}
	if err := row(f, "Results", 1, resultColumns...); err != nil {
		return nil, err
	}
	for i, cr := range out.ComponentResults {
		values := make([]any, len(resultColumns))
		values[0], values[1], values[2] = cr.ComponentID, cr.ComponentType, cr.Status
		if er := cr.ErosionResults; er != nil {
			values[3] = er.RelativeErosionRate.Value
			values[4] = er.AnnualErosionRate.Value
			values[5] = er.ErosionForSpecifiedPeriod.Value
			values[6] = er.MaximumErosionLocation
		}
		if ra := cr.RiskAssessment; ra != nil {
			values[7] = ra.RiskLevel
			values[8] = value(ra.TimeTo1mmErosion)
			values[9] = value(ra.SandRequiredFor1mm)
		}
		if cr.Error != nil {
			values[10] = cr.Error.Kind + ": " + cr.Error.Message
		}
		if err := row(f, "Results", i+2, values...); err != nil {
			return nil, err
		}
	}
	f.SetColWidth("Results", "A", "K", 18)
	return f, nil
}
