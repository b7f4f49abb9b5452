package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"Erosion/internal/calc/dnv"
	"Erosion/internal/calc/schema"
	"Erosion/internal/calc/system"
	"Erosion/internal/calc/weld"
	"Erosion/internal/metrics"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Run evaluates a request document and builds the response document. Shared-input failures
// come back as a response with success=false and no component results.
func (e *Engine) Run(ctx context.Context, req schema.Request, notify func(schema.ComponentResult)) schema.Response {
	start := time.Now()
	in := req.CalculationRequest
	id := in.Metadata.RequestID
	if id == "" {
		id = uuid.NewString()
	}
	out := schema.CalculationResponse{
		Metadata: schema.ResponseMetadata{
			RequestID:                id,
			CalculationTimestamp:     start.UTC().Format(time.RFC3339),
			DnvRpVersion:             e.tables.Version(),
			CalculationEngineVersion: Version,
		},
		Status:           schema.Status{Warnings: []string{}, Errors: []string{}},
		ComponentResults: []schema.ComponentResult{},
	}
	logger := log.WithFields(log.Fields{"request_id": id, "components": len(in.Components)})
	finish := func(outcome string) schema.Response {
		elapsed := time.Since(start)
		out.Metadata.ProcessingTimeMs = elapsed.Milliseconds()
		metrics.ObserveRequest(outcome, elapsed)
		return schema.Response{CalculationResponse: out}
	}

	p, err := e.Prepare(in)
	if err == nil {
		var outcomes []Outcome
		outcomes, err = e.Evaluate(ctx, p.Fluid, p.Sand, p.Jobs, func(o Outcome) {
			if notify != nil {
				notify(e.componentResult(o, in.CalculationOptions))
			}
		})
		if err == nil {
			e.fill(&out, p, outcomes, in)
			outcome := "success"
			if !out.Status.Success {
				outcome = "failed"
			}
			logger.WithFields(log.Fields{
				"success":  out.Status.Success,
				"failed":   len(out.Status.Errors),
				"velocity": p.Mixture.Velocity,
			}).Info("erosion calculation finished")
			return finish(outcome)
		}
	}

	out.Status.Success = false
	out.Status.ValidationPassed = !inputFailure(err)
	out.Status.Errors = append(out.Status.Errors, fmt.Sprintf("%s: %v", dnv.Kind(err), err))
	logger.WithError(err).Warn("erosion request rejected")
	return finish("rejected")
}

func (e *Engine) fill(out *schema.CalculationResponse, p Prepared, outcomes []Outcome, in schema.CalculationRequest) {
	r := e.rounder()
	opts := in.CalculationOptions

	failed, inputErrors := 0, 0
	var modelWarnings []string
	for _, o := range outcomes {
		cr := e.componentResult(o, opts)
		out.ComponentResults = append(out.ComponentResults, cr)
		if !o.OK() {
			failed++
			if inputFailure(o.Err) {
				inputErrors++
			}
			out.Status.Errors = append(out.Status.Errors, cr.Error.Message)
			continue
		}
		modelWarnings = append(modelWarnings, o.Result.Warnings...)
	}
	out.Status.Warnings = append(out.Status.Warnings, p.Warnings...)
	out.Status.Warnings = append(out.Status.Warnings, modelWarnings...)
	out.Status.ValidationPassed = inputErrors == 0
	out.Status.Success = failed < len(outcomes) && !(opts.StrictMode && failed > 0)

	summary := e.Summarize(outcomes, p.Conditions)

	var types []string
	seen := map[string]bool{}
	for _, c := range in.Components {
		if !seen[c.Type] {
			seen[c.Type] = true
			types = append(types, c.Type)
		}
	}
	out.InputSummary = &schema.InputSummary{
		TotalComponents:         len(in.Components),
		ComponentTypes:          types,
		MixtureVelocity:         r.Q(p.Mixture.Velocity, "m/s"),
		SandConcentration:       r.Q(p.Sand.Concentration, "ppmW"),
		ErosionClass:            summary.ErosionClass,
		ErosionClassDescription: summary.ClassDescription,
	}

	density := r.Q(p.Mixture.Density, "kg/m3")
	density.CalculationMethod = "black_oil_model"
	viscosity := r.Q(p.Mixture.Viscosity, "kg/ms")
	viscosity.CalculationMethod = "black_oil_model"
	sandFlow := r.Q(*p.Sand.MassFlowRate, "kg/s")
	if p.Sand.Derived {
		sandFlow.CalculationMethod = "concentration_x_mixture_mass_flow"
	} else {
		sandFlow.CalculationMethod = "supplied"
	}
	out.FluidCalculations = &schema.FluidCalculations{
		MixtureProperties: schema.MixtureProperties{
			Density:        density,
			Viscosity:      viscosity,
			Velocity:       r.Q(p.Mixture.Velocity, "m/s"),
			ReynoldsNumber: r.Q(p.Mixture.Reynolds, "dimensionless"),
		},
		SandMassFlow:      sandFlow,
		ReferenceDiameter: r.P(p.Mixture.Diameter, "m"),
	}

	out.SystemSummary = e.systemSummary(summary)

	ranges := "all_within_limits"
	if len(p.Warnings) > 0 {
		ranges = "warnings_raised"
	}
	applicability := "all_models_applicable"
	if len(modelWarnings) > 0 {
		applicability = "limited_applicability"
	}
	balance := "passed"
	if p.Mixture.MassBalance() > 1e-9 {
		balance = "failed"
	}
	out.ValidationResults = &schema.ValidationResults{
		InputValidation: schema.InputValidation{
			ParameterRanges:    ranges,
			ModelApplicability: applicability,
			Warnings:           append([]string{}, p.Warnings...),
		},
		CalculationValidation: schema.CalculationValidation{
			MassBalance:         balance,
			DimensionalAnalysis: "passed",
			Convergence:         "not_applicable",
		},
	}
}

func (e *Engine) rounder() schema.Rounder {
	return schema.Rounder{Digits: e.cfg.Digits}
}

func (e *Engine) componentResult(o Outcome, opts schema.CalculationOptions) schema.ComponentResult {
	cr := schema.ComponentResult{
		ComponentID:   o.Job.Spec.ID,
		ComponentType: string(o.Job.Spec.Type),
	}
	if !o.OK() {
		cr.Status = schema.StatusError
		cr.Error = &schema.ErrorInfo{Kind: dnv.Kind(o.Err), Message: o.Err.Error()}
		return cr
	}
	cr.Status = schema.StatusSuccess
	r := e.rounder()
	res := o.Result

	if opts.Detailed() {
		for _, d := range res.Details {
			if d.Text != "" {
				cr.ErosionCalculations.Set(d.Key, d.Text)
				continue
			}
			cr.ErosionCalculations.Set(d.Key, r.Q(d.Value, d.Unit))
		}
		if _, ok := res.Details.Lookup("geometry_factor"); !ok {
			cr.ErosionCalculations.Set("geometry_factor", r.Q(o.Job.Options.GeometryFactor, "dimensionless"))
		}
	}

	er := &schema.ErosionResults{
		RelativeErosionRate:       r.Q(res.RelativeErosionRate, "mm/ton"),
		AnnualErosionRate:         r.Q(res.AnnualErosionRate, "mm/year"),
		ErosionForSpecifiedPeriod: r.Q(res.ErosionForPeriod, "mm"),
		MaximumErosionLocation:    res.MaxErosionLocation,
		ErosionArea:               r.P(res.ErosionArea, "m2"),
	}
	for _, loc := range res.Locations {
		lr := &schema.LocationResult{
			RelativeErosionRate:       r.Q(loc.RelativeErosionRate, "mm/ton"),
			AnnualErosionRate:         r.Q(loc.AnnualErosionRate, "mm/year"),
			ErosionForSpecifiedPeriod: r.P(loc.ErosionForPeriod, "mm"),
			Note:                      loc.Note,
		}
		switch loc.Name {
		case weld.FlowFacing:
			er.FlowFacingWeld = lr
		case weld.Downstream:
			er.DownstreamWeld = lr
		}
	}
	cr.ErosionResults = er

	if res.ComponentType == dnv.ErosionProbe {
		md := &schema.MonitoringData{ValidAboveVelocity: r.Q(e.cfg.ProbeMinVelocity, "m/s")}
		if res.ImpliedSandProduction != nil {
			md.SandProductionFromErosion = r.P(*res.ImpliedSandProduction, "kg/s")
			md.SandProductionFromErosion.Note = fmt.Sprintf("Calculated from erosion rate - use only for V_m > %s m/s",
				strconv.FormatFloat(e.cfg.ProbeMinVelocity, 'f', -1, 64))
		}
		cr.MonitoringData = md
	}

	ra := &schema.RiskAssessment{RiskLevel: string(o.Risk.Level)}
	if len(res.Locations) > 1 {
		ra.CriticalLocation = res.MaxErosionLocation
	}
	if b := o.Risk.Reference; b.Years != nil {
		ra.TimeTo1mmErosion = r.P(*b.Years, "years")
		ra.SandRequiredFor1mm = r.P(*b.Sand, "tons")
	}
	if b := o.Risk.Allowable; b != nil {
		ra.AllowableWallLoss = r.P(b.Loss, "mm")
		if b.Years != nil {
			ra.TimeToAllowableLoss = r.P(*b.Years, "years")
			ra.SandRequiredForAllowableLoss = r.P(*b.Sand, "tons")
		}
	}
	cr.RiskAssessment = ra
	cr.Warnings = res.Warnings
	return cr
}

func (e *Engine) systemSummary(s system.Summary) *schema.SystemSummary {
	r := e.rounder()
	level := string(s.Level)
	if level == "" {
		level = "undetermined"
	}
	out := &schema.SystemSummary{
		TotalSandConsumption: r.Q(s.TotalSand, "tons/year"),
		OverallRiskAssessment: schema.OverallRisk{
			SystemRiskLevel: level,
			ErosionClass:    s.ErosionClass,
			Recommendations: append([]string{}, s.Recommendations...),
		},
	}
	if c := s.MostCritical; c != nil {
		out.MostCriticalComponent = &schema.MostCritical{
			ID:             c.ID,
			Type:           string(c.Type),
			MaxErosionRate: r.Q(c.Annual, "mm/year"),
		}
	}
	for _, in := range s.Inspections {
		years := strconv.FormatFloat(schema.RoundSignificant(in.Years, 2), 'f', -1, 64)
		out.NextInspectionRecommendations.Set(in.ID, years+" years")
	}
	if s.StandardCycle {
		out.NextInspectionRecommendations.Set("other_components", "Standard inspection cycle")
	}
	return out
}
