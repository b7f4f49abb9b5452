package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"Erosion/internal/calc/dnv"
	"Erosion/internal/calc/mixture"
	"Erosion/internal/calc/registry"
	"Erosion/internal/calc/schema"
	"Erosion/internal/calc/system"
)

// Prepared is the request-scope state shared by every component of a request.
type Prepared struct {
	Mixture    mixture.Mixture
	Fluid      dnv.FluidProperties
	Sand       dnv.SandProperties
	Jobs       []Job
	Conditions system.Conditions
	Warnings   []string
}

// diameterKeys are tried in order on each component when no reference diameter is given. The
// first positive one sets the request-scope diameter; a component without one fails on its own job.
var diameterKeys = []string{"internal_diameter", "pipe_diameter", "inlet_diameter"}

// Prepare reads the shared fluid and sand state and one job per component. The error is set only
// for shared inputs; component problems are carried on their jobs.
func (e *Engine) Prepare(req schema.CalculationRequest) (Prepared, error) {
	var p Prepared
	if len(req.Components) == 0 {
		return p, fmt.Errorf("%w: components: at least one component is required", dnv.ErrValidation)
	}
	opts := req.CalculationOptions

	period := 1.0
	if opts.TimePeriod != nil {
		v, err := opts.TimePeriod.In("calculation_options.time_period", schema.Time)
		if err != nil {
			return p, err
		}
		if v < 0 {
			return p, fmt.Errorf("%w: calculation_options.time_period must be >= 0", dnv.ErrValidation)
		}
		period = v
	}

	cond, err := conditions(req.SystemConditions)
	if err != nil {
		return p, err
	}
	phases, err := phases(req.FluidProperties)
	if err != nil {
		return p, err
	}
	diameter, err := referenceDiameter(req)
	if err != nil {
		return p, err
	}
	mix, err := mixture.Mix(phases, cond, diameter)
	if err != nil {
		return p, err
	}
	p.Mixture = mix
	p.Fluid = mix.Fluid()
	if err := p.Fluid.Validate(); err != nil {
		return p, err
	}

	sand, err := sandProperties(req.SandProperties)
	if err != nil {
		return p, err
	}
	if p.Sand, err = mixture.Stream(sand, mix); err != nil {
		return p, err
	}
	p.Conditions = system.Conditions{Velocity: mix.Velocity, Concentration: sand.Concentration}

	if opts.Validating() {
		p.Warnings = rangeWarnings(p)
	}

	seen := make(map[string]int)
	for i, c := range req.Components {
		job := e.job(i, c, period, opts)
		if prev, dup := seen[c.ID]; !dup {
			seen[c.ID] = i
		} else if job.Err == nil {
			job.Err = fmt.Errorf("%w: component %s: id already used by component %d", dnv.ErrValidation, c.ID, prev+1)
		}
		p.Jobs = append(p.Jobs, job)
	}
	return p, nil
}

func (e *Engine) job(i int, c schema.Component, period float64, opts schema.CalculationOptions) Job {
	job := Job{
		Index: i,
		Spec:  registry.Spec{ID: c.ID, Type: dnv.ComponentType(c.Type)},
		Options: dnv.Options{
			TimePeriod:     period,
			GeometryFactor: 1,
		},
	}
	fail := func(err error) Job {
		job.Err = fmt.Errorf("component %s: %w", c.ID, err)
		return job
	}
	if strings.TrimSpace(c.ID) == "" {
		return fail(fmt.Errorf("%w: id must be a non-empty string", dnv.ErrValidation))
	}
	if _, err := e.registry.Lookup(job.Spec.Type); err != nil {
		return fail(err)
	}
	m, err := material(c.Material)
	if err != nil {
		return fail(err)
	}
	job.Spec.Material = m
	if job.Spec.Geometry, err = geometry(c.Geometry); err != nil {
		return fail(err)
	}

	if oc := c.OperatingConditions; oc != nil {
		if oc.GeometryFactor != nil && opts.GeometryFactorsEnabled() {
			gf, err := oc.GeometryFactor.In("operating_conditions.geometry_factor", schema.Dimensionless)
			if err != nil {
				return fail(err)
			}
			job.Options.GeometryFactor = gf
		}
		if oc.AllowableWallLoss != nil {
			v, err := oc.AllowableWallLoss.In("operating_conditions.allowable_wall_loss", schema.WallLoss)
			if err != nil {
				return fail(err)
			}
			job.Allowable = &v
		}
		if oc.MeasuredErosionRate != nil {
			v, err := oc.MeasuredErosionRate.In("operating_conditions.measured_erosion_rate", schema.ErosionRate)
			if err != nil {
				return fail(err)
			}
			job.Options.MeasuredErosionRate = &v
		}
	}
	if err := job.Options.Validate(); err != nil {
		return fail(err)
	}
	return job
}

func conditions(sc schema.SystemConditions) (mixture.Conditions, error) {
	c := mixture.Conditions{Pressure: mixture.StdPressure, Temperature: mixture.StdTemperature}
	var err error
	if sc.Pressure != nil {
		if c.Pressure, err = sc.Pressure.In("system_conditions.pressure", schema.Pressure); err != nil {
			return c, err
		}
	}
	if sc.Temperature != nil {
		if c.Temperature, err = sc.Temperature.In("system_conditions.temperature", schema.Temperature); err != nil {
			return c, err
		}
	}
	return c, nil
}

func phases(fp schema.FluidProperties) ([]mixture.Phase, error) {
	var out []mixture.Phase
	for _, ph := range []struct {
		name string
		in   *schema.Phase
		gas  bool
	}{
		{"oil", fp.Oil, false},
		{"water", fp.Water, false},
		{"gas", fp.Gas, true},
	} {
		if ph.in == nil {
			continue
		}
		field := "fluid_properties." + ph.name
		rho, err := ph.in.DensityStd.In(field+".density_std", schema.Density)
		if err != nil {
			return nil, err
		}
		rate, err := ph.in.RateStd.In(field+".rate_std", schema.VolumeRate)
		if err != nil {
			return nil, err
		}
		mu, err := ph.in.Viscosity.In(field+".viscosity", schema.Viscosity)
		if err != nil {
			return nil, err
		}
		out = append(out, mixture.Phase{Name: ph.name, DensityStd: rho, RateStd: rate, Viscosity: mu, Gas: ph.gas})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: fluid_properties: at least one of oil, water or gas is required", dnv.ErrValidation)
	}
	return out, nil
}

func referenceDiameter(req schema.CalculationRequest) (float64, error) {
	if q := req.SystemConditions.ReferenceDiameter; q != nil {
		return q.In("system_conditions.reference_diameter", schema.Length)
	}
	for _, c := range req.Components {
		for _, k := range diameterKeys {
			q, ok := c.Geometry[k]
			if !ok {
				continue
			}
			if v, err := q.In("geometry."+k, schema.Length); err == nil && v > 0 {
				return v, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: system_conditions.reference_diameter is required when no component has a usable diameter", dnv.ErrValidation)
}

func sandProperties(sp schema.SandProperties) (dnv.SandProperties, error) {
	var s dnv.SandProperties
	var err error
	if s.Concentration, err = sp.Concentration.In("sand_properties.concentration", schema.Concentration); err != nil {
		return s, err
	}
	if s.ParticleSizeD50, err = sp.ParticleSize.D50.In("sand_properties.particle_size.d50", schema.ParticleSizeUnit); err != nil {
		return s, err
	}
	if s.Density, err = sp.Density.In("sand_properties.density", schema.Density); err != nil {
		return s, err
	}
	s.SandType = sp.Type
	if sp.MassFlowRate != nil {
		v, err := sp.MassFlowRate.In("sand_properties.mass_flow_rate", schema.MassFlow)
		if err != nil {
			return s, err
		}
		s = s.WithMassFlow(v, false)
	}
	return s, s.Validate()
}

func material(m schema.Material) (dnv.Material, error) {
	out := dnv.Material{Type: m.Type, Ductility: dnv.Ductility(strings.ToLower(m.Ductility))}
	if out.Ductility == "" {
		out.Ductility = dnv.Ductile
	}
	var err error
	if out.Density, err = m.Density.In("material.density", schema.Density); err != nil {
		return out, err
	}
	if out.ErosionConstantK, err = m.ErosionConstantK.In("material.erosion_constant_k", schema.ErosionK); err != nil {
		return out, err
	}
	if out.VelocityExponentN, err = m.VelocityExponentN.In("material.velocity_exponent_n", schema.Dimensionless); err != nil {
		return out, err
	}
	return out, out.Validate()
}

func geometry(g map[string]schema.Quantity) (dnv.Params, error) {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	p := make(dnv.Params, len(g))
	for _, k := range keys {
		q := g[k]
		if d, ok := schema.GeometryDimension(k); ok {
			v, err := q.In("geometry."+k, d)
			if err != nil {
				return nil, err
			}
			p[k] = v
			continue
		}
		p[k] = q.Value
	}
	return p, nil
}

func rangeWarnings(p Prepared) []string {
	var w []string
	if d := p.Sand.ParticleSizeD50; d < 20 || d > 5000 {
		w = append(w, fmt.Sprintf("sand d50 %.4g μm is outside the 20-5000 μm range of the particle correction", d))
	}
	if p.Mixture.Velocity > 200 {
		w = append(w, fmt.Sprintf("mixture velocity %.4g m/s exceeds 200 m/s", p.Mixture.Velocity))
	}
	if p.Mixture.Velocity == 0 {
		w = append(w, "mixture velocity is zero, no erosion is predicted")
	}
	if p.Sand.Concentration > 1000 {
		w = append(w, fmt.Sprintf("sand concentration %.4g ppmW is unusually high", p.Sand.Concentration))
	}
	return w
}

// inputFailure reports whether err was caused by the request content.
func inputFailure(err error) bool {
	return dnv.IsInputError(err) && !errors.Is(err, dnv.ErrComputation)
}
