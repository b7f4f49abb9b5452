package dnv

import "math"

// Impact is the characteristic impact a sub-model derives from its geometry.
type Impact struct {
	AngleDeg float64 // α
	Velocity float64 // Vc, m/s
	A        float64 // dimensionless group fed to the particle correction
	Diameter float64 // reference length of γ = d_p / D, m
	Area     float64 // exposed area, m2
}

// Terms are the looked-up factors and the resulting relative rate of one impact.
type Terms struct {
	F        float64
	G        float64
	C1       float64
	Gamma    float64
	Beta     float64
	Critical float64 // critical particle diameter, m; +Inf when particles follow the streamlines
	Relative float64 // mm/ton
}

// Relative looks up F, G and C1 for the impact and evaluates the relative erosion rate.
func Relative(tables Tables, t ComponentType, m Material, fluid FluidProperties, sand SandProperties, imp Impact, gf float64) (Terms, error) {
	if !positive(imp.Diameter) {
		return Terms{}, computation("%s: reference diameter must be > 0", t)
	}
	f, err := tables.MaterialFunction(imp.AngleDeg, m.Ductility)
	if err != nil {
		return Terms{}, err
	}
	beta := sand.Density / fluid.Density
	gamma := sand.ParticleDiameter() / imp.Diameter
	corr, err := tables.ParticleCorrection(ParticleRatio{Diameter: gamma, Density: beta, A: imp.A})
	if err != nil {
		return Terms{}, err
	}
	c1, err := tables.ModelConstant(t)
	if err != nil {
		return Terms{}, err
	}
	rel, err := RelativeErosionRate(RateInput{
		Material:       m,
		Velocity:       imp.Velocity,
		F:              f,
		G:              corr.G,
		C1:             c1,
		GeometryFactor: gf,
		Area:           imp.Area,
	})
	if err != nil {
		return Terms{}, err
	}
	return Terms{
		F:        f,
		G:        corr.G,
		C1:       c1,
		Gamma:    gamma,
		Beta:     beta,
		Critical: corr.CriticalRatio * imp.Diameter,
		Relative: rel,
	}, nil
}

// AddCritical records the critical particle diameter, or a note when there is none.
func (t *Trace) AddCritical(key string, critical float64) {
	if math.IsInf(critical, 0) || math.IsNaN(critical) {
		t.Note(key, "none, particles follow the streamlines")
		return
	}
	t.Add(key, critical, "m")
}

// NewResult fills the common result fields from a governing relative rate.
func (b Base) NewResult(relative, massFlow, area float64, location string, opts Options) ErosionResult {
	annual, period := Annualize(relative, massFlow, opts.TimePeriod)
	return ErosionResult{
		ComponentID:         b.id,
		ComponentType:       b.typ,
		RelativeErosionRate: relative,
		AnnualErosionRate:   annual,
		ErosionForPeriod:    period,
		TimePeriod:          opts.TimePeriod,
		MaxErosionLocation:  location,
		ErosionArea:         area,
		SandMassFlow:        massFlow,
	}
}
