package curves

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"Erosion/internal/calc/dnv"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaults []byte

type materialFunction struct {
	Angles          []float64 `yaml:"angles"`
	Ductile         []float64 `yaml:"ductile"`
	Brittle         []float64 `yaml:"brittle"`
	GrazingResidual float64   `yaml:"grazing_residual"`
}

type particleCorrection struct {
	Slope  float64 `yaml:"slope"`
	Offset float64 `yaml:"offset"`
}

type document struct {
	Version            string                                  `yaml:"version"`
	MaterialFunction   materialFunction                        `yaml:"material_function"`
	ParticleCorrection particleCorrection                      `yaml:"particle_correction"`
	ModelConstants     map[dnv.ComponentType]float64           `yaml:"model_constants"`
	LocationFactors    map[dnv.ComponentType]map[string]float64 `yaml:"location_factors"`
}

// Tables is the YAML-backed implementation of dnv.Tables. It is read-only after Parse.
type Tables struct {
	doc document
}

var _ dnv.Tables = (*Tables)(nil)

var (
	defaultOnce   sync.Once
	defaultTables *Tables
	defaultErr    error
)

// Default returns the tables shipped with the binary.
func Default() (*Tables, error) {
	defaultOnce.Do(func() {
		defaultTables, defaultErr = Parse(defaults)
	})
	return defaultTables, defaultErr
}

// Load reads a tables document from path. An empty path returns the defaults.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curve tables: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Tables, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse curve tables: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("curve tables %q: %w", doc.Version, err)
	}
	return &Tables{doc: doc}, nil
}

func (d document) validate() error {
	mf := d.MaterialFunction
	if len(mf.Angles) < 2 {
		return fmt.Errorf("material_function.angles needs at least two points")
	}
	if !sort.Float64sAreSorted(mf.Angles) {
		return fmt.Errorf("material_function.angles must be ascending")
	}
	for i := 1; i < len(mf.Angles); i++ {
		if mf.Angles[i] == mf.Angles[i-1] {
			return fmt.Errorf("material_function.angles has duplicate point %v", mf.Angles[i])
		}
	}
	if mf.Angles[0] > 0 || mf.Angles[len(mf.Angles)-1] < 90 {
		return fmt.Errorf("material_function.angles must cover 0..90 degrees")
	}
	if len(mf.Ductile) != len(mf.Angles) || len(mf.Brittle) != len(mf.Angles) {
		return fmt.Errorf("material_function curves must have one value per angle")
	}
	if mf.GrazingResidual < 0 {
		return fmt.Errorf("material_function.grazing_residual must be >= 0")
	}
	if d.ParticleCorrection.Slope <= 0 {
		return fmt.Errorf("particle_correction.slope must be > 0")
	}
	for t, c := range d.ModelConstants {
		if !(c > 0) {
			return fmt.Errorf("model_constants.%s must be > 0", t)
		}
	}
	for t, factors := range d.LocationFactors {
		for loc, f := range factors {
			if !(f > 0) {
				return fmt.Errorf("location_factors.%s.%s must be > 0", t, loc)
			}
		}
	}
	if w, ok := d.LocationFactors[dnv.WeldedJoint]; ok {
		if w["downstream_weld"] < w["flow_facing_weld"] {
			return fmt.Errorf("location_factors.welded_joint: downstream_weld must be >= flow_facing_weld")
		}
	}
	return nil
}

func (t *Tables) Version() string { return t.doc.Version }

// MaterialFunction interpolates F(α) linearly between the tabulated points. The result is never
// below the grazing residual.
func (t *Tables) MaterialFunction(alphaDeg float64, d dnv.Ductility) (float64, error) {
	if math.IsNaN(alphaDeg) || alphaDeg < 0 || alphaDeg > 90 {
		return 0, fmt.Errorf("%w: impact angle %v outside 0..90 degrees", dnv.ErrValidation, alphaDeg)
	}
	mf := t.doc.MaterialFunction
	var ys []float64
	switch d {
	case dnv.Ductile, "":
		ys = mf.Ductile
	case dnv.Brittle:
		ys = mf.Brittle
	default:
		return 0, fmt.Errorf("%w: unknown ductility %q", dnv.ErrValidation, d)
	}
	return math.Max(interpolate(mf.Angles, ys, alphaDeg), mf.GrazingResidual), nil
}

// ParticleCorrection evaluates γc = 1 / (β (slope ln A − offset)). G is 0 when the denominator is
// not positive, because the particles then follow the streamlines.
func (t *Tables) ParticleCorrection(p dnv.ParticleRatio) (dnv.Correction, error) {
	if !(p.Density > 0) || !(p.Diameter > 0) {
		return dnv.Correction{}, fmt.Errorf("%w: particle ratios must be > 0 (gamma=%v, beta=%v)", dnv.ErrValidation, p.Diameter, p.Density)
	}
	none := dnv.Correction{G: 0, CriticalRatio: math.Inf(1)}
	if !(p.A > 0) {
		return none, nil
	}
	pc := t.doc.ParticleCorrection
	denom := p.Density * (pc.Slope*math.Log(p.A) - pc.Offset)
	if !(denom > 0) {
		return none, nil
	}
	critical := 1 / denom
	if p.Diameter < critical {
		return dnv.Correction{G: p.Diameter / critical, CriticalRatio: critical}, nil
	}
	return dnv.Correction{G: 1, CriticalRatio: critical}, nil
}

func (t *Tables) ModelConstant(ct dnv.ComponentType) (float64, error) {
	c, ok := t.doc.ModelConstants[ct]
	if !ok {
		return 0, fmt.Errorf("%w: no model constant for %s", dnv.ErrComputation, ct)
	}
	return c, nil
}

func (t *Tables) LocationFactor(ct dnv.ComponentType, location string) (float64, error) {
	f, ok := t.doc.LocationFactors[ct][location]
	if !ok {
		return 0, fmt.Errorf("%w: no location factor %s for %s", dnv.ErrComputation, location, ct)
	}
	return f, nil
}

func interpolate(xs, ys []float64, x float64) float64 {
	i := sort.SearchFloat64s(xs, x)
	switch {
	case i == 0:
		return ys[0]
	case i >= len(xs):
		return ys[len(ys)-1]
	case xs[i] == x:
		return ys[i]
	}
	x0, x1 := xs[i-1], xs[i]
	w := (x - x0) / (x1 - x0)
	return ys[i-1] + w*(ys[i]-ys[i-1])
}
