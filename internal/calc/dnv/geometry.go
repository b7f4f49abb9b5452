package dnv

import (
	"math"
	"sort"
	"strconv"
)

// Params is the raw key -> value geometry bag as it arrives from a request.
type Params map[string]float64

// Require fails on an empty bag or on the first missing key, in the order given.
func (p Params) Require(t ComponentType, keys ...string) error {
	if len(p) == 0 {
		return invalid("%s geometry must not be empty", t)
	}
	for _, k := range keys {
		if _, ok := p[k]; !ok {
			return missing(t, k)
		}
	}
	return nil
}

func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Geometry is a typed, per-component-type geometry record.
type Geometry interface {
	Validate() error
	Params() Params
}

// Bore is implemented by geometries that have a single internal diameter.
type Bore interface {
	InternalDiameter() float64
}

// Length checks that v is a finite, strictly positive length.
func Length(t ComponentType, key string, v float64) error {
	if !positive(v) {
		return OutOfRange(t, key, "must be a finite value > 0")
	}
	return nil
}

// Angle checks that v lies in (lo, hi] degrees.
func Angle(t ComponentType, key string, v, lo, hi float64) error {
	if math.IsNaN(v) || v <= lo || v > hi {
		return OutOfRange(t, key, "angle must lie in ("+deg(lo)+", "+deg(hi)+"] degrees")
	}
	return nil
}

// CrossSection is the flow area of a circular bore.
func CrossSection(d float64) float64 {
	return math.Pi * (d / 2) * (d / 2)
}

func deg(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
