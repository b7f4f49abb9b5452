package dnv

import (
	"fmt"
	"strings"
)

// Component is the capability set shared by every pipe-component erosion model.
type Component interface {
	ID() string
	Type() ComponentType
	Material() Material
	Info() Info
	ValidateGeometry() error
	CalculateErosion(fluid FluidProperties, sand SandProperties, opts Options) (ErosionResult, error)
}

// Base carries the identity, material and geometry of a component and the helpers every
// model shares. Concrete models embed it.
type Base struct {
	id       string
	typ      ComponentType
	material Material
	geometry Geometry
}

// NewBase validates the construction arguments. It never returns a partially valid Base.
func NewBase(id string, typ ComponentType, material Material, geometry Geometry) (Base, error) {
	if strings.TrimSpace(id) == "" {
		return Base{}, invalid("component_id must be a non-empty string")
	}
	if strings.TrimSpace(string(typ)) == "" {
		return Base{}, invalid("component %s: component_type must be a non-empty string", id)
	}
	if err := material.Validate(); err != nil {
		return Base{}, fmt.Errorf("component %s: %w", id, err)
	}
	if geometry == nil {
		return Base{}, invalid("component %s: geometry must not be empty", id)
	}
	if err := geometry.Validate(); err != nil {
		return Base{}, fmt.Errorf("component %s: %w", id, err)
	}
	return Base{id: id, typ: typ, material: material, geometry: geometry}, nil
}

func (b Base) ID() string              { return b.id }
func (b Base) Type() ComponentType     { return b.typ }
func (b Base) Material() Material      { return b.material }
func (b Base) Geometry() Geometry      { return b.geometry }
func (b Base) ValidateGeometry() error { return b.geometry.Validate() }

func (b Base) Info() Info {
	return Info{
		ComponentID:   b.id,
		ComponentType: b.typ,
		MaterialType:  b.material.Type,
		Geometry:      b.geometry.Params(),
	}
}

func (b Base) String() string {
	return fmt.Sprintf("%s(id='%s', material='%s')", b.typ, b.id, b.material.Type)
}

// ReynoldsNumber uses the internal diameter of the component geometry.
func (b Base) ReynoldsNumber(fluid FluidProperties) (float64, error) {
	bore, ok := b.geometry.(Bore)
	if !ok {
		return 0, missing(b.typ, "internal_diameter")
	}
	return Reynolds(fluid, bore.InternalDiameter())
}

// SandMassFlow returns the supplied mass flow, or derives it over the internal diameter.
func (b Base) SandMassFlow(fluid FluidProperties, sand SandProperties) (float64, error) {
	if sand.MassFlowRate != nil {
		return *sand.MassFlowRate, nil
	}
	bore, ok := b.geometry.(Bore)
	if !ok {
		return 0, missing(b.typ, "internal_diameter")
	}
	return SandMassFlow(fluid, sand, bore.InternalDiameter()), nil
}

// Reynolds is density * velocity * diameter / viscosity.
func Reynolds(fluid FluidProperties, diameter float64) (float64, error) {
	if !positive(fluid.Viscosity) {
		return 0, invalid("fluid viscosity must be > 0, got %v", fluid.Viscosity)
	}
	return fluid.Density * fluid.Velocity * diameter / fluid.Viscosity, nil
}

// SandMassFlow derives kg/s of sand from the ppmW concentration over a bore of diameter d.
// A supplied mass flow on sand takes precedence.
func SandMassFlow(fluid FluidProperties, sand SandProperties, d float64) float64 {
	if sand.MassFlowRate != nil {
		return *sand.MassFlowRate
	}
	total := fluid.Density * fluid.Velocity * CrossSection(d)
	return sand.Concentration * total / 1e6
}
