package registry

import (
	"fmt"
	"sort"
	"strings"

	"Erosion/internal/calc/bend"
	"Erosion/internal/calc/dnv"
	"Erosion/internal/calc/probe"
	"Erosion/internal/calc/reducer"
	"Erosion/internal/calc/straight"
	"Erosion/internal/calc/tee"
	"Erosion/internal/calc/weld"
)

// Spec is one component as it arrives from a request.
type Spec struct {
	ID       string
	Type     dnv.ComponentType
	Material dnv.Material
	Geometry dnv.Params
}

// Env carries the collaborators the factories hand to the models.
type Env struct {
	Tables           dnv.Tables
	ProbeMinVelocity float64
}

// Factory parses the geometry of a spec and builds its model.
type Factory func(s Spec, env Env) (dnv.Component, error)

// Registry maps type tags to factories. It is filled at startup and read-only afterwards.
type Registry struct {
	env       Env
	factories map[dnv.ComponentType]Factory
}

func New(env Env) *Registry {
	return &Registry{env: env, factories: make(map[dnv.ComponentType]Factory)}
}

// Default registers the six DNV RP O501 component models.
func Default(env Env) *Registry {
	r := New(env)
	r.Register(dnv.PipeBend, func(s Spec, env Env) (dnv.Component, error) {
		return bend.FromParams(s.ID, s.Material, s.Geometry, env.Tables)
	})
	r.Register(dnv.StraightPipe, func(s Spec, env Env) (dnv.Component, error) {
		return straight.FromParams(s.ID, s.Material, s.Geometry, env.Tables)
	})
	r.Register(dnv.WeldedJoint, func(s Spec, env Env) (dnv.Component, error) {
		return weld.FromParams(s.ID, s.Material, s.Geometry, env.Tables)
	})
	r.Register(dnv.BlindedTee, func(s Spec, env Env) (dnv.Component, error) {
		return tee.FromParams(s.ID, s.Material, s.Geometry, env.Tables)
	})
	r.Register(dnv.Reducer, func(s Spec, env Env) (dnv.Component, error) {
		return reducer.FromParams(s.ID, s.Material, s.Geometry, env.Tables)
	})
	r.Register(dnv.ErosionProbe, func(s Spec, env Env) (dnv.Component, error) {
		return probe.FromParams(s.ID, s.Material, s.Geometry, env.Tables, env.ProbeMinVelocity)
	})
	return r
}

// Register panics on a duplicate or empty tag; registration is a startup-time programming step.
func (r *Registry) Register(t dnv.ComponentType, f Factory) {
	if strings.TrimSpace(string(t)) == "" || f == nil {
		panic("registry: empty component type or nil factory")
	}
	if _, dup := r.factories[t]; dup {
		panic(fmt.Sprintf("registry: component type %s registered twice", t))
	}
	r.factories[t] = f
}

func (r *Registry) Lookup(t dnv.ComponentType) (Factory, error) {
	f, ok := r.factories[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", dnv.ErrUnsupportedComponentType, t, strings.Join(r.typeNames(), ", "))
	}
	return f, nil
}

// Build resolves the type tag and constructs the component.
func (r *Registry) Build(s Spec) (dnv.Component, error) {
	if strings.TrimSpace(s.ID) == "" {
		return nil, fmt.Errorf("%w: component_id must be a non-empty string", dnv.ErrValidation)
	}
	f, err := r.Lookup(s.Type)
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", s.ID, err)
	}
	return f(s, r.env)
}

// Types lists the registered tags in ascending order.
func (r *Registry) Types() []dnv.ComponentType {
	out := make([]dnv.ComponentType, 0, len(r.factories))
	for t := range r.factories {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Registry) typeNames() []string {
	var names []string
	for _, t := range r.Types() {
		names = append(names, string(t))
	}
	return names
}
