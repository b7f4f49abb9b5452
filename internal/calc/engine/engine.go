package engine

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"Erosion/internal/calc/dnv"
	"Erosion/internal/calc/probe"
	"Erosion/internal/calc/registry"
	"Erosion/internal/calc/risk"
	"Erosion/internal/calc/system"
	"Erosion/internal/metrics"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Version of the calculation engine reported in every response.
const Version = "1.0.0"

type Config struct {
	Workers          int // 0 means GOMAXPROCS
	Digits           int // significant digits of response values, 0 disables rounding
	ProbeMinVelocity float64
	Thresholds       risk.Thresholds
	Policy           system.Policy
}

func DefaultConfig() Config {
	return Config{
		Digits:           4,
		ProbeMinVelocity: probe.DefaultMinVelocity,
		Thresholds:       risk.DefaultThresholds(),
		Policy:           system.DefaultPolicy(),
	}
}

// VersionedTables is implemented by curve collaborators that carry a version label.
type VersionedTables interface {
	dnv.Tables
	Version() string
}

type Engine struct {
	cfg        Config
	tables     VersionedTables
	registry   *registry.Registry
	classifier *risk.Classifier
}

func New(cfg Config, tables VersionedTables) (*Engine, error) {
	if tables == nil {
		return nil, fmt.Errorf("%w: engine needs curve tables", dnv.ErrValidation)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if err := cfg.Policy.Validate(); err != nil {
		return nil, err
	}
	classifier, err := risk.NewClassifier(cfg.Thresholds, risk.DefaultReferenceLoss)
	if err != nil {
		return nil, err
	}
	reg := registry.Default(registry.Env{Tables: tables, ProbeMinVelocity: cfg.ProbeMinVelocity})
	return &Engine{cfg: cfg, tables: tables, registry: reg, classifier: classifier}, nil
}

func (e *Engine) Types() []dnv.ComponentType { return e.registry.Types() }

func (e *Engine) Config() Config { return e.cfg }

// Job is one component evaluation. Err carries a failure found while reading the request;
// such a job is reported without being calculated.
type Job struct {
	Index     int
	Spec      registry.Spec
	Options   dnv.Options
	Allowable *float64 // mm
	Err       error
}

// Outcome is the result or the captured failure of one job.
type Outcome struct {
	Job    Job
	Result dnv.ErosionResult
	Risk   risk.Assessment
	Err    error
}

func (o Outcome) OK() bool { return o.Err == nil }

// Evaluate runs every job on a bounded worker group and waits for all of them. Shared fluid and
// sand inputs are checked first; a failure there aborts before any worker starts. A failing job
// never cancels its siblings. notify, when set, is called once per finished job, serialized.
func (e *Engine) Evaluate(ctx context.Context, fluid dnv.FluidProperties, sand dnv.SandProperties, jobs []Job, notify func(Outcome)) ([]Outcome, error) {
	if err := fluid.Validate(); err != nil {
		return nil, err
	}
	if err := sand.Validate(); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(jobs))
	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(e.cfg.Workers)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			out := e.evaluate(ctx, fluid, sand, job)
			outcomes[i] = out
			status := "success"
			if !out.OK() {
				status = "error"
			}
			metrics.ObserveComponent(string(job.Spec.Type), status)
			if notify != nil {
				mu.Lock()
				notify(out)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	return outcomes, nil
}

func (e *Engine) evaluate(ctx context.Context, fluid dnv.FluidProperties, sand dnv.SandProperties, job Job) (out Outcome) {
	out.Job = job
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"component_id": job.Spec.ID,
				"panic":        r,
				"stack":        string(debug.Stack()),
			}).Error("component calculation panicked")
			out.Err = fmt.Errorf("%w: component %s: internal failure: %v", dnv.ErrComputation, job.Spec.ID, r)
		}
	}()
	if job.Err != nil {
		out.Err = job.Err
		return out
	}
	if err := ctx.Err(); err != nil {
		out.Err = fmt.Errorf("%w: component %s not calculated: %v", dnv.ErrComputation, job.Spec.ID, err)
		return out
	}

	c, err := e.registry.Build(job.Spec)
	if err != nil {
		out.Err = err
		return out
	}
	res, err := c.CalculateErosion(fluid, sand, job.Options)
	if err != nil {
		out.Err = fmt.Errorf("component %s: %w", job.Spec.ID, err)
		return out
	}
	assessment, err := e.classifier.Assess(res.AnnualErosionRate, res.SandMassFlow, job.Allowable)
	if err != nil {
		out.Err = fmt.Errorf("component %s: %w", job.Spec.ID, err)
		return out
	}
	res.RiskLevel = assessment.Level
	out.Result, out.Risk = res, assessment
	metrics.ObserveRate(string(res.ComponentType), res.AnnualErosionRate)
	return out
}

// Summarize aggregates the successful outcomes.
func (e *Engine) Summarize(outcomes []Outcome, c system.Conditions) system.Summary {
	var entries []system.Entry
	failed := 0
	for _, o := range outcomes {
		if !o.OK() {
			failed++
			continue
		}
		entries = append(entries, system.Entry{
			ID:             o.Result.ComponentID,
			Type:           o.Result.ComponentType,
			Annual:         o.Result.AnnualErosionRate,
			MassFlow:       o.Result.SandMassFlow,
			Level:          o.Risk.Level,
			TimeToLimit:    o.Risk.Governing().Years,
			GeometryFactor: o.Job.Options.GeometryFactor,
		})
	}
	return system.Aggregate(entries, failed, c, e.cfg.Policy)
}
