// Package fanout applies one logical write to several independently-keyed
// views as an ordered sequence of store operations. The store has no
// cross-table transactions, so a plan is best-effort: it stops at the
// first failing step and reports exactly how far it got. There is no
// compensation pass: already-applied steps stay applied, and the views
// remain divergent until a later write converges them.
package fanout

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Step is a single named view operation within a plan.
type Step struct {
	Name string
	Do   func(ctx context.Context) error
}

// Result reports how much of a plan ran.
type Result struct {
	Applied int
	Total   int
}

// Complete reports whether every step of the plan was applied.
func (r Result) Complete() bool {
	return r.Applied == r.Total
}

// StepError marks the step at which a plan stopped.
type StepError struct {
	Index int
	Name  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("fanout step %d (%s) failed: %v", e.Index, e.Name, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Plan is an ordered list of view operations for one logical write.
type Plan struct {
	name   string
	steps  []Step
	logger *zap.Logger
}

// NewPlan creates an empty plan. The name identifies the logical
// operation in logs.
func NewPlan(name string, logger *zap.Logger) *Plan {
	return &Plan{name: name, logger: logger}
}

// Then appends a step. Steps run strictly in the order they were added.
func (p *Plan) Then(name string, do func(ctx context.Context) error) *Plan {
	p.steps = append(p.steps, Step{Name: name, Do: do})
	return p
}

// Apply runs the steps in order, stopping at the first failure. The
// returned Result is valid in both outcomes; on failure the error is a
// *StepError identifying where the write sequence broke off.
func (p *Plan) Apply(ctx context.Context) (Result, error) {
	res := Result{Total: len(p.steps)}

	for i, step := range p.steps {
		if err := step.Do(ctx); err != nil {
			p.logger.Error("Fanout stopped at failed step",
				zap.String("plan", p.name),
				zap.String("step", step.Name),
				zap.Int("applied", res.Applied),
				zap.Int("total", res.Total),
				zap.Error(err),
			)
			return res, &StepError{Index: i, Name: step.Name, Err: err}
		}
		res.Applied++
	}

	p.logger.Debug("Fanout applied",
		zap.String("plan", p.name),
		zap.Int("steps", res.Total),
	)
	return res, nil
}
