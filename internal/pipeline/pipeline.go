package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/VespianRex/lib2docscrape/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the accumulated report
// from previous steps.
//
// Design decision: We use an interface rather than function types because
// steps carry configuration state, and a Name() method keeps logging
// uniform without reflection.
type Step interface {
	// Do executes the pipeline step. It receives the context for
	// cancellation and the report to modify. Returns an error only for
	// critical failures; non-critical problems should be recorded in the
	// report and return nil.
	Do(ctx context.Context, report *model.CrawlReport) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes an ordered list of steps for one seed.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError determines whether to keep executing steps after
	// one fails. The default is to stop, because an early failure (e.g.
	// an invalid seed) usually makes later steps meaningless.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue executing even
// when a step fails. Failed steps are logged and their errors recorded in
// the report, but subsequent steps still run.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a Pipeline. Steps are added with AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// Cancellation is checked between steps; steps handle their own timeouts
// internally. Returns the first error encountered unless continueOnError
// is set.
func (p *Pipeline) Execute(ctx context.Context, report *model.CrawlReport) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			report.TimedOut = true
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step", "step", step.Name())

		if err := step.Do(ctx, report); err != nil {
			p.logger.Warn("step failed",
				"step", step.Name(),
				"error", err,
			)
			if report.Error == "" {
				report.Error = err.Error()
			}
			if !p.continueOnError {
				return fmt.Errorf("step %s: %w", step.Name(), err)
			}
		}
	}
	return nil
}
