package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/esmgis/platcrawl/internal/model"
)

// Step defines the interface that all crawl phases implement.
// Phases are executed in sequence, with each phase receiving the
// accumulated report from previous phases.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows phases to carry configuration state
// 2. It provides a Name() method for logging and the phase record
// 3. It's more extensible for future features (e.g., per-phase timeouts)
type Step interface {
	// Do executes the phase.
	// It receives the context for cancellation and the report to modify.
	// Returns an error only for critical failures; per-document failures
	// are recorded in the report and return nil.
	Do(ctx context.Context, report *model.CommunityReport) error

	// Name returns the phase's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of the crawl phases for one
// community. It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of phases to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing phases
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, the default logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to keep executing phases
// after one fails. Failed phases are logged and their errors are
// recorded in the report, but subsequent phases still execute.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddSteps after creation.
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

// AddSteps appends phases to the pipeline.
// Phases are executed in the order they are added.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// StepNames returns the names of all phases in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Execute runs all phases in sequence.
// It checks for cancellation between phases; phases respect cancellation
// internally as well, so an interrupted phase returns quickly and the
// counts accumulated so far stay in the report.
func (p *Pipeline) Execute(ctx context.Context, report *model.CommunityReport) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("crawl cancelled",
				"phase", step.Name(),
				"community", report.Community,
				"reason", ctx.Err(),
			)
			report.Aborted = true
			return ctx.Err()
		default:
		}

		p.logger.Info("starting phase",
			"phase", step.Name(),
			"community", report.Community,
		)

		if err := step.Do(ctx, report); err != nil {
			p.logger.Error("phase failed",
				"phase", step.Name(),
				"community", report.Community,
				"error", err,
			)

			report.Error = err
			report.ErrorMessage = err.Error()
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				report.Aborted = true
			}

			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("phase completed",
				"phase", step.Name(),
				"community", report.Community,
			)
		}

		report.PerformedPhases = append(report.PerformedPhases, step.Name())
	}

	return nil
}
