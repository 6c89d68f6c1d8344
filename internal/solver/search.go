// Package solver searches for army compositions: a k-best integer program
// optimizer when the constraint has a target, otherwise a backtracking
// enumerator. A preset is fixed: both engines buy only the remainder, with
// the preset counted in the escort rule, and return armies that include it.
package solver

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/napolitain/lob-optimizer/internal/army"
	"github.com/napolitain/lob-optimizer/internal/ilp"
	"github.com/napolitain/lob-optimizer/internal/ilp/pbsat"
)

// Engine dispatches requests to the optimizer or the enumerator
type Engine struct {
	optimizer  *Optimizer
	enumerator *Enumerator
	logger     zerolog.Logger
}

type config struct {
	backend ilp.Solver
	logger  zerolog.Logger
}

type Option func(*config)

// WithBackend replaces the gophersat backend
func WithBackend(backend ilp.Solver) Option {
	return func(c *config) { c.backend = backend }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func NewEngine(opts ...Option) *Engine {
	cfg := config{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.backend == nil {
		cfg.backend = pbsat.New(pbsat.WithLogger(cfg.logger))
	}
	return &Engine{
		optimizer:  NewOptimizer(cfg.backend, cfg.logger),
		enumerator: NewEnumerator(cfg.logger),
		logger:     cfg.logger,
	}
}

// Search validates req, runs the engine that fits it and returns up to K
// compositions. Results found before a backend failure are returned with
// the error.
func (e *Engine) Search(ctx context.Context, req Request) ([]*army.Composition, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Preset != nil {
		e.logger.Debug().Int("preset_units", req.Preset.TotalUnits()).Str("preset", req.Preset.String()).Msg("extending preset")
	}
	if req.Constraint.Target != nil {
		return e.optimizer.Optimize(ctx, req)
	}
	return e.enumerator.Enumerate(ctx, req)
}

// Search runs req on a default engine
func Search(ctx context.Context, req Request, opts ...Option) ([]*army.Composition, error) {
	return NewEngine(opts...).Search(ctx, req)
}
