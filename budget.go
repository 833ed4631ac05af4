package algebra

import (
	"context"
	"errors"
	"time"
)

// ============================================================
// Limits
// ============================================================

// Limits bound the work done for a single request.
type Limits struct {
	MaxPasses           int           `yaml:"max_passes"`
	MaxSamples          int           `yaml:"max_samples"`
	MaxBinomialDegree   int           `yaml:"max_binomial_degree"`
	MaxRootSearchDegree int           `yaml:"max_root_search_degree"`
	MaxInputLength      int           `yaml:"max_input_length"`
	MaxTerms            int           `yaml:"max_terms"`
	Deadline            time.Duration `yaml:"deadline"`
}

func DefaultLimits() Limits {
	return Limits{
		MaxPasses:           128,
		MaxSamples:          10000,
		MaxBinomialDegree:   12,
		MaxRootSearchDegree: 6,
		MaxInputLength:      4096,
		MaxTerms:            20000,
		Deadline:            2 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultLimits.
func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxPasses <= 0 {
		l.MaxPasses = d.MaxPasses
	}
	if l.MaxSamples <= 0 {
		l.MaxSamples = d.MaxSamples
	}
	if l.MaxBinomialDegree <= 0 {
		l.MaxBinomialDegree = d.MaxBinomialDegree
	}
	if l.MaxRootSearchDegree <= 0 {
		l.MaxRootSearchDegree = d.MaxRootSearchDegree
	}
	if l.MaxInputLength <= 0 {
		l.MaxInputLength = d.MaxInputLength
	}
	if l.MaxTerms <= 0 {
		l.MaxTerms = d.MaxTerms
	}
	if l.Deadline <= 0 {
		l.Deadline = d.Deadline
	}
	return l
}

// ============================================================
// Budget
// ============================================================

// budget bounds every rewrite fixpoint in one request to max passes and
// watches the request deadline shared by all of them.
type budget struct {
	ctx context.Context
	max int
}

func newBudget(ctx context.Context, limit int) *budget {
	return &budget{ctx: ctx, max: limit}
}

// pass is called at the start of pass n (0-based) of a fixpoint loop.
func (b *budget) pass(n int) error {
	if err := b.check(); err != nil {
		return err
	}
	if n >= b.max {
		return &BudgetError{What: "rewrite passes"}
	}
	return nil
}

// check observes cancellation without spending a pass.
func (b *budget) check() error {
	if err := b.ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &BudgetError{What: "deadline"}
		}
		return &BudgetError{What: "cancelled"}
	}
	return nil
}
