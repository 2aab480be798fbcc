package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Runner dispatches one reconciliation per resource type to a bounded pool and
// aggregates the results into a Verdict.
type Runner struct {
	unit        Reconciler
	concurrency int
	failFast    bool
	logger      *zap.Logger
}

// NewRunner creates a runner over unit.
func NewRunner(unit Reconciler, cfg Config, logger *zap.Logger) *Runner {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		unit:        unit,
		concurrency: concurrency,
		failFast:    cfg.FailFast,
		logger:      logger,
	}
}

// Run reconciles every resource type and returns the verdict.
// Results are consumed in completion order. Without fail-fast every resource type
// runs to completion; with fail-fast the first failure cancels the run. Resource
// types not yet dispatched, or cut short by the cancellation, are reported as skipped.
func (r *Runner) Run(ctx context.Context, resourceTypes []string) *Verdict {
	start := time.Now()
	types := dedupe(resourceTypes)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan Result, len(types))
	p := pool.New().WithMaxGoroutines(r.concurrency)

	go func() {
		for _, resourceType := range types {
			p.Go(func() {
				if runCtx.Err() != nil {
					results <- Result{ResourceType: resourceType, State: StatePending}
					return
				}
				results <- r.unit.Reconcile(runCtx, resourceType)
			})
		}
		p.Wait()
		close(results)
	}()

	verdict := &Verdict{
		Results:  make([]Result, 0, len(types)),
		Failures: []Failure{},
	}

	for result := range results {
		if result.State == StatePending || interrupted(runCtx, result) {
			verdict.Skipped = append(verdict.Skipped, result.ResourceType)
			continue
		}

		verdict.Results = append(verdict.Results, result)
		verdict.Failures = append(verdict.Failures, result.Failures...)

		if result.Passed() {
			r.logger.Info("Resource type reconciled",
				zap.String("resource_type", result.ResourceType),
				zap.Int("completed", len(verdict.Results)),
				zap.Int("total", len(types)))
			continue
		}

		for i := range result.Failures {
			r.logger.Warn("Resource type failed",
				zap.String("resource_type", result.ResourceType),
				zap.String("kind", string(result.Failures[i].Kind)),
				zap.Error(&result.Failures[i]))
		}

		if r.failFast && !verdict.Aborted {
			r.logger.Warn("Fail-fast enabled, cancelling remaining resource types")
			verdict.Aborted = true
			cancel()
		}
	}

	if ctx.Err() != nil && len(verdict.Skipped) > 0 {
		verdict.Aborted = true
	}
	verdict.Duration = time.Since(start)

	return verdict
}

// interrupted reports whether result failed only because the run was cancelled
// while it was in flight.
func interrupted(runCtx context.Context, result Result) bool {
	if runCtx.Err() == nil || len(result.Failures) == 0 {
		return false
	}
	for i := range result.Failures {
		if !errors.Is(result.Failures[i].Err, context.Canceled) {
			return false
		}
	}
	return true
}

// dedupe drops repeated resource types, keeping the first occurrence.
func dedupe(resourceTypes []string) []string {
	seen := make(map[string]struct{}, len(resourceTypes))
	out := make([]string, 0, len(resourceTypes))
	for _, rt := range resourceTypes {
		if _, ok := seen[rt]; ok {
			continue
		}
		seen[rt] = struct{}{}
		out = append(out, rt)
	}
	return out
}
