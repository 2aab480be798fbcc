package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lake-validator/core/schema"
	"lake-validator/core/warehouse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// funcReconciler adapts a function to Reconciler.
type funcReconciler func(ctx context.Context, resourceType string) Result

func (f funcReconciler) Reconcile(ctx context.Context, resourceType string) Result {
	return f(ctx, resourceType)
}

// blockingExpected returns its count after delay, or blocks until the context
// is cancelled when no delay is set for the resource type.
type blockingExpected struct {
	counts map[string]int
	delay  map[string]time.Duration
}

func (b blockingExpected) ExpectedCount(ctx context.Context, resourceType string) (int, error) {
	d, ok := b.delay[resourceType]
	if !ok {
		<-ctx.Done()
		return 0, fmt.Errorf("fetch expected count of %q: %w", resourceType, ctx.Err())
	}
	select {
	case <-time.After(d):
		return b.counts[resourceType], nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func passing(resourceType string) Result {
	return Result{ResourceType: resourceType, State: StateSucceeded}
}

func resourceTypes(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Type%02d", i)
	}
	return out
}

func TestRunner_AllPass(t *testing.T) {
	runner := NewRunner(funcReconciler(func(ctx context.Context, rt string) Result {
		return passing(rt)
	}), Config{}, nil)

	verdict := runner.Run(context.Background(), resourceTypes(5))
	assert.True(t, verdict.Passed())
	assert.NoError(t, verdict.Err())
	assert.Len(t, verdict.Results, 5)
	assert.Empty(t, verdict.Failures)
	assert.False(t, verdict.Aborted)
}

func TestRunner_OneMismatchAmongTen(t *testing.T) {
	types := resourceTypes(10)
	counts := map[string]int{}
	tables := map[string]warehouse.TableCount{}
	columns := map[string]schema.FlatColumnMap{}
	for _, rt := range types {
		counts[rt] = 100
		tables[rt] = table(100, "id")
		columns[rt] = schema.FlatColumnMap{"id": "id"}
	}
	tables["Type03"] = table(99, "id")

	unit := NewUnit(&fakeExpected{counts: counts}, &fakeWarehouse{tables: tables}, columns, nil)
	verdict := NewRunner(unit, Config{Concurrency: 10}, nil).Run(context.Background(), types)

	assert.False(t, verdict.Passed())
	assert.Len(t, verdict.Results, 10)
	require.Len(t, verdict.Failures, 1)
	assert.Equal(t, "Type03", verdict.Failures[0].ResourceType)
	assert.Equal(t, 100, verdict.Failures[0].Expected)
	assert.Equal(t, 99, verdict.Failures[0].Actual)

	err := verdict.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRowCountMismatch)
	assert.Contains(t, err.Error(), "Type03")
}

func TestRunner_CollectsEveryFailure(t *testing.T) {
	queryErr := errors.New("login failed")
	runner := NewRunner(funcReconciler(func(ctx context.Context, rt string) Result {
		switch rt {
		case "Type01":
			return Result{ResourceType: rt, State: StateFailed, Failures: []Failure{{ResourceType: rt, Table: rt, Kind: KindQuery, Err: queryErr}}}
		case "Type02":
			return Result{ResourceType: rt, State: StateFailed, Failures: []Failure{{ResourceType: rt, Table: rt, Kind: KindColumnCount, Expected: 3, Actual: 2}}}
		}
		return passing(rt)
	}), Config{Concurrency: 2}, nil)

	verdict := runner.Run(context.Background(), resourceTypes(6))
	assert.Len(t, verdict.Results, 6)
	assert.Len(t, verdict.Failures, 2)
	assert.Empty(t, verdict.Skipped)
	assert.False(t, verdict.Aborted)

	err := verdict.Err()
	assert.ErrorIs(t, err, queryErr)
	assert.ErrorIs(t, err, ErrColumnCountMismatch)
}

func TestRunner_ConcurrencyBound(t *testing.T) {
	var inFlight, peak int32
	runner := NewRunner(funcReconciler(func(ctx context.Context, rt string) Result {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return passing(rt)
	}), Config{Concurrency: 4}, nil)

	verdict := runner.Run(context.Background(), resourceTypes(30))
	assert.Len(t, verdict.Results, 30)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(4))
}

func TestRunner_CompletionOrder(t *testing.T) {
	runner := NewRunner(funcReconciler(func(ctx context.Context, rt string) Result {
		if rt == "Slow" {
			time.Sleep(100 * time.Millisecond)
		}
		return passing(rt)
	}), Config{Concurrency: 2}, nil)

	verdict := runner.Run(context.Background(), []string{"Slow", "Fast"})
	require.Len(t, verdict.Results, 2)
	assert.Equal(t, "Fast", verdict.Results[0].ResourceType)
	assert.Equal(t, "Slow", verdict.Results[1].ResourceType)
}

func TestRunner_Dedupe(t *testing.T) {
	var mu sync.Mutex
	calls := map[string]int{}
	runner := NewRunner(funcReconciler(func(ctx context.Context, rt string) Result {
		mu.Lock()
		calls[rt]++
		mu.Unlock()
		return passing(rt)
	}), Config{}, nil)

	verdict := runner.Run(context.Background(), []string{"Patient", "Observation", "Patient"})
	assert.Len(t, verdict.Results, 2)
	assert.Equal(t, map[string]int{"Patient": 1, "Observation": 1}, calls)
}

func TestRunner_FailFast(t *testing.T) {
	types := []string{"A", "B", "C", "D", "E"}
	runner := NewRunner(funcReconciler(func(ctx context.Context, rt string) Result {
		if rt == "A" {
			return Result{ResourceType: rt, State: StateFailed, Failures: []Failure{{ResourceType: rt, Table: rt, Kind: KindRowCount, Expected: 1, Actual: 0}}}
		}
		// Anything that starts before the cancellation waits for it.
		<-ctx.Done()
		return Result{ResourceType: rt, State: StateFailed, Failures: []Failure{{ResourceType: rt, Kind: KindFetch, Err: ctx.Err()}}}
	}), Config{Concurrency: 1, FailFast: true}, nil)

	verdict := runner.Run(context.Background(), types)

	assert.True(t, verdict.Aborted)
	assert.False(t, verdict.Passed())
	require.Len(t, verdict.Results, 1)
	assert.Equal(t, "A", verdict.Results[0].ResourceType)
	require.Len(t, verdict.Failures, 1)
	assert.Equal(t, KindRowCount, verdict.Failures[0].Kind)
	assert.ElementsMatch(t, []string{"B", "C", "D", "E"}, verdict.Skipped)
	assert.ErrorIs(t, verdict.Err(), ErrRowCountMismatch)
}

func TestRunner_FailFastInFlightTypesAreSkipped(t *testing.T) {
	types := []string{"Bad", "Good1", "Good2", "Good3"}
	counts := map[string]int{}
	tables := map[string]warehouse.TableCount{}
	columns := map[string]schema.FlatColumnMap{}
	for _, rt := range types {
		counts[rt] = 100
		tables[rt] = table(100, "id")
		columns[rt] = schema.FlatColumnMap{"id": "id"}
	}
	tables["Bad"] = table(99, "id")

	expected := blockingExpected{counts: counts, delay: map[string]time.Duration{"Bad": 100 * time.Millisecond}}
	unit := NewUnit(expected, &fakeWarehouse{tables: tables}, columns, nil)
	verdict := NewRunner(unit, Config{Concurrency: 10, FailFast: true}, nil).Run(context.Background(), types)

	assert.True(t, verdict.Aborted)
	require.Len(t, verdict.Failures, 1)
	assert.Equal(t, "Bad", verdict.Failures[0].ResourceType)
	assert.Equal(t, KindRowCount, verdict.Failures[0].Kind)
	require.Len(t, verdict.Results, 1)
	assert.ElementsMatch(t, []string{"Good1", "Good2", "Good3"}, verdict.Skipped)
}

func TestRunner_GenuineFailureAfterAbortIsKept(t *testing.T) {
	queryErr := errors.New("login failed")
	runner := NewRunner(funcReconciler(func(ctx context.Context, rt string) Result {
		if rt == "A" {
			return Result{ResourceType: rt, State: StateFailed, Failures: []Failure{{ResourceType: rt, Table: rt, Kind: KindRowCount}}}
		}
		<-ctx.Done()
		return Result{ResourceType: rt, State: StateFailed, Failures: []Failure{
			{ResourceType: rt, Table: rt, Kind: KindQuery, Err: queryErr},
			{ResourceType: rt, Kind: KindFetch, Err: ctx.Err()},
		}}
	}), Config{Concurrency: 2, FailFast: true}, nil)

	verdict := runner.Run(context.Background(), []string{"A", "B"})

	assert.True(t, verdict.Aborted)
	assert.Len(t, verdict.Results, 2)
	assert.Empty(t, verdict.Skipped)
	assert.ErrorIs(t, verdict.Err(), queryErr)
}

func TestRunner_WithoutFailFastRunsEverything(t *testing.T) {
	runner := NewRunner(funcReconciler(func(ctx context.Context, rt string) Result {
		return Result{ResourceType: rt, State: StateFailed, Failures: []Failure{{ResourceType: rt, Table: rt, Kind: KindRowCount}}}
	}), Config{Concurrency: 1}, nil)

	verdict := runner.Run(context.Background(), resourceTypes(4))
	assert.Len(t, verdict.Results, 4)
	assert.Len(t, verdict.Failures, 4)
	assert.Empty(t, verdict.Skipped)
	assert.False(t, verdict.Aborted)
}

func TestRunner_CancelledParentSkips(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called int32
	runner := NewRunner(funcReconciler(func(ctx context.Context, rt string) Result {
		atomic.AddInt32(&called, 1)
		return passing(rt)
	}), Config{}, nil)

	verdict := runner.Run(ctx, resourceTypes(3))
	assert.Equal(t, int32(0), atomic.LoadInt32(&called))
	assert.Len(t, verdict.Skipped, 3)
	assert.True(t, verdict.Aborted)
	assert.Error(t, verdict.Err())
}

func TestRunner_Empty(t *testing.T) {
	runner := NewRunner(funcReconciler(func(ctx context.Context, rt string) Result {
		return passing(rt)
	}), Config{}, nil)

	verdict := runner.Run(context.Background(), nil)
	assert.True(t, verdict.Passed())
	assert.Empty(t, verdict.Results)
}

func TestNewRunner_DefaultConcurrency(t *testing.T) {
	runner := NewRunner(funcReconciler(nil), Config{Concurrency: 0}, nil)
	assert.Equal(t, DefaultConcurrency, runner.concurrency)
}
