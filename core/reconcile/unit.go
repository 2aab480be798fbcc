package reconcile

import (
	"context"
	"time"

	"lake-validator/core/logger"
	"lake-validator/core/schema"

	"go.uber.org/zap"
)

// Unit reconciles one resource type: it measures the warehouse tables, counts the
// expected records and compares both against the flattened schema.
// A Unit holds no mutable state and may be shared by concurrent workers.
type Unit struct {
	expected     ExpectedCounter
	materialized MaterializedCounter
	columns      map[string]schema.FlatColumnMap
	overrides    map[string]int
	customized   bool
	logger       *zap.Logger
}

// NewUnit creates a unit over the given sources and flattened schemas.
func NewUnit(expected ExpectedCounter, materialized MaterializedCounter, columns map[string]schema.FlatColumnMap, log *zap.Logger) *Unit {
	if log == nil {
		log = zap.NewNop()
	}
	return &Unit{
		expected:     expected,
		materialized: materialized,
		columns:      columns,
		overrides:    map[string]int{},
		logger:       log,
	}
}

// WithCustomized returns a copy of the unit that also checks {type}_Customized tables.
func (u *Unit) WithCustomized(enabled bool) *Unit {
	c := *u
	c.customized = enabled
	return &c
}

// WithColumnCount returns a copy of the unit expecting n columns for resourceType
// instead of the size of its schema.
func (u *Unit) WithColumnCount(resourceType string, n int) *Unit {
	c := *u
	c.overrides = make(map[string]int, len(u.overrides)+1)
	for k, v := range u.overrides {
		c.overrides[k] = v
	}
	c.overrides[resourceType] = n
	return &c
}

// ExpectedColumns returns the expected column count of resourceType.
func (u *Unit) ExpectedColumns(resourceType string) int {
	if n, ok := u.overrides[resourceType]; ok {
		return n
	}
	return len(u.columns[resourceType])
}

// Tables returns the warehouse tables checked for resourceType.
func (u *Unit) Tables(resourceType string) []string {
	if u.customized {
		return []string{resourceType, resourceType + CustomizedSuffix}
	}
	return []string{resourceType}
}

// Reconcile fetches both sides for resourceType and compares them.
// Both sides are always fetched; a failing side is recorded without skipping the other.
func (u *Unit) Reconcile(ctx context.Context, resourceType string) Result {
	start := time.Now()
	log := logger.WithResourceType(u.logger, resourceType)

	result := Result{
		ResourceType:    resourceType,
		State:           StateDispatched,
		ExpectedColumns: u.ExpectedColumns(resourceType),
	}

	for _, table := range u.Tables(resourceType) {
		count, err := u.materialized.RowAndColumnCount(ctx, table)
		if err != nil {
			log.Warn("Warehouse query failed", zap.String("table", table), zap.Error(err))
			result.Failures = append(result.Failures, Failure{
				ResourceType: resourceType,
				Table:        table,
				Kind:         KindQuery,
				Detail:       err.Error(),
				Err:          err,
			})
			continue
		}
		log.Info("Queried warehouse table",
			zap.String("table", table),
			zap.Int("rows", count.Rows),
			zap.Int("columns", len(count.Columns)))
		result.Tables = append(result.Tables, count)
	}

	expected, err := u.expected.ExpectedCount(ctx, resourceType)
	if err != nil {
		log.Warn("Expected count fetch failed", zap.Error(err))
		result.Failures = append(result.Failures, Failure{
			ResourceType: resourceType,
			Kind:         KindFetch,
			Detail:       err.Error(),
			Err:          err,
		})
	} else {
		result.ExpectedRecords = expected
		log.Info("Fetched expected count", zap.Int("records", expected))
	}

	if err == nil {
		result.Failures = append(result.Failures, u.compare(resourceType, result, log)...)
	}

	result.Duration = time.Since(start)
	if result.Passed() {
		result.State = StateSucceeded
	} else {
		result.State = StateFailed
	}
	return result
}

// compare checks the row count of every fetched table and the column count of the default table.
func (u *Unit) compare(resourceType string, result Result, log *zap.Logger) []Failure {
	var failures []Failure
	for _, table := range result.Tables {
		if f := compareRows(resourceType, result.ExpectedRecords, table); f != nil {
			failures = append(failures, *f)
		}

		if table.Table != resourceType {
			continue
		}

		columns, hasSchema := u.columns[resourceType]
		if _, overridden := u.overrides[resourceType]; overridden {
			hasSchema = false
		}
		if !hasSchema {
			columns = nil
		}
		if f := compareColumns(resourceType, result.ExpectedColumns, columns, table); f != nil {
			log.Debug("Column sets differ",
				zap.Strings("missing", f.MissingColumns),
				zap.Strings("unexpected", f.UnexpectedColumns))
			failures = append(failures, *f)
		}
	}
	return failures
}
