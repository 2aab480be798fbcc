package reconcile

import (
	"errors"
	"fmt"
	"time"

	"lake-validator/core/warehouse"

	"go.uber.org/multierr"
)

// CustomizedSuffix names the secondary table of a resource type.
const CustomizedSuffix = "_Customized"

var (
	// ErrRowCountMismatch matches failures where the table row count differs from the expected record count.
	ErrRowCountMismatch = errors.New("row count mismatch")
	// ErrColumnCountMismatch matches failures where the table column count differs from the schema.
	ErrColumnCountMismatch = errors.New("column count mismatch")
)

// State is the lifecycle of a resource type within a run.
type State string

const (
	StatePending    State = "pending"
	StateDispatched State = "dispatched"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// FailureKind classifies a failure.
type FailureKind string

const (
	// KindRowCount is a row count mismatch.
	KindRowCount FailureKind = "row_count"
	// KindColumnCount is a column count mismatch.
	KindColumnCount FailureKind = "column_count"
	// KindFetch is a failure of the expected count source.
	KindFetch FailureKind = "fetch_error"
	// KindQuery is a failure of the warehouse query.
	KindQuery FailureKind = "query_error"
)

// Failure describes one discrepancy or error for a resource type.
type Failure struct {
	// ResourceType is the reconciled resource type.
	ResourceType string `json:"resource_type"`

	// Table is the warehouse table the failure is scoped to.
	Table string `json:"table"`

	// Kind classifies the failure.
	Kind FailureKind `json:"kind"`

	// Expected is the expected count for mismatches.
	Expected int `json:"expected"`

	// Actual is the materialized count for mismatches.
	Actual int `json:"actual"`

	// MissingColumns are schema columns absent from the table.
	MissingColumns []string `json:"missing_columns,omitempty"`

	// UnexpectedColumns are table columns absent from the schema.
	UnexpectedColumns []string `json:"unexpected_columns,omitempty"`

	// Detail is the message of Err, kept for JSON output.
	Detail string `json:"detail,omitempty"`

	// Err is the underlying fetch or query error.
	Err error `json:"-"`
}

func (f *Failure) Error() string {
	switch f.Kind {
	case KindRowCount:
		return fmt.Sprintf("%v: resource type %q, table %q: expected %d records, queried %d",
			ErrRowCountMismatch, f.ResourceType, f.Table, f.Expected, f.Actual)
	case KindColumnCount:
		return fmt.Sprintf("%v: resource type %q, table %q: expected %d columns, queried %d",
			ErrColumnCountMismatch, f.ResourceType, f.Table, f.Expected, f.Actual)
	case KindQuery:
		return fmt.Sprintf("query table %q of %q: %v", f.Table, f.ResourceType, f.Err)
	default:
		return fmt.Sprintf("fetch expected count of %q: %v", f.ResourceType, f.Err)
	}
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Is matches mismatch failures against their sentinel errors.
func (f *Failure) Is(target error) bool {
	switch target {
	case ErrRowCountMismatch:
		return f.Kind == KindRowCount
	case ErrColumnCountMismatch:
		return f.Kind == KindColumnCount
	}
	return false
}

// Result is the reconciliation outcome of a single resource type.
type Result struct {
	// ResourceType is the reconciled resource type.
	ResourceType string `json:"resource_type"`

	// State is succeeded or failed once the unit returns.
	State State `json:"state"`

	// ExpectedRecords is the record count from the source API.
	ExpectedRecords int `json:"expected_records"`

	// ExpectedColumns is the column count implied by the schema.
	ExpectedColumns int `json:"expected_columns"`

	// Tables holds the materialized counts, default table first.
	Tables []warehouse.TableCount `json:"tables"`

	// Failures holds every mismatch and error of the resource type.
	Failures []Failure `json:"failures,omitempty"`

	// Duration is the wall time of the reconciliation.
	Duration time.Duration `json:"duration"`
}

// Passed reports whether the resource type reconciled without failures.
func (r Result) Passed() bool {
	return len(r.Failures) == 0
}

// Verdict is the aggregate outcome of a run.
type Verdict struct {
	// RunID identifies the run in logs.
	RunID string `json:"run_id,omitempty"`

	// Results holds one result per dispatched resource type, in completion order.
	Results []Result `json:"results"`

	// Failures holds every failure in discovery order.
	Failures []Failure `json:"failures"`

	// Skipped lists resource types that were never dispatched.
	Skipped []string `json:"skipped,omitempty"`

	// Aborted is set when the run stopped before dispatching every resource type.
	Aborted bool `json:"aborted"`

	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration"`
}

// Passed reports whether every resource type ran and agreed.
func (v *Verdict) Passed() bool {
	return len(v.Failures) == 0 && len(v.Skipped) == 0 && !v.Aborted
}

// Err returns nil if the verdict passed, otherwise every failure combined.
func (v *Verdict) Err() error {
	if v.Passed() {
		return nil
	}

	var err error
	for i := range v.Failures {
		err = multierr.Append(err, &v.Failures[i])
	}
	if len(v.Skipped) > 0 {
		err = multierr.Append(err, fmt.Errorf("%d resource types skipped: %v", len(v.Skipped), v.Skipped))
	}
	if err == nil {
		err = errors.New("run aborted")
	}
	return err
}
