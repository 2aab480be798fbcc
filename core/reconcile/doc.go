// Package reconcile compares the expected cardinality of every resource type
// against what the warehouse materialized, and aggregates a pass/fail verdict.
//
// # Architecture
//
// The package consists of two components:
//
// 1. Unit: reconciles one resource type. It queries the default table (and the
//    _Customized table when enabled), counts the expected records through an
//    ExpectedCounter, then checks rows against the record count and columns
//    against the flattened schema. Both sides are always fetched, so an error on
//    one side never hides the other.
//
// 2. Runner: dispatches one Unit per resource type to a bounded worker pool
//    (sourcegraph/conc) and consumes results in completion order. By default
//    every resource type runs and every failure is collected. With FailFast the
//    first failure cancels the run and undispatched types are reported as skipped.
//
// # Errors
//
// Mismatches are *Failure values that match ErrRowCountMismatch or
// ErrColumnCountMismatch through errors.Is. Fetch and query failures unwrap to
// the source error. Verdict.Err combines all of them with multierr.
//
// # Usage Example
//
//	unit := reconcile.NewUnit(fhirClient, warehouseClient, schema.FlattenAll(index), log).
//	    WithCustomized(cfg.CustomizedSchema)
//	verdict := reconcile.NewRunner(unit, cfg, log).Run(ctx, index.ResourceTypes())
//	if err := verdict.Err(); err != nil {
//	    return err
//	}
package reconcile
