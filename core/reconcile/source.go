package reconcile

import (
	"context"

	"lake-validator/core/warehouse"
)

// ExpectedCounter produces the authoritative record count for a resource type.
type ExpectedCounter interface {
	ExpectedCount(ctx context.Context, resourceType string) (int, error)
}

// MaterializedCounter measures a warehouse table.
type MaterializedCounter interface {
	RowAndColumnCount(ctx context.Context, table string) (warehouse.TableCount, error)
}

// Reconciler reconciles a single resource type.
type Reconciler interface {
	Reconcile(ctx context.Context, resourceType string) Result
}
