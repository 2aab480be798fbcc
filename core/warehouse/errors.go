package warehouse

import "fmt"

// QueryError reports a failed connection or query against a warehouse table.
type QueryError struct {
	// Table is the qualified table name.
	Table string
	// Err is the underlying driver error.
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s failed: %v", e.Table, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
