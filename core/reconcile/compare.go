package reconcile

import (
	"sort"

	"lake-validator/core/schema"
	"lake-validator/core/warehouse"
)

// compareRows checks the row count of table against the expected record count.
func compareRows(resourceType string, expected int, table warehouse.TableCount) *Failure {
	if table.Rows == expected {
		return nil
	}
	return &Failure{
		ResourceType: resourceType,
		Table:        table.Table,
		Kind:         KindRowCount,
		Expected:     expected,
		Actual:       table.Rows,
	}
}

// compareColumns checks the column count of table against the schema.
// columns may be nil for sources without a schema document; the diff is then left empty.
func compareColumns(resourceType string, expected int, columns schema.FlatColumnMap, table warehouse.TableCount) *Failure {
	if len(table.Columns) == expected {
		return nil
	}

	failure := &Failure{
		ResourceType: resourceType,
		Table:        table.Table,
		Kind:         KindColumnCount,
		Expected:     expected,
		Actual:       len(table.Columns),
	}
	if columns != nil {
		failure.MissingColumns, failure.UnexpectedColumns = columnDiff(columns, table.Columns)
	}
	return failure
}

// columnDiff returns the schema column paths missing from actual and the actual
// columns unknown to the schema, both sorted.
func columnDiff(columns schema.FlatColumnMap, actual []string) (missing, unexpected []string) {
	expected := columns.Columns()
	seen := make(map[string]struct{}, len(actual))
	for _, name := range actual {
		seen[name] = struct{}{}
		if _, ok := expected[name]; !ok {
			unexpected = append(unexpected, name)
		}
	}
	for path := range expected {
		if _, ok := seen[path]; !ok {
			missing = append(missing, path)
		}
	}
	sort.Strings(missing)
	sort.Strings(unexpected)
	return missing, unexpected
}
