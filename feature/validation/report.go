package validation

import (
	"encoding/json"
	"fmt"
	"io"

	"lake-validator/core/reconcile"
)

// PrintReport writes the run metrics and every failure to w.
func PrintReport(w io.Writer, title string, verdict *reconcile.Verdict) {
	passed := 0
	for _, r := range verdict.Results {
		if r.Passed() {
			passed++
		}
	}

	fmt.Fprintf(w, "\n=== %s ===\n", title)
	fmt.Fprintf(w, "Run ID: %s\n", verdict.RunID)
	fmt.Fprintf(w, "Resource Types: %d\n", len(verdict.Results)+len(verdict.Skipped))
	fmt.Fprintf(w, "Passed: %d\n", passed)
	fmt.Fprintf(w, "Failed: %d\n", len(verdict.Results)-passed)
	fmt.Fprintf(w, "Skipped: %d\n", len(verdict.Skipped))
	fmt.Fprintf(w, "Execution Time: %s\n", verdict.Duration.String())

	if len(verdict.Failures) > 0 {
		fmt.Fprintln(w, "\n=== Failures ===")
		for i := range verdict.Failures {
			f := &verdict.Failures[i]
			fmt.Fprintf(w, "- %s\n", f.Error())
			if len(f.MissingColumns) > 0 {
				fmt.Fprintf(w, "    missing columns: %v\n", f.MissingColumns)
			}
			if len(f.UnexpectedColumns) > 0 {
				fmt.Fprintf(w, "    unexpected columns: %v\n", f.UnexpectedColumns)
			}
		}
	}

	if len(verdict.Skipped) > 0 {
		fmt.Fprintf(w, "\nSkipped: %v\n", verdict.Skipped)
	}

	if verdict.Passed() {
		fmt.Fprintf(w, "\nValidating %d resource types, completes in %s.\n", len(verdict.Results), verdict.Duration.String())
	}
}

// WriteJSON writes the verdict as indented JSON to w.
func WriteJSON(w io.Writer, verdict *reconcile.Verdict) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(verdict); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}
