// Package validation runs end-to-end data lake validations.
//
// A validation loads the schema documents, builds the source and warehouse
// clients from configuration and hands one reconciliation per resource type to
// the reconcile runner.
//
// # Validations Provided
//
//   - FHIR: every resource type with a schema document (or the configured
//     subset) against the fhir namespace, optionally including _Customized tables.
//   - DICOM: the instance metadata table against the changefeed, with a fixed
//     expected column count.
//
// Every run gets a run_id (UUID) attached to its log lines and to the verdict.
package validation
