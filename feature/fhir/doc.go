// Package fhir counts the resources a FHIR server holds for a resource type.
//
// The client runs a _lastUpdated search sorted by update time and follows the
// continuation cursor of every next link until the server stops sending one.
// Three cursor modes are supported since deployments differ in how they accept
// the cursor back: appended to the original query, set as an encoded
// parameter, or by following the next link as is.
//
// # Usage
//
//	client, err := fhir.New(cfg.Fhir, log)
//	if err != nil {
//	    return err
//	}
//
//	n, err := client.ExpectedCount(ctx, "Patient")
package fhir
