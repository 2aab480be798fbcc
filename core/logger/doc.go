// Package logger provides a structured logging facility based on Zap.
//
// A single logger is built per run from the Log section of the configuration.
// Console encoding is the default since the validator is usually run by hand or
// from a CI step; json encoding suits log collectors.
//
// # Context
//
// WithRunID attaches the run id generated at startup so every line of one
// validation run can be correlated. WithResourceType scopes a logger to one
// reconciliation unit.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	log = logger.WithRunID(log, runID)
//	logger.WithResourceType(log, "Patient").Info("Fetched counts")
package logger
