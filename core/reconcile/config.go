package reconcile

// Config holds configuration for a validation run.
type Config struct {
	// Concurrency bounds the reconciliations in flight.
	Concurrency int `mapstructure:"concurrency" default:"10"`
	// FailFast stops dispatching after the first failed resource type.
	FailFast bool `mapstructure:"fail_fast" default:"false"`
	// CustomizedSchema also checks the {type}_Customized table of every resource type.
	CustomizedSchema bool `mapstructure:"customized_schema" default:"false"`
	// ResourceTypes is a comma separated subset to validate. Empty means every schema.
	ResourceTypes string `mapstructure:"resource_types" default:""`
	// TimeoutSeconds bounds the whole run. Zero disables the timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"0"`
}

// DefaultConcurrency is used when Config.Concurrency is not positive.
const DefaultConcurrency = 10
