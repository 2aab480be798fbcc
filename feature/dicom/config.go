package dicom

// Config holds configuration for the DICOM changefeed client.
type Config struct {
	// ServerURL is the DICOM service base URL.
	ServerURL string `mapstructure:"server_url" default:""`
	// AccessToken is sent as a bearer token when set.
	AccessToken string `mapstructure:"access_token" default:""`
	// Version is the API version path segment.
	Version string `mapstructure:"version" default:"v1"`
	// PageSize is the changefeed limit per request.
	PageSize int `mapstructure:"page_size" default:"100"`
	// Table is the warehouse table holding instance metadata.
	Table string `mapstructure:"table" default:"dicom"`
	// Namespace is the warehouse schema of Table.
	Namespace string `mapstructure:"namespace" default:"dicom"`
	// Database is the warehouse database of Table.
	Database string `mapstructure:"database" default:"dicom"`
	// ExpectedColumns is the column count of the metadata table.
	ExpectedColumns int `mapstructure:"expected_columns" default:"101"`
	// TimeoutSeconds bounds a single request. Zero disables the timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"300"`
}
