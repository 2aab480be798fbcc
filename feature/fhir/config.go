package fhir

// Cursor modes describe how the continuation token is sent back to the server.
const (
	// CursorQuery appends ct to the original query string.
	CursorQuery = "query"
	// CursorParam sets ct as an encoded parameter of the original URL.
	CursorParam = "param"
	// CursorLink follows the next link returned by the server.
	CursorLink = "link"
)

// Config holds configuration for the FHIR search client.
type Config struct {
	// ServerURL is the FHIR base URL.
	ServerURL string `mapstructure:"server_url" default:""`
	// AccessToken is sent as a bearer token when set.
	AccessToken string `mapstructure:"access_token" default:""`
	// PageSize is the _count of every search page.
	PageSize int `mapstructure:"page_size" default:"1000"`
	// CursorMode is one of query, param, link.
	CursorMode string `mapstructure:"cursor_mode" default:"query"`
	// MaxPages caps the pages fetched per resource type. Zero disables the cap.
	MaxPages int `mapstructure:"max_pages" default:"10000"`
	// Since is the inclusive lower bound of _lastUpdated (RFC 3339).
	Since string `mapstructure:"since" default:"1970-01-01T00:00:00Z"`
	// TimeoutSeconds bounds a single page request. Zero disables the timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"300"`
}
