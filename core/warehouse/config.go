package warehouse

import "fmt"

// Config holds configuration for the warehouse connection.
type Config struct {
	// Driver is the SQL dialect (sqlserver, mysql, postgres).
	Driver string `mapstructure:"driver" default:"sqlserver"`
	// Server is the warehouse host. Derived from Workspace when empty.
	Server string `mapstructure:"server" default:""`
	// Workspace is the Synapse workspace name.
	Workspace string `mapstructure:"workspace" default:""`
	// Port is the warehouse port. Zero selects the dialect default.
	Port int `mapstructure:"port" default:"0"`
	// Database is the database holding the external tables.
	Database string `mapstructure:"database" default:"fhirdb"`
	// Username is the SQL user.
	Username string `mapstructure:"username" default:""`
	// Password is the SQL password.
	Password string `mapstructure:"password" default:""`
	// Namespace is the SQL schema the tables live in (fhir, dicom).
	Namespace string `mapstructure:"namespace" default:"fhir"`
	// TimeoutSeconds bounds connection setup and each I/O operation.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

const (
	DriverSQLServer = "sqlserver"
	DriverMySQL     = "mysql"
	DriverPostgres  = "postgres"
)

// Host returns the configured server, or the serverless SQL endpoint of the workspace.
func (c Config) Host() string {
	if c.Server != "" {
		return c.Server
	}
	if c.Workspace != "" {
		return c.Workspace + "-ondemand.sql.azuresynapse.net"
	}
	return "localhost"
}

// PortOrDefault returns the configured port or the default port of the dialect.
func (c Config) PortOrDefault() int {
	if c.Port > 0 {
		return c.Port
	}
	switch c.Driver {
	case DriverMySQL:
		return 3306
	case DriverPostgres:
		return 5432
	default:
		return 1433
	}
}

// Validate checks the driver is supported.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverSQLServer, DriverMySQL, DriverPostgres:
		return nil
	default:
		return fmt.Errorf("unsupported warehouse driver: %s", c.Driver)
	}
}

func (c Config) timeout() int {
	if c.TimeoutSeconds <= 0 {
		return 30
	}
	return c.TimeoutSeconds
}
