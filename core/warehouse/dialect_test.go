package warehouse

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Host(t *testing.T) {
	assert.Equal(t, "myws-ondemand.sql.azuresynapse.net", Config{Workspace: "myws"}.Host())
	assert.Equal(t, "db.local", Config{Workspace: "myws", Server: "db.local"}.Host())
	assert.Equal(t, "localhost", Config{}.Host())
}

func TestConfig_PortOrDefault(t *testing.T) {
	assert.Equal(t, 1433, Config{Driver: DriverSQLServer}.PortOrDefault())
	assert.Equal(t, 3306, Config{Driver: DriverMySQL}.PortOrDefault())
	assert.Equal(t, 5432, Config{Driver: DriverPostgres}.PortOrDefault())
	assert.Equal(t, 11433, Config{Driver: DriverSQLServer, Port: 11433}.PortOrDefault())
}

func TestDSN_SQLServer(t *testing.T) {
	cfg := Config{
		Driver:         DriverSQLServer,
		Workspace:      "myws",
		Database:       "fhirdb",
		Username:       "admin",
		Password:       "p@ss;word",
		TimeoutSeconds: 15,
	}

	u, err := url.Parse(DSN(cfg))
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", u.Scheme)
	assert.Equal(t, "myws-ondemand.sql.azuresynapse.net:1433", u.Host)
	assert.Equal(t, "admin", u.User.Username())
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss;word", pw)
	assert.Equal(t, "fhirdb", u.Query().Get("database"))
	assert.Equal(t, "15", u.Query().Get("connection timeout"))
}

func TestDSN_MySQL(t *testing.T) {
	cfg := Config{
		Driver:   DriverMySQL,
		Server:   "localhost",
		Database: "lake",
		Username: "root",
		Password: "secret",
	}
	assert.Equal(t,
		"root:secret@tcp(localhost:3306)/lake?charset=utf8mb4&parseTime=True&loc=UTC&timeout=30s&readTimeout=30s&writeTimeout=30s",
		DSN(cfg))
}

func TestDSN_Postgres(t *testing.T) {
	cfg := Config{
		Driver:         DriverPostgres,
		Server:         "pg",
		Database:       "lake",
		Username:       "u",
		Password:       "p",
		TimeoutSeconds: 5,
	}
	assert.Equal(t, "host=pg port=5432 user=u password=p dbname=lake sslmode=require connect_timeout=5", DSN(cfg))
}

func TestQualifiedTable(t *testing.T) {
	assert.Equal(t, "[fhir].[Patient]", QualifiedTable(DriverSQLServer, "fhir", "Patient"))
	assert.Equal(t, "[dicom].[a]]b]", QualifiedTable(DriverSQLServer, "dicom", "a]b"))
	assert.Equal(t, "`fhir`.`Patient`", QualifiedTable(DriverMySQL, "fhir", "Patient"))
	assert.Equal(t, `"fhir"."Pat""ient"`, QualifiedTable(DriverPostgres, "fhir", `Pat"ient`))
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{DriverSQLServer, DriverMySQL, DriverPostgres} {
		d, err := Dialector(Config{Driver: driver})
		require.NoError(t, err, driver)
		assert.NotNil(t, d)
	}

	_, err := Dialector(Config{Driver: "sqlite"})
	assert.Error(t, err)
}
