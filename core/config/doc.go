// Package config provides configuration management for the lake validator.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags of every
// partial configuration.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Fhir: FHIR server URL, access token, page size, cursor mode, page cap
//   - Dicom: DICOM server URL, API version, changefeed page size, metadata table
//   - Warehouse: SQL dialect, Synapse workspace or server, database, credentials
//   - Schema: schema document source (directory or object storage)
//   - Storage: S3/MinIO credentials and bucket settings
//   - Validation: concurrency, fail-fast, customized tables, resource type subset
//   - Log: Logging level and format
//
// Environment keys are the upper-cased config keys with dots replaced by
// underscores (fhir.server_url -> FHIR_SERVER_URL). Warehouse credentials also
// fall back to SQL_USERNAME and SQL_PASSWORD.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Fhir.ServerURL)
package config
