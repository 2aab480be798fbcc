// Package warehouse measures materialized tables in the SQL warehouse.
//
// The data lake pipeline exposes every resource type as an external table in
// a namespace (fhir, dicom). This package runs SELECT * against such a table
// and reports how many rows it returned and which columns it carried.
//
// # Connections
//
// Connections are opened through GORM for the configured dialect. Synapse
// serverless SQL is reached through gorm.io/driver/sqlserver; MySQL and
// PostgreSQL are supported for local pipelines. Every call opens its own
// single-connection pool and closes it before returning.
//
// # Usage
//
//	client, err := warehouse.NewClient(cfg.Warehouse, log)
//	if err != nil {
//	    return err
//	}
//
//	count, err := client.RowAndColumnCount(ctx, "Patient")
package warehouse
