// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL (production) or SQLite
// (tests, single-host deployments) connections from the application configuration.
//
// # Connect
//
// Connect opens the connection, tunes the pool and pings the server. When
// ConnectRetries is set the ping is retried with exponential backoff, which helps
// batch runs started alongside a database container.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns inspect live tables. The tracker store uses
// them after migrating to confirm that every column of the final schema exists.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "networks", []string{"number"})
package database
