// Package database handles connections to the workshop metadata cache store.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to
// configure either a MySQL connection (shared deployments) or a SQLite file
// (the default for single-node and CLI use) based on the application's
// configuration.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//	defer database.Close(db)
package database
