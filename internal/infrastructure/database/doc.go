// Package database provides the SQLite connection used for the local
// power transition history.
//
// This package manages:
//   - Database connection with WAL mode so API reads never block inserts
//   - Forward-only schema migrations embedded in the binary
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql and must
// stay additive: new columns are NULLABLE or carry a DEFAULT.
package database
