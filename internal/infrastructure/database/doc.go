// Package database provides SQLite persistence for Lumen Core.
//
// It wraps database/sql with a configured SQLite connection (WAL mode,
// busy timeout, single-writer pool) and an embedded-migration runner.
// Schema files live in the top-level migrations package and are compiled
// into the binary, so deployments never depend on loose .sql files.
//
// # Usage
//
//	db, err := database.Open(database.Config{
//	    Path:        cfg.Database.Path,
//	    WALMode:     cfg.Database.WALMode,
//	    BusyTimeout: cfg.Database.BusyTimeout,
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Repositories in the domain packages (control, inference) take the
// underlying *sql.DB and own their queries.
package database
