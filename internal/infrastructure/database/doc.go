// Package database owns the LoanLedger SQLite store: opening the file
// with WAL mode and foreign keys on, running the embedded schema
// migrations, and exposing health and pool statistics.
//
// The database file is chmod 0600 because it holds credentials. All
// queries throughout the codebase use parameterised statements.
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations ship in pairs (.up.sql / .down.sql) and are additive:
// new columns must be nullable or carry defaults.
package database
