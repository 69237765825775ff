// Package logging provides structured logging for LoanLedger.
//
// It wraps log/slog with configuration-driven level and format
// selection plus default service attributes. All loggers are safe for
// concurrent use.
package logging
