// Package config loads and validates LoanLedger configuration.
//
// Configuration comes from a YAML file with environment variable
// overrides (LOANLEDGER_SECTION_KEY pattern). Validation runs at load
// time and fails fast: a production deployment without a real JWT
// signing secret refuses to start rather than falling back to an
// insecure default.
package config
