// Package history records renders in a SQLite database so operators can
// list recent renders, their outcome, and why they failed.
//
// The schema lives in schema.sql and is versioned with a schema_version row.
package history
