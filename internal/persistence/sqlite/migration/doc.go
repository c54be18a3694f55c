// Package migration provides versioned schema management for the embedded
// SQLite store.
//
// Migrations are an ordered, in-code list of steps. Each step carries a
// numeric version, a description, and the SQL to execute. Applied versions
// are recorded in a schema_migrations table; running the manager applies
// every step whose version is not yet recorded, each inside its own
// transaction, and is a no-op on an up-to-date store.
package migration
