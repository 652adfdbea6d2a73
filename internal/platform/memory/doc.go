// Package memory provides an in-memory implementation of the store
// interfaces. It applies the same filter, sort, and pagination semantics as
// the PostgreSQL adapter and backs tests and local development runs that do
// not need a database.
package memory
