// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing conversation items and records. They are not
// intended for production usage.
package testutil
