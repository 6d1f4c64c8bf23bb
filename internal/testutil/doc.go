// Package testutil contains helper builders and fake handlers used across
// tests to reduce boilerplate when constructing intent records, partial
// results and misbehaving handlers (slow, failing, panicking). They are not
// intended for production usage.
package testutil
