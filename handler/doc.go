// Package handler provides the built-in domain handlers: a calculator for
// arithmetic, a weather lookup over a pluggable store, a clock backed
// date/time handler, a language model agent exposed as a handler, and a
// generic adapter for plain functions.
//
// Every handler reports domain problems as *core.HandlerError with a stable
// Code so callers can branch on errors.As without parsing messages.
package handler
