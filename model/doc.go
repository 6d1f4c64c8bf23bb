// Package model defines the provider‑agnostic abstraction for the language
// model runtime that intentmesh treats as an external collaborator.
//
// Core goals:
//   - Keep request/response shapes minimal and transport independent
//   - Pass the model handle explicitly to the components that need it
//     (model-assisted classification, agent handlers); no shared global client
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic) implement the Model interface in subpackages
// so the router stays decoupled from vendor SDKs.
package model
