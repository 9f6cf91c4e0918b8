// Package api defines wire-format types and converters for the HTTP API and
// the CLI's JSON output. It translates history records, compiled plans, and
// readiness checks into transport-friendly DTOs so clients never couple to
// internal types.
//
// # Key Types
//
// Render: one history record with timings and the error kind of a failure.
//
// PlanSummary: the compiled filter graph, engine argv, inputs, and the
// per-segment layout of both timelines, used by "vibecut compile --json".
//
// Status: dependency and preflight results plus compiler version.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers.
// Timestamps use RFC3339 with milliseconds. Durations are seconds.
package api
