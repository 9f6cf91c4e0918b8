// Package engine runs compiled plans with the ffmpeg CLI.
//
// BuildArgs turns a compiler.Plan into argv. Runner executes it, keeping only
// a bounded tail of stderr for diagnostics and parsing -progress output for
// callers that want to report progress. A non-zero exit or a missing
// artifact is returned as a *Failure, which matches services.ErrEngine.
package engine
