// Package timeline defines the editing timeline data model and decodes
// project and settings documents at the trust boundary.
//
// Documents arrive as JSON from the HTTP service or as JSON/YAML files from
// the CLI. Decoding enforces required fields, numeric ranges, and enumerated
// values, and every failure is reported as services.ErrInputMalformed with
// the offending field path. Values that are legal but need clamping (clip
// speed) are left for the compiler.
package timeline
