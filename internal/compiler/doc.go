// Package compiler turns an editing timeline into an ffmpeg execution plan.
//
// Compilation runs forward through fixed steps: clips are admitted per
// timeline type and ordered by start time (linearize.go), each clip's trim
// window and speed are resolved (transform.go), ordered clips become labeled
// segment chains with synthetic fillers covering gaps (segments.go, tempo.go),
// text overlays are folded over the composed video (overlay.go), and the
// result is assembled with deduplicated inputs and format-specific encoding
// parameters (assemble.go).
//
// The compiler is pure: it performs no I/O and keeps no state between calls.
package compiler
