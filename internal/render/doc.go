// Package render runs the end-to-end render pipeline for one request.
//
// A render stages its media in a private workspace, resolves each file's
// stream kinds with ffprobe, compiles the timeline into a plan, and runs the
// plan with ffmpeg. The workspace is released on every failure path; on
// success the caller owns the artifact until it calls Result.Cleanup.
// Renders are recorded in the history store when one is configured.
package render
