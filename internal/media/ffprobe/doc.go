// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Format: container-level metadata
//
// Inspect executes ffprobe and returns the parsed Result. Helper methods on
// Result answer which stream kinds a file offers; embedded cover art is not
// treated as video.
package ffprobe
