// Package capability resolves which elementary stream kinds (video, audio)
// each media file offers.
//
// Every distinct uploaded file is probed once, concurrently and bounded by
// the configured limit. A probe that fails or reports no streams yields an
// explicit Unknown result, and the resolver falls back to the media file's
// declared type.
package capability
