package engine

import (
	"strconv"

	"vibecut/internal/compiler"
	fg "vibecut/internal/filtergraph"
)

// ArgOptions tunes argv assembly.
type ArgOptions struct {
	// Threads caps encoder threads; 0 leaves the choice to ffmpeg.
	Threads int
	// Progress requests machine-readable progress on stdout.
	Progress bool
}

// BuildArgs assembles the ffmpeg argument list (without the binary) that
// executes plan and writes output.
func BuildArgs(plan *compiler.Plan, output string, opts ArgOptions) []string {
	args := []string{"-hide_banner", "-y"}
	if opts.Progress {
		args = append(args, "-progress", "pipe:1", "-nostats")
	}
	for _, input := range plan.Inputs {
		args = append(args, "-i", input.Path)
	}
	if graph := plan.FilterComplex(); graph != "" {
		args = append(args, "-filter_complex", graph)
	}

	enc := plan.Encoding
	if plan.HasVideo() {
		args = append(args, "-map", "["+string(plan.VideoOut)+"]")
	}
	if plan.HasAudio() {
		args = append(args, "-map", "["+string(plan.AudioOut)+"]")
	}
	if plan.HasVideo() {
		args = append(args, "-c:v", enc.VideoCodec)
		args = append(args, enc.VideoParams...)
		args = append(args, "-b:v", enc.VideoBitrate, "-r", strconv.Itoa(enc.Framerate))
	}
	if plan.HasAudio() {
		args = append(args, "-c:a", enc.AudioCodec, "-b:a", enc.AudioBitrate)
	}
	if opts.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(opts.Threads))
	}
	return append(args, "-t", fg.Seconds(plan.Duration), output)
}
