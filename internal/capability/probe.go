package capability

import (
	"context"
	"math"
	"time"

	"vibecut/internal/media/ffprobe"
)

// Result is the outcome of probing one file. Known is false when the probe
// failed or found no usable streams; callers must branch on it explicitly.
type Result struct {
	Known    bool
	Kinds    Kinds
	Duration float64
	Reason   string
}

// Unknown builds a Result carrying no stream information.
func Unknown(reason string) Result {
	return Result{Reason: reason}
}

// Prober reports which stream kinds a file contains.
type Prober interface {
	Probe(ctx context.Context, path string) Result
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, path string) Result

func (f ProberFunc) Probe(ctx context.Context, path string) Result { return f(ctx, path) }

// FFprobe probes files with the ffprobe binary.
type FFprobe struct {
	Binary  string
	Timeout time.Duration
}

// Probe runs ffprobe once against path.
func (p FFprobe) Probe(ctx context.Context, path string) Result {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	result, err := ffprobe.Inspect(ctx, p.Binary, path)
	if err != nil {
		return Unknown(err.Error())
	}
	var kinds Kinds
	if result.HasVideo() {
		kinds |= Video
	}
	if result.HasAudio() {
		kinds |= Audio
	}
	if kinds.Empty() {
		return Unknown("no video or audio streams reported")
	}
	duration := result.DurationSeconds()
	if math.IsNaN(duration) || duration < 0 {
		duration = 0
	}
	return Result{Known: true, Kinds: kinds, Duration: duration}
}
