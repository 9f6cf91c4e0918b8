package compiler

import (
	"math"

	"vibecut/internal/timeline"
)

// minSourceWindow is the shortest trim window fg.Seconds renders as nonzero.
// trim and atrim treat duration=0 as unbounded, so shorter windows are
// dropped rather than emitted.
const minSourceWindow = 5e-7

// Transform is the resolved source window and playback of one clip.
type Transform struct {
	// SourceStart is the offset into the media where reading begins.
	SourceStart float64
	// SourceWindow is the duration of material read from the source, before
	// the speed change.
	SourceWindow float64
	// Speed is the clip speed clamped to the floor.
	Speed float64
	// Effective is the clip's duration on the output timeline.
	Effective float64
	Reverse   bool
}

// ComputeTransform derives a clip's trim window and on-timeline duration.
// Reverse applies to the trimmed window, not to the whole source.
func ComputeTransform(clip timeline.Clip, media timeline.MediaFile, speedFloor float64) Transform {
	if speedFloor <= 0 {
		speedFloor = defaultSpeedFloor
	}
	speed := clip.Speed
	if math.IsNaN(speed) || speed < speedFloor {
		speed = speedFloor
	}
	window := math.Max(0, media.Duration-clip.TrimStart-clip.TrimEnd)
	return Transform{
		SourceStart:  clip.TrimStart,
		SourceWindow: window,
		Speed:        speed,
		Effective:    window / speed,
		Reverse:      clip.Reverse,
	}
}

// Retimed reports whether the clip plays at a speed other than 1x.
func (t Transform) Retimed() bool {
	return t.Speed != 1
}

// Truncate shortens the clip to at most effective seconds on the output
// timeline. A reversed clip keeps the end of its source window, since that
// is what plays first.
func (t Transform) Truncate(effective float64) Transform {
	if effective >= t.Effective {
		return t
	}
	window := effective * t.Speed
	if t.Reverse {
		t.SourceStart += t.SourceWindow - window
	}
	t.SourceWindow = window
	t.Effective = effective
	return t
}
