package compiler

import (
	"vibecut/internal/config"
)

// Version identifies the compiler's output shape. It is reported by the
// health endpoint and recorded with every render.
const Version = "2026-10-concat-v2"

const (
	defaultSpeedFloor    = 0.01
	defaultSampleRate    = 48000
	defaultChannelLayout = "stereo"
	defaultPixelFormat   = "yuv420p"
	defaultFillerColor   = "black"

	// audioGapTolerance is the smallest audio gap that gets a silence filler.
	// Audio has no frame grid, so a fixed epsilon is used.
	audioGapTolerance = 0.001
)

// Options configures one Compiler.
type Options struct {
	// StrictMedia fails compilation when a clip references unknown media or
	// media lacking the stream kind its track needs. When false such clips
	// are dropped and logged.
	StrictMedia        bool
	SpeedFloor         float64
	AudioSampleRate    int
	AudioChannelLayout string
	PixelFormat        string
	FillerColor        string
}

// OptionsFromConfig maps the [compiler] config section onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{}.withDefaults()
	}
	return Options{
		StrictMedia:        cfg.Compiler.StrictMedia,
		SpeedFloor:         cfg.Compiler.SpeedFloor,
		AudioSampleRate:    cfg.Compiler.AudioSampleRate,
		AudioChannelLayout: cfg.Compiler.AudioChannelLayout,
		PixelFormat:        cfg.Compiler.PixelFormat,
		FillerColor:        cfg.Compiler.FillerColor,
	}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.SpeedFloor <= 0 {
		o.SpeedFloor = defaultSpeedFloor
	}
	if o.AudioSampleRate <= 0 {
		o.AudioSampleRate = defaultSampleRate
	}
	if o.AudioChannelLayout == "" {
		o.AudioChannelLayout = defaultChannelLayout
	}
	if o.PixelFormat == "" {
		o.PixelFormat = defaultPixelFormat
	}
	if o.FillerColor == "" {
		o.FillerColor = defaultFillerColor
	}
	return o
}
