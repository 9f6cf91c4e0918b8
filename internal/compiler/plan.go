package compiler

import (
	fg "vibecut/internal/filtergraph"
	"vibecut/internal/timeline"
)

// Input is one distinct media file read by the engine. Several media ids may
// share an input when they were uploaded as the same file.
type Input struct {
	Index    int
	Path     string
	MediaIDs []string
}

// Encoding is the codec parameter set selected for the output format.
type Encoding struct {
	Format       timeline.OutputFormat
	ContentType  string
	VideoCodec   string
	VideoParams  []string
	VideoBitrate string
	Framerate    int
	AudioCodec   string
	AudioParams  []string
	AudioBitrate string
}

// Plan is the compiled execution plan handed to the engine.
type Plan struct {
	Version  string
	Inputs   []Input
	Graph    fg.Graph
	VideoOut fg.Label
	AudioOut fg.Label
	// Duration is the output length, at least one frame.
	Duration float64
	Encoding Encoding

	VideoSegments []Segment
	AudioSegments []Segment
	Overlays      []Overlay
	Drops         []Drop
}

// HasVideo reports whether the plan produces a video stream.
func (p *Plan) HasVideo() bool { return p != nil && p.VideoOut != "" }

// HasAudio reports whether the plan produces an audio stream.
func (p *Plan) HasAudio() bool { return p != nil && p.AudioOut != "" }

// FilterComplex returns the serialized filter graph.
func (p *Plan) FilterComplex() string {
	if p == nil {
		return ""
	}
	return p.Graph.String()
}
