package compiler

import (
	"log/slog"
	"math"
	"strconv"

	fg "vibecut/internal/filtergraph"
	"vibecut/internal/logging"
	"vibecut/internal/timeline"
)

// SegmentKind distinguishes real clip content from synthetic fillers.
type SegmentKind string

const (
	SegmentClip   SegmentKind = "clip"
	SegmentFiller SegmentKind = "filler"
)

// Segment is one labeled, time-bounded unit of a compiled timeline.
type Segment struct {
	Label    fg.Label
	Kind     SegmentKind
	Start    float64
	Duration float64
	ClipID   string
	MediaID  string
	Input    int
	// Tempo holds the atempo ratios of a retimed audio clip.
	Tempo []float64
}

// End returns the segment's end on the output timeline.
func (s Segment) End() float64 { return s.Start + s.Duration }

// track is the per-type configuration of the segment compiler.
type track struct {
	kind      timeline.TrackType
	tolerance float64
	total     float64
	filler    func(duration float64) []fg.Filter
	clip      func(p Placement) []fg.Filter
	stream    fg.StreamKind
	concat    func(n int) fg.Filter
}

// segmentCompiler walks one ordered placement list, emitting fillers for
// gaps and one chain per clip, and concatenates the result.
type segmentCompiler struct {
	track  track
	labels *fg.Labels
	graph  *fg.Graph
	inputs map[string]int
	logger *slog.Logger
	// dropped collects clips that fall past the end of the timeline.
	dropped []Drop
}

// compile emits the segments of one timeline and returns them in order.
// The cursor is the running end of emitted segments, so consecutive segments
// are contiguous. A gap becomes a filler only when it strictly exceeds the
// track tolerance. Segments never extend past the track total: a clip that
// overruns it is truncated, and one that would start at or after it is
// dropped.
func (s *segmentCompiler) compile(placements []Placement) []Segment {
	var segments []Segment
	cursor := 0.0
	for _, p := range placements {
		start := math.Max(cursor, p.Clip.StartTime)
		if s.track.total-start <= s.track.tolerance {
			s.dropped = append(s.dropped, dropClip(s.logger, s.track.kind, p.Clip, dropPastEnd))
			continue
		}
		if gap := start - cursor; gap > s.track.tolerance {
			segments = append(segments, s.emitFiller(cursor, gap))
			cursor += gap
		}
		if remaining := s.track.total - cursor; p.Transform.Effective > remaining {
			s.logger.Debug("clip truncated at timeline end",
				logging.String("track_type", string(s.track.kind)),
				logging.String("clip", shortID(p.Clip.ID)),
				logging.String("effective", fg.Seconds(p.Transform.Effective)),
				logging.String("kept", fg.Seconds(remaining)),
			)
			p.Transform = p.Transform.Truncate(remaining)
		}
		seg := s.emitClip(cursor, p)
		segments = append(segments, seg)
		cursor += seg.Duration
	}
	if trail := s.track.total - cursor; trail > s.track.tolerance {
		segments = append(segments, s.emitFiller(cursor, trail))
	}
	return segments
}

// compileBlank emits a single filler spanning the whole timeline.
func (s *segmentCompiler) compileBlank() Segment {
	return s.emitFiller(0, s.track.total)
}

func (s *segmentCompiler) emitFiller(start, duration float64) Segment {
	label := s.labels.Next("s")
	s.graph.Add(fg.Chain{Filters: s.track.filler(duration), Output: label})
	s.logger.Debug("gap filler emitted",
		logging.String("track_type", string(s.track.kind)),
		logging.String("label", string(label)),
		logging.String("start", fg.Seconds(start)),
		logging.String("duration", fg.Seconds(duration)),
	)
	return Segment{Label: label, Kind: SegmentFiller, Start: start, Duration: duration, Input: -1}
}

func (s *segmentCompiler) emitClip(start float64, p Placement) Segment {
	label := s.labels.Next("s")
	input := s.inputs[p.Media.ID]
	s.graph.Add(fg.Chain{
		Inputs:  []fg.Pad{fg.InputStream(input, s.track.stream)},
		Filters: s.track.clip(p),
		Output:  label,
	})
	seg := Segment{
		Label:    label,
		Kind:     SegmentClip,
		Start:    start,
		Duration: p.Transform.Effective,
		ClipID:   p.Clip.ID,
		MediaID:  p.Media.ID,
		Input:    input,
	}
	if s.track.kind == timeline.TrackAudio && p.Transform.Retimed() {
		seg.Tempo = TempoChain(p.Transform.Speed)
	}
	s.logger.Debug("clip segment emitted",
		logging.String("track_type", string(s.track.kind)),
		logging.String("clip", shortID(p.Clip.ID)),
		logging.Int("src", input),
		logging.String("trim", fg.Seconds(p.Transform.SourceStart)+"+"+fg.Seconds(p.Transform.SourceWindow)),
		logging.String("timeline", fg.Seconds(start)),
		logging.Float64("speed", p.Transform.Speed),
		logging.Bool("reverse", p.Transform.Reverse),
	)
	return seg
}

// concat joins segment outputs, in order, into out.
func (s *segmentCompiler) concat(segments []Segment, out fg.Label) {
	pads := make([]fg.Pad, 0, len(segments))
	for _, seg := range segments {
		pads = append(pads, fg.Link(seg.Label))
	}
	s.graph.Add(fg.Chain{Inputs: pads, Filters: []fg.Filter{s.track.concat(len(segments))}, Output: out})
}

func (c *Compiler) videoTrack(settings timeline.Settings, total float64) track {
	w, h := strconv.Itoa(settings.Width), strconv.Itoa(settings.Height)
	fps := strconv.Itoa(settings.Framerate)
	normalize := []fg.Filter{
		fg.New("fps", fg.Pos(fps)),
		fg.New("scale", fg.Pos(w), fg.Pos(h), fg.KV("force_original_aspect_ratio", "decrease")),
		fg.New("pad", fg.Pos(w), fg.Pos(h), fg.Pos("(ow-iw)/2"), fg.Pos("(oh-ih)/2")),
		fg.New("format", fg.Pos(c.opts.PixelFormat)),
		fg.New("setsar", fg.Pos("1")),
	}
	return track{
		kind:      timeline.TrackVideo,
		tolerance: settings.FrameDuration(),
		total:     total,
		stream:    fg.StreamVideo,
		filler: func(d float64) []fg.Filter {
			return []fg.Filter{
				fg.New("color", fg.KV("c", c.opts.FillerColor), fg.KV("s", w+"x"+h), fg.KV("r", fps), fg.KV("d", fg.Seconds(d))),
				fg.New("format", fg.Pos(c.opts.PixelFormat)),
				fg.New("setsar", fg.Pos("1")),
			}
		},
		clip: func(p Placement) []fg.Filter {
			t := p.Transform
			filters := []fg.Filter{
				fg.New("trim", fg.KV("start", fg.Seconds(t.SourceStart)), fg.KV("duration", fg.Seconds(t.SourceWindow))),
				fg.New("setpts", fg.Pos("PTS-STARTPTS")),
			}
			if t.Reverse {
				filters = append(filters, fg.New("reverse"))
			}
			if t.Retimed() {
				filters = append(filters, fg.New("setpts", fg.Pos("PTS/"+fg.Ratio(t.Speed))))
			}
			return append(filters, normalize...)
		},
		concat: func(n int) fg.Filter {
			return fg.New("concat", fg.KV("n", strconv.Itoa(n)), fg.KV("v", "1"), fg.KV("a", "0"))
		},
	}
}

func (c *Compiler) audioTrack(total float64) track {
	rate := strconv.Itoa(c.opts.AudioSampleRate)
	aformat := fg.New("aformat",
		fg.KV("sample_fmts", "fltp"),
		fg.KV("sample_rates", rate),
		fg.KV("channel_layouts", c.opts.AudioChannelLayout),
	)
	return track{
		kind:      timeline.TrackAudio,
		tolerance: audioGapTolerance,
		total:     total,
		stream:    fg.StreamAudio,
		filler: func(d float64) []fg.Filter {
			return []fg.Filter{
				fg.New("anullsrc", fg.KV("r", rate), fg.KV("cl", c.opts.AudioChannelLayout), fg.KV("d", fg.Seconds(d))),
				aformat,
			}
		},
		clip: func(p Placement) []fg.Filter {
			t := p.Transform
			filters := []fg.Filter{
				fg.New("atrim", fg.KV("start", fg.Seconds(t.SourceStart)), fg.KV("duration", fg.Seconds(t.SourceWindow))),
				fg.New("asetpts", fg.Pos("PTS-STARTPTS")),
			}
			if t.Reverse {
				filters = append(filters, fg.New("areverse"))
			}
			if t.Retimed() {
				for _, ratio := range TempoChain(t.Speed) {
					filters = append(filters, fg.New("atempo", fg.Pos(fg.Ratio(ratio))))
				}
			}
			return append(filters, aformat)
		},
		concat: func(n int) fg.Filter {
			return fg.New("concat", fg.KV("n", strconv.Itoa(n)), fg.KV("v", "0"), fg.KV("a", "1"))
		},
	}
}

// SumDurations returns the total duration covered by segments.
func SumDurations(segments []Segment) float64 {
	total := 0.0
	for _, seg := range segments {
		total += seg.Duration
	}
	return total
}

func audioTotal(projectDuration float64, sampleRate int) float64 {
	return math.Max(projectDuration, 1/float64(sampleRate))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
