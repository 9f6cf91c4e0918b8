package compiler

import (
	"context"
	"log/slog"

	"vibecut/internal/capability"
	fg "vibecut/internal/filtergraph"
	"vibecut/internal/logging"
	"vibecut/internal/services"
	"vibecut/internal/timeline"
)

const (
	videoOutLabel  = "vout"
	audioOutLabel  = "aout"
	videoBaseLabel = "vbase"
)

// Request is the input of one compilation.
type Request struct {
	Project      timeline.Project
	Settings     timeline.Settings
	Capabilities capability.Map
	// MediaPaths maps media ids to uploaded file paths.
	MediaPaths map[string]string
}

// Compiler turns timelines into execution plans. A Compiler holds no
// per-compilation state and may be shared.
type Compiler struct {
	opts   Options
	logger *slog.Logger
}

// New constructs a Compiler.
func New(opts Options, logger *slog.Logger) *Compiler {
	return &Compiler{opts: opts.withDefaults(), logger: logging.NewComponentLogger(logger, "compiler")}
}

// Compile linearizes the project's tracks, emits segment and overlay chains,
// and assembles the plan. It fails with services.ErrEmptyTimeline when no
// clip or overlay survives filtering and with services.ErrMediaMissing when
// an admitted clip has no uploaded file.
func (c *Compiler) Compile(ctx context.Context, req Request) (*Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrUnexpected, "compiler", "compile", "cancelled", err)
	}
	logger := logging.WithContext(ctx, c.logger)
	project, settings := req.Project, req.Settings

	video, videoDrops, err := c.linearize(logger, timeline.TrackVideo, project, req.Capabilities)
	if err != nil {
		return nil, err
	}
	audio, audioDrops, err := c.linearize(logger, timeline.TrackAudio, project, req.Capabilities)
	if err != nil {
		return nil, err
	}
	overlays := collectOverlays(logger, project)
	if len(video) == 0 && len(audio) == 0 && len(overlays) == 0 {
		return nil, services.Wrap(services.ErrEmptyTimeline, "compiler", "linearize", "no clips to render", nil)
	}

	inputs, inputIndex, err := assignInputs(video, audio, req.MediaPaths)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Version:  Version,
		Inputs:   inputs,
		Duration: settings.OutputDuration(project.Duration),
		Encoding: SelectEncoding(settings),
		Drops:    append(videoDrops, audioDrops...),
	}
	labels := fg.NewLabels()
	graph := &fg.Graph{}

	if len(video) > 0 || len(overlays) > 0 {
		sc := &segmentCompiler{
			track:  c.videoTrack(settings, plan.Duration),
			labels: labels,
			graph:  graph,
			inputs: inputIndex,
			logger: logger,
		}
		vout, _ := labels.Named(videoOutLabel)
		var composed fg.Label
		if len(video) > 0 {
			composed = vout
			if len(overlays) > 0 {
				composed, _ = labels.Named(videoBaseLabel)
			}
			plan.VideoSegments = sc.compile(video)
			sc.concat(plan.VideoSegments, composed)
		} else {
			blank := sc.compileBlank()
			plan.VideoSegments = []Segment{blank}
			composed = blank.Label
		}
		if len(overlays) > 0 {
			plan.Overlays = composeOverlays(graph, labels, composed, vout, overlays)
		}
		plan.VideoOut = vout
		plan.Drops = append(plan.Drops, sc.dropped...)
	}

	if len(audio) > 0 {
		sc := &segmentCompiler{
			track:  c.audioTrack(audioTotal(project.Duration, c.opts.AudioSampleRate)),
			labels: labels,
			graph:  graph,
			inputs: inputIndex,
			logger: logger,
		}
		aout, _ := labels.Named(audioOutLabel)
		plan.AudioSegments = sc.compile(audio)
		sc.concat(plan.AudioSegments, aout)
		plan.AudioOut = aout
		plan.Drops = append(plan.Drops, sc.dropped...)
	}

	plan.Graph = *graph
	if err := checkGraph(plan); err != nil {
		return nil, services.Wrap(services.ErrUnexpected, "compiler", "assemble", "invalid filter graph", err)
	}

	logger.Info("timeline compiled",
		logging.Int("inputs", len(plan.Inputs)),
		logging.Int("video_segments", len(plan.VideoSegments)),
		logging.Int("audio_segments", len(plan.AudioSegments)),
		logging.Int("overlays", len(plan.Overlays)),
		logging.Int("dropped_clips", len(plan.Drops)),
		logging.String("duration", fg.Seconds(plan.Duration)),
		logging.String(logging.FieldEventType, "timeline_compiled"),
	)
	return plan, nil
}

// checkGraph verifies label discipline and that only the bound outputs are
// left unconsumed.
func checkGraph(plan *Plan) error {
	if err := plan.Graph.Validate(); err != nil {
		return err
	}
	for _, label := range plan.Graph.Unconsumed() {
		if label != plan.VideoOut && label != plan.AudioOut {
			return &danglingLabelError{label: label}
		}
	}
	return nil
}

type danglingLabelError struct{ label fg.Label }

func (e *danglingLabelError) Error() string {
	return "label [" + string(e.label) + "] is never consumed"
}
