package compiler

import (
	"fmt"
	"log/slog"
	"sort"

	"vibecut/internal/capability"
	"vibecut/internal/logging"
	"vibecut/internal/services"
	"vibecut/internal/timeline"
)

// Placement is a clip admitted to a timeline together with its media.
type Placement struct {
	Clip      timeline.Clip
	Media     timeline.MediaFile
	Transform Transform
	// Track and Index locate the clip in the input document.
	Track int
	Index int
}

// Drop records a clip excluded from a timeline.
type Drop struct {
	ClipID  string
	MediaID string
	Track   timeline.TrackType
	Reason  string
}

const (
	dropUnknownMedia = "media not found in project"
	dropNoStream     = "media has no %s stream"
	dropEmptyWindow  = "trim leaves no source material"
	dropPastEnd      = "clip starts after the timeline is full"
)

// linearize admits the clips of every track of one type and orders them by
// start time. Ties keep input order: track order, then clip order.
func (c *Compiler) linearize(logger *slog.Logger, kind timeline.TrackType, project timeline.Project, caps capability.Map) ([]Placement, []Drop, error) {
	media := project.MediaByID()
	need := capability.ForTrack(kind)

	var placements []Placement
	var drops []Drop
	trackIndex := -1
	for _, track := range project.Tracks {
		trackIndex++
		if track.Type != kind {
			continue
		}
		for clipIndex, clip := range track.Clips {
			m, ok := media[clip.MediaID]
			if !ok {
				if c.opts.StrictMedia {
					return nil, nil, services.Wrap(services.ErrMediaMissing, "compiler", "linearize",
						fmt.Sprintf("clip %s references unknown media %s", clip.ID, clip.MediaID), nil)
				}
				drops = append(drops, dropClip(logger, kind, clip, dropUnknownMedia))
				continue
			}
			kinds, resolved := caps.Kinds(m.ID)
			if !resolved {
				kinds = capability.Declared(m.Type)
			}
			if !kinds.Has(need) {
				reason := fmt.Sprintf(dropNoStream, kind)
				if c.opts.StrictMedia {
					return nil, nil, services.Wrap(services.ErrInputMalformed, "compiler", "linearize",
						fmt.Sprintf("clip %s on %s track: %s", clip.ID, kind, reason), nil)
				}
				drops = append(drops, dropClip(logger, kind, clip, reason))
				continue
			}
			transform := ComputeTransform(clip, m, c.opts.SpeedFloor)
			if transform.SourceWindow < minSourceWindow {
				drops = append(drops, dropClip(logger, kind, clip, dropEmptyWindow))
				continue
			}
			placements = append(placements, Placement{
				Clip:      clip,
				Media:     m,
				Transform: transform,
				Track:     trackIndex,
				Index:     clipIndex,
			})
		}
	}

	sort.SliceStable(placements, func(i, j int) bool {
		return placements[i].Clip.StartTime < placements[j].Clip.StartTime
	})
	return placements, drops, nil
}

func dropClip(logger *slog.Logger, kind timeline.TrackType, clip timeline.Clip, reason string) Drop {
	logging.WarnWithContext(logger, "clip dropped from timeline", "clip_dropped",
		append(logging.DecisionAttrs("clip_inclusion", "dropped", reason),
			logging.String("clip_id", clip.ID),
			logging.String("media_id", clip.MediaID),
			logging.String("track_type", string(kind)),
			logging.String(logging.FieldErrorHint, "upload the media or set compiler.strict_media to fail instead"),
			logging.String(logging.FieldImpact, "clip is missing from the render"),
		)...,
	)
	return Drop{ClipID: clip.ID, MediaID: clip.MediaID, Track: kind, Reason: reason}
}
