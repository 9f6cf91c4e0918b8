package api

import (
	"vibecut/internal/capability"
	"vibecut/internal/compiler"
	"vibecut/internal/deps"
	"vibecut/internal/history"
	"vibecut/internal/preflight"
)

// FromRecord converts a history record to its API representation.
func FromRecord(rec *history.Record) Render {
	if rec == nil {
		return Render{}
	}
	dto := Render{
		ID:              rec.ID,
		Status:          string(rec.Status),
		Format:          rec.Format,
		Width:           rec.Width,
		Height:          rec.Height,
		Framerate:       rec.Framerate,
		ClipCount:       rec.ClipCount,
		MediaCount:      rec.MediaCount,
		InputCount:      rec.InputCount,
		DroppedCount:    rec.DroppedCount,
		Duration:        rec.Duration,
		CompilerVersion: rec.CompilerVersion,
		OutputBytes:     rec.OutputBytes,
		ErrorKind:       rec.ErrorKind,
		ErrorMessage:    rec.ErrorMessage,
	}
	if !rec.CreatedAt.IsZero() {
		dto.CreatedAt = rec.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if rec.FinishedAt != nil {
		dto.FinishedAt = rec.FinishedAt.UTC().Format(dateTimeFormat)
		dto.ElapsedSeconds = rec.Elapsed().Seconds()
	}
	return dto
}

// FromRecords converts a slice of history records. The result is never nil
// so empty lists encode as [].
func FromRecords(records []*history.Record) []Render {
	out := make([]Render, 0, len(records))
	for _, rec := range records {
		out = append(out, FromRecord(rec))
	}
	return out
}

// FromPlan converts a compiled plan and its capability map. args may be nil.
func FromPlan(plan *compiler.Plan, caps capability.Map, args []string) PlanSummary {
	if plan == nil {
		return PlanSummary{}
	}
	dto := PlanSummary{
		Version:       plan.Version,
		Duration:      plan.Duration,
		ContentType:   plan.Encoding.ContentType,
		FilterComplex: plan.FilterComplex(),
		Args:          args,
		Inputs:        make([]PlanInput, 0, len(plan.Inputs)),
		VideoSegments: fromSegments(plan.VideoSegments),
		AudioSegments: fromSegments(plan.AudioSegments),
		Overlays:      make([]PlanOverlay, 0, len(plan.Overlays)),
		Drops:         make([]PlanDrop, 0, len(plan.Drops)),
		Media:         make([]MediaCapability, 0, len(caps)),
	}
	for _, in := range plan.Inputs {
		dto.Inputs = append(dto.Inputs, PlanInput{Index: in.Index, Path: in.Path, MediaIDs: in.MediaIDs})
	}
	for _, ov := range plan.Overlays {
		dto.Overlays = append(dto.Overlays, PlanOverlay{
			Label:   string(ov.Label),
			ClipID:  ov.ClipID,
			Start:   ov.Start,
			End:     ov.End,
			Content: ov.Content,
		})
	}
	for _, d := range plan.Drops {
		dto.Drops = append(dto.Drops, PlanDrop{ClipID: d.ClipID, MediaID: d.MediaID, Track: string(d.Track), Reason: d.Reason})
	}
	for _, res := range caps.Sorted() {
		dto.Media = append(dto.Media, MediaCapability{
			MediaID: res.MediaID,
			Kinds:   res.Kinds.String(),
			Source:  string(res.Source),
			Reason:  res.Reason,
		})
	}
	return dto
}

func fromSegments(segments []compiler.Segment) []PlanSegment {
	out := make([]PlanSegment, 0, len(segments))
	for _, s := range segments {
		seg := PlanSegment{
			Label:    string(s.Label),
			Kind:     string(s.Kind),
			Start:    s.Start,
			Duration: s.Duration,
			ClipID:   s.ClipID,
			MediaID:  s.MediaID,
			Tempo:    s.Tempo,
		}
		if s.Kind == compiler.SegmentClip {
			input := s.Input
			seg.Input = &input
		}
		out = append(out, seg)
	}
	return out
}

// FromDependencies converts dependency statuses.
func FromDependencies(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, 0, len(statuses))
	for _, dep := range statuses {
		out = append(out, DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Path:        dep.Path,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		})
	}
	return out
}

// FromChecks converts preflight results.
func FromChecks(results []preflight.Result) []CheckResult {
	out := make([]CheckResult, 0, len(results))
	for _, r := range results {
		out = append(out, CheckResult{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
	}
	return out
}
