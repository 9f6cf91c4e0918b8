package api

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"vibecut/internal/capability"
	"vibecut/internal/compiler"
	"vibecut/internal/history"
	"vibecut/internal/timeline"
)

func TestFromRecordFormatsTimes(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	finished := created.Add(1500 * time.Millisecond)
	rec := &history.Record{
		ID:           "r1",
		Status:       history.StatusFailed,
		Format:       "mp4",
		ErrorKind:    "engine_failure",
		ErrorMessage: "ffmpeg exited with status 1",
		CreatedAt:    created,
		FinishedAt:   &finished,
	}

	dto := FromRecord(rec)
	if dto.CreatedAt != "2026-03-01T12:00:00.000Z" || dto.FinishedAt != "2026-03-01T12:00:01.500Z" {
		t.Fatalf("unexpected timestamps %q %q", dto.CreatedAt, dto.FinishedAt)
	}
	if dto.ElapsedSeconds != 1.5 || dto.Status != "failed" || dto.ErrorKind != "engine_failure" {
		t.Fatalf("unexpected dto %+v", dto)
	}
}

func TestFromRecordRunningOmitsFinish(t *testing.T) {
	dto := FromRecord(&history.Record{ID: "r2", Status: history.StatusRunning, CreatedAt: time.Now()})
	data, err := json.Marshal(dto)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "finishedAt") || strings.Contains(string(data), "errorKind") {
		t.Fatalf("running render should omit finish fields: %s", data)
	}
}

func TestFromRecordsNeverNil(t *testing.T) {
	data, err := json.Marshal(RenderListResponse{Renders: FromRecords(nil)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"renders":[]}` {
		t.Fatalf("unexpected payload %s", data)
	}
}

func TestFromPlan(t *testing.T) {
	plan := &compiler.Plan{
		Version:  compiler.Version,
		Duration: 4,
		Encoding: compiler.Encoding{ContentType: "video/mp4"},
		Inputs:   []compiler.Input{{Index: 0, Path: "/w/m1_a.mp4", MediaIDs: []string{"m1", "m2"}}},
		VideoSegments: []compiler.Segment{
			{Label: "s0", Kind: compiler.SegmentFiller, Start: 0, Duration: 1},
			{Label: "s1", Kind: compiler.SegmentClip, Start: 1, Duration: 3, ClipID: "c1", MediaID: "m1", Input: 0},
		},
		AudioSegments: []compiler.Segment{
			{Label: "s2", Kind: compiler.SegmentClip, Duration: 4, ClipID: "c2", MediaID: "m2", Input: 0, Tempo: []float64{2, 1}},
		},
		Overlays: []compiler.Overlay{{Label: "vout", ClipID: "c1", Start: 1, End: 2, Content: "Hi"}},
		Drops:    []compiler.Drop{{ClipID: "c3", MediaID: "m9", Track: timeline.TrackVideo, Reason: "media not found in project"}},
	}
	caps := capability.Map{
		"m2": {MediaID: "m2", Kinds: capability.Audio, Source: capability.SourceProbe},
		"m1": {MediaID: "m1", Kinds: capability.Video | capability.Audio, Source: capability.SourceDeclared, Reason: "probing disabled"},
	}

	dto := FromPlan(plan, caps, []string{"ffmpeg", "-y"})
	if dto.VideoSegments[0].Input != nil {
		t.Fatalf("filler must not report an input")
	}
	if dto.VideoSegments[1].Input == nil || *dto.VideoSegments[1].Input != 0 {
		t.Fatalf("clip must report its input")
	}
	if len(dto.AudioSegments[0].Tempo) != 2 {
		t.Fatalf("expected tempo chain, got %+v", dto.AudioSegments[0])
	}
	if len(dto.Media) != 2 || dto.Media[0].MediaID != "m1" || dto.Media[0].Kinds != "video+audio" || dto.Media[1].Source != "probe" {
		t.Fatalf("unexpected media %+v", dto.Media)
	}
	if dto.Drops[0].Track != "video" || dto.Overlays[0].Label != "vout" || dto.Inputs[0].MediaIDs[1] != "m2" {
		t.Fatalf("unexpected dto %+v", dto)
	}
	if len(dto.Args) != 2 {
		t.Fatalf("expected args passthrough")
	}
}

func TestFromPlanNil(t *testing.T) {
	if dto := FromPlan(nil, nil, nil); dto.FilterComplex != "" || dto.Inputs != nil {
		t.Fatalf("expected zero summary, got %+v", dto)
	}
}
