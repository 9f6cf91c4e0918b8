package deps

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckAll(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "ffmpeg")
	if err := os.WriteFile(present, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "FFmpeg", Command: present, ConfigKey: "engine.ffmpeg_binary"},
		{Name: "FFprobe", Command: "clearly-not-present-binary", ConfigKey: "engine.ffprobe_binary", Optional: true},
		{Name: "Blank", Command: "  "},
	}

	results := CheckAll(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present || results[0].Detail != "" {
		t.Fatalf("expected ffmpeg resolved to %s, got %#v", present, results[0])
	}
	missing := results[1]
	if missing.Available || missing.Path != "" || missing.Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected missing status %#v", missing)
	}
	if !strings.Contains(missing.Detail, "not an executable on PATH") || !strings.HasSuffix(missing.Detail, "; set engine.ffprobe_binary") {
		t.Fatalf("missing detail should name the config key, got %q", missing.Detail)
	}
	if results[2].Available || results[2].Detail != "no binary configured" {
		t.Fatalf("unexpected blank command status: %#v", results[2])
	}
}

func TestBlockingIgnoresOptional(t *testing.T) {
	statuses := []Status{
		{Name: "FFmpeg", Available: true},
		{Name: "FFprobe", Optional: true},
		{Name: "Encoder"},
	}
	blocking := Blocking(statuses)
	if len(blocking) != 1 || blocking[0].Name != "Encoder" {
		t.Fatalf("expected only the required missing binary, got %#v", blocking)
	}
	if Blocking(statuses[:2]) != nil {
		t.Fatalf("optional binaries must not block renders")
	}
}

func TestEngineRequirements(t *testing.T) {
	reqs := EngineRequirements("/opt/ffmpeg", "/opt/ffprobe")
	if len(reqs) != 2 || reqs[0].Command != "/opt/ffmpeg" || reqs[1].Command != "/opt/ffprobe" {
		t.Fatalf("unexpected requirements %#v", reqs)
	}
	if reqs[0].Optional || !reqs[1].Optional {
		t.Fatalf("ffmpeg must be required and ffprobe optional")
	}
	if reqs[0].ConfigKey != "engine.ffmpeg_binary" || reqs[1].ConfigKey != "engine.ffprobe_binary" {
		t.Fatalf("unexpected config keys %#v", reqs)
	}
}

func TestProbeVersion(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\necho\necho 'ffmpeg version 7.1-static Copyright (c) 2000-2024'\necho 'built with gcc'\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	line, err := ProbeVersion(context.Background(), stub)
	if err != nil {
		t.Fatalf("ProbeVersion: %v", err)
	}
	if line != "ffmpeg version 7.1-static Copyright (c) 2000-2024" {
		t.Fatalf("unexpected version line %q", line)
	}
	if got := ShortVersion(line); got != "ffmpeg version 7.1-static" {
		t.Fatalf("unexpected short version %q", got)
	}
}

func TestProbeVersionFailures(t *testing.T) {
	if _, err := ProbeVersion(context.Background(), ""); err == nil {
		t.Fatalf("expected error for blank binary")
	}
	if _, err := ProbeVersion(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing binary")
	}
}

func TestShortVersionPassThrough(t *testing.T) {
	if got := ShortVersion("custom build"); got != "custom build" {
		t.Fatalf("unexpected %q", got)
	}
}
