package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vibecut/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("VIBECUT_API_TOKEN", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "vibecut", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "vibecut", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Paths.HistoryDB != filepath.Join(tempHome, ".local", "share", "vibecut", "history.db") {
		t.Fatalf("unexpected history db: %q", cfg.Paths.HistoryDB)
	}
	if cfg.Server.Bind != "127.0.0.1:8765" {
		t.Fatalf("unexpected bind: %q", cfg.Server.Bind)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected cors origins: %v", cfg.Server.CORSOrigins)
	}
	if cfg.Engine.DiagnosticTailBytes != 4000 {
		t.Fatalf("unexpected diagnostic tail: %d", cfg.Engine.DiagnosticTailBytes)
	}
	if cfg.Compiler.StrictMedia {
		t.Fatal("expected lenient media policy by default")
	}
	if cfg.Compiler.SpeedFloor != 0.01 {
		t.Fatalf("unexpected speed floor: %v", cfg.Compiler.SpeedFloor)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.MaxUploadBytes() != 2048<<20 {
		t.Fatalf("unexpected upload limit: %d", cfg.MaxUploadBytes())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("VIBECUT_API_TOKEN", "")
	t.Setenv("VIBECUT_FFMPEG", "")
	t.Setenv("VIBECUT_FFPROBE", "")

	configPath := filepath.Join(tempHome, "custom.toml")
	content := `
[paths]
work_dir = "~/scratch"

[server]
bind = "0.0.0.0:9000"
cors_origins = ["https://editor.example/", " https://editor.example ", ""]

[engine]
ffmpeg_binary = "/opt/ffmpeg/bin/ffmpeg"

[compiler]
strict_media = true

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.WorkDir != filepath.Join(tempHome, "scratch") {
		t.Fatalf("unexpected work dir: %q", cfg.Paths.WorkDir)
	}
	if cfg.Server.Bind != "0.0.0.0:9000" {
		t.Fatalf("unexpected bind: %q", cfg.Server.Bind)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://editor.example" {
		t.Fatalf("expected deduplicated origins, got %v", cfg.Server.CORSOrigins)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", cfg.FFmpegBinary())
	}
	if cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected ffprobe binary: %q", cfg.FFprobeBinary())
	}
	if !cfg.Compiler.StrictMedia {
		t.Fatal("expected strict media from file")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history default to survive partial file")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(configPath, []byte("[server]\nbindd = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestEnvVarsFillBlankValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VIBECUT_API_TOKEN", "  secret  ")
	t.Setenv("VIBECUT_FFMPEG", "/usr/local/bin/ffmpeg")
	t.Setenv("VIBECUT_FFPROBE", "/usr/local/bin/ffprobe")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[engine]\nffmpeg_binary = \"ffmpeg\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.APIToken != "secret" {
		t.Fatalf("expected token from env, got %q", cfg.Server.APIToken)
	}
	if cfg.FFmpegBinary() != "/usr/local/bin/ffmpeg" {
		t.Fatalf("expected ffmpeg from env, got %q", cfg.FFmpegBinary())
	}
	if cfg.FFprobeBinary() != "/usr/local/bin/ffprobe" {
		t.Fatalf("expected ffprobe from env, got %q", cfg.FFprobeBinary())
	}
}

func TestCreateSample(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VIBECUT_API_TOKEN", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded map[string]any
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	for _, section := range []string{"paths", "server", "engine", "compiler", "history", "workspace", "logging"} {
		if _, ok := decoded[section]; !ok {
			t.Fatalf("expected section %q in sample", section)
		}
	}
	if !strings.Contains(string(data), "strict_media") {
		t.Fatal("expected strict_media to be documented in sample")
	}

	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bad bind", func(c *config.Config) { c.Server.Bind = "localhost" }, "server.bind"},
		{"zero upload", func(c *config.Config) { c.Server.MaxUploadMiB = 0 }, "server.max_upload_mib"},
		{"zero tail", func(c *config.Config) { c.Engine.DiagnosticTailBytes = 0 }, "engine.diagnostic_tail_bytes"},
		{"negative threads", func(c *config.Config) { c.Engine.Threads = -1 }, "engine.threads"},
		{"speed floor too large", func(c *config.Config) { c.Compiler.SpeedFloor = 2 }, "compiler.speed_floor"},
		{"zero sample rate", func(c *config.Config) { c.Compiler.AudioSampleRate = 0 }, "compiler.audio_sample_rate"},
		{"negative stale age", func(c *config.Config) { c.Workspace.StaleAfterHours = -1 }, "workspace.stale_after_hours"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, err.Error())
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
