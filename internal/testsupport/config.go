package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"vibecut/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "history.db")
	cfgVal.Server.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIToken sets the bearer token required by the HTTP server.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.APIToken = token
	}
}

// WithStrictMedia enables strict media handling in the compiler.
func WithStrictMedia() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Compiler.StrictMedia = true
	}
}

// WithHistoryDisabled turns off render history recording.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithFFmpegScript installs a shell script as the ffmpeg binary.
func WithFFmpegScript(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Engine.FFmpegBinary = WriteScript(b.t, filepath.Join(b.baseDir, "bin"), "ffmpeg", body)
	}
}

// WithFFprobeScript installs a shell script as the ffprobe binary.
func WithFFprobeScript(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Engine.FFprobeBinary = WriteScript(b.t, filepath.Join(b.baseDir, "bin"), "ffprobe", body)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "stubs")
		for _, name := range names {
			WriteScript(b.t, binDir, name, "exit 0\n")
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// WriteScript writes an executable /bin/sh script named name into dir and
// returns its path.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
