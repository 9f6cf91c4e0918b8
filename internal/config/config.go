package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and database locations.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	LogDir    string `toml:"log_dir"`
	HistoryDB string `toml:"history_db"`
}

// Server contains configuration for the HTTP render service.
type Server struct {
	Bind                   string   `toml:"bind"`
	APIToken               string   `toml:"api_token"`
	CORSOrigins            []string `toml:"cors_origins"`
	MaxUploadMiB           int      `toml:"max_upload_mib"`
	MaxConcurrentRenders   int      `toml:"max_concurrent_renders"`
	ReadTimeoutSeconds     int      `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int      `toml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int      `toml:"shutdown_timeout_seconds"`
}

// Engine contains configuration for the external ffmpeg/ffprobe binaries.
type Engine struct {
	FFmpegBinary        string `toml:"ffmpeg_binary"`
	FFprobeBinary       string `toml:"ffprobe_binary"`
	DiagnosticTailBytes int    `toml:"diagnostic_tail_bytes"`
	ProbeConcurrency    int    `toml:"probe_concurrency"`
	ProbeTimeoutSeconds int    `toml:"probe_timeout_seconds"`
	Threads             int    `toml:"threads"`
}

// Compiler contains the timeline compilation policy and output normalization targets.
type Compiler struct {
	// StrictMedia fails a compilation instead of dropping clips whose media
	// is unknown or lacks the stream kind the track needs.
	StrictMedia        bool    `toml:"strict_media"`
	AudioSampleRate    int     `toml:"audio_sample_rate"`
	AudioChannelLayout string  `toml:"audio_channel_layout"`
	PixelFormat        string  `toml:"pixel_format"`
	FillerColor        string  `toml:"filler_color"`
	SpeedFloor         float64 `toml:"speed_floor"`
}

// History contains configuration for the render history database.
type History struct {
	Enabled       bool `toml:"enabled"`
	RetentionDays int  `toml:"retention_days"`
}

// Workspace contains configuration for per-render scratch directories.
type Workspace struct {
	StaleAfterHours int `toml:"stale_after_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for vibecut.
//
// Configuration sections by subsystem:
//   - Paths: scratch, log, and history locations
//   - Server: HTTP bind address, auth, CORS, upload limits
//   - Engine: ffmpeg/ffprobe binaries and invocation limits
//   - Compiler: clip inclusion policy and normalization targets
//   - History: render history retention
//   - Workspace: stale scratch directory sweeping
//   - Logging: log format, level, and retention
type Config struct {
	Paths     Paths     `toml:"paths"`
	Server    Server    `toml:"server"`
	Engine    Engine    `toml:"engine"`
	Compiler  Compiler  `toml:"compiler"`
	History   History   `toml:"history"`
	Workspace Workspace `toml:"workspace"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vibecut.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the scratch and log directories and the parent
// directory of the history database.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.WorkDir, c.Paths.LogDir}
	if c.History.Enabled && c.Paths.HistoryDB != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.HistoryDB))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used to run execution plans.
func (c *Config) FFmpegBinary() string {
	if c == nil || strings.TrimSpace(c.Engine.FFmpegBinary) == "" {
		return defaultFFmpegBinary
	}
	return c.Engine.FFmpegBinary
}

// FFprobeBinary returns the ffprobe executable used for stream probing.
func (c *Config) FFprobeBinary() string {
	if c == nil || strings.TrimSpace(c.Engine.FFprobeBinary) == "" {
		return defaultFFprobeBinary
	}
	return c.Engine.FFprobeBinary
}

// MaxUploadBytes returns the multipart body limit for render requests.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMiB) << 20
}

// ProbeTimeout returns the per-file ffprobe deadline.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Engine.ProbeTimeoutSeconds) * time.Second
}

// StaleWorkspaceAge returns the age after which leftover render workspaces are removed.
func (c *Config) StaleWorkspaceAge() time.Duration {
	return time.Duration(c.Workspace.StaleAfterHours) * time.Hour
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
