package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeEngine()
	c.normalizeCompiler()
	c.normalizeLogging()
	if c.History.RetentionDays < 0 {
		c.History.RetentionDays = 0
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	c.Server.APIToken = strings.TrimSpace(c.Server.APIToken)
	if c.Server.APIToken == "" {
		if value, ok := os.LookupEnv("VIBECUT_API_TOKEN"); ok {
			c.Server.APIToken = strings.TrimSpace(value)
		}
	}
	origins := make([]string, 0, len(c.Server.CORSOrigins))
	seen := make(map[string]struct{}, len(c.Server.CORSOrigins))
	for _, origin := range c.Server.CORSOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		if _, ok := seen[origin]; ok {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	c.Server.CORSOrigins = origins
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		c.Server.ShutdownTimeoutSeconds = defaultShutdownTimeoutSeconds
	}
}

func (c *Config) normalizeEngine() {
	if value, ok := os.LookupEnv("VIBECUT_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Engine.FFmpegBinary = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("VIBECUT_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Engine.FFprobeBinary = strings.TrimSpace(value)
	}
	c.Engine.FFmpegBinary = strings.TrimSpace(c.Engine.FFmpegBinary)
	if c.Engine.FFmpegBinary == "" {
		c.Engine.FFmpegBinary = defaultFFmpegBinary
	}
	c.Engine.FFprobeBinary = strings.TrimSpace(c.Engine.FFprobeBinary)
	if c.Engine.FFprobeBinary == "" {
		c.Engine.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Engine.DiagnosticTailBytes == 0 {
		c.Engine.DiagnosticTailBytes = defaultDiagnosticTailBytes
	}
	if c.Engine.ProbeConcurrency == 0 {
		c.Engine.ProbeConcurrency = defaultProbeConcurrency
	}
	if c.Engine.ProbeTimeoutSeconds == 0 {
		c.Engine.ProbeTimeoutSeconds = defaultProbeTimeoutSeconds
	}
}

func (c *Config) normalizeCompiler() {
	c.Compiler.AudioChannelLayout = strings.ToLower(strings.TrimSpace(c.Compiler.AudioChannelLayout))
	if c.Compiler.AudioChannelLayout == "" {
		c.Compiler.AudioChannelLayout = defaultAudioChannelLayout
	}
	c.Compiler.PixelFormat = strings.ToLower(strings.TrimSpace(c.Compiler.PixelFormat))
	if c.Compiler.PixelFormat == "" {
		c.Compiler.PixelFormat = defaultPixelFormat
	}
	c.Compiler.FillerColor = strings.TrimSpace(c.Compiler.FillerColor)
	if c.Compiler.FillerColor == "" {
		c.Compiler.FillerColor = defaultFillerColor
	}
	if c.Compiler.AudioSampleRate == 0 {
		c.Compiler.AudioSampleRate = defaultAudioSampleRate
	}
	if c.Compiler.SpeedFloor == 0 {
		c.Compiler.SpeedFloor = defaultSpeedFloor
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
