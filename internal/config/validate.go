package config

import (
	"errors"
	"fmt"
	"net"
	"sort"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateCompiler(); err != nil {
		return err
	}
	if c.Workspace.StaleAfterHours < 0 {
		return errors.New("workspace.stale_after_hours must be >= 0")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind %q must be host:port: %w", c.Server.Bind, err)
	}
	return ensurePositiveMap(map[string]int{
		"server.max_upload_mib":         c.Server.MaxUploadMiB,
		"server.max_concurrent_renders": c.Server.MaxConcurrentRenders,
		"server.read_timeout_seconds":   c.Server.ReadTimeoutSeconds,
		"server.write_timeout_seconds":  c.Server.WriteTimeoutSeconds,
	})
}

func (c *Config) validateEngine() error {
	if err := ensurePositiveMap(map[string]int{
		"engine.diagnostic_tail_bytes": c.Engine.DiagnosticTailBytes,
		"engine.probe_concurrency":     c.Engine.ProbeConcurrency,
		"engine.probe_timeout_seconds": c.Engine.ProbeTimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Engine.Threads < 0 {
		return errors.New("engine.threads must be >= 0")
	}
	return nil
}

func (c *Config) validateCompiler() error {
	if c.Compiler.AudioSampleRate <= 0 {
		return errors.New("compiler.audio_sample_rate must be positive")
	}
	if c.Compiler.SpeedFloor <= 0 || c.Compiler.SpeedFloor > 1 {
		return errors.New("compiler.speed_floor must be in (0, 1]")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
