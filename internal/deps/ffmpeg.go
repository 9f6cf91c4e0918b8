package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const versionTimeout = 5 * time.Second

// EngineRequirements lists the binaries a render executes: ffmpeg runs the
// compiled plan and ffprobe resolves stream kinds. ffprobe is optional since
// probing falls back to declared media types.
func EngineRequirements(ffmpegBinary, ffprobeBinary string) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpegBinary,
			Description: "Required to execute render plans",
			ConfigKey:   "engine.ffmpeg_binary",
		},
		{
			Name:        "FFprobe",
			Command:     ffprobeBinary,
			Description: "Detects stream kinds of uploaded media",
			ConfigKey:   "engine.ffprobe_binary",
			Optional:    true,
		},
	}
}

// ProbeVersion runs "<binary> -version" and returns the first output line,
// for example "ffmpeg version 7.1 Copyright ...".
func ProbeVersion(ctx context.Context, binary string) (string, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return "", fmt.Errorf("binary not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, binary, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("%s -version: %w", binary, err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("%s -version: empty output", binary)
}

// ShortVersion trims a version banner to "<name> version <x>".
func ShortVersion(line string) string {
	fields := strings.Fields(line)
	if len(fields) >= 3 && fields[1] == "version" {
		return strings.Join(fields[:3], " ")
	}
	return line
}
