package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"vibecut/internal/config"
	"vibecut/internal/textutil"
	"vibecut/internal/timeline"
)

// parseMediaBindings turns repeated "id=path" flags into a media path map.
// Several ids may name the same file.
func parseMediaBindings(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, value := range values {
		id, path, ok := strings.Cut(value, "=")
		id, path = strings.TrimSpace(id), strings.TrimSpace(path)
		if !ok || id == "" || path == "" {
			return nil, fmt.Errorf("invalid --media %q (expected id=path)", value)
		}
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return nil, fmt.Errorf("resolve --media %s: %w", id, err)
		}
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return nil, fmt.Errorf("resolve --media %s: %w", id, err)
		}
		out[id] = abs
	}
	return out, nil
}

// fillPlaceholders binds every unbound media file to a placeholder path
// named like an uploaded file would be.
func fillPlaceholders(project timeline.Project, paths map[string]string) map[string]string {
	out := make(map[string]string, len(project.MediaFiles))
	for id, path := range paths {
		out[id] = path
	}
	for _, m := range project.MediaFiles {
		if _, ok := out[m.ID]; ok {
			continue
		}
		id := textutil.SafeUploadName(m.ID, "media")
		out[m.ID] = filepath.Join("media", id+"_"+textutil.SafeUploadName(m.Name, "upload.bin"))
	}
	return out
}

func loadDocuments(projectPath, settingsPath string) (timeline.Project, timeline.Settings, error) {
	if strings.TrimSpace(projectPath) == "" {
		return timeline.Project{}, timeline.Settings{}, fmt.Errorf("--project is required")
	}
	if strings.TrimSpace(settingsPath) == "" {
		return timeline.Project{}, timeline.Settings{}, fmt.Errorf("--settings is required")
	}
	project, err := timeline.LoadProjectFile(projectPath)
	if err != nil {
		return timeline.Project{}, timeline.Settings{}, err
	}
	settings, err := timeline.LoadSettingsFile(settingsPath)
	if err != nil {
		return timeline.Project{}, timeline.Settings{}, err
	}
	return project, settings, nil
}
