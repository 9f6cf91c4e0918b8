package timeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"vibecut/internal/services"
)

// Wire shapes mirror the editor's JSON documents. Pointer fields distinguish
// absent values from zero so required fields can be enforced.

type projectDoc struct {
	ID         string         `json:"id" yaml:"id"`
	Duration   *float64       `json:"duration" yaml:"duration"`
	MediaFiles []mediaFileDoc `json:"mediaFiles" yaml:"mediaFiles"`
	Tracks     []trackDoc     `json:"tracks" yaml:"tracks"`
}

type mediaFileDoc struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Type     string   `json:"type" yaml:"type"`
	Duration *float64 `json:"duration" yaml:"duration"`
}

type trackDoc struct {
	ID    string    `json:"id" yaml:"id"`
	Type  string    `json:"type" yaml:"type"`
	Clips []clipDoc `json:"clips" yaml:"clips"`
}

type clipDoc struct {
	ID          string          `json:"id" yaml:"id"`
	MediaID     string          `json:"mediaId" yaml:"mediaId"`
	StartTime   *float64        `json:"startTime" yaml:"startTime"`
	TrimStart   *float64        `json:"trimStart" yaml:"trimStart"`
	TrimEnd     *float64        `json:"trimEnd" yaml:"trimEnd"`
	Speed       *float64        `json:"speed" yaml:"speed"`
	Reverse     bool            `json:"reverse" yaml:"reverse"`
	TextOverlay *textOverlayDoc `json:"textOverlay" yaml:"textOverlay"`
}

type textOverlayDoc struct {
	Content  string       `json:"content" yaml:"content"`
	Duration *float64     `json:"duration" yaml:"duration"`
	Style    textStyleDoc `json:"style" yaml:"style"`
}

type textStyleDoc struct {
	Color           string      `json:"color" yaml:"color"`
	FontFamily      string      `json:"fontFamily" yaml:"fontFamily"`
	FontSize        *float64    `json:"fontSize" yaml:"fontSize"`
	Position        positionDoc `json:"position" yaml:"position"`
	Alignment       string      `json:"alignment" yaml:"alignment"`
	BackgroundColor string      `json:"backgroundColor" yaml:"backgroundColor"`
}

type positionDoc struct {
	X *float64 `json:"x" yaml:"x"`
	Y *float64 `json:"y" yaml:"y"`
}

type settingsDoc struct {
	Width     *int   `json:"width" yaml:"width"`
	Height    *int   `json:"height" yaml:"height"`
	Framerate *int   `json:"framerate" yaml:"framerate"`
	Format    string `json:"format" yaml:"format"`
	Bitrate   *int   `json:"bitrate" yaml:"bitrate"`
}

// ParseProject decodes and validates a JSON project document.
func ParseProject(data []byte) (Project, error) {
	var doc projectDoc
	if err := decodeJSON(data, &doc); err != nil {
		return Project{}, malformed("decode project", "invalid JSON payload", err)
	}
	return doc.toProject()
}

// ParseSettings decodes and validates a JSON settings document.
func ParseSettings(data []byte) (Settings, error) {
	var doc settingsDoc
	if err := decodeJSON(data, &doc); err != nil {
		return Settings{}, malformed("decode settings", "invalid JSON payload", err)
	}
	return doc.toSettings()
}

// LoadProjectFile reads a project document from disk. Files ending in .yaml
// or .yml are decoded as YAML, everything else as JSON.
func LoadProjectFile(path string) (Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, malformed("load project", path, err)
	}
	if !isYAML(path) {
		return ParseProject(data)
	}
	var doc projectDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Project{}, malformed("decode project", "invalid YAML payload", err)
	}
	return doc.toProject()
}

// LoadSettingsFile reads a settings document from disk, JSON or YAML by extension.
func LoadSettingsFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, malformed("load settings", path, err)
	}
	if !isYAML(path) {
		return ParseSettings(data)
	}
	var doc settingsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Settings{}, malformed("decode settings", "invalid YAML payload", err)
	}
	return doc.toSettings()
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func decodeJSON(data []byte, dst any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("empty document")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("trailing data after document")
	}
	return nil
}

func malformed(operation, message string, err error) error {
	return services.Wrap(services.ErrInputMalformed, "timeline", operation, message, err)
}
