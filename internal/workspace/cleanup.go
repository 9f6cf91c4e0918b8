package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vibecut/internal/logging"
)

// CleanStaleResult contains the outcome of a stale workspace sweep.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes render workspaces older than maxAge. Workspaces are
// normally removed when their render ends; leftovers come from crashes.
func (m *Manager) CleanStale(ctx context.Context, maxAge time.Duration) CleanStaleResult {
	result := CleanStaleResult{}
	if m.root == "" || maxAge <= 0 {
		return result
	}

	entries, err := os.ReadDir(m.root)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: m.root, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), dirPrefix) {
			continue
		}

		dirPath := filepath.Join(m.root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			m.logger.Warn("failed to remove stale render workspace",
				logging.String("path", dirPath),
				logging.Error(err),
				logging.String(logging.FieldEventType, "workspace_cleanup_failed"),
				logging.String(logging.FieldErrorHint, "check work_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		m.logger.Info("removed stale render workspace",
			logging.String("path", dirPath),
			logging.Duration("age", time.Since(info.ModTime())),
			logging.String(logging.FieldEventType, "workspace_cleanup"),
		)
	}
	return result
}

// DirInfo contains metadata about a render workspace.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// List returns the render workspaces currently on disk.
func (m *Manager) List() ([]DirInfo, error) {
	if m.root == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), dirPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirPath := filepath.Join(m.root, entry.Name())
		size, _ := dirSize(dirPath)
		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    dirPath,
			ModTime: info.ModTime(),
			Size:    size,
		})
	}
	return dirs, nil
}

// dirSize calculates the total size of a directory recursively.
func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // best effort
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
