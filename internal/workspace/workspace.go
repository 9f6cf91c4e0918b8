package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"vibecut/internal/logging"
	"vibecut/internal/textutil"
)

// dirPrefix marks directories owned by the workspace manager. Only these
// are swept as stale.
const dirPrefix = "render-"

// Manager creates and sweeps per-render working directories under one root.
type Manager struct {
	root   string
	logger *slog.Logger
}

// NewManager returns a manager rooted at root.
func NewManager(root string, logger *slog.Logger) *Manager {
	return &Manager{root: strings.TrimSpace(root), logger: logging.NewComponentLogger(logger, "workspace")}
}

// Root returns the directory holding render workspaces.
func (m *Manager) Root() string { return m.root }

// Workspace is the scratch directory of one render. It holds the uploaded
// media and the rendered artifact and is removed when the render ends.
type Workspace struct {
	ID  string
	Dir string

	logger *slog.Logger
}

// Create makes a fresh workspace for the render id.
func (m *Manager) Create(id string) (*Workspace, error) {
	if m.root == "" {
		return nil, errors.New("workspace root not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("render id required")
	}
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	dir := filepath.Join(m.root, dirPrefix+textutil.SafeUploadName(id, "render"))
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{ID: id, Dir: dir, logger: m.logger}, nil
}

// UploadPath returns where the upload for mediaID is stored. The file is
// named <media id>_<original name>, both sanitized.
func (w *Workspace) UploadPath(mediaID, filename string) string {
	safeID := textutil.SafeUploadName(mediaID, "media")
	safeName := textutil.SafeUploadName(filename, safeID+".bin")
	return filepath.Join(w.Dir, safeID+"_"+safeName)
}

// OutputPath returns the artifact path for the given container extension.
func (w *Workspace) OutputPath(ext string) string {
	return filepath.Join(w.Dir, "rendered."+strings.TrimPrefix(ext, "."))
}

// Remove deletes the workspace and everything in it. Removing an already
// removed workspace is not an error.
func (w *Workspace) Remove() error {
	if w == nil || w.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(w.Dir); err != nil {
		logging.WarnWithContext(w.logger, "failed to remove render workspace", "workspace_cleanup_failed",
			logging.String("path", w.Dir),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check work_dir permissions"),
			logging.String(logging.FieldImpact, "disk space not reclaimed until the stale sweep"),
		)
		return err
	}
	w.logger.Debug("render workspace removed", logging.String("path", w.Dir))
	return nil
}
