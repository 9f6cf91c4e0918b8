package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"vibecut/internal/capability"
	"vibecut/internal/compiler"
	"vibecut/internal/config"
	"vibecut/internal/engine"
	"vibecut/internal/history"
	"vibecut/internal/logging"
	"vibecut/internal/services"
	"vibecut/internal/timeline"
	"vibecut/internal/workspace"
)

// durationDriftTolerance is how far a probed container duration may differ
// from the declared media duration before a warning is logged.
const durationDriftTolerance = 0.5

// Upload is one media file received from a client.
type Upload struct {
	MediaID  string
	Filename string
	Body     io.Reader
}

// Request describes one render.
type Request struct {
	// ID identifies the render; a random id is assigned when empty.
	ID       string
	Project  timeline.Project
	Settings timeline.Settings
	// Uploads are copied into the render workspace.
	Uploads []Upload
	// LocalMedia maps media ids to existing files that are read in place.
	LocalMedia map[string]string
	// Progress receives engine progress when non-nil.
	Progress func(engine.Progress)
}

// Result is a finished render. The artifact lives in the render workspace
// until Cleanup is called.
type Result struct {
	ID           string
	Plan         *compiler.Plan
	Capabilities capability.Map
	ArtifactPath string
	ContentType  string
	Size         int64
	Elapsed      time.Duration

	workspace *workspace.Workspace
}

// Cleanup removes the render workspace, including the artifact.
func (r *Result) Cleanup() error {
	if r == nil {
		return nil
	}
	return r.workspace.Remove()
}

// PlanRequest describes a compilation without execution.
type PlanRequest struct {
	Project    timeline.Project
	Settings   timeline.Settings
	MediaPaths map[string]string
	// SkipProbe resolves stream kinds from declared media types only.
	SkipProbe bool
}

// Service runs the render pipeline: stage uploads, resolve stream kinds,
// compile, execute, and record history.
type Service struct {
	workspaces *workspace.Manager
	resolver   *capability.Resolver
	declared   *capability.Resolver
	compiler   *compiler.Compiler
	runner     *engine.Runner
	history    *history.Store
	logger     *slog.Logger
}

// NewService wires the pipeline from configuration. store may be nil to
// disable history recording.
func NewService(cfg *config.Config, store *history.Store, logger *slog.Logger) *Service {
	prober := capability.FFprobe{Binary: cfg.FFprobeBinary(), Timeout: cfg.ProbeTimeout()}
	return &Service{
		workspaces: workspace.NewManager(cfg.Paths.WorkDir, logger),
		resolver:   capability.NewResolver(prober, cfg.Engine.ProbeConcurrency, logger),
		declared:   capability.NewResolver(nil, 1, logger),
		compiler:   compiler.New(compiler.OptionsFromConfig(cfg), logger),
		runner:     engine.NewRunner(cfg, logger),
		history:    store,
		logger:     logging.NewComponentLogger(logger, "render"),
	}
}

// Workspaces exposes the workspace manager for sweeping and status.
func (s *Service) Workspaces() *workspace.Manager { return s.workspaces }

// Runner exposes the engine runner, used to print argv for dry runs.
func (s *Service) Runner() *engine.Runner { return s.runner }

// Plan resolves stream kinds and compiles a project without running it.
func (s *Service) Plan(ctx context.Context, req PlanRequest) (*compiler.Plan, capability.Map, error) {
	resolver := s.resolver
	if req.SkipProbe {
		resolver = s.declared
	}
	caps := resolver.Resolve(ctx, req.Project.MediaFiles, req.MediaPaths)
	s.warnDurationDrift(logging.WithContext(ctx, s.logger), req.Project, caps)

	plan, err := s.compiler.Compile(ctx, compiler.Request{
		Project:      req.Project,
		Settings:     req.Settings,
		Capabilities: caps,
		MediaPaths:   req.MediaPaths,
	})
	if err != nil {
		return nil, caps, err
	}
	return plan, caps, nil
}

// Render executes a full render. On failure the workspace is already
// removed; on success the caller must call Result.Cleanup once the artifact
// has been consumed.
func (s *Service) Render(ctx context.Context, req Request) (result *Result, err error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}
	ctx = services.WithRenderID(ctx, id)
	logger := logging.WithContext(ctx, s.logger)
	started := time.Now()

	s.recordStart(ctx, logger, id, req)

	ws, err := s.workspaces.Create(id)
	if err != nil {
		err = services.Wrap(services.ErrUnexpected, "render", "create workspace", "", err)
		s.recordFinish(ctx, logger, id, nil, 0, err)
		return nil, err
	}

	var plan *compiler.Plan
	defer func() {
		if err != nil {
			_ = ws.Remove()
			s.recordFinish(ctx, logger, id, plan, 0, err)
		}
	}()

	paths, err := s.stageMedia(ws, req)
	if err != nil {
		return nil, err
	}

	plan, caps, err := s.Plan(ctx, PlanRequest{Project: req.Project, Settings: req.Settings, MediaPaths: paths})
	if err != nil {
		return nil, err
	}

	output := ws.OutputPath(string(req.Settings.Format))
	if err = s.runner.Run(ctx, plan, output, req.Progress); err != nil {
		return nil, err
	}

	info, statErr := os.Stat(output)
	if statErr != nil {
		err = services.Wrap(services.ErrEngine, "render", "stat artifact", "", statErr)
		return nil, err
	}

	result = &Result{
		ID:           id,
		Plan:         plan,
		Capabilities: caps,
		ArtifactPath: output,
		ContentType:  plan.Encoding.ContentType,
		Size:         info.Size(),
		Elapsed:      time.Since(started),
		workspace:    ws,
	}
	s.recordFinish(ctx, logger, id, plan, result.Size, nil)
	logger.Info("render finished",
		logging.Int64("bytes", result.Size),
		logging.Duration("elapsed", result.Elapsed),
		logging.String("content_type", result.ContentType),
		logging.String(logging.FieldEventType, "render_finished"),
	)
	return result, nil
}

// stageMedia writes uploads into the workspace and merges local media
// bindings. Later uploads for the same media id replace earlier ones.
func (s *Service) stageMedia(ws *workspace.Workspace, req Request) (map[string]string, error) {
	paths := make(map[string]string, len(req.Uploads)+len(req.LocalMedia))
	claimed := make(map[string]struct{}, len(req.Uploads))
	for _, upload := range req.Uploads {
		// Distinct ids can sanitize to the same name ("a/b" and "a_b").
		target := ws.UploadPath(upload.MediaID, upload.Filename)
		for n := 2; ; n++ {
			if _, taken := claimed[target]; !taken {
				break
			}
			target = ws.UploadPath(fmt.Sprintf("%s-%d", upload.MediaID, n), upload.Filename)
		}
		claimed[target] = struct{}{}
		if err := writeUpload(target, upload.Body); err != nil {
			return nil, services.Wrap(services.ErrUnexpected, "render", "stage upload",
				fmt.Sprintf("media %s", upload.MediaID), err)
		}
		paths[upload.MediaID] = target
	}
	for id, path := range req.LocalMedia {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			if err == nil {
				err = errors.New("is a directory")
			}
			return nil, services.Wrap(services.ErrMediaMissing, "render", "bind media",
				fmt.Sprintf("media %s at %s", id, path), err)
		}
		paths[id] = path
	}
	return paths, nil
}

func writeUpload(target string, body io.Reader) error {
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if body != nil {
		if _, err := io.Copy(out, body); err != nil {
			_ = out.Close()
			return err
		}
	}
	return out.Close()
}

func (s *Service) warnDurationDrift(logger *slog.Logger, project timeline.Project, caps capability.Map) {
	for _, m := range project.MediaFiles {
		res, ok := caps[m.ID]
		if !ok || res.Source != capability.SourceProbe || res.ProbedDuration <= 0 {
			continue
		}
		if math.Abs(res.ProbedDuration-m.Duration) > durationDriftTolerance {
			logging.WarnWithContext(logger, "declared media duration differs from file", "media_duration_drift",
				logging.String("media_id", m.ID),
				logging.Float64("declared_seconds", m.Duration),
				logging.Float64("probed_seconds", res.ProbedDuration),
				logging.String(logging.FieldErrorHint, "trim windows use the declared duration"),
				logging.String(logging.FieldImpact, "clip may end early or hold its last frame"),
			)
		}
	}
}

func (s *Service) recordStart(ctx context.Context, logger *slog.Logger, id string, req Request) {
	logger.Info("render started",
		logging.Int("clips", req.Project.ClipCount()),
		logging.Int("media", len(req.Project.MediaFiles)),
		logging.String("format", string(req.Settings.Format)),
		logging.String(logging.FieldEventType, "render_started"),
	)
	if s.history == nil {
		return
	}
	if err := s.history.Start(ctx, history.Record{
		ID:              id,
		Format:          string(req.Settings.Format),
		Width:           req.Settings.Width,
		Height:          req.Settings.Height,
		Framerate:       req.Settings.Framerate,
		ClipCount:       req.Project.ClipCount(),
		MediaCount:      len(req.Project.MediaFiles),
		CompilerVersion: compiler.Version,
	}); err != nil {
		logging.WarnWithContext(logger, "failed to record render start", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "render missing from history"),
		)
	}
}

func (s *Service) recordFinish(ctx context.Context, logger *slog.Logger, id string, plan *compiler.Plan, size int64, renderErr error) {
	if renderErr != nil {
		attrs := []logging.Attr{
			logging.String("error_kind", services.Kind(renderErr)),
			logging.Error(renderErr),
		}
		if services.IsClientError(renderErr) {
			logging.WarnWithContext(logger, "render rejected", "render_rejected",
				append(attrs, logging.String(logging.FieldImpact, "no artifact produced"))...)
		} else {
			logging.ErrorWithContext(logger, "render failed", "render_failed", attrs...)
		}
	}
	if s.history == nil {
		return
	}
	outcome := history.Outcome{Status: history.StatusSucceeded, OutputBytes: size}
	if plan != nil {
		outcome.InputCount = len(plan.Inputs)
		outcome.DroppedCount = len(plan.Drops)
		outcome.Duration = plan.Duration
	}
	if renderErr != nil {
		outcome.Status = history.StatusFailed
		outcome.ErrorKind = services.Kind(renderErr)
		outcome.ErrorMessage = renderErr.Error()
		var failure *engine.Failure
		if errors.As(renderErr, &failure) {
			if line := failure.LastLine(); line != "" {
				outcome.ErrorMessage += ": " + line
			}
		}
	}
	// history writes outlive a cancelled request
	if err := s.history.Finish(context.WithoutCancel(ctx), id, outcome); err != nil {
		logging.WarnWithContext(logger, "failed to record render outcome", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "render history incomplete"),
		)
	}
}
