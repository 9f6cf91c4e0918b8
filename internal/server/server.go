package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/semaphore"

	"vibecut/internal/config"
	"vibecut/internal/history"
	"vibecut/internal/logging"
	"vibecut/internal/render"
)

const lockFileName = "vibecut.lock"

// Server is the HTTP front end of the render service.
type Server struct {
	cfg     *config.Config
	service *render.Service
	history *history.Store
	logger  *slog.Logger
	slots   *semaphore.Weighted
	handler http.Handler

	lockPath string
	lock     *flock.Flock
	listener net.Listener
	server   *http.Server
	running  atomic.Bool
}

// New constructs a server. store may be nil when history is disabled.
func New(cfg *config.Config, service *render.Service, store *history.Store, logger *slog.Logger) (*Server, error) {
	if cfg == nil || service == nil {
		return nil, errors.New("server requires config and render service")
	}
	slots := cfg.Server.MaxConcurrentRenders
	if slots <= 0 {
		slots = 1
	}
	s := &Server{
		cfg:      cfg,
		service:  service,
		history:  store,
		logger:   logging.NewComponentLogger(logger, "server"),
		slots:    semaphore.NewWeighted(int64(slots)),
		lockPath: filepath.Join(cfg.Paths.WorkDir, lockFileName),
	}
	s.lock = flock.New(s.lockPath)
	s.handler = s.routes()
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// LockPath returns the path of the single-instance lock file.
func (s *Server) LockPath() string { return s.lockPath }

// Addr returns the bound listener address, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start acquires the work directory lock, runs startup maintenance, and
// begins serving in the background.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return errors.New("server already running")
	}
	if err := os.MkdirAll(s.cfg.Paths.WorkDir, 0o755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another vibecut server is already using %s", s.cfg.Paths.WorkDir)
	}

	s.Maintain(ctx)

	listener, err := net.Listen("tcp", s.cfg.Server.Bind)
	if err != nil {
		_ = s.lock.Unlock()
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "http server error", "server_error", logging.Error(err))
		}
	}()

	s.running.Store(true)
	s.logger.Info("server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("lock", s.lockPath),
		logging.Bool("auth", s.cfg.Server.APIToken != ""),
		logging.String(logging.FieldEventType, "server_started"),
	)
	return nil
}

// Stop drains in-flight requests and releases the lock.
func (s *Server) Stop() error {
	if !s.running.Load() {
		return nil
	}
	timeout := time.Duration(s.cfg.Server.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	err := s.server.Shutdown(shutdownCtx)

	if unlockErr := s.lock.Unlock(); unlockErr != nil {
		s.logger.Warn("failed to release server lock", logging.Error(unlockErr))
	}
	s.listener = nil
	s.running.Store(false)
	s.logger.Info("server stopped", logging.String(logging.FieldEventType, "server_stopped"))
	return err
}

// Run starts the server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop()
}
