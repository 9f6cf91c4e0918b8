package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"vibecut/internal/compiler"
	"vibecut/internal/config"
	"vibecut/internal/logging"
	"vibecut/internal/services"
)

const defaultTailBytes = 4000

// Failure describes an engine run that exited non-zero or produced no
// artifact. Tail holds the last bytes of ffmpeg's stderr.
type Failure struct {
	ExitCode  int
	Tail      string
	Truncated bool
	Err       error
}

func (f *Failure) Error() string {
	if f.ExitCode > 0 {
		return fmt.Sprintf("ffmpeg exited with status %d", f.ExitCode)
	}
	if f.Err != nil {
		return "ffmpeg failed: " + f.Err.Error()
	}
	return "ffmpeg failed"
}

// LastLine returns the final non-empty line of the stderr tail.
func (f *Failure) LastLine() string {
	return lastLine(f.Tail)
}

// Unwrap exposes both the engine marker and the underlying cause.
func (f *Failure) Unwrap() []error {
	if f.Err == nil {
		return []error{services.ErrEngine}
	}
	return []error{services.ErrEngine, f.Err}
}

// Runner executes compiled plans with the ffmpeg CLI.
type Runner struct {
	binary    string
	tailBytes int
	threads   int
	logger    *slog.Logger
}

// NewRunner constructs a Runner from the [engine] config section.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{
		binary:    cfg.FFmpegBinary(),
		tailBytes: cfg.Engine.DiagnosticTailBytes,
		threads:   cfg.Engine.Threads,
		logger:    logging.NewComponentLogger(logger, "engine"),
	}
}

// Args returns the full argv, binary first, that Run would execute.
func (r *Runner) Args(plan *compiler.Plan, output string, progress bool) []string {
	return append([]string{r.binary}, BuildArgs(plan, output, ArgOptions{Threads: r.threads, Progress: progress})...)
}

// Run executes plan, writing the artifact to output. onProgress, when
// non-nil, receives -progress blocks as ffmpeg reports them. Run blocks until
// ffmpeg exits; cancellation is left to ctx.
func (r *Runner) Run(ctx context.Context, plan *compiler.Plan, output string, onProgress func(Progress)) error {
	if plan == nil {
		return services.Wrap(services.ErrUnexpected, "engine", "run", "nil plan", nil)
	}
	logger := logging.WithContext(ctx, r.logger)
	argv := r.Args(plan, output, true)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec
	stderr := newTailBuffer(r.tailBytes)
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return services.Wrap(services.ErrUnexpected, "engine", "stdout pipe", "", err)
	}

	logger.Info("engine started",
		logging.String("binary", argv[0]),
		logging.Int("inputs", len(plan.Inputs)),
		logging.Int("filter_chains", plan.Graph.Len()),
		logging.String("output", output),
		logging.String(logging.FieldEventType, "engine_started"),
	)
	logger.Debug("engine argv", logging.Any("args", argv[1:]))

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return &Failure{Err: fmt.Errorf("start %s: %w", argv[0], err)}
	}

	sampler := logging.NewProgressSampler(0)
	reader := newProgressReader(time.Duration(plan.Duration * float64(time.Second)))
	scanErr := reader.stream(stdout, func(p Progress) {
		if sampler.ShouldLog(p.Percent) {
			logger.Info("engine progress",
				logging.Float64("percent", roundTenth(p.Percent)),
				logging.Duration("out_time", p.OutTime),
				logging.Float64("speed", p.Speed),
			)
		}
		if onProgress != nil {
			onProgress(p)
		}
	})
	if scanErr != nil {
		_, _ = io.Copy(io.Discard, stdout)
	}
	waitErr := cmd.Wait()
	elapsed := time.Since(started)

	if waitErr != nil {
		failure := &Failure{Tail: stderr.String(), Truncated: stderr.Truncated(), Err: waitErr}
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			failure.ExitCode = exitErr.ExitCode()
		}
		logging.ErrorWithContext(logger, "engine failed", "engine_failed",
			logging.Int("exit_code", failure.ExitCode),
			logging.Duration("elapsed", elapsed),
			logging.String("stderr_last_line", failure.LastLine()),
			logging.String(logging.FieldErrorHint, "inspect the stderr tail returned with the error"),
			logging.Error(waitErr),
		)
		return failure
	}

	info, err := os.Stat(output)
	if err != nil || info.Size() == 0 {
		if err == nil {
			err = errors.New("empty output file")
		}
		logging.ErrorWithContext(logger, "engine produced no artifact", "engine_no_output",
			logging.String("output", output),
			logging.Error(err),
		)
		return &Failure{Tail: stderr.String(), Truncated: stderr.Truncated(), Err: fmt.Errorf("no output artifact: %w", err)}
	}

	logger.Info("engine finished",
		logging.Duration("elapsed", elapsed),
		logging.Int64("output_bytes", info.Size()),
		logging.String(logging.FieldEventType, "engine_finished"),
	)
	return nil
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func lastLine(s string) string {
	s = strings.TrimRight(s, "\r\n ")
	if idx := strings.LastIndexAny(s, "\r\n"); idx >= 0 {
		return s[idx+1:]
	}
	return s
}
