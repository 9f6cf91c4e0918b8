package preflight

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"vibecut/internal/config"
	"vibecut/internal/deps"
)

// minFreeBytes is the free space below which the work directory check fails.
const minFreeBytes = 1 << 30

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace reports the space available to unprivileged users on the
// filesystem holding path and fails below minBytes.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := st.Bavail * uint64(st.Bsize)
	detail := fmt.Sprintf("%s free", humanize.IBytes(free))
	if free < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (below %s)", detail, humanize.IBytes(minBytes))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckSystemDeps evaluates the engine binaries for the given config. The
// CLI status command and the server share this list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckAll(deps.EngineRequirements(cfg.FFmpegBinary(), cfg.FFprobeBinary()))
}

// CheckEngineVersion reports the version banner of an engine binary.
func CheckEngineVersion(ctx context.Context, name, binary string) Result {
	line, err := deps.ProbeVersion(ctx, binary)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: deps.ShortVersion(line)}
}
