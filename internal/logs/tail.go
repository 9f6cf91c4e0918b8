package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"vibecut/internal/logging"
)

const maxLineBytes = 1024 * 1024

// ErrNoLogs reports that the log directory holds no service log yet.
var ErrNoLogs = errors.New("no service log files found")

// Chunk is a batch of complete lines and the offset just past them.
type Chunk struct {
	Lines  []string
	Offset int64
}

// Latest returns the newest daily log file in dir.
func Latest(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, logging.LogFilePattern))
	if err != nil {
		return "", fmt.Errorf("list log files: %w", err)
	}
	if len(matches) == 0 {
		return "", ErrNoLogs
	}
	// Daily names sort chronologically.
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// Tail returns up to limit trailing lines of path. A missing file yields an
// empty chunk at offset 0.
func Tail(path string, limit int) (Chunk, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Chunk{}, nil
		}
		return Chunk{}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return Chunk{}, fmt.Errorf("seek log file: %w", err)
		}
		return Chunk{Offset: end}, nil
	}

	ring := make([]string, 0, limit)
	start := 0
	offset, err := scanLines(file, func(line string) {
		if len(ring) < limit {
			ring = append(ring, line)
			return
		}
		ring[start] = line
		start = (start + 1) % limit
	})
	if err != nil {
		return Chunk{}, err
	}
	lines := append(append([]string(nil), ring[start:]...), ring[:start]...)
	return Chunk{Lines: lines, Offset: offset}, nil
}

// ReadFrom returns the complete lines written after offset. An offset past the
// end of a truncated file restarts from the beginning.
func ReadFrom(path string, offset int64) (Chunk, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Chunk{}, nil
		}
		return Chunk{Offset: offset}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Chunk{Offset: offset}, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return Chunk{Offset: offset}, fmt.Errorf("seek log file: %w", err)
	}

	var lines []string
	consumed, err := scanLines(file, func(line string) { lines = append(lines, line) })
	if err != nil {
		return Chunk{Offset: offset}, err
	}
	return Chunk{Lines: lines, Offset: offset + consumed}, nil
}

// Follow polls path from offset and hands every new line to emit until ctx
// is done. It returns nil on cancellation.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, emit func(string)) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		chunk, err := ReadFrom(path, offset)
		if err != nil {
			return err
		}
		for _, line := range chunk.Lines {
			emit(line)
		}
		offset = chunk.Offset

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// scanLines feeds each newline-terminated line to fn and returns the number
// of bytes consumed. A trailing partial line is left for the next read.
func scanLines(r io.Reader, fn func(string)) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadString('\n')
		if err == nil {
			consumed += int64(len(line))
			text := line[:len(line)-1]
			if len(text) > maxLineBytes {
				text = text[:maxLineBytes]
			}
			fn(trimCR(text))
			continue
		}
		if errors.Is(err, io.EOF) {
			return consumed, nil
		}
		return consumed, fmt.Errorf("read log file: %w", err)
	}
}

func trimCR(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\r' {
		return s[:n-1]
	}
	return s
}
