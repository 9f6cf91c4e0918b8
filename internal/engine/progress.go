package engine

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// Progress is one block of ffmpeg -progress output.
type Progress struct {
	Frame   int64
	OutTime time.Duration
	// Speed is the encode speed relative to realtime, 0 if unknown.
	Speed float64
	// Percent is OutTime relative to the plan duration, capped at 100.
	Percent float64
	Done    bool
}

// progressReader folds key=value lines into Progress blocks. ffmpeg ends each
// block with a progress=continue or progress=end line.
type progressReader struct {
	total   time.Duration
	current Progress
}

func newProgressReader(total time.Duration) *progressReader {
	return &progressReader{total: total}
}

// consume parses one line and reports a completed block.
func (r *progressReader) consume(line string) (Progress, bool) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return Progress{}, false
	}
	value = strings.TrimSpace(value)
	switch key {
	case "frame":
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			r.current.Frame = n
		}
	case "out_time_us", "out_time_ms":
		// both keys carry microseconds
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && n >= 0 {
			r.current.OutTime = time.Duration(n) * time.Microsecond
		}
	case "speed":
		if f, err := strconv.ParseFloat(strings.TrimSuffix(value, "x"), 64); err == nil {
			r.current.Speed = f
		}
	case "progress":
		block := r.current
		block.Done = value == "end"
		block.Percent = r.percent(block)
		return block, true
	}
	return Progress{}, false
}

func (r *progressReader) percent(p Progress) float64 {
	if p.Done {
		return 100
	}
	if r.total <= 0 {
		return 0
	}
	pct := float64(p.OutTime) / float64(r.total) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// stream reads progress lines until EOF, invoking fn for each block.
func (r *progressReader) stream(reader io.Reader, fn func(Progress)) error {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		if block, ok := r.consume(scanner.Text()); ok && fn != nil {
			fn(block)
		}
	}
	return scanner.Err()
}
