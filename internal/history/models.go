package history

import "time"

// Status is the lifecycle state of a render.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Record is one render as stored in the history database.
type Record struct {
	ID              string
	Status          Status
	Format          string
	Width           int
	Height          int
	Framerate       int
	ClipCount       int
	MediaCount      int
	InputCount      int
	DroppedCount    int
	Duration        float64
	CompilerVersion string
	OutputBytes     int64
	ErrorKind       string
	ErrorMessage    string
	CreatedAt       time.Time
	FinishedAt      *time.Time
}

// Elapsed returns the wall time of a finished render, 0 while running.
func (r Record) Elapsed() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.CreatedAt)
}

// Outcome carries the fields known once a render ends.
type Outcome struct {
	Status       Status
	InputCount   int
	DroppedCount int
	Duration     float64
	OutputBytes  int64
	ErrorKind    string
	ErrorMessage string
}
