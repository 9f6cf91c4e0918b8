package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Health is the body of the liveness endpoint.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Error is the body of every failed request.
type Error struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Render describes a history record in a transport-friendly format.
type Render struct {
	ID              string  `json:"id"`
	Status          string  `json:"status"`
	Format          string  `json:"format"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	Framerate       int     `json:"framerate"`
	ClipCount       int     `json:"clipCount"`
	MediaCount      int     `json:"mediaCount"`
	InputCount      int     `json:"inputCount"`
	DroppedCount    int     `json:"droppedCount"`
	Duration        float64 `json:"duration"`
	CompilerVersion string  `json:"compilerVersion"`
	OutputBytes     int64   `json:"outputBytes"`
	ErrorKind       string  `json:"errorKind,omitempty"`
	ErrorMessage    string  `json:"errorMessage,omitempty"`
	CreatedAt       string  `json:"createdAt,omitempty"`
	FinishedAt      string  `json:"finishedAt,omitempty"`
	ElapsedSeconds  float64 `json:"elapsedSeconds,omitempty"`
}

// RenderListResponse wraps a collection of renders.
type RenderListResponse struct {
	Renders []Render `json:"renders"`
}

// PlanInput is one engine input slot.
type PlanInput struct {
	Index    int      `json:"index"`
	Path     string   `json:"path"`
	MediaIDs []string `json:"mediaIds"`
}

// PlanSegment is one labeled unit of a compiled timeline.
type PlanSegment struct {
	Label    string    `json:"label"`
	Kind     string    `json:"kind"`
	Start    float64   `json:"start"`
	Duration float64   `json:"duration"`
	ClipID   string    `json:"clipId,omitempty"`
	MediaID  string    `json:"mediaId,omitempty"`
	Input    *int      `json:"input,omitempty"`
	Tempo    []float64 `json:"tempo,omitempty"`
}

// PlanOverlay is one stamped text overlay.
type PlanOverlay struct {
	Label   string  `json:"label"`
	ClipID  string  `json:"clipId"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Content string  `json:"content"`
}

// PlanDrop is one clip excluded from a timeline.
type PlanDrop struct {
	ClipID  string `json:"clipId"`
	MediaID string `json:"mediaId"`
	Track   string `json:"track"`
	Reason  string `json:"reason"`
}

// MediaCapability reports how a media file's stream kinds were resolved.
type MediaCapability struct {
	MediaID string `json:"mediaId"`
	Kinds   string `json:"kinds"`
	Source  string `json:"source"`
	Reason  string `json:"reason,omitempty"`
}

// PlanSummary is the dry-run view of a compiled plan.
type PlanSummary struct {
	Version       string            `json:"version"`
	Duration      float64           `json:"duration"`
	ContentType   string            `json:"contentType"`
	FilterComplex string            `json:"filterComplex"`
	Args          []string          `json:"args,omitempty"`
	Inputs        []PlanInput       `json:"inputs"`
	VideoSegments []PlanSegment     `json:"videoSegments"`
	AudioSegments []PlanSegment     `json:"audioSegments"`
	Overlays      []PlanOverlay     `json:"overlays"`
	Drops         []PlanDrop        `json:"drops"`
	Media         []MediaCapability `json:"media"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Path        string `json:"path,omitempty"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// CheckResult mirrors a preflight check.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Status aggregates readiness information for operators.
type Status struct {
	Version      string             `json:"version"`
	ConfigPath   string             `json:"configPath,omitempty"`
	HistoryPath  string             `json:"historyPath,omitempty"`
	Dependencies []DependencyStatus `json:"dependencies"`
	Checks       []CheckResult      `json:"checks"`
}
