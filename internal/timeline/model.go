package timeline

import "math"

// MediaType is the declared type of an uploaded media file.
type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
	MediaImage MediaType = "image"
	MediaOther MediaType = "other"
)

// TrackType selects which output timeline a track feeds.
type TrackType string

const (
	TrackVideo TrackType = "video"
	TrackAudio TrackType = "audio"
)

// Alignment anchors overlay text horizontally around its x position.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// OutputFormat selects the container and codec family of the rendered artifact.
type OutputFormat string

const (
	FormatMP4  OutputFormat = "mp4"
	FormatWebM OutputFormat = "webm"
)

// Project is an immutable editing timeline submitted for one compilation.
type Project struct {
	ID         string
	Duration   float64
	MediaFiles []MediaFile
	Tracks     []Track
}

// MediaFile describes one uploaded source referenced by clips.
type MediaFile struct {
	ID       string
	Name     string
	Type     MediaType
	Duration float64
}

// Track is an ordered list of clips feeding one timeline type.
type Track struct {
	ID    string
	Type  TrackType
	Clips []Clip
}

// Clip places a window of a media file on the output timeline.
type Clip struct {
	ID        string
	MediaID   string
	StartTime float64
	TrimStart float64
	TrimEnd   float64
	Speed     float64
	Reverse   bool
	Overlay   *TextOverlay
}

// TextOverlay is timed text anchored at its owning clip's start time.
type TextOverlay struct {
	Content  string
	Duration float64
	Style    TextStyle
}

// TextStyle holds the visual attributes of an overlay. Position is
// normalized to the output frame, [0,1] on both axes.
type TextStyle struct {
	Color           string
	FontFamily      string
	FontSize        float64
	X               float64
	Y               float64
	Alignment       Alignment
	BackgroundColor string
}

// Settings are the output parameters of a render.
type Settings struct {
	Width     int
	Height    int
	Framerate int
	Format    OutputFormat
	// Bitrate is the target video bitrate in kbit/s.
	Bitrate int
}

// MediaByID indexes the project's media files by id.
func (p Project) MediaByID() map[string]MediaFile {
	out := make(map[string]MediaFile, len(p.MediaFiles))
	for _, media := range p.MediaFiles {
		out[media.ID] = media
	}
	return out
}

// TracksOfType returns the tracks feeding the given timeline, in input order.
func (p Project) TracksOfType(kind TrackType) []Track {
	var out []Track
	for _, track := range p.Tracks {
		if track.Type == kind {
			out = append(out, track)
		}
	}
	return out
}

// ClipCount returns the number of clips across all tracks.
func (p Project) ClipCount() int {
	n := 0
	for _, track := range p.Tracks {
		n += len(track.Clips)
	}
	return n
}

// FrameDuration returns the length of one output frame in seconds.
func (s Settings) FrameDuration() float64 {
	if s.Framerate <= 0 {
		return 0
	}
	return 1 / float64(s.Framerate)
}

// OutputDuration clamps the project duration to at least one frame.
func (s Settings) OutputDuration(projectDuration float64) float64 {
	return math.Max(projectDuration, s.FrameDuration())
}

// ContentType returns the MIME type of the rendered artifact.
func (f OutputFormat) ContentType() string {
	switch f {
	case FormatWebM:
		return "video/webm"
	default:
		return "video/mp4"
	}
}
