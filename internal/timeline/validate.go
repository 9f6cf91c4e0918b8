package timeline

import (
	"fmt"
	"math"
	"strings"
)

const (
	defaultOverlayColor    = "white"
	defaultOverlayFontSize = 48
	defaultOverlayX        = 0.5
	defaultOverlayY        = 0.5
	maxFramerate           = 240
	maxDimension           = 8192
)

func (d projectDoc) toProject() (Project, error) {
	if d.Duration == nil {
		return Project{}, invalid("project.duration is required")
	}
	if err := nonNegative("project.duration", *d.Duration); err != nil {
		return Project{}, err
	}
	if d.MediaFiles == nil {
		return Project{}, invalid("project.mediaFiles is required")
	}
	if d.Tracks == nil {
		return Project{}, invalid("project.tracks is required")
	}

	project := Project{
		ID:         strings.TrimSpace(d.ID),
		Duration:   *d.Duration,
		MediaFiles: make([]MediaFile, 0, len(d.MediaFiles)),
		Tracks:     make([]Track, 0, len(d.Tracks)),
	}

	seen := make(map[string]struct{}, len(d.MediaFiles))
	for i, doc := range d.MediaFiles {
		field := fmt.Sprintf("mediaFiles[%d]", i)
		media, err := doc.toMediaFile(field)
		if err != nil {
			return Project{}, err
		}
		if _, dup := seen[media.ID]; dup {
			return Project{}, invalid(fmt.Sprintf("%s.id %q is duplicated", field, media.ID))
		}
		seen[media.ID] = struct{}{}
		project.MediaFiles = append(project.MediaFiles, media)
	}

	for i, doc := range d.Tracks {
		track, err := doc.toTrack(fmt.Sprintf("tracks[%d]", i))
		if err != nil {
			return Project{}, err
		}
		project.Tracks = append(project.Tracks, track)
	}
	return project, nil
}

func (d mediaFileDoc) toMediaFile(field string) (MediaFile, error) {
	id := strings.TrimSpace(d.ID)
	if id == "" {
		return MediaFile{}, invalid(field + ".id is required")
	}
	declared := strings.ToLower(strings.TrimSpace(d.Type))
	if declared == "" {
		return MediaFile{}, invalid(field + ".type is required")
	}
	if d.Duration == nil {
		return MediaFile{}, invalid(field + ".duration is required")
	}
	if err := nonNegative(field+".duration", *d.Duration); err != nil {
		return MediaFile{}, err
	}
	media := MediaFile{ID: id, Name: d.Name, Duration: *d.Duration}
	switch MediaType(declared) {
	case MediaVideo, MediaAudio, MediaImage:
		media.Type = MediaType(declared)
	default:
		media.Type = MediaOther
	}
	return media, nil
}

func (d trackDoc) toTrack(field string) (Track, error) {
	track := Track{ID: d.ID}
	switch TrackType(strings.ToLower(strings.TrimSpace(d.Type))) {
	case TrackVideo:
		track.Type = TrackVideo
	case TrackAudio:
		track.Type = TrackAudio
	default:
		return Track{}, invalid(fmt.Sprintf("%s.type %q must be video or audio", field, d.Type))
	}
	track.Clips = make([]Clip, 0, len(d.Clips))
	for i, doc := range d.Clips {
		clip, err := doc.toClip(fmt.Sprintf("%s.clips[%d]", field, i))
		if err != nil {
			return Track{}, err
		}
		track.Clips = append(track.Clips, clip)
	}
	return track, nil
}

func (d clipDoc) toClip(field string) (Clip, error) {
	clip := Clip{
		ID:      strings.TrimSpace(d.ID),
		MediaID: strings.TrimSpace(d.MediaID),
		Speed:   1,
		Reverse: d.Reverse,
	}
	if clip.ID == "" {
		return Clip{}, invalid(field + ".id is required")
	}
	if clip.MediaID == "" {
		return Clip{}, invalid(field + ".mediaId is required")
	}
	if d.StartTime == nil {
		return Clip{}, invalid(field + ".startTime is required")
	}
	clip.StartTime = *d.StartTime
	if err := nonNegative(field+".startTime", clip.StartTime); err != nil {
		return Clip{}, err
	}
	if d.TrimStart != nil {
		clip.TrimStart = *d.TrimStart
	}
	if err := nonNegative(field+".trimStart", clip.TrimStart); err != nil {
		return Clip{}, err
	}
	if d.TrimEnd != nil {
		clip.TrimEnd = *d.TrimEnd
	}
	if err := nonNegative(field+".trimEnd", clip.TrimEnd); err != nil {
		return Clip{}, err
	}
	// Non-positive speeds are accepted here and clamped to the speed floor
	// during compilation.
	if d.Speed != nil {
		if err := finite(field+".speed", *d.Speed); err != nil {
			return Clip{}, err
		}
		clip.Speed = *d.Speed
	}
	if d.TextOverlay != nil {
		overlay, err := d.TextOverlay.toOverlay(field + ".textOverlay")
		if err != nil {
			return Clip{}, err
		}
		clip.Overlay = &overlay
	}
	return clip, nil
}

func (d textOverlayDoc) toOverlay(field string) (TextOverlay, error) {
	overlay := TextOverlay{
		Content: d.Content,
		Style: TextStyle{
			Color:           strings.TrimSpace(d.Style.Color),
			FontFamily:      strings.TrimSpace(d.Style.FontFamily),
			FontSize:        defaultOverlayFontSize,
			X:               defaultOverlayX,
			Y:               defaultOverlayY,
			Alignment:       AlignCenter,
			BackgroundColor: strings.TrimSpace(d.Style.BackgroundColor),
		},
	}
	if d.Duration == nil {
		return TextOverlay{}, invalid(field + ".duration is required")
	}
	if err := finite(field+".duration", *d.Duration); err != nil {
		return TextOverlay{}, err
	}
	overlay.Duration = *d.Duration
	if overlay.Style.Color == "" {
		overlay.Style.Color = defaultOverlayColor
	}
	if d.Style.FontSize != nil {
		if err := finite(field+".style.fontSize", *d.Style.FontSize); err != nil {
			return TextOverlay{}, err
		}
		if *d.Style.FontSize <= 0 {
			return TextOverlay{}, invalid(field + ".style.fontSize must be positive")
		}
		overlay.Style.FontSize = *d.Style.FontSize
	}
	if d.Style.Position.X != nil {
		overlay.Style.X = *d.Style.Position.X
	}
	if d.Style.Position.Y != nil {
		overlay.Style.Y = *d.Style.Position.Y
	}
	if err := unitInterval(field+".style.position.x", overlay.Style.X); err != nil {
		return TextOverlay{}, err
	}
	if err := unitInterval(field+".style.position.y", overlay.Style.Y); err != nil {
		return TextOverlay{}, err
	}
	switch Alignment(strings.ToLower(strings.TrimSpace(d.Style.Alignment))) {
	case "", AlignCenter:
		overlay.Style.Alignment = AlignCenter
	case AlignLeft:
		overlay.Style.Alignment = AlignLeft
	case AlignRight:
		overlay.Style.Alignment = AlignRight
	default:
		return TextOverlay{}, invalid(fmt.Sprintf("%s.style.alignment %q must be left, center, or right", field, d.Style.Alignment))
	}
	return overlay, nil
}

func (d settingsDoc) toSettings() (Settings, error) {
	if d.Width == nil || d.Height == nil {
		return Settings{}, invalid("settings.width and settings.height are required")
	}
	if d.Framerate == nil {
		return Settings{}, invalid("settings.framerate is required")
	}
	if d.Bitrate == nil {
		return Settings{}, invalid("settings.bitrate is required")
	}
	settings := Settings{
		Width:     *d.Width,
		Height:    *d.Height,
		Framerate: *d.Framerate,
		Bitrate:   *d.Bitrate,
	}
	dims := []struct {
		name  string
		value int
	}{{"settings.width", settings.Width}, {"settings.height", settings.Height}}
	for _, dim := range dims {
		if dim.value <= 0 || dim.value > maxDimension {
			return Settings{}, invalid(fmt.Sprintf("%s must be between 1 and %d", dim.name, maxDimension))
		}
		if dim.value%2 != 0 {
			return Settings{}, invalid(fmt.Sprintf("%s must be even for 4:2:0 output", dim.name))
		}
	}
	if settings.Framerate <= 0 || settings.Framerate > maxFramerate {
		return Settings{}, invalid(fmt.Sprintf("settings.framerate must be between 1 and %d", maxFramerate))
	}
	if settings.Bitrate <= 0 {
		return Settings{}, invalid("settings.bitrate must be positive")
	}
	switch OutputFormat(strings.ToLower(strings.TrimSpace(d.Format))) {
	case FormatMP4:
		settings.Format = FormatMP4
	case FormatWebM:
		settings.Format = FormatWebM
	default:
		return Settings{}, invalid(fmt.Sprintf("settings.format %q must be mp4 or webm", d.Format))
	}
	return settings, nil
}

func finite(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return invalid(field + " must be a finite number")
	}
	return nil
}

func nonNegative(field string, value float64) error {
	if err := finite(field, value); err != nil {
		return err
	}
	if value < 0 {
		return invalid(field + " must be >= 0")
	}
	return nil
}

func unitInterval(field string, value float64) error {
	if err := finite(field, value); err != nil {
		return err
	}
	if value < 0 || value > 1 {
		return invalid(field + " must be within [0, 1]")
	}
	return nil
}

func invalid(message string) error {
	return malformed("validate", message, nil)
}
