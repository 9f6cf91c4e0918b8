package capability

import (
	"strings"

	"vibecut/internal/timeline"
)

// Kinds is the set of elementary stream kinds a media file offers.
type Kinds uint8

const (
	Video Kinds = 1 << iota
	Audio
)

// Has reports whether every kind in k is present.
func (s Kinds) Has(k Kinds) bool { return k != 0 && s&k == k }

// Empty reports whether no stream kind is present.
func (s Kinds) Empty() bool { return s == 0 }

func (s Kinds) String() string {
	var parts []string
	if s.Has(Video) {
		parts = append(parts, "video")
	}
	if s.Has(Audio) {
		parts = append(parts, "audio")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// ForTrack returns the stream kind a clip needs to feed a track of the given type.
func ForTrack(kind timeline.TrackType) Kinds {
	if kind == timeline.TrackAudio {
		return Audio
	}
	return Video
}

// Declared returns the single kind implied by a media file's declared type.
// Images contribute a video stream; anything else declares nothing.
func Declared(kind timeline.MediaType) Kinds {
	switch kind {
	case timeline.MediaVideo, timeline.MediaImage:
		return Video
	case timeline.MediaAudio:
		return Audio
	default:
		return 0
	}
}
