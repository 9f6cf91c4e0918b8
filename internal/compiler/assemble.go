package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"vibecut/internal/services"
	"vibecut/internal/timeline"
)

const audioBitrate = "128k"

// assignInputs deduplicates the uploaded files referenced by admitted clips
// into engine input slots, in first-use order (video clips, then audio
// clips). Every admitted clip must have an uploaded file.
func assignInputs(video, audio []Placement, paths map[string]string) ([]Input, map[string]int, error) {
	var inputs []Input
	byPath := map[string]int{}
	byMedia := map[string]int{}
	for _, list := range [][]Placement{video, audio} {
		for _, p := range list {
			id := p.Media.ID
			if _, done := byMedia[id]; done {
				continue
			}
			path := strings.TrimSpace(paths[id])
			if path == "" {
				return nil, nil, services.Wrap(services.ErrMediaMissing, "compiler", "assign inputs",
					fmt.Sprintf("missing uploaded media for id %s", id), nil)
			}
			idx, seen := byPath[path]
			if !seen {
				idx = len(inputs)
				byPath[path] = idx
				inputs = append(inputs, Input{Index: idx, Path: path})
			}
			inputs[idx].MediaIDs = append(inputs[idx].MediaIDs, id)
			byMedia[id] = idx
		}
	}
	return inputs, byMedia, nil
}

// SelectEncoding picks codec parameters from the output format. Bitrate and
// framerate are passed through verbatim.
func SelectEncoding(settings timeline.Settings) Encoding {
	enc := Encoding{
		Format:       settings.Format,
		ContentType:  settings.Format.ContentType(),
		VideoBitrate: strconv.Itoa(settings.Bitrate) + "k",
		Framerate:    settings.Framerate,
		AudioBitrate: audioBitrate,
	}
	switch settings.Format {
	case timeline.FormatWebM:
		enc.VideoCodec = "libvpx-vp9"
		enc.VideoParams = []string{"-speed", "4", "-row-mt", "1"}
		enc.AudioCodec = "libopus"
	default:
		enc.VideoCodec = "libx264"
		enc.VideoParams = []string{"-preset", "ultrafast", "-tune", "fastdecode", "-movflags", "+faststart"}
		enc.AudioCodec = "aac"
	}
	return enc
}
