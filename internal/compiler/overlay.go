package compiler

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	fg "vibecut/internal/filtergraph"
	"vibecut/internal/logging"
	"vibecut/internal/timeline"
)

// Overlay is a text overlay anchored on the output timeline.
type Overlay struct {
	ClipID  string
	Start   float64
	End     float64
	Content string
	Style   timeline.TextStyle
	// Label is the output of the overlay's stamp stage once composed.
	Label fg.Label
}

// collectOverlays gathers one overlay per clip that declares one, across all
// tracks, ordered by start time with input order breaking ties. Overlays
// with empty content or a non-positive window are skipped.
func collectOverlays(logger *slog.Logger, project timeline.Project) []Overlay {
	var overlays []Overlay
	for _, track := range project.Tracks {
		for _, clip := range track.Clips {
			if clip.Overlay == nil {
				continue
			}
			start := clip.StartTime
			end := start + clip.Overlay.Duration
			content := norm.NFC.String(clip.Overlay.Content)
			switch {
			case content == "":
				logger.Debug("overlay skipped", logging.String("clip_id", clip.ID), logging.String("reason", "empty content"))
				continue
			case end <= start:
				logger.Debug("overlay skipped", logging.String("clip_id", clip.ID), logging.String("reason", "empty window"))
				continue
			}
			overlays = append(overlays, Overlay{
				ClipID:  clip.ID,
				Start:   start,
				End:     end,
				Content: content,
				Style:   clip.Overlay.Style,
			})
		}
	}
	sort.SliceStable(overlays, func(i, j int) bool { return overlays[i].Start < overlays[j].Start })
	return overlays
}

// composeOverlays folds the overlays over base, each stamp stage reading the
// previous stage's output. The last stage writes final. It returns the
// overlays with their stage labels filled in.
func composeOverlays(graph *fg.Graph, labels *fg.Labels, base, final fg.Label, overlays []Overlay) []Overlay {
	out := make([]Overlay, len(overlays))
	prev := base
	for i, overlay := range overlays {
		label := final
		if i < len(overlays)-1 {
			label = labels.Next("ov")
		}
		graph.Add(fg.Chain{
			Inputs:  []fg.Pad{fg.Link(prev)},
			Filters: []fg.Filter{drawtext(overlay)},
			Output:  label,
		})
		overlay.Label = label
		out[i] = overlay
		prev = label
	}
	return out
}

func drawtext(o Overlay) fg.Filter {
	style := o.Style
	args := []fg.Arg{
		fg.KV("text", fg.EscapeText(o.Content)),
		fg.KV("fontcolor", style.Color),
		fg.KV("fontsize", fg.Ratio(style.FontSize)),
	}
	if family := strings.TrimSpace(style.FontFamily); family != "" {
		args = append(args, fg.KV("font", family))
	}
	args = append(args,
		fg.KV("x", horizontalExpr(style.Alignment, style.X)),
		fg.KV("y", "h*"+fg.Ratio(style.Y)+"-text_h/2"),
	)
	if bg := strings.TrimSpace(style.BackgroundColor); bg != "" {
		args = append(args,
			fg.KV("box", "1"),
			fg.KV("boxcolor", bg),
			fg.KV("boxborderw", strconv.Itoa(boxBorder(style.FontSize))),
		)
	}
	args = append(args, fg.KV("enable", "between(t,"+fg.Seconds(o.Start)+","+fg.Seconds(o.End)+")"))
	return fg.New("drawtext", args...)
}

func horizontalExpr(align timeline.Alignment, x float64) string {
	base := "w*" + fg.Ratio(x)
	switch align {
	case timeline.AlignLeft:
		return base
	case timeline.AlignRight:
		return base + "-text_w"
	default:
		return base + "-text_w/2"
	}
}

func boxBorder(fontSize float64) int {
	border := int(fontSize / 4)
	if border < 2 {
		return 2
	}
	return border
}
