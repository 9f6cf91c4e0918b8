package capability

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"vibecut/internal/logging"
	"vibecut/internal/timeline"
)

// Source records where a media file's stream kinds came from.
type Source string

const (
	SourceProbe    Source = "probe"
	SourceDeclared Source = "declared"
)

// Resolution is the resolved capability of one media file.
type Resolution struct {
	MediaID string
	Path    string
	Kinds   Kinds
	Source  Source
	// Reason explains a declared-type fallback.
	Reason string
	// ProbedDuration is the container duration ffprobe reported, 0 if unknown.
	ProbedDuration float64
}

// Map holds resolutions keyed by media id.
type Map map[string]Resolution

// Kinds returns the resolved kinds for a media id and whether it was resolved.
func (m Map) Kinds(mediaID string) (Kinds, bool) {
	res, ok := m[mediaID]
	return res.Kinds, ok
}

// Sorted returns the resolutions ordered by media id.
func (m Map) Sorted() []Resolution {
	out := make([]Resolution, 0, len(m))
	for _, res := range m {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MediaID < out[j].MediaID })
	return out
}

// Resolver maps media files to the stream kinds they offer.
type Resolver struct {
	prober      Prober
	concurrency int
	logger      *slog.Logger
}

// NewResolver constructs a resolver probing at most concurrency files at once.
func NewResolver(prober Prober, concurrency int, logger *slog.Logger) *Resolver {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Resolver{
		prober:      prober,
		concurrency: concurrency,
		logger:      logging.NewComponentLogger(logger, "capability"),
	}
}

// Resolve probes every distinct uploaded file once and resolves each media
// file's stream kinds. Media without an uploaded path, or whose probe result
// is unknown, fall back to their declared type. Probe failures never surface
// as errors.
func (r *Resolver) Resolve(ctx context.Context, media []timeline.MediaFile, paths map[string]string) Map {
	logger := logging.WithContext(ctx, r.logger)

	distinct := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, m := range media {
		path := strings.TrimSpace(paths[m.ID])
		if path == "" {
			continue
		}
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		distinct = append(distinct, path)
	}

	results := make([]Result, len(distinct))
	if r.prober != nil && len(distinct) > 0 {
		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(r.concurrency)
		for i, path := range distinct {
			group.Go(func() error {
				results[i] = r.prober.Probe(groupCtx, path)
				return nil
			})
		}
		_ = group.Wait()
	}
	byPath := make(map[string]Result, len(distinct))
	for i, path := range distinct {
		byPath[path] = results[i]
	}

	out := make(Map, len(media))
	for _, m := range media {
		path := strings.TrimSpace(paths[m.ID])
		res := Resolution{MediaID: m.ID, Path: path}
		probed, ok := byPath[path]
		switch {
		case path == "":
			res.Kinds, res.Source, res.Reason = Declared(m.Type), SourceDeclared, "no uploaded file"
		case r.prober == nil:
			res.Kinds, res.Source, res.Reason = Declared(m.Type), SourceDeclared, "probing disabled"
		case ok && probed.Known:
			res.Kinds, res.Source, res.ProbedDuration = probed.Kinds, SourceProbe, probed.Duration
		default:
			res.Kinds, res.Source, res.Reason = Declared(m.Type), SourceDeclared, probed.Reason
			logger.Info("probe returned no stream information; using declared type",
				logging.Args(append(logging.DecisionAttrs("stream_capability", res.Kinds.String(), probed.Reason),
					logging.String("media_id", m.ID),
					logging.String("declared_type", string(m.Type)),
					logging.String(logging.FieldEventType, "probe_fallback"),
				)...)...)
		}
		out[m.ID] = res
	}
	return out
}
