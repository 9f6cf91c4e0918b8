package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"vibecut/internal/api"
	"vibecut/internal/compiler"
	"vibecut/internal/config"
	"vibecut/internal/history"
	"vibecut/internal/logging"
	"vibecut/internal/render"
	"vibecut/internal/testsupport"
)

const (
	probeScript = `echo '{"streams":[{"index":0,"codec_type":"video"},{"index":1,"codec_type":"audio"}],"format":{"duration":"2.0"}}'
`
	okFFmpeg = `for last; do :; done
case "$1" in -version) echo 'ffmpeg version 7.1 test'; exit 0 ;; esac
printf 'artifact-bytes' > "$last"
`
	projectJSON = `{"id":"p1","duration":2,
"mediaFiles":[{"id":"m1","name":"clip.mp4","type":"video","duration":2}],
"tracks":[{"id":"v1","type":"video","clips":[{"id":"c1","mediaId":"m1","startTime":0}]},
{"id":"a1","type":"audio","clips":[{"id":"c2","mediaId":"m1","startTime":0}]}]}`
	settingsJSON = `{"width":640,"height":360,"framerate":30,"format":"mp4","bitrate":1500}`
)

type harness struct {
	cfg    *config.Config
	store  *history.Store
	server *Server
}

func newHarness(t *testing.T, ffmpeg string, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	opts = append([]testsupport.ConfigOption{
		testsupport.WithFFmpegScript(ffmpeg),
		testsupport.WithFFprobeScript(probeScript),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	logger := logging.NewNop()
	srv, err := New(cfg, render.NewService(cfg, store, logger), store, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &harness{cfg: cfg, store: store, server: srv}
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(w, req)
	return w
}

type part struct {
	field    string
	filename string
	content  string
}

func multipartRequest(t *testing.T, parts ...part) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		if p.filename == "" {
			if err := mw.WriteField(p.field, p.content); err != nil {
				t.Fatalf("write field: %v", err)
			}
			continue
		}
		fw, err := mw.CreateFormFile(p.field, p.filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte(p.content)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/render", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func renderParts() []part {
	return []part{
		{field: "project", content: projectJSON},
		{field: "settings", content: settingsJSON},
		{field: "media_m1", filename: "my clip.mp4", content: "source-bytes"},
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.Error {
	t.Helper()
	var body api.Error
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body
}

func workspaceDirs(t *testing.T, cfg *config.Config) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(cfg.Paths.WorkDir, "render-*"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return matches
}

func TestHealthSkipsAuth(t *testing.T) {
	h := newHarness(t, okFFmpeg, testsupport.WithAPIToken("secret"))

	w := h.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body api.Health
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Version != compiler.Version {
		t.Fatalf("unexpected health %+v", body)
	}
}

func TestRenderStreamsArtifact(t *testing.T) {
	h := newHarness(t, okFFmpeg)

	w := h.do(multipartRequest(t, renderParts()...))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "video/mp4" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="rendered.mp4"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if w.Body.String() != "artifact-bytes" {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
	if dirs := workspaceDirs(t, h.cfg); len(dirs) != 0 {
		t.Fatalf("workspace not removed after streaming: %v", dirs)
	}

	id := w.Header().Get("X-Render-ID")
	rec, err := h.store.Get(context.Background(), id)
	if err != nil || rec == nil {
		t.Fatalf("history missing render %q: %v", id, err)
	}
	if rec.Status != history.StatusSucceeded || rec.OutputBytes != int64(len("artifact-bytes")) || rec.InputCount != 1 {
		t.Fatalf("unexpected history record %+v", rec)
	}
}

func TestRenderEngineFailureReturnsTail(t *testing.T) {
	h := newHarness(t, "echo 'noise' >&2\necho 'Unknown encoder libx264' >&2\nexit 1\n")

	w := h.do(multipartRequest(t, renderParts()...))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := decodeError(t, w)
	if !strings.HasPrefix(body.Error, "FFmpeg failed:\n") || !strings.Contains(body.Error, "Unknown encoder libx264") {
		t.Fatalf("unexpected error body %q", body.Error)
	}
	if body.Kind != "engine_failure" {
		t.Fatalf("unexpected kind %q", body.Kind)
	}
	if dirs := workspaceDirs(t, h.cfg); len(dirs) != 0 {
		t.Fatalf("workspace not removed after failure: %v", dirs)
	}
}

func TestRenderLogsCancelledSlotWait(t *testing.T) {
	h := newHarness(t, okFFmpeg)
	var logs bytes.Buffer
	h.server.logger = slog.New(slog.NewTextHandler(&logs, nil))
	for h.server.slots.TryAcquire(1) {
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := h.do(multipartRequest(t, renderParts()...).WithContext(ctx))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(logs.String(), "render cancelled while waiting for a slot") ||
		!strings.Contains(logs.String(), "event_type=render_slot_wait_cancelled") {
		t.Fatalf("cancelled wait not logged:\n%s", logs.String())
	}
	records, err := h.store.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("render must not start, got %d history records", len(records))
	}
}

func TestRenderClientErrors(t *testing.T) {
	emptyProject := `{"duration":2,"mediaFiles":[],"tracks":[]}`
	cases := []struct {
		name  string
		parts []part
		kind  string
	}{
		{"missing project", []part{{field: "settings", content: settingsJSON}}, "input_malformed"},
		{"bad project json", []part{{field: "project", content: "{"}, {field: "settings", content: settingsJSON}}, "input_malformed"},
		{"odd width", []part{{field: "project", content: projectJSON}, {field: "settings", content: strings.Replace(settingsJSON, "640", "641", 1)}}, "input_malformed"},
		{"missing upload", []part{{field: "project", content: projectJSON}, {field: "settings", content: settingsJSON}}, "media_missing"},
		{"empty timeline", []part{{field: "project", content: emptyProject}, {field: "settings", content: settingsJSON}}, "empty_timeline"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, okFFmpeg)
			w := h.do(multipartRequest(t, tc.parts...))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if body := decodeError(t, w); body.Kind != tc.kind {
				t.Fatalf("expected kind %q, got %+v", tc.kind, body)
			}
		})
	}
}

func TestRenderRejectsNonMultipartAndWrongMethod(t *testing.T) {
	h := newHarness(t, okFFmpeg)

	req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	if w := h.do(req); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for JSON body, got %d", w.Code)
	}
	if w := h.do(httptest.NewRequest(http.MethodGet, "/render", nil)); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestBearerAuth(t *testing.T) {
	h := newHarness(t, okFFmpeg, testsupport.WithAPIToken("secret"))

	if w := h.do(multipartRequest(t, renderParts()...)); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/renders", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	if w := h.do(req); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/renders", nil)
	req.Header.Set("Authorization", "Bearer secret")
	if w := h.do(req); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", w.Code)
	}
}

func TestCORS(t *testing.T) {
	h := newHarness(t, okFFmpeg, testsupport.WithAPIToken("secret"))

	preflight := httptest.NewRequest(http.MethodOptions, "/render", nil)
	preflight.Header.Set("Origin", "http://localhost:5173")
	preflight.Header.Set("Access-Control-Request-Method", "POST")
	w := h.do(preflight)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("unexpected allow origin %q", got)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Authorization") {
		t.Fatalf("authorization header must be allowed")
	}
}

func TestCORSRestrictedOrigins(t *testing.T) {
	h := newHarness(t, okFFmpeg)
	h.cfg.Server.CORSOrigins = []string{"https://editor.example"}
	srv, err := New(h.cfg, render.NewService(h.cfg, nil, logging.NewNop()), nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for origin, want := range map[string]string{"https://editor.example": "https://editor.example", "https://evil.example": ""} {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != want {
			t.Fatalf("origin %s: expected %q, got %q", origin, want, got)
		}
	}
}

func TestRequestID(t *testing.T) {
	h := newHarness(t, okFFmpeg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "client-abc")
	if got := h.do(req).Header().Get("X-Request-ID"); got != "client-abc" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
	generated := h.do(httptest.NewRequest(http.MethodGet, "/health", nil)).Header().Get("X-Request-ID")
	if _, err := uuid.Parse(generated); err != nil {
		t.Fatalf("expected generated uuid, got %q", generated)
	}
}

func TestRecoverReturnsUnexpected(t *testing.T) {
	h := newHarness(t, okFFmpeg)
	handler := h.server.withRecover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if body := decodeError(t, w); body.Kind != "unexpected" || !strings.Contains(body.Error, "boom") {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestRenderHistoryEndpoints(t *testing.T) {
	h := newHarness(t, okFFmpeg)
	ctx := context.Background()
	for _, id := range []string{"r-old", "r-new"} {
		if err := h.store.Start(ctx, history.Record{ID: id, Format: "mp4"}); err != nil {
			t.Fatalf("Start: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	if err := h.store.Finish(ctx, "r-old", history.Outcome{Status: history.StatusFailed, ErrorKind: "engine_failure"}); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	w := h.do(httptest.NewRequest(http.MethodGet, "/api/renders?limit=1", nil))
	var list api.RenderListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Renders) != 1 || list.Renders[0].ID != "r-new" || list.Renders[0].Status != "running" {
		t.Fatalf("unexpected list %+v", list.Renders)
	}

	w = h.do(httptest.NewRequest(http.MethodGet, "/api/renders/r-old", nil))
	var item api.Render
	if err := json.Unmarshal(w.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode item: %v", err)
	}
	if item.Status != "failed" || item.ErrorKind != "engine_failure" || item.FinishedAt == "" {
		t.Fatalf("unexpected item %+v", item)
	}

	if w := h.do(httptest.NewRequest(http.MethodGet, "/api/renders/missing", nil)); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := h.do(httptest.NewRequest(http.MethodGet, "/api/renders?limit=zero", nil)); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", w.Code)
	}
}

func TestStatusReportsEngine(t *testing.T) {
	h := newHarness(t, okFFmpeg)
	if err := h.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	w := h.do(httptest.NewRequest(http.MethodGet, "/api/status", nil))
	var status api.Status
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Version != compiler.Version || status.HistoryPath == "" {
		t.Fatalf("unexpected status %+v", status)
	}
	if len(status.Dependencies) != 2 || !status.Dependencies[0].Available {
		t.Fatalf("unexpected dependencies %+v", status.Dependencies)
	}
	found := false
	for _, check := range status.Checks {
		if check.Name == "FFmpeg" {
			found = check.Passed && check.Detail == "ffmpeg version 7.1"
		}
	}
	if !found {
		t.Fatalf("expected passing ffmpeg check, got %+v", status.Checks)
	}
}

func TestStartHoldsLockAndRunsMaintenance(t *testing.T) {
	h := newHarness(t, okFFmpeg)
	ctx := context.Background()

	stale := filepath.Join(h.cfg.Paths.WorkDir, "render-stale")
	if err := os.MkdirAll(stale, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := h.store.Start(ctx, history.Record{ID: "crashed", Format: "mp4"}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := h.server.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = h.server.Stop() })
	if h.server.Addr() == "" {
		t.Fatalf("expected bound address")
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale workspace not swept")
	}
	if rec, _ := h.store.Get(ctx, "crashed"); rec == nil || rec.Status != history.StatusFailed {
		t.Fatalf("abandoned render not closed: %+v", rec)
	}

	resp, err := http.Get("http://" + h.server.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from live server, got %d", resp.StatusCode)
	}

	second, err := New(h.cfg, render.NewService(h.cfg, nil, logging.NewNop()), nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		_ = second.Stop()
		t.Fatalf("expected second server to fail on the work directory lock")
	}
}
