package services_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"vibecut/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrEngine, "engine", "run", "ffmpeg exited", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrEngine) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"engine", "run", "ffmpeg exited"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrUnexpected) {
		t.Fatalf("expected unexpected marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		marker error
		status int
		kind   string
	}{
		{services.ErrInputMalformed, http.StatusBadRequest, "input_malformed"},
		{services.ErrEmptyTimeline, http.StatusBadRequest, "empty_timeline"},
		{services.ErrMediaMissing, http.StatusBadRequest, "media_missing"},
		{services.ErrEngine, http.StatusInternalServerError, "engine_failure"},
		{services.ErrUnexpected, http.StatusInternalServerError, "unexpected"},
		{services.ErrConfiguration, http.StatusInternalServerError, "configuration"},
	}
	for _, tt := range tests {
		err := services.Wrap(tt.marker, "compiler", "compile", "failed", nil)
		if got := services.HTTPStatus(err); got != tt.status {
			t.Fatalf("%v: expected status %d, got %d", tt.marker, tt.status, got)
		}
		if got := services.Kind(err); got != tt.kind {
			t.Fatalf("%v: expected kind %q, got %q", tt.marker, tt.kind, got)
		}
	}
	if got := services.HTTPStatus(errors.New("plain")); got != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unmarked error, got %d", got)
	}
}
