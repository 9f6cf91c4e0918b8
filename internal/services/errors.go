package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrInputMalformed = errors.New("input malformed")
	ErrEmptyTimeline  = errors.New("empty timeline")
	ErrMediaMissing   = errors.New("media missing")
	ErrEngine         = errors.New("engine failure")
	ErrUnexpected     = errors.New("unexpected failure")
	ErrConfiguration  = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrUnexpected
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsClientError reports whether err was caused by the caller's input rather
// than by the service or the engine.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInputMalformed) ||
		errors.Is(err, ErrEmptyTimeline) ||
		errors.Is(err, ErrMediaMissing)
}

// HTTPStatus maps an error to the response status a transport should report.
func HTTPStatus(err error) int {
	if IsClientError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Kind returns a stable snake_case name for the error's marker.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInputMalformed):
		return "input_malformed"
	case errors.Is(err, ErrEmptyTimeline):
		return "empty_timeline"
	case errors.Is(err, ErrMediaMissing):
		return "media_missing"
	case errors.Is(err, ErrEngine):
		return "engine_failure"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "unexpected"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
