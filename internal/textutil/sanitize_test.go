package textutil

import (
	"strings"
	"testing"
)

func TestSafeUploadName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"clip.mp4", "clip.mp4"},
		{"my clip (final).mov", "my_clip__final_.mov"},
		{"../../etc/passwd", ".._.._etc_passwd"},
		{"..", "fallback.bin"},
		{"", "fallback.bin"},
		{"  spaced.wav  ", "spaced.wav"},
		{"café-ü.mp3", "café-ü.mp3"},
		{"a:b;c'd", "a_b_c_d"},
	}
	for _, tc := range cases {
		if got := SafeUploadName(tc.in, "fallback.bin"); got != tc.want {
			t.Errorf("SafeUploadName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSafeUploadNameNeverContainsSeparators(t *testing.T) {
	got := SafeUploadName(`a/b\c`+strings.Repeat("x", 400), "f")
	if strings.ContainsAny(got, `/\`) {
		t.Fatalf("separator survived: %q", got)
	}
	if len(got) > maxUploadNameBytes+4 {
		t.Fatalf("name not capped: %d bytes", len(got))
	}
}
