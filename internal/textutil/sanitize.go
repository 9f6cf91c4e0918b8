package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxUploadNameBytes caps sanitized upload names well below common
// filesystem limits.
const maxUploadNameBytes = 128

// SafeUploadName makes a client-supplied filename safe to join under a
// workspace directory. Letters, digits, '.', '_' and '-' are kept; every
// other rune becomes '_'. Names consisting only of dots (".", "..") and
// empty names yield fallback.
func SafeUploadName(name, fallback string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		if b.Len() >= maxUploadNameBytes {
			break
		}
	}
	out := b.String()
	if strings.Trim(out, ".") == "" {
		return fallback
	}
	return out
}
