package engine

import "unicode/utf8"

// tailBuffer is an io.Writer that retains only the last limit bytes written.
type tailBuffer struct {
	limit int
	buf   []byte
	total int64
}

func newTailBuffer(limit int) *tailBuffer {
	if limit <= 0 {
		limit = defaultTailBytes
	}
	return &tailBuffer{limit: limit, buf: make([]byte, 0, limit)}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	t.total += int64(n)
	if n >= t.limit {
		t.buf = append(t.buf[:0], p[n-t.limit:]...)
		return n, nil
	}
	if overflow := len(t.buf) + n - t.limit; overflow > 0 {
		t.buf = append(t.buf[:0], t.buf[overflow:]...)
	}
	t.buf = append(t.buf, p...)
	return n, nil
}

// String returns the retained bytes, starting at a rune boundary.
func (t *tailBuffer) String() string {
	b := t.buf
	if t.total > int64(len(b)) {
		for len(b) > 0 && !utf8.RuneStart(b[0]) {
			b = b[1:]
		}
	}
	return string(b)
}

// Truncated reports whether output was discarded.
func (t *tailBuffer) Truncated() bool {
	return t.total > int64(len(t.buf))
}
