package filtergraph

import "strconv"

// Labels hands out unique link labels for one compilation. It is not safe
// for concurrent use; each compilation owns its own instance.
type Labels struct {
	next   map[string]int
	issued map[Label]struct{}
}

// NewLabels returns an empty label arena.
func NewLabels() *Labels {
	return &Labels{next: map[string]int{}, issued: map[Label]struct{}{}}
}

// Next returns prefix followed by the next counter value for that prefix,
// e.g. s0, s1, s2.
func (l *Labels) Next(prefix string) Label {
	for {
		n := l.next[prefix]
		l.next[prefix] = n + 1
		label := Label(prefix + strconv.Itoa(n))
		if _, taken := l.issued[label]; !taken {
			l.issued[label] = struct{}{}
			return label
		}
	}
}

// Named reserves a fixed label such as vout. It reports false if the label
// was already issued.
func (l *Labels) Named(name string) (Label, bool) {
	label := Label(name)
	if _, taken := l.issued[label]; taken {
		return label, false
	}
	l.issued[label] = struct{}{}
	return label, true
}

// Issued returns the number of labels handed out.
func (l *Labels) Issued() int { return len(l.issued) }
