package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

var statusStyles = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

const statusLabelWidth = 20

// checkKind maps a dependency or preflight outcome to a status kind.
// Optional failures only warn.
func checkKind(passed, optional bool) statusKind {
	switch {
	case passed:
		return statusOK
	case optional:
		return statusWarn
	default:
		return statusError
	}
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style := statusStyles[kind]
	line := fmt.Sprintf("  %-*s [%s]", statusLabelWidth, label+":", style.label)
	if message != "" {
		line += " " + message
	}
	if colorize {
		return style.color + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	title = strings.TrimSpace(title)
	rule := strings.Repeat("─", len([]rune(title)))
	if colorize {
		color := statusStyles[statusInfo].color
		return []string{color + title + ansiReset, color + rule + ansiReset}
	}
	return []string{title, rule}
}

// shouldColorize reports whether w is an interactive terminal.
func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
