// Package logs reads the daily service log files written under
// paths.log_dir.
//
// Latest picks the newest vibecut-*.log file. Tail returns the last lines of
// a file plus the byte offset to resume from, and Follow polls from an offset
// until its context ends. Memory stays bounded by the requested line count.
package logs
