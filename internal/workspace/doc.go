// Package workspace manages the per-render scratch directories that hold
// uploaded media and rendered artifacts, and sweeps the ones a crashed
// process left behind.
package workspace
