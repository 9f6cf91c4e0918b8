// Package preflight provides readiness checks for the binaries and
// filesystem paths a render depends on.
//
// These checks run in two contexts:
//   - The server runs RunAll at startup and logs failures without refusing
//     to start, so a missing ffprobe only degrades probing.
//   - The CLI "vibecut status" command and the /health endpoint report the
//     same results for operators.
package preflight
