// Package main hosts the vibecut CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the HTTP render service, compiles
// timelines into engine plans for inspection, renders locally with media
// bound from disk, and reports history and dependency status. It centralizes
// configuration resolution and logger setup so subcommands can focus on
// presentation.
//
// Keep this package lean: new behavior belongs in the internal packages and
// is surfaced here through dedicated commands or flags.
package main
