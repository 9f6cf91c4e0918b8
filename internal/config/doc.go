// Package config loads, normalizes, and validates the vibecut TOML
// configuration.
//
// Load resolves the config path (explicit flag, ~/.config/vibecut/config.toml,
// then ./vibecut.toml), overlays the file onto Default(), expands paths,
// applies environment fallbacks (VIBECUT_API_TOKEN, VIBECUT_FFMPEG,
// VIBECUT_FFPROBE), and rejects unusable values. CreateSample writes the
// embedded annotated sample used by `vibecut config init`.
package config
