// Package filtergraph models an ffmpeg filter graph as typed chains of
// filters linked by labels, and serializes it to -filter_complex syntax.
//
// Compilers build a Graph from Chain values, drawing link names from a
// per-compilation Labels arena. Escaping happens only in String: option
// values and argument lists are escaped for the option and graph parsers,
// and drawtext callers additionally pass text through EscapeText.
package filtergraph
