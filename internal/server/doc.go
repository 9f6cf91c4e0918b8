// Package server exposes the render pipeline over HTTP.
//
// Routes:
//   - GET  /health            liveness and compiler version, never authenticated
//   - POST /render            multipart render request, responds with the artifact
//   - GET  /api/status        dependency and preflight report
//   - GET  /api/renders       recent render history
//   - GET  /api/renders/{id}  one history record
//
// A POST /render form carries a "project" JSON field, a "settings" JSON
// field, and one "media_<id>" file part per uploaded media file. The render
// workspace is removed once the artifact has been streamed.
//
// The server holds an exclusive file lock on its work directory so two
// instances never sweep each other's workspaces.
package server
