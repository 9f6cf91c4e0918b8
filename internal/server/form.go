package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"

	"vibecut/internal/render"
	"vibecut/internal/services"
	"vibecut/internal/timeline"
)

const (
	mediaFieldPrefix = "media_"
	// formMemoryBytes is the in-memory share of a multipart form; larger
	// file parts spill to temporary files.
	formMemoryBytes = 32 << 20
)

type renderForm struct {
	project  timeline.Project
	settings timeline.Settings
	uploads  []render.Upload

	files []multipart.File
	form  *multipart.Form
}

// parseRenderForm reads the project, settings, and media parts of a render
// request. The caller must call cleanup once the uploads are consumed.
func parseRenderForm(r *http.Request, maxBytes int64) (*renderForm, error) {
	if err := r.ParseMultipartForm(formMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, services.Wrap(services.ErrInputMalformed, "server", "parse form",
				fmt.Sprintf("request exceeds %d MiB", maxBytes>>20), err)
		}
		return nil, services.Wrap(services.ErrInputMalformed, "server", "parse form", "expected multipart/form-data", err)
	}
	out := &renderForm{form: r.MultipartForm}

	projectRaw := formValue(out.form, "project")
	if projectRaw == "" {
		out.cleanup()
		return nil, services.Wrap(services.ErrInputMalformed, "server", "parse form", "missing project field", nil)
	}
	project, err := timeline.ParseProject([]byte(projectRaw))
	if err != nil {
		out.cleanup()
		return nil, err
	}
	settingsRaw := formValue(out.form, "settings")
	if settingsRaw == "" {
		out.cleanup()
		return nil, services.Wrap(services.ErrInputMalformed, "server", "parse form", "missing settings field", nil)
	}
	settings, err := timeline.ParseSettings([]byte(settingsRaw))
	if err != nil {
		out.cleanup()
		return nil, err
	}
	out.project, out.settings = project, settings

	keys := make([]string, 0, len(out.form.File))
	for key := range out.form.File {
		if strings.HasPrefix(key, mediaFieldPrefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		id := strings.TrimPrefix(key, mediaFieldPrefix)
		headers := out.form.File[key]
		if id == "" || len(headers) == 0 {
			continue
		}
		header := headers[0]
		file, err := header.Open()
		if err != nil {
			out.cleanup()
			return nil, services.Wrap(services.ErrUnexpected, "server", "open upload", "media "+id, err)
		}
		out.files = append(out.files, file)
		out.uploads = append(out.uploads, render.Upload{MediaID: id, Filename: header.Filename, Body: file})
	}
	return out, nil
}

func (f *renderForm) cleanup() {
	for _, file := range f.files {
		_ = file.Close()
	}
	f.files = nil
	if f.form != nil {
		_ = f.form.RemoveAll()
	}
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}
