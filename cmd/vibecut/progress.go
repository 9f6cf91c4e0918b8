package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"vibecut/internal/engine"
)

// renderProgress draws engine progress as a terminal bar. A nil
// renderProgress ignores updates.
type renderProgress struct {
	bar *progressbar.ProgressBar
}

func newRenderProgress(w io.Writer, enabled bool) *renderProgress {
	if !enabled {
		return nil
	}
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Rendering"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
	)
	return &renderProgress{bar: bar}
}

func (p *renderProgress) update(progress engine.Progress) {
	if p == nil {
		return
	}
	if progress.Speed > 0 {
		p.bar.Describe(fmt.Sprintf("Rendering %4.1fx", progress.Speed))
	}
	_ = p.bar.Set(int(progress.Percent))
}

func (p *renderProgress) finish() {
	if p == nil {
		return
	}
	_ = p.bar.Finish()
}
