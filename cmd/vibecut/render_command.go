package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vibecut/internal/config"
	"vibecut/internal/fileutil"
	"vibecut/internal/render"
)

type renderSummary struct {
	ID          string  `json:"id"`
	Output      string  `json:"output"`
	ContentType string  `json:"contentType"`
	Bytes       int64   `json:"bytes"`
	Duration    float64 `json:"duration"`
	Elapsed     float64 `json:"elapsedSeconds"`
	Inputs      int     `json:"inputs"`
	Dropped     int     `json:"dropped"`
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var (
		projectPath  string
		settingsPath string
		mediaFlags   []string
		outputPath   string
		noProgress   bool
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a timeline locally with media bound from disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.cliLogger(cfg)
			if err != nil {
				return err
			}
			project, settings, err := loadDocuments(projectPath, settingsPath)
			if err != nil {
				return err
			}
			media, err := parseMediaBindings(mediaFlags)
			if err != nil {
				return err
			}

			output := strings.TrimSpace(outputPath)
			if output == "" {
				output = "rendered." + string(settings.Format)
			}
			if output, err = config.ExpandPath(output); err != nil {
				return err
			}
			if output, err = filepath.Abs(output); err != nil {
				return err
			}

			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			progress := newRenderProgress(cmd.ErrOrStderr(), !noProgress && !jsonOutput && shouldColorize(cmd.ErrOrStderr()))
			service := render.NewService(cfg, store, logger)
			result, err := service.Render(cmd.Context(), render.Request{
				Project:    project,
				Settings:   settings,
				LocalMedia: media,
				Progress:   progress.update,
			})
			progress.finish()
			if err != nil {
				return err
			}
			defer func() { _ = result.Cleanup() }()

			if err := fileutil.MoveFile(result.ArtifactPath, output); err != nil {
				return fmt.Errorf("move artifact to %s: %w", output, err)
			}

			summary := renderSummary{
				ID:          result.ID,
				Output:      output,
				ContentType: result.ContentType,
				Bytes:       result.Size,
				Duration:    result.Plan.Duration,
				Elapsed:     result.Elapsed.Seconds(),
				Inputs:      len(result.Plan.Inputs),
				Dropped:     len(result.Plan.Drops),
			}
			if jsonOutput {
				return writeJSON(cmd, summary)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rendered %s (%s, %ss of video) in %s\n",
				output, humanize.IBytes(uint64(result.Size)), seconds(result.Plan.Duration),
				result.Elapsed.Round(100*time.Millisecond))
			if summary.Dropped > 0 {
				fmt.Fprintf(out, "%d clip(s) were dropped; run `vibecut compile` to see why\n", summary.Dropped)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "", "Project document (JSON or YAML)")
	cmd.Flags().StringVarP(&settingsPath, "settings", "s", "", "Settings document (JSON or YAML)")
	cmd.Flags().StringArrayVarP(&mediaFlags, "media", "m", nil, "Bind a media id to a local file (id=path, repeatable)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination of the rendered file (default rendered.<format>)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the render summary as JSON")
	return cmd
}
