package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vibecut/internal/api"
	"vibecut/internal/render"
)

func newCompileCommand(ctx *commandContext) *cobra.Command {
	var (
		projectPath  string
		settingsPath string
		mediaFlags   []string
		placeholders bool
		outputPath   string
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a timeline and print the engine plan without rendering",
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
			paths, err := parseMediaBindings(mediaFlags)
			if err != nil {
				return err
			}
			if placeholders {
				paths = fillPlaceholders(project, paths)
			}

			service := render.NewService(cfg, nil, logger)
			plan, caps, err := service.Plan(cmd.Context(), render.PlanRequest{
				Project:    project,
				Settings:   settings,
				MediaPaths: paths,
				SkipProbe:  placeholders,
			})
			if err != nil {
				return err
			}

			output := strings.TrimSpace(outputPath)
			if output == "" {
				output = "rendered." + string(settings.Format)
			}
			summary := api.FromPlan(plan, caps, service.Runner().Args(plan, output, false))
			if jsonOutput {
				return writeJSON(cmd, summary)
			}
			printPlan(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "", "Project document (JSON or YAML)")
	cmd.Flags().StringVarP(&settingsPath, "settings", "s", "", "Settings document (JSON or YAML)")
	cmd.Flags().StringArrayVarP(&mediaFlags, "media", "m", nil, "Bind a media id to a local file (id=path, repeatable)")
	cmd.Flags().BoolVar(&placeholders, "placeholder-media", false, "Use placeholder paths for unbound media and skip probing")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path shown in the printed argv")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the plan as JSON")
	return cmd
}

func printPlan(out io.Writer, plan api.PlanSummary) {
	fmt.Fprintf(out, "Compiler %s, duration %ss, %s\n\n", plan.Version, seconds(plan.Duration), plan.ContentType)

	inputRows := make([][]string, 0, len(plan.Inputs))
	for _, in := range plan.Inputs {
		inputRows = append(inputRows, []string{strconv.Itoa(in.Index), strings.Join(in.MediaIDs, ", "), in.Path})
	}
	fmt.Fprintln(out, "Inputs")
	fmt.Fprintln(out, renderTable([]string{"#", "Media", "Path"}, inputRows, []columnAlignment{alignRight}))

	for _, section := range []struct {
		title    string
		segments []api.PlanSegment
	}{{"Video timeline", plan.VideoSegments}, {"Audio timeline", plan.AudioSegments}} {
		if len(section.segments) == 0 {
			continue
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, section.title)
		fmt.Fprintln(out, renderTable(
			[]string{"Label", "Kind", "Start", "End", "Clip", "Input", "Tempo"},
			segmentRows(section.segments),
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignRight},
		))
	}

	if len(plan.Overlays) > 0 {
		rows := make([][]string, 0, len(plan.Overlays))
		for _, ov := range plan.Overlays {
			rows = append(rows, []string{ov.Label, ov.ClipID, seconds(ov.Start), seconds(ov.End), ov.Content})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Overlays")
		fmt.Fprintln(out, renderTable([]string{"Label", "Clip", "Start", "End", "Text"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight}))
	}

	if len(plan.Drops) > 0 {
		rows := make([][]string, 0, len(plan.Drops))
		for _, d := range plan.Drops {
			rows = append(rows, []string{d.ClipID, d.MediaID, d.Track, d.Reason})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Dropped clips")
		fmt.Fprintln(out, renderTable([]string{"Clip", "Media", "Track", "Reason"}, rows, nil))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Filter graph")
	fmt.Fprintln(out, plan.FilterComplex)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Command")
	fmt.Fprintln(out, shellJoin(plan.Args))
}

func segmentRows(segments []api.PlanSegment) [][]string {
	rows := make([][]string, 0, len(segments))
	for _, s := range segments {
		input := "-"
		if s.Input != nil {
			input = strconv.Itoa(*s.Input)
		}
		tempo := make([]string, 0, len(s.Tempo))
		for _, t := range s.Tempo {
			tempo = append(tempo, strconv.FormatFloat(t, 'g', -1, 64))
		}
		clip := s.ClipID
		if clip == "" {
			clip = "-"
		}
		rows = append(rows, []string{s.Label, s.Kind, seconds(s.Start), seconds(s.Start + s.Duration), clip, input, strings.Join(tempo, " x ")})
	}
	return rows
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// shellJoin quotes arguments containing shell metacharacters so the printed
// command can be pasted into a POSIX shell.
func shellJoin(args []string) string {
	quoted := make([]string, 0, len(args))
	for _, arg := range args {
		if arg != "" && !strings.ContainsAny(arg, " \t\n'\"\\$`;&|<>()[]*?!#~=,:") {
			quoted = append(quoted, arg)
			continue
		}
		quoted = append(quoted, "'"+strings.ReplaceAll(arg, "'", `'\''`)+"'")
	}
	return strings.Join(quoted, " ")
}
