package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vibecut/internal/api"
	"vibecut/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history [render-id]",
		Short: "List recent renders or show one render",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("render history is disabled (history.enabled = false)")
			}
			defer store.Close()

			if len(args) == 1 {
				rec, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if rec == nil {
					return fmt.Errorf("render %s not found", args[0])
				}
				if jsonOutput {
					return writeJSON(cmd, api.FromRecord(rec))
				}
				printRecord(cmd, rec)
				return nil
			}

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, api.RenderListResponse{Renders: api.FromRecords(records)})
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No renders recorded")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					shortID(rec.ID),
					string(rec.Status),
					rec.Format,
					fmt.Sprintf("%dx%d@%d", rec.Width, rec.Height, rec.Framerate),
					strconv.Itoa(rec.ClipCount),
					seconds(rec.Duration),
					sizeOrDash(rec.OutputBytes),
					humanize.Time(rec.CreatedAt),
					rec.ErrorKind,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Status", "Format", "Output", "Clips", "Seconds", "Size", "Started", "Error"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of renders to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print records as JSON")
	return cmd
}

func printRecord(cmd *cobra.Command, rec *history.Record) {
	rows := [][]string{
		{"ID", rec.ID},
		{"Status", string(rec.Status)},
		{"Output", fmt.Sprintf("%s %dx%d @ %d fps", rec.Format, rec.Width, rec.Height, rec.Framerate)},
		{"Clips / media / inputs", fmt.Sprintf("%d / %d / %d", rec.ClipCount, rec.MediaCount, rec.InputCount)},
		{"Dropped clips", strconv.Itoa(rec.DroppedCount)},
		{"Duration", seconds(rec.Duration) + "s"},
		{"Size", sizeOrDash(rec.OutputBytes)},
		{"Compiler", rec.CompilerVersion},
		{"Started", rec.CreatedAt.Local().Format(time.DateTime)},
	}
	if rec.FinishedAt != nil {
		rows = append(rows, []string{"Elapsed", rec.Elapsed().Round(time.Millisecond).String()})
	}
	if rec.ErrorKind != "" {
		rows = append(rows, []string{"Error", rec.ErrorKind + ": " + rec.ErrorMessage})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
}

func shortID(id string) string {
	if len(id) > 8 && strings.Count(id, "-") == 4 {
		return id[:8]
	}
	return id
}

func sizeOrDash(n int64) string {
	if n <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(n))
}
