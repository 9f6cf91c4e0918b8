package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vibecut/internal/api"
	"vibecut/internal/compiler"
	"vibecut/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show engine dependencies and directory readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := api.Status{
				Version:      compiler.Version,
				ConfigPath:   ctx.configPath,
				Dependencies: api.FromDependencies(preflight.CheckSystemDeps(cfg)),
				Checks:       api.FromChecks(preflight.RunAll(cmd.Context(), cfg)),
			}
			if cfg.History.Enabled {
				report.HistoryPath = cfg.Paths.HistoryDB
			}
			if jsonOutput {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			lines := renderSectionHeader("vibecut", colorize)
			lines = append(lines,
				renderStatusLine("Compiler", statusInfo, report.Version, colorize),
				renderStatusLine("Config", configKind(ctx.configExists), configDetail(ctx.configPath, ctx.configExists), colorize),
				renderStatusLine("History", statusInfo, historyDetail(report.HistoryPath), colorize),
				renderStatusLine("Server", statusInfo, cfg.Server.Bind+" (auth: "+yesNo(cfg.Server.APIToken != "")+")", colorize),
				"",
			)
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			for _, dep := range report.Dependencies {
				detail := dep.Path
				if !dep.Available {
					detail = dep.Detail
				}
				lines = append(lines, renderStatusLine(dep.Name, checkKind(dep.Available, dep.Optional), detail, colorize))
			}
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Checks", colorize)...)
			for _, check := range report.Checks {
				lines = append(lines, renderStatusLine(check.Name, checkKind(check.Passed, false), check.Detail, colorize))
			}
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	return cmd
}

func configKind(exists bool) statusKind {
	return checkKind(exists, true)
}

func configDetail(path string, exists bool) string {
	if exists {
		return path
	}
	return "defaults (no file at " + path + ")"
}

func historyDetail(path string) string {
	if path == "" {
		return "disabled"
	}
	return path
}
