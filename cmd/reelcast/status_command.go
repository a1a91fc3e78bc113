package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reelcast/internal/audiocache"
	"reelcast/internal/config"
	"reelcast/internal/deps"
	)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check configuration, engine binaries, and the narration cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			lines := renderSectionHeader("Configuration", colorize)
			lines = append(lines, renderStatusLine("Config", statusInfo, ctx.configPath, colorize))
			lines = append(lines, ttsModelStatusLine(cfg, colorize))
			lines = append(lines, directoryStatusLine("Audio dir", cfg.Paths.AudioDir, colorize))
			lines = append(lines, directoryStatusLine("Cache dir", cfg.Paths.CacheDir, colorize))

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Engines", colorize)...)
			for _, status := range deps.CheckBinaries(engineRequirements(cfg)) {
				lines = append(lines, dependencyStatusLine(status, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Cache", colorize)...)
			lines = append(lines, cacheStatusLine(cmd, cfg, colorize))

			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func engineRequirements(cfg *config.Config) []deps.Requirement {
	reqs := newSynthesizer(cfg).Requirements()
	reqs = append(reqs, newTranscriber(cfg).Requirements()...)
	reqs = append(reqs, deps.Requirement{
		Name:        "ffprobe",
		Command:     cfg.FFprobeBinary(),
		Description: "Measures narration duration",
	})
	return reqs
}

func dependencyStatusLine(status deps.Status, colorize bool) string {
	if status.Available {
		return renderStatusLine(status.Name, statusOK, status.Path, colorize)
	}
	kind := statusError
	if status.Optional {
		kind = statusWarn
	}
	return renderStatusLine(status.Name, kind, status.Detail, colorize)
}

func ttsModelStatusLine(cfg *config.Config, colorize bool) string {
	if err := cfg.RequireTTSModel(); err != nil {
		return renderStatusLine("Voice model", statusError, err.Error(), colorize)
	}
	if _, err := os.Stat(cfg.TTS.Model); err != nil {
		return renderStatusLine("Voice model", statusWarn, fmt.Sprintf("%s not found", cfg.TTS.Model), colorize)
	}
	return renderStatusLine("Voice model", statusOK, cfg.TTS.Model, colorize)
}

func directoryStatusLine(label, path string, colorize bool) string {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		return renderStatusLine(label, statusError, err.Error(), colorize)
	case !info.IsDir():
		return renderStatusLine(label, statusError, path+" is not a directory", colorize)
	default:
		return renderStatusLine(label, statusOK, path, colorize)
	}
}

func cacheStatusLine(cmd *cobra.Command, cfg *config.Config, colorize bool) string {
	if !cfg.Pipeline.CacheEnabled {
		return renderStatusLine("Narrations", statusInfo, "Disabled", colorize)
	}
	store, err := audiocache.Open(cmd.Context(), cfg.CacheDBPath())
	if err != nil {
		return renderStatusLine("Narrations", statusError, err.Error(), colorize)
	}
	defer store.Close()
	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return renderStatusLine("Narrations", statusError, err.Error(), colorize)
	}
	return renderStatusLine("Narrations", statusOK,
		fmt.Sprintf("%d cached (%.1fs of audio)", stats.Entries, stats.TotalSeconds), colorize)
}
