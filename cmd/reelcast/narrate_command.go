package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelcast/internal/pipeline"
)

func newNarrateCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "narrate STORYBOARD",
		Short: "Synthesize narration audio and captions for every scene",
		Long: "Runs text-to-speech, duration probing, and transcription for each narrated\n" +
			"scene and writes the storyboard with audio references and captions. Scenes\n" +
			"whose engines fail are written without audio and listed in the summary.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			sb, err := readStoryboard(args[0])
			if err != nil {
				return err
			}

			eng, err := prepareEngines(cmd.Context(), cfg, logger, concurrency)
			if err != nil {
				return err
			}
			defer eng.Close()

			enriched, report := eng.narrator.NarrateStoryboard(cmd.Context(), sb)
			if report.Err != nil {
				return report.Err
			}

			summaryOut := cmd.ErrOrStderr()
			if strings.TrimSpace(outPath) == "" {
				if err := writeJSON(cmd, enriched); err != nil {
					return err
				}
			} else {
				if err := writeStoryboardFile(outPath, enriched); err != nil {
					return err
				}
				summaryOut = cmd.OutOrStdout()
				fmt.Fprintf(summaryOut, "Wrote %s\n", outPath)
			}
			printNarrationSummary(summaryOut, report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the enriched storyboard here instead of stdout")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Scenes narrated in parallel (default from config)")
	return cmd
}

func writeStoryboardFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := encodeJSON(file, v); err != nil {
		_ = file.Close()
		return fmt.Errorf("write storyboard: %w", err)
	}
	return file.Close()
}

func printNarrationSummary(w io.Writer, report pipeline.Report) {
	rows := make([][]string, 0, len(report.Scenes))
	for _, scene := range report.Scenes {
		detail := scene.Error
		if detail == "" && scene.Elapsed > 0 {
			detail = scene.Elapsed.Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			strconv.Itoa(scene.Index + 1),
			string(scene.Kind),
			string(scene.Status),
			detail,
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"#", "Kind", "Status", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
		nil,
	))
	fmt.Fprintf(w, "%d narrated, %d cached, %d skipped, %d failed (correlation %s)\n",
		report.Count(pipeline.StatusNarrated),
		report.Count(pipeline.StatusCached),
		report.Count(pipeline.StatusSkipped),
		report.Count(pipeline.StatusFailed),
		report.CorrelationID,
	)
}
