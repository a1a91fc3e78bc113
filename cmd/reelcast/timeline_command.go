package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelcast/internal/timeline"
)

func newTimelineCommand(ctx *commandContext) *cobra.Command {
	var format string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "timeline STORYBOARD",
		Short: "Show scene placements and total composition length",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sb, err := readStoryboard(args[0])
			if err != nil {
				return err
			}
			chosen, err := resolveFormat(format, sb.Format, cfg.VideoFormat())
			if err != nil {
				return err
			}

			layout := cfg.Timeline().Layout(sb.Scenes, chosen)
			if asJSON {
				return writeJSON(cmd, layout)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderLayout(layout))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Output format override: vertical, square, or landscape")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the layout as JSON")
	return cmd
}

func readStoryboard(path string) (timeline.Storyboard, error) {
	file, err := os.Open(path)
	if err != nil {
		return timeline.Storyboard{}, fmt.Errorf("open storyboard: %w", err)
	}
	defer file.Close()
	return timeline.DecodeStoryboard(file)
}

// resolveFormat prefers the flag, then the storyboard, then configuration.
func resolveFormat(flag string, storyboard, configured timeline.Format) (timeline.Format, error) {
	if flag = strings.ToLower(strings.TrimSpace(flag)); flag != "" {
		format := timeline.Format(flag)
		for _, known := range timeline.Formats() {
			if known == format {
				return format, nil
			}
		}
		return "", fmt.Errorf("unknown format %q (want vertical, square, or landscape)", flag)
	}
	if storyboard != "" {
		return storyboard, nil
	}
	return configured, nil
}

func renderLayout(layout timeline.Layout) string {
	rows := make([][]string, 0, len(layout.Scenes))
	for _, placement := range layout.Scenes {
		audio := "-"
		if placement.HasAudio {
			audio = "yes"
		}
		rows = append(rows, []string{
			strconv.Itoa(placement.Index + 1),
			string(placement.Kind),
			strconv.Itoa(placement.From),
			strconv.Itoa(placement.DurationInFrames),
			formatSeconds(placement.DurationInFrames, layout.FPS),
			audio,
		})
	}
	footer := []string{
		"", "total", "",
		strconv.Itoa(layout.TotalDurationInFrames),
		formatSeconds(layout.TotalDurationInFrames, layout.FPS),
		fmt.Sprintf("%s, %d fps, %d-frame transitions", layout.Format, layout.FPS, layout.TransitionFrames),
	}
	return renderTable(
		[]string{"#", "Kind", "From", "Frames", "Seconds", "Audio"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft},
		footer,
	)
}

func formatSeconds(frames, fps int) string {
	if fps <= 0 {
		return "-"
	}
	return strconv.FormatFloat(float64(frames)/float64(fps), 'f', 2, 64)
}
