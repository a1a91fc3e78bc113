package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"reelcast/internal/captions"
)

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var narration string
	var narrationFile string
	var tokensFile string
	var format string

	cmd := &cobra.Command{
		Use:   "align",
		Short: "Align narration text to transcription tokens",
		Long: "Merge punctuation and contraction fragments in the token file, then pair every\n" +
			"narration word with a time span. The token file is a JSON array of\n" +
			"{\"text\", \"startMs\", \"endMs\"} objects.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			text, err := resolveNarration(narration, narrationFile)
			if err != nil {
				return err
			}
			raw, err := readTokens(tokensFile)
			if err != nil {
				return err
			}

			entries := cfg.Aligner().Align(text, captions.Merge(raw))
			switch strings.ToLower(strings.TrimSpace(format)) {
			case "", "json":
				return writeJSON(cmd, entries)
			case "srt":
				return captions.WriteSRT(cmd.OutOrStdout(), captions.Paginate(entries, cfg.Captions.PageCombineMs))
			default:
				return fmt.Errorf("unknown output format %q (want json or srt)", format)
			}
		},
	}

	cmd.Flags().StringVar(&narration, "narration", "", "Narration text")
	cmd.Flags().StringVar(&narrationFile, "narration-file", "", "File containing the narration text")
	cmd.Flags().StringVar(&tokensFile, "tokens", "", "JSON file of raw transcription tokens")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or srt")
	_ = cmd.MarkFlagRequired("tokens")
	cmd.MarkFlagsMutuallyExclusive("narration", "narration-file")
	return cmd
}

func newMergeCommand() *cobra.Command {
	var tokensFile string

	cmd := &cobra.Command{
		Use:         "merge",
		Short:       "Fuse punctuation and contraction fragments in transcription tokens",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readTokens(tokensFile)
			if err != nil {
				return err
			}
			return writeJSON(cmd, captions.Merge(raw))
		},
	}

	cmd.Flags().StringVar(&tokensFile, "tokens", "", "JSON file of raw transcription tokens")
	_ = cmd.MarkFlagRequired("tokens")
	return cmd
}

func resolveNarration(text, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		if strings.TrimSpace(text) == "" {
			return "", errors.New("provide --narration or --narration-file")
		}
		return text, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read narration: %w", err)
	}
	return string(data), nil
}

func readTokens(path string) ([]captions.RawToken, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tokens: %w", err)
	}
	var tokens []captions.RawToken
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("parse tokens %s: %w", path, err)
	}
	for i, token := range tokens {
		if token.StartMs < 0 || token.EndMs < token.StartMs {
			return nil, fmt.Errorf("token %d (%q) has invalid span %d-%d", i, token.Text, token.StartMs, token.EndMs)
		}
	}
	return tokens, nil
}
