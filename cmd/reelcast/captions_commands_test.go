package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"reelcast/internal/captions"
	"reelcast/internal/testsupport"
)

func writeTokens(t *testing.T, dir string, tokens []captions.RawToken) string {
	t.Helper()
	path := filepath.Join(dir, "tokens.json")
	testsupport.WriteJSON(t, path, tokens)
	return path
}

func TestMergeCommandSkipsConfig(t *testing.T) {
	dir := t.TempDir()
	tokens := writeTokens(t, dir, []captions.RawToken{
		{Text: "don", StartMs: 0, EndMs: 100},
		{Text: "'t", StartMs: 100, EndMs: 150},
		{Text: "stop", StartMs: 150, EndMs: 300},
	})

	stdout, _, err := runCLI(t, []string{"merge", "--tokens", tokens}, filepath.Join(dir, "missing", "nope.toml"))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	var merged []captions.MergedToken
	if err := json.Unmarshal([]byte(stdout), &merged); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout)
	}
	want := []captions.MergedToken{
		{Text: "don't", StartMs: 0, EndMs: 150},
		{Text: "stop", StartMs: 150, EndMs: 300},
	}
	if len(merged) != len(want) {
		t.Fatalf("merged = %+v, want %+v", merged, want)
	}
	for i := range want {
		if merged[i] != want[i] {
			t.Fatalf("merged[%d] = %+v, want %+v", i, merged[i], want[i])
		}
	}
}

func TestAlignCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	tokens := writeTokens(t, env.baseDir, []captions.RawToken{
		{Text: "hello", StartMs: 0, EndMs: 400},
		{Text: "world", StartMs: 400, EndMs: 900},
	})

	stdout, _, err := runCLI(t, []string{"align", "--narration", "Hello, world!", "--tokens", tokens}, env.configPath)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	var entries []captions.Entry
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout)
	}
	want := []captions.Entry{
		{Text: "Hello,", StartMs: 0, EndMs: 400},
		{Text: "world!", StartMs: 400, EndMs: 900},
	}
	if len(entries) != len(want) {
		t.Fatalf("entries = %+v, want %+v", entries, want)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Fatalf("entries[%d] = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestAlignCommandSRT(t *testing.T) {
	env := setupCLITestEnv(t)
	tokens := writeTokens(t, env.baseDir, []captions.RawToken{
		{Text: "hello", StartMs: 0, EndMs: 400},
		{Text: "world", StartMs: 400, EndMs: 900},
	})

	stdout, _, err := runCLI(t, []string{"align", "--narration", "hello world", "--tokens", tokens, "--format", "srt"}, env.configPath)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	requireContains(t, stdout, "00:00:00,000 --> ")
	requireContains(t, stdout, "hello world")
}

func TestAlignCommandErrors(t *testing.T) {
	env := setupCLITestEnv(t)
	tokens := writeTokens(t, env.baseDir, []captions.RawToken{{Text: "hi", StartMs: 0, EndMs: 10}})
	badTokens := filepath.Join(env.baseDir, "bad.json")
	testsupport.WriteJSON(t, badTokens, []captions.RawToken{{Text: "hi", StartMs: 50, EndMs: 10}})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing narration", []string{"align", "--tokens", tokens}, "--narration"},
		{"both narration flags", []string{"align", "--narration", "hi", "--narration-file", tokens, "--tokens", tokens}, "narration"},
		{"bad format", []string{"align", "--narration", "hi", "--tokens", tokens, "--format", "vtt"}, "unknown output format"},
		{"inverted span", []string{"align", "--narration", "hi", "--tokens", badTokens}, "invalid span"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args, env.configPath)
			if err == nil {
				t.Fatalf("expected error")
			}
			requireContains(t, err.Error(), tt.want)
		})
	}
}
