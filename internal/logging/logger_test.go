package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelcast/internal/config"
	"reelcast/internal/logging"
	"reelcast/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	var buf bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "nested", "console-info.log")
	logger, err := logging.New(logging.Options{
		Format:  "console",
		Level:   "info",
		Writer:  &buf,
		LogFile: logPath,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if string(content) != buf.String() {
		t.Fatalf("log file and writer diverged: %q vs %q", content, buf.String())
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")
	if !strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", buf.String())
	}
}

func TestConsoleLoggerShowsSubject(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithSceneIndex(services.WithArticle(context.Background(), "why-go"), 0)
	logging.WithContext(ctx, logging.NewComponentLogger(logger, "pipeline")).Info("scene narrated", logging.Int("words", 12))

	line := buf.String()
	for _, fragment := range []string{" INFO  pipeline: ", "[why-go · scene 1]", "scene narrated", "words=12"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
}

func TestJSONLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRequestID(context.Background(), "req-xyz")
	logging.WarnWithContext(logging.WithContext(ctx, logger), "scene audio missing", "scene_degraded")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	checks := map[string]string{
		"level":                    "warn",
		"msg":                      "scene audio missing",
		logging.FieldCorrelationID: "req-xyz",
		logging.FieldEventType:     "scene_degraded",
		logging.FieldErrorHint:     "rerun with --verbose and inspect the preceding log lines",
		logging.FieldImpact:        "narration continued without this step",
	}
	for key, want := range checks {
		if got, _ := record[key].(string); got != want {
			t.Errorf("field %s = %q, want %q", key, got, want)
		}
	}
	if _, ok := record["ts"]; !ok {
		t.Error("expected ts field")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "invalid", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("visible")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "visible") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestFormatSubject(t *testing.T) {
	tests := []struct {
		article, scene, want string
	}{
		{"why-go", "2", "why-go · scene 3"},
		{"why-go", "", "why-go"},
		{"", "0", "scene 1"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := logging.FormatSubject(tt.article, tt.scene); got != tt.want {
			t.Errorf("FormatSubject(%q, %q) = %q, want %q", tt.article, tt.scene, got, tt.want)
		}
	}
}
