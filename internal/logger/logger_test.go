package logger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func fileOnly(t *testing.T, level string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wadglb.log")
	cfg := FileConfig{Path: path, MaxSizeMB: 10, MaxBackups: 1, MaxAgeDays: 1}
	if err := InitWithFileConfig(level, cfg, false); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	t.Cleanup(Reset)
	return path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	Sync()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestLevelsFilterFileOutput(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			path := fileOnly(t, tt.level)

			Debug("sector built", zap.Int("sector", 3))
			Info("level loaded", zap.String("map", "E1M1"))
			Warn("unknown texture", zap.String("name", "NOSUCH"))
			Error("dump failed")

			out := readLog(t, path)
			for _, want := range tt.expected {
				if !strings.Contains(out, want) {
					t.Errorf("expected %s in log output", want)
				}
			}
			for _, skip := range tt.excluded {
				if strings.Contains(out, skip) {
					t.Errorf("unexpected %s in log output at level %s", skip, tt.level)
				}
			}
		})
	}
}

func TestCallerIsLoggingSite(t *testing.T) {
	var buf bytes.Buffer
	saved := console
	console = &buf
	defer func() { console = saved }()

	path := filepath.Join(t.TempDir(), "caller.log")
	if err := InitWithFileConfig("info", FileConfig{Path: path, MaxSizeMB: 1}, true); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	defer Reset()

	Info("textures dumped")
	Sugar.Infof("scene %s written", "E1M1")

	// Both outputs point at this file, not at logger.go.
	for name, out := range map[string]string{"console": buf.String(), "file": readLog(t, path)} {
		if got := strings.Count(out, "logger/logger_test.go:"); got != 2 {
			t.Errorf("%s: expected the caller on both lines, got %d in %q", name, got, out)
		}
		if strings.Contains(out, "logger/logger.go:") {
			t.Errorf("%s: caller points into the logger package: %q", name, out)
		}
	}
}

func TestFileRotation(t *testing.T) {
	dir := t.TempDir()
	cfg := FileConfig{
		Path:       filepath.Join(dir, "wadglb.log"),
		MaxSizeMB:  1,
		MaxBackups: 2,
		MaxAgeDays: 1,
	}
	if err := InitWithFileConfig("info", cfg, false); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	defer Reset()

	// About 1.5MB of lines pushes the file past one rotation.
	payload := strings.Repeat("x", 200)
	for i := 0; i < 6000; i++ {
		Info(fmt.Sprintf("entry %d", i), zap.String("payload", payload))
	}
	Sync()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var rotated []string
	for _, e := range entries {
		if e.Name() != "wadglb.log" && strings.HasPrefix(e.Name(), "wadglb-") {
			rotated = append(rotated, e.Name())
		}
	}
	if len(rotated) == 0 {
		t.Fatalf("no rotated files in %v", entries)
	}
	for _, name := range rotated {
		// wadglb-YYYY-MM-DDTHH-MM-SS.SSS.log
		if !strings.Contains(name, "-20") || !strings.HasSuffix(name, ".log") {
			t.Errorf("rotated file %s lacks the timestamp suffix", name)
		}
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/wadglb.log")

	if cfg.Path != "/tmp/wadglb.log" {
		t.Errorf("expected path /tmp/wadglb.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 20 || cfg.MaxBackups != 3 || cfg.MaxAgeDays != 14 {
		t.Errorf("unexpected rotation settings %+v", cfg)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}

func TestDefaultLoggerIsNoop(t *testing.T) {
	Reset()

	// Must not panic before Init.
	Debug("debug before init")
	Warn("warn before init")
	Sync()

	if Log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("default logger should discard all levels")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"WARN":    zapcore.WarnLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
