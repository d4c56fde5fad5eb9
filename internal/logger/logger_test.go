package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// reset puts the package back to its init state after a test.
func reset(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		install(zap.NewNop())
		level.SetLevel(zapcore.InfoLevel)
		console = os.Stdout
	})
}

func TestLogRotation(t *testing.T) {
	reset(t)
	dir := t.TempDir()
	logFile := filepath.Join(dir, "scene.log")

	// 1MB is the smallest size lumberjack rotates at.
	cfg := FileConfig{
		Path:       logFile,
		MaxSizeMB:  1,
		MaxBackups: 2,
		MaxAgeDays: 1,
	}
	if err := InitWithFileConfig("debug", cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	payload := strings.Repeat("x", 200)
	for i := 0; i < 15000; i++ {
		Named("loader").Info("decoded", zap.Int("i", i), zap.String("payload", payload))
	}
	Sync()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read log dir: %v", err)
	}

	var rotated []string
	found := false
	for _, e := range entries {
		switch {
		case e.Name() == "scene.log":
			found = true
		case strings.HasPrefix(e.Name(), "scene-"):
			rotated = append(rotated, e.Name())
		}
	}
	if !found {
		t.Error("active log file missing")
	}
	if len(rotated) == 0 {
		t.Fatalf("expected rotated files, got %v", entries)
	}
	for _, name := range rotated {
		// scene-YYYY-MM-DDTHH-MM-SS.mmm.log
		if !strings.Contains(name, "-20") || !strings.HasSuffix(name, ".log") {
			t.Errorf("rotated file %s lacks a timestamp", name)
		}
	}
}

func TestLogLevels(t *testing.T) {
	reset(t)
	dir := t.TempDir()

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
		{"bogus", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(dir, tt.level+".log")
			if err := InitWithFileConfig(tt.level, FileConfig{Path: logFile, MaxSizeMB: 10}, false); err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("failed to read log file: %v", err)
			}
			out := string(content)
			for _, exp := range tt.expected {
				if !strings.Contains(out, exp) {
					t.Errorf("expected %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(out, exc) {
					t.Errorf("unexpected %s in log output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestConsoleSink(t *testing.T) {
	reset(t)
	var buf bytes.Buffer
	console = &buf

	if err := Init("info", ""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Named("viewer").Info("frame loop started", zap.Int("width", 800))
	Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "viewer") || !strings.Contains(out, "frame loop started") {
		t.Errorf("missing component or message in %q", out)
	}
	if !strings.Contains(out, "width") {
		t.Errorf("missing structured field in %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug entry written at info level")
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/scene.log")
	want := FileConfig{Path: "/tmp/scene.log", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 7, Compress: true}
	if cfg != want {
		t.Errorf("DefaultFileConfig = %+v, want %+v", cfg, want)
	}
}

func TestNopBeforeInit(t *testing.T) {
	if Log == nil || Sugar == nil {
		t.Fatal("expected non-nil default loggers")
	}
	Named("test").Info("discarded")
	Sync()
}

func TestSetLevel(t *testing.T) {
	reset(t)
	logFile := filepath.Join(t.TempDir(), "level.log")
	if err := InitWithFileConfig("info", DefaultFileConfig(logFile), false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	if Enabled("debug") {
		t.Error("debug should be disabled at info level")
	}
	SetLevel("DEBUG")
	if !Enabled("debug") {
		t.Error("debug should be enabled after SetLevel")
	}

	Named("assets").Debug("after level change")
	Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "assets") {
		t.Errorf("expected component name in output, got %q", content)
	}
}
