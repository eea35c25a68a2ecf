package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMapLevelToZapLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    LogLevel
		expected string
	}{
		{"debug level", LevelDebug, "debug"},
		{"info level", LevelInfo, "info"},
		{"progress level", LevelProgress, "info"},
		{"minimal level", LevelMinimal, "warn"},
		{"warn level", LevelWarn, "warn"},
		{"error level", LevelError, "error"},
		{"unknown level defaults to info", LogLevel("unknown"), "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zapLevel := mapLevelToZapLevel(tt.level)
			if zapLevel.String() != tt.expected {
				t.Errorf("mapLevelToZapLevel() = %v, want %v", zapLevel.String(), tt.expected)
			}
		})
	}
}

func TestInitWithConfig(t *testing.T) {
	Reset()
	defer Reset()

	levels := []LogLevel{
		LevelDebug,
		LevelInfo,
		LevelProgress,
		LevelMinimal,
		LevelWarn,
		LevelError,
	}

	for _, level := range levels {
		t.Run(string(level), func(t *testing.T) {
			Reset()
			var buf bytes.Buffer
			cfg := Config{
				Level:  level,
				Format: "console",
				Output: &buf,
			}
			if err := Init(cfg); err != nil {
				t.Errorf("Init() error = %v", err)
			}

			if Get() == nil {
				t.Error("Get() returned nil logger")
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	if err := Init(Config{Level: LevelWarn, Format: "console", Output: &buf}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	Debug("hidden debug")
	Info("hidden info")
	Warn("visible warning", "command", "CHECK")
	_ = Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output contains filtered entries: %q", out)
	}
	if !strings.Contains(out, "visible warning") || !strings.Contains(out, "CHECK") {
		t.Errorf("output missing warning entry: %q", out)
	}
	if Enabled(LevelDebug) {
		t.Error("Enabled(debug) = true at warn level")
	}
	if !Enabled(LevelError) {
		t.Error("Enabled(error) = false at warn level")
	}
}

func TestJSONFormat(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	if err := Init(Config{Level: LevelInfo, Format: "json", Output: &buf}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	Info("session started", "session", "abc")
	_ = Sync()

	out := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, `"session":"abc"`) {
		t.Errorf("json output = %q", out)
	}
}

func TestInitWithFile(t *testing.T) {
	Reset()
	defer Reset()

	path := filepath.Join(t.TempDir(), "helper.log")
	if err := Init(Config{Level: LevelInfo, Format: "console", File: path}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	Info("written to file")
	_ = Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file content = %q", string(data))
	}
}

func TestInitWithUnwritableFile(t *testing.T) {
	Reset()
	defer Reset()

	path := filepath.Join(t.TempDir(), "missing", "helper.log")
	if err := Init(Config{Level: LevelInfo, File: path}); err == nil {
		t.Error("Init() expected error for missing log directory")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != LevelProgress {
		t.Errorf("DefaultConfig().Level = %v, want %v", cfg.Level, LevelProgress)
	}
	if cfg.Format != "console" {
		t.Errorf("DefaultConfig().Format = %v, want %v", cfg.Format, "console")
	}
}

func TestGetInitializesDefaultLogger(t *testing.T) {
	Reset()
	defer Reset()

	logger := Get()
	if logger == nil {
		t.Error("Get() returned nil logger")
	}

	if logger != Get() {
		t.Error("Get() returned different logger instances")
	}
}

func TestWith(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	if err := Init(Config{Level: LevelDebug, Format: "console", Output: &buf}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	logger := With("key", "value")
	if logger == nil {
		t.Fatal("With() returned nil logger")
	}
	logger.Infow("scoped")
	_ = Sync()
	if !strings.Contains(buf.String(), "value") {
		t.Errorf("With() fields missing from output: %q", buf.String())
	}
}
