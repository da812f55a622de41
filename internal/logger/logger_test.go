package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// captureLog runs fn against a fresh file-backed logger and returns the
// written log content.
func captureLog(t *testing.T, level Level, maxSize int64, fn func(l *DefaultLogger)) string {
	t.Helper()

	logPath := filepath.Join(t.TempDir(), "test.log")
	l, err := NewDefaultLogger(&Config{
		LogFilePath: logPath,
		MaxFileSize: maxSize,
		MaxBackups:  3,
		Level:       level,
	})
	if err != nil {
		t.Fatalf("NewDefaultLogger() error = %v", err)
	}

	fn(l)
	l.Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	return string(content)
}

func TestNewDefaultLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	l, err := NewDefaultLogger(&Config{
		LogFilePath: logPath,
		MaxFileSize: 1024,
		MaxBackups:  3,
		Level:       LevelDebug,
	})
	if err != nil {
		t.Fatalf("NewDefaultLogger() error = %v", err)
	}
	defer l.Close()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
}

func TestLogLevelsAndFields(t *testing.T) {
	content := captureLog(t, LevelDebug, 1024*1024, func(l *DefaultLogger) {
		l.Debug("debug message", String("key", "value"))
		l.Info("info message", Int("count", 42))
		l.Warn("warn message", Bool("flag", true))
		l.Error("error message", errors.New("test error"), Float64("rate", 3.14))
	})

	for _, want := range []string{
		"[DEBUG]", "[INFO]", "[WARN]", "[ERROR]",
		"debug message", "info message", "warn message", "error message",
		"key=value", "count=42", "flag=true", "rate=3.14",
		`error="test error"`,
		"Stack trace:",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log output missing %q", want)
		}
	}
}

func TestLogLevelFiltering(t *testing.T) {
	content := captureLog(t, LevelWarn, 1024*1024, func(l *DefaultLogger) {
		l.Debug("debug message")
		l.Info("info message")
		l.Warn("warn message")
		l.Error("error message", nil)
	})

	if strings.Contains(content, "[DEBUG]") {
		t.Error("debug message should be filtered out")
	}
	if strings.Contains(content, "[INFO]") {
		t.Error("info message should be filtered out")
	}
	if !strings.Contains(content, "[WARN]") {
		t.Error("warn message should be present")
	}
	if !strings.Contains(content, "[ERROR]") {
		t.Error("error message should be present")
	}
}

func TestSetLevel(t *testing.T) {
	content := captureLog(t, LevelDebug, 1024*1024, func(l *DefaultLogger) {
		l.Debug("debug before")
		l.SetLevel(LevelError)
		l.Debug("debug after")
		l.Warn("warn after")
		l.Error("error after", nil)
	})

	if !strings.Contains(content, "debug before") {
		t.Error("debug before level change should be present")
	}
	if strings.Contains(content, "debug after") {
		t.Error("debug after level change should be filtered")
	}
	if strings.Contains(content, "warn after") {
		t.Error("warn after level change should be filtered")
	}
	if !strings.Contains(content, "error after") {
		t.Error("error after level change should be present")
	}
}

func TestLogRotation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	l, err := NewDefaultLogger(&Config{
		LogFilePath: logPath,
		MaxFileSize: 100,
		MaxBackups:  3,
		Level:       LevelDebug,
	})
	if err != nil {
		t.Fatalf("NewDefaultLogger() error = %v", err)
	}

	for i := 0; i < 20; i++ {
		l.Info("this is a test message long enough to trigger log rotation")
	}
	l.Close()

	if _, err := os.Stat(logPath + ".1"); os.IsNotExist(err) {
		t.Error("backup log file was not created after rotation")
	}
}

func TestGlobalLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "global.log")

	if err := Init(&Config{
		LogFilePath: logPath,
		MaxFileSize: 1024 * 1024,
		MaxBackups:  3,
		Level:       LevelDebug,
	}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	Debug("global debug")
	Info("global info")
	Warn("global warn")
	Error("global error", errors.New("global test error"))
	Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	for _, want := range []string{"global debug", "global info", "global warn", "global error"} {
		if !strings.Contains(string(content), want) {
			t.Errorf("log output missing %q", want)
		}
	}
}

func TestNoopLogger(t *testing.T) {
	SetGlobalLogger(nil)

	// Must not panic while uninitialized.
	Debug("test")
	Info("test")
	Warn("test")
	Error("test", nil)

	if GetLogger() == nil {
		t.Error("GetLogger() should return a noop logger, not nil")
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %s, want %s", tt.level, got, tt.want)
		}
	}
}

func TestErrFieldWithNil(t *testing.T) {
	field := Err(nil)
	if field.Key != "error" {
		t.Errorf("Err(nil).Key = %s, want error", field.Key)
	}
	if field.Value != nil {
		t.Errorf("Err(nil).Value = %v, want nil", field.Value)
	}
}

func TestLogDirectoryCreation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "dir", "test.log")

	l, err := NewDefaultLogger(&Config{
		LogFilePath: logPath,
		MaxFileSize: 1024 * 1024,
		MaxBackups:  3,
		Level:       LevelDebug,
	})
	if err != nil {
		t.Fatalf("NewDefaultLogger() with nested directory error = %v", err)
	}
	defer l.Close()

	if _, err := os.Stat(filepath.Dir(logPath)); os.IsNotExist(err) {
		t.Error("nested log directory was not created")
	}
}
