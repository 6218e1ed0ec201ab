package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestSetupLogger_LevelMapping(t *testing.T) {
	tests := []struct {
		level     string
		wantLevel slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{" Warn ", slog.LevelWarn},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := SetupLogger(&LogConfig{Level: tt.level, Format: "text"})
			if err != nil {
				t.Fatalf("SetupLogger error: %v", err)
			}
			defer log.Close()

			if !log.Enabled(context.TODO(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > slog.LevelDebug && log.Enabled(context.TODO(), tt.wantLevel-1) {
				t.Errorf("expected level %v to be disabled", tt.wantLevel-1)
			}
		})
	}
}

func TestSetupLogger_NilConfig(t *testing.T) {
	if _, err := SetupLogger(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestSetupLogger_ConsoleAndFile(t *testing.T) {
	log, err := SetupLogger(&LogConfig{
		Level:    "info",
		Format:   "json",
		Color:    boolPtr(false),
		FilePath: filepath.Join(t.TempDir(), "admin.log"),
	})
	if err != nil {
		t.Fatalf("SetupLogger error: %v", err)
	}
	defer log.Close()

	log.Info("list loaded", slog.String("list", "subjects"))
}

func TestSetupLogger_SetsDefault(t *testing.T) {
	log, err := SetupLogger(&LogConfig{Level: "warn", Format: "text"})
	if err != nil {
		t.Fatalf("SetupLogger error: %v", err)
	}
	defer log.Close()

	if slog.Default().Handler() != log.Handler() {
		t.Error("SetupLogger did not set slog.Default()")
	}
}

func TestBuildLoggerOpts(t *testing.T) {
	const base = 4

	tests := []struct {
		name string
		cfg  *LogConfig
		want int
	}{
		{"console only", &LogConfig{Level: "info", Format: "text"}, base},
		{"file without rotation", &LogConfig{FilePath: "app.log"}, base + 2},
		{"file with rotation", &LogConfig{
			FilePath:        "app.log",
			MaxSizeMB:       10,
			RetentionDays:   7,
			MaxBackups:      3,
			CompressRotated: boolPtr(true),
		}, base + 6},
		{"rotation ignored without file", &LogConfig{MaxSizeMB: 10, MaxBackups: 3}, base},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(buildLoggerOpts(tt.cfg)); got != tt.want {
				t.Errorf("len(opts) = %d; want %d", got, tt.want)
			}
		})
	}

	if buildLoggerOpts(nil) != nil {
		t.Error("nil config should produce nil options")
	}
}
