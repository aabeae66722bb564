package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestChooseLogLevel(t *testing.T) {
	tests := []struct {
		name         string
		flag, env    string
		config       string
		wantLevel    slog.Level
		wantSource   string
		wantWarnings []string
	}{
		{name: "flag wins over invalid env", flag: "debug", env: "verbose", config: "warn", wantLevel: slog.LevelDebug, wantSource: "flag"},
		{name: "env over config", env: "warn", config: "error", wantLevel: slog.LevelWarn, wantSource: "env"},
		{name: "config when env blank", env: " ", config: "error", wantLevel: slog.LevelError, wantSource: "config"},
		{name: "nothing set", wantLevel: slog.LevelInfo, wantSource: "default"},
		{
			name: "invalid env falls through to config", env: "verbose", config: "debug",
			wantLevel: slog.LevelDebug, wantSource: "config",
			wantWarnings: []string{"GIFSTASH_LOG_LEVEL=\"verbose\""},
		},
		{
			name: "invalid env and config fall back to default", env: "verbose", config: "chatty",
			wantLevel: slog.LevelInfo, wantSource: "default",
			wantWarnings: []string{"GIFSTASH_LOG_LEVEL", "log_level=\"chatty\"", "defaulting to log level info"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			choice, err := chooseLogLevel(tt.flag, tt.env, tt.config)
			if err != nil {
				t.Fatalf("choose log level: %v", err)
			}
			if choice.level != tt.wantLevel || choice.source != tt.wantSource {
				t.Fatalf("expected %v from %s, got %v from %s", tt.wantLevel, tt.wantSource, choice.level, choice.source)
			}
			if len(choice.warnings) != len(tt.wantWarnings) {
				t.Fatalf("expected %d warnings, got %q", len(tt.wantWarnings), choice.warnings)
			}
			for i, want := range tt.wantWarnings {
				if !strings.Contains(choice.warnings[i], want) {
					t.Fatalf("warning %d: expected %q in %q", i, want, choice.warnings[i])
				}
			}
		})
	}
}

func TestChooseLogLevelRejectsInvalidFlag(t *testing.T) {
	if _, err := chooseLogLevel("verbose", "", ""); err == nil || !strings.Contains(err.Error(), "--log-level") {
		t.Fatalf("expected --log-level error, got %v", err)
	}
}

func TestConfigureLoggerForCLIPassesLevelToSpawnedServer(t *testing.T) {
	t.Cleanup(func() { spawnedServerLogLevel = "" })

	t.Setenv(logLevelEnvKey, "")
	if _, err := configureLoggerForCLI("WARNING", "info"); err != nil {
		t.Fatalf("configure logger: %v", err)
	}
	if spawnedServerLogLevel != "warn" {
		t.Fatalf("expected spawned server level warn, got %q", spawnedServerLogLevel)
	}

	if _, err := configureLoggerForCLI("", ""); err != nil {
		t.Fatalf("configure logger: %v", err)
	}
	if spawnedServerLogLevel != "" {
		t.Fatalf("expected no level for a defaulted logger, got %q", spawnedServerLogLevel)
	}
}

func TestNewLoggerTagsApp(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("clip missing", "clip_id", "abc")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "app=gifstash") || !strings.Contains(out, "clip_id=abc") {
		t.Fatalf("unexpected log line: %q", out)
	}
}
