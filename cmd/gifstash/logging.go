package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gifstash/internal/config"
)

const logLevelEnvKey = "GIFSTASH_LOG_LEVEL"

// logChoice is the level the CLI runs at and where it came from. An invalid
// env or config value is skipped with a warning and the next source is used.
type logChoice struct {
	level    slog.Level
	source   string
	warnings []string
}

// spawnedServerLogLevel is handed to an auto-started server so it logs at the
// same level as the command that started it. Empty means the server decides.
var spawnedServerLogLevel string

func chooseLogLevel(flagLevel, envLevel, configLevel string) (logChoice, error) {
	if strings.TrimSpace(flagLevel) != "" {
		level, err := config.ParseLogLevel(flagLevel)
		if err != nil {
			return logChoice{}, fmt.Errorf("invalid --log-level %q", flagLevel)
		}
		return logChoice{level: level, source: "flag"}, nil
	}

	var choice logChoice
	candidates := []struct {
		source, raw, label string
	}{
		{source: "env", raw: envLevel, label: logLevelEnvKey},
		{source: "config", raw: configLevel, label: "log_level"},
	}
	for _, c := range candidates {
		if strings.TrimSpace(c.raw) == "" {
			continue
		}
		level, err := config.ParseLogLevel(c.raw)
		if err != nil {
			choice.warnings = append(choice.warnings, fmt.Sprintf("warning: ignoring invalid %s=%q", c.label, c.raw))
			continue
		}
		choice.level, choice.source = level, c.source
		return choice, nil
	}

	level, _ := config.ParseLogLevel("")
	choice.level, choice.source = level, "default"
	if len(choice.warnings) > 0 {
		choice.warnings = append(choice.warnings, "warning: defaulting to log level "+config.DefaultLogLevel)
	}
	return choice, nil
}

// configureLoggerForCLI installs the default logger and returns any warnings
// to show the user.
func configureLoggerForCLI(flagLevel, configLevel string) ([]string, error) {
	choice, err := chooseLogLevel(flagLevel, os.Getenv(logLevelEnvKey), configLevel)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(newLogger(os.Stderr, choice.level))

	spawnedServerLogLevel = ""
	if choice.source != "default" {
		spawnedServerLogLevel = strings.ToLower(choice.level.String())
	}
	return choice.warnings, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})).With("app", "gifstash")
}
