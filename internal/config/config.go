package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL      = "http://127.0.0.1:7435"
	DefaultLogLevel    = "info"
	DefaultDBFileName  = "gifstash.db"
	DefaultBlobDirName = "gifs"
	DefaultAppDirName  = "gifstash"

	configFileName  = ".gifstash.toml"
	configDirEnvKey = "GIFSTASH_CONFIG_DIR"
	apiURLEnvKey    = "GIFSTASH_API_URL"
	dbPathEnvKey    = "GIFSTASH_DB"
	dataDirEnvKey   = "GIFSTASH_DATA_DIR"
)

var (
	validLogLevels        = []string{"debug", "info", "warn", "warning", "error"}
	validClipboardMethods = []string{"file", "image", "path"}
)

// ClipboardConfig controls how clips are placed on the system clipboard.
type ClipboardConfig struct {
	Methods []string `toml:"methods"`
}

// Config defines runtime configuration for gifstash.
type Config struct {
	APIURL    string          `toml:"api_url"`
	DataDir   string          `toml:"data_dir"`
	DBPath    string          `toml:"db_path"`
	BlobDir   string          `toml:"blob_dir"`
	LogLevel  string          `toml:"log_level"`
	Clipboard ClipboardConfig `toml:"clipboard"`
}

// Default returns default configuration values. Paths are resolved by Load.
func Default() Config {
	return Config{
		APIURL:    DefaultAPIURL,
		LogLevel:  DefaultLogLevel,
		Clipboard: ClipboardConfig{Methods: append([]string(nil), validClipboardMethods...)},
	}
}

func loadFile(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

var allowedKeys = []string{
	"api_url",
	"data_dir",
	"db_path",
	"blob_dir",
	"log_level",
	"clipboard.methods",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "data_dir":
		return c.DataDir, nil
	case "db_path":
		return c.DBPath, nil
	case "blob_dir":
		return c.BlobDir, nil
	case "log_level":
		return c.LogLevel, nil
	case "clipboard.methods":
		return strings.Join(c.Clipboard.Methods, ","), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// Path returns the config file location.
func Path() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// DefaultDataDir returns the per-user directory holding the database and clips.
func DefaultDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DefaultAppDirName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads the config file and applies env overrides. Unset storage paths
// are derived from the data directory.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return nil, err
	}
	if err := loadFile(path, &cfg); err != nil {
		return nil, err
	}

	if apiURL := os.Getenv(apiURLEnvKey); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if dataDir := os.Getenv(dataDirEnvKey); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if dbPath := os.Getenv(dbPathEnvKey); dbPath != "" {
		cfg.DBPath = dbPath
	}

	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolvePaths() error {
	if strings.TrimSpace(c.DataDir) == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return err
		}
		c.DataDir = dir
	}
	if strings.TrimSpace(c.DBPath) == "" {
		c.DBPath = filepath.Join(c.DataDir, DefaultDBFileName)
	}
	if strings.TrimSpace(c.BlobDir) == "" {
		c.BlobDir = filepath.Join(c.DataDir, DefaultBlobDirName)
	}
	return nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "log_level":
		if _, err := ParseLogLevel(value); err != nil || value == "" {
			return nil, fmt.Errorf("%s must be one of %s", key, strings.Join(validLogLevels, ", "))
		}
		return strings.ToLower(value), nil
	case "clipboard.methods":
		methods := splitCSV(value)
		for _, method := range methods {
			if !containsFold(validClipboardMethods, method) {
				return nil, fmt.Errorf("invalid clipboard method %q (allowed: %s)", method, strings.Join(validClipboardMethods, ", "))
			}
		}
		return methods, nil
	case "api_url":
		if value == "" {
			return nil, fmt.Errorf("%s cannot be empty", key)
		}
		return value, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func splitCSV(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

// ParseLogLevel maps a configured level name to a slog level. Blank selects
// DefaultLogLevel; "warning" is accepted for warn, and so are numeric levels.
func ParseLogLevel(raw string) (slog.Level, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		value = DefaultLogLevel
	}
	if strings.EqualFold(value, "warning") {
		value = "warn"
	}
	if numeric, err := strconv.Atoi(value); err == nil {
		return slog.Level(numeric), nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}
