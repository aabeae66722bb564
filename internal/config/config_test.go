package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.APIURL != "http://127.0.0.1:7435" {
		t.Fatalf("expected default API URL, got %q", cfg.APIURL)
	}
	if cfg.DBPath != "" {
		t.Fatalf("expected empty db path, got %q", cfg.DBPath)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("expected default log level %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
	if !reflect.DeepEqual(cfg.Clipboard.Methods, []string{"file", "image", "path"}) {
		t.Fatalf("unexpected default clipboard methods: %v", cfg.Clipboard.Methods)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gifstash.toml")
	if err := os.WriteFile(path, []byte(`api_url = "http://localhost:9999"
log_level = "warn"

[clipboard]
methods = ["path"]
`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://localhost:9999" {
		t.Fatalf("expected api_url 'http://localhost:9999', got %q", cfg.APIURL)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected log_level 'warn', got %q", cfg.LogLevel)
	}
	if !reflect.DeepEqual(cfg.Clipboard.Methods, []string{"path"}) {
		t.Fatalf("expected clipboard methods [path], got %v", cfg.Clipboard.Methods)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFile("/nonexistent/path/.gifstash.toml", &cfg); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("defaults should be preserved")
	}
}

func TestLoadFileRejectsInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gifstash.toml")
	if err := os.WriteFile(path, []byte("api_url = \n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg := Default()
	if err := loadFile(path, &cfg); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestIsAllowedKey(t *testing.T) {
	for _, key := range []string{
		"api_url",
		"data_dir",
		"db_path",
		"blob_dir",
		"log_level",
		"clipboard.methods",
	} {
		if !IsAllowedKey(key) {
			t.Fatalf("expected %q to be allowed", key)
		}
	}
	if IsAllowedKey("invalid") {
		t.Fatal("expected 'invalid' to not be allowed")
	}
}

func TestGetKey(t *testing.T) {
	cfg := Config{
		APIURL:    "http://test:1234",
		DataDir:   "/tmp/gifstash",
		DBPath:    "/tmp/test.db",
		BlobDir:   "/tmp/gifs",
		LogLevel:  "warn",
		Clipboard: ClipboardConfig{Methods: []string{"image", "path"}},
	}

	tests := map[string]string{
		"api_url":           "http://test:1234",
		"data_dir":          "/tmp/gifstash",
		"db_path":           "/tmp/test.db",
		"blob_dir":          "/tmp/gifs",
		"log_level":         "warn",
		"clipboard.methods": "image,path",
	}
	for key, want := range tests {
		t.Run(key, func(t *testing.T) {
			got, err := cfg.Get(key)
			if err != nil {
				t.Fatalf("get %s: %v", key, err)
			}
			if got != want {
				t.Fatalf("expected %q, got %q", want, got)
			}
		})
	}

	if _, err := cfg.Get("invalid"); err == nil {
		t.Fatal("expected error for invalid key")
	}
}

func TestSetKeyCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "new.toml")
	if err := SetKey(path, "api_url", "http://127.0.0.1:9000"); err != nil {
		t.Fatalf("set: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:9000" {
		t.Fatalf("expected api_url override, got %q", cfg.APIURL)
	}
}

func TestSetKeyUpdatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "existing.toml")
	if err := os.WriteFile(path, []byte("db_path = \"/old.db\"\napi_url = \"http://keep\"\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := SetKey(path, "db_path", "/new.db"); err != nil {
		t.Fatalf("set: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/new.db" {
		t.Fatalf("expected '/new.db', got %q", cfg.DBPath)
	}
	if cfg.APIURL != "http://keep" {
		t.Fatalf("expected preserved api_url 'http://keep', got %q", cfg.APIURL)
	}
}

func TestSetKeyLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.toml")
	if err := SetKey(path, "log_level", "ERROR"); err != nil {
		t.Fatalf("set log_level: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("expected log_level 'error', got %q", cfg.LogLevel)
	}

	if err := SetKey(path, "log_level", "loud"); err == nil {
		t.Fatal("expected invalid log level to be rejected")
	}
}

func TestSetKeyInvalidKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.toml")
	if err := SetKey(path, "invalid_key", "value"); err == nil {
		t.Fatal("expected error for invalid key")
	}
}

func TestSetNestedClipboardKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipboard.toml")
	if err := SetKey(path, "clipboard.methods", " image , path ,"); err != nil {
		t.Fatalf("set nested key: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Clipboard.Methods, []string{"image", "path"}) {
		t.Fatalf("expected [image path], got %v", cfg.Clipboard.Methods)
	}

	if err := SetKey(path, "clipboard.methods", "file,telepathy"); err == nil {
		t.Fatal("expected unknown clipboard method to be rejected")
	}
}

func TestConfigDirOverridePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GIFSTASH_CONFIG_DIR", dir)

	path, err := Path()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != filepath.Join(dir, ".gifstash.toml") {
		t.Fatalf("unexpected config path: %s", path)
	}
}

func TestLoadDerivesStoragePathsFromDataDir(t *testing.T) {
	configDir := t.TempDir()
	dataDir := t.TempDir()
	cfgPath := filepath.Join(configDir, ".gifstash.toml")
	if err := os.WriteFile(cfgPath, []byte("data_dir = \""+filepath.ToSlash(dataDir)+"\"\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("GIFSTASH_CONFIG_DIR", configDir)
	t.Setenv("GIFSTASH_DATA_DIR", "")
	t.Setenv("GIFSTASH_DB", "")
	t.Setenv("GIFSTASH_API_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if filepath.Clean(cfg.DataDir) != filepath.Clean(dataDir) {
		t.Fatalf("expected data dir %q, got %q", dataDir, cfg.DataDir)
	}
	if cfg.DBPath != filepath.Join(cfg.DataDir, DefaultDBFileName) {
		t.Fatalf("expected derived db path, got %q", cfg.DBPath)
	}
	if cfg.BlobDir != filepath.Join(cfg.DataDir, DefaultBlobDirName) {
		t.Fatalf("expected derived blob dir, got %q", cfg.BlobDir)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("expected default api url, got %q", cfg.APIURL)
	}
}

func TestEnvOverrides(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("GIFSTASH_CONFIG_DIR", t.TempDir())
	t.Setenv("GIFSTASH_API_URL", "http://example.com:8080")
	t.Setenv("GIFSTASH_DB", "/tmp/override.db")
	t.Setenv("GIFSTASH_DATA_DIR", dataDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://example.com:8080" {
		t.Fatalf("expected env override for API URL, got %q", cfg.APIURL)
	}
	if cfg.DBPath != "/tmp/override.db" {
		t.Fatalf("expected env override for DB path, got %q", cfg.DBPath)
	}
	if cfg.BlobDir != filepath.Join(dataDir, DefaultBlobDirName) {
		t.Fatalf("expected blob dir under env data dir, got %q", cfg.BlobDir)
	}
}

func TestLoadFallsBackToDefaultLogLevelWhenConfiguredEmpty(t *testing.T) {
	configDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(configDir, ".gifstash.toml"), []byte("log_level = \"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("GIFSTASH_CONFIG_DIR", configDir)
	t.Setenv("GIFSTASH_DATA_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("expected default log level %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
}

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: []string{}},
		{in: "file", want: []string{"file"}},
		{in: " file, ,path ", want: []string{"file", "path"}},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got := splitCSV(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("splitCSV(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    slog.Level
		wantErr bool
	}{
		{name: "blank uses default", raw: " ", want: slog.LevelInfo},
		{name: "debug", raw: "debug", want: slog.LevelDebug},
		{name: "upper case", raw: "ERROR", want: slog.LevelError},
		{name: "warning alias", raw: "Warning", want: slog.LevelWarn},
		{name: "numeric", raw: "-4", want: slog.LevelDebug},
		{name: "unknown", raw: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLogLevel(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse %q: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("ParseLogLevel(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
