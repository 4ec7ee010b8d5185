package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault_Validates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kabyliner.yaml")
	content := `remote_url: https://example.com/tm.tmx
source_lang: fr
target_lang: kab
http_timeout: 45s
progress_every: 50
db_path: ./runs.db
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.RemoteURL != "https://example.com/tm.tmx" {
		t.Errorf("unexpected remote_url %q", cfg.RemoteURL)
	}
	if cfg.SourceLang != "fr" {
		t.Errorf("expected source_lang fr, got %q", cfg.SourceLang)
	}
	if cfg.HTTPTimeout != 45*time.Second {
		t.Errorf("expected 45s timeout, got %v", cfg.HTTPTimeout)
	}
	if cfg.ProgressEvery != 50 {
		t.Errorf("expected progress_every 50, got %d", cfg.ProgressEvery)
	}
	if cfg.DBPath != "./runs.db" {
		t.Errorf("unexpected db_path %q", cfg.DBPath)
	}
	// Keys absent from the file keep their defaults.
	if cfg.TargetTextPath != "kab.txt" {
		t.Errorf("expected default target_text_path, got %q", cfg.TargetTextPath)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("KABYLINER_TARGET_LANG", "fr")
	t.Setenv("KABYLINER_VERBOSE", "true")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TargetLang != "fr" {
		t.Errorf("expected env target_lang fr, got %q", cfg.TargetLang)
	}
	if !cfg.Verbose {
		t.Error("expected verbose from env")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"bad scheme", func(c *Config) { c.RemoteURL = "ftp://example.com/tm.tmx" }, "scheme"},
		{"empty url", func(c *Config) { c.RemoteURL = "" }, "scheme"},
		{"empty path", func(c *Config) { c.CleanOutputPath = " " }, "clean_output_path"},
		{"shared path", func(c *Config) { c.TargetTextPath = c.SourceTextPath }, "same file"},
		{"empty lang", func(c *Config) { c.SourceLang = "" }, "source_lang"},
		{"bad lang", func(c *Config) { c.TargetLang = "e n" }, "target_lang"},
		{"tab in lang", func(c *Config) { c.TargetLang = "en\t" }, "tabs"},
		{"same langs", func(c *Config) { c.TargetLang = c.SourceLang }, "must differ"},
		{"negative timeout", func(c *Config) { c.HTTPTimeout = -time.Second }, "http_timeout"},
		{"zero progress", func(c *Config) { c.ProgressEvery = 0 }, "progress_every"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}
