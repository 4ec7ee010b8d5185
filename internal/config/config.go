// Package config holds the pipeline configuration and loads it with viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

const (
	DefaultRemoteURL = "https://gitlab.com/imsidag/taqbaylit/-/raw/master/tmx/kabyle-tm.tmx?ref_type=heads"

	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "KABYLINER"

	defaultConfigName = "kabyliner"
)

// Config enumerates everything the pipeline needs to run.
type Config struct {
	RemoteURL       string        `mapstructure:"remote_url" yaml:"remote_url"`
	LocalTMXPath    string        `mapstructure:"local_tmx_path" yaml:"local_tmx_path"`
	RawOutputPath   string        `mapstructure:"raw_output_path" yaml:"raw_output_path"`
	CleanOutputPath string        `mapstructure:"clean_output_path" yaml:"clean_output_path"`
	SourceTextPath  string        `mapstructure:"source_text_path" yaml:"source_text_path"`
	TargetTextPath  string        `mapstructure:"target_text_path" yaml:"target_text_path"`
	SourceLang      string        `mapstructure:"source_lang" yaml:"source_lang"`
	TargetLang      string        `mapstructure:"target_lang" yaml:"target_lang"`
	HTTPTimeout     time.Duration `mapstructure:"http_timeout" yaml:"http_timeout"`
	Verbose         bool          `mapstructure:"verbose" yaml:"verbose"`
	ProgressEvery   int           `mapstructure:"progress_every" yaml:"progress_every"`
	DBPath          string        `mapstructure:"db_path" yaml:"db_path"`
}

// Default returns the configuration of the English/Kabyle corpus build.
func Default() Config {
	return Config{
		RemoteURL:       DefaultRemoteURL,
		LocalTMXPath:    "kabyle-tm.tmx",
		RawOutputPath:   "parallel_corpus.tsv",
		CleanOutputPath: "parallel_corpus_clean.tsv",
		SourceTextPath:  "en.txt",
		TargetTextPath:  "kab.txt",
		SourceLang:      "en",
		TargetLang:      "kab",
		ProgressEvery:   1000,
	}
}

// SetDefaults registers Default() on v so that every key is known to viper,
// which is required for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("remote_url", d.RemoteURL)
	v.SetDefault("local_tmx_path", d.LocalTMXPath)
	v.SetDefault("raw_output_path", d.RawOutputPath)
	v.SetDefault("clean_output_path", d.CleanOutputPath)
	v.SetDefault("source_text_path", d.SourceTextPath)
	v.SetDefault("target_text_path", d.TargetTextPath)
	v.SetDefault("source_lang", d.SourceLang)
	v.SetDefault("target_lang", d.TargetLang)
	v.SetDefault("http_timeout", d.HTTPTimeout)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("progress_every", d.ProgressEvery)
	v.SetDefault("db_path", d.DBPath)
}

// Load reads the configuration from defaults, an optional config file and
// KABYLINER_* environment variables. An empty cfgFile searches for
// kabyliner.yaml in the working directory and tolerates its absence; an
// explicit cfgFile must exist.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Validate reports the first problem that would make the pipeline fail late.
func (c Config) Validate() error {
	u, err := url.Parse(c.RemoteURL)
	if err != nil {
		return fmt.Errorf("invalid remote_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid remote_url %q: scheme must be http or https", c.RemoteURL)
	}

	paths := []struct {
		key, value string
	}{
		{"local_tmx_path", c.LocalTMXPath},
		{"raw_output_path", c.RawOutputPath},
		{"clean_output_path", c.CleanOutputPath},
		{"source_text_path", c.SourceTextPath},
		{"target_text_path", c.TargetTextPath},
	}
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p.value) == "" {
			return fmt.Errorf("%s must not be empty", p.key)
		}
		if other, dup := seen[p.value]; dup {
			return fmt.Errorf("%s and %s point to the same file %q", other, p.key, p.value)
		}
		seen[p.value] = p.key
	}

	if err := validateLang("source_lang", c.SourceLang); err != nil {
		return err
	}
	if err := validateLang("target_lang", c.TargetLang); err != nil {
		return err
	}
	if c.SourceLang == c.TargetLang {
		return fmt.Errorf("source_lang and target_lang must differ (both %q)", c.SourceLang)
	}

	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout must not be negative")
	}
	if c.ProgressEvery <= 0 {
		return fmt.Errorf("progress_every must be positive")
	}
	return nil
}

// validateLang accepts any BCP 47 tag. The tag is still matched verbatim
// against xml:lang values; parsing only catches typos such as "e n".
func validateLang(key, tag string) error {
	if tag == "" {
		return fmt.Errorf("%s must not be empty", key)
	}
	if strings.ContainsAny(tag, "\t\r\n") {
		return fmt.Errorf("%s %q must not contain tabs or newlines", key, tag)
	}
	if _, err := language.Parse(tag); err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, tag, err)
	}
	return nil
}
