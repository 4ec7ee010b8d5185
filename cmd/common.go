/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/BoFFire/kabyliner/internal/config"
	"github.com/BoFFire/kabyliner/internal/store"
)

// flagKeys maps command-line flags to the configuration keys they override.
var flagKeys = map[string]string{
	"verbose":        "verbose",
	"db":             "db_path",
	"source":         "source_lang",
	"target":         "target_lang",
	"url":            "remote_url",
	"tmx":            "local_tmx_path",
	"raw":            "raw_output_path",
	"clean":          "clean_output_path",
	"source-out":     "source_text_path",
	"target-out":     "target_text_path",
	"timeout":        "http_timeout",
	"progress-every": "progress_every",
}

// loadConfig merges defaults, the config file, KABYLINER_* variables and
// the flags set on cmd, then validates the result.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v := viper.New()
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return config.Config{}, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger returns a stderr logger when verbose output is enabled and a
// silent one otherwise.
func newLogger(cfg config.Config) *log.Logger {
	if !cfg.Verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "", log.LstdFlags)
}

// openStore opens the run history database, creating its directory.
func openStore(path string) (*store.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("no history database configured (use --db or db_path)")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
