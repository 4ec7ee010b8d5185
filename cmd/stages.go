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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BoFFire/kabyliner/internal/cleaner"
	"github.com/BoFFire/kabyliner/internal/fetcher"
	"github.com/BoFFire/kabyliner/internal/report"
	"github.com/BoFFire/kabyliner/internal/splitter"
	"github.com/BoFFire/kabyliner/internal/tmx"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the TMX file unless the local copy has the remote size",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		res, err := fetcher.New(cfg.HTTPTimeout, newLogger(cfg)).Fetch(cmd.Context(), cfg.RemoteURL, cfg.LocalTMXPath)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", cfg.RemoteURL, err)
		}

		out := cmd.OutOrStdout()
		if res.Downloaded {
			fmt.Fprintf(out, "Downloaded TMX file saved as: %s (%d bytes)\n", cfg.LocalTMXPath, res.Written)
		} else {
			fmt.Fprintf(out, "File '%s' already exists with matching size (%d bytes). Skipping download.\n", cfg.LocalTMXPath, res.LocalSize)
		}
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract source/target pairs from the local TMX file into a TSV corpus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		stats, err := tmx.ExtractFile(cfg.LocalTMXPath, cfg.RawOutputPath, cfg.SourceLang, cfg.TargetLang, newLogger(cfg))
		if err != nil {
			return fmt.Errorf("failed to extract corpus: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Parallel corpus extracted to %s (%d pairs from %d units)\n", cfg.RawOutputPath, stats.Pairs, stats.Units)
		return nil
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop rows that do not hold exactly two non-empty fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		stats, err := cleaner.CleanFile(cfg.RawOutputPath, cfg.CleanOutputPath, cfg.SourceLang, cfg.TargetLang, cleaner.Options{
			Verbose:       cfg.Verbose,
			ProgressEvery: cfg.ProgressEvery,
			Logger:        newLogger(cfg),
		})
		if err != nil {
			return fmt.Errorf("failed to clean corpus: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleaned corpus saved to %s (kept %d, removed %d)\n", cfg.CleanOutputPath, stats.Kept, stats.Removed)
		return nil
	},
}

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Write each column of the clean corpus to its own text file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		rows, err := splitter.SplitFile(cfg.CleanOutputPath, cfg.SourceTextPath, cfg.TargetTextPath)
		if err != nil {
			return fmt.Errorf("failed to split corpus: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d sentences to %s and %s\n", rows, cfg.SourceTextPath, cfg.TargetTextPath)
		return nil
	},
}

var countCmd = &cobra.Command{
	Use:   "count <file>...",
	Short: "Count the lines of one or more files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		counts, err := report.CountLines(args...)
		if err != nil {
			return fmt.Errorf("failed to count lines: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
		for _, c := range counts {
			fmt.Fprintf(w, "%d\t %s\n", c.Lines, c.Path)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(countCmd)
}
