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
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	cfgFile       string
	verbose       bool
	dbPath        string
	sourceLang    string
	targetLang    string
	remoteURL     string
	tmxPath       string
	rawPath       string
	cleanPath     string
	sourceOut     string
	targetOut     string
	httpTimeout   time.Duration
	progressEvery int
)

var rootCmd = &cobra.Command{
	Use:   "kabyliner",
	Short: "Build an English/Kabyle parallel corpus from a TMX translation memory",
	Long: `A CLI application that downloads a TMX translation memory, extracts the
aligned sentence pairs for two languages, drops malformed rows and writes one
plain-text file per language.

Run without a subcommand to execute the whole pipeline. Each stage is also
available on its own: fetch, extract, clean, split and count.`,
	Version:      version,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runPipeline,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ./kabyliner.yaml if present)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log stage diagnostics and cleaning progress to stderr")
	flags.StringVar(&dbPath, "db", "", "Run history database path (history disabled if empty)")

	flags.StringVarP(&sourceLang, "source", "s", "", "Source language code (default en)")
	flags.StringVarP(&targetLang, "target", "t", "", "Target language code (default kab)")
	flags.StringVar(&remoteURL, "url", "", "Remote TMX URL")
	flags.StringVar(&tmxPath, "tmx", "", "Local TMX path (default kabyle-tm.tmx)")
	flags.StringVar(&rawPath, "raw", "", "Raw TSV output path (default parallel_corpus.tsv)")
	flags.StringVar(&cleanPath, "clean", "", "Clean TSV output path (default parallel_corpus_clean.tsv)")
	flags.StringVar(&sourceOut, "source-out", "", "Source sentences output path (default en.txt)")
	flags.StringVar(&targetOut, "target-out", "", "Target sentences output path (default kab.txt)")
	flags.DurationVar(&httpTimeout, "timeout", 0, "HTTP timeout (0 means none)")
	flags.IntVar(&progressEvery, "progress-every", 1000, "Rows between two cleaning progress lines")
}
