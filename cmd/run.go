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

	"github.com/spf13/cobra"

	"github.com/BoFFire/kabyliner/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the whole pipeline: fetch, extract, clean, split and count",
	Args:  cobra.NoArgs,
	RunE:  runPipeline,
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Stdout: cmd.OutOrStdout(),
		Logger: newLogger(cfg),
	}
	if cfg.DBPath != "" {
		db, err := openStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.Recorder = db
	}

	res, err := pipeline.Run(cmd.Context(), cfg, opts)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}
	if res.RunID != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Run recorded: %s\n", res.RunID)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)
}
