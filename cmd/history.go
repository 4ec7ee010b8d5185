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
	"time"

	"github.com/spf13/cobra"

	"github.com/BoFFire/kabyliner/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the run history",
	Long:  `List, inspect, and clear the SQLite run history written when --db is set.`,
}

// withStore loads the configuration and opens the history database for fn.
func withStore(cmd *cobra.Command, fn func(db *store.Store) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(db *store.Store) error {
			runs, err := db.ListRuns(cmd.Context(), historyLimit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tDOWNLOADED\tUNITS\tPAIRS\tKEPT\tREMOVED")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%d\t%d\t%d\t%d\n",
					r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Status,
					r.Downloaded, r.Units, r.Pairs, r.Kept, r.Removed)
			}
			return w.Flush()
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(db *store.Store) error {
			r, err := db.GetRun(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get run: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:           %s\n", r.ID)
			fmt.Fprintf(out, "Status:       %s\n", r.Status)
			fmt.Fprintf(out, "Started:      %s\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Duration:     %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
			fmt.Fprintf(out, "Remote URL:   %s\n", r.RemoteURL)
			fmt.Fprintf(out, "Local TMX:    %s\n", r.LocalPath)
			fmt.Fprintf(out, "Downloaded:   %v (local %d, remote %d bytes)\n", r.Downloaded, r.LocalSize, r.RemoteSize)
			fmt.Fprintf(out, "Units:        %d\n", r.Units)
			fmt.Fprintf(out, "Pairs:        %d\n", r.Pairs)
			fmt.Fprintf(out, "Kept/removed: %d/%d\n", r.Kept, r.Removed)
			fmt.Fprintf(out, "Lines:        %d/%d\n", r.SourceLines, r.TargetLines)
			if r.Error != "" {
				fmt.Fprintf(out, "Error:        %s\n", r.Error)
			}
			return nil
		})
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show run history statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(db *store.Store) error {
			stats, err := db.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get stats: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total runs:     %d\n", stats.TotalRuns)
			fmt.Fprintf(out, "Completed runs: %d\n", stats.CompletedRuns)
			fmt.Fprintf(out, "Failed runs:    %d\n", stats.FailedRuns)
			fmt.Fprintf(out, "Downloads:      %d\n", stats.Downloads)
			if !stats.LastRunAt.IsZero() {
				fmt.Fprintf(out, "Last pairs:     %d (%s)\n", stats.LastPairs, stats.LastRunAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a recorded run by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(db *store.Store) error {
			if err := db.DeleteRun(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete run: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run: %s\n", args[0])
			return nil
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every recorded run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(db *store.Store) error {
			n, err := db.ClearRuns(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d runs from history.\n", n)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}
