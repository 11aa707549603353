package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/esmgis/platcrawl/internal/config"
	"github.com/esmgis/platcrawl/internal/database"
	"github.com/esmgis/platcrawl/internal/store"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the local plat map store",
		Long: `Status summarizes the local store without touching the network:
how many maps each community has on disk, and optionally the most
recent crawl runs from the history database.

Examples:
  # Per-community document counts
  platcrawl status

  # Include the last five runs
  platcrawl status --history 5`,
		RunE: runStatusCmd,
	}

	cmd.Flags().StringP("store", "s", config.DefaultOutputDir,
		"Directory the downloaded plat maps are stored in")
	cmd.Flags().Int("history", 0,
		"Show the most recent N crawl runs from the history database")

	return cmd
}

// runStatusCmd executes the status command.
func runStatusCmd(cmd *cobra.Command, _ []string) error {
	dir, err := cmd.Flags().GetString("store")
	if err != nil {
		return err
	}
	historyLimit, err := cmd.Flags().GetInt("history")
	if err != nil {
		return err
	}

	st, err := store.New(dir)
	if err != nil {
		return fmt.Errorf("cannot use store directory: %w", err)
	}

	counts, err := st.CountByCommunity()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Store: %s\n\n", st.Dir())

	if len(counts) == 0 {
		fmt.Fprintln(out, "No plat maps stored yet. Run 'platcrawl crawl' to start.")
	} else {
		communities := make([]string, 0, len(counts))
		total := 0
		for c, n := range counts {
			communities = append(communities, c)
			total += n
		}
		sort.Strings(communities)

		for _, c := range communities {
			fmt.Fprintf(out, "  %s-XX: %d maps\n", c, counts[c])
		}
		fmt.Fprintf(out, "\n  TOTAL: %d maps\n", total)
	}

	if historyLimit > 0 {
		if err := printHistory(cmd, historyLimit); err != nil {
			return err
		}
	}

	return nil
}

// printHistory prints the most recent runs from the history database.
func printHistory(cmd *cobra.Command, limit int) error {
	db, err := database.Open(config.XDGDataDir(), database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no run history available: %w", err)
	}
	defer db.Close()

	runs, err := db.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nRecent runs:\n")
	if len(runs) == 0 {
		fmt.Fprintln(out, "  none recorded")
		return nil
	}

	for _, r := range runs {
		status := "ok"
		if r.Aborted {
			status = "interrupted"
		}
		fmt.Fprintf(out, "  %s  processed=%d failed=%d stored=%d elapsed=%s (%s)\n",
			r.DateStarted.Format("2006-01-02 15:04"),
			r.TotalProcessed, r.TotalFailed, r.TotalStored, r.Elapsed, status)
	}
	return nil
}
