package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/newthinker/stagestate/internal/config"
	"github.com/newthinker/stagestate/internal/storage/archive"
)

var reportsCmd = &cobra.Command{
	Use:   "reports [date]",
	Short: "List archived run reports",
	Long:  "List reports written with --report-dir or report.enabled, optionally only those of one day (YYYY-MM-DD).",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReports,
}

var reportsDir string

func init() {
	reportsCmd.Flags().StringVar(&reportsDir, "report-dir", "", "report directory (overrides config)")
	rootCmd.AddCommand(reportsCmd)
}

func runReports(cmd *cobra.Command, args []string) error {
	cfg := config.Defaults()
	if cfgFile != "" {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}
	if reportsDir != "" {
		cfg.Report.Storage.Type = "localfs"
		cfg.Report.Storage.Path = reportsDir
	}

	store, err := archive.New(cfg.Report.Storage)
	if err != nil {
		return fmt.Errorf("opening report storage: %w", err)
	}

	prefix := ""
	if len(args) == 1 {
		prefix = args[0]
	}

	paths, err := store.List(cmd.Context(), prefix)
	if err != nil {
		return fmt.Errorf("listing reports: %w", err)
	}
	sort.Strings(paths)

	out := cmd.OutOrStdout()
	for _, p := range paths {
		fmt.Fprintln(out, p)
	}
	return nil
}
