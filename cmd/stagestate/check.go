package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/stagestate/internal/app"
	"github.com/newthinker/stagestate/internal/config"
	"github.com/newthinker/stagestate/internal/logger"
)

var (
	quiet        bool
	noColor      bool
	failFast     bool
	backendType  string
	endpoint     string
	fixture      string
	batchSize    int
	batchDelay   time.Duration
	reportDir    string
	reportFormat string
	metricsFile  string
	notifyURL    string
)

func init() {
	f := rootCmd.Flags()
	f.BoolVarP(&quiet, "quiet", "q", false, "do not print per-file status lines")
	f.BoolVar(&noColor, "no-color", false, "disable colored status output")
	f.BoolVar(&failFast, "fail-fast", false, "abort on the first failed lookup")
	f.StringVar(&backendType, "backend", "", "storage backend: dcache, s3 or static")
	f.StringVar(&endpoint, "endpoint", "", "dCache frontend endpoint")
	f.StringVar(&fixture, "fixture", "", "status fixture file for the static backend")
	f.IntVar(&batchSize, "batch-size", 0, "files per batch")
	f.DurationVar(&batchDelay, "batch-delay", 0, "pause after each batch")
	f.StringVar(&reportDir, "report-dir", "", "write a run report below this directory")
	f.StringVar(&reportFormat, "report-format", "", "report format: json or yaml")
	f.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	f.StringVar(&notifyURL, "notify-url", "", "post the run summary to this webhook")
}

// loadConfig reads the config file if given and applies flag overrides.
func loadConfig(cmd *cobra.Command, log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Debug("no config file specified, using defaults")
	}

	flags := cmd.Flags()
	if flags.Changed("quiet") {
		cfg.Checker.Verbose = !quiet
	}
	if flags.Changed("no-color") {
		cfg.Checker.Color = !noColor
	}
	if flags.Changed("fail-fast") {
		cfg.Checker.FailFast = failFast
	}
	if flags.Changed("backend") {
		cfg.Backend.Type = backendType
	}
	if flags.Changed("endpoint") {
		cfg.Backend.DCache.Endpoint = endpoint
	}
	if flags.Changed("fixture") {
		cfg.Backend.Static.Path = fixture
	}
	if flags.Changed("batch-size") {
		cfg.Checker.BatchSize = batchSize
	}
	if flags.Changed("batch-delay") {
		cfg.Checker.BatchDelay = batchDelay
	}
	if flags.Changed("report-dir") {
		cfg.Report.Enabled = true
		cfg.Report.Storage.Type = "localfs"
		cfg.Report.Storage.Path = reportDir
	}
	if flags.Changed("report-format") {
		cfg.Report.Format = reportFormat
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.Textfile = metricsFile
	}
	if flags.Changed("notify-url") {
		cfg.Notify.Webhook.URL = notifyURL
	}

	return cfg, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(cmd, log)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Fail before reading the input when the backend cannot be reached
	a, err := app.New(cfg, log, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = a.Run(ctx, args[0])
	return err
}
