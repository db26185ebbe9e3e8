package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/stagestate/internal/backend"
	"github.com/newthinker/stagestate/internal/backend/factory"
	"github.com/newthinker/stagestate/internal/checker"
	"github.com/newthinker/stagestate/internal/config"
	"github.com/newthinker/stagestate/internal/core"
	"github.com/newthinker/stagestate/internal/metrics"
	"github.com/newthinker/stagestate/internal/notifier"
	"github.com/newthinker/stagestate/internal/report"
	"github.com/newthinker/stagestate/internal/storage/archive"
	"github.com/newthinker/stagestate/internal/surl"
)

// App runs one normalize, check and aggregate pass over a URL list
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	out     io.Writer
	client  backend.Client
	metrics *metrics.Registry
}

// Outcome is what a run produced
type Outcome struct {
	Results    []core.Result
	Summary    report.Summary
	ReportPath string
}

// New creates the App and its backend client. A backend that cannot be
// constructed fails here, before any input is read.
func New(cfg *config.Config, logger *zap.Logger, out io.Writer) (*App, error) {
	client, err := factory.New(cfg.Backend)
	if err != nil {
		return nil, err
	}
	return NewWithClient(cfg, client, logger, out), nil
}

// NewWithClient creates the App around an existing backend client
func NewWithClient(cfg *config.Config, client backend.Client, logger *zap.Logger, out io.Writer) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = os.Stdout
	}
	return &App{
		cfg:     cfg,
		logger:  logger,
		out:     out,
		client:  client,
		metrics: metrics.NewRegistry(),
	}
}

// Metrics returns the registry the run records into
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

// Run processes the URL list at input. The summary line is printed
// even when some lookups failed; those runs still return an error.
func (a *App) Run(ctx context.Context, input string) (*Outcome, error) {
	surls, err := surl.New(a.cfg.SURL.Prefix, a.cfg.SURL.Marker).ConvertFile(input)
	if err != nil {
		return nil, err
	}
	a.logger.Info("checking files",
		zap.String("input", input),
		zap.Int("files", len(surls)),
		zap.String("backend", a.client.Name()),
	)

	chk, err := checker.New(a.client, checker.Options{
		BatchSize:  a.cfg.Checker.BatchSize,
		BatchDelay: a.cfg.Checker.BatchDelay,
		Verbose:    a.cfg.Checker.Verbose,
		Color:      a.cfg.Checker.Color,
		FailFast:   a.cfg.Checker.FailFast,
		Out:        a.out,
		Metrics:    a.metrics,
	}, a.logger)
	if err != nil {
		return nil, err
	}

	results, err := chk.CheckAll(ctx, surls)
	if err != nil {
		return nil, err
	}

	summary, err := report.Summarize(results)
	if err != nil {
		return nil, core.WrapError(core.ErrNoInput, fmt.Errorf("%s contains no URLs", input))
	}
	fmt.Fprintln(a.out, summary.Line())

	outcome := &Outcome{Results: results, Summary: summary}
	a.metrics.RecordSummary(summary.Total, summary.Percent)

	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			a.logger.Error("writing metrics textfile", zap.String("path", path), zap.Error(err))
		}
	}

	if a.cfg.Report.Enabled {
		path, err := a.saveReport(ctx, input, results, summary)
		if err != nil {
			return outcome, fmt.Errorf("saving report: %w", err)
		}
		outcome.ReportPath = path
		a.logger.Info("report saved", zap.String("path", path))
	}

	if a.cfg.Notify.Webhook.URL != "" {
		a.notify(ctx, input, outcome)
	}

	if summary.Failed > 0 {
		return outcome, core.WrapError(core.ErrAttributeLookup,
			fmt.Errorf("%d of %d lookups failed", summary.Failed, summary.Total))
	}

	return outcome, nil
}

func (a *App) saveReport(ctx context.Context, input string, results []core.Result, summary report.Summary) (string, error) {
	store, err := archive.New(a.cfg.Report.Storage)
	if err != nil {
		return "", err
	}
	r := report.New(input, a.client.Name(), results, summary)
	return report.Save(ctx, store, r, a.cfg.Report.Format)
}

// notify posts the summary to the configured webhook. Delivery failures
// are logged only.
func (a *App) notify(ctx context.Context, input string, outcome *Outcome) {
	hook, err := notifier.NewWebhook(a.cfg.Notify.Webhook.URL, a.cfg.Notify.Webhook.Headers)
	if err != nil {
		a.logger.Error("creating webhook", zap.Error(err))
		return
	}
	err = hook.Send(ctx, notifier.Run{
		Input:      input,
		Backend:    a.client.Name(),
		Summary:    outcome.Summary,
		ReportPath: outcome.ReportPath,
		FinishedAt: time.Now(),
	})
	if err != nil {
		a.logger.Warn("webhook notification failed", zap.Error(err))
	}
}
