// Package checker looks up the residency of files in batches, pausing
// between batches to bound the load put on the storage backend.
package checker

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/stagestate/internal/backend"
	"github.com/newthinker/stagestate/internal/core"
	"github.com/newthinker/stagestate/internal/metrics"
)

const (
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorReset = "\033[0m"
)

// Options configures a Checker. Zero values fall back to DefaultOptions.
type Options struct {
	BatchSize  int
	BatchDelay time.Duration
	Verbose    bool
	Color      bool
	FailFast   bool
	Out        io.Writer
	Metrics    *metrics.Registry

	// Sleep pauses between batches; nil uses a context-aware timer
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultOptions returns 100-file batches with a one second pause.
func DefaultOptions() Options {
	return Options{
		BatchSize:  100,
		BatchDelay: time.Second,
		Verbose:    true,
		Color:      true,
		Out:        os.Stdout,
	}
}

// Checker queries a backend for the user.status attribute of files.
type Checker struct {
	client backend.Client
	opts   Options
	log    *zap.Logger
}

// New creates a Checker. A nil client means the backend could not be
// constructed and is reported as core.ErrBackendUnavailable.
func New(client backend.Client, opts Options, log *zap.Logger) (*Checker, error) {
	if client == nil {
		return nil, core.WrapError(core.ErrBackendUnavailable, fmt.Errorf("no backend client"))
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.BatchDelay < 0 {
		opts.BatchDelay = 0
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Sleep == nil {
		opts.Sleep = sleep
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Checker{
		client: client,
		opts:   opts,
		log:    log.With(zap.String("backend", client.Name())),
	}, nil
}

// Check looks up one SURL. A lookup failure is returned as
// core.ErrAttributeLookup together with a StatusError result.
func (c *Checker) Check(ctx context.Context, surl string) (core.Result, error) {
	start := time.Now()
	raw, err := c.client.GetXattr(ctx, surl, core.AttrStatus)
	elapsed := time.Since(start)

	var result core.Result
	if err != nil {
		err = core.WrapError(core.ErrAttributeLookup, fmt.Errorf("%s: %w", surl, err))
		result = core.Result{SURL: surl, Status: core.StatusError, Err: err}
	} else {
		result = core.Result{SURL: surl, Status: core.ParseStatus(raw), Raw: raw}
	}

	if c.opts.Metrics != nil {
		c.opts.Metrics.RecordLookup(c.client.Name(), result.Status.String(), elapsed.Seconds())
	}
	c.log.Debug("status lookup",
		zap.String("surl", surl),
		zap.String("status", result.Status.String()),
		zap.Duration("elapsed", elapsed),
	)

	c.print(result)
	return result, err
}

// CheckAll looks up every SURL in order, pausing after each batch,
// including the last one. Results keep input order.
func (c *Checker) CheckAll(ctx context.Context, surls []string) ([]core.Result, error) {
	results := make([]core.Result, 0, len(surls))

	for i := 0; i < len(surls); i += c.opts.BatchSize {
		end := min(i+c.opts.BatchSize, len(surls))

		for _, surl := range surls[i:end] {
			if err := ctx.Err(); err != nil {
				return results, err
			}

			result, err := c.Check(ctx, surl)
			if err != nil {
				if c.opts.FailFast {
					return results, err
				}
				c.log.Warn("status lookup failed", zap.String("surl", surl), zap.Error(err))
			}
			results = append(results, result)
		}

		if c.opts.Metrics != nil {
			c.opts.Metrics.RecordBatch()
		}
		c.log.Debug("batch done", zap.Int("checked", end), zap.Int("total", len(surls)))

		if err := c.opts.Sleep(ctx, c.opts.BatchDelay); err != nil {
			return results, err
		}
	}

	return results, nil
}

func (c *Checker) print(r core.Result) {
	if !c.opts.Verbose {
		return
	}
	if !c.opts.Color {
		fmt.Fprintf(c.opts.Out, "%s %s\n", r.SURL, r.Label())
		return
	}
	color := colorRed
	if r.Status.Staged() {
		color = colorGreen
	}
	fmt.Fprintf(c.opts.Out, "%s %s%s%s\n", r.SURL, color, r.Label(), colorReset)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
