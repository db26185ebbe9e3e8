// Package notifier posts run summaries to an HTTP webhook
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/newthinker/stagestate/internal/report"
)

// Run describes a finished run
type Run struct {
	Input      string
	Backend    string
	Summary    report.Summary
	ReportPath string
	FinishedAt time.Time
}

// Webhook sends run summaries as JSON to a URL
type Webhook struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// NewWebhook creates a new Webhook notifier
func NewWebhook(url string, headers map[string]string) (*Webhook, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook: url is required")
	}
	return &Webhook{
		url:     url,
		headers: headers,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (w *Webhook) Send(ctx context.Context, run Run) error {
	return w.post(ctx, runToPayload(run))
}

func runToPayload(run Run) map[string]any {
	payload := map[string]any{
		"type":           "staging_summary",
		"input":          run.Input,
		"backend":        run.Backend,
		"total":          run.Summary.Total,
		"staged":         run.Summary.Staged,
		"unstaged":       run.Summary.Unstaged,
		"unknown":        run.Summary.Unknown,
		"failed":         run.Summary.Failed,
		"percent_staged": run.Summary.Percent,
		"text":           run.Summary.Line(),
		"finished_at":    run.FinishedAt.Format(time.RFC3339),
	}
	if run.ReportPath != "" {
		payload["report"] = run.ReportPath
	}
	return payload
}

func (w *Webhook) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: server returned %d", resp.StatusCode)
	}

	return nil
}
