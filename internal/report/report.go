package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/newthinker/stagestate/internal/core"
	"github.com/newthinker/stagestate/internal/storage/archive"
)

// Report is the exported record of one run.
type Report struct {
	ID          string      `json:"id" yaml:"id"`
	GeneratedAt time.Time   `json:"generated_at" yaml:"generated_at"`
	Input       string      `json:"input" yaml:"input"`
	Backend     string      `json:"backend" yaml:"backend"`
	Summary     Summary     `json:"summary" yaml:"summary"`
	Files       []FileEntry `json:"files" yaml:"files"`
}

// FileEntry is one file's status in a Report.
type FileEntry struct {
	SURL   string `json:"surl" yaml:"surl"`
	Status string `json:"status" yaml:"status"`
	Raw    string `json:"raw,omitempty" yaml:"raw,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// New builds a Report for results, in input order.
func New(input, backend string, results []core.Result, summary Summary) *Report {
	files := make([]FileEntry, 0, len(results))
	for _, r := range results {
		e := FileEntry{SURL: r.SURL, Status: r.Status.String()}
		if r.Status == core.StatusUnknown {
			e.Raw = r.Raw
		}
		if r.Err != nil {
			e.Error = r.Err.Error()
		}
		files = append(files, e)
	}

	return &Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Input:       input,
		Backend:     backend,
		Summary:     summary,
		Files:       files,
	}
}

// Encode serializes the report as "json" or "yaml".
func (r *Report) Encode(format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(r, "", "  ")
	case "yaml":
		return yaml.Marshal(r)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// Path is the archive path the report is stored under.
func (r *Report) Path(format string) string {
	return fmt.Sprintf("%s/stagestate-%s.%s", r.GeneratedAt.Format("2006-01-02"), r.ID, format)
}

// Save encodes the report and writes it to store, returning its path.
func Save(ctx context.Context, store archive.Storage, r *Report, format string) (string, error) {
	data, err := r.Encode(format)
	if err != nil {
		return "", err
	}
	path := r.Path(format)
	if err := store.Write(ctx, path, data); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
