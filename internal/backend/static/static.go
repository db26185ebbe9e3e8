// Package static serves attribute values from a YAML fixture file, for
// dry runs without grid access.
package static

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/newthinker/stagestate/internal/backend"
	"github.com/newthinker/stagestate/internal/core"
)

// Static implements backend.Client from an in-memory SURL -> status map
type Static struct {
	statuses map[string]string
}

// New creates a Static backend from a map
func New(statuses map[string]string) *Static {
	m := make(map[string]string, len(statuses))
	for k, v := range statuses {
		m[k] = v
	}
	return &Static{statuses: m}
}

// Load reads a YAML document of the form
//
//	srm://srm.grid.sara.nl:8443/pnfs/a: ONLINE
//	srm://srm.grid.sara.nl:8443/pnfs/b: NEARLINE
func Load(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}

	var statuses map[string]string
	if err := yaml.Unmarshal(data, &statuses); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}

	return New(statuses), nil
}

func (s *Static) Name() string {
	return "static"
}

func (s *Static) GetXattr(ctx context.Context, surl, key string) (string, error) {
	if key != core.AttrStatus {
		return "", backend.Unsupported(s.Name(), key)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	status, ok := s.statuses[surl]
	if !ok {
		return "", fmt.Errorf("file not found: %s", surl)
	}
	return status, nil
}
