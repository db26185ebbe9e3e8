package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/newthinker/stagestate/internal/core"
)

// Client is a storage backend able to answer extended attribute lookups.
type Client interface {
	// Name identifies the backend in logs and reports
	Name() string

	// GetXattr returns the value of attribute key for the file at surl
	GetXattr(ctx context.Context, surl, key string) (string, error)
}

// NamespacePath strips scheme and authority from a SURL and returns the
// file path on the storage cluster, e.g. /pnfs/grid.sara.nl/data/f.
func NamespacePath(surl string) (string, error) {
	i := strings.Index(surl, "://")
	if i < 0 {
		return "", core.WrapError(core.ErrInvalidURL, fmt.Errorf("no scheme in %q", surl))
	}
	rest := surl[i+3:]
	j := strings.Index(rest, "/")
	if j < 0 {
		return "", core.WrapError(core.ErrInvalidURL, fmt.Errorf("no path in %q", surl))
	}
	return rest[j:], nil
}

// Unsupported returns the error for a key the backend cannot serve.
func Unsupported(backend, key string) error {
	return core.WrapError(core.ErrUnsupportedAttribute,
		fmt.Errorf("%s backend cannot resolve %q", backend, key))
}
