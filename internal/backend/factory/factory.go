// internal/backend/factory/factory.go
package factory

import (
	"fmt"

	"github.com/newthinker/stagestate/internal/backend"
	"github.com/newthinker/stagestate/internal/backend/dcache"
	"github.com/newthinker/stagestate/internal/backend/s3tape"
	"github.com/newthinker/stagestate/internal/backend/static"
	"github.com/newthinker/stagestate/internal/config"
	"github.com/newthinker/stagestate/internal/core"
)

// New creates a backend client based on configuration. Any failure is
// reported as core.ErrBackendUnavailable.
func New(cfg config.BackendConfig) (backend.Client, error) {
	c, err := build(cfg)
	if err != nil {
		return nil, core.WrapError(core.ErrBackendUnavailable, err)
	}
	return c, nil
}

func build(cfg config.BackendConfig) (backend.Client, error) {
	switch cfg.Type {
	case "dcache":
		return dcache.New(dcache.Config{
			Endpoint: cfg.DCache.Endpoint,
			Username: cfg.DCache.Username,
			Password: cfg.DCache.Password,
			Timeout:  cfg.DCache.Timeout,
		})
	case "s3":
		return s3tape.New(s3tape.Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	case "static":
		return static.Load(cfg.Static.Path)
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Type)
	}
}
