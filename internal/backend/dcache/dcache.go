// Package dcache resolves file locality through the dCache frontend REST API.
package dcache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/newthinker/stagestate/internal/backend"
	"github.com/newthinker/stagestate/internal/core"
)

const namespaceAPI = "/api/v1/namespace"

// Config holds dCache frontend connection settings
type Config struct {
	Endpoint string
	Username string
	Password string
	Timeout  time.Duration
}

// DCache implements backend.Client against a dCache frontend
type DCache struct {
	client   *http.Client
	endpoint string
	username string
	password string
}

// New creates a dCache client. The endpoint must be an absolute http(s) URL.
func New(cfg Config) (*DCache, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("endpoint must be an http(s) URL, got %q", cfg.Endpoint)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &DCache{
		client:   &http.Client{Timeout: timeout},
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		username: cfg.Username,
		password: cfg.Password,
	}, nil
}

func (d *DCache) Name() string {
	return "dcache"
}

// namespaceResponse is the subset of the namespace attributes we read
type namespaceResponse struct {
	FileType     string `json:"fileType"`
	FileLocality string `json:"fileLocality"`
}

// GetXattr resolves user.status to the file's locality.
func (d *DCache) GetXattr(ctx context.Context, surl, key string) (string, error) {
	if key != core.AttrStatus {
		return "", backend.Unsupported(d.Name(), key)
	}

	path, err := backend.NamespacePath(surl)
	if err != nil {
		return "", err
	}

	reqURL := d.endpoint + namespaceAPI + (&url.URL{Path: path}).EscapedPath() + "?locality=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if d.username != "" {
		req.SetBasicAuth(d.username, d.password)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("querying namespace: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", fmt.Errorf("file not found: %s", path)
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", fmt.Errorf("permission denied: %s (status %d)", path, resp.StatusCode)
	default:
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result namespaceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if result.FileLocality == "" {
		return "", fmt.Errorf("no locality for %s (type %q)", path, result.FileType)
	}

	return result.FileLocality, nil
}
