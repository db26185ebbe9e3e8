// Package surl reads URL lists and rewrites them to the storage URL form
// the backend's attribute lookup requires.
package surl

import (
	"fmt"
	"os"
	"strings"

	"github.com/newthinker/stagestate/internal/core"
)

// Normalizer replaces everything before Marker with Prefix.
type Normalizer struct {
	Prefix string
	Marker string
}

// New creates a Normalizer
func New(prefix, marker string) *Normalizer {
	return &Normalizer{Prefix: prefix, Marker: marker}
}

// ReadURLs returns the whitespace separated entries of the file at path.
func ReadURLs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapError(core.ErrIO, err)
	}
	return strings.Fields(string(data)), nil
}

// Normalize converts a /pnfs path, gsiftp:// or srm:// URL to a SURL.
// The text from the first occurrence of the marker onward is kept as is.
func (n *Normalizer) Normalize(url string) (string, error) {
	idx := strings.Index(url, n.Marker)
	if idx < 0 {
		return "", core.WrapError(core.ErrInvalidURL,
			fmt.Errorf("%q does not contain %q", url, n.Marker))
	}
	return n.Prefix + url[idx:], nil
}

// NormalizeAll converts urls in order, keeping duplicates.
func (n *Normalizer) NormalizeAll(urls []string) ([]string, error) {
	surls := make([]string, 0, len(urls))
	for _, u := range urls {
		s, err := n.Normalize(u)
		if err != nil {
			return nil, err
		}
		surls = append(surls, s)
	}
	return surls, nil
}

// ConvertFile reads the URL list at path and normalizes every entry.
func (n *Normalizer) ConvertFile(path string) ([]string, error) {
	urls, err := ReadURLs(path)
	if err != nil {
		return nil, err
	}
	return n.NormalizeAll(urls)
}

// Path returns the part of a SURL from the marker onward, which is the
// file's namespace path on the storage cluster.
func (n *Normalizer) Path(surl string) (string, error) {
	idx := strings.Index(surl, n.Marker)
	if idx < 0 {
		return "", core.WrapError(core.ErrInvalidURL,
			fmt.Errorf("%q does not contain %q", surl, n.Marker))
	}
	return surl[idx:], nil
}
