package pdf

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxAssetBytes = 16 << 20

// URLLoader resolves asset references against a base URL. file URLs and
// bare paths read from disk, http(s) URLs are fetched and data URIs are
// decoded in place.
type URLLoader struct {
	base   *url.URL
	client *http.Client
}

// NewURLLoader parses base. A bare directory path is accepted and turned
// into a file URL.
func NewURLLoader(base string, client *http.Client) (*URLLoader, error) {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("pdf: parse base url %q: %w", base, err)
	}
	if u.Scheme == "" {
		abs, err := filepath.Abs(base)
		if err != nil {
			return nil, err
		}
		u = &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &URLLoader{base: u, client: client}, nil
}

// Base returns the resolved base URL.
func (l *URLLoader) Base() string { return l.base.String() }

func (l *URLLoader) Load(src string) ([]byte, error) {
	if strings.HasPrefix(src, "data:") {
		return decodeDataURI(src)
	}
	ref, err := url.Parse(src)
	if err != nil {
		return nil, err
	}
	u := l.base.ResolveReference(ref)
	switch u.Scheme {
	case "file":
		return os.ReadFile(filepath.FromSlash(u.Path))
	case "http", "https":
		resp, err := l.client.Get(u.String())
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("GET %s: %s", u, resp.Status)
		}
		return io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	default:
		return nil, fmt.Errorf("unsupported asset scheme %q", u.Scheme)
	}
}

func decodeDataURI(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data uri")
	}
	if strings.HasSuffix(meta, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	s, err := url.PathUnescape(payload)
	return []byte(s), err
}
