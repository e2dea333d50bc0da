package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/schollz/progressbar/v3"
)

// HTTPSourceOption configures an HTTP source.
type HTTPSourceOption func(*httpSource)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) HTTPSourceOption {
	return func(s *httpSource) {
		s.client = c
	}
}

// WithProgress renders a progress bar on stderr for every download.
func WithProgress(show bool) HTTPSourceOption {
	return func(s *httpSource) {
		s.showProgress = show
	}
}

// httpSource fetches assets with a GET to origin/prefix/name.
type httpSource struct {
	// base is origin with the prefix segments appended when origin does not already end in them
	base         string
	client       *http.Client
	showProgress bool
}

var _ AssetSource = &httpSource{}

// NewHTTPSource creates an AssetSource fetching assets from a web server. The prefix is only
// appended when the path of origin does not already end with the prefix's path segments, so
// origin may point at the asset root.
//
// Parameters:
//   - origin: scheme and host, optionally with a path, e.g. "http://localhost:8080"
//   - prefix: the asset directory below origin
//   - options: a variadic list of options to configure the source
//
// Returns:
//   - AssetSource: the source
//   - error: error if origin is not an absolute URL
func NewHTTPSource(origin, prefix string, options ...HTTPSourceOption) (AssetSource, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid asset origin %q: %w", origin, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("asset origin %q must be an absolute URL", origin)
	}
	s := &httpSource{
		base:   strings.TrimSuffix(origin, "/"),
		client: http.DefaultClient,
	}
	if p := strings.Trim(prefix, "/"); p != "" && !hasPathSuffix(u.Path, p) {
		s.base += "/" + p
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// hasPathSuffix reports whether the slash-separated urlPath ends with the whole segments of
// suffix.
func hasPathSuffix(urlPath, suffix string) bool {
	segs := strings.Split(strings.Trim(urlPath, "/"), "/")
	want := strings.Split(suffix, "/")
	return len(segs) >= len(want) && slices.Equal(segs[len(segs)-len(want):], want)
}

func (s *httpSource) Location(name string) string {
	return s.base + "/" + strings.TrimPrefix(name, "/")
}

func (s *httpSource) Read(ctx context.Context, name string) ([]byte, error) {
	loc := s.Location(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", loc, resp.Status)
	}

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}
	var writer io.Writer = &buf
	if s.showProgress {
		bar := progressbar.DefaultBytes(resp.ContentLength, "download "+name)
		defer bar.Close()
		writer = io.MultiWriter(&buf, bar)
	}
	if _, err := io.Copy(writer, resp.Body); err != nil {
		return nil, fmt.Errorf("GET %s: %w", loc, err)
	}
	return buf.Bytes(), nil
}
