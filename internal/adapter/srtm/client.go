package srtm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/srtm-peaks/internal/observability"
)

// DefaultSource is the public SRTM3 mirror.
const DefaultSource = "https://dds.cr.usgs.gov/srtm/version2_1/SRTM3/"

// maxArchiveBytes bounds a single download; SRTM3 archives are a few MB.
const maxArchiveBytes = 64 << 20

// ErrTileNotFound is returned when the source has no archive at the requested path.
var ErrTileNotFound = errors.New("tile not found at source")

// Client downloads directory listings and tile archives from an SRTM mirror.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a client for the mirror rooted at source. Only http and
// https sources are supported.
func NewClient(source string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) (*Client, error) {
	base, err := ParseSource(source)
	if err != nil {
		return nil, err
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: base,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// ParseSource validates a mirror URL and normalizes it to end with a slash.
func ParseSource(source string) (*url.URL, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("the source URL is not valid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("the source's scheme (%q) is not supported", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("the source URL %q has no host", source)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// Source returns the normalized mirror URL.
func (c *Client) Source() string { return c.baseURL.String() }

// FetchArchive downloads the archive at a path relative to the mirror root.
func (c *Client) FetchArchive(ctx context.Context, relPath string) ([]byte, error) {
	ref, err := url.Parse(relPath)
	if err != nil {
		return nil, fmt.Errorf("parse tile path %q: %w", relPath, err)
	}
	u := c.baseURL.ResolveReference(ref)

	start := time.Now()
	body, err := c.get(ctx, u.String(), maxArchiveBytes)
	c.metrics.TileDownloadDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, ErrTileNotFound):
		c.metrics.TileDownloads.WithLabelValues("missing").Inc()
		return nil, err
	case err != nil:
		c.metrics.TileDownloads.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.TileDownloads.WithLabelValues("success").Inc()
	c.logger.Debug("downloaded srtm archive", "url", u.String(), "bytes", len(body))
	return body, nil
}

func (c *Client) get(ctx context.Context, fullURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", fullURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("get %s: %w", fullURL, ErrTileNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("srtm source error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fullURL, err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("read %s: response exceeds %d bytes", fullURL, limit)
	}
	return body, nil
}
