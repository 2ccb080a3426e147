package srtm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	// IndexFileName is the index file kept inside the SRTM directory.
	IndexFileName = "srtm-index.json"

	maxCrawlDepth   = 3
	maxListingBytes = 8 << 20
)

// Index maps tile names to archive paths relative to the mirror root.
type Index struct {
	Source    string            `json:"source"`
	Generated time.Time         `json:"generated"`
	Tiles     map[string]string `json:"tiles"`
}

// Lookup returns the archive path of a tile.
func (ix *Index) Lookup(id TileID) (string, bool) {
	p, ok := ix.Tiles[id.Name()]
	return p, ok
}

// LoadIndex reads an index file written by Save.
func LoadIndex(file string) (*Index, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read srtm index: %w", err)
	}
	var ix Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("decode srtm index: %w", err)
	}
	if len(ix.Tiles) == 0 {
		return nil, errors.New("srtm index lists no tiles")
	}
	return &ix, nil
}

// Save writes the index as JSON, creating the parent directory.
func (ix *Index) Save(file string) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	data, err := json.MarshalIndent(ix, "", "  ")
	if err != nil {
		return fmt.Errorf("encode srtm index: %w", err)
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return fmt.Errorf("write srtm index: %w", err)
	}
	return nil
}

// GenerateIndex crawls the mirror's HTML directory listings, descending into
// sub-directories such as the SRTM3 continent folders, and records every
// tile archive it finds.
func GenerateIndex(ctx context.Context, c *Client) (*Index, error) {
	root := c.baseURL
	ix := &Index{Source: root.String(), Generated: time.Now().UTC(), Tiles: map[string]string{}}

	type dir struct {
		u     *url.URL
		depth int
	}
	queue := []dir{{u: root}}
	seen := map[string]bool{root.Path: true}

	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]

		body, err := c.get(ctx, d.u.String(), maxListingBytes)
		if err != nil {
			if d.depth == 0 || ctx.Err() != nil {
				return nil, fmt.Errorf("list %s: %w", d.u, err)
			}
			c.logger.Warn("skipping unreadable srtm directory", "url", d.u.String(), "error", err)
			continue
		}
		links, err := parseListing(body)
		if err != nil {
			return nil, fmt.Errorf("parse listing %s: %w", d.u, err)
		}

		for _, href := range links {
			ref, err := url.Parse(href)
			if err != nil || ref.RawQuery != "" {
				continue
			}
			target := d.u.ResolveReference(ref)
			if target.Host != root.Host || !strings.HasPrefix(target.Path, root.Path) {
				continue
			}

			if strings.HasSuffix(target.Path, "/") {
				if d.depth+1 > maxCrawlDepth || seen[target.Path] {
					continue
				}
				seen[target.Path] = true
				queue = append(queue, dir{u: target, depth: d.depth + 1})
				continue
			}

			id, err := ParseTileName(path.Base(target.Path))
			if err != nil {
				continue
			}
			ix.Tiles[id.Name()] = strings.TrimPrefix(target.Path, root.Path)
		}
	}

	c.logger.Info("srtm index generated", "source", ix.Source, "tiles", len(ix.Tiles))
	return ix, nil
}

// parseListing returns the href of every anchor in an HTML page.
func parseListing(body []byte) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var links []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key == "href" && a.Val != "" {
					links = append(links, a.Val)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return links, nil
}

// OpenIndex loads the index stored in dir, regenerating it from the mirror
// when regenerate is set, when the file cannot be loaded, or when it was
// built for a different source.
func OpenIndex(ctx context.Context, dir string, c *Client, regenerate bool, logger *slog.Logger) (*Index, error) {
	file := filepath.Join(dir, IndexFileName)

	if !regenerate {
		ix, err := LoadIndex(file)
		switch {
		case err != nil:
			logger.Warn("srtm index unavailable, regenerating", "file", file, "error", err)
		case ix.Source != c.Source():
			logger.Warn("srtm index built for another source, regenerating", "file", file, "index_source", ix.Source)
		default:
			logger.Debug("srtm index loaded", "file", file, "tiles", len(ix.Tiles))
			return ix, nil
		}
	}

	logger.Info("generating srtm index", "source", c.Source())
	ix, err := GenerateIndex(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := ix.Save(file); err != nil {
		return nil, err
	}
	return ix, nil
}

// MirrorFetcher resolves tiles through the mirror index and downloads them.
// The index is opened on first use so runs served entirely from the tile
// store never touch the network.
type MirrorFetcher struct {
	client     *Client
	dir        string
	regenerate bool
	logger     *slog.Logger
	index      *Index
}

// NewMirrorFetcher creates a fetcher keeping its index in dir.
func NewMirrorFetcher(client *Client, dir string, regenerate bool, logger *slog.Logger) *MirrorFetcher {
	return &MirrorFetcher{client: client, dir: dir, regenerate: regenerate, logger: logger}
}

// Index opens the index if necessary and returns it.
func (f *MirrorFetcher) Index(ctx context.Context) (*Index, error) {
	if f.index != nil {
		return f.index, nil
	}
	ix, err := OpenIndex(ctx, f.dir, f.client, f.regenerate, f.logger)
	if err != nil {
		return nil, err
	}
	f.index = ix
	return ix, nil
}

// FetchTile implements Fetcher.
func (f *MirrorFetcher) FetchTile(ctx context.Context, id TileID) ([]byte, error) {
	ix, err := f.Index(ctx)
	if err != nil {
		return nil, err
	}
	rel, ok := ix.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%s not in index: %w", id.Name(), ErrTileNotFound)
	}
	return f.client.FetchArchive(ctx, rel)
}
