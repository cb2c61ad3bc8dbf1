package shelf

import (
	"net/url"
	"strings"

	"github.com/paperdeck/paperdeck/internal/domain"
)

// mapAssets converts listing entries to domain assets. Entries without a
// name are dropped; the path falls back to the name, and relative URLs are
// resolved against the server base.
func mapAssets(entries []fileEntry, baseURL string) []domain.Asset {
	assets := make([]domain.Asset, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		path := e.Path
		if path == "" {
			path = e.Name
		}
		assets = append(assets, domain.Asset{
			Name:      e.Name,
			Path:      path,
			URL:       resolveURL(baseURL, e.URL, path),
			SizeBytes: e.Size,
		})
	}
	return assets
}

// resolveURL produces the absolute URL the rendering surface loads. A
// server-supplied URL wins (resolved against the base when relative);
// otherwise the URL is derived from the asset path.
func resolveURL(baseURL, rawURL, path string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return rawURL
	}

	if rawURL != "" {
		ref, err := url.Parse(rawURL)
		if err != nil {
			return rawURL
		}
		return base.ResolveReference(ref).String()
	}

	ref := &url.URL{Path: "/files/" + strings.TrimPrefix(path, "/")}
	return base.ResolveReference(ref).String()
}
