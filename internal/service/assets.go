package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/paperdeck/paperdeck/internal/domain"
)

// AssetService handles shelf browsing and selection with caching.
// The cached listing is replaced wholesale on every refresh, including
// with an empty collection, so a shelf that became empty is rendered
// empty rather than showing stale entries.
type AssetService struct {
	sync   domain.Synchronizer
	source domain.SourceRepository
	cache  domain.ListingCache
	logger *slog.Logger
}

// NewAssetService creates a new asset service
func NewAssetService(sync domain.Synchronizer, source domain.SourceRepository, cache domain.ListingCache, logger *slog.Logger) *AssetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssetService{
		sync:   sync,
		source: source,
		cache:  cache,
		logger: logger,
	}
}

// ListAssets fetches the asset collection from the server and replaces the
// cached listing with it
func (s *AssetService) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	assets, err := s.sync.ListAssets(ctx)
	if err != nil {
		s.logger.Error("failed to list assets", "error", err)
		return nil, err
	}

	if err := s.cache.SaveAssets(assets); err != nil {
		s.logger.Warn("failed to cache asset listing", "error", err)
	}

	s.logger.Info("loaded asset listing", "count", len(assets))
	return assets, nil
}

// CachedAssets returns the last persisted listing without touching the
// network, for instant startup rendering. The second return is false when
// nothing has been cached yet.
func (s *AssetService) CachedAssets() ([]domain.Asset, bool) {
	return s.cache.GetAssets()
}

// Select tells the server which asset is current and records the choice
// locally once the server acknowledges it
func (s *AssetService) Select(ctx context.Context, asset domain.Asset) error {
	if err := s.sync.Select(ctx, asset.Path); err != nil {
		s.logger.Warn("selection sync failed", "path", asset.Path, "error", err)
		return err
	}

	if err := s.cache.SaveCurrent(asset.Path); err != nil {
		s.logger.Warn("failed to persist current selection", "path", asset.Path, "error", err)
	}

	s.logger.Debug("selection synced", "path", asset.Path)
	return nil
}

// CurrentPath returns the locally recorded selection, empty when none
func (s *AssetService) CurrentPath() string {
	path, ok := s.cache.GetCurrent()
	if !ok {
		return ""
	}
	return path
}

// Filter ranks assets against a query by fuzzy-matching their display
// titles. An empty query returns the input unchanged.
func (s *AssetService) Filter(assets []domain.Asset, query string) []domain.Asset {
	if query == "" {
		return assets
	}

	titles := make([]string, len(assets))
	byTitle := make(map[string][]domain.Asset, len(assets))
	for i, a := range assets {
		title := strings.ToLower(a.DisplayTitle())
		titles[i] = title
		byTitle[title] = append(byTitle[title], a)
	}

	matches := fuzzy.RankFindFold(query, titles)
	sort.Sort(matches)

	results := make([]domain.Asset, 0, len(matches))
	seen := make(map[string]int, len(matches))
	for _, m := range matches {
		bucket := byTitle[m.Target]
		idx := seen[m.Target]
		if idx < len(bucket) {
			results = append(results, bucket[idx])
			seen[m.Target] = idx + 1
		}
	}

	return results
}

// ProbeSource checks that an asset's document URL is reachable
func (s *AssetService) ProbeSource(ctx context.Context, sourceURL string) error {
	return s.source.ProbeSource(ctx, sourceURL)
}

// SaveTo streams an asset's document into the given directory, returning
// the path of the written file
func (s *AssetService) SaveTo(ctx context.Context, asset domain.Asset, dir string) (string, error) {
	if asset.URL == "" {
		return "", domain.ErrSourceUnavailable
	}

	body, _, err := s.source.FetchSource(ctx, asset.URL)
	if err != nil {
		s.logger.Error("failed to fetch document", "url", asset.URL, "error", err)
		return "", err
	}
	defer body.Close()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}

	dest := filepath.Join(dir, filepath.Base(asset.Name))
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating download file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, body); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("writing download: %w", err)
	}

	s.logger.Info("saved document", "path", dest)
	return dest, nil
}
