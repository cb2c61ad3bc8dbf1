package shelf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/paperdeck/paperdeck/internal/config"
	"github.com/paperdeck/paperdeck/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Paperdeck/1.0"
)

// Client implements domain.Synchronizer for a shelf server. It keeps the
// server's notion of the current asset in sync and fetches the listing; it
// never touches the rendering surface.
type Client struct {
	baseURL    string
	selectPath string
	listPath   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new shelf API client
func NewClient(cfg config.ServerConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		selectPath: cfg.SelectPath,
		listPath:   cfg.ListPath,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// doPost performs one POST exchange and classifies the outcome: network
// failures map to domain.ErrServerOffline, non-2xx statuses and
// success=false replies to domain.RemoteError, unparseable 2xx bodies to
// domain.ErrBadResponse.
func (c *Client) doPost(ctx context.Context, path string, payload interface{}) (*apiResponse, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	reqURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("shelf request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("shelf request failed", "url", reqURL, "error", err)
		return nil, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("shelf request error", "status", resp.StatusCode, "body", string(respBody))
		return nil, &domain.RemoteError{Reason: fmt.Sprintf("http_status:%d", resp.StatusCode)}
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		c.logger.Error("shelf response parse error", "error", err, "bodyLen", len(respBody))
		return nil, domain.ErrBadResponse
	}

	if !parsed.Success {
		reason := parsed.Error
		if reason == "" {
			reason = "unknown"
		}
		return nil, &domain.RemoteError{Reason: reason}
	}

	return &parsed, nil
}

// Select tells the server which asset is current and awaits acknowledgement
func (c *Client) Select(ctx context.Context, assetPath string) error {
	_, err := c.doPost(ctx, c.selectPath, selectRequest{File: assetPath})
	if err != nil {
		return err
	}
	c.logger.Info("selection acknowledged", "path", assetPath)
	return nil
}

// ListAssets returns the full asset collection known to the server. The
// caller replaces its collection wholesale; an empty result is a valid,
// explicit empty state.
func (c *Client) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	resp, err := c.doPost(ctx, c.listPath, nil)
	if err != nil {
		return nil, err
	}
	assets := mapAssets(resp.Files, c.baseURL)
	c.logger.Debug("listing fetched", "count", len(assets))
	return assets, nil
}

// ProbeSource checks whether a document URL is loadable by the rendering
// surface. HEAD first; servers that reject HEAD get a one-byte ranged GET.
func (c *Client) ProbeSource(ctx context.Context, sourceURL string) error {
	status, err := c.probe(ctx, http.MethodHead, sourceURL)
	if err != nil {
		return err
	}
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		status, err = c.probe(ctx, http.MethodGet, sourceURL)
		if err != nil {
			return err
		}
	}
	if status < 200 || status > 299 {
		return &domain.RemoteError{Reason: fmt.Sprintf("http_status:%d", status)}
	}
	return nil
}

func (c *Client) probe(ctx context.Context, method, sourceURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, sourceURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-0")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("source probe failed", "url", sourceURL, "error", err)
		return 0, domain.ErrServerOffline
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode == http.StatusPartialContent {
		return http.StatusOK, nil
	}
	return resp.StatusCode, nil
}

// FetchSource opens a stream over a document URL for saving to disk.
// The caller must close the returned reader.
func (c *Client) FetchSource(ctx context.Context, sourceURL string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("source fetch failed", "url", sourceURL, "error", err)
		return nil, 0, domain.ErrServerOffline
	}

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, 0, &domain.RemoteError{Reason: fmt.Sprintf("http_status:%d", resp.StatusCode)}
	}

	return resp.Body, resp.ContentLength, nil
}
