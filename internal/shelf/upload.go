package shelf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/paperdeck/paperdeck/internal/config"
	"github.com/paperdeck/paperdeck/internal/domain"
)

// uploadFieldName is the multipart form field the server expects.
const uploadFieldName = "pdf_file"

// Uploader implements domain.UploadTransport: one multipart POST per
// attempt, progress proportional to bytes sent, no automatic retry.
// A failed upload is only re-attempted by a new user action; partial
// multipart retries are unsafe without resumable-upload support.
type Uploader struct {
	uploadURL  string
	httpClient *http.Client
	logger     *slog.Logger
	active     atomic.Bool
}

// NewUploader creates a new upload transport for the shelf server.
// No client-side timeout: slow links legitimately take a while to move
// 10 MiB, and the context governs cancellation.
func NewUploader(cfg config.ServerConfig, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{
		uploadURL:  cfg.URL + cfg.UploadPath,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Upload performs a single upload attempt and returns its event stream.
// Single-flight: while an attempt is active, further calls return
// domain.ErrUploadInFlight. The channel is closed after the terminal
// Succeeded or Failed event.
func (u *Uploader) Upload(ctx context.Context, candidate domain.UploadCandidate) (<-chan domain.UploadEvent, error) {
	if !u.active.CompareAndSwap(false, true) {
		return nil, domain.ErrUploadInFlight
	}

	events := make(chan domain.UploadEvent, 8)
	go func() {
		defer u.active.Store(false)
		defer close(events)
		u.run(ctx, candidate, events)
	}()
	return events, nil
}

// run executes the attempt and emits events. Any failure path emits exactly
// one Failed event with a classified reason; success emits a final 100
// Progress followed by Succeeded.
func (u *Uploader) run(ctx context.Context, candidate domain.UploadCandidate, events chan<- domain.UploadEvent) {
	body, err := buildMultipartBody(candidate)
	if err != nil {
		u.logger.Error("upload body build failed", "file", candidate.FileName, "error", err)
		events <- domain.UploadEvent{Kind: domain.UploadEventFailed, Reason: err.Error()}
		return
	}

	reader := &progressReader{
		r:     bytes.NewReader(body.payload),
		total: int64(len(body.payload)),
		emit: func(percent int) {
			events <- domain.UploadEvent{Kind: domain.UploadEventProgress, Percent: percent}
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.uploadURL, reader)
	if err != nil {
		events <- domain.UploadEvent{Kind: domain.UploadEventFailed, Reason: err.Error()}
		return
	}
	req.Header.Set("Content-Type", body.contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.ContentLength = int64(len(body.payload))

	u.logger.Info("upload started", "file", candidate.FileName, "size", candidate.SizeBytes, "mime", candidate.MimeType)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		u.logger.Error("upload network failure", "file", candidate.FileName, "error", err)
		events <- domain.UploadEvent{Kind: domain.UploadEventFailed, Reason: "network_error"}
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		events <- domain.UploadEvent{Kind: domain.UploadEventFailed, Reason: "network_error"}
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		u.logger.Error("upload rejected", "file", candidate.FileName, "status", resp.StatusCode)
		events <- domain.UploadEvent{Kind: domain.UploadEventFailed, Reason: fmt.Sprintf("http_status:%d", resp.StatusCode)}
		return
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		u.logger.Error("upload response parse error", "file", candidate.FileName, "error", err)
		events <- domain.UploadEvent{Kind: domain.UploadEventFailed, Reason: "bad_response"}
		return
	}

	if !parsed.Success {
		reason := parsed.Error
		if reason == "" {
			reason = "unknown"
		}
		events <- domain.UploadEvent{Kind: domain.UploadEventFailed, Reason: reason}
		return
	}

	// Final 100 is guaranteed before the terminal Succeeded event even when
	// the transport consumed the body in one read.
	events <- domain.UploadEvent{Kind: domain.UploadEventProgress, Percent: 100}
	events <- domain.UploadEvent{
		Kind: domain.UploadEventSucceeded,
		Receipt: domain.UploadReceipt{
			Name: parsed.Name,
			Path: parsed.Path,
			URL:  parsed.URL,
		},
	}
	u.logger.Info("upload succeeded", "file", candidate.FileName)
}

type multipartBody struct {
	payload     []byte
	contentType string
}

// buildMultipartBody assembles the full request body up front. The ceiling
// is 10 MiB, so buffering beats streaming here: it gives an exact total for
// progress reporting and a rewindable body.
func buildMultipartBody(candidate domain.UploadCandidate) (multipartBody, error) {
	f, err := os.Open(candidate.LocalPath)
	if err != nil {
		return multipartBody{}, fmt.Errorf("failed to open candidate: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(uploadFieldName, candidate.FileName)
	if err != nil {
		return multipartBody{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return multipartBody{}, fmt.Errorf("failed to read candidate: %w", err)
	}
	if err := mw.Close(); err != nil {
		return multipartBody{}, fmt.Errorf("failed to finalize form: %w", err)
	}

	return multipartBody{payload: buf.Bytes(), contentType: mw.FormDataContentType()}, nil
}

// progressReader emits whole-percent progress as the HTTP transport drains
// the request body. Percents are monotonically non-decreasing by
// construction: emit fires only when the integer percent advances.
type progressReader struct {
	r     io.Reader
	total int64
	sent  int64
	last  int
	emit  func(percent int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 {
		p.sent += int64(n)
		percent := int(p.sent * 100 / p.total)
		if percent > 100 {
			percent = 100
		}
		if percent > p.last {
			p.last = percent
			p.emit(percent)
		}
	}
	return n, err
}
