package domain

import (
	"context"
	"io"
)

// Synchronizer keeps the server-side notion of the current asset in sync
// and fetches the list of selectable assets. Select persists the choice only;
// updating the rendering surface is the caller's responsibility so the two
// concerns stay independently testable.
type Synchronizer interface {
	// Select tells the server which asset is current
	Select(ctx context.Context, assetPath string) error

	// ListAssets returns the full asset collection; callers replace their
	// known collection wholesale, never merge incrementally
	ListAssets(ctx context.Context) ([]Asset, error)
}

// UploadTransport performs a single upload attempt, reporting progress and
// classifying outcomes. Single-flight: a transport instance has at most one
// active upload, and calling it again while active is a caller error
// (ErrUploadInFlight).
type UploadTransport interface {
	Upload(ctx context.Context, candidate UploadCandidate) (<-chan UploadEvent, error)
}

// SourceRepository reaches the document bytes behind an asset URL.
// Probe is a cheap reachability check used to settle the rendering surface;
// Fetch streams the full document for local saving.
type SourceRepository interface {
	ProbeSource(ctx context.Context, sourceURL string) error
	FetchSource(ctx context.Context, sourceURL string) (io.ReadCloser, int64, error)
}

// ListingCache persists the last known asset collection for instant startup
// rendering and offline browsing.
type ListingCache interface {
	GetAssets() ([]Asset, bool)
	SaveAssets(assets []Asset) error
	GetCurrent() (string, bool)
	SaveCurrent(path string) error
}
