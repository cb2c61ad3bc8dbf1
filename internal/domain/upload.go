package domain

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// MaxUploadBytes is the fixed upload size ceiling (10 MiB).
const MaxUploadBytes = 10 * 1024 * 1024

// AllowedExtension is the only file extension accepted for upload.
const AllowedExtension = ".pdf"

// UploadCandidate describes a local file picked for upload.
// The declared MIME type is advisory only and never decides acceptance.
type UploadCandidate struct {
	FileName  string
	LocalPath string
	MimeType  string
	SizeBytes int64
}

// NewCandidateFromFile builds an UploadCandidate from a local path.
func NewCandidateFromFile(path string) (UploadCandidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return UploadCandidate{}, fmt.Errorf("failed to stat candidate: %w", err)
	}
	if info.IsDir() {
		return UploadCandidate{}, fmt.Errorf("candidate %q is a directory", path)
	}
	return UploadCandidate{
		FileName:  filepath.Base(path),
		LocalPath: path,
		MimeType:  mime.TypeByExtension(filepath.Ext(path)),
		SizeBytes: info.Size(),
	}, nil
}

// UploadStatus represents the lifecycle of an upload session
type UploadStatus int

const (
	UploadIdle UploadStatus = iota
	UploadValidated
	UploadInFlight
	UploadSucceeded
	UploadFailed
)

// String returns a human-readable representation of the upload status
func (s UploadStatus) String() string {
	switch s {
	case UploadIdle:
		return "Idle"
	case UploadValidated:
		return "Validated"
	case UploadInFlight:
		return "InFlight"
	case UploadSucceeded:
		return "Succeeded"
	case UploadFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// UploadSession tracks the one live upload attempt. At most one session may
// be in flight at a time; the controller owns it exclusively.
type UploadSession struct {
	ID              string
	Candidate       UploadCandidate
	ProgressPercent int // in [0,100]
	Status          UploadStatus
}

// NewUploadSession creates a session for a validated candidate.
func NewUploadSession(c UploadCandidate) *UploadSession {
	return &UploadSession{
		ID:        uuid.NewString(),
		Candidate: c,
		Status:    UploadValidated,
	}
}

// UploadEventKind discriminates the events emitted during an upload attempt
type UploadEventKind int

const (
	UploadEventProgress UploadEventKind = iota
	UploadEventSucceeded
	UploadEventFailed
)

// UploadReceipt is the server metadata returned with a successful upload.
type UploadReceipt struct {
	Name string
	Path string
	URL  string
}

// UploadEvent is one element of the event sequence an upload attempt emits.
// Progress percents are monotonically non-decreasing and reach 100 before
// the terminal Succeeded event.
type UploadEvent struct {
	Kind    UploadEventKind
	Percent int           // set for Progress events
	Receipt UploadReceipt // set for Succeeded events
	Reason  string        // set for Failed events
}
