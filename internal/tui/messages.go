package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/paperdeck/paperdeck/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// AssetsLoadedMsg signals that the shelf listing arrived. The collection
// replaces the currently shown one wholesale; an empty slice means the
// shelf is genuinely empty.
type AssetsLoadedMsg struct {
	Assets []domain.Asset
}

// SelectAckMsg carries the server's answer to a selection sync. The view
// already moved optimistically before this arrives; a non-nil Err only
// produces a warning, never a revert.
type SelectAckMsg struct {
	Path string
	Err  error
}

// UploadProgressMsg reports upload progress for one session. NextCmd is
// the continuation that reads the next event from the transport stream.
type UploadProgressMsg struct {
	SessionID string
	Percent   int
	NextCmd   tea.Cmd
}

// UploadDoneMsg signals that an upload session finished, one way or the
// other. Reason is empty on success.
type UploadDoneMsg struct {
	SessionID string
	Receipt   domain.UploadReceipt
	Reason    string
}

// SubmitUploadMsg asks the controller to start uploading a picked file
type SubmitUploadMsg struct {
	Candidate domain.UploadCandidate
}

// SourceLoadedMsg signals that a document URL answered the reachability probe
type SourceLoadedMsg struct {
	URL string
}

// SourceFailedMsg signals that a document URL did not answer the probe
type SourceFailedMsg struct {
	URL string
	Err error
}

// StatusLevel classifies a transient status-bar notification
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusSuccess
	StatusWarning
	StatusError
)

// StatusMsg sets the status-bar notification. The bar holds one
// notification at a time; a new one replaces the previous one.
type StatusMsg struct {
	Message string
	Level   StatusLevel
}

// ClearStatusMsg clears the status-bar notification. Seq identifies the
// notification the clear was scheduled for; a clear whose notification has
// already been replaced is ignored.
type ClearStatusMsg struct {
	Seq int
}

// RefreshMsg triggers a reload of the shelf listing
type RefreshMsg struct{}

// TickMsg is a general tick message for animations
type TickMsg struct{}

// ViewerOpenedMsg signals that the external viewer accepted the document
type ViewerOpenedMsg struct {
	URL string
}

// DownloadDoneMsg signals that a document finished saving locally
type DownloadDoneMsg struct {
	Path string
	Err  error
}
