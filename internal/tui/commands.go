package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/paperdeck/paperdeck/internal/domain"
)

const (
	// refreshDelay is how long a freshly uploaded document gets to settle
	// on the server before the listing is reloaded
	refreshDelay = 1200 * time.Millisecond

	// statusVisibleFor is how long a transient notification stays on the
	// status bar before clearing itself
	statusVisibleFor = 5 * time.Second
)

// Command factories for async operations

// LoadAssetsCmd fetches the shelf listing
func LoadAssetsCmd(provider AssetProvider) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		assets, err := provider.ListAssets(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading shelf"}
		}
		return AssetsLoadedMsg{Assets: assets}
	}
}

// SelectAssetCmd syncs a selection to the server
func SelectAssetCmd(provider AssetProvider, asset domain.Asset) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := provider.Select(ctx, asset)
		return SelectAckMsg{Path: asset.Path, Err: err}
	}
}

// LoadSourceCmd probes a document URL so the rendering surface can settle
func LoadSourceCmd(provider AssetProvider, sourceURL string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := provider.ProbeSource(ctx, sourceURL); err != nil {
			return SourceFailedMsg{URL: sourceURL, Err: err}
		}
		return SourceLoadedMsg{URL: sourceURL}
	}
}

// StartUploadCmd begins an upload session and pumps its event stream to
// the UI using a continuation pattern: each UploadProgressMsg carries the
// command that reads the next event.
func StartUploadCmd(transport domain.UploadTransport, session domain.UploadSession) tea.Cmd {
	return func() tea.Msg {
		// No timeout here. Large files on slow links take as long as
		// they take; the transport reports failures on its own.
		events, err := transport.Upload(context.Background(), session.Candidate)
		if err != nil {
			return UploadDoneMsg{SessionID: session.ID, Reason: domain.FailureReason(err)}
		}
		return readUploadEvent(session.ID, events)
	}
}

// readUploadEvent reads one event from the stream and converts it into a
// message, attaching the continuation while the upload is still running
func readUploadEvent(sessionID string, events <-chan domain.UploadEvent) tea.Msg {
	ev, ok := <-events
	if !ok {
		// The transport closes the channel after a terminal event, so a
		// bare close means it went away without reporting an outcome.
		return UploadDoneMsg{SessionID: sessionID, Reason: "unknown"}
	}

	switch ev.Kind {
	case domain.UploadEventProgress:
		return UploadProgressMsg{
			SessionID: sessionID,
			Percent:   ev.Percent,
			NextCmd:   listenUploadCmd(sessionID, events),
		}
	case domain.UploadEventSucceeded:
		return UploadDoneMsg{SessionID: sessionID, Receipt: ev.Receipt}
	default:
		return UploadDoneMsg{SessionID: sessionID, Reason: ev.Reason}
	}
}

// listenUploadCmd returns a command that reads the next upload event
func listenUploadCmd(sessionID string, events <-chan domain.UploadEvent) tea.Cmd {
	return func() tea.Msg {
		return readUploadEvent(sessionID, events)
	}
}

// ScheduleRefreshCmd triggers a listing reload after the settle delay
func ScheduleRefreshCmd() tea.Cmd {
	return tea.Tick(refreshDelay, func(time.Time) tea.Msg {
		return RefreshMsg{}
	})
}

// ClearStatusCmd clears the status bar after the visibility window. The
// sequence number ties the clear to the notification it was scheduled for.
func ClearStatusCmd(seq int) tea.Cmd {
	return tea.Tick(statusVisibleFor, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// OpenViewerCmd hands a document URL to the external viewer
func OpenViewerCmd(opener ViewerOpener, sourceURL string) tea.Cmd {
	return func() tea.Msg {
		if err := opener.Open(sourceURL); err != nil {
			return ErrMsg{Err: err, Context: "opening viewer"}
		}
		return ViewerOpenedMsg{URL: sourceURL}
	}
}

// DownloadAssetCmd saves a document into the given directory
func DownloadAssetCmd(provider AssetProvider, asset domain.Asset, dir string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		path, err := provider.SaveTo(ctx, asset, dir)
		return DownloadDoneMsg{Path: path, Err: err}
	}
}
