package tui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/paperdeck/paperdeck/internal/domain"
	"github.com/paperdeck/paperdeck/internal/tui/components"
	"github.com/paperdeck/paperdeck/internal/tui/styles"
)

const spinnerInterval = 100 * time.Millisecond

// AssetProvider is what the controller needs from the service layer
type AssetProvider interface {
	ListAssets(ctx context.Context) ([]domain.Asset, error)
	CachedAssets() ([]domain.Asset, bool)
	Filter(assets []domain.Asset, query string) []domain.Asset
	Select(ctx context.Context, asset domain.Asset) error
	CurrentPath() string
	ProbeSource(ctx context.Context, sourceURL string) error
	SaveTo(ctx context.Context, asset domain.Asset, dir string) (string, error)
}

// ViewerOpener hands a document URL to an external viewer
type ViewerOpener interface {
	Open(sourceURL string) error
}

// Model is the root controller. It owns the one live upload session, the
// selection state, and the status bar, and coordinates the shelf list with
// the rendering surface. Selection updates are optimistic: the surface
// moves immediately and a failed sync only produces a warning.
type Model struct {
	provider  AssetProvider
	transport domain.UploadTransport
	opener    ViewerOpener
	logger    *slog.Logger

	downloadDir string

	list *components.AssetList
	pane *components.ViewerPane
	form *components.UploadForm

	session   *domain.UploadSession
	selection domain.SelectionState

	showUpload bool
	showHelp   bool

	status      string
	statusLevel StatusLevel
	statusSeq   int

	width        int
	height       int
	spinnerFrame int
}

// NewModel creates the root controller
func NewModel(provider AssetProvider, transport domain.UploadTransport, opener ViewerOpener, downloadDir string, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}

	list := components.NewAssetList()
	list.SetFocused(true)

	m := &Model{
		provider:    provider,
		transport:   transport,
		opener:      opener,
		logger:      logger,
		downloadDir: downloadDir,
		list:        list,
		pane:        components.NewViewerPane(),
		form:        components.NewUploadForm(),
	}

	// Seed from the cache so the shelf renders before the first fetch
	if cached, ok := provider.CachedAssets(); ok {
		m.list.SetAssets(cached)
		m.list.SetCurrentPath(provider.CurrentPath())
	}

	return m
}

// Init fetches the listing and starts the animation tick
func (m *Model) Init() tea.Cmd {
	m.list.SetLoading(true)
	return tea.Batch(LoadAssetsCmd(m.provider), TickCmd(spinnerInterval))
}

// Update routes messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		m.spinnerFrame++
		m.list.SetSpinnerFrame(m.spinnerFrame)
		m.pane.SetSpinnerFrame(m.spinnerFrame)
		return m, TickCmd(spinnerInterval)

	case AssetsLoadedMsg:
		return m.handleAssetsLoaded(msg)

	case SelectAckMsg:
		return m.handleSelectAck(msg)

	case SourceLoadedMsg:
		m.pane.LoadFinished(msg.URL)
		return m, nil

	case SourceFailedMsg:
		m.logger.Warn("document probe failed", "url", msg.URL, "error", msg.Err)
		m.pane.LoadFailed(msg.URL)
		return m, nil

	case SubmitUploadMsg:
		return m.handleSubmitUpload(msg)

	case UploadProgressMsg:
		return m.handleUploadProgress(msg)

	case UploadDoneMsg:
		return m.handleUploadDone(msg)

	case RefreshMsg:
		m.showUpload = false
		m.list.SetLoading(true)
		return m, LoadAssetsCmd(m.provider)

	case StatusMsg:
		m.setStatus(msg.Message, msg.Level)
		return m, ClearStatusCmd(m.statusSeq)

	case ClearStatusMsg:
		// A clear scheduled for an already replaced notification is stale
		if msg.Seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case ViewerOpenedMsg:
		m.setStatus("Opened in external viewer", StatusInfo)
		return m, ClearStatusCmd(m.statusSeq)

	case DownloadDoneMsg:
		if msg.Err != nil {
			m.setStatus("Download failed: "+msg.Err.Error(), StatusError)
		} else {
			m.setStatus("Saved to "+msg.Path, StatusSuccess)
		}
		return m, ClearStatusCmd(m.statusSeq)

	case ErrMsg:
		m.logger.Error("operation failed", "context", msg.Context, "error", msg.Err)
		m.list.SetLoading(false)
		m.setStatus(msg.Error(), StatusError)
		return m, ClearStatusCmd(m.statusSeq)
	}

	return m, nil
}

// handleKey routes keyboard input
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The upload modal swallows input while visible
	if m.showUpload {
		if key.Matches(msg, Keys.Escape) {
			// Hide the modal. A running transfer keeps going in the
			// background and reports through the session messages.
			m.showUpload = false
			return m, nil
		}
		cmd, candidate := m.form.Update(msg)
		if candidate != nil {
			submit := *candidate
			return m, tea.Batch(cmd, func() tea.Msg {
				return SubmitUploadMsg{Candidate: submit}
			})
		}
		return m, cmd
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	// While the filter input has focus, keystrokes belong to it. The
	// list keeps the query; the service ranks the listing against it.
	if m.list.IsFilterTyping() {
		cmd := m.list.Update(msg)
		if query := m.list.FilterQuery(); query != "" {
			m.list.SetFilterResults(m.provider.Filter(m.list.Assets(), query))
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, Keys.Filter):
		m.list.ToggleFilter()
		return m, nil

	case key.Matches(msg, Keys.Refresh):
		m.list.SetLoading(true)
		return m, LoadAssetsCmd(m.provider)

	case key.Matches(msg, Keys.Upload):
		m.showUpload = true
		m.form = components.NewUploadForm()
		m.layout()
		return m, m.form.Init()

	case key.Matches(msg, Keys.Enter):
		if asset := m.list.SelectedAsset(); asset != nil {
			return m, m.selectAsset(*asset)
		}
		return m, m.list.Update(msg)

	case key.Matches(msg, Keys.Open):
		if m.selection.Current != nil && m.selection.Current.URL != "" {
			return m, OpenViewerCmd(m.opener, m.selection.Current.URL)
		}
		m.setStatus("Nothing to open", StatusWarning)
		return m, ClearStatusCmd(m.statusSeq)

	case key.Matches(msg, Keys.Download):
		if m.selection.Current != nil {
			m.setStatus("Downloading "+m.selection.Current.Name+"...", StatusInfo)
			return m, DownloadAssetCmd(m.provider, *m.selection.Current, m.downloadDir)
		}
		m.setStatus("Nothing to download", StatusWarning)
		return m, ClearStatusCmd(m.statusSeq)

	default:
		return m, m.list.Update(msg)
	}
}

// handleAssetsLoaded applies a fresh listing. The shown collection is
// replaced wholesale, and when the previous selection is gone the first
// entry is selected through the regular selection-change path.
func (m *Model) handleAssetsLoaded(msg AssetsLoadedMsg) (tea.Model, tea.Cmd) {
	m.list.SetAssets(msg.Assets)
	m.list.SetCurrentPath(m.provider.CurrentPath())

	if len(msg.Assets) == 0 {
		m.selection = domain.SelectionState{}
		m.pane.Clear()
		m.setStatus("The shelf is empty. Press u to upload a PDF.", StatusInfo)
		return m, nil
	}

	// Keep the current selection when it survived the refresh
	if m.selection.Current != nil {
		for _, a := range msg.Assets {
			if a.Path == m.selection.Current.Path {
				return m, nil
			}
		}
	}

	return m, m.selectAsset(msg.Assets[0])
}

// selectAsset is the single selection-change path: the surface and local
// state move immediately, then the server sync and the source probe run
// in the background
func (m *Model) selectAsset(asset domain.Asset) tea.Cmd {
	a := asset
	m.selection.Current = &a
	m.selection.PendingAck = true
	m.pane.SetAsset(asset)

	cmds := []tea.Cmd{SelectAssetCmd(m.provider, asset)}
	if asset.URL != "" {
		cmds = append(cmds, LoadSourceCmd(m.provider, asset.URL))
	}
	return tea.Batch(cmds...)
}

// handleSelectAck records the server's answer to a selection sync. Acks
// apply in arrival order; an ack for a superseded selection only clears
// nothing. A failed sync warns without reverting the surface.
func (m *Model) handleSelectAck(msg SelectAckMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.logger.Warn("selection sync failed", "path", msg.Path, "error", msg.Err)
		m.setStatus("Selection may not be saved on the server", StatusWarning)
		return m, ClearStatusCmd(m.statusSeq)
	}

	m.list.SetCurrentPath(msg.Path)
	if m.selection.Current != nil && m.selection.Current.Path == msg.Path {
		m.selection.PendingAck = false
	}
	return m, nil
}

// handleSubmitUpload starts an upload session for a confirmed candidate.
// The candidate is validated again here: the form checks at pick time, but
// the file can change on disk between picking and confirming.
func (m *Model) handleSubmitUpload(msg SubmitUploadMsg) (tea.Model, tea.Cmd) {
	if m.session != nil && m.session.Status == domain.UploadInFlight {
		m.setStatus("An upload is already running", StatusWarning)
		return m, ClearStatusCmd(m.statusSeq)
	}

	if result := domain.ValidateCandidate(msg.Candidate); !result.Ok() {
		m.form.Fail(components.RejectionText(result.Reason()))
		return m, nil
	}

	m.session = domain.NewUploadSession(msg.Candidate)
	m.session.Status = domain.UploadInFlight
	m.form.SetProgress(0)
	m.logger.Info("upload started", "session", m.session.ID, "file", msg.Candidate.FileName, "bytes", msg.Candidate.SizeBytes)

	return m, StartUploadCmd(m.transport, *m.session)
}

// handleUploadProgress advances the live session and chains the next read
func (m *Model) handleUploadProgress(msg UploadProgressMsg) (tea.Model, tea.Cmd) {
	if m.session == nil || m.session.ID != msg.SessionID {
		return m, nil
	}

	m.session.ProgressPercent = msg.Percent
	m.form.SetProgress(msg.Percent)
	return m, msg.NextCmd
}

// handleUploadDone settles the live session. Success schedules a delayed
// listing reload so the server finishes registering the file; failure
// resets the form and re-enables the controls for another attempt.
func (m *Model) handleUploadDone(msg UploadDoneMsg) (tea.Model, tea.Cmd) {
	if m.session == nil || m.session.ID != msg.SessionID {
		return m, nil
	}

	if msg.Reason == "" {
		m.session.Status = domain.UploadSucceeded
		m.session.ProgressPercent = 100
		m.form.SetProgress(100)
		m.logger.Info("upload succeeded", "session", msg.SessionID, "name", msg.Receipt.Name)
		m.setStatus("Uploaded "+m.session.Candidate.FileName, StatusSuccess)
		return m, tea.Batch(ScheduleRefreshCmd(), ClearStatusCmd(m.statusSeq))
	}

	m.session.Status = domain.UploadFailed
	m.session.ProgressPercent = 0
	m.logger.Warn("upload failed", "session", msg.SessionID, "reason", msg.Reason)
	m.form.Fail(uploadFailureText(msg.Reason))
	m.setStatus("Upload failed", StatusError)
	return m, ClearStatusCmd(m.statusSeq)
}

// uploadFailureText maps a transport failure reason to the message shown
// to the user
func uploadFailureText(reason string) string {
	switch {
	case reason == "network_error":
		return "Upload failed: the server could not be reached."
	case reason == "bad_response":
		return "Upload failed: the server returned an unexpected response."
	case strings.HasPrefix(reason, "http_status:"):
		return "Upload failed: server error (" + strings.TrimPrefix(reason, "http_status:") + ")."
	case reason == "unknown":
		return "Upload failed."
	default:
		return "Upload failed: " + reason
	}
}

func (m *Model) setStatus(message string, level StatusLevel) {
	m.statusSeq++
	m.status = message
	m.statusLevel = level
}

// layout distributes the window between the shelf column and the pane
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	mainHeight := m.height - 2 // header + status bar
	listWidth := m.width * 2 / 5
	if listWidth < 24 {
		listWidth = 24
	}
	if listWidth > m.width-20 {
		listWidth = m.width / 2
	}

	m.list.SetSize(listWidth, mainHeight)
	m.pane.SetSize(m.width-listWidth, mainHeight)

	formWidth := m.width / 2
	if formWidth < 40 {
		formWidth = 40
	}
	m.form.SetSize(formWidth, mainHeight)
}

// View renders the application
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	footer := m.renderStatusBar()

	if m.showUpload {
		modal := lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, m.form.View())
		return header + "\n" + modal + "\n" + footer
	}

	if m.showHelp {
		help := lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, m.renderHelp())
		return header + "\n" + help + "\n" + footer
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), m.pane.View())
	return header + "\n" + main + "\n" + footer
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render(" Paperdeck ")
	return styles.AccentStyle.Render("▍") + title
}

func (m *Model) renderStatusBar() string {
	if m.status != "" {
		var style = styles.SubtitleStyle
		switch m.statusLevel {
		case StatusSuccess:
			style = styles.SuccessStyle
		case StatusWarning:
			style = styles.WarningStyle
		case StatusError:
			style = styles.ErrorStyle
		}
		return " " + style.Render(styles.Truncate(m.status, m.width-2))
	}

	hint := "enter select · u upload · o open · d download · / filter · r refresh · ? help · q quit"
	return " " + styles.DimStyle.Render(styles.Truncate(hint, m.width-2))
}

func (m *Model) renderHelp() string {
	bindings := []key.Binding{
		Keys.Up, Keys.Down, Keys.Home, Keys.End, Keys.PageUp, Keys.PageDown,
		Keys.Enter, Keys.Upload, Keys.Open, Keys.Download,
		Keys.Filter, Keys.Refresh, Keys.Escape, Keys.Quit,
	}

	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render("Keys") + "\n")
	for _, binding := range bindings {
		h := binding.Help()
		b.WriteString(styles.HelpKeyStyle.Render(styles.Pad(h.Key, 12)))
		b.WriteString(styles.HelpDescStyle.Render(h.Desc))
		b.WriteString("\n")
	}
	b.WriteString("\n" + styles.DimStyle.Render("press any key to close"))

	return styles.OverlayStyle.Render(b.String())
}
