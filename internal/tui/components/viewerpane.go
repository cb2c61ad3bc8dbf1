package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/paperdeck/paperdeck/internal/domain"
	"github.com/paperdeck/paperdeck/internal/tui/styles"
	"github.com/paperdeck/paperdeck/internal/viewer"
)

// errorFallbackText is shown when a document URL stops answering. There
// is no retry button; picking another document or re-uploading is the
// recovery path.
const errorFallbackText = "The document could not be loaded.\nIt may have been removed from the server, or the server may be unreachable."

// ViewerPane is the rendering surface for the currently selected document.
// It delegates state tracking to a LoadController: only the Loading state
// blocks the pane with an overlay, and a load failure renders a static
// message in place of the document card.
type ViewerPane struct {
	state *viewer.LoadController
	asset *domain.Asset

	width        int
	height       int
	spinnerFrame int
}

// NewViewerPane creates an idle pane
func NewViewerPane() *ViewerPane {
	return &ViewerPane{state: viewer.NewLoadController()}
}

// SetAsset binds the pane to a new document and starts loading it
func (p *ViewerPane) SetAsset(asset domain.Asset) {
	a := asset
	p.asset = &a
	p.state.SetSource(asset.URL)
}

// Clear returns the pane to the empty state (shelf became empty)
func (p *ViewerPane) Clear() {
	p.asset = nil
	p.state.Reset()
}

// LoadFinished records a successful load signal for a source URL
func (p *ViewerPane) LoadFinished(url string) {
	p.state.LoadFinished(url)
}

// LoadFailed records a failed load signal for a source URL
func (p *ViewerPane) LoadFailed(url string) {
	p.state.LoadFailed(url)
}

// State exposes the current surface state
func (p *ViewerPane) State() viewer.LoadState {
	return p.state.State()
}

// Asset returns the document the pane is bound to, nil when empty
func (p *ViewerPane) Asset() *domain.Asset {
	return p.asset
}

// SetSize updates the pane dimensions
func (p *ViewerPane) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetSpinnerFrame advances the loading spinner
func (p *ViewerPane) SetSpinnerFrame(frame int) {
	p.spinnerFrame = frame
}

// View renders the pane
func (p *ViewerPane) View() string {
	style := styles.InactiveBorder
	frameW, frameH := style.GetFrameSize()
	innerW := p.width - frameW
	innerH := p.height - frameH

	var content string
	switch p.state.State() {
	case viewer.StateLoading:
		content = p.renderLoading()
	case viewer.StateLoaded:
		content = p.renderCard()
	case viewer.StateErrored:
		content = styles.WarningStyle.Render(errorFallbackText)
	default:
		content = p.renderEmpty()
	}

	centered := lipgloss.Place(innerW, innerH, lipgloss.Center, lipgloss.Center, content)
	return style.Render(centered)
}

func (p *ViewerPane) renderEmpty() string {
	return styles.DimStyle.Render("No document selected.") + "\n\n" +
		styles.SubtitleStyle.Render("Press ") +
		styles.HelpKeyStyle.Render("u") +
		styles.SubtitleStyle.Render(" to upload a PDF.")
}

func (p *ViewerPane) renderLoading() string {
	spinner := styles.SpinnerStyle.Render(spinnerFrames[p.spinnerFrame%len(spinnerFrames)])
	return spinner + " " + styles.SubtitleStyle.Render("Loading document...")
}

func (p *ViewerPane) renderCard() string {
	if p.asset == nil {
		return p.renderEmpty()
	}

	title := styles.TitleStyle.Render(p.asset.DisplayTitle())
	path := styles.DimStyle.Render(p.asset.Path)
	size := styles.SubtitleStyle.Render(p.asset.FormattedSize())
	hint := styles.HelpKeyStyle.Render("o") + styles.HelpDescStyle.Render(" open in viewer  ") +
		styles.HelpKeyStyle.Render("d") + styles.HelpDescStyle.Render(" download")

	return title + "\n" + path + "\n" + size + "\n\n" + hint
}
