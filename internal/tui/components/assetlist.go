package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/paperdeck/paperdeck/internal/domain"
	"github.com/paperdeck/paperdeck/internal/tui/styles"
)

// Spinner frames for loading animation
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Layout constants
const (
	borderWidth  = 2
	borderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	scrollIndicatorLines = 2
)

// AssetList is the scrollable shelf column. It owns the cursor, the filter
// input, and nothing else; selection side effects belong to the controller.
type AssetList struct {
	assets []domain.Asset

	// Path of the server-acknowledged selection, marked in the listing
	currentPath string

	cursor     int
	offset     int
	maxVisible int

	width   int
	height  int
	focused bool

	loading      bool
	spinnerFrame int

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into the assets slice
}

// NewAssetList creates an empty shelf column
func NewAssetList() *AssetList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle

	return &AssetList{filterInput: ti}
}

// SetAssets replaces the listing wholesale and resets cursor and filter
func (l *AssetList) SetAssets(assets []domain.Asset) {
	l.assets = assets
	l.loading = false
	l.cursor = 0
	l.offset = 0
	l.clearFilter()
}

// Assets returns the full, unfiltered listing
func (l *AssetList) Assets() []domain.Asset {
	return l.assets
}

// SetCurrentPath marks which entry the server considers current
func (l *AssetList) SetCurrentPath(path string) {
	l.currentPath = path
}

// SetLoading toggles the loading spinner
func (l *AssetList) SetLoading(loading bool) {
	l.loading = loading
}

// SetSpinnerFrame advances the spinner animation
func (l *AssetList) SetSpinnerFrame(frame int) {
	l.spinnerFrame = frame
}

// SetFocused toggles keyboard focus
func (l *AssetList) SetFocused(focused bool) {
	l.focused = focused
}

// SetSize updates the column dimensions
func (l *AssetList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
	l.ensureVisible()
}

// SelectedAsset returns the asset under the cursor, nil when the shelf or
// the filtered view is empty
func (l *AssetList) SelectedAsset() *domain.Asset {
	count := l.itemCount()
	if count == 0 || l.cursor >= count {
		return nil
	}
	a := l.assets[l.mapIndex(l.cursor)]
	return &a
}

// IsEmpty reports whether the unfiltered shelf has no entries
func (l *AssetList) IsEmpty() bool {
	return len(l.assets) == 0
}

// ToggleFilter activates the filter input
func (l *AssetList) ToggleFilter() {
	l.filterActive = true
	l.filterInput.Focus()
	l.recalcMaxVisible()
}

// IsFilterTyping reports whether keystrokes currently go to the filter input
func (l *AssetList) IsFilterTyping() bool {
	return l.filterActive && l.filterInput.Focused()
}

// FilterQuery returns the current filter text, empty when no filter is set
func (l *AssetList) FilterQuery() string {
	if !l.filterActive {
		return ""
	}
	return l.filterQuery
}

// SetFilterResults replaces the filtered view with ranked results. Ranking
// happens in the service layer; the list only maps the results back to its
// entries and keeps their order.
func (l *AssetList) SetFilterResults(results []domain.Asset) {
	if !l.filterActive || l.filterQuery == "" {
		l.filteredIdx = nil
		return
	}

	indexByPath := make(map[string][]int, len(l.assets))
	for i, a := range l.assets {
		indexByPath[a.Path] = append(indexByPath[a.Path], i)
	}

	l.filteredIdx = make([]int, 0, len(results))
	for _, r := range results {
		bucket := indexByPath[r.Path]
		if len(bucket) == 0 {
			continue
		}
		l.filteredIdx = append(l.filteredIdx, bucket[0])
		indexByPath[r.Path] = bucket[1:]
	}

	l.cursor = 0
	l.offset = 0
}

// Update handles key events. Cursor movement has no side effects; the
// controller reads SelectedAsset when the user confirms with enter.
func (l *AssetList) Update(msg tea.Msg) tea.Cmd {
	if !l.focused {
		return nil
	}

	if l.filterActive && l.filterInput.Focused() {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "esc":
				l.clearFilterMoveCursor()
				return nil
			case "enter":
				l.filterInput.Blur()
				return nil
			case "backspace":
				if l.filterInput.Value() == "" {
					l.clearFilterMoveCursor()
					return nil
				}
			}
		}

		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.filterQuery = l.filterInput.Value()
		if l.filterQuery == "" {
			l.filteredIdx = nil
			l.cursor = 0
			l.offset = 0
		}
		return cmd
	}

	if l.filterActive {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "esc":
				l.clearFilterMoveCursor()
				return nil
			case "/":
				l.filterInput.Focus()
				return nil
			}
		}
	}

	count := l.itemCount()
	if count == 0 {
		return nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "j", "down":
			if l.cursor < count-1 {
				l.cursor++
				l.ensureVisible()
			}
		case "k", "up":
			if l.cursor > 0 {
				l.cursor--
				l.ensureVisible()
			}
		case "g", "home":
			l.cursor = 0
			l.offset = 0
		case "G", "end":
			l.cursor = count - 1
			l.ensureVisible()
		case "ctrl+d", "pgdown":
			l.cursor += l.maxVisible / 2
			if l.cursor >= count {
				l.cursor = count - 1
			}
			l.ensureVisible()
		case "ctrl+u", "pgup":
			l.cursor -= l.maxVisible / 2
			if l.cursor < 0 {
				l.cursor = 0
			}
			l.ensureVisible()
		}
	}

	return nil
}

// View renders the column
func (l *AssetList) View() string {
	style := styles.InactiveBorder
	if l.focused {
		style = styles.ActiveBorder
	}

	content := l.renderContent()
	frameW, frameH := style.GetFrameSize()

	return style.
		Width(l.width - frameW).
		Height(l.height - frameH).
		Render(content)
}

// Internal methods

func (l *AssetList) selectedPath() string {
	if a := l.SelectedAsset(); a != nil {
		return a.Path
	}
	return ""
}

func (l *AssetList) recalcMaxVisible() {
	interiorHeight := l.height - borderHeight
	l.maxVisible = interiorHeight - scrollIndicatorLines - 1 // -1 for title
	if l.filterActive {
		l.maxVisible--
	}
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
}

func (l *AssetList) ensureVisible() {
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
}

func (l *AssetList) clearFilter() {
	l.filterActive = false
	l.filterQuery = ""
	l.filteredIdx = nil
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.recalcMaxVisible()
}

// clearFilterMoveCursor drops the filter while keeping the cursor on the
// same asset in the unfiltered listing
func (l *AssetList) clearFilterMoveCursor() {
	path := l.selectedPath()
	l.clearFilter()
	for i, a := range l.assets {
		if a.Path == path {
			l.cursor = i
			l.ensureVisible()
			return
		}
	}
	l.cursor = 0
	l.offset = 0
}

func (l *AssetList) itemCount() int {
	if l.filteredIdx != nil {
		return len(l.filteredIdx)
	}
	return len(l.assets)
}

func (l *AssetList) mapIndex(i int) int {
	if l.filteredIdx != nil && i < len(l.filteredIdx) {
		return l.filteredIdx[i]
	}
	return i
}

// Rendering

func (l *AssetList) renderContent() string {
	itemWidth := l.width - borderWidth
	if itemWidth < 10 {
		itemWidth = 10
	}

	titleLine := styles.AccentStyle.Render(styles.Truncate("Shelf", itemWidth))

	if l.loading {
		spinner := spinnerFrames[l.spinnerFrame%len(spinnerFrames)]
		loadingLine := styles.DimStyle.Render(spinner + " Loading...")
		return titleLine + "\n" + " " + "\n" + loadingLine + "\n" + " "
	}

	count := l.itemCount()
	if count == 0 {
		emptyMsg := styles.DimStyle.Render("No documents")
		if l.filterActive && l.filterQuery != "" {
			emptyMsg = styles.DimStyle.Render("No matches")
		}
		return titleLine + "\n" + " " + "\n" + emptyMsg + "\n" + " "
	}

	var lines []string

	end := l.offset + l.maxVisible
	if end > count {
		end = count
	}

	for i := l.offset; i < end; i++ {
		lines = append(lines, l.renderItem(l.assets[l.mapIndex(i)], i == l.cursor, itemWidth))
	}

	// Always reserve the indicator lines to prevent layout shifts
	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer

	if l.filterActive {
		content += "\n" + l.renderFilterBar()
	}

	return content
}

func (l *AssetList) renderItem(asset domain.Asset, selected bool, width int) string {
	marker := "  "
	if asset.Path == l.currentPath {
		marker = styles.CurrentMarkStyle.Render("▸ ")
	}

	size := asset.FormattedSize()
	availableForTitle := width - 4 - len(size) - 1
	if availableForTitle < 5 {
		availableForTitle = 5
	}
	title := styles.Pad(styles.Truncate(asset.DisplayTitle(), availableForTitle), availableForTitle)
	if selected {
		row := marker + title + " " + styles.DimStyle.Render(size)
		return styles.SelectedItemStyle.Render(row)
	}
	if l.filterQuery != "" {
		title = highlightMatches(title, l.filterQuery)
	}
	row := marker + title + " " + styles.DimStyle.Render(size)
	return styles.NormalItemStyle.Render(row)
}

// highlightMatches accents the characters of s that the filter query
// fuzzy-matched. Padding happens before highlighting so the inserted
// escape sequences cannot skew the column width.
func highlightMatches(s, query string) string {
	matches := fuzzy.Find(strings.ToLower(query), []string{strings.ToLower(s)})
	if len(matches) == 0 {
		return s
	}

	matched := make(map[int]bool, len(matches[0].MatchedIndexes))
	for _, i := range matches[0].MatchedIndexes {
		matched[i] = true
	}

	var b strings.Builder
	for i, r := range s {
		if matched[i] {
			b.WriteString(styles.AccentStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (l *AssetList) renderFilterBar() string {
	input := l.filterInput.View()
	countStr := ""
	if l.filterQuery != "" {
		countStr = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", l.itemCount(), len(l.assets)))
	}
	return input + countStr
}
