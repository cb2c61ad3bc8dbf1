package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdeck/paperdeck/internal/domain"
	logx "github.com/paperdeck/paperdeck/internal/log"
	"github.com/paperdeck/paperdeck/internal/viewer"
)

type fakeProvider struct {
	assets      []domain.Asset
	listErr     error
	selectErr   error
	selected    []string
	probeErr    error
	current     string
	filterQuery string
	filtered    []domain.Asset
}

func (f *fakeProvider) ListAssets(context.Context) ([]domain.Asset, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.assets, nil
}

func (f *fakeProvider) CachedAssets() ([]domain.Asset, bool) { return nil, false }

func (f *fakeProvider) Filter(assets []domain.Asset, query string) []domain.Asset {
	f.filterQuery = query
	if f.filtered != nil {
		return f.filtered
	}
	return assets
}

func (f *fakeProvider) Select(_ context.Context, asset domain.Asset) error {
	f.selected = append(f.selected, asset.Path)
	if f.selectErr != nil {
		return f.selectErr
	}
	f.current = asset.Path
	return nil
}

func (f *fakeProvider) CurrentPath() string { return f.current }

func (f *fakeProvider) ProbeSource(context.Context, string) error { return f.probeErr }

func (f *fakeProvider) SaveTo(_ context.Context, asset domain.Asset, dir string) (string, error) {
	return dir + "/" + asset.Name, nil
}

type fakeTransport struct {
	calls  int
	events []domain.UploadEvent
	err    error
}

func (f *fakeTransport) Upload(context.Context, domain.UploadCandidate) (<-chan domain.UploadEvent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan domain.UploadEvent, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

type fakeOpener struct {
	opened []string
}

func (f *fakeOpener) Open(url string) error {
	f.opened = append(f.opened, url)
	return nil
}

func newTestModel(provider *fakeProvider, transport *fakeTransport) *Model {
	m := NewModel(provider, transport, &fakeOpener{}, "/tmp", logx.NullLogger())
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

// flatten executes a command tree and returns the produced messages
// without feeding them back into the model
func flatten(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, flatten(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func shelfOf(paths ...string) []domain.Asset {
	assets := make([]domain.Asset, len(paths))
	for i, p := range paths {
		assets[i] = domain.Asset{
			Name: p,
			Path: p,
			URL:  "http://shelf.test/files/" + p,
		}
	}
	return assets
}

func validCandidate() domain.UploadCandidate {
	return domain.UploadCandidate{
		FileName:  "slides.pdf",
		LocalPath: "/tmp/slides.pdf",
		MimeType:  "application/pdf",
		SizeBytes: 512 * 1024,
	}
}

func TestModel_ListingAutoSelectsFirstEntry(t *testing.T) {
	provider := &fakeProvider{}
	m := newTestModel(provider, &fakeTransport{})

	assets := shelfOf("first.pdf", "second.pdf")
	_, cmd := m.Update(AssetsLoadedMsg{Assets: assets})

	// The surface moves before the server answers
	require.NotNil(t, m.selection.Current)
	assert.Equal(t, "first.pdf", m.selection.Current.Path)
	assert.True(t, m.selection.PendingAck)
	require.NotNil(t, m.pane.Asset())
	assert.Equal(t, "first.pdf", m.pane.Asset().Path)
	assert.Equal(t, viewer.StateLoading, m.pane.State())

	// Executing the selection-change commands syncs the server and
	// settles the surface
	for _, msg := range flatten(cmd) {
		m.Update(msg)
	}
	assert.Equal(t, []string{"first.pdf"}, provider.selected)
	assert.False(t, m.selection.PendingAck)
	assert.Equal(t, viewer.StateLoaded, m.pane.State())
}

func TestModel_EmptyListingClearsEverything(t *testing.T) {
	provider := &fakeProvider{}
	m := newTestModel(provider, &fakeTransport{})

	_, cmd := m.Update(AssetsLoadedMsg{Assets: shelfOf("a.pdf")})
	for _, msg := range flatten(cmd) {
		m.Update(msg)
	}

	_, cmd = m.Update(AssetsLoadedMsg{Assets: nil})
	assert.Nil(t, cmd)
	assert.Nil(t, m.selection.Current)
	assert.Equal(t, viewer.StateIdle, m.pane.State())
	assert.True(t, m.list.IsEmpty())

	// No selection sync fired for the empty shelf
	assert.Equal(t, []string{"a.pdf"}, provider.selected)
}

func TestModel_RefreshKeepsSurvivingSelection(t *testing.T) {
	provider := &fakeProvider{}
	m := newTestModel(provider, &fakeTransport{})

	_, cmd := m.Update(AssetsLoadedMsg{Assets: shelfOf("a.pdf", "b.pdf")})
	for _, msg := range flatten(cmd) {
		m.Update(msg)
	}

	_, cmd = m.Update(AssetsLoadedMsg{Assets: shelfOf("z.pdf", "a.pdf")})
	assert.Nil(t, cmd)
	assert.Equal(t, "a.pdf", m.selection.Current.Path)
	assert.Equal(t, []string{"a.pdf"}, provider.selected)
}

func TestModel_SelectAckFailureWarnsWithoutRevert(t *testing.T) {
	provider := &fakeProvider{selectErr: domain.ErrServerOffline}
	m := newTestModel(provider, &fakeTransport{})

	_, cmd := m.Update(AssetsLoadedMsg{Assets: shelfOf("a.pdf")})
	for _, msg := range flatten(cmd) {
		m.Update(msg)
	}

	// The view stays on the chosen document, the user only gets warned
	assert.Equal(t, "a.pdf", m.selection.Current.Path)
	assert.True(t, m.selection.PendingAck)
	assert.Equal(t, StatusWarning, m.statusLevel)
	assert.NotEmpty(t, m.status)
}

func TestModel_StaleSourceSignalIgnored(t *testing.T) {
	m := newTestModel(&fakeProvider{}, &fakeTransport{})
	assets := shelfOf("old.pdf", "new.pdf")

	m.selectAsset(assets[0])
	m.selectAsset(assets[1])

	// The answer for the superseded document arrives late and must not
	// touch the newer one
	m.Update(SourceFailedMsg{URL: assets[0].URL})
	assert.Equal(t, viewer.StateLoading, m.pane.State())

	m.Update(SourceLoadedMsg{URL: assets[1].URL})
	assert.Equal(t, viewer.StateLoaded, m.pane.State())
}

func TestModel_OversizeSubmitNeverReachesTransport(t *testing.T) {
	transport := &fakeTransport{}
	m := newTestModel(&fakeProvider{}, transport)
	m.showUpload = true

	big := validCandidate()
	big.SizeBytes = 12 * 1024 * 1024

	_, cmd := m.Update(SubmitUploadMsg{Candidate: big})
	assert.Nil(t, cmd)
	assert.Zero(t, transport.calls)
	assert.Nil(t, m.session)
	assert.Contains(t, m.View(), "too large")

	// The controls stay usable: a valid candidate goes straight through
	_, cmd = m.Update(SubmitUploadMsg{Candidate: validCandidate()})
	require.NotNil(t, m.session)
	assert.Equal(t, domain.UploadInFlight, m.session.Status)
	require.NotNil(t, cmd)
}

func TestModel_WrongTypeSubmitNeverReachesTransport(t *testing.T) {
	transport := &fakeTransport{}
	m := newTestModel(&fakeProvider{}, transport)

	bad := validCandidate()
	bad.FileName = "notes.txt"

	_, cmd := m.Update(SubmitUploadMsg{Candidate: bad})
	assert.Nil(t, cmd)
	assert.Zero(t, transport.calls)
	assert.Nil(t, m.session)
}

func TestModel_ReentrantSubmitGuard(t *testing.T) {
	m := newTestModel(&fakeProvider{}, &fakeTransport{})

	m.Update(SubmitUploadMsg{Candidate: validCandidate()})
	require.NotNil(t, m.session)
	first := m.session.ID

	m.Update(SubmitUploadMsg{Candidate: validCandidate()})
	assert.Equal(t, first, m.session.ID)
	assert.Contains(t, m.status, "already running")
}

func TestModel_UploadFailureReenablesControls(t *testing.T) {
	m := newTestModel(&fakeProvider{}, &fakeTransport{})

	m.Update(SubmitUploadMsg{Candidate: validCandidate()})
	require.NotNil(t, m.session)
	first := m.session.ID
	m.Update(UploadProgressMsg{SessionID: first, Percent: 60})

	m.Update(UploadDoneMsg{SessionID: first, Reason: "http_status:500"})
	assert.Equal(t, domain.UploadFailed, m.session.Status)
	assert.Equal(t, 0, m.session.ProgressPercent)
	assert.Equal(t, StatusError, m.statusLevel)

	// A new attempt is accepted after the failure
	m.Update(SubmitUploadMsg{Candidate: validCandidate()})
	assert.NotEqual(t, first, m.session.ID)
	assert.Equal(t, domain.UploadInFlight, m.session.Status)
}

func TestModel_UploadSuccessSchedulesRefresh(t *testing.T) {
	m := newTestModel(&fakeProvider{}, &fakeTransport{})

	m.Update(SubmitUploadMsg{Candidate: validCandidate()})
	require.NotNil(t, m.session)

	_, cmd := m.Update(UploadDoneMsg{
		SessionID: m.session.ID,
		Receipt:   domain.UploadReceipt{Name: "slides.pdf", Path: "slides.pdf"},
	})
	assert.Equal(t, domain.UploadSucceeded, m.session.Status)
	assert.Equal(t, 100, m.session.ProgressPercent)
	assert.Equal(t, StatusSuccess, m.statusLevel)
	assert.NotNil(t, cmd)
}

func TestModel_UploadProgressChainsContinuation(t *testing.T) {
	m := newTestModel(&fakeProvider{}, &fakeTransport{})

	m.Update(SubmitUploadMsg{Candidate: validCandidate()})
	require.NotNil(t, m.session)

	next := func() tea.Msg { return TickMsg{} }
	_, cmd := m.Update(UploadProgressMsg{SessionID: m.session.ID, Percent: 40, NextCmd: next})
	assert.Equal(t, 40, m.session.ProgressPercent)
	require.NotNil(t, cmd)
	assert.IsType(t, TickMsg{}, cmd())

	// Progress for a session that is not live is dropped
	_, cmd = m.Update(UploadProgressMsg{SessionID: "stale", Percent: 99, NextCmd: next})
	assert.Equal(t, 40, m.session.ProgressPercent)
	assert.Nil(t, cmd)
}

func TestStartUploadCmd_PumpsEventStream(t *testing.T) {
	transport := &fakeTransport{events: []domain.UploadEvent{
		{Kind: domain.UploadEventProgress, Percent: 50},
		{Kind: domain.UploadEventProgress, Percent: 100},
		{Kind: domain.UploadEventSucceeded, Receipt: domain.UploadReceipt{Name: "slides.pdf"}},
	}}
	session := domain.NewUploadSession(validCandidate())

	msg := StartUploadCmd(transport, *session)()
	progress, ok := msg.(UploadProgressMsg)
	require.True(t, ok)
	assert.Equal(t, 50, progress.Percent)
	require.NotNil(t, progress.NextCmd)

	msg = progress.NextCmd()
	progress, ok = msg.(UploadProgressMsg)
	require.True(t, ok)
	assert.Equal(t, 100, progress.Percent)

	msg = progress.NextCmd()
	done, ok := msg.(UploadDoneMsg)
	require.True(t, ok)
	assert.Empty(t, done.Reason)
	assert.Equal(t, "slides.pdf", done.Receipt.Name)
}

func TestStartUploadCmd_RefusedStart(t *testing.T) {
	transport := &fakeTransport{err: domain.ErrUploadInFlight}
	session := domain.NewUploadSession(validCandidate())

	msg := StartUploadCmd(transport, *session)()
	done, ok := msg.(UploadDoneMsg)
	require.True(t, ok)
	assert.NotEmpty(t, done.Reason)
}

func TestUploadFailureText(t *testing.T) {
	tests := []struct {
		reason string
		want   string
	}{
		{"network_error", "could not be reached"},
		{"bad_response", "unexpected response"},
		{"http_status:503", "(503)"},
		{"unknown", "Upload failed."},
		{"disk full", "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			assert.Contains(t, uploadFailureText(tt.reason), tt.want)
		})
	}
}

func TestModel_FilterRanksThroughProvider(t *testing.T) {
	provider := &fakeProvider{}
	m := newTestModel(provider, &fakeTransport{})

	assets := shelfOf("alpha.pdf", "beta.pdf", "gamma.pdf")
	_, cmd := m.Update(AssetsLoadedMsg{Assets: assets})
	for _, msg := range flatten(cmd) {
		m.Update(msg)
	}

	// The service decides the ranking; the list only shows it
	provider.filtered = []domain.Asset{assets[2], assets[0]}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})

	assert.Equal(t, "a", provider.filterQuery)
	require.NotNil(t, m.list.SelectedAsset())
	assert.Equal(t, "gamma.pdf", m.list.SelectedAsset().Path)

	// Dropping the filter keeps the cursor on the same document
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.list.FilterQuery())
	require.NotNil(t, m.list.SelectedAsset())
	assert.Equal(t, "gamma.pdf", m.list.SelectedAsset().Path)
}

func TestModel_StaleStatusClearIgnored(t *testing.T) {
	m := newTestModel(&fakeProvider{}, &fakeTransport{})

	m.Update(StatusMsg{Message: "first", Level: StatusInfo})
	firstSeq := m.statusSeq
	m.Update(StatusMsg{Message: "second", Level: StatusInfo})
	secondSeq := m.statusSeq

	// The clear scheduled for the replaced notification must not wipe
	// the newer one
	m.Update(ClearStatusMsg{Seq: firstSeq})
	assert.Equal(t, "second", m.status)

	m.Update(ClearStatusMsg{Seq: secondSeq})
	assert.Empty(t, m.status)
}

func TestModel_HelpOverlayListsBindings(t *testing.T) {
	m := newTestModel(&fakeProvider{}, &fakeTransport{})

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	require.True(t, m.showHelp)

	view := m.View()
	for _, binding := range []string{"go to top", "page down", "open in viewer", "upload", "filter"} {
		assert.Contains(t, view, binding)
	}

	// Any key closes the overlay
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.False(t, m.showHelp)
}

func TestModel_OpenViewer(t *testing.T) {
	opener := &fakeOpener{}
	m := NewModel(&fakeProvider{}, &fakeTransport{}, opener, "/tmp", logx.NullLogger())
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	_, cmd := m.Update(AssetsLoadedMsg{Assets: shelfOf("a.pdf")})
	for _, msg := range flatten(cmd) {
		m.Update(msg)
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.IsType(t, ViewerOpenedMsg{}, msg)
	assert.Equal(t, []string{"http://shelf.test/files/a.pdf"}, opener.opened)
}
