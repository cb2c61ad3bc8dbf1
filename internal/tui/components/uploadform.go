package components

import (
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/paperdeck/paperdeck/internal/domain"
	"github.com/paperdeck/paperdeck/internal/tui/styles"
)

// UploadPhase tracks which part of the upload flow the form is in
type UploadPhase int

const (
	PhasePicking UploadPhase = iota
	PhaseConfirm
	PhaseUploading
)

// UploadForm is the upload modal: pick a file, confirm it, watch it go.
// Validation runs the moment a file is picked, so an unusable file is
// rejected before the confirm step, and the form refuses to submit while
// an upload is already running.
type UploadForm struct {
	picker filepicker.Model
	bar    progress.Model

	phase     UploadPhase
	candidate *domain.UploadCandidate
	percent   int
	errText   string

	width  int
	height int
}

// NewUploadForm creates the form in the picking phase, rooted at the
// user's home directory
func NewUploadForm() *UploadForm {
	fp := filepicker.New()
	fp.AllowedTypes = []string{domain.AllowedExtension}
	fp.ShowHidden = false
	if home, err := os.UserHomeDir(); err == nil {
		fp.CurrentDirectory = home
	}
	fp.Height = 12

	return &UploadForm{
		picker: fp,
		bar:    progress.New(progress.WithDefaultGradient()),
	}
}

// Init starts the file picker
func (f *UploadForm) Init() tea.Cmd {
	return f.picker.Init()
}

// Phase returns the current form phase
func (f *UploadForm) Phase() UploadPhase {
	return f.phase
}

// Candidate returns the validated file waiting for confirmation
func (f *UploadForm) Candidate() *domain.UploadCandidate {
	return f.candidate
}

// SetSize updates the modal dimensions
func (f *UploadForm) SetSize(width, height int) {
	f.width = width
	f.height = height
	f.bar.Width = width - 8
	if f.bar.Width < 10 {
		f.bar.Width = 10
	}
}

// SetProgress records upload progress as a whole percentage
func (f *UploadForm) SetProgress(percent int) {
	f.phase = PhaseUploading
	f.percent = percent
}

// Fail returns the form to the confirm phase with an error message and a
// reset progress bar, leaving the picked file in place for another try
func (f *UploadForm) Fail(message string) {
	f.phase = PhaseConfirm
	f.percent = 0
	f.errText = message
}

// Update handles key and picker events. The returned candidate is non-nil
// exactly when the user confirmed a validated file.
func (f *UploadForm) Update(msg tea.Msg) (tea.Cmd, *domain.UploadCandidate) {
	switch f.phase {
	case PhaseUploading:
		// Input is inert while the transfer runs; only esc is handled by
		// the controller, which keeps the session going in background.
		return nil, nil

	case PhaseConfirm:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "enter":
				f.errText = ""
				return nil, f.candidate
			case "backspace":
				f.candidate = nil
				f.errText = ""
				f.phase = PhasePicking
				return f.picker.Init(), nil
			}
		}
		return nil, nil

	default: // PhasePicking
		var cmd tea.Cmd
		f.picker, cmd = f.picker.Update(msg)

		if didSelect, path := f.picker.DidSelectFile(msg); didSelect {
			f.pick(path)
			return cmd, nil
		}
		if didSelect, _ := f.picker.DidSelectDisabledFile(msg); didSelect {
			f.errText = RejectionText(domain.ReasonWrongType)
			return cmd, nil
		}
		return cmd, nil
	}
}

// pick validates a chosen file and advances to confirm if it passes
func (f *UploadForm) pick(path string) {
	candidate, err := domain.NewCandidateFromFile(path)
	if err != nil {
		f.errText = "Could not read file: " + err.Error()
		return
	}

	if result := domain.ValidateCandidate(candidate); !result.Ok() {
		f.errText = RejectionText(result.Reason())
		return
	}

	f.candidate = &candidate
	f.errText = ""
	f.phase = PhaseConfirm
}

// RejectionText maps a validation reason to the message shown to the user
func RejectionText(reason string) string {
	switch reason {
	case domain.ReasonWrongType:
		return "Only PDF files can be uploaded."
	case domain.ReasonTooLarge:
		return "File is too large. The limit is 10 MiB."
	default:
		return "File was rejected."
	}
}

// View renders the modal content
func (f *UploadForm) View() string {
	title := styles.ModalTitleStyle.Render("Upload PDF")

	var body string
	switch f.phase {
	case PhaseUploading:
		body = styles.SubtitleStyle.Render("Uploading "+f.candidateName()) + "\n\n" +
			f.bar.ViewAs(float64(f.percent)/100) + "\n" +
			styles.DimStyle.Render("esc to hide")

	case PhaseConfirm:
		body = styles.SubtitleStyle.Render(f.candidateName()) + "\n" +
			styles.DimStyle.Render(f.candidateSize()) + "\n\n" +
			styles.HelpKeyStyle.Render("enter") + styles.HelpDescStyle.Render(" upload  ") +
			styles.HelpKeyStyle.Render("backspace") + styles.HelpDescStyle.Render(" pick another  ") +
			styles.HelpKeyStyle.Render("esc") + styles.HelpDescStyle.Render(" cancel")

	default:
		body = f.picker.View() + "\n" +
			styles.DimStyle.Render("enter to choose, esc to cancel")
	}

	if f.errText != "" {
		body += "\n\n" + styles.ErrorStyle.Render(f.errText)
	}

	return styles.ModalStyle.Width(f.width).Render(title + "\n" + body)
}

func (f *UploadForm) candidateName() string {
	if f.candidate == nil {
		return ""
	}
	return f.candidate.FileName
}

func (f *UploadForm) candidateSize() string {
	if f.candidate == nil {
		return ""
	}
	return domain.FormatBytes(f.candidate.SizeBytes)
}
