package view

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/ingest"
)

// OCR and classification both run inside an upload.
const uploadTimeout = 2 * time.Minute

type uploadState int

const (
	uploadStateFilePick uploadState = iota
	uploadStateUploading
	uploadStateResult
)

type UploadModel struct {
	CommonModel
	ingester Ingester

	state      uploadState
	filePicker filepicker.Model
	spinner    spinner.Model
	path       string

	res *ingest.Result
	err error
}

func NewUploadModel(svc Ingester, owner account.Owner) UploadModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".jpg", ".jpeg", ".png", ".webp", ".pdf"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return UploadModel{
		CommonModel: CommonModel{Owner: owner},
		ingester:    svc,
		filePicker:  fp,
		spinner:     s,
	}
}

func (m UploadModel) Title() string { return "Upload Receipt" }

func (m UploadModel) ShortHelp() string {
	if m.state == uploadStateResult {
		return "Esc: pick another file"
	}

	return "Esc: back | Enter: select"
}

func (m UploadModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m UploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case ingestResultMsg:
		m.state = uploadStateResult
		m.res, m.err = msg.res, msg.err

		return m, nil
	}

	switch m.state {
	case uploadStateUploading:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case uploadStateResult:
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = uploadStateUploading
		m.path = path

		return m, tea.Batch(m.spinner.Tick, m.uploadCmd(path))
	}

	return m, cmd
}

func (m UploadModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case uploadStateResult:
		m.state = uploadStateFilePick
		m.res, m.err = nil, nil

		return m, m.filePicker.Init()
	case uploadStateUploading:
		return m, nil
	}

	return m, Back
}

func (m UploadModel) View() string {
	switch m.state {
	case uploadStateFilePick:
		return padded.Render("Select a receipt or invoice:\n\n" + m.filePicker.View())
	case uploadStateUploading:
		return padded.Render(fmt.Sprintf("%s Reading %s...", m.spinner.View(), filepath.Base(m.path)))
	case uploadStateResult:
		return padded.Render(renderOutcome(m.res, m.err) + "\n\n(Esc to continue)")
	}

	return ""
}

func (m UploadModel) uploadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		content, err := os.ReadFile(path)
		if err != nil {
			return ingestResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
		defer cancel()

		res, err := m.ingester.IngestUpload(ctx, m.Owner, ingest.Upload{
			Filename:    filepath.Base(path),
			ContentType: mime.TypeByExtension(filepath.Ext(path)),
			Content:     content,
		})

		return ingestResultMsg{res: res, err: err}
	}
}
