package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/lumen/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/app"
	"github.com/MrJamesThe3rd/lumen/internal/config"
	"github.com/MrJamesThe3rd/lumen/internal/database"
	"github.com/MrJamesThe3rd/lumen/internal/logger"
)

type model struct {
	app   *app.App
	owner account.Owner

	currentView View

	pollerView view.PollerModel
	smsView    view.SMSModel
	manualView view.ManualModel
	uploadView view.UploadModel
}

type View int

const (
	ViewMenu   View = 0
	ViewPoller View = 1
	ViewSMS    View = 2
	ViewManual View = 3
	ViewUpload View = 4
)

func fail(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

func initialModel() (model, func()) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fail("failed to load config", err)
	}

	owner := account.Owner{ID: cfg.Operator.OwnerID, Type: account.Type(cfg.Operator.OwnerType)}
	if err := owner.Validate(); err != nil {
		fail("OPERATOR_OWNER_ID and OPERATOR_OWNER_TYPE must name an account", err)
	}

	// The screen owns stdout; log to a file when asked, otherwise drop.
	log := zerolog.Nop()

	if path := os.Getenv("LUMEN_TUI_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			fail("failed to open log file", err)
		}

		log = logger.NewWithWriter(f)
	}

	ctx := context.Background()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		fail("failed to connect to database", err)
	}

	if err := database.Migrate(ctx, db, log); err != nil {
		fail("failed to migrate database", err)
	}

	a, err := app.New(ctx, cfg, db, log)
	if err != nil {
		fail("failed to build services", err)
	}

	cleanup := func() {
		_ = a.Poller.Stop()
		a.Ingest.Wait()
		db.Close()
	}

	return model{
		app:         a,
		owner:       owner,
		currentView: ViewMenu,
	}, cleanup
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewPoller
				m.pollerView = view.NewPollerModel(m.app.Poller, m.owner)

				return m, m.pollerView.Init()
			case "2":
				m.currentView = ViewSMS
				m.smsView = view.NewSMSModel(m.app.Ingest, m.owner)

				return m, m.smsView.Init()
			case "3":
				m.currentView = ViewManual
				m.manualView = view.NewManualModel(m.app.Ingest, m.owner)

				return m, m.manualView.Init()
			case "4":
				m.currentView = ViewUpload
				m.uploadView = view.NewUploadModel(m.app.Ingest, m.owner)

				return m, m.uploadView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewPoller:
		var newModel tea.Model
		newModel, cmd = m.pollerView.Update(msg)
		m.pollerView = newModel.(view.PollerModel)
	case ViewSMS:
		var newModel tea.Model
		newModel, cmd = m.smsView.Update(msg)
		m.smsView = newModel.(view.SMSModel)
	case ViewManual:
		var newModel tea.Model
		newModel, cmd = m.manualView.Update(msg)
		m.manualView = newModel.(view.ManualModel)
	case ViewUpload:
		var newModel tea.Model
		newModel, cmd = m.uploadView.Update(msg)
		m.uploadView = newModel.(view.UploadModel)
	}

	return m, cmd
}

func (m model) current() view.View {
	switch m.currentView {
	case ViewPoller:
		return m.pollerView
	case ViewSMS:
		return m.smsView
	case ViewManual:
		return m.manualView
	case ViewUpload:
		return m.uploadView
	}

	return nil
}

func (m model) View() string {
	v := m.current()
	if v == nil {
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("Lumen (%s)\n\n", m.owner) +
				"1. Mailbox Poller\n" +
				"2. Paste SMS\n" +
				"3. Manual Entry\n" +
				"4. Upload Receipt\n\n" +
				"q. Quit",
		)
	}

	title := lipgloss.NewStyle().Bold(true).Padding(1, 1, 0).Render(v.Title())
	help := lipgloss.NewStyle().Faint(true).Padding(0, 1).Render(v.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, v.View(), help)
}

func main() {
	m, cleanup := initialModel()
	defer cleanup()

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		cleanup()
		fail("failed to run TUI", err)
	}
}
