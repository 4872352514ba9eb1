package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/poller"
)

const statusRefresh = 5 * time.Second

type PollerControl interface {
	Start(ctx context.Context, owner account.Owner) (account.Owner, error)
	Stop() error
	CheckNow(ctx context.Context, owner account.Owner) (poller.Report, error)
	Status(ctx context.Context) poller.Status
}

type PollerModel struct {
	CommonModel
	poller PollerControl

	status  poller.Status
	report  *poller.Report
	busy    string
	message string
	err     error
	spinner spinner.Model
}

func NewPollerModel(p PollerControl, owner account.Owner) PollerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return PollerModel{
		CommonModel: CommonModel{Owner: owner},
		poller:      p,
		spinner:     s,
	}
}

func (m PollerModel) Title() string { return "Mailbox Poller" }

func (m PollerModel) ShortHelp() string {
	return "s: start | x: stop | c: check now | r: refresh | Esc: back"
}

type pollerStatusMsg struct{ status poller.Status }

type pollerTickMsg struct{}

type pollerActionMsg struct {
	message string
	report  *poller.Report
	err     error
}

func (m PollerModel) Init() tea.Cmd {
	return tea.Batch(m.statusCmd(), tickStatus())
}

func tickStatus() tea.Cmd {
	return tea.Tick(statusRefresh, func(time.Time) tea.Msg { return pollerTickMsg{} })
}

func (m PollerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pollerStatusMsg:
		m.status = msg.status
		return m, nil

	case pollerTickMsg:
		return m, tea.Batch(m.statusCmd(), tickStatus())

	case pollerActionMsg:
		m.busy = ""
		m.message, m.err = msg.message, msg.err

		if msg.report != nil {
			m.report = msg.report
		}

		return m, m.statusCmd()

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.busy != "" {
			return m, nil
		}

		switch msg.String() {
		case "s":
			return m.act("Starting", m.startCmd())
		case "x":
			return m.act("Stopping", m.stopCmd())
		case "c":
			return m.act("Checking mailbox", m.checkCmd())
		case "r":
			return m, m.statusCmd()
		}
	}

	return m, nil
}

func (m PollerModel) act(label string, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy = label
	m.message, m.err = "", nil

	return m, tea.Batch(m.spinner.Tick, cmd)
}

func (m PollerModel) statusCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return pollerStatusMsg{status: m.poller.Status(ctx)}
	}
}

func (m PollerModel) startCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ingestCtx()
		defer cancel()

		owner, err := m.poller.Start(ctx, m.Owner)
		if err != nil {
			return pollerActionMsg{err: err}
		}

		if owner != m.Owner {
			return pollerActionMsg{message: fmt.Sprintf("Already running for %s", owner)}
		}

		return pollerActionMsg{message: "Poller started"}
	}
}

func (m PollerModel) stopCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.poller.Stop(); err != nil {
			return pollerActionMsg{err: err}
		}

		return pollerActionMsg{message: "Poller stopped"}
	}
}

func (m PollerModel) checkCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		rep, err := m.poller.CheckNow(ctx, m.Owner)
		if err != nil {
			return pollerActionMsg{err: err}
		}

		return pollerActionMsg{message: "Check complete", report: &rep}
	}
}

var labelStyle = lipgloss.NewStyle().Width(20).Foreground(lipgloss.Color("240"))

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

func stateStyle(s poller.State) lipgloss.Style {
	switch s {
	case poller.StateIdle, poller.StatePolling:
		return successStyle
	case poller.StateAuthenticating:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	}

	return faintStyle
}

// RenderStatus lays out a poller snapshot.
func RenderStatus(st poller.Status) string {
	lastCheck := "never"
	if !st.LastCheck.IsZero() {
		lastCheck = st.LastCheck.Local().Format("2006-01-02 15:04:05")
	}

	owner := "none"
	if !st.Owner.IsZero() {
		owner = st.Owner.String()
	}

	lines := []string{
		row("State", stateStyle(st.State).Render(string(st.State))),
		row("Mailbox", st.MonitoredEmail),
		row("Owner", owner),
		row("Authenticated", fmt.Sprintf("%t", st.Authenticated)),
		row("Interval", st.Interval.String()),
		row("Last check", lastCheck),
		row("Processed", fmt.Sprintf("%d", st.ProcessedMessages)),
		row("Pending retries", fmt.Sprintf("%d", st.Pending)),
	}

	if st.LastError != "" {
		lines = append(lines, row("Last error", errorStyle.Render(st.LastError)))
	}

	return strings.Join(lines, "\n")
}

func renderReport(r poller.Report) string {
	return fmt.Sprintf("Listed %d | ingested %d | rejected %d | duplicates %d | failed %d",
		r.Listed, r.Ingested, r.Rejected, r.Duplicate, r.Failed)
}

func (m PollerModel) View() string {
	parts := []string{RenderStatus(m.status), ""}

	switch {
	case m.busy != "":
		parts = append(parts, fmt.Sprintf("%s %s...", m.spinner.View(), m.busy))
	case m.err != nil:
		parts = append(parts, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.message != "":
		parts = append(parts, successStyle.Render(m.message))
	}

	if m.report != nil {
		parts = append(parts, faintStyle.Render(renderReport(*m.report)))
	}

	return padded.Render(strings.Join(parts, "\n"))
}
