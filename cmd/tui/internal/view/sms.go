package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/ingest"
)

type smsState int

const (
	smsStateInput smsState = iota
	smsStatePreview
	smsStateSaving
	smsStateResult
)

// SMSModel takes a pasted bank SMS, previews what the rules extract from it and
// records it on confirmation.
type SMSModel struct {
	CommonModel
	ingester Ingester

	state   smsState
	form    *huh.Form
	spinner spinner.Model

	raw     string
	confirm bool
	preview string
	payment bool

	res *ingest.Result
	err error
}

func NewSMSModel(svc Ingester, owner account.Owner) SMSModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := SMSModel{
		CommonModel: CommonModel{Owner: owner},
		ingester:    svc,
		spinner:     s,
	}
	m.form = m.buildInputForm()

	return m
}

func (m SMSModel) Title() string { return "Paste SMS" }

func (m SMSModel) ShortHelp() string {
	switch m.state {
	case smsStatePreview:
		return "Enter: confirm | Esc: edit"
	case smsStateResult:
		return "Esc: paste another"
	}

	return "Esc: back | Enter: preview"
}

func (m SMSModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m *SMSModel) buildInputForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Key("raw").
				Title("Bank SMS").
				Description("Paste the message, with or without the forwarder header").
				CharLimit(5000).
				Lines(6).
				Value(&m.raw).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("message cannot be empty")
					}

					return nil
				}),
		),
	).WithWidth(70).WithShowHelp(false)
}

func (m *SMSModel) buildConfirmForm() *huh.Form {
	m.confirm = true

	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title("Record this transaction?").
				Affirmative("Yes").
				Negative("No").
				Value(&m.confirm),
		),
	).WithShowHelp(false)
}

func (m SMSModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m.handleEsc()
	}

	if res, ok := msg.(ingestResultMsg); ok {
		m.state = smsStateResult
		m.res, m.err = res.res, res.err

		return m, nil
	}

	switch m.state {
	case smsStateInput:
		return m.updateInput(msg)
	case smsStatePreview:
		return m.updatePreview(msg)
	case smsStateSaving:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m SMSModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case smsStatePreview:
		m.state = smsStateInput
		m.form = m.buildInputForm()

		return m, m.form.Init()
	case smsStateResult:
		m.state = smsStateInput
		m.raw = ""
		m.res, m.err = nil, nil
		m.form = m.buildInputForm()

		return m, m.form.Init()
	case smsStateSaving:
		return m, nil
	}

	return m, Back
}

func (m SMSModel) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.raw = m.form.GetString("raw")
	m.preview, m.payment = previewSMS(m.raw)
	m.state = smsStatePreview
	m.form = m.buildConfirmForm()

	return m, m.form.Init()
}

func (m SMSModel) updatePreview(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.confirm = m.form.GetBool("confirm")

	if !m.confirm || !m.payment {
		return m.handleEsc()
	}

	m.state = smsStateSaving

	return m, tea.Batch(m.spinner.Tick, m.saveCmd())
}

func (m SMSModel) saveCmd() tea.Cmd {
	raw := m.raw

	return func() tea.Msg {
		ctx, cancel := ingestCtx()
		defer cancel()

		res, err := m.ingester.IngestSMS(ctx, m.Owner, ingest.SMS{Raw: raw})

		return ingestResultMsg{res: res, err: err}
	}
}

// previewSMS runs the extraction rules offline and reports whether the message
// would produce a transaction.
func previewSMS(raw string) (string, bool) {
	n, rej := ingest.NormalizeSMS(ingest.SMS{Raw: raw})
	if rej != nil {
		return "Would not be recorded: " + rej.String(), false
	}

	c := n.Candidate

	var b strings.Builder

	fmt.Fprintf(&b, "Amount:       %s (%s)\n", FormatAmount(c.Amount), c.Direction)
	fmt.Fprintf(&b, "Counterparty: %s\n", c.Counterparty)

	if c.Network != "" {
		fmt.Fprintf(&b, "Network:      %s\n", c.Network)
	}

	if c.ReferenceID != "" {
		fmt.Fprintf(&b, "Reference:    %s\n", c.ReferenceID)
	}

	if c.MaskedAccount != "" {
		fmt.Fprintf(&b, "Account:      XX%s\n", c.MaskedAccount)
	}

	return strings.TrimRight(b.String(), "\n"), true
}

func (m SMSModel) View() string {
	switch m.state {
	case smsStateInput:
		return padded.Render(m.form.View())
	case smsStatePreview:
		if !m.payment {
			return padded.Render(faintStyle.Render(m.preview) + "\n\n(Esc to edit)")
		}

		return padded.Render(m.preview + "\n\n" + m.form.View())
	case smsStateSaving:
		return padded.Render(m.spinner.View() + " Recording...")
	case smsStateResult:
		return padded.Render(renderOutcome(m.res, m.err) + "\n\n(Esc to continue)")
	}

	return ""
}
