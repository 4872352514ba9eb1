package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/extract"
	"github.com/MrJamesThe3rd/lumen/internal/ingest"
)

type manualState int

const (
	manualStateForm manualState = iota
	manualStateSaving
	manualStateResult
)

// ManualFields are the raw form inputs of a manual entry.
type ManualFields struct {
	Amount       string
	Party        string
	Purpose      string
	Date         string
	Method       string
	Direction    string
	Category     string
	Reference    string
	GST          string
	PaymentTerms string
}

// Entry converts the inputs. Business-only fields are ignored for consumers.
func (f ManualFields) Entry(t account.Type, now time.Time) (ingest.ManualEntry, error) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(f.Amount), ",", ""))
	if err != nil {
		return ingest.ManualEntry{}, fmt.Errorf("amount %q is not a number", f.Amount)
	}

	date, err := ParseDate(f.Date, now)
	if err != nil {
		return ingest.ManualEntry{}, err
	}

	e := ingest.ManualEntry{
		Amount:        amount,
		Party:         strings.TrimSpace(f.Party),
		Purpose:       strings.TrimSpace(f.Purpose),
		Date:          date,
		PaymentMethod: f.Method,
		Category:      strings.TrimSpace(f.Category),
		Reference:     strings.TrimSpace(f.Reference),
		Direction:     extract.Direction(f.Direction),
	}

	if t != account.TypeBusiness {
		return e, nil
	}

	e.PaymentTerms = strings.TrimSpace(f.PaymentTerms)

	if gst := strings.TrimSpace(f.GST); gst != "" {
		v, err := decimal.NewFromString(gst)
		if err != nil {
			return ingest.ManualEntry{}, fmt.Errorf("GST amount %q is not a number", f.GST)
		}

		e.GSTAmount = &v
	}

	return e, nil
}

type ManualModel struct {
	CommonModel
	ingester Ingester
	now      func() time.Time

	state   manualState
	form    *huh.Form
	spinner spinner.Model

	res *ingest.Result
	err error
}

func NewManualModel(svc Ingester, owner account.Owner) ManualModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := ManualModel{
		CommonModel: CommonModel{Owner: owner},
		ingester:    svc,
		now:         time.Now,
		spinner:     s,
	}
	m.form = m.buildForm()

	return m
}

func (m ManualModel) Title() string { return "Manual Entry" }

func (m ManualModel) ShortHelp() string {
	if m.state == manualStateResult {
		return "Esc: new entry"
	}

	return "Esc: back | Tab: next field"
}

func (m ManualModel) Init() tea.Cmd {
	return m.form.Init()
}

func paymentMethods(t account.Type) []huh.Option[string] {
	opts := huh.NewOptions("upi", "card", "cash", "wallet")
	if t == account.TypeBusiness {
		opts = append(opts, huh.NewOptions("netbanking", "cheque")...)
	}

	return opts
}

func notEmpty(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}

		return nil
	}
}

func (m ManualModel) buildForm() *huh.Form {
	business := m.Owner.Type == account.TypeBusiness

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("450.00").
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
					if err != nil || !d.IsPositive() {
						return fmt.Errorf("enter an amount greater than 0")
					}

					return nil
				}),
			huh.NewInput().
				Key("party").
				Title("Paid to / received from").
				Validate(notEmpty("party")),
			huh.NewInput().
				Key("purpose").
				Title("Purpose (optional)"),
			huh.NewInput().
				Key("date").
				Title("Date").
				Placeholder("today").
				Validate(func(s string) error {
					_, err := ParseDate(s, m.now())
					return err
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("method").
				Title("Payment method").
				Options(paymentMethods(m.Owner.Type)...),
			huh.NewSelect[string]().
				Key("direction").
				Title("Direction").
				Options(
					huh.NewOption("Money out", string(extract.Debit)),
					huh.NewOption("Money in", string(extract.Credit)),
				),
			huh.NewInput().
				Key("category").
				Title("Category (optional)").
				Description("Left empty, the classifier picks one"),
			huh.NewInput().
				Key("reference").
				Title("Reference (optional)"),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("gst").
				Title("GST amount (optional)"),
			huh.NewInput().
				Key("terms").
				Title("Payment terms (optional)").
				Placeholder("Net 30"),
		).WithHide(!business),
	).WithWidth(60).WithShowHelp(false)
}

func (m ManualModel) fields() ManualFields {
	return ManualFields{
		Amount:       m.form.GetString("amount"),
		Party:        m.form.GetString("party"),
		Purpose:      m.form.GetString("purpose"),
		Date:         m.form.GetString("date"),
		Method:       m.form.GetString("method"),
		Direction:    m.form.GetString("direction"),
		Category:     m.form.GetString("category"),
		Reference:    m.form.GetString("reference"),
		GST:          m.form.GetString("gst"),
		PaymentTerms: m.form.GetString("terms"),
	}
}

func (m ManualModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		switch m.state {
		case manualStateResult:
			m.state = manualStateForm
			m.res, m.err = nil, nil
			m.form = m.buildForm()

			return m, m.form.Init()
		case manualStateSaving:
			return m, nil
		}

		return m, Back
	}

	if res, ok := msg.(ingestResultMsg); ok {
		m.state = manualStateResult
		m.res, m.err = res.res, res.err

		return m, nil
	}

	switch m.state {
	case manualStateForm:
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, cmd
		}

		entry, err := m.fields().Entry(m.Owner.Type, m.now())
		if err != nil {
			m.state = manualStateResult
			m.err = err

			return m, nil
		}

		m.state = manualStateSaving

		return m, tea.Batch(m.spinner.Tick, m.saveCmd(entry))
	case manualStateSaving:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m ManualModel) saveCmd(entry ingest.ManualEntry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ingestCtx()
		defer cancel()

		res, err := m.ingester.IngestManual(ctx, m.Owner, entry)

		return ingestResultMsg{res: res, err: err}
	}
}

func (m ManualModel) View() string {
	switch m.state {
	case manualStateForm:
		header := faintStyle.Render(fmt.Sprintf("Recording for %s", m.Owner))
		return padded.Render(header + "\n\n" + m.form.View())
	case manualStateSaving:
		return padded.Render(m.spinner.View() + " Saving...")
	case manualStateResult:
		return padded.Render(renderOutcome(m.res, m.err) + "\n\n(Esc for a new entry)")
	}

	return ""
}
