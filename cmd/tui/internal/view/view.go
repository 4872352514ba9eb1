package view

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/ingest"
)

const (
	dbTimeout = 5 * time.Second
	// Classification may run inside an ingestion call.
	ingestTimeout = time.Minute
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct {
	Owner account.Owner
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// Ingester is the part of the ingestion service the screens drive.
type Ingester interface {
	IngestUpload(ctx context.Context, owner account.Owner, u ingest.Upload) (*ingest.Result, error)
	IngestSMS(ctx context.Context, owner account.Owner, sms ingest.SMS) (*ingest.Result, error)
	IngestManual(ctx context.Context, owner account.Owner, m ingest.ManualEntry) (*ingest.Result, error)
}

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	padded       = lipgloss.NewStyle().Padding(1)
)

func FormatAmount(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func ingestCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), ingestTimeout)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
