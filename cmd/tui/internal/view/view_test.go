package view_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/lumen/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/extract"
	"github.com/MrJamesThe3rd/lumen/internal/ingest"
	"github.com/MrJamesThe3rd/lumen/internal/poller"
	"github.com/MrJamesThe3rd/lumen/internal/transaction"
)

var now = time.Date(2024, 11, 15, 18, 30, 0, 0, time.UTC)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: "", want: time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)},
		{input: "Today", want: time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)},
		{input: "yesterday", want: time.Date(2024, 11, 14, 0, 0, 0, 0, time.UTC)},
		{input: "2024-11-02", want: time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)},
		{input: "02/11/2024", want: time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)},
		{input: "2 Nov 2024", want: time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)},
		{input: "2024-12-01", wantErr: true},
		{input: "last tuesday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := view.ParseDate(tt.input, now)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManualFields_Entry(t *testing.T) {
	fields := view.ManualFields{
		Amount:       "1,250.50",
		Party:        "  Sharma Traders ",
		Date:         "yesterday",
		Method:       "cheque",
		Direction:    "debit",
		GST:          "225",
		PaymentTerms: "Net 30",
	}

	t.Run("Business", func(t *testing.T) {
		e, err := fields.Entry(account.TypeBusiness, now)
		require.NoError(t, err)

		assert.True(t, decimal.RequireFromString("1250.50").Equal(e.Amount))
		assert.Equal(t, "Sharma Traders", e.Party)
		assert.Equal(t, extract.Debit, e.Direction)
		assert.Equal(t, time.Date(2024, 11, 14, 0, 0, 0, 0, time.UTC), e.Date)
		require.NotNil(t, e.GSTAmount)
		assert.Equal(t, "225", e.GSTAmount.String())
		assert.Equal(t, "Net 30", e.PaymentTerms)
	})

	t.Run("ConsumerDropsBusinessFields", func(t *testing.T) {
		e, err := fields.Entry(account.TypeConsumer, now)
		require.NoError(t, err)

		assert.Nil(t, e.GSTAmount)
		assert.Empty(t, e.PaymentTerms)
	})

	t.Run("BadAmount", func(t *testing.T) {
		bad := fields
		bad.Amount = "lots"

		_, err := bad.Entry(account.TypeConsumer, now)
		require.Error(t, err)
	})

	t.Run("BadGST", func(t *testing.T) {
		bad := fields
		bad.GST = "18%"

		_, err := bad.Entry(account.TypeBusiness, now)
		require.Error(t, err)
	})
}

func TestSummarize(t *testing.T) {
	rejected := &ingest.Result{Rejection: &ingest.Rejection{Reason: ingest.ReasonNonPayment}}
	assert.Equal(t, "Not recorded: non-payment", view.Summarize(rejected))

	sourceOnly := &ingest.Result{Source: &transaction.Source{ID: uuid.New()}}
	assert.Contains(t, view.Summarize(sourceOnly), "no transaction could be extracted")

	recorded := &ingest.Result{Transaction: &transaction.Transaction{
		ID:                       uuid.New(),
		Amount:                   decimal.RequireFromString("500"),
		Direction:                extract.Debit,
		MerchantNameRaw:          "Swiggy",
		Category:                 "Food & Dining",
		ClassificationConfidence: 0.92,
		Network:                  extract.NetworkUPI,
		Date:                     now,
	}}

	got := view.Summarize(recorded)
	assert.Contains(t, got, "Recorded ₹500.00 debit Swiggy")
	assert.Contains(t, got, "Food & Dining (92%)")
	assert.Contains(t, got, "2024-11-15")

	assert.Empty(t, view.Summarize(nil))
}

func TestRenderStatus(t *testing.T) {
	idle := view.RenderStatus(poller.Status{
		State:          poller.StateIdle,
		MonitoredEmail: "ops@lumen.in",
		Owner:          account.Owner{ID: 3, Type: account.TypeBusiness},
		Interval:       30 * time.Second,
		LastCheck:      now,
		LastError:      "backend error",
	})

	assert.Contains(t, idle, "ops@lumen.in")
	assert.Contains(t, idle, "business:3")
	assert.Contains(t, idle, "30s")
	assert.Contains(t, idle, "backend error")

	fresh := view.RenderStatus(poller.Status{State: poller.StateUnconfigured})
	assert.Contains(t, fresh, "never")
	assert.Contains(t, fresh, "none")
	assert.NotContains(t, fresh, "Last error")
}
