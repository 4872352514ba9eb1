package ingest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/lumen/internal/extract"
	"github.com/MrJamesThe3rd/lumen/internal/ingest"
)

func TestNormalizeEmail(t *testing.T) {
	amazon := ingest.Email{
		MessageID: "m-1",
		Subject:   "Payment Successful",
		Sender:    "payments@amazon.in",
		Body:      "Your payment of Rs 1,299.00 to Amazon India was successful.",
		Mailbox:   "owner@example.com",
	}

	type testCase struct {
		name      string
		email     ingest.Email
		setupMock func(m *ingest.MockEmailExtractor)
		wantRej   bool
		wantParty string
		wantAmt   string
		wantBy    extract.Method
	}

	tests := []testCase{
		{
			name:  "AcceptsConfidentVerdict",
			email: amazon,
			setupMock: func(m *ingest.MockEmailExtractor) {
				m.EXPECT().ExtractEmail(gomock.Any(), ingest.EmailPrompt{
					Subject: amazon.Subject,
					Sender:  amazon.Sender,
					Body:    amazon.Body,
				}).Return(&ingest.EmailVerdict{
					IsTransaction: true,
					Amount:        decimal.NewFromInt(1299),
					Merchant:      "Amazon India",
					PaymentMethod: "UPI",
					Confidence:    0.9,
				}, nil)
			},
			wantParty: "Amazon India",
			wantAmt:   "1299",
			wantBy:    extract.MethodAI,
		},
		{
			name:  "RejectsLowConfidence",
			email: amazon,
			setupMock: func(m *ingest.MockEmailExtractor) {
				m.EXPECT().ExtractEmail(gomock.Any(), gomock.Any()).Return(&ingest.EmailVerdict{
					IsTransaction: true,
					Amount:        decimal.NewFromInt(1299),
					Confidence:    0.59,
				}, nil)
			},
			wantRej: true,
		},
		{
			name:  "RejectsNonTransactionVerdict",
			email: amazon,
			setupMock: func(m *ingest.MockEmailExtractor) {
				m.EXPECT().ExtractEmail(gomock.Any(), gomock.Any()).Return(&ingest.EmailVerdict{Confidence: 0.99}, nil)
			},
			wantRej: true,
		},
		{
			name:  "RejectsZeroAmountVerdict",
			email: amazon,
			setupMock: func(m *ingest.MockEmailExtractor) {
				m.EXPECT().ExtractEmail(gomock.Any(), gomock.Any()).Return(&ingest.EmailVerdict{IsTransaction: true, Confidence: 0.9}, nil)
			},
			wantRej: true,
		},
		{
			name:  "RejectsAmountThatRoundsToZero",
			email: amazon,
			setupMock: func(m *ingest.MockEmailExtractor) {
				m.EXPECT().ExtractEmail(gomock.Any(), gomock.Any()).Return(&ingest.EmailVerdict{
					IsTransaction: true,
					Amount:        decimal.RequireFromString("0.004"),
					Confidence:    0.9,
				}, nil)
			},
			wantRej: true,
		},
		{
			name:  "RoundsVerdictAmountToPaise",
			email: amazon,
			setupMock: func(m *ingest.MockEmailExtractor) {
				m.EXPECT().ExtractEmail(gomock.Any(), gomock.Any()).Return(&ingest.EmailVerdict{
					IsTransaction: true,
					Amount:        decimal.RequireFromString("1299.005"),
					Merchant:      "Amazon India",
					Confidence:    0.9,
				}, nil)
			},
			wantParty: "Amazon India",
			wantAmt:   "1299.01",
			wantBy:    extract.MethodAI,
		},
		{
			name:  "FallsBackToRulesOnError",
			email: amazon,
			setupMock: func(m *ingest.MockEmailExtractor) {
				m.EXPECT().ExtractEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("malformed JSON"))
			},
			wantParty: "Amazon India",
			wantAmt:   "1299",
			wantBy:    extract.MethodRegex,
		},
		{
			name: "BankSenderFallback",
			email: ingest.Email{
				Subject: "Transaction alert",
				Sender:  "alerts@hdfcbank.net",
				Body:    "INR 450.00 debited from your account.",
			},
			setupMock: func(m *ingest.MockEmailExtractor) {
				m.EXPECT().ExtractEmail(gomock.Any(), gomock.Any()).Return(&ingest.EmailVerdict{
					IsTransaction: true,
					Amount:        decimal.NewFromInt(450),
					Confidence:    0.8,
				}, nil)
			},
			wantParty: "Bank Transaction",
			wantAmt:   "450",
			wantBy:    extract.MethodAI,
		},
		{
			name: "SkipsWithoutKeywords",
			email: ingest.Email{
				Subject: "Team offsite",
				Sender:  "hr@example.com",
				Body:    "See you on Friday",
			},
			setupMock: func(m *ingest.MockEmailExtractor) {},
			wantRej:   true,
		},
		{
			name: "FallbackWithoutAmountRejects",
			email: ingest.Email{
				Subject: "Your bank statement is ready",
				Sender:  "noreply@example.com",
				Body:    "Log in to view it.",
			},
			setupMock: func(m *ingest.MockEmailExtractor) {
				m.EXPECT().ExtractEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))
			},
			wantRej: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			ex := ingest.NewMockEmailExtractor(ctrl)
			tt.setupMock(ex)

			n, rej := ingest.NormalizeEmail(context.Background(), ex, tt.email, zerolog.Nop())
			if tt.wantRej {
				require.NotNil(t, rej)
				assert.Equal(t, ingest.ReasonNotTransaction, rej.Reason)

				return
			}

			require.Nil(t, rej)
			assert.Equal(t, tt.wantParty, n.Candidate.Counterparty)
			assert.True(t, decimal.RequireFromString(tt.wantAmt).Equal(n.Candidate.Amount))
			assert.Equal(t, tt.wantBy, n.Candidate.Method)
			assert.Equal(t, 1.0, n.Confidence)
			assert.Equal(t, true, n.Metadata["auto_ingested"])
			assert.Equal(t, tt.email.Subject, n.Metadata["subject"])
		})
	}
}

func TestNormalizeEmail_HTMLBodyAndPromptLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	ex := ingest.NewMockEmailExtractor(ctrl)

	long := make([]rune, 3000)
	for i := range long {
		long[i] = 'a'
	}

	body := "<html><body><p>Payment of Rs 99 received</p><p>" + string(long) + "</p></body></html>"

	ex.EXPECT().
		ExtractEmail(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p ingest.EmailPrompt) (*ingest.EmailVerdict, error) {
			assert.NotContains(t, p.Body, "<p>")
			assert.Len(t, []rune(p.Body), 2000)

			return &ingest.EmailVerdict{
				IsTransaction:   true,
				Amount:          decimal.NewFromInt(99),
				Merchant:        "Ravi",
				TransactionType: "credit",
				Confidence:      0.95,
			}, nil
		})

	n, rej := ingest.NormalizeEmail(context.Background(), ex, ingest.Email{Subject: "UPI", Body: body}, zerolog.Nop())
	require.Nil(t, rej)
	assert.Equal(t, extract.Credit, n.Candidate.Direction)
	assert.Equal(t, "credit", n.Metadata["transaction_type"])
}

func TestNormalizeEmail_NoExtractorUsesRules(t *testing.T) {
	n, rej := ingest.NormalizeEmail(context.Background(), nil, ingest.Email{
		Subject: "Payment received",
		Sender:  "billing@shop.example",
		Body:    "Amount: Rs. 2,000 paid to Corner Store",
	}, zerolog.Nop())

	require.Nil(t, rej)
	assert.True(t, decimal.NewFromInt(2000).Equal(n.Candidate.Amount))
	assert.Equal(t, "Corner Store", n.Candidate.Counterparty)
}
