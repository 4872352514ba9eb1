package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/classify"
	"github.com/MrJamesThe3rd/lumen/internal/extract"
	"github.com/MrJamesThe3rd/lumen/internal/merchant"
	"github.com/MrJamesThe3rd/lumen/internal/transaction"
)

var owner = account.Owner{ID: 3, Type: account.TypeConsumer}

func swiggy() *merchant.Merchant {
	return &merchant.Merchant{
		ID:             uuid.New(),
		Owner:          owner,
		NormalizedName: "swiggy",
		NameVariants:   []string{"Swiggy"},
	}
}

func candidate(amount string) *extract.Candidate {
	return &extract.Candidate{
		Amount:       decimal.RequireFromString(amount),
		Counterparty: "Swiggy",
		Network:      extract.NetworkUPI,
		ReferenceID:  "412345678901",
		Direction:    extract.Debit,
		Method:       extract.MethodRegex,
	}
}

func expectSource(itx *transaction.MockIngestTx) {
	itx.EXPECT().
		CreateSource(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, src *transaction.Source) error {
			src.ID = uuid.New()
			return nil
		})
}

func TestService_Record(t *testing.T) {
	m := swiggy()
	boom := errors.New("boom")

	type testCase struct {
		name      string
		params    transaction.RecordParams
		setupMock func(itx *transaction.MockIngestTx)
		wantTx    bool
		wantDrop  bool
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "SMSCreatesSourceMerchantAndTransaction",
			params: transaction.RecordParams{
				Owner:                owner,
				Channel:              transaction.ChannelSMS,
				Text:                 "Rs.500 debited",
				ExtractionConfidence: 1,
				Candidate:            candidate("500"),
				Counterparty:         "Swiggy",
				Classification:       classify.Result{Category: "Food & Dining", Confidence: 0.9},
			},
			setupMock: func(itx *transaction.MockIngestTx) {
				expectSource(itx)
				itx.EXPECT().FindByName(gomock.Any(), owner, "swiggy").Return(m, nil)
				itx.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
				itx.EXPECT().Commit().Return(nil)
			},
			wantTx: true,
		},
		{
			name: "EmailRecordsMessageInLedger",
			params: transaction.RecordParams{
				Owner:        owner,
				Channel:      transaction.ChannelEmail,
				ExternalID:   "msg-1",
				Candidate:    candidate("1299"),
				Counterparty: "Swiggy",
			},
			setupMock: func(itx *transaction.MockIngestTx) {
				expectSource(itx)
				itx.EXPECT().FindByName(gomock.Any(), owner, "swiggy").Return(m, nil)
				itx.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
				itx.EXPECT().MarkMessageProcessed(gomock.Any(), "msg-1", gomock.Any()).Return(nil)
				itx.EXPECT().Commit().Return(nil)
			},
			wantTx: true,
		},
		{
			name: "NoAmountKeepsSourceOnly",
			params: transaction.RecordParams{
				Owner:     owner,
				Channel:   transaction.ChannelUpload,
				Filename:  "blank.png",
				Candidate: &extract.Candidate{},
			},
			setupMock: func(itx *transaction.MockIngestTx) {
				expectSource(itx)
				itx.EXPECT().Commit().Return(nil)
			},
		},
		{
			name: "UploadFailureRollsBackToSavepoint",
			params: transaction.RecordParams{
				Owner:               owner,
				Channel:             transaction.ChannelUpload,
				Candidate:           candidate("80"),
				Counterparty:        "Swiggy",
				KeepSourceOnFailure: true,
			},
			setupMock: func(itx *transaction.MockIngestTx) {
				expectSource(itx)
				itx.EXPECT().Savepoint(gomock.Any()).Return(nil)
				itx.EXPECT().FindByName(gomock.Any(), owner, "swiggy").Return(m, nil)
				itx.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(boom)
				itx.EXPECT().RollbackToSavepoint(gomock.Any()).Return(nil)
				itx.EXPECT().Commit().Return(nil)
			},
			wantDrop: true,
		},
		{
			name: "SMSFailureRollsBackEverything",
			params: transaction.RecordParams{
				Owner:        owner,
				Channel:      transaction.ChannelSMS,
				Candidate:    candidate("80"),
				Counterparty: "Swiggy",
			},
			setupMock: func(itx *transaction.MockIngestTx) {
				expectSource(itx)
				itx.EXPECT().FindByName(gomock.Any(), owner, "swiggy").Return(nil, boom)
			},
			wantErr: true,
		},
		{
			name: "DuplicateMessageFails",
			params: transaction.RecordParams{
				Owner:        owner,
				Channel:      transaction.ChannelEmail,
				ExternalID:   "msg-1",
				Candidate:    candidate("80"),
				Counterparty: "Swiggy",
			},
			setupMock: func(itx *transaction.MockIngestTx) {
				expectSource(itx)
				itx.EXPECT().FindByName(gomock.Any(), owner, "swiggy").Return(m, nil)
				itx.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
				itx.EXPECT().MarkMessageProcessed(gomock.Any(), "msg-1", gomock.Any()).Return(transaction.ErrAlreadyProcessed)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := transaction.NewMockRepository(ctrl)
			itx := transaction.NewMockIngestTx(ctrl)

			repo.EXPECT().BeginIngest(gomock.Any()).Return(itx, nil)
			itx.EXPECT().Rollback().Return(nil).AnyTimes()
			tt.setupMock(itx)

			svc := transaction.NewService(repo, zerolog.Nop())

			res, err := svc.Record(context.Background(), tt.params)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, res.Source)
			assert.True(t, res.Source.Processed)
			assert.Equal(t, tt.params.Channel, res.Source.Channel)
			assert.Equal(t, tt.wantTx, res.Transaction != nil)
			assert.Equal(t, tt.wantDrop, res.Dropped != nil)

			if res.Transaction != nil {
				assert.Equal(t, res.Source.ID, res.Transaction.SourceID)
				assert.Equal(t, m.ID, res.Transaction.MerchantID)
				assert.Equal(t, owner, res.Transaction.Owner)
			}
		})
	}
}

func TestService_Record_CreatesMerchantOnFirstSighting(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockIngestTx(ctrl)
	merchantID := uuid.New()

	repo.EXPECT().BeginIngest(gomock.Any()).Return(itx, nil)
	itx.EXPECT().Rollback().Return(nil).AnyTimes()
	expectSource(itx)
	itx.EXPECT().FindByName(gomock.Any(), owner, "zomato").Return(nil, merchant.ErrNotFound)
	itx.EXPECT().ListByOwner(gomock.Any(), owner).Return([]*merchant.Merchant{swiggy()}, nil)
	itx.EXPECT().
		CreateMerchant(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *merchant.Merchant) error {
			assert.Equal(t, "zomato", m.NormalizedName)
			assert.Equal(t, []string{"Zomato"}, m.NameVariants)
			m.ID = merchantID

			return nil
		})
	itx.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
	itx.EXPECT().Commit().Return(nil)

	svc := transaction.NewService(repo, zerolog.Nop())

	c := candidate("320")
	c.Counterparty = "Zomato"

	res, err := svc.Record(context.Background(), transaction.RecordParams{
		Owner:        owner,
		Channel:      transaction.ChannelSMS,
		Candidate:    c,
		Counterparty: "  Zomato  ",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Transaction)
	assert.Equal(t, merchantID, res.Transaction.MerchantID)
	assert.True(t, res.Merchant.Created)
}

func TestService_Record_RejectsInvalidOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := transaction.NewService(transaction.NewMockRepository(ctrl), zerolog.Nop())

	_, err := svc.Record(context.Background(), transaction.RecordParams{Channel: transaction.ChannelSMS})
	assert.ErrorIs(t, err, account.ErrInvalidOwner)
}

func TestAssemble(t *testing.T) {
	src := &transaction.Source{ID: uuid.New(), Owner: owner, Channel: transaction.ChannelUpload}
	m := swiggy()
	balance := decimal.RequireFromString("12000.50")
	date := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)

	long := make([]rune, 300)
	for i := range long {
		long[i] = 'x'
	}

	tx := transaction.Assemble(transaction.AssembleParams{
		Source:     src,
		Resolution: &merchant.Resolution{Merchant: m, Suggestion: &merchant.Merchant{NormalizedName: "swiggy instamart"}},
		Candidate: extract.Candidate{
			Amount:        decimal.RequireFromString("250"),
			Handle:        "swiggy@icici",
			MaskedAccount: "XX1234",
			Balance:       &balance,
			Method:        extract.MethodAI,
		},
		Classification:       classify.Result{Category: "Food & Dining", Confidence: 0.8, Reasoning: "food delivery"},
		RawName:              string(long),
		ExtractionConfidence: 0.7,
		Date:                 date,
		Metadata:             map[string]any{"filename": "r.png"},
	})

	assert.Equal(t, transaction.DefaultCurrency, tx.Currency)
	assert.False(t, tx.Confirmed)
	assert.Equal(t, extract.NetworkUnknown, tx.Network)
	assert.Equal(t, extract.Debit, tx.Direction)
	assert.Len(t, []rune(tx.MerchantNameRaw), 255)
	assert.Equal(t, 0.7, tx.ExtractionConfidence)
	assert.Equal(t, date, tx.Date)
	assert.Equal(t, "r.png", tx.Metadata["filename"])
	assert.Equal(t, "swiggy@icici", tx.Metadata["payment_handle"])
	assert.Equal(t, "XX1234", tx.Metadata["account_number"])
	assert.Equal(t, "12000.5", tx.Metadata["balance"])
	assert.Equal(t, "food delivery", tx.Metadata["classification_reasoning"])
	assert.Equal(t, "swiggy instamart", tx.Metadata["merchant_suggestion"])
	assert.Equal(t, "ai", tx.Metadata["extraction_method"])
}

func TestChannel_Confirmed(t *testing.T) {
	assert.False(t, transaction.ChannelUpload.Confirmed())
	assert.True(t, transaction.ChannelSMS.Confirmed())
	assert.True(t, transaction.ChannelEmail.Confirmed())
	assert.True(t, transaction.ChannelManual.Confirmed())
}
