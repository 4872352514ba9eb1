package ingest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/classify"
	"github.com/MrJamesThe3rd/lumen/internal/ingest"
	"github.com/MrJamesThe3rd/lumen/internal/transaction"
)

var consumer = account.Owner{ID: 11, Type: account.TypeConsumer}

type collaborators struct {
	recorder   *ingest.MockRecorder
	classifier *ingest.MockClassifier
	ocr        *ingest.MockTextExtractor
	emails     *ingest.MockEmailExtractor
	indexer    *ingest.MockIndexer
}

func newService(t *testing.T) (*ingest.Service, collaborators) {
	ctrl := gomock.NewController(t)
	c := collaborators{
		recorder:   ingest.NewMockRecorder(ctrl),
		classifier: ingest.NewMockClassifier(ctrl),
		ocr:        ingest.NewMockTextExtractor(ctrl),
		emails:     ingest.NewMockEmailExtractor(ctrl),
		indexer:    ingest.NewMockIndexer(ctrl),
	}

	svc := ingest.NewService(c.recorder, c.classifier, zerolog.Nop(),
		ingest.WithTextExtractor(c.ocr),
		ingest.WithEmailExtractor(c.emails),
		ingest.WithIndexer(c.indexer),
	)

	return svc, c
}

// recordAll stands in for the transaction service: every call with an amount gets a transaction.
func recordAll(_ context.Context, p transaction.RecordParams) (*transaction.RecordResult, error) {
	src := &transaction.Source{ID: uuid.New(), Owner: p.Owner, Channel: p.Channel, Processed: true}
	res := &transaction.RecordResult{Source: src}

	if p.Candidate != nil && p.Candidate.HasAmount() {
		res.Transaction = &transaction.Transaction{
			ID:        uuid.New(),
			SourceID:  src.ID,
			Owner:     p.Owner,
			Amount:    p.Candidate.Amount,
			Category:  p.Classification.Category,
			Channel:   p.Channel,
			Confirmed: p.Channel.Confirmed(),
		}
	}

	return res, nil
}

func TestService_IngestSMS(t *testing.T) {
	svc, c := newService(t)

	c.classifier.EXPECT().
		Classify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req classify.Request) classify.Result {
			assert.Equal(t, "swiggy", req.Counterparty)
			assert.Equal(t, classify.DefaultVocabulary().Consumer, req.Vocabulary)
			assert.NotContains(t, req.Fields, "raw_sms")

			return classify.Result{Category: "Food & Dining", Confidence: 0.92}
		})
	c.recorder.EXPECT().
		Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, p transaction.RecordParams) (*transaction.RecordResult, error) {
			assert.Equal(t, transaction.ChannelSMS, p.Channel)
			assert.Equal(t, consumer, p.Owner)
			assert.Equal(t, []string{"swiggy@paytm"}, p.Variants)
			assert.Equal(t, 1.0, p.ExtractionConfidence)
			assert.False(t, p.KeepSourceOnFailure)

			return recordAll(ctx, p)
		})
	c.indexer.EXPECT().Index(gomock.Any(), gomock.Any(), consumer).Return(errors.New("embedding quota"))

	res, err := svc.IngestSMS(context.Background(), consumer, ingest.SMS{Raw: forwardedSMS})
	svc.Wait()

	require.NoError(t, err)
	require.False(t, res.Rejected())
	require.NotNil(t, res.Transaction)
	assert.True(t, res.Transaction.Confirmed)
	assert.Equal(t, "Food & Dining", res.Classification.Category)
}

func TestService_IngestSMS_RejectionPersistsNothing(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.IngestSMS(context.Background(), consumer, ingest.SMS{Raw: "Happy birthday!"})
	require.NoError(t, err)
	require.True(t, res.Rejected())
	assert.Equal(t, ingest.ReasonNonPayment, res.Rejection.Reason)
	assert.Nil(t, res.Source)
}

func TestService_IngestEmail(t *testing.T) {
	svc, c := newService(t)

	c.emails.EXPECT().ExtractEmail(gomock.Any(), gomock.Any()).Return(&ingest.EmailVerdict{
		IsTransaction: true,
		Amount:        decimal.NewFromInt(1299),
		Merchant:      "Amazon India",
		Confidence:    0.9,
	}, nil)
	c.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(classify.Result{Category: "Shopping", Confidence: 0.8})
	c.recorder.EXPECT().
		Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, p transaction.RecordParams) (*transaction.RecordResult, error) {
			assert.Equal(t, transaction.ChannelEmail, p.Channel)
			assert.Equal(t, "msg-42", p.ExternalID)
			assert.Equal(t, "Amazon India", p.Counterparty)

			return recordAll(ctx, p)
		})
	c.indexer.EXPECT().Index(gomock.Any(), gomock.Any(), consumer).Return(nil)

	res, err := svc.IngestEmail(context.Background(), consumer, ingest.Email{
		MessageID: "msg-42",
		Subject:   "Payment Successful",
		Sender:    "payments@amazon.in",
		Body:      "Your payment of Rs 1,299.00 was successful.",
	})
	svc.Wait()

	require.NoError(t, err)
	require.NotNil(t, res.Transaction)
	assert.True(t, res.Transaction.Confirmed)
	assert.Equal(t, "Shopping", res.Transaction.Category)
}

func TestService_IngestEmail_RecordErrorPropagates(t *testing.T) {
	svc, c := newService(t)

	c.emails.EXPECT().ExtractEmail(gomock.Any(), gomock.Any()).Return(&ingest.EmailVerdict{
		IsTransaction: true,
		Amount:        decimal.NewFromInt(10),
		Merchant:      "Chai",
		Confidence:    0.9,
	}, nil)
	c.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(classify.Result{Category: classify.Unknown})
	c.recorder.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	_, err := svc.IngestEmail(context.Background(), consumer, ingest.Email{MessageID: "m", Subject: "payment", Body: "Rs 10"})
	assert.Error(t, err)
}

func TestService_IngestUpload_EmptyOCRRecordsSourceOnly(t *testing.T) {
	svc, c := newService(t)

	c.ocr.EXPECT().ExtractText(gomock.Any(), pngBytes, "image/png").Return("", 0.0, nil)
	c.recorder.EXPECT().
		Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, p transaction.RecordParams) (*transaction.RecordResult, error) {
			assert.True(t, p.KeepSourceOnFailure)
			assert.Equal(t, "cat.png", p.Filename)
			assert.False(t, p.Candidate.HasAmount())

			return recordAll(ctx, p)
		})

	res, err := svc.IngestUpload(context.Background(), consumer, ingest.Upload{Filename: "cat.png", Content: pngBytes})
	svc.Wait()

	require.NoError(t, err)
	require.NotNil(t, res.Source)
	assert.True(t, res.Source.Processed)
	assert.Nil(t, res.Transaction)
}

func TestService_IngestUpload_RejectsUnsupportedType(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.IngestUpload(context.Background(), consumer, ingest.Upload{Filename: "a.txt", Content: []byte("plain text")})

	var verr *ingest.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestService_ClassificationFailureStillRecords(t *testing.T) {
	ctrl := gomock.NewController(t)
	recorder := ingest.NewMockRecorder(ctrl)
	failing := classify.NewMockClassifier(ctrl)

	failing.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(classify.Result{}, context.DeadlineExceeded)
	recorder.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(recordAll)

	svc := ingest.NewService(recorder, classify.NewAdapter(failing, zerolog.Nop()), zerolog.Nop())

	res, err := svc.IngestSMS(context.Background(), consumer, ingest.SMS{Raw: forwardedSMS})
	require.NoError(t, err)
	require.NotNil(t, res.Transaction)
	assert.Equal(t, classify.Unknown, res.Classification.Category)
	assert.Zero(t, res.Classification.Confidence)
}

func TestService_IngestManual(t *testing.T) {
	business := account.Owner{ID: 4, Type: account.TypeBusiness}

	t.Run("ExplicitCategorySkipsClassifier", func(t *testing.T) {
		svc, c := newService(t)

		c.recorder.EXPECT().
			Record(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, p transaction.RecordParams) (*transaction.RecordResult, error) {
				assert.Equal(t, transaction.ChannelManual, p.Channel)
				assert.Equal(t, classify.Explicit("Office Supplies"), p.Classification)
				assert.Equal(t, "business", p.Metadata["entry_type"])
				assert.Equal(t, "18", p.Metadata["gst_amount"])

				return recordAll(ctx, p)
			})
		c.indexer.EXPECT().Index(gomock.Any(), gomock.Any(), business).Return(nil)

		gst := decimal.NewFromInt(18)
		res, err := svc.IngestManual(context.Background(), business, ingest.ManualEntry{
			Amount:        decimal.NewFromInt(118),
			Party:         "Stationery World",
			PaymentMethod: "cheque",
			Category:      "Office Supplies",
			GSTAmount:     &gst,
		})
		svc.Wait()

		require.NoError(t, err)
		assert.Equal(t, 1.0, res.Classification.Confidence)
	})

	t.Run("InvalidEntryNeverRecords", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.IngestManual(context.Background(), consumer, ingest.ManualEntry{Party: "x", PaymentMethod: "cash"})

		var verr *ingest.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}
