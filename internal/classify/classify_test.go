package classify_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/classify"
)

func TestAdapter_Classify(t *testing.T) {
	vocabulary := []string{"Food & Dining", "Shopping"}

	tests := []struct {
		name      string
		setupMock func(m *classify.MockClassifier)
		want      classify.Result
	}{
		{
			name: "Success",
			setupMock: func(m *classify.MockClassifier) {
				m.EXPECT().
					Classify(gomock.Any(), gomock.Any()).
					Return(classify.Result{Category: "food & dining", Confidence: 0.92, Reasoning: "food delivery"}, nil)
			},
			want: classify.Result{Category: "Food & Dining", Confidence: 0.92, Reasoning: "food delivery"},
		},
		{
			name: "CollaboratorError",
			setupMock: func(m *classify.MockClassifier) {
				m.EXPECT().
					Classify(gomock.Any(), gomock.Any()).
					Return(classify.Result{}, errors.New("quota exceeded"))
			},
			want: classify.Result{Category: classify.Unknown, Confidence: 0},
		},
		{
			name: "OutsideVocabulary",
			setupMock: func(m *classify.MockClassifier) {
				m.EXPECT().
					Classify(gomock.Any(), gomock.Any()).
					Return(classify.Result{Category: "Crypto", Confidence: 0.8}, nil)
			},
			want: classify.Result{Category: classify.Unknown, Confidence: 0.8},
		},
		{
			name: "BelowThreshold",
			setupMock: func(m *classify.MockClassifier) {
				m.EXPECT().
					Classify(gomock.Any(), gomock.Any()).
					Return(classify.Result{Category: "Shopping", Confidence: 0.1}, nil)
			},
			want: classify.Result{Category: classify.Unknown, Confidence: 0.1},
		},
		{
			name: "ConfidenceClamped",
			setupMock: func(m *classify.MockClassifier) {
				m.EXPECT().
					Classify(gomock.Any(), gomock.Any()).
					Return(classify.Result{Category: "Shopping", Confidence: 7}, nil)
			},
			want: classify.Result{Category: "Shopping", Confidence: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := classify.NewMockClassifier(ctrl)
			tt.setupMock(m)

			adapter := classify.NewAdapter(m, zerolog.Nop())
			got := adapter.Classify(context.Background(), classify.Request{
				Counterparty: "swiggy",
				Amount:       decimal.NewFromInt(500),
				Vocabulary:   vocabulary,
			})

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdapter_NilClassifier(t *testing.T) {
	got := classify.NewAdapter(nil, zerolog.Nop()).Classify(context.Background(), classify.Request{})

	assert.True(t, got.Failed())
}

func TestExplicit(t *testing.T) {
	got := classify.Explicit("Groceries")

	assert.Equal(t, "Groceries", got.Category)
	assert.Equal(t, 1.0, got.Confidence)
}

func TestLoadVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("business:\n  - Inventory\n  - Logistics\n"), 0o600))

	v, err := classify.LoadVocabulary(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Inventory", "Logistics"}, v.For(account.TypeBusiness))
	assert.Equal(t, classify.DefaultVocabulary().Consumer, v.For(account.TypeConsumer))
}

func TestLoadVocabulary_Missing(t *testing.T) {
	_, err := classify.LoadVocabulary(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}
