package merchant_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/merchant"
)

var owner = account.Owner{ID: 7, Type: account.TypeConsumer}

func TestResolver_Resolve(t *testing.T) {
	existingID := uuid.New()

	type testCase struct {
		name        string
		raw         string
		variants    []string
		setupMock   func(m *merchant.MockRepository)
		wantCreated bool
		wantName    string
		wantVariant []string
		wantErr     bool
	}

	tests := []testCase{
		{
			name:     "CreatesOnMiss",
			raw:      "  Swiggy ",
			variants: []string{"swiggy@paytm"},
			setupMock: func(m *merchant.MockRepository) {
				m.EXPECT().FindByName(gomock.Any(), owner, "swiggy").Return(nil, merchant.ErrNotFound)
				m.EXPECT().ListByOwner(gomock.Any(), owner).Return(nil, nil)
				m.EXPECT().
					CreateMerchant(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, mc *merchant.Merchant) error {
						mc.ID = uuid.New()
						return nil
					})
			},
			wantCreated: true,
			wantName:    "swiggy",
			wantVariant: []string{"Swiggy", "swiggy@paytm"},
		},
		{
			name: "ReusesAndAppendsNewSpelling",
			raw:  "ZOMATO",
			setupMock: func(m *merchant.MockRepository) {
				m.EXPECT().FindByName(gomock.Any(), owner, "zomato").Return(&merchant.Merchant{
					ID:             existingID,
					Owner:          owner,
					NormalizedName: "zomato",
					NameVariants:   []string{"Zomato"},
				}, nil)
				m.EXPECT().AddVariant(gomock.Any(), existingID, "ZOMATO").Return(nil)
			},
			wantName:    "zomato",
			wantVariant: []string{"Zomato", "ZOMATO"},
		},
		{
			name: "ReusesKnownSpellingWithoutWrite",
			raw:  "Zomato",
			setupMock: func(m *merchant.MockRepository) {
				m.EXPECT().FindByName(gomock.Any(), owner, "zomato").Return(&merchant.Merchant{
					ID:             existingID,
					NormalizedName: "zomato",
					NameVariants:   []string{"Zomato"},
				}, nil)
			},
			wantName:    "zomato",
			wantVariant: []string{"Zomato"},
		},
		{
			name: "LookupError",
			raw:  "Zomato",
			setupMock: func(m *merchant.MockRepository) {
				m.EXPECT().FindByName(gomock.Any(), owner, "zomato").Return(nil, errors.New("db down"))
			},
			wantErr: true,
		},
		{
			name:      "EmptyName",
			raw:       "   ",
			setupMock: func(m *merchant.MockRepository) {},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := merchant.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := merchant.NewResolver(repo, zerolog.Nop()).Resolve(context.Background(), tt.raw, owner, tt.variants...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, got.Created)
			assert.Equal(t, tt.wantName, got.Merchant.NormalizedName)
			assert.Equal(t, tt.wantVariant, got.Merchant.NameVariants)
		})
	}
}

// memRepo mirrors the store's matching rules in memory.
type memRepo struct {
	merchants []*merchant.Merchant
}

func (r *memRepo) FindByName(_ context.Context, o account.Owner, name string) (*merchant.Merchant, error) {
	var best *merchant.Merchant

	for _, m := range r.merchants {
		if m.Owner != o {
			continue
		}

		if m.NormalizedName == name {
			return m, nil
		}

		if strings.Contains(m.NormalizedName, name) || strings.Contains(name, m.NormalizedName) {
			if best == nil || len(m.NormalizedName) > len(best.NormalizedName) {
				best = m
			}
		}
	}

	if best == nil {
		return nil, merchant.ErrNotFound
	}

	return best, nil
}

func (r *memRepo) ListByOwner(_ context.Context, o account.Owner) ([]*merchant.Merchant, error) {
	var out []*merchant.Merchant

	for _, m := range r.merchants {
		if m.Owner == o {
			out = append(out, m)
		}
	}

	return out, nil
}

func (r *memRepo) CreateMerchant(_ context.Context, m *merchant.Merchant) error {
	m.ID = uuid.New()
	r.merchants = append(r.merchants, m)

	return nil
}

func (r *memRepo) AddVariant(context.Context, uuid.UUID, string) error { return nil }

func TestResolver_SameMerchantAcrossSpellings(t *testing.T) {
	repo := &memRepo{}
	resolver := merchant.NewResolver(repo, zerolog.Nop())
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, "Zomato", owner)
	require.NoError(t, err)

	second, err := resolver.Resolve(ctx, "  zomato  ", owner)
	require.NoError(t, err)

	assert.True(t, first.Created)
	assert.False(t, second.Created)
	assert.Equal(t, first.Merchant.ID, second.Merchant.ID)
	assert.Len(t, repo.merchants, 1)
}

func TestResolver_OwnerScoped(t *testing.T) {
	repo := &memRepo{}
	resolver := merchant.NewResolver(repo, zerolog.Nop())
	ctx := context.Background()

	business := account.Owner{ID: 7, Type: account.TypeBusiness}

	a, err := resolver.Resolve(ctx, "Zomato", owner)
	require.NoError(t, err)

	b, err := resolver.Resolve(ctx, "Zomato", business)
	require.NoError(t, err)

	assert.NotEqual(t, a.Merchant.ID, b.Merchant.ID)
}

func TestResolver_SuggestsNearDuplicate(t *testing.T) {
	repo := &memRepo{}
	resolver := merchant.NewResolver(repo, zerolog.Nop())
	ctx := context.Background()

	_, err := resolver.Resolve(ctx, "Starbucks", owner)
	require.NoError(t, err)

	got, err := resolver.Resolve(ctx, "Starbuks", owner)
	require.NoError(t, err)

	assert.True(t, got.Created)
	require.NotNil(t, got.Suggestion)
	assert.Equal(t, "starbucks", got.Suggestion.NormalizedName)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "amazon india", merchant.Normalize("  Amazon   INDIA "))
}
