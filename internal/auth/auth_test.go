package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/auth"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestVerifier_RoundTrip(t *testing.T) {
	want := auth.Principal{Owner: account.Owner{ID: 42, Type: account.TypeBusiness}, SMSConsent: true}

	token, err := auth.Issue(secret, want, time.Hour)
	require.NoError(t, err)

	got, err := auth.NewVerifier(secret).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestVerifier_Rejects(t *testing.T) {
	valid := auth.Principal{Owner: account.Owner{ID: 1, Type: account.TypeConsumer}}

	sign := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)

		return s
	}

	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name  string
		token func() string
	}{
		{"Garbage", func() string { return "not-a-token" }},
		{"WrongSecret", func() string {
			s, err := auth.Issue("another-secret-another-secret-xx", valid, time.Hour)
			require.NoError(t, err)

			return s
		}},
		{"Expired", func() string {
			s, err := auth.Issue(secret, valid, -time.Minute)
			require.NoError(t, err)

			return s
		}},
		{"NoExpiry", func() string {
			return sign(jwt.SigningMethodHS256, []byte(secret), auth.Claims{
				AccountType:      account.TypeConsumer,
				RegisteredClaims: jwt.RegisteredClaims{Issuer: "lumen", Subject: "1"},
			})
		}},
		{"NonNumericSubject", func() string {
			return sign(jwt.SigningMethodHS256, []byte(secret), auth.Claims{
				AccountType:      account.TypeConsumer,
				RegisteredClaims: jwt.RegisteredClaims{Issuer: "lumen", Subject: "alice", ExpiresAt: future},
			})
		}},
		{"UnknownAccountType", func() string {
			return sign(jwt.SigningMethodHS256, []byte(secret), auth.Claims{
				AccountType:      "admin",
				RegisteredClaims: jwt.RegisteredClaims{Issuer: "lumen", Subject: "1", ExpiresAt: future},
			})
		}},
		{"WrongAlgorithm", func() string {
			return sign(jwt.SigningMethodHS512, []byte(secret), auth.Claims{
				AccountType:      account.TypeConsumer,
				RegisteredClaims: jwt.RegisteredClaims{Issuer: "lumen", Subject: "1", ExpiresAt: future},
			})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.NewVerifier(secret).Verify(tt.token())
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestContext(t *testing.T) {
	_, ok := auth.FromContext(context.Background())
	assert.False(t, ok)

	p := auth.Principal{Owner: account.Owner{ID: 3, Type: account.TypeConsumer}}
	got, ok := auth.FromContext(auth.WithPrincipal(context.Background(), p))
	require.True(t, ok)
	assert.Equal(t, p, got)
}
