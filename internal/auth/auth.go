// Package auth issues and verifies the bearer tokens that identify an account owner.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrJamesThe3rd/lumen/internal/account"
)

var ErrInvalidToken = errors.New("invalid bearer token")

const issuer = "lumen"

type Claims struct {
	AccountType account.Type `json:"account_type"`
	SMSConsent  bool         `json:"sms_consent"`
	jwt.RegisteredClaims
}

// Principal is the caller resolved from a verified token.
type Principal struct {
	Owner      account.Owner
	SMSConsent bool
}

type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuer(issuer),
		),
	}
}

func (v *Verifier) Verify(token string) (Principal, error) {
	var claims Claims

	_, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: subject %q is not an account id", ErrInvalidToken, claims.Subject)
	}

	owner := account.Owner{ID: id, Type: claims.AccountType}
	if err := owner.Validate(); err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return Principal{Owner: owner, SMSConsent: claims.SMSConsent}, nil
}

// Issue signs a token for p valid for ttl. Used by operator tooling and tests; the
// account service owns token issuance in production.
func Issue(secret string, p Principal, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		AccountType: p.Owner.Type,
		SMSConsent:  p.SMSConsent,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(p.Owner.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
