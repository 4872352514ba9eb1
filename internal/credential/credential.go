package credential

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

var ErrNotFound = errors.New("credential not found")

// Handle is a stored OAuth credential for one poller identity.
type Handle struct {
	Identity  string
	Token     *oauth2.Token
	UpdatedAt time.Time
}

// Valid reports whether the access token can be used right now.
func (h *Handle) Valid() bool {
	return h != nil && h.Token.Valid()
}

func (h *Handle) Expired() bool {
	return h != nil && h.Token != nil && h.Token.AccessToken != "" && !h.Token.Valid()
}

func (h *Handle) CanRefresh() bool {
	return h != nil && h.Token != nil && h.Token.RefreshToken != ""
}

//go:generate mockgen -source=credential.go -destination=store_mock.go -package=credential
type Store interface {
	Load(ctx context.Context, identity string) (*Handle, error)
	// Save replaces the stored credential atomically.
	Save(ctx context.Context, h *Handle) error
	Clear(ctx context.Context, identity string) error
}

// savingSource persists every new access token minted by the wrapped source.
type savingSource struct {
	ctx      context.Context
	store    Store
	identity string
	base     oauth2.TokenSource
	log      zerolog.Logger

	mu   sync.Mutex
	last string
}

// SavingTokenSource wraps base so refreshed tokens replace the stored credential.
// Save failures are logged; the fresh token is still returned.
func SavingTokenSource(ctx context.Context, store Store, identity string, current *oauth2.Token, base oauth2.TokenSource, log zerolog.Logger) oauth2.TokenSource {
	s := &savingSource{
		ctx:      context.WithoutCancel(ctx),
		store:    store,
		identity: identity,
		base:     base,
		log:      log,
	}

	if current != nil {
		s.last = current.AccessToken
	}

	return s
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tok.AccessToken == s.last {
		return tok, nil
	}

	if err := s.store.Save(s.ctx, &Handle{Identity: s.identity, Token: tok}); err != nil {
		s.log.Error().Err(err).Str("identity", s.identity).Msg("saving refreshed token")
		return tok, nil
	}

	s.last = tok.AccessToken
	s.log.Info().Str("identity", s.identity).Time("expiry", tok.Expiry).Msg("stored refreshed token")

	return tok, nil
}
