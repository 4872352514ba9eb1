package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/MrJamesThe3rd/lumen/internal/credential"
)

const stateTTL = 10 * time.Minute

type Config struct {
	ClientID       string
	ClientSecret   string
	RedirectURL    string
	MonitoredEmail string
	// Identity keys the stored credential.
	Identity string
}

// OAuthConfig returns the Google OAuth client for the mailbox scope.
func (c Config) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmailapi.GmailModifyScope},
	}
}

// Connector owns the credential lifecycle for the monitored mailbox.
type Connector struct {
	cfg    Config
	oauth  *oauth2.Config
	store  credential.Store
	log    zerolog.Logger
	apiOps []option.ClientOption
	now    func() time.Time

	mu     sync.Mutex
	states map[string]time.Time
}

type ConnectorOption func(*Connector)

// WithOAuthConfig overrides the OAuth client built from Config.
func WithOAuthConfig(o *oauth2.Config) ConnectorOption {
	return func(c *Connector) { c.oauth = o }
}

// WithClientOptions adds Gmail API client options such as a custom endpoint.
func WithClientOptions(opts ...option.ClientOption) ConnectorOption {
	return func(c *Connector) { c.apiOps = append(c.apiOps, opts...) }
}

func NewConnector(cfg Config, store credential.Store, log zerolog.Logger, opts ...ConnectorOption) *Connector {
	c := &Connector{
		cfg:    cfg,
		oauth:  cfg.OAuthConfig(),
		store:  store,
		log:    log,
		now:    time.Now,
		states: make(map[string]time.Time),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Connector) MonitoredEmail() string {
	return c.cfg.MonitoredEmail
}

// Authenticated reports whether a usable or refreshable credential is stored.
func (c *Connector) Authenticated(ctx context.Context) bool {
	h, err := c.store.Load(ctx, c.cfg.Identity)
	if err != nil {
		return false
	}

	return h.Valid() || h.CanRefresh()
}

// Connect loads the stored credential, refreshes it when needed and verifies the
// mailbox identity. Credentials that cannot be refreshed or that belong to another
// mailbox are cleared.
func (c *Connector) Connect(ctx context.Context) (Mailbox, error) {
	h, err := c.store.Load(ctx, c.cfg.Identity)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return nil, ErrNoCredential
		}

		return nil, fmt.Errorf("loading credential: %w", err)
	}

	tok := h.Token

	if !h.Valid() {
		if tok, err = c.refresh(ctx, h); err != nil {
			return nil, err
		}
	}

	bg := context.WithoutCancel(ctx)
	ts := credential.SavingTokenSource(ctx, c.store, c.cfg.Identity, tok, c.oauth.TokenSource(bg, tok), c.log)

	mb, err := c.open(ctx, ts)
	if err != nil {
		return nil, err
	}

	if err := c.verify(ctx, mb); err != nil {
		return nil, err
	}

	c.log.Info().Str("mailbox", mb.Address()).Msg("mailbox connected")

	return mb, nil
}

func (c *Connector) refresh(ctx context.Context, h *credential.Handle) (*oauth2.Token, error) {
	if !h.CanRefresh() {
		c.clear(ctx, "expired without refresh token")
		return nil, fmt.Errorf("%w: no refresh token", ErrRefresh)
	}

	tok, err := c.oauth.TokenSource(ctx, h.Token).Token()
	if err != nil {
		if !refreshRejected(err) {
			return nil, fmt.Errorf("%w: %w", ErrRefreshUnavailable, err)
		}

		c.clear(ctx, "refresh rejected")

		return nil, fmt.Errorf("%w: %v", ErrRefresh, err)
	}

	if err := c.store.Save(ctx, &credential.Handle{Identity: c.cfg.Identity, Token: tok}); err != nil {
		return nil, fmt.Errorf("saving refreshed credential: %w", err)
	}

	return tok, nil
}

// refreshRejected reports whether the token endpoint definitively refused the refresh
// token. Network failures and 5xx answers leave the stored credential usable.
func refreshRejected(err error) bool {
	var rerr *oauth2.RetrieveError
	if !errors.As(err, &rerr) {
		return false
	}

	if rerr.ErrorCode == "invalid_grant" {
		return true
	}

	if rerr.Response == nil {
		return false
	}

	return rerr.Response.StatusCode == http.StatusBadRequest || rerr.Response.StatusCode == http.StatusUnauthorized
}

func (c *Connector) verify(ctx context.Context, mb *serviceMailbox) error {
	address, err := mb.profile(ctx)
	if err != nil {
		return fmt.Errorf("reading mailbox profile: %w", err)
	}

	if c.cfg.MonitoredEmail != "" && !strings.EqualFold(address, c.cfg.MonitoredEmail) {
		c.log.Warn().Str("mailbox", address).Str("expected", c.cfg.MonitoredEmail).Msg("mailbox identity mismatch")
		c.clear(ctx, "mailbox mismatch")

		return ErrMailboxMismatch
	}

	mb.address = address

	return nil
}

func (c *Connector) clear(ctx context.Context, reason string) {
	if err := c.store.Clear(ctx, c.cfg.Identity); err != nil {
		c.log.Error().Err(err).Str("reason", reason).Msg("clearing credential")
		return
	}

	c.log.Warn().Str("reason", reason).Msg("mailbox credential cleared")
}

func (c *Connector) open(ctx context.Context, ts oauth2.TokenSource) (*serviceMailbox, error) {
	opts := append([]option.ClientOption{}, c.apiOps...)
	opts = append(opts, option.WithHTTPClient(oauth2.NewClient(context.WithoutCancel(ctx), ts)))

	svc, err := gmailapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}

	return &serviceMailbox{svc: svc}, nil
}

// AuthURL starts the consent flow. The returned state is accepted once by Exchange.
func (c *Connector) AuthURL() (string, string) {
	state := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for s, exp := range c.states {
		if now.After(exp) {
			delete(c.states, s)
		}
	}

	c.states[state] = now.Add(stateTTL)

	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), state
}

func (c *Connector) consumeState(state string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	exp, ok := c.states[state]
	delete(c.states, state)

	return ok && !c.now().After(exp)
}

// Exchange completes the consent flow and stores the credential if it belongs to the
// monitored mailbox. It returns the mailbox address.
func (c *Connector) Exchange(ctx context.Context, state, code string) (string, error) {
	if !c.consumeState(state) {
		return "", ErrInvalidState
	}

	return c.ExchangeCode(ctx, code)
}

// ExchangeCode is Exchange without state checking, for out-of-band operator flows.
func (c *Connector) ExchangeCode(ctx context.Context, code string) (string, error) {
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchanging code: %w", err)
	}

	mb, err := c.open(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return "", err
	}

	address, err := mb.profile(ctx)
	if err != nil {
		return "", fmt.Errorf("reading mailbox profile: %w", err)
	}

	if c.cfg.MonitoredEmail != "" && !strings.EqualFold(address, c.cfg.MonitoredEmail) {
		return "", ErrMailboxMismatch
	}

	if err := c.store.Save(ctx, &credential.Handle{Identity: c.cfg.Identity, Token: tok}); err != nil {
		return "", fmt.Errorf("saving credential: %w", err)
	}

	c.log.Info().Str("mailbox", address).Msg("mailbox authorized")

	return address, nil
}
