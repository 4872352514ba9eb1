// Package poller watches the monitored mailbox and feeds payment emails into ingestion.
package poller

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/gmail"
	"github.com/MrJamesThe3rd/lumen/internal/ingest"
)

const (
	DefaultInterval    = 30 * time.Second
	DefaultStopTimeout = 5 * time.Second
)

var (
	ErrNotConnected = errors.New("poller has no mailbox connection")
	ErrStopTimeout  = errors.New("poll loop did not stop in time")
	ErrStopped      = errors.New("poller stopped while starting")
	ErrRunning      = errors.New("poll loop is already running")
)

type State string

const (
	StateUnconfigured   State = "unconfigured"
	StateAuthenticating State = "authenticating"
	StateIdle           State = "idle"
	StatePolling        State = "polling"
	StateStopped        State = "stopped"
)

func (s State) running() bool {
	return s == StateAuthenticating || s == StateIdle || s == StatePolling
}

type Connector interface {
	Connect(ctx context.Context) (gmail.Mailbox, error)
	MonitoredEmail() string
	Authenticated(ctx context.Context) bool
}

type Ingester interface {
	IngestEmail(ctx context.Context, owner account.Owner, e ingest.Email) (*ingest.Result, error)
}

// Ledger answers from the durable processed-message table.
type Ledger interface {
	IsProcessed(ctx context.Context, messageID string) (bool, error)
	ProcessedCount(ctx context.Context) (int, error)
}

// Report summarizes one cycle.
type Report struct {
	Listed    int `json:"listed"`
	Ingested  int `json:"ingested"`
	Rejected  int `json:"rejected"`
	Duplicate int `json:"duplicate"`
	Failed    int `json:"failed"`
}

type Status struct {
	Running           bool
	State             State
	MonitoredEmail    string
	Owner             account.Owner
	LastCheck         time.Time
	Interval          time.Duration
	ProcessedMessages int
	Authenticated     bool
	ServiceReady      bool
	Pending           int
	LastError         string
}

type Poller struct {
	connector   Connector
	ingester    Ingester
	ledger      Ledger
	log         zerolog.Logger
	interval    time.Duration
	stopTimeout time.Duration
	now         func() time.Time

	mu        sync.Mutex
	state     State
	owner     account.Owner
	mailbox   gmail.Mailbox
	lastCheck time.Time
	lastErr   error
	retry     []string
	processed int
	cancel    context.CancelFunc
	done      chan struct{}

	// cycleMu serializes cycles between the loop and CheckNow.
	cycleMu sync.Mutex
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

func WithStopTimeout(d time.Duration) Option {
	return func(p *Poller) { p.stopTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

func New(connector Connector, ingester Ingester, ledger Ledger, log zerolog.Logger, opts ...Option) *Poller {
	p := &Poller{
		connector:   connector,
		ingester:    ingester,
		ledger:      ledger,
		log:         log,
		interval:    DefaultInterval,
		stopTimeout: DefaultStopTimeout,
		now:         time.Now,
		state:       StateUnconfigured,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Start authenticates and launches the poll loop. If the poller is already running it
// returns the owner it is running for and changes nothing.
func (p *Poller) Start(ctx context.Context, owner account.Owner) (account.Owner, error) {
	if err := owner.Validate(); err != nil {
		return account.Owner{}, err
	}

	p.mu.Lock()
	if p.state.running() {
		current := p.owner
		p.mu.Unlock()

		return current, nil
	}

	p.state = StateAuthenticating
	p.owner = owner
	p.lastErr = nil
	p.mu.Unlock()

	mb, err := p.connector.Connect(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateAuthenticating {
		return owner, ErrStopped
	}

	if err != nil {
		p.state = StateUnconfigured
		p.lastErr = err

		return owner, fmt.Errorf("authenticating mailbox: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	p.mailbox = mb
	p.cancel = cancel
	p.done = done
	p.state = StateIdle

	go p.loop(loopCtx, done)

	p.log.Info().Stringer("owner", owner).Str("mailbox", mb.Address()).Dur("interval", p.interval).Msg("mailbox poller started")

	return owner, nil
}

// Stop cancels the loop and waits up to the stop timeout for it to exit.
func (p *Poller) Stop() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mailbox = nil
	p.state = StateStopped
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()

	select {
	case <-done:
		p.log.Info().Msg("mailbox poller stopped")
		return nil
	case <-time.After(p.stopTimeout):
		p.log.Warn().Dur("timeout", p.stopTimeout).Msg("poll loop still running after stop")
		return ErrStopTimeout
	}
}

// RunOnce connects and runs a single cycle without starting the loop. The connection
// is dropped afterwards and the poller ends up stopped.
func (p *Poller) RunOnce(ctx context.Context, owner account.Owner) (Report, error) {
	if err := owner.Validate(); err != nil {
		return Report{}, err
	}

	p.mu.Lock()
	if p.state.running() {
		p.mu.Unlock()
		return Report{}, ErrRunning
	}

	p.state = StateAuthenticating
	p.owner = owner
	p.lastErr = nil
	p.mu.Unlock()

	mb, err := p.connector.Connect(ctx)
	if err != nil {
		p.mu.Lock()
		p.state = StateUnconfigured
		p.lastErr = err
		p.mu.Unlock()

		return Report{}, fmt.Errorf("authenticating mailbox: %w", err)
	}

	p.mu.Lock()
	p.mailbox = mb
	p.state = StateIdle
	p.mu.Unlock()

	rep, err := p.runCycle(ctx)

	p.mu.Lock()
	p.mailbox = nil
	p.state = StateStopped
	p.mu.Unlock()

	return rep, err
}

// SetOwner changes the owner future cycles ingest for.
func (p *Poller) SetOwner(owner account.Owner) error {
	if err := owner.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	p.owner = owner
	p.mu.Unlock()

	return nil
}

// CheckNow runs one cycle synchronously, starting the poller first if it is not running.
// A freshly started poller runs its first cycle on the loop, so the report is empty.
func (p *Poller) CheckNow(ctx context.Context, owner account.Owner) (Report, error) {
	p.mu.Lock()
	running := p.state.running()
	p.mu.Unlock()

	if !running {
		_, err := p.Start(ctx, owner)
		return Report{}, err
	}

	if err := p.SetOwner(owner); err != nil {
		return Report{}, err
	}

	rep, err := p.runCycle(ctx)
	if err != nil && !errors.Is(err, ErrNotConnected) {
		p.fail(err)
	}

	return rep, err
}

func (p *Poller) Status(ctx context.Context) Status {
	p.mu.Lock()
	st := Status{
		Running:        p.state.running(),
		State:          p.state,
		MonitoredEmail: p.connector.MonitoredEmail(),
		Owner:          p.owner,
		LastCheck:      p.lastCheck,
		Interval:       p.interval,
		ServiceReady:   p.mailbox != nil,
		Pending:        len(p.retry),
	}

	if p.lastErr != nil {
		st.LastError = p.lastErr.Error()
	}

	processed := p.processed
	p.mu.Unlock()

	st.ProcessedMessages = processed
	if n, err := p.ledger.ProcessedCount(ctx); err != nil {
		p.log.Warn().Err(err).Msg("counting processed messages")
	} else {
		st.ProcessedMessages = n
	}

	st.Authenticated = p.connector.Authenticated(ctx)

	return st
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		if _, err := p.runCycle(ctx); err != nil {
			if !errors.Is(err, ErrNotConnected) {
				p.fail(err)
			}

			return
		}

		timer := time.NewTimer(p.interval)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// fail takes the poller out of service after the mailbox became unusable.
func (p *Poller) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateStopped {
		return
	}

	if p.cancel != nil {
		p.cancel()
	}

	p.cancel, p.done = nil, nil
	p.mailbox = nil
	p.state = StateUnconfigured
	p.lastErr = err

	p.log.Error().Err(err).Msg("mailbox poller stopped after authentication failure")
}

// runCycle polls once. Apart from ErrNotConnected the returned error is non-nil only when
// the mailbox could not be reconnected after an authentication failure.
func (p *Poller) runCycle(ctx context.Context) (Report, error) {
	p.cycleMu.Lock()
	defer p.cycleMu.Unlock()

	p.mu.Lock()
	mb, owner, since := p.mailbox, p.owner, p.lastCheck
	if mb == nil {
		p.mu.Unlock()
		return Report{}, ErrNotConnected
	}

	start := p.now()
	p.lastCheck = start
	if p.state == StateIdle {
		p.state = StatePolling
	}
	p.mu.Unlock()

	defer p.setState(StatePolling, StateIdle)

	rep, err := p.poll(ctx, mb, owner, since, start)
	if err != nil && gmail.IsAuthError(err) {
		p.log.Warn().Err(err).Msg("mailbox credential rejected, reconnecting")
		p.setState(StatePolling, StateAuthenticating)

		if mb, err = p.connector.Connect(ctx); err != nil {
			return rep, fmt.Errorf("reconnecting mailbox: %w", err)
		}

		p.mu.Lock()
		if p.state == StateStopped {
			p.mu.Unlock()
			return rep, nil
		}

		p.mailbox = mb
		p.state = StatePolling
		p.mu.Unlock()

		var again Report
		again, err = p.poll(ctx, mb, owner, since, start)
		rep = rep.add(again)

		if err != nil && gmail.IsAuthError(err) {
			return rep, fmt.Errorf("mailbox rejected fresh credential: %w", err)
		}
	}

	if err != nil {
		if ctx.Err() == nil {
			p.log.Error().Err(err).Msg("poll cycle aborted")
			p.setLastErr(err)
		}

		return rep, nil
	}

	p.log.Debug().
		Int("listed", rep.Listed).
		Int("ingested", rep.Ingested).
		Int("rejected", rep.Rejected).
		Int("failed", rep.Failed).
		Msg("poll cycle finished")

	return rep, nil
}

func (p *Poller) poll(ctx context.Context, mb gmail.Mailbox, owner account.Owner, since, start time.Time) (Report, error) {
	var rep Report

	ids, err := mb.ListUnread(ctx, gmail.Query(since, start), gmail.MaxResults)
	if err != nil {
		return rep, fmt.Errorf("listing unread messages: %w", err)
	}

	p.mu.Lock()
	queue := slices.Clone(p.retry)
	p.mu.Unlock()

	for _, id := range ids {
		if !slices.Contains(queue, id) {
			queue = append(queue, id)
		}
	}

	rep.Listed = len(queue)

	for _, id := range queue {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		out, err := p.process(ctx, mb, owner, id)
		if err != nil {
			if gmail.IsAuthError(err) {
				return rep, err
			}

			p.log.Warn().Err(err).Str("message_id", id).Msg("message will be retried")
			p.markRetry(id)
			rep.Failed++

			continue
		}

		p.clearRetry(id)

		switch out {
		case outcomeIngested:
			rep.Ingested++
		case outcomeRejected:
			rep.Rejected++
		case outcomeDuplicate:
			rep.Duplicate++
		}
	}

	return rep, nil
}

type outcome int

const (
	outcomeIngested outcome = iota
	outcomeRejected
	outcomeDuplicate
)

func (p *Poller) process(ctx context.Context, mb gmail.Mailbox, owner account.Owner, id string) (outcome, error) {
	log := p.log.With().Str("message_id", id).Logger()

	done, err := p.ledger.IsProcessed(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("checking ledger: %w", err)
	}

	if done {
		// Committed earlier but left unread; mark it so the mailbox stops listing it.
		if err := mb.MarkRead(ctx, id); err != nil {
			if gmail.IsAuthError(err) {
				return outcomeDuplicate, err
			}

			log.Warn().Err(err).Msg("processed message left unread")
		}

		return outcomeDuplicate, nil
	}

	msg, err := mb.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gmail.ErrMessageNotFound) {
			log.Info().Msg("message disappeared before processing")
			return outcomeRejected, nil
		}

		return 0, err
	}

	res, err := p.ingester.IngestEmail(ctx, owner, ingest.Email{
		MessageID:  msg.ID,
		Subject:    msg.Subject,
		Sender:     msg.From,
		Body:       msg.Body,
		ReceivedAt: msg.ReceivedAt,
		Mailbox:    mb.Address(),
	})
	if err != nil {
		return 0, fmt.Errorf("ingesting message: %w", err)
	}

	if res.Rejected() {
		log.Debug().Str("reason", res.Rejection.String()).Msg("message skipped")
		return outcomeRejected, nil
	}

	p.mu.Lock()
	p.processed++
	p.mu.Unlock()

	if err := mb.MarkRead(ctx, id); err != nil {
		if gmail.IsAuthError(err) {
			return outcomeIngested, err
		}

		log.Warn().Err(err).Msg("message ingested but left unread")
	}

	ev := log.Info()
	if res.Transaction != nil {
		ev = ev.Stringer("transaction_id", res.Transaction.ID)
	}

	ev.Msg("email ingested")

	return outcomeIngested, nil
}

func (p *Poller) markRetry(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !slices.Contains(p.retry, id) {
		p.retry = append(p.retry, id)
	}
}

func (p *Poller) clearRetry(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.retry = slices.DeleteFunc(p.retry, func(s string) bool { return s == id })
}

// setState moves from one state to another only if the poller is still in from.
func (p *Poller) setState(from, to State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == from {
		p.state = to
	}
}

func (p *Poller) setLastErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastErr = err
}

func (r Report) add(o Report) Report {
	return Report{
		Listed:    r.Listed + o.Listed,
		Ingested:  r.Ingested + o.Ingested,
		Rejected:  r.Rejected + o.Rejected,
		Duplicate: r.Duplicate + o.Duplicate,
		Failed:    r.Failed + o.Failed,
	}
}
