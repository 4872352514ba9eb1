package poller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/auth"
	"github.com/MrJamesThe3rd/lumen/internal/gmail"
	"github.com/MrJamesThe3rd/lumen/internal/http/respond"
	"github.com/MrJamesThe3rd/lumen/internal/poller"
)

//go:generate mockgen -source=handler.go -destination=poller_mock.go -package=poller
type Poller interface {
	Start(ctx context.Context, owner account.Owner) (account.Owner, error)
	Stop() error
	CheckNow(ctx context.Context, owner account.Owner) (poller.Report, error)
	Status(ctx context.Context) poller.Status
}

type Authorizer interface {
	Authenticated(ctx context.Context) bool
	AuthURL() (string, string)
	Exchange(ctx context.Context, state, code string) (string, error)
}

type Handler struct {
	poller     Poller
	authorizer Authorizer
	now        func() time.Time
}

func NewHandler(p Poller, a Authorizer) *Handler {
	return &Handler{poller: p, authorizer: a, now: time.Now}
}

// Routes mounts the operator endpoints. Every route except status and the OAuth
// callback expects the caller's principal on the context.
func (h *Handler) Routes(r chi.Router, authenticate func(http.Handler) http.Handler) {
	r.Get("/status", h.status)
	r.Get("/oauth/callback", h.callback)

	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/start", h.start)
		r.Post("/stop", h.stop)
		r.Post("/check-now", h.checkNow)
		r.Post("/authenticate", h.authenticate)
	})
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	owner, err := h.poller.Start(r.Context(), p.Owner)
	if err != nil {
		authError(w, r, err)
		return
	}

	st := h.poller.Status(r.Context())

	msg := "Gmail monitor started"
	if owner != p.Owner {
		msg = "Gmail monitor already running for another account"
	}

	respond.JSON(w, r, http.StatusOK, startResponse{
		Success:              true,
		Message:              msg,
		MonitoredEmail:       st.MonitoredEmail,
		Owner:                toOwner(owner),
		CheckIntervalSeconds: int(st.Interval / time.Second),
	})
}

func (h *Handler) stop(w http.ResponseWriter, r *http.Request) {
	if err := h.poller.Stop(); err != nil {
		if errors.Is(err, poller.ErrStopTimeout) {
			respond.Error(w, r, http.StatusServiceUnavailable, "poll loop is still finishing its cycle")
			return
		}

		respond.Internal(w, r, err)

		return
	}

	respond.JSON(w, r, http.StatusOK, messageResponse{Success: true, Message: "Gmail monitor stopped"})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, toStatus(h.poller.Status(r.Context())))
}

func (h *Handler) checkNow(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	rep, err := h.poller.CheckNow(r.Context(), p.Owner)
	if err != nil {
		if errors.Is(err, poller.ErrNotConnected) {
			respond.Error(w, r, http.StatusConflict, "mailbox connection is still being established")
			return
		}

		authError(w, r, err)

		return
	}

	st := toStatus(h.poller.Status(r.Context()))

	respond.JSON(w, r, http.StatusOK, checkResponse{
		Success:                true,
		Message:                "Email check completed",
		MonitoredEmail:         st.MonitoredEmail,
		Owner:                  toOwner(p.Owner),
		LastCheck:              st.LastCheck,
		ProcessedMessagesCount: st.ProcessedMessagesCount,
		Report:                 rep,
	})
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) {
	if h.authorizer.Authenticated(r.Context()) {
		respond.JSON(w, r, http.StatusOK, authenticateResponse{Authenticated: true, Message: "Already authenticated"})
		return
	}

	url, _ := h.authorizer.AuthURL()

	respond.JSON(w, r, http.StatusOK, authenticateResponse{
		Authenticated: false,
		AuthURL:       url,
		Message:       "Open auth_url to grant mailbox access",
	})
}

func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		respond.Error(w, r, http.StatusBadRequest, "authorization was not granted: "+e)
		return
	}

	mailbox, err := h.authorizer.Exchange(r.Context(), q.Get("state"), q.Get("code"))
	if err != nil {
		switch {
		case errors.Is(err, gmail.ErrInvalidState):
			respond.Error(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, gmail.ErrMailboxMismatch):
			respond.Error(w, r, http.StatusConflict, err.Error())
		default:
			respond.Internal(w, r, err)
		}

		return
	}

	respond.JSON(w, r, http.StatusOK, authenticateResponse{
		Authenticated: true,
		Mailbox:       mailbox,
		Message:       "Mailbox authorized",
	})
}

// authError maps mailbox credential failures onto status codes.
func authError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, account.ErrInvalidOwner):
		respond.Error(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, gmail.ErrNoCredential), errors.Is(err, gmail.ErrMailboxMismatch):
		respond.Error(w, r, http.StatusConflict, err.Error()+"; call /authenticate first")
	case errors.Is(err, gmail.ErrRefreshUnavailable):
		respond.Error(w, r, http.StatusServiceUnavailable, err.Error())
	case gmail.IsAuthError(err):
		respond.Error(w, r, http.StatusUnauthorized, err.Error())
	default:
		respond.Internal(w, r, err)
	}
}

func principal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required")
	}

	return p, ok
}
