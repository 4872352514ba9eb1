package poller_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/auth"
	"github.com/MrJamesThe3rd/lumen/internal/gmail"
	pollerhttp "github.com/MrJamesThe3rd/lumen/internal/http/poller"
	"github.com/MrJamesThe3rd/lumen/internal/poller"
)

var consumer = account.Owner{ID: 42, Type: account.TypeConsumer}

type fixture struct {
	poller     *pollerhttp.MockPoller
	authorizer *pollerhttp.MockAuthorizer
	router     http.Handler
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	f := &fixture{
		poller:     pollerhttp.NewMockPoller(ctrl),
		authorizer: pollerhttp.NewMockAuthorizer(ctrl),
	}

	h := pollerhttp.NewHandler(f.poller, f.authorizer)

	// Stands in for the bearer middleware: any request with a header is the consumer.
	fakeAuth := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), auth.Principal{Owner: consumer})))
		})
	}

	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Route("/gmail", func(r chi.Router) { h.Routes(r, fakeAuth) })
	f.router = r

	return f
}

func (f *fixture) do(t *testing.T, method, path string, authed bool) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if authed {
		req.Header.Set("Authorization", "Bearer token")
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}

	return rec.Code, body
}

func runningStatus() poller.Status {
	return poller.Status{
		Running:           true,
		State:             poller.StateIdle,
		MonitoredEmail:    "ops@lumen.in",
		Owner:             consumer,
		LastCheck:         time.Date(2024, 11, 15, 6, 40, 0, 0, time.UTC),
		Interval:          30 * time.Second,
		ProcessedMessages: 12,
		Authenticated:     true,
		ServiceReady:      true,
	}
}

func TestHandler_Start(t *testing.T) {
	tests := []struct {
		name       string
		owner      account.Owner
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "Started", owner: consumer, wantStatus: http.StatusOK, wantMsg: "Gmail monitor started"},
		{name: "AlreadyRunningForOther", owner: account.Owner{ID: 7, Type: account.TypeBusiness}, wantStatus: http.StatusOK, wantMsg: "Gmail monitor already running for another account"},
		{name: "NoCredential", err: gmail.ErrNoCredential, wantStatus: http.StatusConflict},
		{name: "Mismatch", err: gmail.ErrMailboxMismatch, wantStatus: http.StatusConflict},
		{name: "RefreshFailed", err: gmail.ErrRefresh, wantStatus: http.StatusUnauthorized},
		{name: "TokenEndpointDown", err: fmt.Errorf("%w: connection refused", gmail.ErrRefreshUnavailable), wantStatus: http.StatusServiceUnavailable},
		{name: "Unexpected", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.poller.EXPECT().Start(gomock.Any(), consumer).Return(tt.owner, tt.err)
			if tt.err == nil {
				f.poller.EXPECT().Status(gomock.Any()).Return(runningStatus())
			}

			code, body := f.do(t, http.MethodPost, "/gmail/start", true)

			assert.Equal(t, tt.wantStatus, code)

			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body["message"])
				assert.Equal(t, "ops@lumen.in", body["monitored_email"])
				assert.EqualValues(t, 30, body["check_interval_seconds"])
				assert.EqualValues(t, tt.owner.ID, body["owner"].(map[string]any)["id"])
			}
		})
	}
}

func TestHandler_RequiresAuthentication(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/gmail/start", "/gmail/stop", "/gmail/check-now", "/gmail/authenticate"} {
		code, _ := f.do(t, http.MethodPost, path, false)
		assert.Equal(t, http.StatusUnauthorized, code, path)
	}
}

func TestHandler_Stop(t *testing.T) {
	f := newFixture(t)
	f.poller.EXPECT().Stop().Return(nil)

	code, body := f.do(t, http.MethodPost, "/gmail/stop", true)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	f.poller.EXPECT().Stop().Return(poller.ErrStopTimeout)

	code, _ = f.do(t, http.MethodPost, "/gmail/stop", true)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestHandler_Status(t *testing.T) {
	f := newFixture(t)
	f.poller.EXPECT().Status(gomock.Any()).Return(runningStatus())

	code, body := f.do(t, http.MethodGet, "/gmail/status", false)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["running"])
	assert.Equal(t, "idle", body["state"])
	assert.Equal(t, "2024-11-15T06:40:00Z", body["last_check"])
	assert.EqualValues(t, 12, body["processed_messages_count"])
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, true, body["service_ready"])
	assert.NotContains(t, body, "last_error")
}

func TestHandler_StatusNeverChecked(t *testing.T) {
	f := newFixture(t)
	f.poller.EXPECT().Status(gomock.Any()).Return(poller.Status{State: poller.StateUnconfigured, LastError: "no stored mailbox credential"})

	_, body := f.do(t, http.MethodGet, "/gmail/status", false)

	assert.Nil(t, body["last_check"])
	assert.Nil(t, body["owner"])
	assert.Equal(t, "no stored mailbox credential", body["last_error"])
}

func TestHandler_CheckNow(t *testing.T) {
	f := newFixture(t)

	f.poller.EXPECT().CheckNow(gomock.Any(), consumer).Return(poller.Report{Listed: 3, Ingested: 2, Rejected: 1}, nil)
	f.poller.EXPECT().Status(gomock.Any()).Return(runningStatus())

	code, body := f.do(t, http.MethodPost, "/gmail/check-now", true)

	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 12, body["processed_messages_count"])

	rep := body["report"].(map[string]any)
	assert.EqualValues(t, 3, rep["listed"])
	assert.EqualValues(t, 2, rep["ingested"])

	f.poller.EXPECT().CheckNow(gomock.Any(), consumer).Return(poller.Report{}, poller.ErrNotConnected)

	code, _ = f.do(t, http.MethodPost, "/gmail/check-now", true)
	assert.Equal(t, http.StatusConflict, code)
}

func TestHandler_Authenticate(t *testing.T) {
	f := newFixture(t)

	f.authorizer.EXPECT().Authenticated(gomock.Any()).Return(false)
	f.authorizer.EXPECT().AuthURL().Return("https://accounts.google.com/o/oauth2/auth?state=s1", "s1")

	code, body := f.do(t, http.MethodPost, "/gmail/authenticate", true)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["authenticated"])
	assert.Equal(t, "https://accounts.google.com/o/oauth2/auth?state=s1", body["auth_url"])

	f.authorizer.EXPECT().Authenticated(gomock.Any()).Return(true)

	_, body = f.do(t, http.MethodPost, "/gmail/authenticate", true)
	assert.Equal(t, true, body["authenticated"])
	assert.NotContains(t, body, "auth_url")
}

func TestHandler_Callback(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		err        error
		wantStatus int
	}{
		{name: "Authorized", query: "?state=s1&code=c1", wantStatus: http.StatusOK},
		{name: "Denied", query: "?error=access_denied", wantStatus: http.StatusBadRequest},
		{name: "BadState", query: "?state=forged&code=c1", err: gmail.ErrInvalidState, wantStatus: http.StatusBadRequest},
		{name: "OtherMailbox", query: "?state=s1&code=c1", err: gmail.ErrMailboxMismatch, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			if tt.name != "Denied" {
				f.authorizer.EXPECT().Exchange(gomock.Any(), gomock.Any(), "c1").Return("ops@lumen.in", tt.err)
			}

			code, body := f.do(t, http.MethodGet, "/gmail/oauth/callback"+tt.query, false)

			assert.Equal(t, tt.wantStatus, code)

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "ops@lumen.in", body["mailbox"])
			}
		})
	}
}

func TestHandler_Health(t *testing.T) {
	f := newFixture(t)
	f.poller.EXPECT().Status(gomock.Any()).Return(runningStatus())

	code, body := f.do(t, http.MethodGet, "/health", false)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ops@lumen.in", body["gmail_monitor"].(map[string]any)["monitored_email"])
}
