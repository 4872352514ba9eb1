package poller

import (
	"time"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/poller"
)

type ownerResponse struct {
	ID   int64        `json:"id"`
	Type account.Type `json:"type"`
}

func toOwner(o account.Owner) *ownerResponse {
	if o.IsZero() {
		return nil
	}

	return &ownerResponse{ID: o.ID, Type: o.Type}
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type startResponse struct {
	Success              bool           `json:"success"`
	Message              string         `json:"message"`
	MonitoredEmail       string         `json:"monitored_email"`
	Owner                *ownerResponse `json:"owner"`
	CheckIntervalSeconds int            `json:"check_interval_seconds"`
}

type statusResponse struct {
	Running                bool           `json:"running"`
	State                  poller.State   `json:"state"`
	MonitoredEmail         string         `json:"monitored_email"`
	Owner                  *ownerResponse `json:"owner"`
	LastCheck              *time.Time     `json:"last_check"`
	CheckIntervalSeconds   int            `json:"check_interval_seconds"`
	ProcessedMessagesCount int            `json:"processed_messages_count"`
	PendingRetries         int            `json:"pending_retries"`
	Authenticated          bool           `json:"authenticated"`
	ServiceReady           bool           `json:"service_ready"`
	LastError              string         `json:"last_error,omitempty"`
}

func toStatus(st poller.Status) statusResponse {
	resp := statusResponse{
		Running:                st.Running,
		State:                  st.State,
		MonitoredEmail:         st.MonitoredEmail,
		Owner:                  toOwner(st.Owner),
		CheckIntervalSeconds:   int(st.Interval / time.Second),
		ProcessedMessagesCount: st.ProcessedMessages,
		PendingRetries:         st.Pending,
		Authenticated:          st.Authenticated,
		ServiceReady:           st.ServiceReady,
		LastError:              st.LastError,
	}

	if !st.LastCheck.IsZero() {
		t := st.LastCheck.UTC()
		resp.LastCheck = &t
	}

	return resp
}

type checkResponse struct {
	Success                bool           `json:"success"`
	Message                string         `json:"message"`
	MonitoredEmail         string         `json:"monitored_email"`
	Owner                  *ownerResponse `json:"owner"`
	LastCheck              *time.Time     `json:"last_check"`
	ProcessedMessagesCount int            `json:"processed_messages_count"`
	Report                 poller.Report  `json:"report"`
}

type authenticateResponse struct {
	Authenticated bool   `json:"authenticated"`
	AuthURL       string `json:"auth_url,omitempty"`
	Mailbox       string `json:"mailbox,omitempty"`
	Message       string `json:"message"`
}

type healthResponse struct {
	Status    string         `json:"status"`
	Service   string         `json:"service"`
	Poller    statusResponse `json:"gmail_monitor"`
	Timestamp time.Time      `json:"timestamp"`
}
