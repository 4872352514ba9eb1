// Package gmail connects the poller to one Gmail mailbox.
package gmail

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

var (
	ErrNoCredential     = errors.New("no stored mailbox credential")
	ErrRefresh          = errors.New("mailbox credential could not be refreshed")
	ErrMailboxMismatch  = errors.New("authenticated mailbox does not match the monitored address")
	ErrInvalidState     = errors.New("unknown or expired oauth state")
	ErrMessageNotFound  = errors.New("message not found")
	ErrNotAuthenticated = errors.New("mailbox rejected the credential")

	// ErrRefreshUnavailable means the token endpoint was unreachable or failed. The
	// stored credential is kept.
	ErrRefreshUnavailable = errors.New("mailbox credential refresh temporarily failed")
)

// Message is a mailbox message reduced to what ingestion needs.
type Message struct {
	ID         string
	Subject    string
	From       string
	Body       string
	ReceivedAt time.Time
	Unread     bool
}

type Mailbox interface {
	Address() string
	ListUnread(ctx context.Context, query string, limit int64) ([]string, error)
	Get(ctx context.Context, id string) (*Message, error)
	MarkRead(ctx context.Context, id string) error
}

// IsAuthError reports whether err means the credential stopped working.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrRefreshUnavailable) {
		return false
	}

	if errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrRefresh) {
		return true
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return true
	}

	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusUnauthorized
}
