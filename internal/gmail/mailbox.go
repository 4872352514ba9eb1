package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

const me = "me"

// serviceMailbox is a Mailbox backed by the Gmail API.
type serviceMailbox struct {
	svc     *gmailapi.Service
	address string
}

func (m *serviceMailbox) Address() string {
	return m.address
}

func (m *serviceMailbox) profile(ctx context.Context) (string, error) {
	p, err := m.svc.Users.GetProfile(me).Context(ctx).Do()
	if err != nil {
		return "", apiError(err)
	}

	return p.EmailAddress, nil
}

func (m *serviceMailbox) ListUnread(ctx context.Context, query string, limit int64) ([]string, error) {
	resp, err := m.svc.Users.Messages.List(me).Q(query).MaxResults(limit).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", apiError(err))
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		ids = append(ids, msg.Id)
	}

	return ids, nil
}

func (m *serviceMailbox) Get(ctx context.Context, id string) (*Message, error) {
	msg, err := m.svc.Users.Messages.Get(me, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("getting message %s: %w", id, apiError(err))
	}

	return ParseMessage(msg), nil
}

func (m *serviceMailbox) MarkRead(ctx context.Context, id string) error {
	_, err := m.svc.Users.Messages.Modify(me, id, &gmailapi.ModifyMessageRequest{
		RemoveLabelIds: []string{labelUnread},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("marking message %s read: %w", id, apiError(err))
	}

	return nil
}

// apiError maps API status codes onto package errors, keeping the original in the chain.
func apiError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return errors.Join(ErrNotAuthenticated, err)
	case http.StatusNotFound:
		return errors.Join(ErrMessageNotFound, err)
	}

	return err
}
