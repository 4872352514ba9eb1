package gmail

import (
	"encoding/base64"
	"mime"
	"net/mail"
	"slices"
	"strings"
	"time"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/MrJamesThe3rd/lumen/internal/encoding"
)

const labelUnread = "UNREAD"

// ParseMessage flattens a full-format API message. Plain text parts are preferred over HTML.
func ParseMessage(m *gmailapi.Message) *Message {
	msg := &Message{
		ID:     m.Id,
		Unread: slices.Contains(m.LabelIds, labelUnread),
	}

	if m.Payload == nil {
		return msg
	}

	headers := make(map[string]string, len(m.Payload.Headers))
	for _, h := range m.Payload.Headers {
		headers[strings.ToLower(h.Name)] = h.Value
	}

	msg.Subject = decodeHeader(headers["subject"])
	msg.From = decodeHeader(headers["from"])
	msg.ReceivedAt = receivedAt(headers["date"], m.InternalDate)

	var plain, html string
	walkParts(m.Payload, &plain, &html)

	switch {
	case strings.TrimSpace(plain) != "":
		msg.Body = plain
	case html != "":
		msg.Body = encoding.PlainText(html)
	}

	return msg
}

func walkParts(p *gmailapi.MessagePart, plain, html *string) {
	if p == nil || p.Filename != "" {
		return
	}

	mediaType, params, err := mime.ParseMediaType(p.MimeType)
	if err != nil {
		mediaType = p.MimeType
	}

	if charset := partCharset(p); charset != "" {
		params = map[string]string{"charset": charset}
	}

	switch mediaType {
	case "text/plain":
		if *plain == "" {
			*plain = decodeBody(p.Body, params["charset"])
		}
	case "text/html":
		if *html == "" {
			*html = decodeBody(p.Body, params["charset"])
		}
	}

	for _, child := range p.Parts {
		walkParts(child, plain, html)
	}
}

// partCharset reads the charset from the part's own Content-Type header, which the
// API's MimeType field omits.
func partCharset(p *gmailapi.MessagePart) string {
	for _, h := range p.Headers {
		if strings.EqualFold(h.Name, "Content-Type") {
			if _, params, err := mime.ParseMediaType(h.Value); err == nil {
				return params["charset"]
			}
		}
	}

	return ""
}

func decodeBody(b *gmailapi.MessagePartBody, charset string) string {
	if b == nil || b.Data == "" {
		return ""
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(b.Data, "="))
	if err != nil {
		return ""
	}

	text, err := encoding.Decode(raw, charset)
	if err != nil {
		return string(raw)
	}

	return text
}

var wordDecoder = mime.WordDecoder{CharsetReader: encoding.CharsetReader}

func decodeHeader(v string) string {
	if s, err := wordDecoder.DecodeHeader(v); err == nil {
		return s
	}

	return v
}

func receivedAt(date string, internalMillis int64) time.Time {
	if date != "" {
		if t, err := mail.ParseDate(date); err == nil {
			return t.UTC()
		}
	}

	if internalMillis > 0 {
		return time.UnixMilli(internalMillis).UTC()
	}

	return time.Time{}
}
