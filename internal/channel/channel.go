// Package channel implements the messaging-channel gateway: outbound sends,
// inbound webhook parsing, signature verification, and address normalization
// for a WhatsApp-Cloud-API-shaped provider.
package channel

import (
	"context"
	"time"
)

// Sender is the outbound surface consumed by the router and the emergency
// subsystem. The production implementation is *Client; tests inject fakes.
// None of the send methods retry internally — callers own retry policy and
// supply the timeout budget through ctx.
type Sender interface {
	// SendText delivers a plain text message and returns the provider
	// message id.
	SendText(ctx context.Context, to, body string) (string, error)

	// SendTemplate delivers a pre-approved template with positional
	// body parameters.
	SendTemplate(ctx context.Context, to, name, language string, params []string) (string, error)

	// SendMedia delivers a media message by link. mediaType is one of
	// "image", "document", "audio", "video".
	SendMedia(ctx context.Context, to, mediaType, link, caption string) (string, error)

	// SendButtons delivers an interactive reply-button prompt (max 3 buttons).
	SendButtons(ctx context.Context, to, body string, buttons []Button) (string, error)

	// SendList delivers an interactive list prompt.
	SendList(ctx context.Context, to, body, buttonLabel string, sections []ListSection) (string, error)

	// SendLocation delivers a location pin.
	SendLocation(ctx context.Context, to string, latitude, longitude float64, name, address string) (string, error)

	// MarkRead acknowledges an inbound message as read.
	MarkRead(ctx context.Context, messageID string) error
}

// Button is one interactive reply button.
type Button struct {
	ID    string
	Title string
}

// ListSection groups rows in an interactive list prompt.
type ListSection struct {
	Title string
	Rows  []ListRow
}

// ListRow is one selectable row in an interactive list prompt.
type ListRow struct {
	ID          string
	Title       string
	Description string
}

// InboundMessage is a single user message decoded from a webhook delivery.
type InboundMessage struct {
	ID        string    // provider message id (dedup key)
	From      string    // normalized sender address
	Timestamp time.Time
	Type      string // "text", "interactive", "button", "location", "image", ...
	Text      string // text body, or button/list reply title for interactive types
	ReplyID   string // interactive reply id, empty for free text
	Latitude  float64
	Longitude float64
	MediaID   string
}

// StatusUpdate is a delivery-status change for a previously sent message.
type StatusUpdate struct {
	MessageID   string
	RecipientID string
	Status      string // "sent", "delivered", "read", "failed"
	Timestamp   time.Time
}

// ContactInfo is sender profile metadata attached to a webhook delivery.
type ContactInfo struct {
	Address string // normalized wa_id
	Name    string
}

// Webhook is the decoded result of one inbound webhook delivery.
type Webhook struct {
	Messages []InboundMessage
	Statuses []StatusUpdate
	Contacts []ContactInfo
}
