// Package slack delivers ops alerts to a Slack channel.
package slack

import (
	"context"
	"fmt"
	"sort"

	"github.com/makaohq/makao/internal/alert"
	"github.com/slack-go/slack"
)

// slackAPI is the subset of the Slack client the adapter uses. Tests inject
// a mock.
type slackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Adapter posts alerts as attachments to one channel.
type Adapter struct {
	api     slackAPI
	channel string
}

// Opts configures a Slack adapter.
type Opts struct {
	// Token is the bot token. Ignored when API is set.
	Token string

	// Channel is the destination channel ID.
	Channel string

	// API overrides the Slack client, for tests.
	API slackAPI
}

// New creates a Slack alert adapter.
func New(opts Opts) (*Adapter, error) {
	if opts.Channel == "" {
		return nil, fmt.Errorf("slack: channel is required")
	}
	api := opts.API
	if api == nil {
		if opts.Token == "" {
			return nil, fmt.Errorf("slack: token is required")
		}
		api = slack.New(opts.Token)
	}
	return &Adapter{api: api, channel: opts.Channel}, nil
}

// Name implements alert.Adapter.
func (a *Adapter) Name() string { return "slack" }

// Send implements alert.Adapter.
func (a *Adapter) Send(ctx context.Context, al alert.Alert) error {
	attachment := slack.Attachment{
		Color:  severityColor(al.Severity),
		Title:  al.Title,
		Text:   al.Body,
		Fields: attachmentFields(al.Fields),
	}
	_, _, err := a.api.PostMessageContext(ctx, a.channel,
		slack.MsgOptionText(al.Title, false),
		slack.MsgOptionAttachments(attachment),
	)
	if err != nil {
		return fmt.Errorf("slack: post to %s: %w", a.channel, err)
	}
	return nil
}

func attachmentFields(fields map[string]string) []slack.AttachmentField {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]slack.AttachmentField, 0, len(keys))
	for _, k := range keys {
		out = append(out, slack.AttachmentField{Title: k, Value: fields[k], Short: true})
	}
	return out
}

func severityColor(severity string) string {
	switch severity {
	case alert.SeverityCritical:
		return "#d92b2b"
	case alert.SeverityWarning:
		return "#e8a33d"
	default:
		return "#2eb67d"
	}
}
