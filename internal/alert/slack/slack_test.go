package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/makaohq/makao/internal/alert"
	"github.com/slack-go/slack"
)

type mockSlack struct {
	channel string
	options []slack.MsgOption
	err     error
	calls   int
}

func (m *mockSlack) PostMessageContext(_ context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	m.calls++
	m.channel = channelID
	m.options = options
	return channelID, "123.456", m.err
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Opts{Token: "xoxb-x"}); err == nil {
		t.Error("expected error without channel")
	}
	if _, err := New(Opts{Channel: "C123"}); err == nil {
		t.Error("expected error without token or api")
	}
	if _, err := New(Opts{Channel: "C123", API: &mockSlack{}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSend(t *testing.T) {
	mock := &mockSlack{}
	a, err := New(Opts{Channel: "C123", API: mock})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	err = a.Send(context.Background(), alert.Alert{
		Title:    "Emergency: fire",
		Body:     "fire reported at Makao Court",
		Severity: alert.SeverityCritical,
		Fields:   map[string]string{"property": "Makao Court", "unit": "A4"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if mock.calls != 1 || mock.channel != "C123" {
		t.Errorf("calls=%d channel=%q", mock.calls, mock.channel)
	}
	// Text plus attachments.
	if len(mock.options) != 2 {
		t.Errorf("options = %d, want 2", len(mock.options))
	}
}

func TestSend_Error(t *testing.T) {
	mock := &mockSlack{err: errors.New("channel_not_found")}
	a, _ := New(Opts{Channel: "C123", API: mock})
	if err := a.Send(context.Background(), alert.Alert{Title: "x"}); err == nil {
		t.Error("expected error")
	}
}

func TestSeverityColor(t *testing.T) {
	if severityColor(alert.SeverityCritical) == severityColor(alert.SeverityInfo) {
		t.Error("severities must map to distinct colors")
	}
}
