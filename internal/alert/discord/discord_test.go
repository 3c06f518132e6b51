package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/makaohq/makao/internal/alert"
)

type mockDiscord struct {
	channelID string
	embed     *discordgo.MessageEmbed
	err       error
	calls     int
}

func (m *mockDiscord) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.calls++
	m.channelID = channelID
	m.embed = embed
	return &discordgo.Message{ID: "1"}, m.err
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Opts{BotToken: "tok"}); err == nil {
		t.Error("expected error without channel id")
	}
	if _, err := New(Opts{ChannelID: "123"}); err == nil {
		t.Error("expected error without token or api")
	}
	if _, err := New(Opts{ChannelID: "123", API: &mockDiscord{}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSend(t *testing.T) {
	mock := &mockDiscord{}
	a, err := New(Opts{ChannelID: "123", API: mock})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	err = a.Send(context.Background(), alert.Alert{
		Title:    "Emergency: flood",
		Body:     "flooding reported",
		Severity: alert.SeverityWarning,
		Fields:   map[string]string{"property": "Makao Court"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if mock.calls != 1 || mock.channelID != "123" {
		t.Errorf("calls=%d channel=%q", mock.calls, mock.channelID)
	}
	if mock.embed == nil || mock.embed.Title != "Emergency: flood" {
		t.Errorf("embed = %+v", mock.embed)
	}
	if len(mock.embed.Fields) != 1 || mock.embed.Fields[0].Name != "property" {
		t.Errorf("fields = %+v", mock.embed.Fields)
	}
}

func TestSend_Error(t *testing.T) {
	mock := &mockDiscord{err: errors.New("missing access")}
	a, _ := New(Opts{ChannelID: "123", API: mock})
	if err := a.Send(context.Background(), alert.Alert{Title: "x"}); err == nil {
		t.Error("expected error")
	}
}
