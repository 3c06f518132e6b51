// Package discord delivers ops alerts to a Discord channel over the REST API.
// The adapter never opens a gateway connection.
package discord

import (
	"context"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"
	"github.com/makaohq/makao/internal/alert"
)

// discordAPI is the subset of discordgo the adapter uses. Tests inject a mock.
type discordAPI interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Adapter posts alerts as embeds to one channel.
type Adapter struct {
	api       discordAPI
	channelID string
}

// Opts configures a Discord adapter.
type Opts struct {
	// BotToken authenticates REST calls. Ignored when API is set.
	BotToken string

	// ChannelID is the destination channel.
	ChannelID string

	// API overrides the discordgo session, for tests.
	API discordAPI
}

// New creates a Discord alert adapter.
func New(opts Opts) (*Adapter, error) {
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("discord: channel id is required")
	}
	api := opts.API
	if api == nil {
		if opts.BotToken == "" {
			return nil, fmt.Errorf("discord: bot token is required")
		}
		s, err := discordgo.New("Bot " + opts.BotToken)
		if err != nil {
			return nil, fmt.Errorf("discord: create session: %w", err)
		}
		api = s
	}
	return &Adapter{api: api, channelID: opts.ChannelID}, nil
}

// Name implements alert.Adapter.
func (a *Adapter) Name() string { return "discord" }

// Send implements alert.Adapter. discordgo's REST methods do not take a
// context; ctx is accepted for interface symmetry.
func (a *Adapter) Send(ctx context.Context, al alert.Alert) error {
	embed := &discordgo.MessageEmbed{
		Title:       al.Title,
		Description: al.Body,
		Color:       severityColor(al.Severity),
		Fields:      embedFields(al.Fields),
	}
	if _, err := a.api.ChannelMessageSendEmbed(a.channelID, embed); err != nil {
		return fmt.Errorf("discord: send embed to %s: %w", a.channelID, err)
	}
	return nil
}

func embedFields(fields map[string]string) []*discordgo.MessageEmbedField {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*discordgo.MessageEmbedField, 0, len(keys))
	for _, k := range keys {
		out = append(out, &discordgo.MessageEmbedField{Name: k, Value: fields[k], Inline: true})
	}
	return out
}

func severityColor(severity string) int {
	switch severity {
	case alert.SeverityCritical:
		return 0xd92b2b
	case alert.SeverityWarning:
		return 0xe8a33d
	default:
		return 0x2eb67d
	}
}
