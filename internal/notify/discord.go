package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// discordSession abstracts the discordgo methods we use, enabling test mocks.
type discordSession interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAdapter posts notices to a Discord channel as embeds.
type DiscordAdapter struct {
	session   discordSession
	channelID string
}

// DiscordOpts holds parameters for creating a DiscordAdapter.
type DiscordOpts struct {
	BotToken  string
	ChannelID string
	Session   discordSession // injected mock for tests
}

// NewDiscordAdapter creates a Discord adapter.
func NewDiscordAdapter(opts DiscordOpts) (*DiscordAdapter, error) {
	if opts.Session == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("notify: discord: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("notify: discord: channel id is required")
	}
	session := opts.Session
	if session == nil {
		s, err := discordgo.New("Bot " + opts.BotToken)
		if err != nil {
			return nil, fmt.Errorf("notify: discord: %w", err)
		}
		session = s
	}
	return &DiscordAdapter{session: session, channelID: opts.ChannelID}, nil
}

// Name implements Adapter.
func (d *DiscordAdapter) Name() string { return "discord" }

// Send implements Adapter.
func (d *DiscordAdapter) Send(ctx context.Context, n Notice) error {
	fields := make([]*discordgo.MessageEmbedField, 0, len(n.Fields))
	for _, f := range n.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Short,
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:       n.Subject,
		Description: n.Body,
		Color:       0x2196f3,
		Fields:      fields,
	}

	_, err := d.session.ChannelMessageSendComplex(d.channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send embed: %w", err)
	}
	return nil
}
