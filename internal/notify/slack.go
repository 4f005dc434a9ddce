package notify

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// SlackAdapter posts notices to a Slack channel as attachments.
type SlackAdapter struct {
	client    slackClient
	channelID string
}

// SlackOpts holds parameters for creating a SlackAdapter.
type SlackOpts struct {
	BotToken  string
	ChannelID string
	Client    slackClient // injected mock for tests
}

// NewSlackAdapter creates a Slack adapter.
func NewSlackAdapter(opts SlackOpts) (*SlackAdapter, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("notify: slack: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("notify: slack: channel id is required")
	}
	client := opts.Client
	if client == nil {
		client = slackapi.New(opts.BotToken)
	}
	return &SlackAdapter{client: client, channelID: opts.ChannelID}, nil
}

// Name implements Adapter.
func (s *SlackAdapter) Name() string { return "slack" }

// Send implements Adapter.
func (s *SlackAdapter) Send(ctx context.Context, n Notice) error {
	fields := make([]slackapi.AttachmentField, 0, len(n.Fields))
	for _, f := range n.Fields {
		fields = append(fields, slackapi.AttachmentField{
			Title: f.Name,
			Value: f.Value,
			Short: f.Short,
		})
	}

	attachment := slackapi.Attachment{
		Title:  n.Subject,
		Text:   n.Body,
		Color:  "#2196f3",
		Fields: fields,
	}

	_, _, err := s.client.PostMessageContext(ctx, s.channelID, slackapi.MsgOptionAttachments(attachment))
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	return nil
}
