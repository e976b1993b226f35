package discord

import (
	"context"
	"errors"
)

var ErrAttachmentTooLarge = errors.New("attachment exceeds size limit")

type SlashCommandOption struct {
	Name        string
	Description string
	Required    bool
}

type SlashCommandDefinition struct {
	Name        string
	Description string
	Options     []SlashCommandOption
}

type SlashCommandEvent struct {
	GuildID     string
	ChannelID   string
	CommandName string
	UserID      string
	Options     map[string]string
	// Defer acknowledges the interaction without content. Call it before
	// work that may outlast the response window.
	Defer func() error
	// Respond answers the interaction on first use and posts to the channel afterwards.
	Respond func(content string) error
}

type Attachment struct {
	ID          string
	Filename    string
	ContentType string
	URL         string
	Size        int64
}

type MessageEvent struct {
	GuildID     string
	ChannelID   string
	UserID      string
	UserIsBot   bool
	Content     string
	Attachments []Attachment
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	SendChannelMessage(channelID, content string) error
	// DownloadAttachment writes at most maxBytes to destPath and fails with
	// ErrAttachmentTooLarge past that.
	DownloadAttachment(ctx context.Context, attachment Attachment, destPath string, maxBytes int64) error
	RegisterMessageHandler(handler func(MessageEvent))
	RegisterSlashCommandHandler(handler func(SlashCommandEvent))
	UpsertSlashCommands(guildID string, defs []SlashCommandDefinition) error
	GetBotUserID() (string, error)
	Run() error
}
