package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"sync"

	"github.com/bwmarrin/discordgo"
	discordpkg "github.com/foxseedlab/tokpost/internal/discord"
)

type Client struct {
	session   *discordgo.Session
	token     string
	botUserID string
	// download has no overall timeout; callers bound it with a context
	// deadline. The session's REST client gives up after 20 seconds.
	download *http.Client
}

func NewClient(token string) discordpkg.Client {
	return &Client{
		token:    token,
		download: &http.Client{},
	}
}

func (c *Client) Connect(ctx context.Context) error {
	_ = ctx
	s, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return err
	}
	c.session = s
	s.Identify.Intents = discordgo.MakeIntent(discordgo.IntentGuildMessages | discordgo.IntentDirectMessages | discordgo.IntentMessageContent)
	if err := s.Open(); err != nil {
		return err
	}
	userID, err := c.GetBotUserID()
	if err != nil {
		return err
	}
	c.botUserID = userID
	return nil
}

func (c *Client) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

func (c *Client) SendChannelMessage(channelID, content string) error {
	_, err := c.session.ChannelMessageSend(channelID, content)
	return err
}

func (c *Client) DownloadAttachment(ctx context.Context, attachment discordpkg.Attachment, destPath string, maxBytes int64) error {
	if attachment.URL == "" {
		return errors.New("attachment has no url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, attachment.URL, nil)
	if err != nil {
		return err
	}
	resp, err := c.downloadClient().Do(req)
	if err != nil {
		return fmt.Errorf("fetch attachment: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fetch attachment: unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create staged file: %w", err)
	}
	body := io.Reader(resp.Body)
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes+1)
	}
	n, copyErr := io.Copy(f, body)
	closeErr := f.Close()
	if copyErr != nil {
		return fmt.Errorf("write staged file: %w", copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close staged file: %w", closeErr)
	}
	if maxBytes > 0 && n > maxBytes {
		return fmt.Errorf("attachment %s: %w (%d bytes)", attachment.ID, discordpkg.ErrAttachmentTooLarge, maxBytes)
	}
	slog.Info("attachment downloaded", "attachment_id", attachment.ID, "bytes", n, "path", destPath)
	return nil
}

func (c *Client) downloadClient() *http.Client {
	if c.download != nil {
		return c.download
	}
	return &http.Client{}
}

func (c *Client) RegisterMessageHandler(handler func(discordpkg.MessageEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, mc *discordgo.MessageCreate) {
		evt, ok := toMessageEvent(mc)
		if !ok {
			return
		}
		if evt.UserID == c.botUserID {
			return
		}
		handler(evt)
	})
}

func toMessageEvent(mc *discordgo.MessageCreate) (discordpkg.MessageEvent, bool) {
	if mc == nil || mc.Message == nil || mc.Author == nil || mc.Author.ID == "" {
		return discordpkg.MessageEvent{}, false
	}
	attachments := make([]discordpkg.Attachment, 0, len(mc.Attachments))
	for _, a := range mc.Attachments {
		if a == nil {
			continue
		}
		attachments = append(attachments, discordpkg.Attachment{
			ID:          a.ID,
			Filename:    a.Filename,
			ContentType: a.ContentType,
			URL:         a.URL,
			Size:        int64(a.Size),
		})
	}
	return discordpkg.MessageEvent{
		GuildID:     mc.GuildID,
		ChannelID:   mc.ChannelID,
		UserID:      mc.Author.ID,
		UserIsBot:   mc.Author.Bot,
		Content:     mc.Content,
		Attachments: attachments,
	}, true
}

func (c *Client) RegisterSlashCommandHandler(handler func(discordpkg.SlashCommandEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic == nil || ic.Type != discordgo.InteractionApplicationCommand {
			return
		}
		data := ic.ApplicationCommandData()
		if data.Name == "" {
			return
		}
		userID := ""
		if ic.Member != nil && ic.Member.User != nil {
			userID = ic.Member.User.ID
		}
		if userID == "" && ic.User != nil {
			userID = ic.User.ID
		}
		if userID == "" {
			return
		}
		options := make(map[string]string, len(data.Options))
		for _, opt := range data.Options {
			if opt != nil && opt.Type == discordgo.ApplicationCommandOptionString {
				options[opt.Name] = opt.StringValue()
			}
		}
		slog.Info("slash command interaction received", "guild_id", ic.GuildID, "channel_id", ic.ChannelID, "command", data.Name, "user_id", userID)
		r := &interactionResponder{session: s, interaction: ic.Interaction, channelID: ic.ChannelID}
		handler(discordpkg.SlashCommandEvent{
			GuildID:     ic.GuildID,
			ChannelID:   ic.ChannelID,
			CommandName: data.Name,
			UserID:      userID,
			Options:     options,
			Defer:       r.deferReply,
			Respond:     r.respond,
		})
	})
}

type responderState int

const (
	responderPending responderState = iota
	responderDeferred
	responderAnswered
)

// An interaction accepts exactly one response, within three seconds. A
// deferred acknowledgement is later replaced by the first reply; every other
// reply becomes a plain channel message.
type interactionResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
	channelID   string

	mu    sync.Mutex
	state responderState
}

func (r *interactionResponder) deferReply() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != responderPending {
		return nil
	}
	if err := r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		return err
	}
	r.state = responderDeferred
	return nil
}

func (r *interactionResponder) respond(content string) error {
	r.mu.Lock()
	state := r.state
	r.state = responderAnswered
	r.mu.Unlock()

	switch state {
	case responderPending:
		return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: content},
		})
	case responderDeferred:
		_, err := r.session.InteractionResponseEdit(r.interaction, &discordgo.WebhookEdit{Content: &content})
		return err
	default:
		_, err := r.session.ChannelMessageSend(r.channelID, content)
		return err
	}
}

// UpsertSlashCommands registers defs for guildID, or globally when guildID is empty.
func (c *Client) UpsertSlashCommands(guildID string, defs []discordpkg.SlashCommandDefinition) error {
	appID := c.applicationID()
	if appID == "" {
		return fmt.Errorf("discord application id is not available")
	}
	existing, err := c.session.ApplicationCommands(appID, guildID)
	if err != nil {
		return err
	}
	existingByName := make(map[string]*discordgo.ApplicationCommand, len(existing))
	for _, cmd := range existing {
		if cmd == nil || cmd.Name == "" {
			continue
		}
		existingByName[cmd.Name] = cmd
	}
	for _, def := range defs {
		if err := c.upsertSlashCommand(appID, guildID, def, existingByName); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) upsertSlashCommand(appID, guildID string, def discordpkg.SlashCommandDefinition, existingByName map[string]*discordgo.ApplicationCommand) error {
	if def.Name == "" {
		return nil
	}
	payload := toApplicationCommand(def)
	cmd, ok := existingByName[def.Name]
	if !ok {
		_, err := c.session.ApplicationCommandCreate(appID, guildID, payload)
		return err
	}
	if sameCommand(cmd, payload) {
		return nil
	}
	_, err := c.session.ApplicationCommandEdit(appID, guildID, cmd.ID, payload)
	return err
}

func toApplicationCommand(def discordpkg.SlashCommandDefinition) *discordgo.ApplicationCommand {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(def.Options))
	for _, opt := range def.Options {
		options = append(options, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        opt.Name,
			Description: opt.Description,
			Required:    opt.Required,
		})
	}
	return &discordgo.ApplicationCommand{
		Name:        def.Name,
		Description: def.Description,
		Options:     options,
	}
}

func sameCommand(existing, want *discordgo.ApplicationCommand) bool {
	if existing.Description != want.Description {
		return false
	}
	return slices.EqualFunc(existing.Options, want.Options, func(a, b *discordgo.ApplicationCommandOption) bool {
		return a != nil && b != nil && a.Type == b.Type && a.Name == b.Name && a.Description == b.Description && a.Required == b.Required
	})
}

func (c *Client) GetBotUserID() (string, error) {
	if c.botUserID != "" {
		return c.botUserID, nil
	}
	if c.session == nil {
		return "", fmt.Errorf("discord session is not initialized")
	}
	if c.session.State != nil && c.session.State.User != nil && c.session.State.User.ID != "" {
		c.botUserID = c.session.State.User.ID
		return c.botUserID, nil
	}
	u, err := c.session.User("@me")
	if err != nil {
		return "", err
	}
	c.botUserID = u.ID
	return c.botUserID, nil
}

func (c *Client) applicationID() string {
	if c.session == nil || c.session.State == nil {
		return ""
	}
	if c.session.State.Application != nil && c.session.State.Application.ID != "" {
		return c.session.State.Application.ID
	}
	if c.session.State.User != nil {
		return c.session.State.User.ID
	}
	return ""
}

func (c *Client) Run() error {
	select {}
}
