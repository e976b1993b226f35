package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/foxseedlab/tokpost/internal/config"
	"github.com/foxseedlab/tokpost/internal/discord"
	"github.com/foxseedlab/tokpost/internal/publisher"
	"github.com/foxseedlab/tokpost/internal/repository"
	"github.com/foxseedlab/tokpost/internal/schedule"
	"github.com/foxseedlab/tokpost/internal/upload"
	"github.com/foxseedlab/tokpost/internal/webhook"
)

const (
	historyLimit        = 5
	historyQueryTimeout = 5 * time.Second
	historyWriteTimeout = 5 * time.Second
	webhookSendTimeout  = 10 * time.Second
)

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".m4v":  {},
	".webm": {},
}

// Janitor stages downloaded videos and removes them afterwards.
type Janitor interface {
	StagePath(filename string) string
	Cleanup(path string) error
}

type InboundKind int

const (
	InboundText InboundKind = iota
	InboundCommand
	InboundAttachment
)

type Inbound struct {
	ConversationID string
	GuildID        string
	ChannelID      string
	UserID         string
	Kind           InboundKind
	Command        string
	Args           []string
	Text           string
	Attachment     discord.Attachment

	reply func(content string) error
}

type Manager struct {
	cfg       *config.Config
	discord   discord.Client
	store     *Store
	resolver  schedule.Resolver
	validator schedule.Validator
	invoker   *upload.Invoker
	publisher publisher.Publisher
	janitor   Janitor
	repo      repository.Repository
	webhook   webhook.Sender
	loc       *time.Location
	now       func() time.Time
}

func NewManager(
	cfg *config.Config,
	dc discord.Client,
	store *Store,
	resolver schedule.Resolver,
	invoker *upload.Invoker,
	pub publisher.Publisher,
	janitor Janitor,
	repo repository.Repository,
	wh webhook.Sender,
) *Manager {
	return &Manager{
		cfg:       cfg,
		discord:   dc,
		store:     store,
		resolver:  resolver,
		validator: schedule.NewValidator(cfg.ScheduleMinLead, cfg.ScheduleMaxHorizon),
		invoker:   invoker,
		publisher: pub,
		janitor:   janitor,
		repo:      repo,
		webhook:   wh,
		loc:       cfg.Location(),
		now:       time.Now,
	}
}

func conversationID(channelID, userID string) string {
	return channelID + ":" + userID
}

func (m *Manager) HandleMessage(event discord.MessageEvent) {
	if event.UserIsBot {
		return
	}
	if !m.allowedGuild(event.GuildID) {
		slog.Debug("ignoring message for different guild", "event_guild_id", event.GuildID, "configured_guild_id", m.cfg.DiscordGuildID)
		return
	}
	in := Inbound{
		ConversationID: conversationID(event.ChannelID, event.UserID),
		GuildID:        event.GuildID,
		ChannelID:      event.ChannelID,
		UserID:         event.UserID,
		Text:           strings.TrimSpace(event.Content),
		reply: func(content string) error {
			return m.discord.SendChannelMessage(event.ChannelID, content)
		},
	}
	switch {
	case strings.HasPrefix(in.Text, "/"):
		in.Kind = InboundCommand
		in.Command, in.Args = parseCommand(in.Text)
	case len(event.Attachments) > 0:
		in.Kind = InboundAttachment
		in.Attachment = event.Attachments[0]
	default:
		in.Kind = InboundText
	}
	m.Dispatch(context.Background(), in)
}

func (m *Manager) HandleSlashCommand(event discord.SlashCommandEvent) {
	if !m.allowedGuild(event.GuildID) {
		_ = event.Respond(messageWrongGuild)
		return
	}
	// The conversation lock may be held for minutes by an upload, longer
	// than Discord waits for an interaction response.
	if event.Defer != nil {
		if err := event.Defer(); err != nil {
			slog.Warn("failed to defer interaction response", "error", err, "command", event.CommandName)
		}
	}
	var args []string
	if name := strings.TrimSpace(event.Options[optionLoginName]); name != "" {
		args = strings.Fields(name)
	}
	m.Dispatch(context.Background(), Inbound{
		ConversationID: conversationID(event.ChannelID, event.UserID),
		GuildID:        event.GuildID,
		ChannelID:      event.ChannelID,
		UserID:         event.UserID,
		Kind:           InboundCommand,
		Command:        strings.ToLower(event.CommandName),
		Args:           args,
		reply:          event.Respond,
	})
}

func (m *Manager) allowedGuild(guildID string) bool {
	return m.cfg.DiscordGuildID == "" || guildID == "" || guildID == m.cfg.DiscordGuildID
}

// Dispatch handles one inbound event. Events for the same conversation are
// processed one at a time; errors and panics end the conversation.
func (m *Manager) Dispatch(ctx context.Context, in Inbound) {
	unlock := m.store.Lock(in.ConversationID)
	defer unlock()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("conversation handler panicked", "panic", r, "conversation_id", in.ConversationID)
			m.abort(in)
		}
	}()

	if err := m.route(ctx, in); err != nil {
		slog.Error("conversation handler failed", "error", err, "conversation_id", in.ConversationID)
		m.abort(in)
	}
}

func (m *Manager) route(ctx context.Context, in Inbound) error {
	if in.Kind == InboundCommand {
		return m.handleCommand(ctx, in)
	}
	conv, ok := m.store.Get(in.ConversationID)
	if !ok {
		return nil
	}
	switch conv.Stage {
	case StageAwaitingVideo:
		return m.handleVideo(ctx, in, conv)
	case StageAwaitingUsername:
		return m.handleUsername(in)
	case StageAwaitingTitle:
		return m.handleTitle(in)
	case StageAwaitingSchedule:
		return m.handleSchedule(ctx, in, conv)
	default:
		return fmt.Errorf("conversation %s is in unexpected stage %s", conv.ID, conv.Stage)
	}
}

func (m *Manager) handleCommand(ctx context.Context, in Inbound) error {
	slog.Info("command received", "command", in.Command, "conversation_id", in.ConversationID, "user_id", in.UserID)
	switch in.Command {
	case commandStart, commandHelp:
		m.say(in, messageHelp)
	case commandLogin:
		m.handleLogin(ctx, in)
	case commandUpload:
		return m.startUpload(in)
	case commandCancel:
		m.cancel(in)
	case commandHistory:
		m.showHistory(ctx, in)
	default:
		m.say(in, messageUnknownCommand)
	}
	return nil
}

func (m *Manager) handleLogin(ctx context.Context, in Inbound) {
	if len(in.Args) == 0 {
		m.say(in, messageLoginUsage)
		return
	}
	name := in.Args[0]
	m.say(in, loginAttemptMessage(name))
	if err := m.login(ctx, name); err != nil {
		slog.Error("login failed", "error", err, "account", name)
		m.say(in, loginFailedMessage(err))
		return
	}
	m.say(in, loginSucceededMessage(name))
}

func (m *Manager) login(ctx context.Context, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("login panicked: %v", r)
		}
	}()
	return m.publisher.Login(ctx, name)
}

func (m *Manager) startUpload(in Inbound) error {
	if _, err := m.store.Create(in.ConversationID); err != nil {
		if errors.Is(err, ErrSessionExists) {
			m.say(in, messageAlreadyUploading)
			return nil
		}
		return err
	}
	if _, err := m.store.Update(in.ConversationID, func(c *Conversation) {
		c.ChannelID = in.ChannelID
		c.UserID = in.UserID
		c.StartedAt = m.now()
		c.Stage = StageAwaitingVideo
	}); err != nil {
		return fmt.Errorf("start conversation: %w", err)
	}
	slog.Info("conversation started", "conversation_id", in.ConversationID, "user_id", in.UserID)
	m.say(in, messageUploadStart)
	return nil
}

func (m *Manager) cancel(in Inbound) {
	if _, ok := m.store.Get(in.ConversationID); !ok {
		m.say(in, messageNothingToCancel)
		return
	}
	m.terminate(in.ConversationID)
	slog.Info("conversation cancelled", "conversation_id", in.ConversationID)
	m.say(in, messageCancelled)
}

func (m *Manager) showHistory(ctx context.Context, in Inbound) {
	if !m.repo.Enabled() {
		m.say(in, messageHistoryDisabled)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, historyQueryTimeout)
	defer cancel()
	records, err := m.repo.ListRecentUploads(ctx, in.UserID, historyLimit)
	if err != nil {
		slog.Error("failed to list upload history", "error", err, "user_id", in.UserID)
		m.say(in, messageHistoryFailed)
		return
	}
	if len(records) == 0 {
		m.say(in, messageHistoryEmpty)
		return
	}
	m.say(in, historyMessage(records, m.loc))
}

func (m *Manager) handleVideo(ctx context.Context, in Inbound, conv Conversation) error {
	if in.Kind != InboundAttachment || !isVideo(in.Attachment) {
		m.say(in, messageSendValidVideo)
		return nil
	}
	if in.Attachment.Size > m.cfg.MaxVideoBytes {
		m.say(in, videoTooLargeMessage(m.cfg.MaxVideoBytes))
		return nil
	}

	path := m.janitor.StagePath(in.Attachment.Filename)
	m.say(in, messageDownloading)
	if err := m.download(ctx, in.Attachment, path); err != nil {
		slog.Warn("video download failed", "error", err, "conversation_id", conv.ID, "attachment_id", in.Attachment.ID)
		m.cleanup(path)
		if errors.Is(err, discord.ErrAttachmentTooLarge) {
			m.say(in, videoTooLargeMessage(m.cfg.MaxVideoBytes))
			return nil
		}
		m.say(in, messageDownloadFailed)
		return nil
	}
	if _, err := m.store.Update(conv.ID, func(c *Conversation) {
		c.StagedFilePath = path
		c.Stage = StageAwaitingUsername
	}); err != nil {
		m.cleanup(path)
		return fmt.Errorf("record staged video: %w", err)
	}
	slog.Info("video staged", "conversation_id", conv.ID, "path", path, "bytes", in.Attachment.Size)
	m.say(in, messageVideoReceived)
	return nil
}

func (m *Manager) download(ctx context.Context, a discord.Attachment, path string) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.DownloadTimeout)
	defer cancel()
	return m.discord.DownloadAttachment(ctx, a, path, m.cfg.MaxVideoBytes)
}

func isVideo(a discord.Attachment) bool {
	if strings.HasPrefix(strings.ToLower(a.ContentType), "video/") {
		return true
	}
	if a.ContentType != "" {
		return false
	}
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(a.Filename))]
	return ok
}

func (m *Manager) handleUsername(in Inbound) error {
	name := strings.TrimPrefix(in.Text, "@")
	if in.Kind != InboundText || name == "" {
		m.say(in, messageAskUsername)
		return nil
	}
	if _, err := m.store.Update(in.ConversationID, func(c *Conversation) {
		c.Username = name
		c.Stage = StageAwaitingTitle
	}); err != nil {
		return fmt.Errorf("record username: %w", err)
	}
	m.say(in, messageAskTitle)
	return nil
}

func (m *Manager) handleTitle(in Inbound) error {
	if in.Kind != InboundText || in.Text == "" {
		m.say(in, messageTitleReprompt)
		return nil
	}
	if _, err := m.store.Update(in.ConversationID, func(c *Conversation) {
		c.Title = in.Text
		c.Stage = StageAwaitingSchedule
	}); err != nil {
		return fmt.Errorf("record title: %w", err)
	}
	m.say(in, messageSchedulePrompt)
	return nil
}

func (m *Manager) handleSchedule(ctx context.Context, in Inbound, conv Conversation) error {
	if in.Kind != InboundText || in.Text == "" {
		m.say(in, messageSchedulePrompt)
		return nil
	}
	now := m.now().In(m.loc)

	candidate := schedule.OptOutCandidate()
	if !schedule.IsOptOut(in.Text) {
		ts, ok := m.resolver.Resolve(in.Text, now)
		if !ok {
			slog.Info("schedule text not understood", "conversation_id", conv.ID, "text", in.Text)
			m.say(in, messageScheduleUnparseable)
			return nil
		}
		candidate = schedule.NewCandidate(ts, now)
	}

	delay, verdict := m.validator.Validate(candidate, now)
	slog.Info("schedule validated", "conversation_id", conv.ID, "verdict", verdict.String(), "delay_seconds", delay)
	if candidate.ParseSucceeded && m.cfg.IsDevelopment() {
		m.say(in, scheduleDebugMessage(now, candidate.Timestamp.In(m.loc), delay))
	}

	switch verdict {
	case schedule.VerdictImmediate:
		return m.completeUpload(ctx, in, conv, 0, nil)
	case schedule.VerdictAccepted:
		at := candidate.Timestamp.In(m.loc)
		m.say(in, scheduleConfirmationMessage(at, delay))
		return m.completeUpload(ctx, in, conv, delay, &at)
	case schedule.VerdictTooSoon:
		m.say(in, tooSoonMessage(m.validator.MinLead))
		return nil
	case schedule.VerdictTooFar:
		m.say(in, tooFarMessage(m.validator.MaxHorizon))
		return nil
	default:
		return fmt.Errorf("unexpected schedule verdict %s", verdict)
	}
}

// completeUpload runs the publisher, releases the staged file whatever the
// outcome, reports back and ends the conversation.
func (m *Manager) completeUpload(ctx context.Context, in Inbound, conv Conversation, delaySeconds int64, scheduledAt *time.Time) error {
	m.say(in, messageUploadStarting)
	res := m.invoker.Invoke(ctx, upload.Request{
		Username:     conv.Username,
		FilePath:     conv.StagedFilePath,
		Title:        conv.Title,
		DelaySeconds: delaySeconds,
	})
	m.releaseStagedFile(conv.ID)
	m.recordResult(ctx, conv, delaySeconds, scheduledAt, res)

	if res.OK {
		slog.Info("upload succeeded", "conversation_id", conv.ID, "account", conv.Username, "delay_seconds", delaySeconds)
		m.say(in, uploadSucceededMessage(scheduledAt))
	} else {
		slog.Warn("upload failed", "conversation_id", conv.ID, "account", conv.Username, "detail", res.Detail)
		m.say(in, uploadFailedMessage(res.Detail))
	}
	m.terminate(conv.ID)
	return nil
}

func (m *Manager) recordResult(ctx context.Context, conv Conversation, delaySeconds int64, scheduledAt *time.Time, res upload.Result) {
	status := repository.UploadStatusSucceeded
	detail := ""
	if !res.OK {
		status = repository.UploadStatusFailed
		detail = res.Detail
	}
	if m.repo.Enabled() {
		recCtx, cancel := context.WithTimeout(ctx, historyWriteTimeout)
		defer cancel()
		if _, err := m.repo.RecordUpload(recCtx, repository.RecordUploadInput{
			ConversationID: conv.ID,
			UserID:         conv.UserID,
			AccountName:    conv.Username,
			Title:          conv.Title,
			DelaySeconds:   delaySeconds,
			ScheduledAt:    scheduledAt,
			Status:         status,
			ErrorDetail:    detail,
		}); err != nil {
			slog.Error("failed to record upload", "error", err, "conversation_id", conv.ID)
		}
	}

	payload := webhook.UploadResultPayload{
		SchemaVersion:  webhook.UploadResultSchemaVersion,
		ConversationID: conv.ID,
		UserID:         conv.UserID,
		AccountName:    conv.Username,
		Title:          conv.Title,
		DelaySeconds:   delaySeconds,
		Succeeded:      res.OK,
		ErrorDetail:    detail,
		FinishedAt:     m.now().UTC().Format(time.RFC3339),
	}
	if scheduledAt != nil {
		payload.ScheduledAt = scheduledAt.UTC().Format(time.RFC3339)
	}
	whCtx, cancel := context.WithTimeout(ctx, webhookSendTimeout)
	defer cancel()
	if err := m.webhook.SendUploadResult(whCtx, payload); err != nil {
		slog.Error("failed to send upload result webhook", "error", err, "conversation_id", conv.ID)
	}
}

// abort reports a generic failure and forces the conversation to end.
func (m *Manager) abort(in Inbound) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("abort panicked", "panic", r, "conversation_id", in.ConversationID)
		}
	}()
	m.say(in, messageGenericError)
	m.terminate(in.ConversationID)
}

func (m *Manager) terminate(id string) {
	m.releaseStagedFile(id)
	if _, err := m.store.Update(id, func(c *Conversation) {
		c.Stage = StageTerminated
	}); err != nil && !errors.Is(err, ErrSessionNotFound) {
		slog.Warn("failed to mark conversation terminated", "error", err, "conversation_id", id)
	}
	m.store.Remove(id)
}

// releaseStagedFile marks the file released before deleting it, so the
// janitor sees each path at most once.
func (m *Manager) releaseStagedFile(id string) {
	conv, ok := m.store.Get(id)
	if !ok || conv.StagedFilePath == "" || conv.FileReleased {
		return
	}
	if _, err := m.store.Update(id, func(c *Conversation) {
		c.FileReleased = true
	}); err != nil {
		slog.Warn("failed to mark staged file released", "error", err, "conversation_id", id)
		return
	}
	m.cleanup(conv.StagedFilePath)
}

func (m *Manager) cleanup(path string) {
	if err := m.janitor.Cleanup(path); err != nil {
		slog.Warn("failed to remove staged file", "error", err, "path", path)
	}
}

func (m *Manager) say(in Inbound, content string) {
	if in.reply == nil {
		return
	}
	if err := in.reply(content); err != nil {
		slog.Warn("failed to send reply", "error", err, "conversation_id", in.ConversationID)
	}
}
