package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/recapbot/internal/config"
	"github.com/edgard/recapbot/internal/database"
	"github.com/edgard/recapbot/internal/errs"
	"github.com/edgard/recapbot/internal/platform"
	"github.com/edgard/recapbot/internal/text"
)

const (
	// maxMessageLength is the Bot API limit for one text message.
	maxMessageLength = 4096
	// pollCloseGrace is how long after its close date a poll may stay open
	// before it is stopped explicitly.
	pollCloseGrace = 5 * time.Second
	fileURLFormat  = "https://api.telegram.org/file/bot%s/%s"
)

// api is the subset of the Bot API the client calls. *bot.Bot implements it.
type api interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPoll(ctx context.Context, params *bot.SendPollParams) (*models.Message, error)
	StopPoll(ctx context.Context, params *bot.StopPollParams) (*models.Poll, error)
	BanChatMember(ctx context.Context, params *bot.BanChatMemberParams) (bool, error)
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
}

// EventHandler consumes converted events.
type EventHandler func(ctx context.Context, ev platform.Event)

// Client implements platform.Messenger over the Telegram Bot API. It keeps a
// local log of messages and members because the Bot API cannot list either.
type Client struct {
	bot      *bot.Bot
	api      api
	token    string
	self     platform.User
	store    database.Store
	http     *http.Client
	maxBytes int64
	log      *slog.Logger
	now      func() time.Time

	handleMu sync.Mutex
	onEvent  EventHandler
	chats    *chatLocks
	polls    *pollRegistry
}

var _ platform.Messenger = (*Client)(nil)

func newClient(token string, media config.MediaConfig, store database.Store, log *slog.Logger) *Client {
	return &Client{
		token:    token,
		store:    store,
		http:     &http.Client{Timeout: media.DownloadTimeout},
		maxBytes: media.MaxBytes,
		log:      log.With("component", "telegram_client"),
		now:      time.Now,
		chats:    newChatLocks(),
		polls:    newPollRegistry(),
	}
}

// New creates the Telegram bot, fetches its own identity and returns a client
// whose update handler records and forwards events. Extra options are passed
// to the bot, typically middlewares.
func New(ctx context.Context, cfg config.TelegramConfig, media config.MediaConfig, store database.Store, log *slog.Logger, opts ...bot.Option) (*Client, error) {
	c := newClient(cfg.Token, media, store, log)

	opts = append(opts,
		bot.WithDefaultHandler(c.HandleUpdate),
		bot.WithAllowedUpdates(bot.AllowedUpdates{"message", "edited_message", "message_reaction", "poll"}),
	)
	b, err := NewTelegramBot(cfg.Token, log, opts...)
	if err != nil {
		return nil, errs.NewPlatformError("failed to create telegram bot", err)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		return nil, errs.NewPlatformError("failed to get bot info", err)
	}

	c.bot = b
	c.api = b
	c.self = convertUser(me)
	c.log.Info("Retrieved bot info", "bot_id", me.ID, "bot_username", me.Username)
	return c, nil
}

// Bot returns the underlying bot, for starting the update loop.
func (c *Client) Bot() *bot.Bot {
	return c.bot
}

// Self returns the bot's own account.
func (c *Client) Self() platform.User {
	return c.self
}

// OnEvent sets the consumer of converted events. It must be called before the bot starts.
func (c *Client) OnEvent(h EventHandler) {
	c.onEvent = h
}

// HandleUpdate is the bot's default handler. Poll updates feed the poll
// registry; every other update is converted, recorded and dispatched one at a
// time, so an event is fully processed before the next one starts.
func (c *Client) HandleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Poll != nil {
		if c.polls.update(update.Poll) {
			c.log.DebugContext(ctx, "Poll state updated", "poll_id", update.Poll.ID, "closed", update.Poll.IsClosed)
		}
		return
	}

	ev, ok := ConvertUpdate(update)
	if !ok {
		return
	}

	c.handleMu.Lock()
	defer c.handleMu.Unlock()

	c.record(ctx, ev)
	if c.onEvent != nil {
		c.onEvent(ctx, ev)
	}
}

// record keeps the local message log and member registry up to date.
func (c *Client) record(ctx context.Context, ev platform.Event) {
	switch ev.Kind {
	case platform.EventMessage:
		c.rememberUser(ctx, ev.ChatID, ev.Sender, ev.Date)
		content := ev.Text
		if content == "" && ev.Media != nil {
			content = "[" + string(ev.Media.Kind) + "]"
		}
		if content == "" {
			return
		}
		c.saveMessage(ctx, ev.ChatID, ev.MessageID, ev.Sender, content, ev.Date)

	case platform.EventMembership:
		for _, u := range ev.Joined {
			c.rememberUser(ctx, ev.ChatID, u, ev.Date)
		}
		if ev.Left != nil {
			if err := c.store.MarkParticipantLeft(ctx, ev.ChatID, ev.Left.ID); err != nil {
				c.log.ErrorContext(ctx, "Failed to record member leaving", "chat_id", ev.ChatID, "user_id", ev.Left.ID, "error", err)
			}
		}
	}
}

func (c *Client) rememberUser(ctx context.Context, chatID int64, u platform.User, seen time.Time) {
	if u.ID == 0 || IsSystemUser(u.ID) {
		return
	}
	err := c.store.UpsertParticipant(ctx, &database.Participant{
		ChatID:    chatID,
		UserID:    u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsBot:     u.IsBot,
		LastSeen:  seen,
	})
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to record participant", "chat_id", chatID, "user_id", u.ID, "error", err)
	}
}

func (c *Client) saveMessage(ctx context.Context, chatID int64, messageID int, sender platform.User, content string, ts time.Time) {
	if ts.IsZero() {
		ts = c.now()
	}
	err := c.store.SaveMessage(ctx, &database.Message{
		ChatID:      chatID,
		MessageID:   messageID,
		UserID:      sender.ID,
		Username:    sender.Username,
		DisplayName: sender.DisplayName(),
		Content:     content,
		Timestamp:   ts,
	})
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to record message", "chat_id", chatID, "message_id", messageID, "error", err)
	}
}

// SendMessage sends text, split into several messages when it exceeds the
// platform limit, and returns the id of the first one.
func (c *Client) SendMessage(ctx context.Context, chatID int64, msg string, replyTo int) (int, error) {
	if msg == "" {
		return 0, errs.NewPlatformError("cannot send an empty message", nil)
	}

	unlock := c.chats.lock(chatID)
	defer unlock()

	firstID := 0
	for _, part := range text.Split(msg, maxMessageLength) {
		params := &bot.SendMessageParams{ChatID: chatID, Text: part}
		if replyTo > 0 && firstID == 0 {
			params.ReplyParameters = &models.ReplyParameters{MessageID: replyTo}
		}
		sent, err := c.api.SendMessage(ctx, params)
		if err != nil {
			c.log.ErrorContext(ctx, "Failed to send message", "chat_id", chatID, "error", err)
			return firstID, errs.NewPlatformError("failed to send message", err)
		}
		if firstID == 0 {
			firstID = sent.ID
		}
		ts := unixTime(sent.Date)
		if ts.IsZero() {
			ts = c.now()
		}
		c.saveMessage(ctx, chatID, sent.ID, c.self, part, ts)
	}
	return firstID, nil
}

func (c *Client) SendPoll(ctx context.Context, chatID int64, question string, options []string, openPeriod time.Duration) (platform.PollRef, error) {
	unlock := c.chats.lock(chatID)
	defer unlock()

	pollOptions := make([]models.InputPollOption, len(options))
	for i, o := range options {
		pollOptions[i] = models.InputPollOption{Text: o}
	}
	isAnonymous := false

	sent, err := c.api.SendPoll(ctx, &bot.SendPollParams{
		ChatID:      chatID,
		Question:    question,
		Options:     pollOptions,
		IsAnonymous: &isAnonymous,
		OpenPeriod:  int(openPeriod / time.Second),
	})
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to send poll", "chat_id", chatID, "error", err)
		return platform.PollRef{}, errs.NewPlatformError("failed to send poll", err)
	}
	if sent.Poll == nil {
		return platform.PollRef{}, errs.NewPlatformError("poll message has no poll", nil)
	}

	c.polls.track(sent.Poll.ID, len(options))
	return platform.PollRef{
		ChatID:    chatID,
		MessageID: sent.ID,
		PollID:    sent.Poll.ID,
		CloseAt:   c.now().Add(openPeriod),
	}, nil
}

// PollResults answers from the poll registry. A poll that should have closed
// but was never reported closed is stopped explicitly.
func (c *Client) PollResults(ctx context.Context, ref platform.PollRef) (platform.PollResults, error) {
	res, ok := c.polls.get(ref.PollID)
	if ok && res.Closed {
		c.polls.forget(ref.PollID)
		return res, nil
	}
	if ok && (ref.CloseAt.IsZero() || c.now().Before(ref.CloseAt.Add(pollCloseGrace))) {
		return res, nil
	}

	unlock := c.chats.lock(ref.ChatID)
	defer unlock()

	poll, err := c.api.StopPoll(ctx, &bot.StopPollParams{ChatID: ref.ChatID, MessageID: ref.MessageID})
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to stop poll", "chat_id", ref.ChatID, "poll_id", ref.PollID, "error", err)
		return platform.PollResults{}, errs.NewPlatformError("failed to stop poll", err)
	}
	c.polls.forget(ref.PollID)

	res = pollResults(poll)
	res.Closed = true
	return res, nil
}

func (c *Client) FetchMessages(ctx context.Context, chatID int64, opts platform.FetchOptions) ([]platform.ChatMessage, error) {
	stored, err := c.store.GetRecentMessages(ctx, chatID, opts.Limit, opts.SenderID)
	if err != nil {
		return nil, errs.NewPlatformError("failed to fetch messages", err)
	}

	out := make([]platform.ChatMessage, len(stored))
	for i, m := range stored {
		out[i] = platform.ChatMessage{
			MessageID: m.MessageID,
			Sender:    platform.User{ID: m.UserID, Username: m.Username, FirstName: m.DisplayName},
			Text:      m.Content,
			Date:      m.Timestamp,
		}
	}
	return out, nil
}

// Participants lists the human members known to be in the chat.
func (c *Client) Participants(ctx context.Context, chatID int64) ([]platform.Participant, error) {
	stored, err := c.store.ListParticipants(ctx, chatID)
	if err != nil {
		return nil, errs.NewPlatformError("failed to list participants", err)
	}

	out := make([]platform.Participant, 0, len(stored))
	for _, p := range stored {
		if p.IsBot || p.UserID == c.self.ID || IsSystemUser(p.UserID) {
			continue
		}
		out = append(out, participant(p))
	}
	return out, nil
}

// ResolveMember looks the username up in the member registry and asks
// Telegram for the member's current status.
func (c *Client) ResolveMember(ctx context.Context, chatID int64, username string) (platform.Participant, error) {
	p, err := c.store.FindParticipantByUsername(ctx, chatID, username)
	if err != nil {
		return platform.Participant{}, errs.NewPlatformError("failed to look up member", err)
	}
	if p == nil {
		return platform.Participant{}, platform.ErrUserNotFound
	}

	unlock := c.chats.lock(chatID)
	member, err := c.api.GetChatMember(ctx, &bot.GetChatMemberParams{ChatID: chatID, UserID: p.UserID})
	unlock()
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to get chat member", "chat_id", chatID, "user_id", p.UserID, "error", err)
		return platform.Participant{}, errs.NewPlatformError("failed to get chat member", err)
	}

	switch string(member.Type) {
	case "left", "kicked":
		if err := c.store.MarkParticipantLeft(ctx, chatID, p.UserID); err != nil {
			c.log.WarnContext(ctx, "Failed to record member leaving", "chat_id", chatID, "user_id", p.UserID, "error", err)
		}
		return platform.Participant{}, platform.ErrUserNotFound
	case "creator", "administrator":
		p.IsAdmin = true
	default:
		p.IsAdmin = false
	}
	if err := c.store.SetParticipantAdmin(ctx, chatID, p.UserID, p.IsAdmin); err != nil {
		c.log.WarnContext(ctx, "Failed to store admin flag", "chat_id", chatID, "user_id", p.UserID, "error", err)
	}
	return participant(*p), nil
}

func (c *Client) Users(ctx context.Context, chatID int64, ids []int64) ([]platform.User, error) {
	stored, err := c.store.GetParticipants(ctx, chatID, ids)
	if err != nil {
		return nil, errs.NewPlatformError("failed to get users", err)
	}
	out := make([]platform.User, len(stored))
	for i, p := range stored {
		out[i] = participant(p).User
	}
	return out, nil
}

// Ban removes the user permanently.
func (c *Client) Ban(ctx context.Context, chatID, userID int64) error {
	unlock := c.chats.lock(chatID)
	defer unlock()

	if _, err := c.api.BanChatMember(ctx, &bot.BanChatMemberParams{ChatID: chatID, UserID: userID}); err != nil {
		c.log.ErrorContext(ctx, "Failed to ban chat member", "chat_id", chatID, "user_id", userID, "error", err)
		return errs.NewPlatformError("failed to ban member", err)
	}
	if err := c.store.MarkParticipantLeft(ctx, chatID, userID); err != nil {
		c.log.WarnContext(ctx, "Failed to record banned member", "chat_id", chatID, "user_id", userID, "error", err)
	}
	return nil
}

// DownloadFile resolves fileID to a fresh file path and fetches the content.
func (c *Client) DownloadFile(ctx context.Context, fileID string) (data []byte, err error) {
	if fileID == "" {
		return nil, errs.NewPlatformError("empty file id", nil)
	}

	file, err := c.api.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, errs.NewPlatformError("failed to get file", err)
	}
	if file.FilePath == "" {
		return nil, errs.NewPlatformError("empty file path returned from Telegram", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(fileURLFormat, c.token, file.FilePath), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		// The URL embeds the bot token, keep it out of the error.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, errs.NewPlatformError("failed to download file", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, errs.NewPlatformError(fmt.Sprintf("unexpected status code %d", resp.StatusCode), nil)
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, errs.NewPlatformError("failed to read file data", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, errs.NewMediaError("file too large", errors.New("size limit exceeded"))
	}
	if len(data) == 0 {
		return nil, errs.NewPlatformError("received empty file data", nil)
	}
	return data, nil
}

func participant(p database.Participant) platform.Participant {
	return platform.Participant{
		User: platform.User{
			ID:        p.UserID,
			Username:  p.Username,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			IsBot:     p.IsBot,
		},
		IsAdmin: p.IsAdmin,
	}
}
