package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/edgard/recapbot/internal/ai"
	"github.com/edgard/recapbot/internal/bot/handlers"
	"github.com/edgard/recapbot/internal/config"
	"github.com/edgard/recapbot/internal/database"
	"github.com/edgard/recapbot/internal/moderation"
	"github.com/edgard/recapbot/internal/platform"
	"github.com/edgard/recapbot/internal/platform/platformtest"
	"github.com/edgard/recapbot/internal/recap"
)

const (
	testChatID  int64 = -100
	testAdminID int64 = 1
)

var (
	botUser = platform.User{ID: 999, Username: "recapbot", FirstName: "Recap", IsBot: true}
	alice   = platform.User{ID: 10, Username: "alice", FirstName: "Alice"}
	bob     = platform.User{ID: 11, Username: "bob", FirstName: "Bob"}
	admin   = platform.User{ID: testAdminID, Username: "root", FirstName: "Root"}
)

var testMessages = config.Messages{
	GeneralError:      "general error",
	NoAnswer:          "no answer",
	MediaError:        "media error",
	Unauthorized:      "unauthorized",
	RecapInvalidLimit: "limit must be between 1 and %d",
	RecapEmpty:        "nothing to recap",
	HistoryCleared:    "history cleared",
	QuestionEmpty:     "ask something",
	ScanNone:          "no lurkers in the last %d messages",
	ScanHeader:        "lurkers in the last %d messages:",
	UsersHeader:       "%d users:",
	UsersEmpty:        "no users",
	AdminMarker:       "[admin]",
}

func testConfig() *config.Config {
	return &config.Config{
		Telegram:    config.TelegramConfig{Token: "token", AdminUserID: testAdminID},
		Recap:       config.RecapConfig{DefaultLimit: 100, MaxLimit: 1000},
		Question:    config.QuestionConfig{HistoryLimit: 10},
		Mention:     config.MentionConfig{HistoryLimit: 20},
		Lurkers:     config.LurkerConfig{ScanWindow: 50},
		RandomReply: config.RandomReplyConfig{HistoryLimit: 5},
		Media:       config.MediaConfig{MaxAttempts: 3, MaxBytes: 1 << 20, DownloadTimeout: time.Second},
	}
}

// fakeGenerator records requests and answers with a fixed reply.
type fakeGenerator struct {
	mu     sync.Mutex
	reply  string
	err    error
	prompt []ai.Request
}

func (g *fakeGenerator) Generate(_ context.Context, req ai.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompt = append(g.prompt, req)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *fakeGenerator) requests() []ai.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]ai.Request(nil), g.prompt...)
}

type fakeHistory struct {
	mu      sync.Mutex
	turns   []database.HistoryTurn
	cleared []int64
}

func (h *fakeHistory) AppendHistoryTurn(_ context.Context, turn *database.HistoryTurn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, *turn)
	return nil
}

func (h *fakeHistory) GetRecentHistory(_ context.Context, chatID int64, limit int) ([]database.HistoryTurn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []database.HistoryTurn
	for _, t := range h.turns {
		if t.ChatID == chatID {
			out = append(out, t)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (h *fakeHistory) ClearHistory(_ context.Context, chatID int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleared = append(h.cleared, chatID)
	h.turns = nil
	return nil
}

// fakeSummarizer records requests.
type fakeSummarizer struct {
	mu   sync.Mutex
	reqs []recap.Request
}

func (s *fakeSummarizer) Summarize(_ context.Context, req recap.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	return "summary", nil
}

type fakeVoteKicker struct {
	args []string
	err  error
}

func (v *fakeVoteKicker) Start(_ context.Context, chatID int64, _ platform.User, args string) (*moderation.Session, error) {
	v.args = append(v.args, args)
	if v.err != nil {
		return nil, v.err
	}
	return &moderation.Session{ChatID: chatID}, nil
}

type fixture struct {
	deps      handlers.HandlerDeps
	messenger *platformtest.Messenger
	gen       *fakeGenerator
	history   *fakeHistory
	summary   *fakeSummarizer
	votekick  *fakeVoteKicker
}

func newFixture() *fixture {
	f := &fixture{
		messenger: &platformtest.Messenger{},
		gen:       &fakeGenerator{reply: "answer"},
		history:   &fakeHistory{},
		summary:   &fakeSummarizer{},
		votekick:  &fakeVoteKicker{},
	}
	f.deps = handlers.HandlerDeps{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:    testConfig(),
		Messages:  testMessages,
		Messenger: f.messenger,
		History:   f.history,
		Recap:     f.summary,
		Generator: f.gen,
		VoteKick:  f.votekick,
		Self:      botUser,
		Rand:      func() float64 { return 0.99 },
	}
	return f
}

func (f *fixture) dispatcher() *handlers.Dispatcher {
	return handlers.NewDispatcher(f.deps)
}

func message(from platform.User, text string) platform.Event {
	return platform.Event{
		Kind:      platform.EventMessage,
		ChatID:    testChatID,
		MessageID: 42,
		Sender:    from,
		Text:      text,
		Date:      time.Unix(1700000000, 0),
	}
}

func sentTexts(m *platformtest.Messenger) []string {
	var out []string
	for _, s := range m.Sent() {
		out = append(out, s.Text)
	}
	return out
}

func participant(u platform.User, isAdmin bool) platform.Participant {
	return platform.Participant{User: u, IsAdmin: isAdmin}
}
