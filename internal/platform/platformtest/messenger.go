// Package platformtest provides an in-memory platform.Messenger for tests.
package platformtest

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/edgard/recapbot/internal/platform"
)

// Sent is a message recorded by Messenger.SendMessage.
type Sent struct {
	ChatID  int64
	Text    string
	ReplyTo int
}

// Poll is a poll recorded by Messenger.SendPoll.
type Poll struct {
	ChatID     int64
	Question   string
	Options    []string
	OpenPeriod time.Duration
}

// Messenger is a scriptable platform.Messenger. Zero values behave as an
// empty group. Set the Err fields to make individual operations fail.
type Messenger struct {
	mu sync.Mutex

	Messages     []platform.ChatMessage
	Members      []platform.Participant
	Results      []platform.PollResults
	Files        map[string][]byte
	SendErr      error
	PollErr      error
	ResultsErr   error
	BanErr       error
	ResolveErr   error
	FetchErr     error
	DownloadErr  error
	DownloadFail int

	sent       []Sent
	polls      []Poll
	bans       []int64
	downloads  int
	resultsIdx int
	nextID     int
}

var _ platform.Messenger = (*Messenger)(nil)

func (m *Messenger) SendMessage(_ context.Context, chatID int64, text string, replyTo int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return 0, m.SendErr
	}
	m.sent = append(m.sent, Sent{ChatID: chatID, Text: text, ReplyTo: replyTo})
	m.nextID++
	return 1000 + m.nextID, nil
}

func (m *Messenger) SendPoll(_ context.Context, chatID int64, question string, options []string, openPeriod time.Duration) (platform.PollRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PollErr != nil {
		return platform.PollRef{}, m.PollErr
	}
	m.polls = append(m.polls, Poll{ChatID: chatID, Question: question, Options: slices.Clone(options), OpenPeriod: openPeriod})
	m.nextID++
	return platform.PollRef{ChatID: chatID, MessageID: 1000 + m.nextID, PollID: "poll"}, nil
}

// PollResults returns Results in order, repeating the last entry once they run out.
func (m *Messenger) PollResults(_ context.Context, _ platform.PollRef) (platform.PollResults, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ResultsErr != nil {
		return platform.PollResults{}, m.ResultsErr
	}
	if len(m.Results) == 0 {
		return platform.PollResults{}, nil
	}
	r := m.Results[min(m.resultsIdx, len(m.Results)-1)]
	m.resultsIdx++
	return r, nil
}

func (m *Messenger) FetchMessages(_ context.Context, _ int64, opts platform.FetchOptions) ([]platform.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	var out []platform.ChatMessage
	for _, msg := range m.Messages {
		if opts.SenderID == 0 || msg.Sender.ID == opts.SenderID {
			out = append(out, msg)
		}
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[len(out)-opts.Limit:]
	}
	return out, nil
}

func (m *Messenger) Participants(_ context.Context, _ int64) ([]platform.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.Members), nil
}

func (m *Messenger) ResolveMember(_ context.Context, _ int64, username string) (platform.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ResolveErr != nil {
		return platform.Participant{}, m.ResolveErr
	}
	for _, p := range m.Members {
		if strings.EqualFold(p.Username, username) {
			return p, nil
		}
	}
	return platform.Participant{}, platform.ErrUserNotFound
}

func (m *Messenger) Users(_ context.Context, _ int64, ids []int64) ([]platform.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []platform.User
	for _, p := range m.Members {
		if slices.Contains(ids, p.ID) {
			out = append(out, p.User)
		}
	}
	return out, nil
}

func (m *Messenger) Ban(_ context.Context, _ int64, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BanErr != nil {
		return m.BanErr
	}
	m.bans = append(m.bans, userID)
	return nil
}

// DownloadFile fails with DownloadErr for the first DownloadFail calls.
func (m *Messenger) DownloadFile(_ context.Context, fileID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloads++
	if m.DownloadErr != nil && m.downloads <= m.DownloadFail {
		return nil, m.DownloadErr
	}
	return m.Files[fileID], nil
}

// Sent returns the messages sent so far.
func (m *Messenger) Sent() []Sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.sent)
}

// Polls returns the polls sent so far.
func (m *Messenger) Polls() []Poll {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.polls)
}

// Bans returns the banned user ids.
func (m *Messenger) Bans() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.bans)
}

// Downloads returns how many times DownloadFile was called.
func (m *Messenger) Downloads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.downloads
}
