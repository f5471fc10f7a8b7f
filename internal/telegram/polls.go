package telegram

import (
	"sync"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/recapbot/internal/platform"
)

// pollRegistry keeps the latest known state of the polls the bot sent. It is
// fed by poll updates, which Telegram delivers for polls sent by the bot.
type pollRegistry struct {
	mu    sync.Mutex
	polls map[string]platform.PollResults
}

func newPollRegistry() *pollRegistry {
	return &pollRegistry{polls: make(map[string]platform.PollResults)}
}

// track starts tracking a poll with the given number of options.
func (r *pollRegistry) track(pollID string, options int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polls[pollID] = platform.PollResults{Counts: make([]int, options)}
}

// update records a poll state. Updates for unknown polls are ignored.
func (r *pollRegistry) update(p *models.Poll) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.polls[p.ID]; !ok {
		return false
	}
	r.polls[p.ID] = pollResults(p)
	return true
}

func (r *pollRegistry) get(pollID string) (platform.PollResults, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.polls[pollID]
	if !ok {
		return platform.PollResults{}, false
	}
	res.Counts = append([]int(nil), res.Counts...)
	return res, true
}

// forget drops a poll once its result has been consumed.
func (r *pollRegistry) forget(pollID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.polls, pollID)
}

func pollResults(p *models.Poll) platform.PollResults {
	res := platform.PollResults{
		Counts: make([]int, len(p.Options)),
		Closed: p.IsClosed,
	}
	for i, o := range p.Options {
		res.Counts[i] = o.VoterCount
	}
	return res
}

// chatLocks serializes platform calls per chat.
type chatLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newChatLocks() *chatLocks {
	return &chatLocks{locks: make(map[int64]*sync.Mutex)}
}

func (c *chatLocks) lock(chatID int64) func() {
	c.mu.Lock()
	l, ok := c.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[chatID] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}
