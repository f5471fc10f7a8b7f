// Package platform defines the messaging-platform boundary: the normalized
// inbound event variants and the Messenger operations the workflows call.
package platform

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrUserNotFound is returned when a nickname cannot be resolved to a participant.
var ErrUserNotFound = errors.New("user not found")

// EventKind tags the inbound event variants.
type EventKind int

const (
	// EventMessage is a freshly posted message. It is the only kind that is dispatched.
	EventMessage EventKind = iota
	// EventEdited is an edit of an earlier message.
	EventEdited
	// EventReaction is a reaction added to or removed from an earlier message.
	EventReaction
	// EventMembership is a join or leave notification.
	EventMembership
)

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventEdited:
		return "edited"
	case EventReaction:
		return "reaction"
	case EventMembership:
		return "membership"
	default:
		return "unknown"
	}
}

// User is a platform account.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	IsBot     bool
}

// DisplayName returns the best human-readable name for u.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return u.Username
	default:
		return strconv.FormatInt(u.ID, 10)
	}
}

// Mention renders u the way a chat message should reference it.
func (u User) Mention() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	return u.DisplayName()
}

// MediaKind classifies attached media.
type MediaKind string

const (
	MediaPhoto    MediaKind = "photo"
	MediaDocument MediaKind = "document"
	MediaSticker  MediaKind = "sticker"
	MediaOther    MediaKind = "other"
)

// Media references a downloadable attachment.
type Media struct {
	FileID   string
	Kind     MediaKind
	MimeType string
	Size     int64
}

// IsImage reports whether the attachment is expected to be an image.
func (m *Media) IsImage() bool {
	if m == nil {
		return false
	}
	switch m.Kind {
	case MediaPhoto, MediaSticker:
		return true
	case MediaDocument:
		return strings.HasPrefix(m.MimeType, "image/")
	default:
		return false
	}
}

// Reply describes the message an event replies to.
type Reply struct {
	MessageID int
	Sender    User
	Text      string
	Media     *Media
}

// Event is one normalized inbound platform event.
type Event struct {
	Kind      EventKind
	ChatID    int64
	MessageID int
	Sender    User
	Text      string
	Date      time.Time
	// Mentions holds @usernames found in entities, lower-cased without "@".
	Mentions []string
	// MentionedIDs holds ids of text mentions of users without usernames.
	MentionedIDs []int64
	Media        *Media
	ReplyTo      *Reply
	Joined       []User
	Left         *User
}

// ChatMessage is one line of chat history.
type ChatMessage struct {
	MessageID int
	Sender    User
	Text      string
	Date      time.Time
}

// Participant is a group member together with its admin flag.
type Participant struct {
	User
	IsAdmin bool
}

// PollRef identifies a sent poll.
type PollRef struct {
	ChatID    int64
	MessageID int
	PollID    string
	CloseAt   time.Time
}

// PollResults holds the vote counts of a poll, one per option in send order.
type PollResults struct {
	Counts []int
	Closed bool
}

// FetchOptions narrows FetchMessages.
type FetchOptions struct {
	Limit int
	// SenderID, when non-zero, keeps only messages from that user.
	SenderID int64
}

// Messenger is the set of platform operations the workflows depend on.
// Implementations must serialize calls that target the same chat.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, replyTo int) (int, error)
	SendPoll(ctx context.Context, chatID int64, question string, options []string, openPeriod time.Duration) (PollRef, error)
	PollResults(ctx context.Context, ref PollRef) (PollResults, error)
	// FetchMessages returns the most recent messages of a chat in chronological order.
	FetchMessages(ctx context.Context, chatID int64, opts FetchOptions) ([]ChatMessage, error)
	// Participants enumerates the known members of a chat.
	Participants(ctx context.Context, chatID int64) ([]Participant, error)
	// ResolveMember finds a member by username and reports its admin rights.
	// It returns ErrUserNotFound when nobody matches.
	ResolveMember(ctx context.Context, chatID int64, username string) (Participant, error)
	// Users returns the profiles of the given ids that are known for the chat.
	Users(ctx context.Context, chatID int64, ids []int64) ([]User, error)
	// Ban removes a user from the chat permanently.
	Ban(ctx context.Context, chatID, userID int64) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}
