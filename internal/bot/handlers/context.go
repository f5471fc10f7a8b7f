package handlers

import (
	"slices"
	"strings"

	"github.com/edgard/recapbot/internal/ai"
	"github.com/edgard/recapbot/internal/platform"
	"github.com/edgard/recapbot/internal/text"
)

// MessageContext is the normalized view of one fresh message. It is built
// once per event and only its Text and Attachment change afterwards.
type MessageContext struct {
	ChatID    int64
	MessageID int
	Sender    platform.User
	// Text is the raw message text, or the caption for media messages.
	Text    string
	ReplyTo *platform.Reply
	Media   *platform.Media
	// IsMention is set when the bot is addressed by name, by text mention or by a reply.
	IsMention bool
	// HasImage is set when the message or the message it replies to carries an image.
	HasImage bool
	// Attachment holds the downloaded image once the media branch fetched it.
	Attachment *ai.Image
}

// NewMessageContext builds the context for ev. It reports false for events
// that are not fresh messages, which are ignored.
func NewMessageContext(ev platform.Event, self platform.User) (*MessageContext, bool) {
	if ev.Kind != platform.EventMessage {
		return nil, false
	}

	mc := &MessageContext{
		ChatID:    ev.ChatID,
		MessageID: ev.MessageID,
		Sender:    ev.Sender,
		Text:      ev.Text,
		ReplyTo:   ev.ReplyTo,
		Media:     ev.Media,
	}
	mc.IsMention = isMention(ev, self)
	mc.HasImage = mc.Media.IsImage() || (mc.ReplyTo != nil && mc.ReplyTo.Media.IsImage())
	return mc, true
}

func isMention(ev platform.Event, self platform.User) bool {
	if ev.ReplyTo != nil && ev.ReplyTo.Sender.ID == self.ID {
		return true
	}
	if slices.Contains(ev.MentionedIDs, self.ID) {
		return true
	}
	if self.Username == "" {
		return false
	}
	if slices.Contains(ev.Mentions, strings.ToLower(self.Username)) {
		return true
	}
	return text.ContainsWord(ev.Text, "@"+self.Username) || text.ContainsWord(ev.Text, self.Username)
}

// RepliesToBot reports whether the message answers one of the bot's messages.
func (mc *MessageContext) RepliesToBot(self platform.User) bool {
	return mc.ReplyTo != nil && mc.ReplyTo.Sender.ID == self.ID
}

// ImageMedia returns the image to fetch for the media branch, preferring the
// message's own attachment over the replied-to one.
func (mc *MessageContext) ImageMedia() *platform.Media {
	if mc.Media != nil {
		return mc.Media
	}
	if mc.ReplyTo != nil {
		return mc.ReplyTo.Media
	}
	return nil
}
