package telegram

import (
	"strings"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/recapbot/internal/platform"
)

// Telegram service accounts that post on behalf of the platform or of anonymous admins.
var systemUserIDs = map[int64]struct{}{
	777000:     {}, // Telegram service notifications
	1087968824: {}, // GroupAnonymousBot
	136817688:  {}, // Channel_Bot
}

// IsSystemUser reports whether id belongs to a Telegram service account.
func IsSystemUser(id int64) bool {
	_, ok := systemUserIDs[id]
	return ok
}

// ConvertUpdate turns an update into a platform event. It reports false for
// updates that carry nothing the bot reacts to.
func ConvertUpdate(update *models.Update) (platform.Event, bool) {
	switch {
	case update == nil:
		return platform.Event{}, false

	case update.Message != nil:
		msg := update.Message
		if len(msg.NewChatMembers) > 0 || msg.LeftChatMember != nil {
			ev := platform.Event{
				Kind:      platform.EventMembership,
				ChatID:    msg.Chat.ID,
				MessageID: msg.ID,
				Date:      unixTime(msg.Date),
			}
			if msg.From != nil {
				ev.Sender = convertUser(msg.From)
			}
			for i := range msg.NewChatMembers {
				ev.Joined = append(ev.Joined, convertUser(&msg.NewChatMembers[i]))
			}
			if msg.LeftChatMember != nil {
				left := convertUser(msg.LeftChatMember)
				ev.Left = &left
			}
			return ev, true
		}
		if msg.From == nil {
			return platform.Event{}, false
		}
		return convertMessage(platform.EventMessage, msg), true

	case update.EditedMessage != nil:
		if update.EditedMessage.From == nil {
			return platform.Event{}, false
		}
		return convertMessage(platform.EventEdited, update.EditedMessage), true

	case update.MessageReaction != nil:
		r := update.MessageReaction
		ev := platform.Event{
			Kind:      platform.EventReaction,
			ChatID:    r.Chat.ID,
			MessageID: r.MessageID,
			Date:      unixTime(r.Date),
		}
		if r.User != nil {
			ev.Sender = convertUser(r.User)
		}
		return ev, true

	default:
		return platform.Event{}, false
	}
}

func convertMessage(kind platform.EventKind, msg *models.Message) platform.Event {
	ev := platform.Event{
		Kind:      kind,
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Sender:    convertUser(msg.From),
		Text:      messageText(msg),
		Date:      unixTime(msg.Date),
		Media:     convertMedia(msg),
	}

	entities := msg.Entities
	source := msg.Text
	if msg.Text == "" {
		entities = msg.CaptionEntities
		source = msg.Caption
	}
	for _, e := range entities {
		switch e.Type {
		case models.MessageEntityTypeMention:
			name := strings.TrimPrefix(sliceByUTF16(source, e.Offset, e.Length), "@")
			if name != "" {
				ev.Mentions = append(ev.Mentions, strings.ToLower(name))
			}
		case models.MessageEntityTypeTextMention:
			if e.User != nil {
				ev.MentionedIDs = append(ev.MentionedIDs, e.User.ID)
			}
		}
	}

	if reply := msg.ReplyToMessage; reply != nil {
		ev.ReplyTo = &platform.Reply{
			MessageID: reply.ID,
			Text:      messageText(reply),
			Media:     convertMedia(reply),
		}
		if reply.From != nil {
			ev.ReplyTo.Sender = convertUser(reply.From)
		}
	}
	return ev
}

func convertUser(u *models.User) platform.User {
	return platform.User{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsBot:     u.IsBot,
	}
}

// convertMedia picks the attachment of msg, preferring the largest photo size.
func convertMedia(msg *models.Message) *platform.Media {
	switch {
	case len(msg.Photo) > 0:
		best := msg.Photo[0]
		for _, p := range msg.Photo[1:] {
			if p.Width*p.Height > best.Width*best.Height {
				best = p
			}
		}
		return &platform.Media{FileID: best.FileID, Kind: platform.MediaPhoto, MimeType: "image/jpeg", Size: int64(best.FileSize)}
	case msg.Sticker != nil:
		return &platform.Media{FileID: msg.Sticker.FileID, Kind: platform.MediaSticker, MimeType: "image/webp", Size: int64(msg.Sticker.FileSize)}
	case msg.Document != nil:
		return &platform.Media{FileID: msg.Document.FileID, Kind: platform.MediaDocument, MimeType: msg.Document.MimeType, Size: int64(msg.Document.FileSize)}
	default:
		return nil
	}
}

func messageText(msg *models.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

func unixTime(sec int) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(int64(sec), 0).UTC()
}

// sliceByUTF16 cuts s using Telegram entity offsets, which count UTF-16 code units.
func sliceByUTF16(s string, offset, length int) string {
	if offset < 0 {
		offset = 0
	}
	if length <= 0 || s == "" {
		return ""
	}
	start := utf16OffsetToByteIndex(s, offset)
	end := utf16OffsetToByteIndex(s, offset+length)
	if start > end {
		return ""
	}
	return s[start:end]
}

func utf16OffsetToByteIndex(s string, offset int) int {
	if offset <= 0 {
		return 0
	}
	units := 0
	for i, r := range s {
		if units >= offset {
			return i
		}
		if r <= 0xFFFF {
			units++
		} else {
			units += 2
		}
	}
	return len(s)
}
