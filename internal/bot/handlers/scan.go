package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/edgard/recapbot/internal/moderation"
	"github.com/edgard/recapbot/internal/platform"
)

// NewScanHandler returns the handler for /scan.
func NewScanHandler(deps HandlerDeps) CommandFunc {
	return scanHandler{deps}.Handle
}

type scanHandler struct {
	deps HandlerDeps
}

func (h scanHandler) Handle(ctx context.Context, mc *MessageContext) error {
	window := h.deps.Config.Lurkers.ScanWindow

	msgs, err := h.deps.Messenger.FetchMessages(ctx, mc.ChatID, platform.FetchOptions{Limit: window})
	if err != nil {
		return err
	}
	members, err := h.deps.Messenger.Participants(ctx, mc.ChatID)
	if err != nil {
		return err
	}

	senders := moderation.NewIDSet()
	for _, m := range msgs {
		senders.Add(moderation.UserID(m.Sender.ID))
	}
	participants := moderation.NewIDSet()
	for _, p := range members {
		participants.Add(moderation.UserID(p.ID))
	}

	lurkers := moderation.FindLurkers(senders, participants)
	if len(lurkers) == 0 {
		_, err = h.deps.Messenger.SendMessage(ctx, mc.ChatID, fmt.Sprintf(h.deps.Messages.ScanNone, window), mc.MessageID)
		return err
	}

	ids := make([]int64, 0, len(lurkers))
	for _, id := range lurkers.Sorted() {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return fmt.Errorf("parse lurker id %q: %w", id, err)
		}
		ids = append(ids, n)
	}
	users, err := h.deps.Messenger.Users(ctx, mc.ChatID, ids)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(h.deps.Messages.ScanHeader, window))
	for _, u := range users {
		sb.WriteString("\n- ")
		sb.WriteString(u.Mention())
	}

	_, err = h.deps.Messenger.SendMessage(ctx, mc.ChatID, sb.String(), mc.MessageID)
	return err
}
