package handlers

import (
	"context"
	"fmt"
	"strings"
)

// NewUsersHandler returns the handler for /users.
func NewUsersHandler(deps HandlerDeps) CommandFunc {
	return usersHandler{deps}.Handle
}

type usersHandler struct {
	deps HandlerDeps
}

func (h usersHandler) Handle(ctx context.Context, mc *MessageContext) error {
	members, err := h.deps.Messenger.Participants(ctx, mc.ChatID)
	if err != nil {
		return err
	}

	msgs := h.deps.Messages
	if len(members) == 0 {
		_, err = h.deps.Messenger.SendMessage(ctx, mc.ChatID, msgs.UsersEmpty, mc.MessageID)
		return err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(msgs.UsersHeader, len(members)))
	for _, p := range members {
		sb.WriteString("\n- ")
		sb.WriteString(p.DisplayName())
		if p.Username != "" && p.Username != p.DisplayName() {
			sb.WriteString(" (@" + p.Username + ")")
		}
		if p.IsAdmin {
			sb.WriteString(" " + msgs.AdminMarker)
		}
	}

	_, err = h.deps.Messenger.SendMessage(ctx, mc.ChatID, sb.String(), mc.MessageID)
	return err
}
