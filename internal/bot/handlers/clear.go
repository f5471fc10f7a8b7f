package handlers

import (
	"context"
	"fmt"
)

// NewClearHandler returns the handler for /clear.
func NewClearHandler(deps HandlerDeps) CommandFunc {
	return clearHandler{deps}.Handle
}

type clearHandler struct {
	deps HandlerDeps
}

func (h clearHandler) Handle(ctx context.Context, mc *MessageContext) error {
	if err := h.deps.History.ClearHistory(ctx, mc.ChatID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	h.deps.Logger.InfoContext(ctx, "Conversation history cleared", "chat_id", mc.ChatID, "user_id", mc.Sender.ID)

	_, err := h.deps.Messenger.SendMessage(ctx, mc.ChatID, h.deps.Messages.HistoryCleared, mc.MessageID)
	return err
}
