package handlers

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/edgard/recapbot/internal/ai"
	"github.com/edgard/recapbot/internal/platform"
)

type randomReplyHandler struct {
	deps HandlerDeps
}

// NewRandomReplyHandler creates the handler for unprompted replies.
func NewRandomReplyHandler(deps HandlerDeps) CommandFunc {
	return randomReplyHandler{deps}.Handle
}

// ShouldReply reports whether the sender is eligible and the draw succeeded.
func (h randomReplyHandler) ShouldReply(mc *MessageContext) bool {
	cfg := h.deps.Config.RandomReply
	if !cfg.Enabled || cfg.Percentage <= 0 {
		return false
	}
	if len(cfg.AllowUserIDs) > 0 && !slices.Contains(cfg.AllowUserIDs, mc.Sender.ID) {
		return false
	}
	if slices.Contains(cfg.DenyUserIDs, mc.Sender.ID) {
		return false
	}

	draw := rand.Float64
	if h.deps.Rand != nil {
		draw = h.deps.Rand
	}
	return draw()*100 < cfg.Percentage
}

func (h randomReplyHandler) Handle(ctx context.Context, mc *MessageContext) error {
	msgs, err := h.deps.Messenger.FetchMessages(ctx, mc.ChatID, platform.FetchOptions{
		Limit:    h.deps.Config.RandomReply.HistoryLimit,
		SenderID: mc.Sender.ID,
	})
	if err != nil {
		return err
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, m.Text)
	}
	if len(lines) == 0 {
		lines = append(lines, mc.Text)
	}

	prompt := fmt.Sprintf(personaHeader, h.deps.Self.DisplayName(), h.deps.Self.Username) +
		fmt.Sprintf(randomReplyTemplate, mc.Sender.DisplayName(), strings.Join(lines, "\n"))
	answer, err := h.deps.Generator.Generate(ctx, ai.Request{Prompt: prompt})
	if err != nil {
		return err
	}

	_, err = h.deps.Messenger.SendMessage(ctx, mc.ChatID, answer, mc.MessageID)
	return err
}
