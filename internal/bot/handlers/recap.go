package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/edgard/recapbot/internal/errs"
	"github.com/edgard/recapbot/internal/platform"
	"github.com/edgard/recapbot/internal/recap"
)

// NewRecapHandler returns the handler for /recap [N].
func NewRecapHandler(deps HandlerDeps) CommandFunc {
	return recapHandler{deps}.Handle
}

type recapHandler struct {
	deps HandlerDeps
}

func (h recapHandler) Handle(ctx context.Context, mc *MessageContext) error {
	cfg := h.deps.Config.Recap

	limit, err := parseLimit(commandArgs(mc.Text, "/recap", h.deps.Self.Username), cfg.DefaultLimit, cfg.MaxLimit)
	if err != nil {
		return errs.NewValidationError(fmt.Sprintf(h.deps.Messages.RecapInvalidLimit, cfg.MaxLimit), err)
	}

	msgs, err := h.deps.Messenger.FetchMessages(ctx, mc.ChatID, platform.FetchOptions{Limit: limit})
	if err != nil {
		return err
	}
	// The newest line is the /recap message itself.
	if len(msgs) < 2 {
		return errs.NewValidationError(h.deps.Messages.RecapEmpty, nil)
	}

	summary, err := h.deps.Recap.Summarize(ctx, recap.Request{
		Lines:  formatLines(msgs),
		Mode:   recap.ModeStandard,
		UseAlt: cfg.UseAltModel,
	})
	if err != nil {
		return fmt.Errorf("recap of %d messages: %w", len(msgs), err)
	}

	_, err = h.deps.Messenger.SendMessage(ctx, mc.ChatID, summary, mc.MessageID)
	return err
}

// parseLimit reads the optional count argument. Only the first word counts.
func parseLimit(args string, def, maxLimit int) (int, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, err
	}
	if n < 1 || n > maxLimit {
		return 0, fmt.Errorf("limit %d out of range 1..%d", n, maxLimit)
	}
	return n, nil
}

// formatLines renders messages as "sender: text" lines.
func formatLines(msgs []platform.ChatMessage) []string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, m.Sender.DisplayName()+": "+m.Text)
	}
	return lines
}
