package handlers

import (
	"context"
	"fmt"

	"github.com/edgard/recapbot/internal/ai"
	"github.com/edgard/recapbot/internal/database"
	"github.com/edgard/recapbot/internal/errs"
)

// NewQuestionHandler returns the handler for /q <text>.
func NewQuestionHandler(deps HandlerDeps) CommandFunc {
	return questionHandler{deps}.Handle
}

type questionHandler struct {
	deps HandlerDeps
}

func (h questionHandler) Handle(ctx context.Context, mc *MessageContext) error {
	question := commandArgs(mc.Text, "/q", h.deps.Self.Username)
	if question == "" {
		return errs.NewValidationError(h.deps.Messages.QuestionEmpty, nil)
	}

	turns, err := h.deps.History.GetRecentHistory(ctx, mc.ChatID, h.deps.Config.Question.HistoryLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	answer, err := h.deps.Generator.Generate(ctx, ai.Request{
		Prompt:  question,
		History: historyToTurns(turns),
	})
	if err != nil {
		return err
	}

	for _, turn := range []*database.HistoryTurn{
		{ChatID: mc.ChatID, Role: database.RoleUser, Content: question},
		{ChatID: mc.ChatID, Role: database.RoleModel, Content: answer},
	} {
		if err := h.deps.History.AppendHistoryTurn(ctx, turn); err != nil {
			// The answer is still worth sending.
			h.deps.Logger.ErrorContext(ctx, "Failed to save history turn", "error", err, "chat_id", mc.ChatID, "role", turn.Role)
		}
	}

	_, err = h.deps.Messenger.SendMessage(ctx, mc.ChatID, answer, mc.MessageID)
	return err
}

func historyToTurns(turns []database.HistoryTurn) []ai.Turn {
	out := make([]ai.Turn, 0, len(turns))
	for _, t := range turns {
		role := ai.RoleUser
		if t.Role == database.RoleModel {
			role = ai.RoleModel
		}
		out = append(out, ai.Turn{Role: role, Text: t.Content})
	}
	return out
}
