package handlers

import (
	"context"
)

// NewVoteKickHandler returns the handler for /votekick @user.
func NewVoteKickHandler(deps HandlerDeps) CommandFunc {
	return voteKickHandler{deps}.Handle
}

type voteKickHandler struct {
	deps HandlerDeps
}

// Handle only starts the vote. The outcome is announced by the workflow once
// the poll closes.
func (h voteKickHandler) Handle(ctx context.Context, mc *MessageContext) error {
	args := commandArgs(mc.Text, "/votekick", h.deps.Self.Username)
	session, err := h.deps.VoteKick.Start(ctx, mc.ChatID, mc.Sender, args)
	if err != nil {
		return err
	}
	h.deps.Logger.InfoContext(ctx, "Vote-kick started",
		"chat_id", mc.ChatID,
		"session_id", session.ID,
		"target_id", session.Target.ID,
		"requested_by", mc.Sender.ID)
	return nil
}
