package handlers

import (
	"context"
	"fmt"

	"github.com/edgard/recapbot/internal/ai"
	"github.com/edgard/recapbot/internal/platform"
	"github.com/edgard/recapbot/internal/recap"
	"github.com/edgard/recapbot/internal/text"
)

type mentionHandler struct {
	deps HandlerDeps
}

// NewMentionHandler creates the handler for messages that address the bot.
func NewMentionHandler(deps HandlerDeps) CommandFunc {
	return mentionHandler{deps}.Handle
}

// Handle picks the first applicable branch: a reply to the bot, an image,
// a reply to someone else, or an ad-hoc recap of the recent conversation.
func (h mentionHandler) Handle(ctx context.Context, mc *MessageContext) error {
	log := h.deps.Logger.With("handler", "mention", "chat_id", mc.ChatID)
	prompt := text.StripMention(mc.Text, h.deps.Self.Username)

	var (
		answer string
		err    error
	)
	switch {
	case mc.RepliesToBot(h.deps.Self):
		log.DebugContext(ctx, "Answering reply to bot")
		answer, err = h.answerReplyToBot(ctx, mc, prompt)
	case mc.HasImage:
		log.DebugContext(ctx, "Answering with image")
		answer, err = h.answerWithImage(ctx, mc, prompt)
	case mc.ReplyTo != nil && mc.ReplyTo.Text != "":
		log.DebugContext(ctx, "Answering with quoted context")
		answer, err = h.generate(ctx, ai.Request{
			Prompt: fmt.Sprintf(replyContextTemplate,
				mc.ReplyTo.Sender.DisplayName(), mc.ReplyTo.Text,
				mc.Sender.DisplayName(), orDefault(prompt)),
		})
	default:
		log.DebugContext(ctx, "Answering with conversation recap")
		answer, err = h.answerFromHistory(ctx, mc, prompt)
	}
	if err != nil {
		return err
	}

	_, err = h.deps.Messenger.SendMessage(ctx, mc.ChatID, answer, mc.MessageID)
	return err
}

func (h mentionHandler) answerReplyToBot(ctx context.Context, mc *MessageContext, prompt string) (string, error) {
	return h.generate(ctx, ai.Request{
		History: []ai.Turn{{Role: ai.RoleModel, Text: mc.ReplyTo.Text}},
		Prompt:  orDefault(prompt),
	})
}

func (h mentionHandler) answerWithImage(ctx context.Context, mc *MessageContext, prompt string) (string, error) {
	img, err := fetchImage(ctx, h.deps, mc.ImageMedia())
	if err != nil {
		return "", err
	}
	mc.Attachment = img
	return h.generate(ctx, ai.Request{Prompt: orDefault(prompt), Image: img})
}

func (h mentionHandler) answerFromHistory(ctx context.Context, mc *MessageContext, prompt string) (string, error) {
	msgs, err := h.deps.Messenger.FetchMessages(ctx, mc.ChatID, platform.FetchOptions{
		Limit: h.deps.Config.Mention.HistoryLimit,
	})
	if err != nil {
		return "", err
	}
	return h.deps.Recap.Summarize(ctx, recap.Request{
		Prompt: h.persona() + orDefault(prompt),
		Lines:  formatLines(msgs),
		Mode:   recap.ModeRaw,
	})
}

func (h mentionHandler) generate(ctx context.Context, req ai.Request) (string, error) {
	req.Prompt = h.persona() + req.Prompt
	return h.deps.Generator.Generate(ctx, req)
}

func (h mentionHandler) persona() string {
	return fmt.Sprintf(personaHeader, h.deps.Self.DisplayName(), h.deps.Self.Username)
}

func orDefault(prompt string) string {
	if prompt == "" {
		return defaultMentionTask
	}
	return prompt
}
