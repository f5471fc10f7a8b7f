package handlers

import (
	"context"
	"strings"

	"github.com/edgard/recapbot/internal/telegram"
)

// CommandFunc handles one command message. A returned error is reported to
// the chat by the router.
type CommandFunc func(ctx context.Context, mc *MessageContext) error

// Command is one entry of the router table.
type Command struct {
	Token       string
	Description string
	Handler     CommandFunc
}

// Router runs the first command whose token occurs in a message.
type Router struct {
	commands []Command
	reporter *Reporter
	deps     HandlerDeps
}

// NewRouter builds the command table. Order matters: when a message contains
// several tokens, the one listed first wins.
func NewRouter(deps HandlerDeps, reporter *Reporter) *Router {
	return &Router{
		deps:     deps,
		reporter: reporter,
		commands: []Command{
			{Token: "/recap", Description: "Summarize the last messages: /recap [N]", Handler: NewRecapHandler(deps)},
			{Token: "/clear", Description: "Clear the conversation history (admin)", Handler: AdminOnly(deps, NewClearHandler(deps))},
			{Token: "/q", Description: "Ask a question: /q <text>", Handler: NewQuestionHandler(deps)},
			{Token: "/votekick", Description: "Start a vote to remove a member: /votekick @user", Handler: NewVoteKickHandler(deps)},
			{Token: "/scan", Description: "List members who have not posted recently", Handler: NewScanHandler(deps)},
			{Token: "/users", Description: "List known members", Handler: NewUsersHandler(deps)},
		},
	}
}

// Match returns the command that would handle text.
func (r *Router) Match(text string) (Command, bool) {
	for _, cmd := range r.commands {
		if strings.Contains(text, cmd.Token) {
			return cmd, true
		}
	}
	return Command{}, false
}

// Route runs the matching command, if any, and reports whether one ran.
func (r *Router) Route(ctx context.Context, mc *MessageContext) bool {
	cmd, ok := r.Match(mc.Text)
	if !ok {
		return false
	}

	log := r.deps.Logger.With("command", cmd.Token)
	log.InfoContext(ctx, "Running command", "chat_id", mc.ChatID, "user_id", mc.Sender.ID)
	if err := cmd.Handler(ctx, mc); err != nil {
		r.reporter.Report(ctx, mc.ChatID, mc.MessageID, err)
	}
	return true
}

// Commands lists the command menu shown by the client.
func (r *Router) Commands() []telegram.Command {
	out := make([]telegram.Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, telegram.Command{
			Name:        strings.TrimPrefix(cmd.Token, "/"),
			Description: cmd.Description,
		})
	}
	return out
}

// commandArgs returns the text following token, without a "@botname" suffix
// addressed to this bot.
func commandArgs(text, token, botUsername string) string {
	idx := strings.Index(text, token)
	if idx < 0 {
		return ""
	}
	rest := text[idx+len(token):]
	if botUsername != "" && strings.HasPrefix(rest, "@") {
		name, tail, _ := strings.Cut(rest[1:], " ")
		if strings.EqualFold(name, botUsername) {
			rest = tail
		}
	}
	return strings.TrimSpace(rest)
}
