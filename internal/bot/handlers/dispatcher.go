package handlers

import (
	"context"

	"github.com/edgard/recapbot/internal/platform"
)

// Action is what the dispatcher did with an event.
type Action int

const (
	ActionNone Action = iota
	ActionCommand
	ActionMention
	ActionRandomReply
)

func (a Action) String() string {
	switch a {
	case ActionCommand:
		return "command"
	case ActionMention:
		return "mention"
	case ActionRandomReply:
		return "random_reply"
	default:
		return "none"
	}
}

// Dispatcher classifies fresh messages and runs at most one workflow per
// event: a command, then a mention, then a random reply.
type Dispatcher struct {
	deps     HandlerDeps
	router   *Router
	reporter *Reporter
	mention  CommandFunc
	random   randomReplyHandler
}

func NewDispatcher(deps HandlerDeps) *Dispatcher {
	reporter := NewReporter(deps.Messenger, deps.Messages, deps.Logger)
	return &Dispatcher{
		deps:     deps,
		router:   NewRouter(deps, reporter),
		reporter: reporter,
		mention:  NewMentionHandler(deps),
		random:   randomReplyHandler{deps},
	}
}

// Router exposes the command table, for registering the command menu.
func (d *Dispatcher) Router() *Router {
	return d.router
}

// Handle has the signature of the client's event callback.
func (d *Dispatcher) Handle(ctx context.Context, ev platform.Event) {
	d.Dispatch(ctx, ev)
}

// Dispatch processes ev and reports which branch handled it. Events other
// than fresh messages and messages from the bot itself are dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, ev platform.Event) Action {
	mc, ok := NewMessageContext(ev, d.deps.Self)
	if !ok || mc.Sender.ID == d.deps.Self.ID {
		return ActionNone
	}

	if d.router.Route(ctx, mc) {
		return ActionCommand
	}

	if mc.IsMention {
		d.run(ctx, mc, d.mention)
		return ActionMention
	}

	if d.random.ShouldReply(mc) {
		d.run(ctx, mc, d.random.Handle)
		return ActionRandomReply
	}

	return ActionNone
}

func (d *Dispatcher) run(ctx context.Context, mc *MessageContext, fn CommandFunc) {
	if err := fn(ctx, mc); err != nil {
		d.reporter.Report(ctx, mc.ChatID, mc.MessageID, err)
	}
}
