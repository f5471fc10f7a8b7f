package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edgard/recapbot/internal/config"
	"github.com/edgard/recapbot/internal/errs"
	"github.com/edgard/recapbot/internal/platform"
)

// Poll option order. Results are tallied by index.
const (
	optionYes = iota
	optionNo
)

// Deferrer runs fn once after delay without blocking the caller.
type Deferrer interface {
	After(name string, delay time.Duration, fn func(ctx context.Context)) error
}

// State is the lifecycle position of a vote-kick session.
type State int

const (
	StateRequested State = iota
	StatePollSent
	StatePolling
	StateResolved
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateRequested:
		return "requested"
	case StatePollSent:
		return "poll_sent"
	case StatePolling:
		return "polling"
	case StateResolved:
		return "resolved"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Outcome is how a session ended.
type Outcome int

const (
	OutcomeKicked Outcome = iota
	OutcomeRetained
	OutcomeNoTarget
	OutcomeInvalidTarget
	OutcomeTargetIsAdmin
	OutcomeExpired
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeKicked:
		return "kicked"
	case OutcomeRetained:
		return "retained"
	case OutcomeNoTarget:
		return "no_target"
	case OutcomeInvalidTarget:
		return "invalid_target"
	case OutcomeTargetIsAdmin:
		return "target_is_admin"
	case OutcomeExpired:
		return "expired"
	default:
		return "error"
	}
}

// Session is one vote-kick in progress. Sessions live in memory only.
type Session struct {
	ID          uuid.UUID
	ChatID      int64
	RequestedBy platform.User
	TargetName  string
	Target      platform.Participant
	Poll        platform.PollRef
	CreatedAt   time.Time
	State       State
	Yes         int
	No          int
}

// Workflow runs vote-kicks: it validates the target, posts a yes/no poll,
// re-checks it every poll timeout through the Deferrer and bans the target
// when yes votes strictly outnumber no votes.
type Workflow struct {
	messenger   platform.Messenger
	deferrer    Deferrer
	msgs        config.Messages
	pollTimeout time.Duration
	deadline    time.Duration
	botUsername string
	log         *slog.Logger
	now         func() time.Time

	// OnResolved, when set, is called once per session that reaches a final state.
	OnResolved func(Session, Outcome)
}

// NewWorkflow creates a vote-kick workflow.
func NewWorkflow(
	messenger platform.Messenger,
	deferrer Deferrer,
	cfg config.VoteKickConfig,
	msgs config.Messages,
	botUsername string,
	log *slog.Logger,
) *Workflow {
	return &Workflow{
		messenger:   messenger,
		deferrer:    deferrer,
		msgs:        msgs,
		pollTimeout: cfg.PollTimeout,
		deadline:    cfg.Deadline,
		botUsername: botUsername,
		log:         log.With("component", "votekick"),
		now:         time.Now,
	}
}

// SetClock replaces the time source used for the deadline.
func (w *Workflow) SetClock(now func() time.Time) {
	w.now = now
}

// ParseTarget extracts the username following the command token in args.
func ParseTarget(args string) string {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimPrefix(fields[0], "@")
}

// Start validates the target named in args and posts the poll. Rejections are
// returned as validation or target resolution errors carrying the message to
// show; platform failures as platform errors.
func (w *Workflow) Start(ctx context.Context, chatID int64, requester platform.User, args string) (*Session, error) {
	s := &Session{
		ID:          uuid.New(),
		ChatID:      chatID,
		RequestedBy: requester,
		TargetName:  ParseTarget(args),
		CreatedAt:   w.now(),
		State:       StateRequested,
	}
	log := w.log.With("session_id", s.ID, "chat_id", chatID, "target", s.TargetName)

	if s.TargetName == "" {
		w.abort(ctx, s, OutcomeNoTarget)
		return s, errs.NewValidationError(w.msgs.VoteKickUsage, nil)
	}
	if strings.EqualFold(s.TargetName, w.botUsername) {
		w.abort(ctx, s, OutcomeInvalidTarget)
		return s, errs.NewTargetResolutionError(w.msgs.VoteKickSelf, nil)
	}

	target, err := w.messenger.ResolveMember(ctx, chatID, s.TargetName)
	switch {
	case errors.Is(err, platform.ErrUserNotFound):
		w.abort(ctx, s, OutcomeError)
		return s, errs.NewTargetResolutionError(fmt.Sprintf(w.msgs.VoteKickNotFound, "@"+s.TargetName), err)
	case err != nil:
		w.abort(ctx, s, OutcomeError)
		return s, errs.NewPlatformError("failed to resolve vote-kick target", err)
	}
	s.Target = target

	if target.IsAdmin {
		w.abort(ctx, s, OutcomeTargetIsAdmin)
		return s, errs.NewTargetResolutionError(fmt.Sprintf(w.msgs.VoteKickAdmin, target.Mention()), nil)
	}

	question := fmt.Sprintf(w.msgs.VoteKickQuestion, target.Mention())
	options := make([]string, 2)
	options[optionYes] = w.msgs.VoteKickYes
	options[optionNo] = w.msgs.VoteKickNo

	poll, err := w.messenger.SendPoll(ctx, chatID, question, options, w.pollTimeout)
	if err != nil {
		w.abort(ctx, s, OutcomeError)
		return s, errs.NewPlatformError("failed to send vote-kick poll", err)
	}
	s.Poll = poll
	s.State = StatePollSent
	log.InfoContext(ctx, "Vote-kick poll sent", "target_id", target.ID, "poll_message_id", poll.MessageID)

	if err := w.schedule(s); err != nil {
		w.abort(ctx, s, OutcomeError)
		return s, errs.NewPlatformError("failed to schedule vote-kick check", err)
	}
	return s, nil
}

func (w *Workflow) schedule(s *Session) error {
	return w.deferrer.After("votekick-"+s.ID.String(), w.pollTimeout, func(ctx context.Context) {
		w.check(ctx, s)
	})
}

// check runs on the scheduler. It either reschedules itself or resolves the session.
func (w *Workflow) check(ctx context.Context, s *Session) {
	s.State = StatePolling
	log := w.log.With("session_id", s.ID, "chat_id", s.ChatID, "target", s.TargetName)
	targetName := s.Target.Mention()

	results, err := w.messenger.PollResults(ctx, s.Poll)
	if err != nil {
		log.ErrorContext(ctx, "Failed to read vote-kick poll results", "error", err)
		w.fail(ctx, s, targetName)
		return
	}

	if !results.Closed {
		if w.deadline > 0 && w.now().Sub(s.CreatedAt) >= w.deadline {
			log.WarnContext(ctx, "Vote-kick expired before the poll closed", "deadline", w.deadline)
			w.send(ctx, s.ChatID, fmt.Sprintf(w.msgs.VoteKickExpired, targetName))
			w.abort(ctx, s, OutcomeExpired)
			return
		}
		log.DebugContext(ctx, "Vote-kick poll still open, checking again later")
		if err := w.schedule(s); err != nil {
			log.ErrorContext(ctx, "Failed to reschedule vote-kick check", "error", err)
			w.fail(ctx, s, targetName)
		}
		return
	}

	s.Yes, s.No = tally(results.Counts)
	log = log.With("yes", s.Yes, "no", s.No)

	if s.Yes <= s.No {
		log.InfoContext(ctx, "Vote-kick rejected")
		w.send(ctx, s.ChatID, fmt.Sprintf(w.msgs.VoteKickRetained, targetName, s.Yes, s.No))
		w.resolve(s, StateResolved, OutcomeRetained)
		return
	}

	if err := w.messenger.Ban(ctx, s.ChatID, s.Target.ID); err != nil {
		log.ErrorContext(ctx, "Failed to ban vote-kick target", "target_id", s.Target.ID, "error", err)
		w.fail(ctx, s, targetName)
		return
	}
	log.InfoContext(ctx, "Vote-kick target banned", "target_id", s.Target.ID)
	w.send(ctx, s.ChatID, fmt.Sprintf(w.msgs.VoteKickKicked, targetName, s.Yes, s.No))
	w.resolve(s, StateResolved, OutcomeKicked)
}

func tally(counts []int) (yes, no int) {
	if len(counts) > optionYes {
		yes = counts[optionYes]
	}
	if len(counts) > optionNo {
		no = counts[optionNo]
	}
	return yes, no
}

func (w *Workflow) fail(ctx context.Context, s *Session, targetName string) {
	w.send(ctx, s.ChatID, fmt.Sprintf(w.msgs.VoteKickFailed, targetName))
	w.abort(ctx, s, OutcomeError)
}

func (w *Workflow) send(ctx context.Context, chatID int64, text string) {
	if _, err := w.messenger.SendMessage(ctx, chatID, text, 0); err != nil {
		w.log.ErrorContext(ctx, "Failed to send vote-kick message", "chat_id", chatID, "error", err)
	}
}

func (w *Workflow) abort(ctx context.Context, s *Session, outcome Outcome) {
	w.log.DebugContext(ctx, "Vote-kick aborted", "session_id", s.ID, "outcome", outcome)
	w.resolve(s, StateAborted, outcome)
}

func (w *Workflow) resolve(s *Session, state State, outcome Outcome) {
	s.State = state
	if w.OnResolved != nil {
		w.OnResolved(*s, outcome)
	}
}
