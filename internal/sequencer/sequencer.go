// Package sequencer owns the transcript and paces the assistant: a thinking
// trace first, the answer after it, and direct resolution of replies to a
// pending "which one?" or yes/no question.
//
// A Sequencer is not safe for concurrent use. Every method, and every task
// handed to its Scheduler, must run on the same event loop.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/christopherklint97/chatrail/internal/flow"
	"github.com/christopherklint97/chatrail/internal/intent"
	"github.com/christopherklint97/chatrail/internal/match"
	"github.com/christopherklint97/chatrail/internal/schedule"
	"github.com/christopherklint97/chatrail/internal/synth"
	"github.com/christopherklint97/chatrail/internal/turn"
)

var (
	ErrNotUndoable = errors.New("sequencer: turn is not undoable")
	ErrNoSelection = errors.New("sequencer: no pending choice at that position")
	ErrNoDraft     = errors.New("sequencer: no time-off request is open")
)

const troubleMessage = "I'm having trouble processing your request right now. Please try again in a moment."

type State int

const (
	Idle State = iota
	AwaitingThinking
	AwaitingAnswer
	AwaitingDisambiguationReply
	AwaitingConfirmationReply
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingThinking:
		return "awaiting_thinking"
	case AwaitingAnswer:
		return "awaiting_answer"
	case AwaitingDisambiguationReply:
		return "awaiting_disambiguation_reply"
	case AwaitingConfirmationReply:
		return "awaiting_confirmation_reply"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Responder produces answers. *synth.Synthesizer is the production
// implementation.
type Responder interface {
	Respond(ctx context.Context, query string) (synth.Answer, error)
	Resolve(c match.Candidate, contextQuery string) (turn.Content, error)
	Plan(query string) turn.Thinking
}

// PTORecorder persists submitted time-off requests.
type PTORecorder interface {
	RecordPTO(ctx context.Context, d *flow.PTODraft) error
}

type Notifier interface {
	Notify(title, message string) error
}

type Timing struct {
	ThinkingDelay     time.Duration
	AnswerBuffer      time.Duration
	ConfirmationDelay time.Duration
	InsuranceDelay    time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		ThinkingDelay:     500 * time.Millisecond,
		AnswerBuffer:      2500 * time.Millisecond,
		ConfirmationDelay: time.Second,
		InsuranceDelay:    500 * time.Millisecond,
	}
}

type Config struct {
	Responder Responder
	Scheduler schedule.Scheduler
	Timing    Timing
	// Manager approves time off when the directory does not name one.
	Manager  string
	Recorder PTORecorder
	Notifier Notifier
	Now      func() time.Time
	NewID    func() string
	Logger   *slog.Logger
}

type confirmation int

const (
	confirmNone confirmation = iota
	confirmCorrection
	confirmPTO
)

type Sequencer struct {
	cfg Config

	turns []turn.Turn
	state State
	tasks schedule.Group

	pending *turn.PendingDisambiguation

	confirm         confirmation
	correction      *match.Candidate
	correctionQuery string

	draft *flow.PTODraft
}

func New(cfg Config) *Sequencer {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		n := 0
		cfg.NewID = func() string {
			n++
			return "turn-" + strconv.Itoa(n)
		}
	}
	return &Sequencer{cfg: cfg}
}

// Turns returns a copy of the transcript.
func (s *Sequencer) Turns() []turn.Turn {
	return append([]turn.Turn(nil), s.turns...)
}

func (s *Sequencer) State() State { return s.state }

// Pending is the live disambiguation, if any.
func (s *Sequencer) Pending() *turn.PendingDisambiguation { return s.pending }

// Draft is the time-off request opened by the latest time-off answer.
func (s *Sequencer) Draft() *flow.PTODraft { return s.draft }

// OnUserTurn records the user's message and schedules the assistant's
// reaction. Blank input is ignored.
func (s *Sequencer) OnUserTurn(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if n := s.tasks.CancelAll(); n > 0 {
		s.cfg.Logger.Debug("canceled superseded tasks", "count", n)
	}
	s.clearUndoable()
	s.appendTurn(turn.User, turn.Text{Body: text})

	if s.pending != nil {
		if k, ok := parseSelection(text, s.pending.Len()); ok {
			s.resolveSelection(k - 1)
			return
		}
	}

	if s.confirm != confirmNone {
		switch {
		case intent.IsAffirmative(text):
			s.confirmYes(ctx)
			return
		case intent.IsNegative(text):
			s.confirmNo()
			return
		}
	}

	s.startQuery(ctx, text)
}

// Select resolves the pending disambiguation by zero-based position, as when
// the user clicks an option.
func (s *Sequencer) Select(idx int) error {
	if s.pending == nil || idx < 0 || idx >= s.pending.Len() {
		return ErrNoSelection
	}
	s.tasks.CancelAll()
	s.resolveSelection(idx)
	return nil
}

// Undo removes the answer with the given id and everything after it, and puts
// the question it answered back as the live disambiguation.
func (s *Sequencer) Undo(id string) error {
	idx := -1
	for i, t := range s.turns {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 || !s.turns[idx].Undoable || s.turns[idx].UndoSnapshot == nil {
		return ErrNotUndoable
	}

	s.tasks.CancelAll()
	snap := *s.turns[idx].UndoSnapshot
	s.turns = s.turns[:idx]
	snap.CreatedAtTurn = s.appendTurn(turn.Assistant, snap.Content())
	s.pending = &snap
	s.clearConfirmation()
	s.settle()
	s.cfg.Logger.Debug("undo", "turn", id, "restored", snap.CreatedAtTurn)
	return nil
}

func (s *Sequencer) startQuery(ctx context.Context, text string) {
	cls := intent.Classify(text)
	s.cfg.Logger.Debug("classified", "chip_annotated", cls.ChipAnnotated, "actionable", cls.Actionable)
	if !cls.Actionable {
		s.settle()
		return
	}

	plan := s.cfg.Responder.Plan(text)
	s.state = AwaitingThinking
	s.after(s.cfg.Timing.ThinkingDelay, func() {
		s.supersede()
		s.appendTurn(turn.Assistant, plan)
		s.state = AwaitingAnswer
		s.after(plan.Total()+s.cfg.Timing.AnswerBuffer, func() {
			s.answer(ctx, text)
		})
	})
}

func (s *Sequencer) answer(ctx context.Context, query string) {
	ans, err := s.respond(ctx, query)
	if err != nil {
		s.cfg.Logger.Error("synthesis failed", "query", query, "error", err)
		s.appendTurn(turn.Assistant, turn.Text{Body: troubleMessage})
		s.settle()
		return
	}

	id := s.appendTurn(turn.Assistant, ans.Content)
	switch {
	case ans.Pending != nil:
		p := *ans.Pending
		p.CreatedAtTurn = id
		s.pending = &p
	case ans.Correction != nil:
		s.confirm = confirmCorrection
		s.correction = ans.Correction
		s.correctionQuery = query
	}
	if pto, ok := ans.Content.(turn.PTORequest); ok {
		manager := pto.Summary.Manager
		if manager == "" {
			manager = s.cfg.Manager
		}
		s.draft = flow.NewPTODraft(s.cfg.NewID(), manager)
		s.draft.Balance = pto.Summary.Remaining
	}
	s.settle()
}

func (s *Sequencer) resolveSelection(idx int) {
	p := *s.pending
	s.pending = nil
	s.clearConfirmation()

	content, err := s.resolve(p.Candidates[idx], p.Query)
	if err != nil {
		s.cfg.Logger.Error("resolving selection failed", "index", idx, "error", err)
		s.appendTurn(turn.Assistant, turn.Text{Body: troubleMessage})
		s.settle()
		return
	}

	s.clearUndoable()
	s.turns = append(s.turns, turn.Turn{
		ID:           s.cfg.NewID(),
		Author:       turn.Assistant,
		Content:      content,
		Created:      s.cfg.Now(),
		Undoable:     true,
		UndoSnapshot: &p,
	})
	s.settle()
}

func (s *Sequencer) confirmYes(ctx context.Context) {
	switch s.confirm {
	case confirmCorrection:
		c, q := *s.correction, s.correctionQuery
		s.clearConfirmation()
		content, err := s.resolve(c, q)
		if err != nil {
			s.cfg.Logger.Error("resolving correction failed", "error", err)
			content = turn.Text{Body: troubleMessage}
		}
		s.appendTurn(turn.Assistant, content)
	case confirmPTO:
		s.clearConfirmation()
		s.submitPTO(ctx)
	}
	s.settle()
}

func (s *Sequencer) confirmNo() {
	msg := "Okay. Could you tell me the full name of the person you're looking for?"
	if s.confirm == confirmPTO {
		msg = "No problem, I haven't submitted anything. Ask again whenever you want to request time off."
		s.draft = nil
	}
	s.clearConfirmation()
	s.appendTurn(turn.Assistant, turn.Text{Body: msg})
	s.settle()
}

// supersede drops any question still waiting for a reply; a new assistant
// turn replaces it.
func (s *Sequencer) supersede() {
	s.pending = nil
	s.clearConfirmation()
}

func (s *Sequencer) clearConfirmation() {
	s.confirm = confirmNone
	s.correction = nil
	s.correctionQuery = ""
}

func (s *Sequencer) clearUndoable() {
	for i := range s.turns {
		s.turns[i].Undoable = false
	}
}

// settle derives the resting state from what is still waiting for a reply.
func (s *Sequencer) settle() {
	switch {
	case s.pending != nil:
		s.state = AwaitingDisambiguationReply
	case s.confirm != confirmNone:
		s.state = AwaitingConfirmationReply
	default:
		s.state = Idle
	}
}

func (s *Sequencer) appendTurn(author turn.Author, c turn.Content) string {
	id := s.cfg.NewID()
	s.turns = append(s.turns, turn.Turn{ID: id, Author: author, Content: c, Created: s.cfg.Now()})
	s.cfg.Logger.Debug("turn appended", "id", id, "author", author, "kind", c.Kind())
	return id
}

func (s *Sequencer) after(d time.Duration, task func()) {
	s.tasks.Add(s.cfg.Scheduler.After(d, task))
	s.cfg.Logger.Debug("scheduled", "delay", d)
}

// respond and resolve convert panics in the answer path into errors.
func (s *Sequencer) respond(ctx context.Context, query string) (ans synth.Answer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while answering: %v", r)
		}
	}()
	ans, err = s.cfg.Responder.Respond(ctx, query)
	if err == nil && ans.Content == nil {
		err = errors.New("empty answer")
	}
	return ans, err
}

func (s *Sequencer) resolve(c match.Candidate, query string) (content turn.Content, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while resolving: %v", r)
		}
	}()
	return s.cfg.Responder.Resolve(c, query)
}

// parseSelection accepts a bare positive integer within 1..n.
func parseSelection(text string, n int) (int, bool) {
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	k, err := strconv.Atoi(text)
	if err != nil || k < 1 || k > n {
		return 0, false
	}
	return k, true
}
