package sequencer

import (
	"context"
	"fmt"
	"strings"

	"github.com/christopherklint97/chatrail/internal/flow"
	"github.com/christopherklint97/chatrail/internal/turn"
)

// SetPTODates fills in the open time-off request. Either value may be empty
// to leave that date unchanged. Once both dates are known the confirmation
// question is asked after the configured delay, and only once per request.
func (s *Sequencer) SetPTODates(start, end string) error {
	if s.draft == nil {
		return ErrNoDraft
	}
	s.clearUndoable()
	now := s.cfg.Now()

	if strings.TrimSpace(start) != "" {
		t, err := flow.ParseDate(start, now)
		if err != nil {
			return err
		}
		if err := s.draft.SetStart(t); err != nil {
			return err
		}
	}
	if strings.TrimSpace(end) != "" {
		t, err := flow.ParseDate(end, now)
		if err != nil {
			return err
		}
		if err := s.draft.SetEnd(t); err != nil {
			return err
		}
	}
	if !s.draft.HasDates() {
		return nil
	}
	if _, err := flow.InclusiveDays(s.draft.Start, s.draft.End); err != nil {
		return err
	}
	if s.draft.Status != flow.Collecting {
		return nil
	}

	draft := s.draft
	s.after(s.cfg.Timing.ConfirmationDelay, func() {
		if s.draft != draft {
			return
		}
		asked, err := draft.RequestConfirmation()
		if err != nil || !asked {
			return
		}
		s.supersede()
		s.appendTurn(turn.Assistant, turn.Text{Body: draft.ConfirmationPrompt()})
		s.confirm = confirmPTO
		s.settle()
	})
	return nil
}

func (s *Sequencer) submitPTO(ctx context.Context) {
	d := s.draft
	if d == nil {
		return
	}
	if err := d.Submit(); err != nil {
		s.cfg.Logger.Error("submitting time off failed", "error", err)
		s.appendTurn(turn.Assistant, turn.Text{Body: troubleMessage})
		return
	}

	if s.cfg.Recorder != nil {
		if err := s.cfg.Recorder.RecordPTO(ctx, d); err != nil {
			s.cfg.Logger.Error("recording time off failed", "request", d.ID, "error", err)
		}
	}
	if s.cfg.Notifier != nil {
		msg := fmt.Sprintf("%d day(s) from %s sent to %s", d.Days, d.Start.Format(flow.DateLayout), d.Manager)
		if err := s.cfg.Notifier.Notify("Time off requested", msg); err != nil {
			s.cfg.Logger.Warn("notification failed", "error", err)
		}
	}
	s.appendTurn(turn.Assistant, turn.Text{Body: d.Acknowledgment()})
	s.cfg.Logger.Info("time off submitted", "request", d.ID, "days", d.Days)
}

// SelectInsurance answers a coverage pick with that plan's details after a
// short delay.
func (s *Sequencer) SelectInsurance(kind string) error {
	opt, ok := flow.InsuranceOptionByType(kind)
	if !ok {
		return fmt.Errorf("unknown coverage type %q", kind)
	}
	s.tasks.CancelAll()
	s.clearUndoable()
	s.after(s.cfg.Timing.InsuranceDelay, func() {
		s.supersede()
		s.appendTurn(turn.Assistant, turn.Text{Body: opt.DetailsMessage()})
		s.settle()
	})
	return nil
}
