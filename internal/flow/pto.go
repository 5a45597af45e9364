// Package flow holds the structured sub-dialogues the assistant can open:
// the time-off request form and the insurance coverage picker.
package flow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tj/go-naturaldate"
)

var (
	ErrAlreadySubmitted = errors.New("flow: request already submitted")
	ErrInvalidRange     = errors.New("flow: end date is before start date")
	ErrNotPending       = errors.New("flow: request is not awaiting confirmation")
)

const DateLayout = "2006-01-02"

type Status int

const (
	Collecting Status = iota
	PendingManagerConfirmation
	Submitted
)

func (s Status) String() string {
	switch s {
	case Collecting:
		return "collecting"
	case PendingManagerConfirmation:
		return "pending_manager_confirmation"
	case Submitted:
		return "submitted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// PTODraft is a time-off request being filled in. Status only moves forward.
type PTODraft struct {
	ID      string
	Start   time.Time
	End     time.Time
	Days    int
	Status  Status
	Manager string
	Reason  string
	// Balance is the time-off balance before this request: a number of days
	// or "Unlimited". Empty when unknown.
	Balance string

	confirmationRequested bool
}

func NewPTODraft(id, manager string) *PTODraft {
	return &PTODraft{ID: id, Manager: manager, Reason: "Personal time off"}
}

func (d *PTODraft) SetStart(t time.Time) error {
	if d.Status == Submitted {
		return ErrAlreadySubmitted
	}
	d.Start = civil(t)
	d.recount()
	return nil
}

func (d *PTODraft) SetEnd(t time.Time) error {
	if d.Status == Submitted {
		return ErrAlreadySubmitted
	}
	d.End = civil(t)
	d.recount()
	return nil
}

func (d *PTODraft) HasDates() bool {
	return !d.Start.IsZero() && !d.End.IsZero()
}

func (d *PTODraft) recount() {
	if !d.HasDates() {
		d.Days = 0
		return
	}
	days, err := InclusiveDays(d.Start, d.End)
	if err != nil {
		d.Days = 0
		return
	}
	d.Days = days
}

// RequestConfirmation moves a draft with both dates to
// PendingManagerConfirmation. It reports true only the first time; later
// date edits never ask again.
func (d *PTODraft) RequestConfirmation() (bool, error) {
	if d.confirmationRequested || d.Status != Collecting || !d.HasDates() {
		return false, nil
	}
	if _, err := InclusiveDays(d.Start, d.End); err != nil {
		return false, err
	}
	d.confirmationRequested = true
	d.Status = PendingManagerConfirmation
	return true, nil
}

func (d *PTODraft) Submit() error {
	switch d.Status {
	case Submitted:
		return ErrAlreadySubmitted
	case PendingManagerConfirmation:
		d.Status = Submitted
		return nil
	default:
		return ErrNotPending
	}
}

func (d *PTODraft) ConfirmationPrompt() string {
	var balance string
	switch left := d.Remaining(d.Balance); {
	case d.Balance == "":
	case left == d.Balance:
		balance = fmt.Sprintf(" Your balance stays **%s**.", left)
	default:
		balance = fmt.Sprintf(" That leaves **%s** days in your balance.", left)
	}
	return fmt.Sprintf("You're requesting **%s** off, from %s to %s.%s I'll send this to your manager **%s** for approval.\n\nReply **yes** to submit.",
		pluralDays(d.Days), d.Start.Format(DateLayout), d.End.Format(DateLayout), balance, d.Manager)
}

func (d *PTODraft) Acknowledgment() string {
	return fmt.Sprintf("Done! Your request for **%s** off (%s to %s) was sent to **%s**. You'll be notified once it's approved.",
		pluralDays(d.Days), d.Start.Format(DateLayout), d.End.Format(DateLayout), d.Manager)
}

// Remaining is the balance left after this request, given a balance that is
// either a number of days or "Unlimited".
func (d *PTODraft) Remaining(balance string) string {
	var n int
	if _, err := fmt.Sscanf(balance, "%d", &n); err != nil {
		return balance
	}
	return fmt.Sprintf("%d", n-d.Days)
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// InclusiveDays counts calendar days from start to end, both included.
// Weekends and holidays are not excluded.
func InclusiveDays(start, end time.Time) (int, error) {
	s, e := civil(start), civil(end)
	if e.Before(s) {
		return 0, ErrInvalidRange
	}
	return int(e.Sub(s).Hours()/24) + 1, nil
}

// ParseDate accepts an ISO date or a natural phrase such as "next friday",
// resolved forward from ref.
func ParseDate(s string, ref time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := naturaldate.Parse(s, ref, naturaldate.WithDirection(naturaldate.Future))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	// Phrases with no date in them come back as ref.
	if t.Equal(ref) && !todayWords[strings.ToLower(s)] {
		return time.Time{}, fmt.Errorf("no date found in %q", s)
	}
	return civil(t), nil
}

var todayWords = map[string]bool{"today": true, "now": true}

// civil drops the clock and zone so day arithmetic never crosses a DST edge.
func civil(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
