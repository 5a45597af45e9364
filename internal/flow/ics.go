package flow

import (
	"fmt"
	"io"
	"time"

	ical "github.com/emersion/go-ical"
)

const productID = "-//chatrail//PTO//EN"

// WriteICS exports a submitted request as an all-day iCalendar event. DTEND
// is exclusive, so it is the day after the last day off.
func (d *PTODraft) WriteICS(w io.Writer, now time.Time) error {
	if d.Status != Submitted {
		return ErrNotPending
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, d.ID+"@chatrail")
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	event.Props.SetDate(ical.PropDateTimeStart, d.Start)
	event.Props.SetDate(ical.PropDateTimeEnd, d.End.AddDate(0, 0, 1))
	event.Props.SetText(ical.PropSummary, "Time off ("+pluralDays(d.Days)+")")
	event.Props.SetText(ical.PropDescription, fmt.Sprintf("%s. Approver: %s", d.Reason, d.Manager))
	cal.Children = append(cal.Children, event.Component)

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	return nil
}

// Absence is a time-off range read back from a calendar file.
type Absence struct {
	Summary string
	Start   time.Time
	// End is the last day off, inclusive.
	End time.Time
}

// ReadICS parses every VEVENT in r as an absence.
func ReadICS(r io.Reader) ([]Absence, error) {
	dec := ical.NewDecoder(r)
	var out []Absence

	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing calendar: %w", err)
		}

		for _, component := range cal.Children {
			if component.Name != ical.CompEvent {
				continue
			}
			event := ical.Event{Component: component}

			start, err := event.DateTimeStart(time.UTC)
			if err != nil {
				continue
			}
			end, err := event.DateTimeEnd(time.UTC)
			if err != nil {
				continue
			}
			summary, _ := event.Props.Text(ical.PropSummary)
			out = append(out, Absence{Summary: summary, Start: civil(start), End: civil(end).AddDate(0, 0, -1)})
		}
	}
	return out, nil
}
