// Package render turns transcript entries into terminal text: chips become
// styled inline badges, **bold** spans are emphasized and structured content
// gets its own layout.
package render

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/christopherklint97/chatrail/internal/chip"
	"github.com/christopherklint97/chatrail/internal/turn"
)

// FaultMessage is shown in place of an entry that could not be rendered.
const FaultMessage = "Something went wrong displaying this message."

type Renderer struct {
	// Width wraps plain text when positive.
	Width  int
	now    func() time.Time
	logger *slog.Logger
}

func New(width int, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Renderer{Width: width, now: time.Now, logger: logger}
}

// WithClock replaces the clock used to pace thinking traces.
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	r.now = now
	return r
}

// Turn renders one transcript entry. A panic while rendering is contained to
// the entry and replaced by a fault block.
func (r *Renderer) Turn(t turn.Turn) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("rendering turn failed", "turn", t.ID, "panic", rec)
			out = Fault()
		}
	}()
	elapsed := time.Duration(math.MaxInt64)
	if !t.Created.IsZero() {
		elapsed = r.now().Sub(t.Created)
	}
	return r.content(t.Content, elapsed)
}

// Raw renders stored content, which is either an encoded envelope or plain
// text.
func (r *Renderer) Raw(raw string) string {
	return r.Turn(turn.Turn{Content: turn.DecodeOrText(raw)})
}

// Fault is the block that replaces an entry whose rendering failed.
func Fault() string {
	return faultStyle.Render(faultTitleStyle.Render(FaultMessage) + "\n" + dimStyle.Render("Press ctrl+r to retry."))
}

func (r *Renderer) content(c turn.Content, elapsed time.Duration) string {
	switch c := c.(type) {
	case turn.Text:
		return r.wrap(Inline(c.Body))
	case turn.Thinking:
		return thinking(c, elapsed)
	case turn.Disambiguation:
		return r.disambiguation(c)
	case turn.PTORequest:
		return r.wrap(Inline(c.PlainText()))
	case turn.InsuranceSelection:
		return r.insurance(c)
	case turn.RecordCard:
		return recordCard(c)
	default:
		panic(fmt.Sprintf("no layout for content %T", c))
	}
}

func (r *Renderer) wrap(s string) string {
	if r.Width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(r.Width).Render(s)
}

var optionLine = regexp.MustCompile(`^\*\*(\d+)\. (.+)\*\*$`)

// Inline styles chips, bold spans and numbered option lines in text.
// Unknown chip types render with a generic icon; an unmatched ** is left as
// written.
func Inline(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if m := optionLine.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			lines[i] = optionStyle.Render(m[1] + ". " + chip.Strip(m[2]))
			continue
		}
		lines[i] = inlineLine(line)
	}
	return strings.Join(lines, "\n")
}

func inlineLine(line string) string {
	segs := chip.Parse(line)

	markers := 0
	for _, s := range segs {
		if s.Ref == nil {
			markers += strings.Count(s.Text, "**")
		}
	}
	usable := markers - markers%2

	var b strings.Builder
	bold, seen := false, 0
	for _, s := range segs {
		if s.Ref != nil {
			b.WriteString(Chip(*s.Ref))
			continue
		}
		parts := strings.Split(s.Text, "**")
		for j, p := range parts {
			if j > 0 {
				if seen < usable {
					bold = !bold
				} else {
					b.WriteString("**")
				}
				seen++
			}
			if p == "" {
				continue
			}
			if bold {
				b.WriteString(boldStyle.Render(p))
			} else {
				b.WriteString(p)
			}
		}
	}
	return b.String()
}

// Chip renders a reference as an icon badge.
func Chip(ref chip.Ref) string {
	return chipStyle(ref.Type).Render(ref.Type.Icon() + " " + ref.Name)
}

func thinking(t turn.Thinking, elapsed time.Duration) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("Thinking"))
	var at time.Duration
	for _, s := range t.Steps {
		if elapsed < at {
			break
		}
		at += s.Duration()
		b.WriteString("\n")
		if elapsed >= at {
			b.WriteString(doneStyle.Render("✓ ") + s.Label + dimStyle.Render(fmt.Sprintf(" (%s)", s.Category)))
		} else {
			b.WriteString(dimStyle.Render("… " + s.Label))
		}
	}
	return b.String()
}

func (r *Renderer) disambiguation(d turn.Disambiguation) string {
	var b strings.Builder
	b.WriteString(r.wrap(Inline(d.Prompt)))
	b.WriteString("\n")
	for i, c := range d.Candidates {
		fmt.Fprintf(&b, "\n%s\n   %s", optionStyle.Render(fmt.Sprintf("%d. %s", i+1, c.Employee.Name)), dimStyle.Render(turn.OptionDetail(c.Employee)))
	}
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Reply with the number (1-%d) to select.", len(d.Candidates))))
	return b.String()
}

func (r *Renderer) insurance(s turn.InsuranceSelection) string {
	var b strings.Builder
	b.WriteString(r.wrap(Inline(s.Prompt)))
	b.WriteString("\n")
	for i, o := range s.Options {
		fmt.Fprintf(&b, "\n%s\n   %s", optionStyle.Render(fmt.Sprintf("%d. %s", i+1, o.Type)), dimStyle.Render(o.Plan+" · "+o.Premium))
	}
	return b.String()
}

func recordCard(c turn.RecordCard) string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render(fmt.Sprintf("Paycheck %s - %s", c.PeriodStart, c.PeriodEnd)))
	b.WriteString("\n")
	for _, f := range c.Fields() {
		fmt.Fprintf(&b, "\n%s %s", boldStyle.Render(fmt.Sprintf("%-11s", f.Label)), money(f.Cents))
	}
	if len(c.Breakdown) > 0 {
		b.WriteString("\n")
		for _, l := range c.Breakdown {
			fmt.Fprintf(&b, "\n%s %s", dimStyle.Render(fmt.Sprintf("%-14s", l.Label)), money(l.Cents))
		}
	}
	header := Inline(fmt.Sprintf("Here's %s's latest paycheck:", chip.Format(c.Employee, chip.Employee)))
	return header + "\n" + cardStyle.Render(b.String())
}

func money(cents int64) string {
	if cents < 0 {
		return negativeStyle.Render(turn.Money(cents))
	}
	return turn.Money(cents)
}
