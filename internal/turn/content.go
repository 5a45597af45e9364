package turn

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/christopherklint97/chatrail/internal/chip"
	"github.com/christopherklint97/chatrail/internal/directory"
	"github.com/christopherklint97/chatrail/internal/flow"
	"github.com/christopherklint97/chatrail/internal/match"
)

type Kind string

const (
	KindText               Kind = "text"
	KindThinking           Kind = "thinking"
	KindDisambiguation     Kind = "disambiguation"
	KindPTORequest         Kind = "pto_request"
	KindInsuranceSelection Kind = "insurance_selection"
	KindRecordCard         Kind = "record_card"
)

// Content is the body of a turn. The set of variants is closed.
type Content interface {
	Kind() Kind
	// PlainText is a chip-annotated, markdown-ish rendering used for logs,
	// headless output and as the fallback when structured rendering fails.
	PlainText() string
	isContent()
}

type Text struct {
	Body string `json:"body"`
}

func (Text) Kind() Kind          { return KindText }
func (t Text) PlainText() string { return t.Body }
func (Text) isContent()          {}

type StepCategory string

const (
	StepParsing      StepCategory = "parsing"
	StepLookup       StepCategory = "lookup"
	StepRetrieval    StepCategory = "retrieval"
	StepCalculation  StepCategory = "calculation"
	StepVerification StepCategory = "verification"
	StepAnalysis     StepCategory = "analysis"
	StepPreparation  StepCategory = "preparation"
)

type Step struct {
	Label      string       `json:"label"`
	Category   StepCategory `json:"category"`
	DurationMs int64        `json:"duration_ms"`
}

func (s Step) Duration() time.Duration {
	return time.Duration(s.DurationMs) * time.Millisecond
}

// Thinking is the paced trace shown before an answer. Durations are display
// pacing only.
type Thinking struct {
	Query string `json:"query"`
	Steps []Step `json:"steps"`
}

func (Thinking) Kind() Kind { return KindThinking }
func (Thinking) isContent() {}

func (t Thinking) PlainText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thinking (%d steps)", len(t.Steps))
	for i, s := range t.Steps {
		fmt.Fprintf(&b, "\n  %d. [%s] %s", i+1, s.Category, s.Label)
	}
	return b.String()
}

// Total is the sum of planned step durations.
func (t Thinking) Total() time.Duration {
	var d time.Duration
	for _, s := range t.Steps {
		d += s.Duration()
	}
	return d
}

type Disambiguation struct {
	Prompt     string            `json:"prompt"`
	Candidates []match.Candidate `json:"candidates"`
}

func (Disambiguation) Kind() Kind { return KindDisambiguation }
func (Disambiguation) isContent() {}

func (d Disambiguation) PlainText() string {
	var b strings.Builder
	b.WriteString(d.Prompt)
	b.WriteString("\n")
	for i, c := range d.Candidates {
		fmt.Fprintf(&b, "\n**%d. %s**\n   %s", i+1, c.Employee.Name, OptionDetail(c.Employee))
	}
	fmt.Fprintf(&b, "\n\nReply with the number (1-%d) to select.", len(d.Candidates))
	return b.String()
}

// OptionDetail is the second line under a disambiguation option.
func OptionDetail(e directory.Employee) string {
	return fmt.Sprintf("%s in %s", e.Role, e.Department)
}

// PTORequest opens the time-off form, seeded with the current balance.
type PTORequest struct {
	Prompt  string               `json:"prompt"`
	Summary directory.PTOSummary `json:"summary"`
}

func (PTORequest) Kind() Kind { return KindPTORequest }
func (PTORequest) isContent() {}

func (p PTORequest) PlainText() string {
	s := p.Summary
	return fmt.Sprintf("%s\n\n• **Used in %d**: %d days\n• **Remaining**: %s\n• **Policy**: %s\n• **Approval**: %s (%s)",
		p.Prompt, s.Year, s.Used, s.Remaining, s.Policy, s.ApprovalRequired, s.Manager)
}

type InsuranceSelection struct {
	Prompt  string                 `json:"prompt"`
	Options []flow.InsuranceOption `json:"options"`
}

func (InsuranceSelection) Kind() Kind { return KindInsuranceSelection }
func (InsuranceSelection) isContent() {}

func (s InsuranceSelection) PlainText() string {
	var b strings.Builder
	b.WriteString(s.Prompt)
	b.WriteString("\n")
	for i, o := range s.Options {
		fmt.Fprintf(&b, "\n**%d. %s**\n   %s", i+1, o.Type, o.Plan)
	}
	return b.String()
}

// Line is one signed row of a pay statement, in cents. Withholdings are
// negative.
type Line struct {
	Label string `json:"label"`
	Cents int64  `json:"cents"`
}

// RecordCard is a pay statement.
type RecordCard struct {
	Employee    string `json:"employee"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	GrossPay    int64  `json:"gross_pay"`
	Taxes       int64  `json:"taxes"`
	Deductions  int64  `json:"deductions"`
	NetPay      int64  `json:"net_pay"`
	Breakdown   []Line `json:"breakdown"`
}

func (RecordCard) Kind() Kind { return KindRecordCard }
func (RecordCard) isContent() {}

// Fields lists the headline amounts in display order.
func (r RecordCard) Fields() []Line {
	return []Line{
		{Label: "Gross pay", Cents: r.GrossPay},
		{Label: "Taxes", Cents: r.Taxes},
		{Label: "Deductions", Cents: r.Deductions},
		{Label: "Net pay", Cents: r.NetPay},
	}
}

func (r RecordCard) PlainText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here's %s's latest paycheck:\n\n", chip.Format(r.Employee, chip.Employee))
	fmt.Fprintf(&b, "Paycheck %s - %s\n", r.PeriodStart, r.PeriodEnd)
	for _, f := range r.Fields() {
		fmt.Fprintf(&b, "• **%s**: %s\n", f.Label, Money(f.Cents))
	}
	b.WriteString("\n")
	for _, l := range r.Breakdown {
		fmt.Fprintf(&b, "  %-14s %s\n", l.Label, Money(l.Cents))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Money formats cents as dollars with thousands separators: "$5,769.23",
// "- $865.38".
func Money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "- "
		cents = -cents
	}
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(cents/100), cents%100)
}
