// Package synth turns a classified query into the assistant's answer: help
// text, a detail or pay statement, a typo correction, a "which one?" question
// or one of the structured flows.
package synth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/christopherklint97/chatrail/internal/chip"
	"github.com/christopherklint97/chatrail/internal/directory"
	"github.com/christopherklint97/chatrail/internal/flow"
	"github.com/christopherklint97/chatrail/internal/intent"
	"github.com/christopherklint97/chatrail/internal/match"
	"github.com/christopherklint97/chatrail/internal/turn"
)

type Options struct {
	Org          string
	StepDuration time.Duration
}

type Synthesizer struct {
	dir     directory.Service
	matcher *match.Matcher
	opts    Options
	logger  *slog.Logger
}

func New(dir directory.Service, opts Options, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Org == "" {
		opts.Org = "your company"
	}
	if opts.StepDuration <= 0 {
		opts.StepDuration = 800 * time.Millisecond
	}
	return &Synthesizer{
		dir:     dir,
		matcher: match.New(dir, logger),
		opts:    opts,
		logger:  logger,
	}
}

// Answer is a synthesized response plus whatever reply it waits for.
type Answer struct {
	Content turn.Content
	// Pending is set when Content asks the user to pick a candidate.
	Pending *turn.PendingDisambiguation
	// Correction is set when Content asks the user to confirm a fuzzy match.
	Correction *match.Candidate
}

// Respond answers query. Structured flows are checked before any entity
// matching.
func (s *Synthesizer) Respond(ctx context.Context, query string) (Answer, error) {
	lower := strings.ToLower(query)

	if intent.MentionsPTO(query) {
		summary, err := s.dir.CurrentUserPTOSummary(ctx)
		if err != nil {
			return Answer{}, fmt.Errorf("loading time-off summary: %w", err)
		}
		return Answer{Content: turn.PTORequest{
			Prompt:  "I can help you request time off. Pick your start and end dates and I'll prepare the request.",
			Summary: summary,
		}}, nil
	}

	if intent.MentionsInsurance(query) {
		return Answer{Content: turn.InsuranceSelection{
			Prompt:  "Which coverage would you like to see?",
			Options: flow.InsuranceOptions(),
		}}, nil
	}

	if c, ok, err := s.departmentSummary(ctx, lower); err != nil || ok {
		return Answer{Content: c}, err
	}
	if c, ok, err := s.payRunSummary(ctx, query); err != nil || ok {
		return Answer{Content: c}, err
	}

	res, err := s.matcher.Match(ctx, query)
	if err != nil {
		return Answer{}, fmt.Errorf("matching %q: %w", query, err)
	}

	switch {
	case len(res.Candidates) == 1:
		c, err := s.Resolve(res.Candidates[0], query)
		return Answer{Content: c}, err

	case len(res.Candidates) > 1:
		pending := &turn.PendingDisambiguation{
			Candidates: res.Candidates,
			Prompt:     s.disambiguationPrompt(res.Candidates),
			Query:      query,
		}
		return Answer{Content: pending.Content(), Pending: pending}, nil

	case res.Fuzzy != nil:
		fz := *res.Fuzzy
		return Answer{
			Content: turn.Text{Body: fmt.Sprintf(
				"I couldn't find anyone named \"%s\". Did you mean %s?\n\nReply **yes** to see their details.",
				fz.Token, chip.Format(fz.Employee.Name, chip.Employee))},
			Correction: &fz,
		}, nil

	default:
		body, err := s.help(ctx, lower)
		return Answer{Content: turn.Text{Body: body}}, err
	}
}

// Resolve builds the detail turn for one employee. contextQuery is the user
// text the answer responds to; a mention of "paycheck" there selects the pay
// statement.
func (s *Synthesizer) Resolve(c match.Candidate, contextQuery string) (turn.Content, error) {
	e := c.Employee
	if e.Name == "" {
		return nil, fmt.Errorf("candidate %d has no name", e.ID)
	}
	if strings.Contains(strings.ToLower(contextQuery), "paycheck") {
		card, err := Paycheck(e)
		if err != nil {
			return nil, err
		}
		return card, nil
	}
	return turn.Text{Body: fmt.Sprintf("%s information:\n\n"+
		"• **Department**: %s\n"+
		"• **Role**: %s\n"+
		"• **Salary**: $%s\n"+
		"• **Latest Paycheck**: %s\n"+
		"• **Manager**: %s\n\n"+
		"Would you like more details or information about someone else?",
		chip.Format(e.Name, chip.Employee), e.Department, e.Role, humanize.Comma(e.Salary), e.LastPaycheck, e.Manager)}, nil
}

func (s *Synthesizer) disambiguationPrompt(cands []match.Candidate) string {
	first := cands[0]
	if first.Tier == match.DepartmentMatch {
		return fmt.Sprintf("There are %d people in %s at %s, which one are you referring to?",
			len(cands), first.Employee.Department, s.opts.Org)
	}
	label := first.Employee.FirstName()
	for _, c := range cands[1:] {
		if !strings.EqualFold(c.Employee.FirstName(), label) {
			label = cases.Title(language.English).String(first.Token)
			break
		}
	}
	return fmt.Sprintf("There are multiple %s at %s, which one are you referring to?", label, s.opts.Org)
}

func (s *Synthesizer) help(ctx context.Context, lower string) (string, error) {
	switch {
	case strings.Contains(lower, "department") || strings.Contains(lower, "team"):
		return "I can help you with information about departments. Try asking about:\n\n" +
			"• Engineering department\n• Marketing team\n• Sales department\n• HR department\n• Finance department\n\n" +
			"Or ask about specific employees!", nil
	case strings.Contains(lower, "manager") || strings.Contains(lower, "who"):
		return "I can help you find information about managers. Try asking:\n\n" +
			"• Who manages Engineering?\n• Who is the manager of Marketing?\n• Tell me about Sarah Johnson (Engineering Manager)\n\n" +
			"I have information about all department managers!", nil
	}

	emps, err := s.dir.ListEmployees(ctx)
	if err != nil {
		return "", fmt.Errorf("listing employees: %w", err)
	}
	depts, err := s.dir.ListDepartments(ctx)
	if err != nil {
		return "", fmt.Errorf("listing departments: %w", err)
	}
	return fmt.Sprintf("I couldn't find any matching information. Try asking about:\n\n"+
		"• Specific employees (e.g., 'What's Max's latest paycheck?')\n"+
		"• Departments (e.g., 'Who manages Engineering?')\n"+
		"• Payroll information (e.g., 'What's the latest payroll total?')\n\n"+
		"I have data for %d employees across %d departments!", len(emps), len(depts)), nil
}

var aggregateWords = []string{"headcount", "budget", "how many", "size"}

func (s *Synthesizer) departmentSummary(ctx context.Context, lower string) (turn.Content, bool, error) {
	name := match.MentionedDepartment(lower)
	if name == "" || !containsAny(lower, aggregateWords) {
		return nil, false, nil
	}
	depts, err := s.dir.ListDepartments(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("listing departments: %w", err)
	}
	for _, d := range depts {
		if !strings.EqualFold(d.Name, name) {
			continue
		}
		monthly := int64(0)
		if d.Headcount > 0 {
			monthly = d.Budget / int64(d.Headcount) / 12
		}
		return turn.Text{Body: fmt.Sprintf("%s information:\n\n"+
			"• **Headcount**: %d employees\n"+
			"• **Annual Budget**: $%s\n"+
			"• **Average Salary**: $%s/month\n\n"+
			"Would you like details about specific team members?",
			chip.Format(d.Name, chip.Department), d.Headcount, humanize.Comma(d.Budget), humanize.Comma(monthly))}, true, nil
	}
	return nil, false, nil
}

var payRunWords = []string{"payroll", "pay run", "payrun"}

// payRunSummary answers questions about a pay run: the one whose period is
// named, or the most recently processed one when no person is mentioned.
func (s *Synthesizer) payRunSummary(ctx context.Context, query string) (turn.Content, bool, error) {
	lower := strings.ToLower(query)
	if !containsAny(lower, payRunWords) {
		return nil, false, nil
	}
	runs, err := s.dir.ListPayRuns(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("listing pay runs: %w", err)
	}

	var picked *directory.PayRun
	for i := range runs {
		if strings.Contains(lower, strings.ToLower(runs[i].Period)) {
			picked = &runs[i]
			break
		}
	}
	if picked == nil && len(match.Tokenize(query)) == 0 {
		for i := range runs {
			if picked == nil || runs[i].ProcessedDate > picked.ProcessedDate {
				picked = &runs[i]
			}
		}
	}
	if picked == nil {
		return nil, false, nil
	}

	avg := int64(0)
	if picked.EmployeeCount > 0 {
		avg = picked.TotalAmount / int64(picked.EmployeeCount)
	}
	return turn.Text{Body: fmt.Sprintf("%s summary:\n\n"+
		"• **Total Payroll**: $%s\n"+
		"• **Employee Count**: %d\n"+
		"• **Average Pay**: $%s\n"+
		"• **Processed Date**: %s\n\n"+
		"Need information about a different payroll period?",
		chip.Format("Payroll - "+picked.Period, chip.PayRun), humanize.Comma(picked.TotalAmount),
		picked.EmployeeCount, humanize.Comma(avg), picked.ProcessedDate)}, true, nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
