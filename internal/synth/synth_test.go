package synth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherklint97/chatrail/internal/directory"
	"github.com/christopherklint97/chatrail/internal/match"
	"github.com/christopherklint97/chatrail/internal/turn"
)

func testDirectory() *directory.Memory {
	return directory.NewMemory(&directory.Dataset{
		Employees: []directory.Employee{
			{ID: 1, Name: "Max Thompson", Department: "Engineering", Role: "Senior Engineer", Salary: 120000, LastPaycheck: "2024-01-15", Manager: "Sarah Johnson"},
			{ID: 2, Name: "Max Rodriguez", Department: "Marketing", Role: "Marketing Manager", Salary: 95000, LastPaycheck: "2024-01-15", Manager: "Jennifer Davis"},
			{ID: 3, Name: "Maxwell Chen", Department: "Sales", Role: "Sales Director", Salary: 135000, LastPaycheck: "2024-01-10", Manager: "Michael Roberts"},
			{ID: 4, Name: "Max Patel", Department: "Engineering", Role: "DevOps Engineer", Salary: 110000, LastPaycheck: "2024-01-15", Manager: "David Kim"},
			{ID: 5, Name: "Sarah Johnson", Department: "Engineering", Role: "Engineering Manager", Salary: 140000, LastPaycheck: "2024-01-15", Manager: "CEO"},
		},
		Departments: []directory.Department{
			{ID: 1, Name: "Engineering", Headcount: 45, Budget: 3200000},
			{ID: 2, Name: "Marketing", Headcount: 23, Budget: 1800000},
		},
		PayRuns: []directory.PayRun{
			{ID: 1, Period: "January 2024", TotalAmount: 1250000, EmployeeCount: 146, ProcessedDate: "2024-01-15"},
			{ID: 2, Period: "December 2023", TotalAmount: 1180000, EmployeeCount: 142, ProcessedDate: "2024-01-01"},
		},
		PTO: directory.PTOSummary{Year: 2026, Used: 6, Remaining: "Unlimited", Policy: "Flexible PTO", ApprovalRequired: "Manager approval", Manager: "Sarah Johnson"},
	})
}

func withEmployees(extra ...directory.Employee) *directory.Memory {
	ds := &directory.Dataset{}
	base := testDirectory()
	emps, _ := base.ListEmployees(context.Background())
	ds.Employees = append(emps, extra...)
	return directory.NewMemory(ds)
}

func newSynth(dir directory.Service) *Synthesizer {
	return New(dir, Options{Org: "Acme", StepDuration: 800 * time.Millisecond}, nil)
}

func TestPaycheckQueryReturnsRecordCard(t *testing.T) {
	dir := withEmployees(directory.Employee{ID: 11, Name: "Max Wesel", Department: "Finance", Role: "Payroll Specialist", Salary: 150000, LastPaycheck: "2025-08-15", Manager: "Alex Turner"})
	s := newSynth(dir)

	ans, err := s.Respond(context.Background(), "What's Max Wesel's latest paycheck?")
	require.NoError(t, err)
	card, ok := ans.Content.(turn.RecordCard)
	require.True(t, ok, "got %T", ans.Content)

	assert.Equal(t, int64(576923), card.GrossPay)
	assert.Equal(t, "08/01/2025", card.PeriodStart)
	assert.Equal(t, "08/15/2025", card.PeriodEnd)
	assert.Nil(t, ans.Pending)
}

func TestPaycheckArithmetic(t *testing.T) {
	card, err := Paycheck(directory.Employee{Name: "Max Wesel", Salary: 150000, LastPaycheck: "2025-08-15"})
	require.NoError(t, err)

	assert.Equal(t, int64(576923), card.GrossPay)
	assert.Equal(t, int64(86538+34615), card.Taxes)
	assert.Equal(t, int64(25000+34615), card.Deductions)
	assert.Equal(t, card.GrossPay-card.Taxes-card.Deductions, card.NetPay)

	var sum int64
	for _, l := range card.Breakdown {
		sum += l.Cents
	}
	assert.Equal(t, card.NetPay, sum, "breakdown adds up to net pay")

	_, err = Paycheck(directory.Employee{Name: "Nobody", LastPaycheck: "soon"})
	assert.Error(t, err)
}

func TestAmbiguousNameAsksWhichOne(t *testing.T) {
	s := newSynth(testDirectory())

	ans, err := s.Respond(context.Background(), "Tell me about Max")
	require.NoError(t, err)
	d, ok := ans.Content.(turn.Disambiguation)
	require.True(t, ok, "got %T", ans.Content)
	assert.Len(t, d.Candidates, 4)
	assert.Equal(t, "There are multiple Max at Acme, which one are you referring to?", d.Prompt)

	require.NotNil(t, ans.Pending)
	assert.Equal(t, 4, ans.Pending.Len())
	assert.Equal(t, "Tell me about Max", ans.Pending.Query)
}

func TestSharedFirstNameTitlesPrompt(t *testing.T) {
	s := newSynth(withEmployees(directory.Employee{ID: 13, Name: "Dana Patel", Department: "Finance"}))

	ans, err := s.Respond(context.Background(), "What is Patel's role?")
	require.NoError(t, err)
	d, ok := ans.Content.(turn.Disambiguation)
	require.True(t, ok, "got %T", ans.Content)
	assert.Len(t, d.Candidates, 2)
	assert.Equal(t, "There are multiple Patel at Acme, which one are you referring to?", d.Prompt,
		"different first names fall back to the typed token")

	s = newSynth(withEmployees(directory.Employee{ID: 14, Name: "Sarah Jones", Department: "Sales"}))
	ans, err = s.Respond(context.Background(), "What is sar's role?")
	require.NoError(t, err)
	d, ok = ans.Content.(turn.Disambiguation)
	require.True(t, ok, "got %T", ans.Content)
	assert.Equal(t, "There are multiple Sarah at Acme, which one are you referring to?", d.Prompt)
}

func TestInnerNameFragmentResolvesDirectly(t *testing.T) {
	s := newSynth(testDirectory())

	for query, want := range map[string]string{
		"What's ohnson's salary?": "Sarah Johnson",
		"What's mpson's salary?":  "Max Thompson",
	} {
		ans, err := s.Respond(context.Background(), query)
		require.NoError(t, err, query)
		text, ok := ans.Content.(turn.Text)
		require.True(t, ok, "%s: got %T", query, ans.Content)
		assert.Contains(t, text.Body, "{{"+want+":employee}} information", query)
		assert.Nil(t, ans.Correction, query)
		assert.Nil(t, ans.Pending, query)
	}
}

func TestTopicWordsInsideOtherWords(t *testing.T) {
	s := newSynth(testDirectory())

	ans, err := s.Respond(context.Background(), "Who has Max Patel's laptop?")
	require.NoError(t, err)
	assert.NotEqual(t, turn.KindPTORequest, ans.Content.Kind())
	assert.Contains(t, ans.Content.PlainText(), "Max Patel")

	ans, err = s.Respond(context.Background(), "Who leads the Engineering division?")
	require.NoError(t, err)
	assert.NotEqual(t, turn.KindInsuranceSelection, ans.Content.Kind())
}

func TestTypoGetsCorrectionPrompt(t *testing.T) {
	s := newSynth(withEmployees(directory.Employee{ID: 12, Name: "Max Levchin", Department: "Engineering", Role: "Staff Engineer", Salary: 190000, LastPaycheck: "2025-08-15", Manager: "David Kim"}))

	ans, err := s.Respond(context.Background(), "Tel me about Max Levchiin")
	require.NoError(t, err)
	text, ok := ans.Content.(turn.Text)
	require.True(t, ok, "got %T", ans.Content)
	assert.Contains(t, text.Body, "{{Max Levchin:employee}}")
	assert.Contains(t, text.Body, "Reply **yes**")
	require.NotNil(t, ans.Correction)
	assert.Equal(t, 12, ans.Correction.Employee.ID)
}

func TestTimeOffBypassesMatching(t *testing.T) {
	s := New(ptoOnly{}, Options{}, nil)

	ans, err := s.Respond(context.Background(), "I need to take some time off")
	require.NoError(t, err)
	pto, ok := ans.Content.(turn.PTORequest)
	require.True(t, ok, "got %T", ans.Content)
	assert.Equal(t, "Unlimited", pto.Summary.Remaining)
}

// ptoOnly fails every lookup except the time-off summary.
type ptoOnly struct{ directory.Service }

func (ptoOnly) CurrentUserPTOSummary(context.Context) (directory.PTOSummary, error) {
	return directory.PTOSummary{Year: 2026, Remaining: "Unlimited"}, nil
}

func TestInsuranceOpensSelection(t *testing.T) {
	s := newSynth(testDirectory())
	ans, err := s.Respond(context.Background(), "what does my dental insurance cover?")
	require.NoError(t, err)
	sel, ok := ans.Content.(turn.InsuranceSelection)
	require.True(t, ok, "got %T", ans.Content)
	assert.Len(t, sel.Options, 3)
}

func TestSingleCandidateIsDeterministic(t *testing.T) {
	s := newSynth(testDirectory())
	ctx := context.Background()

	for _, q := range []string{"Who is Sarah Johnson?", "what is sarah's latest paycheck?"} {
		first, err := s.Respond(ctx, q)
		require.NoError(t, err)
		second, err := s.Respond(ctx, q)
		require.NoError(t, err)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("%q: answers differ (-first +second):\n%s", q, diff)
		}
	}
}

func TestEmployeeSummary(t *testing.T) {
	s := newSynth(testDirectory())
	ans, err := s.Respond(context.Background(), "Who is Sarah Johnson?")
	require.NoError(t, err)
	text, ok := ans.Content.(turn.Text)
	require.True(t, ok, "got %T", ans.Content)
	assert.True(t, strings.HasPrefix(text.Body, "{{Sarah Johnson:employee}} information:"))
	assert.Contains(t, text.Body, "• **Salary**: $140,000")
	assert.Contains(t, text.Body, "• **Manager**: CEO")
}

func TestResolveUsesContextQuery(t *testing.T) {
	s := newSynth(testDirectory())
	c := match.Candidate{Employee: directory.Employee{ID: 1, Name: "Max Thompson", Salary: 120000, LastPaycheck: "2024-01-15"}}

	content, err := s.Resolve(c, "What's Max's latest paycheck?")
	require.NoError(t, err)
	assert.Equal(t, turn.KindRecordCard, content.Kind())

	content, err = s.Resolve(c, "Tell me about Max")
	require.NoError(t, err)
	assert.Equal(t, turn.KindText, content.Kind())

	_, err = s.Resolve(match.Candidate{}, "paycheck")
	assert.Error(t, err)
}

func TestDepartmentCandidatesPrompt(t *testing.T) {
	s := newSynth(testDirectory())
	ans, err := s.Respond(context.Background(), "who is on the engineering team?")
	require.NoError(t, err)
	d, ok := ans.Content.(turn.Disambiguation)
	require.True(t, ok, "got %T", ans.Content)
	assert.Len(t, d.Candidates, 3)
	assert.Equal(t, "There are 3 people in Engineering at Acme, which one are you referring to?", d.Prompt)
}

func TestDepartmentAndPayRunSummaries(t *testing.T) {
	s := newSynth(testDirectory())
	ctx := context.Background()

	ans, err := s.Respond(ctx, "What is the engineering budget?")
	require.NoError(t, err)
	body := ans.Content.PlainText()
	assert.Contains(t, body, "{{Engineering:department}}")
	assert.Contains(t, body, "$3,200,000")
	assert.Contains(t, body, "$5,925/month")

	ans, err = s.Respond(ctx, "What's the latest payroll total?")
	require.NoError(t, err)
	assert.Contains(t, ans.Content.PlainText(), "{{Payroll - January 2024:payrun}}")

	ans, err = s.Respond(ctx, "show me the December 2023 payroll")
	require.NoError(t, err)
	assert.Contains(t, ans.Content.PlainText(), "$1,180,000")
}

func TestHelpTextBranches(t *testing.T) {
	s := newSynth(testDirectory())
	ctx := context.Background()

	tests := []struct {
		query string
		want  string
	}{
		{"what about the quantum team?", "information about departments"},
		{"who is the manager here?", "information about managers"},
		{"what is the latest?", "I have data for 5 employees across 2 departments!"},
	}
	for _, tt := range tests {
		ans, err := s.Respond(ctx, tt.query)
		require.NoError(t, err, tt.query)
		assert.Contains(t, ans.Content.PlainText(), tt.want, tt.query)
	}
}

type brokenDirectory struct{ directory.Service }

func (brokenDirectory) FindEmployeesByNameFragment(context.Context, string) ([]directory.Employee, error) {
	return nil, errors.New("connection refused")
}

func TestDirectoryFailureIsReturned(t *testing.T) {
	s := newSynth(brokenDirectory{})
	_, err := s.Respond(context.Background(), "Tell me about Max")
	require.Error(t, err)
}

func TestPlanShapes(t *testing.T) {
	s := newSynth(testDirectory())

	categories := func(th turn.Thinking) []turn.StepCategory {
		var out []turn.StepCategory
		for _, st := range th.Steps {
			out = append(out, st.Category)
		}
		return out
	}

	pay := s.Plan("What's Max's latest paycheck?")
	assert.Equal(t, []turn.StepCategory{turn.StepParsing, turn.StepLookup, turn.StepRetrieval, turn.StepCalculation, turn.StepVerification, turn.StepPreparation}, categories(pay))
	assert.Equal(t, 6*800*time.Millisecond, pay.Total())

	pto := s.Plan("I need some time off")
	assert.Equal(t, turn.StepLookup, pto.Steps[1].Category)
	assert.Len(t, pto.Steps, 4)

	lookup := s.Plan("Tell me about Max")
	assert.Equal(t, turn.StepAnalysis, lookup.Steps[2].Category)

	generic := s.Plan("what is the latest?")
	assert.Len(t, generic.Steps, 3)
}
