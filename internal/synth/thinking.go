package synth

import (
	"strings"

	"github.com/christopherklint97/chatrail/internal/intent"
	"github.com/christopherklint97/chatrail/internal/match"
	"github.com/christopherklint97/chatrail/internal/turn"
)

var payWords = []string{"paycheck", "salary", "payroll", "pay run", "earn"}

// Plan builds the thinking trace for query. The step list depends only on
// the shape of the question.
func (s *Synthesizer) Plan(query string) turn.Thinking {
	lower := strings.ToLower(query)
	ms := s.opts.StepDuration.Milliseconds()

	step := func(label string, cat turn.StepCategory) turn.Step {
		return turn.Step{Label: label, Category: cat, DurationMs: ms}
	}

	var steps []turn.Step
	switch {
	case intent.MentionsPTO(query):
		steps = []turn.Step{
			step("Understanding your request", turn.StepParsing),
			step("Looking up your time-off policy", turn.StepLookup),
			step("Retrieving your balance", turn.StepRetrieval),
			step("Preparing the request form", turn.StepPreparation),
		}
	case intent.MentionsInsurance(query):
		steps = []turn.Step{
			step("Understanding your request", turn.StepParsing),
			step("Retrieving your benefits enrollment", turn.StepRetrieval),
			step("Preparing coverage options", turn.StepPreparation),
		}
	case containsAny(lower, payWords):
		steps = []turn.Step{
			step("Parsing your question", turn.StepParsing),
			step("Looking up matching employees", turn.StepLookup),
			step("Retrieving payroll records", turn.StepRetrieval),
			step("Calculating taxes and deductions", turn.StepCalculation),
			step("Verifying amounts", turn.StepVerification),
			step("Preparing the answer", turn.StepPreparation),
		}
	case len(match.Tokenize(query)) > 0 || match.MentionedDepartment(query) != "":
		steps = []turn.Step{
			step("Parsing your question", turn.StepParsing),
			step("Searching the employee directory", turn.StepLookup),
			step("Checking for similar names", turn.StepAnalysis),
			step("Preparing the answer", turn.StepPreparation),
		}
	default:
		steps = []turn.Step{
			step("Parsing your question", turn.StepParsing),
			step("Working out what you need", turn.StepAnalysis),
			step("Preparing the answer", turn.StepPreparation),
		}
	}
	return turn.Thinking{Query: query, Steps: steps}
}
