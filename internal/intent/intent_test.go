package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		actionable bool
	}{
		{"question with keyword", "What's Max Wesel's latest paycheck?", true},
		{"opener with keyword", "who is the manager of sales", true},
		{"request verb with keyword", "Tel me about Max Levchiin's role, find it", true},
		{"i need time off", "I need to take some time off", true},
		{"request without domain keyword", "Tell me about Max", false},
		{"keyword without shape", "the budget looks fine", false},
		{"shape without keyword", "how are you?", false},
		{"budget is not get", "budget report for team", false},
		{"get as a word", "get the payroll numbers", true},
		{"plain chat", "thanks!", false},
		{"keyword inside another word", "Who runs the division?", false},
		{"plural keyword", "show me the departments", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			assert.False(t, got.ChipAnnotated)
			assert.Equal(t, tt.actionable, got.Actionable)
		})
	}
}

func TestClassifyChipAnnotatedIsNeverActionable(t *testing.T) {
	for _, text := range []string{
		"What's {{Max Wesel:employee}}'s latest paycheck?",
		"{{Engineering:department}} budget?",
		"show me {{Payroll - January 2024:payrun}} total",
	} {
		got := Classify(text)
		assert.True(t, got.ChipAnnotated, text)
		assert.False(t, got.Actionable, text)
	}
}

func TestReplies(t *testing.T) {
	assert.True(t, IsAffirmative(" Yes "))
	assert.True(t, IsAffirmative("y"))
	assert.True(t, IsAffirmative("YES!"))
	assert.False(t, IsAffirmative("yes please"))
	assert.True(t, IsNegative("No"))
	assert.False(t, IsNegative("yes"))
}

func TestTopicKeywords(t *testing.T) {
	assert.True(t, MentionsPTO("Can I take a vacation next week?"))
	assert.False(t, MentionsPTO("What is Max's salary?"))
	assert.True(t, MentionsInsurance("show me my dental plan"))
	assert.True(t, MentionsInsurance("What benefits do I have?"))
	assert.True(t, MentionsPTO("How much PTO do I have left?"))

	for _, text := range []string{
		"Who has Max Patel's laptop?",
		"Is the laptop order late?",
	} {
		assert.False(t, MentionsPTO(text), text)
	}
	for _, text := range []string{
		"Who leads the Engineering division?",
		"Who handles supervision of interns?",
		"Is the forecast revisioned?",
	} {
		assert.False(t, MentionsInsurance(text), text)
	}
}
