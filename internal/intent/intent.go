// Package intent decides whether a chat message is a request the assistant
// should answer or plain conversation it should leave alone.
package intent

import (
	"regexp"
	"strings"

	"github.com/christopherklint97/chatrail/internal/chip"
)

type Result struct {
	// ChipAnnotated is set when the text carries a confirmed {{name:type}}
	// reference. Such text is never treated as a fresh query.
	ChipAnnotated bool
	Actionable    bool
}

var openers = []string{"what", "who", "how", "when", "where", "i need", "i want"}

// Phrases are matched as substrings, single verbs on word boundaries so that
// "budget" does not count as "get".
var requestPhrases = []string{"tell me", "show me", "give me"}

var requestVerbs = regexp.MustCompile(`\b(find|get)\b`)

var keywords = wordsPattern(
	"paycheck", "salary", "payroll", "employee", "person",
	"department", "team", "manager", "latest", "last",
	"total", "budget", "headcount", "role", "position",
	"time off", "pto", "vacation", "leave", "days off",
	"insurance", "benefits", "medical", "dental", "vision",
)

// wordsPattern matches any of words as whole words, allowing a plural "s",
// so "pto" is not found in "laptop" nor "vision" in "division".
func wordsPattern(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)s?\b`)
}

// Classify applies the request-shape AND domain-keyword rule.
func Classify(text string) Result {
	if chip.Contains(text) {
		return Result{ChipAnnotated: true}
	}
	lower := strings.ToLower(strings.TrimSpace(text))
	return Result{Actionable: hasRequestShape(lower) && HasKeyword(lower)}
}

func hasRequestShape(lower string) bool {
	if strings.Contains(lower, "?") {
		return true
	}
	for _, o := range openers {
		if strings.HasPrefix(lower, o) {
			return true
		}
	}
	for _, p := range requestPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return requestVerbs.MatchString(lower)
}

// HasKeyword reports whether text mentions any domain keyword.
func HasKeyword(text string) bool {
	return keywords.MatchString(strings.ToLower(text))
}

var ptoKeywords = wordsPattern("time off", "pto", "vacation", "leave", "days off")

var insuranceKeywords = wordsPattern("insurance", "benefit", "medical", "dental", "vision")

// MentionsPTO reports whether text asks about time off.
func MentionsPTO(text string) bool {
	return ptoKeywords.MatchString(strings.ToLower(text))
}

func MentionsInsurance(text string) bool {
	return insuranceKeywords.MatchString(strings.ToLower(text))
}

var (
	positiveReplies = map[string]bool{"yes": true, "y": true}
	negativeReplies = map[string]bool{"no": true, "n": true, "nope": true, "cancel": true}
)

// IsAffirmative reports whether a confirmation reply means yes.
func IsAffirmative(text string) bool {
	return positiveReplies[normalizeReply(text)]
}

func IsNegative(text string) bool {
	return negativeReplies[normalizeReply(text)]
}

func normalizeReply(text string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(text)), ".!")
}
