package match

import (
	"regexp"
	"strings"
)

// Token is a candidate name fragment and its word position in the input.
type Token struct {
	Text string
	Pos  int
}

const minTokenLen = 2

var stopWords = toSet(
	// articles, auxiliaries, pronouns, prepositions
	"a", "an", "the", "is", "are", "was", "were", "be", "do", "does", "did",
	"i", "me", "my", "you", "your", "it", "its", "this", "that", "of", "for",
	"to", "in", "on", "at", "by", "from", "with", "and", "or", "can", "could",
	"would", "please", "some", "any", "much", "many", "up",
	// interrogatives and request verbs
	"what", "whats", "who", "whos", "how", "when", "where", "why", "which",
	"tell", "show", "give", "find", "get", "about", "know", "see", "need",
	"want", "look", "make", "makes", "earn", "earns", "manages", "managed",
	// domain vocabulary that never names a person
	"paycheck", "paychecks", "salary", "pay", "payroll", "latest", "last",
	"recent", "current", "employee", "employees", "person", "people",
	"department", "team", "manager", "role", "position", "total", "budget",
	"headcount", "info", "information", "details", "detail", "run", "runs",
)

var departmentPattern = regexp.MustCompile(`\b(engineering|marketing|sales|hr|finance|human resources)\b`)

// departmentAliases maps the keyword found in text to the directory's
// department name.
var departmentAliases = map[string]string{
	"engineering":     "Engineering",
	"marketing":       "Marketing",
	"sales":           "Sales",
	"hr":              "HR",
	"human resources": "HR",
	"finance":         "Finance",
}

// Tokenize splits text into name-bearing tokens. Words are lowercased, trailing
// punctuation and a possessive 's are stripped, and stop words, department
// keywords and one-letter words are dropped.
func Tokenize(text string) []Token {
	var out []Token
	for i, word := range strings.Fields(text) {
		w := cleanWord(word)
		if len(w) < minTokenLen || stopWords[w] || departmentAliases[w] != "" {
			continue
		}
		out = append(out, Token{Text: w, Pos: i})
	}
	return out
}

func cleanWord(word string) string {
	w := strings.ToLower(word)
	w = strings.TrimLeft(w, `"'(`+"`")
	w = strings.TrimRight(w, `?!.,;:"')`+"`")
	for _, suffix := range []string{"'s", "’s"} {
		if strings.HasSuffix(w, suffix) {
			w = strings.TrimSuffix(w, suffix)
			break
		}
	}
	w = strings.TrimRight(w, `?!.,;:"'`)
	return strings.ReplaceAll(w, "'", "")
}

// MentionedDepartment returns the directory name of the first department
// keyword in text, or "" when none is present.
func MentionedDepartment(text string) string {
	m := departmentPattern.FindString(strings.ToLower(text))
	if m == "" {
		return ""
	}
	return departmentAliases[m]
}

func toSet(words ...string) map[string]bool {
	s := make(map[string]bool, len(words))
	for _, w := range words {
		s[w] = true
	}
	return s
}
