// Package match resolves the people a query talks about against the
// directory. Tiers are tried in order (name, department, fuzzy) and the first
// tier that produces anything wins.
package match

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/christopherklint97/chatrail/internal/directory"
)

type Tier int

const (
	Exact Tier = iota
	Partial
	CommonName
	DepartmentMatch
	Fuzzy
)

func (t Tier) String() string {
	switch t {
	case Exact:
		return "exact"
	case Partial:
		return "partial"
	case CommonName:
		return "common_name"
	case DepartmentMatch:
		return "department"
	case Fuzzy:
		return "fuzzy"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

type Candidate struct {
	Employee directory.Employee `json:"employee"`
	Tier     Tier               `json:"tier"`
	// Token is the input fragment that produced the match.
	Token string `json:"token"`
	// Similarity is only set for fuzzy hits.
	Similarity float64 `json:"similarity,omitempty"`
}

// Result holds the winning tier's candidates. Fuzzy is set only when both
// the name and department tiers came up empty.
type Result struct {
	Candidates []Candidate
	Fuzzy      *Candidate
}

func (r Result) Empty() bool {
	return len(r.Candidates) == 0 && r.Fuzzy == nil
}

const (
	fuzzyThreshold = 0.6
	fuzzyPrefixLen = 4
)

// First names treated as common enough that a bare mention is ambiguous.
var commonNames = toSet("max", "john", "sarah", "jennifer", "michael", "david", "lisa", "alex")

type Matcher struct {
	dir    directory.Service
	logger *slog.Logger
}

func New(dir directory.Service, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Matcher{dir: dir, logger: logger}
}

// Match runs the tiers over text. No match is a valid empty Result; errors
// come only from the directory.
func (m *Matcher) Match(ctx context.Context, text string) (Result, error) {
	tokens := Tokenize(text)

	named, unresolved, err := m.nameTier(ctx, tokens)
	if err != nil {
		return Result{}, err
	}
	if len(named) > 0 {
		m.logger.Debug("match resolved", "tier", "name", "candidates", len(named))
		return Result{Candidates: named}, nil
	}

	if dept := MentionedDepartment(text); dept != "" {
		emps, err := m.dir.FindEmployeesByDepartment(ctx, dept)
		if err != nil {
			return Result{}, fmt.Errorf("finding department %s: %w", dept, err)
		}
		if len(emps) > 0 {
			cands := make([]Candidate, 0, len(emps))
			for _, e := range emps {
				cands = append(cands, Candidate{Employee: e, Tier: DepartmentMatch, Token: strings.ToLower(dept)})
			}
			m.logger.Debug("match resolved", "tier", DepartmentMatch, "candidates", len(cands))
			return Result{Candidates: dedupe(cands)}, nil
		}
	}

	best, err := m.fuzzyTier(ctx, tokens, unresolved)
	if err != nil {
		return Result{}, err
	}
	if best != nil {
		m.logger.Debug("match resolved", "tier", Fuzzy, "employee", best.Employee.Name, "similarity", best.Similarity)
	} else {
		m.logger.Debug("no match", "tokens", len(tokens))
	}
	return Result{Fuzzy: best}, nil
}

// nameTier looks every token up in the directory. Employees hit by more
// tokens win over those hit by fewer. When only single-token hits exist but
// an unknown word sits right next to a resolved one ("max levchiin"), the
// user most likely typed a full name wrong, so the tier yields nothing and
// the fuzzy tier gets a chance.
func (m *Matcher) nameTier(ctx context.Context, tokens []Token) ([]Candidate, map[int]bool, error) {
	type hit struct {
		emp    directory.Employee
		tokens []Token
	}
	hits := make(map[int]*hit)
	unresolved := make(map[int]bool)

	for _, tok := range tokens {
		emps, err := m.dir.FindEmployeesByNameFragment(ctx, tok.Text)
		if err != nil {
			return nil, nil, fmt.Errorf("finding employees by %q: %w", tok.Text, err)
		}
		if len(emps) == 0 {
			unresolved[tok.Pos] = true
			continue
		}
		for _, e := range emps {
			h, ok := hits[e.ID]
			if !ok {
				h = &hit{emp: e}
				hits[e.ID] = h
			}
			if !containsToken(h.tokens, tok.Text) {
				h.tokens = append(h.tokens, tok)
			}
		}
	}
	if len(hits) == 0 {
		return nil, unresolved, nil
	}

	best := 0
	for _, h := range hits {
		best = max(best, len(h.tokens))
	}
	if best == 1 && adjacentToUnresolved(tokens, unresolved) {
		return nil, unresolved, nil
	}

	var cands []Candidate
	for _, h := range hits {
		if len(h.tokens) != best {
			continue
		}
		cands = append(cands, Candidate{
			Employee: h.emp,
			Tier:     nameTierOf(h.emp, h.tokens),
			Token:    joinTokens(h.tokens),
		})
	}
	return dedupe(cands), unresolved, nil
}

func nameTierOf(e directory.Employee, toks []Token) Tier {
	full := strings.ToLower(strings.Join(strings.Fields(e.Name), " "))
	if joinTokens(toks) == full {
		return Exact
	}
	if len(toks) == 1 && commonNames[toks[0].Text] && strings.EqualFold(toks[0].Text, e.FirstName()) {
		return CommonName
	}
	return Partial
}

func adjacentToUnresolved(tokens []Token, unresolved map[int]bool) bool {
	for _, tok := range tokens {
		if unresolved[tok.Pos] {
			continue
		}
		if unresolved[tok.Pos-1] || unresolved[tok.Pos+1] {
			return true
		}
	}
	return false
}

// fuzzyTier compares the unresolved tokens, and adjacent token pairs that
// include one, against first, last and full names. The single best hit is
// returned; ties go to the alphabetically first name, then the lower id.
func (m *Matcher) fuzzyTier(ctx context.Context, tokens []Token, unresolved map[int]bool) (*Candidate, error) {
	var inputs []string
	for i, tok := range tokens {
		if unresolved[tok.Pos] {
			inputs = append(inputs, tok.Text)
		}
		if i+1 < len(tokens) {
			next := tokens[i+1]
			if next.Pos == tok.Pos+1 && (unresolved[tok.Pos] || unresolved[next.Pos]) {
				inputs = append(inputs, tok.Text+" "+next.Text)
			}
		}
	}
	if len(inputs) == 0 {
		return nil, nil
	}

	emps, err := m.dir.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}

	var best *Candidate
	for _, e := range emps {
		targets := []string{strings.ToLower(e.FirstName()), strings.ToLower(e.LastName()), strings.ToLower(e.Name)}
		for _, in := range inputs {
			for _, target := range targets {
				if target == "" {
					continue
				}
				sim, ok := fuzzyHit(in, target)
				if !ok {
					continue
				}
				c := Candidate{Employee: e, Tier: Fuzzy, Token: in, Similarity: sim}
				if best == nil || better(c, *best) {
					best = &c
				}
			}
		}
	}
	return best, nil
}

func better(a, b Candidate) bool {
	if a.Similarity != b.Similarity {
		return a.Similarity > b.Similarity
	}
	if a.Employee.Name != b.Employee.Name {
		return a.Employee.Name < b.Employee.Name
	}
	return a.Employee.ID < b.Employee.ID
}

// Similarity is 1 minus the edit distance normalized by the longer string.
func Similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func fuzzyHit(a, b string) (float64, bool) {
	sim := Similarity(a, b)
	if sim > fuzzyThreshold {
		return sim, true
	}
	// Leading-characters rule applies to single words only; a pair would
	// always share the first name.
	if strings.Contains(a, " ") {
		return sim, false
	}
	if len(a) >= fuzzyPrefixLen && len(b) >= fuzzyPrefixLen &&
		(strings.Contains(b, a[:fuzzyPrefixLen]) || strings.Contains(a, b[:fuzzyPrefixLen])) {
		return sim, true
	}
	return sim, false
}

func dedupe(cands []Candidate) []Candidate {
	seen := make(map[int]bool, len(cands))
	out := cands[:0]
	for _, c := range cands {
		if seen[c.Employee.ID] {
			continue
		}
		seen[c.Employee.ID] = true
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Employee.ID < out[j].Employee.ID })
	return out
}

func containsToken(toks []Token, text string) bool {
	for _, t := range toks {
		if t.Text == text {
			return true
		}
	}
	return false
}

func joinTokens(toks []Token) string {
	sorted := append([]Token(nil), toks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Pos < sorted[j].Pos })
	parts := make([]string, len(sorted))
	for i, t := range sorted {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}
