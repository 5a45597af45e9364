package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/christopherklint97/chatrail/internal/chip"
)

// Item is a directory object that can be inserted into a message as a chip.
type Item struct {
	ID          int
	Name        string
	DisplayName string
	Type        chip.Type
}

// Chip returns the annotation inserted when the item is picked.
func (i Item) Chip() string {
	return chip.Format(i.DisplayName, i.Type)
}

type Category struct {
	ID   string
	Name string
	Type chip.Type
}

var Categories = []Category{
	{ID: "employees", Name: "Employees", Type: chip.Employee},
	{ID: "departments", Name: "Departments", Type: chip.Department},
	{ID: "payruns", Name: "Pay Runs", Type: chip.PayRun},
}

const (
	perCategoryLimit = 5
	suggestionLimit  = 5
)

// SearchResult groups typeahead matches. With an empty query Categories and
// Frequent are filled; otherwise Groups holds matches per category.
type SearchResult struct {
	Categories []Category
	Frequent   []Item
	Groups     map[chip.Type][]Item
}

// Flat returns the selectable items in display order.
func (r SearchResult) Flat() []Item {
	if r.Groups == nil {
		return append([]Item(nil), r.Frequent...)
	}
	var out []Item
	for _, c := range Categories {
		out = append(out, r.Groups[c.Type]...)
	}
	return out
}

// AllItems lists every directory object as a chip-insertable item.
func AllItems(ctx context.Context, svc Service) ([]Item, error) {
	emps, err := svc.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}
	depts, err := svc.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}
	runs, err := svc.ListPayRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pay runs: %w", err)
	}

	items := make([]Item, 0, len(emps)+len(depts)+len(runs))
	for _, e := range emps {
		items = append(items, Item{ID: e.ID, Name: e.Name, DisplayName: e.Name, Type: chip.Employee})
	}
	for _, d := range depts {
		items = append(items, Item{ID: d.ID, Name: d.Name, DisplayName: d.Name, Type: chip.Department})
	}
	for _, p := range runs {
		items = append(items, Item{ID: p.ID, Name: p.Period, DisplayName: "Payroll - " + p.Period, Type: chip.PayRun})
	}
	return items, nil
}

// Search runs the "@" typeahead: names starting with query, at most five per
// category.
func Search(ctx context.Context, svc Service, query string) (SearchResult, error) {
	items, err := AllItems(ctx, svc)
	if err != nil {
		return SearchResult{}, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return SearchResult{Categories: Categories, Frequent: frequent(items)}, nil
	}

	groups := make(map[chip.Type][]Item)
	for _, it := range items {
		if len(groups[it.Type]) >= perCategoryLimit {
			continue
		}
		if strings.HasPrefix(strings.ToLower(it.Name), q) || strings.HasPrefix(strings.ToLower(it.DisplayName), q) {
			groups[it.Type] = append(groups[it.Type], it)
		}
	}
	return SearchResult{Groups: groups}, nil
}

// InCategory lists every item of one type, for category drill-down.
func InCategory(ctx context.Context, svc Service, t chip.Type) ([]Item, error) {
	items, err := AllItems(ctx, svc)
	if err != nil {
		return nil, err
	}
	var out []Item
	for _, it := range items {
		if it.Type == t {
			out = append(out, it)
		}
	}
	return out, nil
}

// frequent picks two employees, two departments and the latest pay run.
func frequent(items []Item) []Item {
	limits := map[chip.Type]int{chip.Employee: 2, chip.Department: 2, chip.PayRun: 1}
	var out []Item
	for _, it := range items {
		if limits[it.Type] > 0 {
			out = append(out, it)
			limits[it.Type]--
		}
	}
	return out
}

var suggestionSkipWords = map[string]bool{
	"who": true, "what": true, "where": true, "when": true, "how": true, "why": true,
	"is": true, "are": true, "was": true, "were": true, "the": true, "a": true, "an": true,
	"and": true, "or": true, "but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true,
}

// Suggestion is an inline "did you mean this object?" hint for a typed word.
type Suggestion struct {
	Word    string
	Matches []Item
}

// SuggestReferences finds the first plain word in text that names directory
// objects. Exact name matches are listed before partial ones.
func SuggestReferences(ctx context.Context, svc Service, text string) (*Suggestion, error) {
	if strings.Contains(text, "@") || chip.Contains(text) {
		return nil, nil
	}
	items, err := AllItems(ctx, svc)
	if err != nil {
		return nil, err
	}

	for _, word := range strings.Fields(text) {
		clean := strings.TrimRight(word, ".,!?;:")
		lower := strings.ToLower(clean)
		if len(clean) <= 2 || len(clean) >= 20 || suggestionSkipWords[lower] {
			continue
		}

		var exact, partial []Item
		for _, it := range items {
			name := strings.ToLower(it.Name)
			switch {
			case name == lower:
				exact = append(exact, it)
			case strings.Contains(name, lower):
				partial = append(partial, it)
			}
		}
		matches := append(exact, partial...)
		if len(matches) == 0 {
			continue
		}
		if len(matches) > suggestionLimit {
			matches = matches[:suggestionLimit]
		}
		return &Suggestion{Word: clean, Matches: matches}, nil
	}
	return nil, nil
}

// ReplaceWord swaps the first occurrence of word in text for the item's chip.
func ReplaceWord(text, word string, it Item) string {
	fields := strings.Fields(text)
	for i, f := range fields {
		clean := strings.TrimRight(f, ".,!?;:")
		if strings.EqualFold(clean, word) {
			fields[i] = strings.Replace(f, clean, it.Chip(), 1)
			return strings.Join(fields, " ")
		}
	}
	return text
}
