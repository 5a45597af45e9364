package tui

import (
	"strings"

	"github.com/christopherklint97/chatrail/internal/chip"
	"github.com/christopherklint97/chatrail/internal/directory"
	"github.com/christopherklint97/chatrail/internal/render"
)

type pickSource int

const (
	pickNone pickSource = iota
	pickMention
	pickWord
)

// pickerModel offers directory objects to insert as chips: either the "@"
// typeahead or an inline suggestion for a typed word.
type pickerModel struct {
	source     pickSource
	query      string
	items      []directory.Item
	categories []directory.Category
	cursor     int
}

func (m pickerModel) active() bool {
	return m.source != pickNone && len(m.items) > 0
}

func (m *pickerModel) move(delta int) {
	if len(m.items) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.items)) % len(m.items)
}

// apply inserts the highlighted item into text.
func (m pickerModel) apply(text string) string {
	if !m.active() {
		return text
	}
	it := m.items[m.cursor]
	switch m.source {
	case pickMention:
		at := strings.LastIndex(text, "@")
		if at < 0 {
			return text
		}
		return text[:at] + it.Chip() + " "
	case pickWord:
		return directory.ReplaceWord(text, m.query, it)
	}
	return text
}

// trailingMention returns what follows the last "@" when the user is still
// typing a reference.
func trailingMention(text string) (string, bool) {
	at := strings.LastIndex(text, "@")
	if at < 0 {
		return "", false
	}
	if at > 0 && text[at-1] != ' ' && text[at-1] != '\n' {
		return "", false
	}
	q := text[at+1:]
	if strings.ContainsAny(q, "\n{}") || len(q) > 30 {
		return "", false
	}
	return q, true
}

func (m pickerModel) View() string {
	if !m.active() {
		return ""
	}
	var sb strings.Builder

	if m.source == pickWord {
		sb.WriteString(warningStyle.Render("Did you mean "+m.query+"?") + "\n")
	} else if m.query == "" && len(m.categories) > 0 {
		names := make([]string, len(m.categories))
		for i, c := range m.categories {
			names[i] = "@" + c.ID
		}
		sb.WriteString(dimStyle.Render("Browse: "+strings.Join(names, " · ")) + "\n")
		sb.WriteString(titleStyle.Render("Frequently used") + "\n")
	}

	for i, it := range m.items {
		prefix := "  "
		if i == m.cursor {
			prefix = highlightStyle.Render("> ")
		}
		sb.WriteString(prefix + render.Chip(chip.Ref{Name: it.DisplayName, Type: it.Type}) + "\n")
	}

	sb.WriteString(helpStyle.Render("tab: insert • ↑/↓: move • esc: dismiss"))
	return boxStyle.Render(sb.String())
}

// categoryNamed reports whether a mention query names a whole category, as
// in "@departments".
func categoryNamed(q string) (directory.Category, bool) {
	for _, c := range directory.Categories {
		if strings.EqualFold(q, c.ID) || strings.EqualFold(q, c.Name) {
			return c, true
		}
	}
	return directory.Category{}, false
}
