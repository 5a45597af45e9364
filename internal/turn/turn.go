// Package turn holds the transcript model: turns, their tagged content
// variants and the JSON envelope structured content travels in.
package turn

import (
	"time"

	"github.com/christopherklint97/chatrail/internal/match"
)

type Author string

const (
	User      Author = "user"
	Assistant Author = "assistant"
)

type Turn struct {
	ID      string
	Author  Author
	Content Content
	Created time.Time
	// Undoable marks the one answer that can currently be undone.
	Undoable bool
	// UndoSnapshot is the disambiguation the answer consumed, used to put the
	// question back on undo.
	UndoSnapshot *PendingDisambiguation
}

// PendingDisambiguation is a live "which one?" question.
type PendingDisambiguation struct {
	Candidates []match.Candidate
	Prompt     string
	// Query is the user text that produced the question; resolving a choice
	// answers that query, so "paycheck" in it selects the record card.
	Query         string
	CreatedAtTurn string
}

// Content rebuilds the disambiguation turn body.
func (p PendingDisambiguation) Content() Disambiguation {
	return Disambiguation{
		Prompt:     p.Prompt,
		Candidates: append([]match.Candidate(nil), p.Candidates...),
	}
}

// Len is the number of selectable options.
func (p PendingDisambiguation) Len() int {
	return len(p.Candidates)
}
