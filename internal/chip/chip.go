// Package chip implements the inline reference annotation {{Display Name:type}}
// that marks a confirmed reference to a directory object inside free text.
package chip

import (
	"regexp"
	"strings"
)

type Type string

const (
	Employee   Type = "employee"
	Department Type = "department"
	PayRun     Type = "payrun"
)

// Icon returns the glyph shown in front of a chip; unknown types get a pin.
func (t Type) Icon() string {
	switch t {
	case Employee:
		return "👤"
	case Department:
		return "🏢"
	case PayRun:
		return "💰"
	default:
		return "📌"
	}
}

var pattern = regexp.MustCompile(`\{\{([^:{}]+):([^{}]+)\}\}`)

// Ref is a parsed annotation.
type Ref struct {
	Name string
	Type Type
}

func (r Ref) String() string {
	return Format(r.Name, r.Type)
}

// Format renders a reference in annotation form.
func Format(name string, t Type) string {
	return "{{" + strings.TrimSpace(name) + ":" + string(t) + "}}"
}

// Contains reports whether text holds at least one well-formed annotation.
func Contains(text string) bool {
	return pattern.MatchString(text)
}

// Segment is either literal text or a reference; exactly one is set.
type Segment struct {
	Text string
	Ref  *Ref
}

// Parse splits text into literal and reference segments. Text without
// annotations yields a single literal segment.
func Parse(text string) []Segment {
	var segs []Segment
	last := 0
	for _, loc := range pattern.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > last {
			segs = append(segs, Segment{Text: text[last:loc[0]]})
		}
		segs = append(segs, Segment{Ref: &Ref{
			Name: strings.TrimSpace(text[loc[2]:loc[3]]),
			Type: Type(strings.TrimSpace(text[loc[4]:loc[5]])),
		}})
		last = loc[1]
	}
	if last < len(text) {
		segs = append(segs, Segment{Text: text[last:]})
	}
	return segs
}

// Strip replaces every annotation with its display name.
func Strip(text string) string {
	return pattern.ReplaceAllStringFunc(text, func(s string) string {
		m := pattern.FindStringSubmatch(s)
		return strings.TrimSpace(m[1])
	})
}
