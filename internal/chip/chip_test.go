package chip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContains(t *testing.T) {
	assert.True(t, Contains("What about {{Max Wesel:employee}}?"))
	assert.True(t, Contains("{{Engineering:department}}"))
	assert.False(t, Contains("{{Max Wesel}}"))
	assert.False(t, Contains("{{:employee}}"))
	assert.False(t, Contains("plain text"))
}

func TestParseRoundTrip(t *testing.T) {
	text := "Compare " + Format("Max Wesel", Employee) + " with " + Format("Engineering", Department) + "."
	segs := Parse(text)
	require.Len(t, segs, 5)

	assert.Equal(t, "Compare ", segs[0].Text)
	require.NotNil(t, segs[1].Ref)
	assert.Equal(t, Ref{Name: "Max Wesel", Type: Employee}, *segs[1].Ref)
	assert.Equal(t, " with ", segs[2].Text)
	require.NotNil(t, segs[3].Ref)
	assert.Equal(t, Department, segs[3].Ref.Type)
	assert.Equal(t, ".", segs[4].Text)

	var rebuilt string
	for _, s := range segs {
		if s.Ref != nil {
			rebuilt += s.Ref.String()
		} else {
			rebuilt += s.Text
		}
	}
	assert.Equal(t, text, rebuilt)
}

func TestParseNoAnnotations(t *testing.T) {
	segs := Parse("hello there")
	require.Len(t, segs, 1)
	assert.Equal(t, "hello there", segs[0].Text)
	assert.Empty(t, Parse(""))
}

func TestUnknownTypeFallsBackToGenericIcon(t *testing.T) {
	segs := Parse("see {{Q3 Plan:document}}")
	require.Len(t, segs, 2)
	require.NotNil(t, segs[1].Ref)
	assert.Equal(t, Type("document"), segs[1].Ref.Type)
	assert.Equal(t, "📌", segs[1].Ref.Type.Icon())
	assert.Equal(t, "👤", Employee.Icon())
}

func TestStrip(t *testing.T) {
	assert.Equal(t, "Did you mean Max Levchin?", Strip("Did you mean {{Max Levchin:employee}}?"))
}
