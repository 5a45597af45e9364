package turn

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherklint97/chatrail/internal/directory"
	"github.com/christopherklint97/chatrail/internal/flow"
	"github.com/christopherklint97/chatrail/internal/match"
)

func TestEnvelopeCarriesTypeTag(t *testing.T) {
	data, err := Encode(Thinking{Query: "q", Steps: []Step{{Label: "Parsing", Category: StepParsing, DurationMs: 800}}})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "thinking", raw["type"])
	assert.Equal(t, "q", raw["query"])
}

func TestEnvelopeDecodesEveryVariant(t *testing.T) {
	variants := []Content{
		Text{Body: "hello **there**"},
		Thinking{Query: "who?", Steps: []Step{{Label: "Looking up", Category: StepLookup, DurationMs: 800}}},
		Disambiguation{Prompt: "Which one?", Candidates: []match.Candidate{
			{Employee: directory.Employee{ID: 1, Name: "Max Thompson"}, Tier: match.CommonName, Token: "max"},
		}},
		PTORequest{Prompt: "Pick dates", Summary: directory.PTOSummary{Year: 2026, Remaining: "Unlimited"}},
		InsuranceSelection{Prompt: "Which coverage?", Options: flow.InsuranceOptions()},
		RecordCard{Employee: "Max Wesel", GrossPay: 576923, Breakdown: []Line{{Label: "Federal tax", Cents: -86538}}},
	}

	for _, v := range variants {
		t.Run(string(v.Kind()), func(t *testing.T) {
			data, err := Encode(v)
			require.NoError(t, err)

			got, err := Decode(data)
			require.NoError(t, err)
			if diff := cmp.Diff(v, got); diff != "" {
				t.Errorf("decoded content mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeRejectsNonEnvelopes(t *testing.T) {
	for _, in := range []string{
		"plain text",
		`{"type":"unknown"}`,
		`{"no":"type"}`,
		`{"type":"thinking","steps":"not a list"}`,
		`[1,2,3]`,
	} {
		_, err := Decode([]byte(in))
		assert.ErrorIs(t, err, ErrNotEnvelope, in)
	}
}

func TestDecodeOrTextFallsBack(t *testing.T) {
	assert.Equal(t, Text{Body: "{broken json"}, DecodeOrText("{broken json"))

	c := DecodeOrText(`{"type":"pto_request","prompt":"Pick dates","summary":{"year":2026}}`)
	pto, ok := c.(PTORequest)
	require.True(t, ok)
	assert.Equal(t, 2026, pto.Summary.Year)
}

func TestSchemaListsEveryVariant(t *testing.T) {
	s := Schema()
	require.Len(t, s.OneOf, 6)

	kinds := make([]string, 0, len(s.OneOf))
	for _, v := range s.OneOf {
		typ, ok := v.Properties.Get("type")
		require.True(t, ok)
		kinds = append(kinds, typ.Const.(string))
		assert.Contains(t, v.Required, "type")
	}
	assert.Equal(t, []string{"text", "thinking", "disambiguation", "pto_request", "insurance_selection", "record_card"}, kinds)

	_, err := json.Marshal(s)
	require.NoError(t, err)
}

func TestRecordCardFields(t *testing.T) {
	rc := RecordCard{Employee: "Max Wesel", GrossPay: 576923, Taxes: 121153, Deductions: 59615, NetPay: 396155}
	fields := rc.Fields()
	require.Len(t, fields, 4)
	assert.Equal(t, Line{Label: "Gross pay", Cents: 576923}, fields[0])
	assert.Equal(t, Line{Label: "Net pay", Cents: 396155}, fields[3])
	assert.Contains(t, rc.PlainText(), "{{Max Wesel:employee}}")
	assert.Contains(t, rc.PlainText(), "$5,769.23")
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$5,769.23", Money(576923))
	assert.Equal(t, "- $865.38", Money(-86538))
	assert.Equal(t, "$0.05", Money(5))
}

func TestDisambiguationPlainText(t *testing.T) {
	d := Disambiguation{Prompt: "Which Max?", Candidates: []match.Candidate{
		{Employee: directory.Employee{Name: "Max Thompson", Role: "Senior Engineer", Department: "Engineering"}},
		{Employee: directory.Employee{Name: "Max Patel", Role: "DevOps Engineer", Department: "Engineering"}},
	}}
	text := d.PlainText()
	assert.Contains(t, text, "**1. Max Thompson**\n   Senior Engineer in Engineering")
	assert.Contains(t, text, "**2. Max Patel**")
	assert.Contains(t, text, "Reply with the number (1-2) to select.")
}
