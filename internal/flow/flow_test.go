package flow

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestInclusiveDays(t *testing.T) {
	n, err := InclusiveDays(day("2026-11-02"), day("2026-11-02"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = InclusiveDays(day("2026-11-02"), day("2026-11-08"))
	require.NoError(t, err)
	assert.Equal(t, 7, n, "weekends are counted")

	// Crosses the US DST change on 2026-11-01.
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err == nil {
		start := time.Date(2026, 10, 31, 23, 0, 0, 0, loc)
		end := time.Date(2026, 11, 2, 1, 0, 0, 0, loc)
		n, err = InclusiveDays(start, end)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	}

	_, err = InclusiveDays(day("2026-11-08"), day("2026-11-02"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestPTODraftLifecycle(t *testing.T) {
	d := NewPTODraft("req-1", "Sarah Johnson")
	assert.Equal(t, Collecting, d.Status)

	ok, err := d.RequestConfirmation()
	require.NoError(t, err)
	assert.False(t, ok, "no dates yet")

	require.NoError(t, d.SetStart(day("2026-11-02")))
	require.NoError(t, d.SetEnd(day("2026-11-06")))
	assert.Equal(t, 5, d.Days)

	ok, err = d.RequestConfirmation()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, PendingManagerConfirmation, d.Status)
	assert.Contains(t, d.ConfirmationPrompt(), "**5 days**")
	assert.Contains(t, d.ConfirmationPrompt(), "Sarah Johnson")

	require.NoError(t, d.SetEnd(day("2026-11-09")))
	ok, err = d.RequestConfirmation()
	require.NoError(t, err)
	assert.False(t, ok, "confirmation is requested only once")
	assert.Equal(t, 8, d.Days)

	require.NoError(t, d.Submit())
	assert.Equal(t, Submitted, d.Status)
	assert.ErrorIs(t, d.Submit(), ErrAlreadySubmitted)
	assert.ErrorIs(t, d.SetStart(day("2026-12-01")), ErrAlreadySubmitted)
	assert.Equal(t, "2026-11-02", d.Start.Format(DateLayout))
}

func TestRequestConfirmationRejectsBackwardsRange(t *testing.T) {
	d := NewPTODraft("req-2", "Sarah Johnson")
	require.NoError(t, d.SetStart(day("2026-11-06")))
	require.NoError(t, d.SetEnd(day("2026-11-02")))

	ok, err := d.RequestConfirmation()
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Equal(t, Collecting, d.Status)
}

func TestSubmitRequiresConfirmation(t *testing.T) {
	d := NewPTODraft("req-3", "Sarah Johnson")
	assert.ErrorIs(t, d.Submit(), ErrNotPending)
}

func TestRemaining(t *testing.T) {
	d := &PTODraft{Days: 3}
	assert.Equal(t, "Unlimited", d.Remaining("Unlimited"))
	assert.Equal(t, "9", d.Remaining("12"))
}

func TestConfirmationPromptShowsBalance(t *testing.T) {
	d := NewPTODraft("req-4", "Sarah Johnson")
	require.NoError(t, d.SetStart(day("2026-11-02")))
	require.NoError(t, d.SetEnd(day("2026-11-04")))
	assert.NotContains(t, d.ConfirmationPrompt(), "balance")

	d.Balance = "12"
	assert.Contains(t, d.ConfirmationPrompt(), "That leaves **9** days in your balance.")

	d.Balance = "Unlimited"
	assert.Contains(t, d.ConfirmationPrompt(), "Your balance stays **Unlimited**.")
}

func TestParseDate(t *testing.T) {
	ref := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

	got, err := ParseDate("2026-11-02", ref)
	require.NoError(t, err)
	assert.Equal(t, day("2026-11-02"), got)

	got, err = ParseDate("tomorrow", ref)
	require.NoError(t, err)
	assert.Equal(t, day("2026-10-18"), got)

	got, err = ParseDate("today", ref)
	require.NoError(t, err)
	assert.Equal(t, day("2026-10-17"), got)

	_, err = ParseDate("  ", ref)
	assert.Error(t, err)
	_, err = ParseDate("someday maybe", ref)
	assert.Error(t, err)
}

func TestICSRoundTrip(t *testing.T) {
	d := NewPTODraft("req-4", "Sarah Johnson")
	require.NoError(t, d.SetStart(day("2026-11-02")))
	require.NoError(t, d.SetEnd(day("2026-11-04")))
	_, err := d.RequestConfirmation()
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.ErrorIs(t, d.WriteICS(&buf, time.Now()), ErrNotPending)

	require.NoError(t, d.Submit())
	require.NoError(t, d.WriteICS(&buf, time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)))

	out := buf.String()
	assert.Contains(t, out, "BEGIN:VEVENT")
	assert.Contains(t, out, "20261102")
	assert.Contains(t, out, "20261105", "DTEND is exclusive")
	assert.Contains(t, out, "req-4@chatrail")

	absences, err := ReadICS(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, absences, 1)
	assert.Equal(t, day("2026-11-02"), absences[0].Start)
	assert.Equal(t, day("2026-11-04"), absences[0].End)
	assert.Equal(t, "Time off (3 days)", absences[0].Summary)
}

func TestInsuranceDetails(t *testing.T) {
	opts := InsuranceOptions()
	require.Len(t, opts, 3)

	dental, ok := InsuranceOptionByType("dental")
	require.True(t, ok)
	msg := dental.DetailsMessage()
	assert.True(t, strings.HasPrefix(msg, "Here's your **Dental** insurance coverage details:"))
	assert.Contains(t, msg, "**Deductible:** $50")
	assert.Contains(t, msg, "• **Preventive:** 100% covered")

	_, ok = InsuranceOptionByType("pet")
	assert.False(t, ok)
}
