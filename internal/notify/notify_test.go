package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledDoesNotSend(t *testing.T) {
	d := NewDesktop(false, nil)
	d.send = func(string, string) error {
		t.Fatal("sent while disabled")
		return nil
	}
	require.NoError(t, d.Notify("Time off requested", "5 day(s)"))
}

func TestSendErrorsAreWrapped(t *testing.T) {
	var got []string
	d := NewDesktop(true, nil)
	d.send = func(title, msg string) error {
		got = append(got, title, msg)
		return nil
	}
	require.NoError(t, d.Notify("Time off requested", "5 day(s)"))
	assert.Equal(t, []string{"Time off requested", "5 day(s)"}, got)

	boom := errors.New("no dbus")
	d.send = func(string, string) error { return boom }
	err := d.Notify("a", "b")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "sending notification")
}
