package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestFormatCommand(t *testing.T) {
	out, err := execute(t, "format", "--country", "US", "2015550123")
	require.NoError(t, err)
	assert.Contains(t, out, "formatted:   (201) 555-0123")
	assert.Contains(t, out, "valid:       true")
	assert.Contains(t, out, "e164:        +12015550123")

	out, err = execute(t, "format", "--country", "US", "20155")
	require.NoError(t, err)
	assert.Contains(t, out, "valid:       false")
	assert.NotContains(t, out, "e164")
}

func TestCountriesCommand(t *testing.T) {
	out, err := execute(t, "countries", "AU")
	require.NoError(t, err)
	assert.Contains(t, out, "State / Territory")
	assert.Contains(t, out, "NSW")

	_, err = execute(t, "countries", "QQ")
	assert.ErrorContains(t, err, `unknown country "QQ"`)
}

func TestSubscribeCommand_TermsRequired(t *testing.T) {
	_, err := execute(t, "subscribe", "--mock", "--backend", "http://127.0.0.1:1",
		"--name", "Ada", "--email", "ada@example.com", "--phone", "2015550123",
		"--card", "4242424242424242", "--exp", "12/30", "--cvc", "123",
		"--line1", "1 Main St", "--city", "Springfield", "--postal-code", "62701", "--state", "IL")
	assert.ErrorContains(t, err, "You must agree to the purchase terms.")
}

func TestParseExpiry(t *testing.T) {
	m, y, err := parseExpiry("07/29")
	require.NoError(t, err)
	assert.Equal(t, int64(7), m)
	assert.Equal(t, int64(2029), y)

	_, _, err = parseExpiry("13/29")
	assert.Error(t, err)
	_, _, err = parseExpiry("0729")
	assert.Error(t, err)
}

func TestSubmitContext(t *testing.T) {
	ctx, cancel := submitContext(context.Background(), 50*time.Millisecond)
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok, "tokenization and the backend call share the deadline")
	assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 40*time.Millisecond)

	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)

	unbounded, cancel2 := submitContext(context.Background(), 0)
	defer cancel2()
	_, ok = unbounded.Deadline()
	assert.False(t, ok)
}
