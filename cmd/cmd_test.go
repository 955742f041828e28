package cmd

import (
	"bytes"
	"encoding/base64"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/example/lessonsched/internal/config"
	"github.com/example/lessonsched/internal/lesson"
	"github.com/example/lessonsched/internal/matcher"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	orig := logOutput
	logOutput = io.Discard
	t.Cleanup(func() { logOutput = orig })

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommands(t *testing.T) {
	var names []string
	for _, c := range NewRootCmd().Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"run", "once", "lessons", "login", "history", "ping", "keys", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "lessonsched dev (commit=none, built=unknown)\n", out)
}

func TestKeys_PrintsTokenKey(t *testing.T) {
	out, err := execute(t, "keys")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(out, "export TOKEN_KEY="))
	key := strings.TrimSpace(strings.TrimPrefix(out, "export TOKEN_KEY="))
	raw, err := base64.StdEncoding.DecodeString(key)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestKeys_DeleteNeedsKeyring(t *testing.T) {
	_, err := execute(t, "keys", "--delete")
	assert.ErrorContains(t, err, "--keyring")
}

func TestKeys_Keyring(t *testing.T) {
	keyring.MockInit()
	t.Setenv("KEYRING_SERVICE", "lessonsched-cmd-test")

	out, err := execute(t, "keys", "--keyring")
	require.NoError(t, err)
	assert.Contains(t, out, `keyring service "lessonsched-cmd-test"`)

	stored, err := keyring.Get("lessonsched-cmd-test", "token-secret")
	require.NoError(t, err)
	assert.NotEmpty(t, stored)

	_, err = execute(t, "keys", "--keyring", "--delete")
	require.NoError(t, err)
	_, err = keyring.Get("lessonsched-cmd-test", "token-secret")
	assert.ErrorIs(t, err, keyring.ErrNotFound)
}

func TestLessonsOffline_DefaultTargets(t *testing.T) {
	t.Setenv("TARGETS_FILE", "")
	out, err := execute(t, "lessons", "--offline")
	require.NoError(t, err)

	assert.Contains(t, out, "WEEKDAY")
	assert.Contains(t, out, "Tuesday")
	assert.Contains(t, out, "20:00")
	assert.Contains(t, out, "Pilates")
	assert.NotContains(t, out, "tolerance")
}

func TestLoginRequiresCredentials(t *testing.T) {
	t.Setenv("SPORTIVITY_USERNAME", "")
	t.Setenv("SPORTIVITY_PASSWORD", "")
	_, err := execute(t, "login")
	assert.ErrorContains(t, err, "SPORTIVITY_USERNAME")
}

func TestPrintTargets_Tolerance(t *testing.T) {
	var out bytes.Buffer
	err := printTargets(&out, config.Targets{
		ToleranceMinutes: 5,
		Lessons:          []matcher.Rule{{Type: "Yoga", Weekday: 3, Time: matcher.NewTimeOfDay(10, 30)}},
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Thursday")
	assert.Contains(t, out.String(), "10:30")
	assert.Contains(t, out.String(), "time tolerance: 5 minutes")
}

func TestPrintLessons(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)
	w := lesson.Window{OpenHours: 48, BufferMinutes: -5, AggressiveEndHours: 47}
	l := lesson.Lesson{
		ID:             "L-1",
		TypeName:       "Pilates",
		Start:          time.Date(2025, 11, 4, 20, 0, 0, 0, loc),
		Instructor:     "Anna",
		AvailableSpots: 3,
	}

	var out bytes.Buffer
	require.NoError(t, printLessons(&out, []lesson.Lesson{l}, w, time.Date(2025, 11, 2, 19, 56, 0, 0, loc)))
	assert.Contains(t, out.String(), "aggressive")
	assert.Contains(t, out.String(), "Sun 20:00")

	out.Reset()
	require.NoError(t, printLessons(&out, []lesson.Lesson{l}, w, time.Date(2025, 11, 3, 12, 0, 0, 0, loc)))
	assert.Contains(t, out.String(), "open")

	out.Reset()
	require.NoError(t, printLessons(&out, nil, w, time.Now()))
	assert.Equal(t, "no matching lessons in the lookahead window\n", out.String())
}
