package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SPORTIVITY_USERNAME", "user@example.com")
	t.Setenv("SPORTIVITY_PASSWORD", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://bossnl.mendixcloud.com", cfg.Sportivity.BaseURL)
	assert.True(t, cfg.Sportivity.DryRun)
	assert.Equal(t, 48, cfg.Booking.WindowHours)
	assert.Equal(t, -5, cfg.Booking.BufferMinutes)
	assert.Equal(t, 47, cfg.Booking.WindowEndHours)
	assert.Equal(t, []int{9, 12, 15, 18}, cfg.Booking.RetryHours)
	assert.Equal(t, 5*time.Minute, cfg.Booking.RetryInterval)
	assert.Equal(t, 15*time.Minute, cfg.Booking.CheckInterval)
	assert.Equal(t, 9, cfg.Booking.LookaheadDays)
	assert.Equal(t, "Europe/Amsterdam", cfg.Timezone)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("RETRY_HOURS", "8,20")
	t.Setenv("CHECK_INTERVAL", "30m")
	t.Setenv("DRY_RUN", "false")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []int{8, 20}, cfg.Booking.RetryHours)
	assert.Equal(t, 30*time.Minute, cfg.Booking.CheckInterval)
	assert.False(t, cfg.Sportivity.DryRun)
	assert.Equal(t, int64(-1001234), cfg.Notify.TelegramChatID)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing credentials", func(c *Config) { c.Sportivity.Password = "" }},
		{"missing url", func(c *Config) { c.Sportivity.BaseURL = "" }},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{"end after open", func(c *Config) { c.Booking.WindowEndHours = 48 }},
		{"retry hour out of range", func(c *Config) { c.Booking.RetryHours = []int{24} }},
		{"zero interval", func(c *Config) { c.Booking.RetryInterval = 0 }},
		{"no lookahead", func(c *Config) { c.Booking.LookaheadDays = 0 }},
		{"zero recovery interval", func(c *Config) { c.Booking.RecoveryInterval = 0 }},
		{"negative booking pause", func(c *Config) { c.Booking.BookingPause = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewTestConfig()
			require.NoError(t, cfg.Validate())
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadTargets_Default(t *testing.T) {
	targets, err := LoadTargets(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	assert.Len(t, targets.Lessons, 7)
	assert.ElementsMatch(t, []string{
		"BBB (billen, buik, benen)", "BBB (Billen, Buik, Benen)",
		"Pilates", "Kick Fun", "H.I.I.T.", "Yoga",
	}, targets.Types)
	assert.Equal(t, 0, targets.ToleranceMinutes)

	first := targets.Lessons[0]
	assert.Equal(t, 1, first.Weekday)
	assert.Equal(t, "19:00", first.Time.String())
}

func TestLoadTargets_File(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/targets.toml", []byte(`
types = ["Yoga", "Spinning"]
tolerance_minutes = 2

[[lesson]]
type = "Yoga"
weekday = 6
time = "08:15"
`), 0o644))

	targets, err := LoadTargets(fs, "/etc/targets.toml")
	require.NoError(t, err)
	assert.Equal(t, []string{"Yoga", "Spinning"}, targets.Types)

	mc := targets.MatcherConfig()
	assert.Equal(t, 2*time.Minute, mc.Tolerance)
	require.Len(t, mc.Rules, 1)
	assert.Equal(t, "08:15", mc.Rules[0].Time.String())
}

func TestLoadTargets_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/bad-time.toml": "[[lesson]]\ntype = \"Yoga\"\nweekday = 1\ntime = \"25:00\"\n",
		"/bad-day.toml":  "[[lesson]]\ntype = \"Yoga\"\nweekday = 9\ntime = \"10:00\"\n",
		"/unknown.toml":  "colour = \"blue\"\n[[lesson]]\ntype = \"Yoga\"\nweekday = 1\ntime = \"10:00\"\n",
		"/empty.toml":    "",
	}
	for name, body := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(body), 0o644))
		_, err := LoadTargets(fs, name)
		assert.Error(t, err, name)
	}

	_, err := LoadTargets(fs, "/missing.toml")
	assert.Error(t, err)
}
