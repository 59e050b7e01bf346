package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeURL(t *testing.T) {
	assert.Equal(t, "https://hs/sync", MakeURL("https://hs/sync", nil))
	assert.Equal(t, "https://hs/sync?since=s1&timeout=30000",
		MakeURL("https://hs/sync", []URLParams{{"since", "s1"}, {"timeout", "30000"}, {"filter", ""}}))
	assert.Equal(t, "https://hs/members?a=1&membership=join",
		MakeURL("https://hs/members?a=1", []URLParams{{"membership", "join"}}))
}

func TestMatchesAnyGlob(t *testing.T) {
	patterns := []string{"@spam*:example.org", "@*:evil.net", "[bad"}
	assert.True(t, MatchesAnyGlob(patterns, "@spammer:example.org"))
	assert.True(t, MatchesAnyGlob(patterns, "@anyone:evil.net"))
	assert.False(t, MatchesAnyGlob(patterns, "@alice:example.org"))
	assert.False(t, MatchesAnyGlob(nil, "@alice:example.org"))
}

type fixedRandom struct{ n int }

func (f fixedRandom) IntN(int) int     { return f.n }
func (f fixedRandom) Float64() float64 { return 0 }

func TestRandomBetween(t *testing.T) {
	assert.Equal(t, 50, RandomBetween(fixedRandom{0}, 50, 400))
	assert.Equal(t, 400, RandomBetween(fixedRandom{350}, 50, 400))
	assert.Equal(t, 7, RandomBetween(fixedRandom{3}, 7, 7))
	for i := 0; i < 100; i++ {
		v := RandomBetween(DefaultRandom, 1, 3)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 3)
	}
}

func TestSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
}

func TestLoadSettingsWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"Homeserver": "https://matrix.example.org",
		"CommandPrefix": "$",
		"Admins": ["@root:example.org"],
		"ResponseCooldownSeconds": 30
	}`), 0o600))
	t.Setenv("COINBOT_ACCESS_TOKEN", "syt_token")
	t.Setenv("COINBOT_BANNED", "@a:x,@b:*")

	require.NoError(t, LoadSettings(file))
	assert.Equal(t, "https://matrix.example.org", Settings.Homeserver())
	assert.Equal(t, "$", Settings.CommandPrefix())
	assert.Equal(t, "syt_token", Settings.AccessToken())
	assert.Equal(t, []string{"@root:example.org"}, Settings.Admins())
	assert.Equal(t, []string{"@a:x", "@b:*"}, Settings.Banned())
	assert.Equal(t, 30*time.Second, Settings.ResponseCooldown())
	assert.Equal(t, "coinbot.db", Settings.Database())
	assert.Equal(t, 2*time.Minute, Settings.CommandTimeout())
}

func TestLoadSettingsMissingFile(t *testing.T) {
	assert.Error(t, LoadSettings(filepath.Join(t.TempDir(), "missing.json")))
}

func TestCredentialsRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "credentials.json")
	_, err := LoadCredentials(file)
	assert.ErrorIs(t, err, ErrNoCredentials)

	require.NoError(t, SaveCredentials(file, &Credentials{UserID: "@bot:x", AccessToken: "tok"}))
	creds, err := LoadCredentials(file)
	require.NoError(t, err)
	assert.Equal(t, "@bot:x", creds.UserID)
	assert.Equal(t, "tok", creds.AccessToken)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, ParseLogLevel("info"), ParseLogLevel("nonsense"))
	assert.NotEqual(t, ParseLogLevel("debug"), ParseLogLevel("error"))
}
