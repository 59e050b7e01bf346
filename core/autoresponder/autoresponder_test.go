package autoresponder

import (
	"context"
	"testing"
	"time"

	"CoinBot/core/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRandom int

func (f fixedRandom) IntN(int) int     { return int(f) }
func (f fixedRandom) Float64() float64 { return 0 }

func newResponder(t *testing.T, entries []Entry) *Responder {
	store, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(entries, store, time.Minute, fixedRandom(1))
}

func TestDefaultEntries(t *testing.T) {
	entries, err := DefaultEntries()
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, entry := range entries {
		assert.NotEmpty(t, entry.Keyword)
		assert.NotEmpty(t, entry.Responses, entry.Keyword)
	}
}

func TestDetectFirstMatchWins(t *testing.T) {
	r := newResponder(t, []Entry{
		{Keyword: "Stonks", Responses: []string{"a"}},
		{Keyword: "bot", Responses: []string{"b"}},
		{Keyword: "empty"},
	})
	entry, ok := r.Detect("this bot says STONKS")
	require.True(t, ok)
	assert.Equal(t, "Stonks", entry.Keyword)

	_, ok = r.Detect("nothing here")
	assert.False(t, ok)
	_, ok = r.Detect("empty table entries never match")
	assert.False(t, ok)
}

func TestRespondCooldownPerRoom(t *testing.T) {
	ctx := context.Background()
	r := newResponder(t, []Entry{{Keyword: "stonks", Responses: []string{"first", "second"}}})
	now := time.UnixMilli(1_700_000_000_000)

	response, ok, err := r.Respond(ctx, "!a:x", "stonks!", now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", response)

	_, ok, err = r.Respond(ctx, "!a:x", "stonks again", now.Add(30*time.Second))
	require.NoError(t, err)
	assert.False(t, ok, "same room is cooling down")

	_, ok, err = r.Respond(ctx, "!b:x", "stonks", now.Add(30*time.Second))
	require.NoError(t, err)
	assert.True(t, ok, "other rooms are independent")

	_, ok, err = r.Respond(ctx, "!a:x", "stonks", now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = r.Respond(ctx, "!a:x", "no keyword", now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)
}
