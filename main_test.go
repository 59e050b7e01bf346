package main

import (
	"context"
	"testing"

	"CoinBot/core/database"
	"CoinBot/core/dispatch"
	"CoinBot/core/events"
	"CoinBot/core/matrix"
	"CoinBot/core/matrix/matrixtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDispatcherWiresCommandsAndResponder(t *testing.T) {
	store, err := database.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	transport := matrixtest.New("@coinbot:example.org")
	transport.AddMember("!room:example.org", "@alice:example.org", "Alice")

	dispatcher, err := newDispatcher(transport, store)
	require.NoError(t, err)

	send := func(id, body string) dispatch.Outcome {
		event, err := events.FromRaw(transport, &matrix.RawEvent{
			EventID: id,
			Type:    matrix.EventMessage,
			Sender:  "@alice:example.org",
			RoomID:  "!room:example.org",
			Content: map[string]any{"msgtype": "m.text", "body": body},
		})
		require.NoError(t, err)
		return dispatcher.Dispatch(context.Background(), event)
	}

	assert.Equal(t, dispatch.Executed, send("$1", "!ping"))
	assert.Equal(t, "Pong!", transport.LastSent().Body())

	assert.Equal(t, dispatch.Autoresponded, send("$2", "stonks only go up"))
}
