package events

import (
	"context"
	"strings"
	"testing"

	"CoinBot/core/matrix"
	"CoinBot/core/matrix/matrixtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	botID  = "@coinbot:example.org"
	roomID = "!room:example.org"
)

func textRaw(id, sender, body string) *matrix.RawEvent {
	return &matrix.RawEvent{
		EventID: id, Type: matrix.EventMessage, Sender: sender, RoomID: roomID, OriginServerTS: 1000,
		Content: map[string]any{"msgtype": "m.text", "body": body},
	}
}

func TestFromRawKinds(t *testing.T) {
	transport := matrixtest.New(botID)

	ev, err := FromRaw(transport, textRaw("$1", "@alice:x", "  hello  "))
	require.NoError(t, err)
	text, ok := ev.(*TextEvent)
	require.True(t, ok)
	assert.Equal(t, KindText, text.Kind)
	assert.Equal(t, "hello", text.Body())
	assert.True(t, text.IsText())
	assert.Equal(t, int64(1000), text.SentAt.UnixMilli())
	assert.Equal(t, "@alice:x", ev.Header().Sender)

	ev, err = FromRaw(transport, &matrix.RawEvent{EventID: "$2", Type: matrix.EventReaction, RoomID: roomID,
		Content: map[string]any{"m.relates_to": map[string]any{"rel_type": "m.annotation", "event_id": "$1", "key": "👍"}}})
	require.NoError(t, err)
	reaction, ok := ev.(*ReactionEvent)
	require.True(t, ok)
	key, err := reaction.Reaction()
	require.NoError(t, err)
	assert.Equal(t, "👍", key)

	for _, eventType := range []string{"m.room.member", "m.room.redaction", "m.sticker", ""} {
		_, err = FromRaw(transport, &matrix.RawEvent{Type: eventType})
		assert.ErrorIs(t, err, ErrInvalidEventType, eventType)
	}
	_, err = FromRaw(transport, nil)
	assert.ErrorIs(t, err, ErrInvalidEventType)
}

func TestIsTextRejectsNotices(t *testing.T) {
	raw := textRaw("$1", "@alice:x", "hi")
	raw.Content["msgtype"] = "m.notice"
	ev, err := FromRaw(matrixtest.New(botID), raw)
	require.NoError(t, err)
	assert.False(t, ev.(*TextEvent).IsText())
}

func TestFormattedBody(t *testing.T) {
	raw := textRaw("$1", "@alice:x", "hi")
	raw.Content["formatted_body"] = "<b>hi</b>"
	ev, _ := FromRaw(matrixtest.New(botID), raw)
	assert.Empty(t, ev.(*TextEvent).FormattedBody(), "format must be declared")

	raw.Content["format"] = matrix.FormatHTML
	ev, _ = FromRaw(matrixtest.New(botID), raw)
	assert.Equal(t, "<b>hi</b>", ev.(*TextEvent).FormattedBody())
}

func TestReactionWithoutRelation(t *testing.T) {
	ev, err := FromRaw(matrixtest.New(botID), &matrix.RawEvent{EventID: "$r", Type: matrix.EventReaction, RoomID: roomID})
	require.NoError(t, err)
	reaction := ev.(*ReactionEvent)

	_, err = reaction.Reaction()
	assert.ErrorIs(t, err, ErrNoReactionFound)
	_, err = reaction.Target(context.Background())
	assert.ErrorIs(t, err, ErrNoTargetFound)
}

func TestReactionTarget(t *testing.T) {
	ctx := context.Background()
	transport := matrixtest.New(botID)
	transport.AddEvent(textRaw("$target", botID, "pong"))
	transport.AddEvent(&matrix.RawEvent{EventID: "$member", Type: "m.room.member", RoomID: roomID})

	reactTo := func(id string) *ReactionEvent {
		ev, err := FromRaw(transport, &matrix.RawEvent{EventID: "$r", Type: matrix.EventReaction, RoomID: roomID,
			Content: map[string]any{"m.relates_to": map[string]any{"event_id": id, "key": "🗑️"}}})
		require.NoError(t, err)
		return ev.(*ReactionEvent)
	}

	target, err := reactTo("$target").Target(ctx)
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, botID, target.Sender)

	target, err = reactTo("$member").Target(ctx)
	require.NoError(t, err)
	assert.Nil(t, target)

	target, err = reactTo("$missing").Target(ctx)
	require.NoError(t, err)
	assert.Nil(t, target)
}

func TestReplyTarget(t *testing.T) {
	ctx := context.Background()
	transport := matrixtest.New(botID)
	transport.AddEvent(textRaw("$orig", "@bob:x", "original"))

	plain, _ := FromRaw(transport, textRaw("$1", "@alice:x", "no reply"))
	target, err := plain.(*TextEvent).ReplyTarget(ctx)
	require.NoError(t, err)
	assert.Nil(t, target)

	raw := textRaw("$2", "@alice:x", "a reply")
	raw.Content["m.relates_to"] = map[string]any{"m.in_reply_to": map[string]any{"event_id": "$orig"}}
	reply, _ := FromRaw(transport, raw)
	assert.Equal(t, "$orig", reply.Header().InReplyToID)
	target, err = reply.(*TextEvent).ReplyTarget(ctx)
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, "original", target.Body())
}

func TestReplyRendersMarkdownAndMentions(t *testing.T) {
	ctx := context.Background()
	transport := matrixtest.New(botID)
	ev, _ := FromRaw(transport, textRaw("$1", "@alice:x", "!give"))

	sent, err := ev.(*TextEvent).Reply(ctx, Text("Gave **B$50.00** to @bob:x.org", "@bob:x.org"))
	require.NoError(t, err)
	assert.Equal(t, botID, sent.Sender)
	assert.Equal(t, "$1", sent.InReplyToID)

	last := transport.LastSent()
	assert.Equal(t, matrix.EventMessage, last.Type)
	assert.Equal(t, "m.notice", last.Content["msgtype"])
	assert.Equal(t, "Gave **B$50.00** to @bob:x.org", last.Content["body"])
	assert.Equal(t, matrix.FormatHTML, last.Content["format"])
	assert.Equal(t,
		`<p>Gave <strong>B$50.00</strong> to <a href="https://matrix.to/#/@bob:x.org">@bob:x.org</a></p>`,
		last.Content["formatted_body"])
	assert.Equal(t, map[string]any{"user_ids": []any{"@alice:x", "@bob:x.org"}}, last.Content["m.mentions"])
	assert.Equal(t, map[string]any{"m.in_reply_to": map[string]any{"event_id": "$1"}}, last.Content["m.relates_to"])
}

func TestMentionsLinkOnlyInText(t *testing.T) {
	rendered := renderHTML("`@bob:x.org` pinged @bob:x.org and [@bob:x.org](https://matrix.to/#/@bob:x.org)", []string{"@bob:x.org"})

	assert.Contains(t, rendered, "<code>@bob:x.org</code>")
	assert.Contains(t, rendered, ` pinged <a href="https://matrix.to/#/@bob:x.org">@bob:x.org</a> and `)
	assert.Equal(t, 2, strings.Count(rendered, "<a "))
	assert.Equal(t, 2, strings.Count(rendered, "</a>"))

	block := renderHTML("```\n@bob:x.org\n```", []string{"@bob:x.org"})
	assert.NotContains(t, block, "<a ")
}

func TestEditAndReact(t *testing.T) {
	ctx := context.Background()
	transport := matrixtest.New(botID)
	ev, _ := FromRaw(transport, textRaw("$1", "@alice:x", "!roulette 10"))
	text := ev.(*TextEvent)

	spinning, err := text.Reply(ctx, Text("Spinning..."))
	require.NoError(t, err)
	_, err = spinning.Edit(ctx, Text("Landed on 3"))
	require.NoError(t, err)

	edit := transport.LastSent()
	assert.Equal(t, "* Landed on 3", edit.Content["body"])
	assert.Equal(t, map[string]any{"rel_type": "m.replace", "event_id": spinning.ID}, edit.Content["m.relates_to"])
	newContent := edit.Content["m.new_content"].(map[string]any)
	assert.Equal(t, "Landed on 3", newContent["body"])

	_, err = text.React(ctx, "💰")
	require.NoError(t, err)
	react := transport.LastSent()
	assert.Equal(t, matrix.EventReaction, react.Type)
	assert.Equal(t, map[string]any{"rel_type": "m.annotation", "event_id": "$1", "key": "💰"}, react.Content["m.relates_to"])
}

func TestReplyMedia(t *testing.T) {
	transport := matrixtest.New(botID)
	ev, _ := FromRaw(transport, textRaw("$1", "@alice:x", "!avatar"))
	_, err := ev.(*TextEvent).ReplyMedia(context.Background(), Media{URL: "mxc://x/abc", Name: "avatar"})
	require.NoError(t, err)
	last := transport.LastSent()
	assert.Equal(t, "m.image", last.Content["msgtype"])
	assert.Equal(t, "mxc://x/abc", last.Content["url"])

	_, err = ev.(*TextEvent).ReplyMedia(context.Background(), Media{URL: "mxc://x/s", Name: "sticker", Sticker: true})
	require.NoError(t, err)
	last = transport.LastSent()
	assert.Equal(t, "m.sticker", last.Type)
	assert.NotContains(t, last.Content, "msgtype")
}
