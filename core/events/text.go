package events

import (
	"context"
	"strings"
	"time"

	"CoinBot/core/matrix"
)

// TextEvent is an m.room.message.
type TextEvent struct {
	Event
}

// Body is the trimmed plain text body.
func (e *TextEvent) Body() string {
	body, _ := e.Content["body"].(string)
	return strings.TrimSpace(body)
}

// FormattedBody is the HTML body, or "" when the message has none.
func (e *TextEvent) FormattedBody() string {
	if format, _ := e.Content["format"].(string); format != matrix.FormatHTML {
		return ""
	}
	body, _ := e.Content["formatted_body"].(string)
	return body
}

func (e *TextEvent) MsgType() string {
	msgType, _ := e.Content["msgtype"].(string)
	return msgType
}

// IsText reports whether this is a plain user message. Notices, emotes and
// media are not.
func (e *TextEvent) IsText() bool {
	return e.MsgType() == matrix.MsgText
}

// ReplyTarget resolves the message this one replies to. It returns nil when
// there is no reply relation or the target is gone or not a message.
func (e *TextEvent) ReplyTarget(ctx context.Context) (*TextEvent, error) {
	if e.InReplyToID == "" {
		return nil, nil
	}
	return fetchText(ctx, e.transport, e.RoomID, e.InReplyToID)
}

// Reply sends msg as a notice in reply to this event, mentioning the sender.
func (e *TextEvent) Reply(ctx context.Context, msg Message) (*TextEvent, error) {
	msg.Mentions = append([]string{e.Sender}, msg.Mentions...)
	content := msg.content()
	content.RelatesTo = &matrix.RelatesTo{InReplyTo: &matrix.InReplyTo{EventID: e.ID}}
	return e.send(ctx, matrix.EventMessage, content)
}

// ReplyMedia sends an image or sticker in reply to this event.
func (e *TextEvent) ReplyMedia(ctx context.Context, media Media) (*TextEvent, error) {
	content := media.content()
	content.RelatesTo = &matrix.RelatesTo{InReplyTo: &matrix.InReplyTo{EventID: e.ID}}
	return e.send(ctx, media.eventType(), content)
}

// Edit replaces the text of this event, which must be one the bot sent.
func (e *TextEvent) Edit(ctx context.Context, msg Message) (string, error) {
	replacement := msg.content()
	content := &matrix.MessageContent{
		MsgType:       replacement.MsgType,
		Body:          "* " + replacement.Body,
		Format:        replacement.Format,
		FormattedBody: "* " + replacement.FormattedBody,
		Mentions:      replacement.Mentions,
		NewContent:    replacement,
		RelatesTo:     &matrix.RelatesTo{RelType: matrix.RelReplace, EventID: e.ID},
	}
	return e.transport.SendEvent(ctx, e.RoomID, matrix.EventMessage, content)
}

// React annotates this event with key, usually an emoji.
func (e *TextEvent) React(ctx context.Context, key string) (string, error) {
	return e.transport.SendEvent(ctx, e.RoomID, matrix.EventReaction, matrix.ReactionContent{
		RelatesTo: matrix.RelatesTo{RelType: matrix.RelAnnotation, EventID: e.ID, Key: key},
	})
}

// send builds the TextEvent for what was sent from the content itself rather
// than fetching it back from the homeserver.
func (e *TextEvent) send(ctx context.Context, eventType string, content *matrix.MessageContent) (*TextEvent, error) {
	eventID, err := e.transport.SendEvent(ctx, e.RoomID, eventType, content)
	if err != nil {
		return nil, err
	}
	m, err := matrix.ToMap(content)
	if err != nil {
		return nil, err
	}
	return &TextEvent{Event: Event{
		ID:          eventID,
		RoomID:      e.RoomID,
		Sender:      e.transport.UserID(),
		SentAt:      time.Now(),
		Kind:        KindText,
		Content:     m,
		InReplyToID: e.ID,
		transport:   e.transport,
	}}, nil
}
