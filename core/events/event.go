// Package events turns raw Matrix room events into the two kinds the bot
// understands, text messages and reactions, and sends replies, edits and
// reactions back through a Transport.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CoinBot/core/matrix"
)

var (
	ErrInvalidEventType = errors.New("invalid event type")
	ErrNoReactionFound  = errors.New("no reaction found")
	ErrNoTargetFound    = errors.New("no target found")
)

// Transport is what events need from the Matrix client. *matrix.Client
// implements it, as does matrixtest.Transport.
type Transport interface {
	UserID() string
	SendEvent(ctx context.Context, roomID, eventType string, content any) (string, error)
	GetEvent(ctx context.Context, roomID, eventID string) (*matrix.RawEvent, error)
	Redact(ctx context.Context, roomID, eventID, reason string) error
	Profile(ctx context.Context, userID string) (*matrix.Profile, error)
	RoomMembers(ctx context.Context, roomID string) ([]matrix.Member, error)
	SetRoomProfile(ctx context.Context, roomID string, profile matrix.Profile) error
}

type Kind int

const (
	KindText Kind = iota + 1
	KindReaction
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindReaction:
		return "reaction"
	default:
		return "unknown"
	}
}

// kinds is the complete wire type mapping. Anything else is dropped.
var kinds = map[string]Kind{
	matrix.EventMessage:  KindText,
	matrix.EventReaction: KindReaction,
}

// Event holds what every kind of event has in common.
type Event struct {
	ID          string
	RoomID      string
	Sender      string
	SentAt      time.Time
	Kind        Kind
	Content     map[string]any
	InReplyToID string

	transport Transport
}

// Any is either a *TextEvent or a *ReactionEvent.
type Any interface {
	Header() *Event
	sealed()
}

func (e *Event) Header() *Event { return e }
func (e *Event) sealed()        {}

// Transport returns the transport the event arrived on.
func (e *Event) Transport() Transport {
	return e.transport
}

// FromRaw classifies a wire event. Unknown types fail with ErrInvalidEventType.
func FromRaw(transport Transport, raw *matrix.RawEvent) (Any, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty event", ErrInvalidEventType)
	}
	kind, ok := kinds[raw.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEventType, raw.Type)
	}
	content := raw.Content
	if content == nil {
		content = map[string]any{}
	}
	base := Event{
		ID:          raw.EventID,
		RoomID:      raw.RoomID,
		Sender:      raw.Sender,
		SentAt:      time.UnixMilli(raw.OriginServerTS),
		Kind:        kind,
		Content:     content,
		InReplyToID: lookupString(content, "m.relates_to", "m.in_reply_to", "event_id"),
		transport:   transport,
	}
	switch kind {
	case KindText:
		return &TextEvent{Event: base}, nil
	case KindReaction:
		return &ReactionEvent{Event: base}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidEventType, raw.Type)
	}
}

// lookupString walks nested content objects and returns the string at the end
// of path, or "".
func lookupString(content map[string]any, path ...string) string {
	var current any = content
	for _, key := range path {
		object, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current = object[key]
	}
	s, _ := current.(string)
	return s
}

// fetchText loads an event by id and returns it if it is a message.
func fetchText(ctx context.Context, transport Transport, roomID, eventID string) (*TextEvent, error) {
	raw, err := transport.GetEvent(ctx, roomID, eventID)
	if matrix.IsMatrixError(err, matrix.ErrCodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if raw.RoomID == "" {
		raw.RoomID = roomID
	}
	event, err := FromRaw(transport, raw)
	if errors.Is(err, ErrInvalidEventType) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	text, _ := event.(*TextEvent)
	return text, nil
}
