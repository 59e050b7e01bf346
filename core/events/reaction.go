package events

import "context"

// ReactionEvent is an m.reaction annotating another event.
type ReactionEvent struct {
	Event
}

// Reaction is the annotation key, usually an emoji.
func (e *ReactionEvent) Reaction() (string, error) {
	key := lookupString(e.Content, "m.relates_to", "key")
	if key == "" {
		return "", ErrNoReactionFound
	}
	return key, nil
}

// TargetID is the id of the annotated event.
func (e *ReactionEvent) TargetID() (string, error) {
	id := lookupString(e.Content, "m.relates_to", "event_id")
	if id == "" {
		return "", ErrNoTargetFound
	}
	return id, nil
}

// Target resolves the annotated event. It returns nil when the target is gone
// or is not a message.
func (e *ReactionEvent) Target(ctx context.Context) (*TextEvent, error) {
	id, err := e.TargetID()
	if err != nil {
		return nil, err
	}
	return fetchText(ctx, e.transport, e.RoomID, id)
}
