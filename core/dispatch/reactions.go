package dispatch

import (
	"context"

	"CoinBot/core"
	"CoinBot/core/events"

	"github.com/thoas/go-funk"
)

// trashReactions delete the bot message they are put on.
var trashReactions = []string{"🗑️", "🗑", "🚮", "❌"}

func (d *Dispatcher) handleReaction(ctx context.Context, event *events.ReactionEvent) Outcome {
	key, err := event.Reaction()
	if err != nil || !funk.ContainsString(trashReactions, key) {
		return Ignored
	}
	target, err := event.Target(ctx)
	if err != nil {
		core.LogWarnF("Could not load reaction target in %s: %v", event.RoomID, err)
		return Ignored
	}
	if target == nil || target.Sender != d.deps.Transport.UserID() {
		return Ignored
	}
	if err := d.deps.Transport.Redact(ctx, event.RoomID, target.ID, "Removed by "+event.Sender); err != nil {
		core.LogErrorF("Failed to redact %s: %v", target.ID, err)
		return Failed
	}
	return Reacted
}
