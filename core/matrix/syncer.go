package matrix

import (
	"context"
	"errors"
	"time"

	"CoinBot/core"
)

// timelineFilter keeps sync responses down to what the bot reacts to.
const timelineFilter = `{"presence":{"types":[]},"account_data":{"types":[]},` +
	`"room":{"state":{"lazy_load_members":true},"ephemeral":{"types":[]},` +
	`"timeline":{"types":["m.room.message","m.reaction"]}}}`

// EventHandler receives every timeline event of a joined room, in the order the
// homeserver delivered them.
type EventHandler func(ctx context.Context, roomID string, event *RawEvent)

type Syncer struct {
	client       *Client
	pollTimeout  time.Duration
	retryBackoff time.Duration
	// AutoJoin accepts every room invite.
	AutoJoin bool
}

func NewSyncer(client *Client) *Syncer {
	return &Syncer{
		client:       client,
		pollTimeout:  30 * time.Second,
		retryBackoff: 5 * time.Second,
		AutoJoin:     true,
	}
}

// Run long-polls sync until ctx is cancelled. Events older than the first
// sync are skipped so a restart does not replay room history.
func (s *Syncer) Run(ctx context.Context, handler EventHandler) error {
	since := ""
	for since == "" {
		response, err := s.client.Sync(ctx, SyncOptions{Filter: timelineFilter})
		if err != nil {
			if waitErr := s.backoff(ctx, err); waitErr != nil {
				return waitErr
			}
			continue
		}
		since = response.NextBatch
		s.joinInvites(ctx, response)
	}
	core.LogInfoF("Initial sync done, listening for events")

	for {
		response, err := s.client.Sync(ctx, SyncOptions{Since: since, Timeout: s.pollTimeout, Filter: timelineFilter})
		if err != nil {
			if waitErr := s.backoff(ctx, err); waitErr != nil {
				return waitErr
			}
			continue
		}
		since = response.NextBatch
		s.joinInvites(ctx, response)
		for roomID, room := range response.Rooms.Join {
			for i := range room.Timeline.Events {
				event := &room.Timeline.Events[i]
				event.RoomID = roomID
				handler(ctx, roomID, event)
			}
		}
	}
}

func (s *Syncer) backoff(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if IsMatrixError(err, ErrCodeUnknownToken) {
		return err
	}
	wait := s.retryBackoff
	if retry, ok := RetryAfter(err); ok && retry > 0 {
		wait = retry
	}
	core.LogWarnF("Sync failed, retrying in %s: %s", wait, err)
	if err := core.Sleep(ctx, wait); err != nil {
		return err
	}
	return nil
}

func (s *Syncer) joinInvites(ctx context.Context, response *SyncResponse) {
	if !s.AutoJoin {
		return
	}
	for roomID := range response.Rooms.Invite {
		if err := s.client.JoinRoom(ctx, roomID); err != nil {
			if !errors.Is(err, context.Canceled) {
				core.LogErrorF("Failed to join %s: %s", roomID, err)
			}
			continue
		}
		core.LogInfoF("Joined %s", roomID)
	}
}
