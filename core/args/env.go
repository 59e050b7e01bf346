package args

import (
	"context"
	"sync"

	"CoinBot/core/database"
	"CoinBot/core/events"
	"CoinBot/core/matrix"

	"github.com/thoas/go-funk"
)

// Env is what argument kinds may look at while resolving one invocation: the
// triggering event, its transport and the store. Room members are fetched at
// most once.
type Env struct {
	Event *events.TextEvent
	Store database.KV

	once       sync.Once
	members    []matrix.Member
	membersErr error
}

func NewEnv(event *events.TextEvent, store database.KV) *Env {
	return &Env{Event: event, Store: store}
}

func (e *Env) Transport() events.Transport {
	return e.Event.Transport()
}

// Members returns the joined members of the invocation room.
func (e *Env) Members(ctx context.Context) ([]matrix.Member, error) {
	e.once.Do(func() {
		e.members, e.membersErr = e.Transport().RoomMembers(ctx, e.Event.RoomID)
	})
	return e.members, e.membersErr
}

func (e *Env) IsMember(ctx context.Context, userID string) (bool, error) {
	members, err := e.Members(ctx)
	if err != nil {
		return false, err
	}
	return funk.Find(members, func(m matrix.Member) bool { return m.UserID == userID }) != nil, nil
}
