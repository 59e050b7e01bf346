package dispatch

import (
	"context"
	"sync"

	"CoinBot/core/events"
)

type waiterKey struct {
	roomID, userID string
}

// Waiters hands the next message a user sends in a room to a command that is
// waiting for it. A delivered message does not go through the pipeline.
type Waiters struct {
	mu      sync.Mutex
	pending map[waiterKey][]chan *events.TextEvent
}

func NewWaiters() *Waiters {
	return &Waiters{pending: map[waiterKey][]chan *events.TextEvent{}}
}

// Next blocks until userID sends a message in roomID or ctx is done.
func (w *Waiters) Next(ctx context.Context, roomID, userID string) (*events.TextEvent, error) {
	key := waiterKey{roomID, userID}
	ch := make(chan *events.TextEvent, 1)

	w.mu.Lock()
	w.pending[key] = append(w.pending[key], ch)
	w.mu.Unlock()

	select {
	case event := <-ch:
		return event, nil
	case <-ctx.Done():
		w.remove(key, ch)
		// A message may have been delivered while we were giving up.
		select {
		case event := <-ch:
			return event, nil
		default:
		}
		return nil, ctx.Err()
	}
}

// Pending reports how many commands wait on userID in roomID.
func (w *Waiters) Pending(roomID, userID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending[waiterKey{roomID, userID}])
}

// deliver gives event to the oldest waiter for its room and sender.
func (w *Waiters) deliver(event *events.TextEvent) bool {
	key := waiterKey{event.RoomID, event.Sender}

	w.mu.Lock()
	defer w.mu.Unlock()
	queue := w.pending[key]
	if len(queue) == 0 {
		return false
	}
	ch := queue[0]
	if len(queue) == 1 {
		delete(w.pending, key)
	} else {
		w.pending[key] = queue[1:]
	}
	ch <- event
	return true
}

func (w *Waiters) remove(key waiterKey, ch chan *events.TextEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()
	queue := w.pending[key]
	for i, c := range queue {
		if c == ch {
			queue = append(queue[:i:i], queue[i+1:]...)
			break
		}
	}
	if len(queue) == 0 {
		delete(w.pending, key)
	} else {
		w.pending[key] = queue
	}
}
