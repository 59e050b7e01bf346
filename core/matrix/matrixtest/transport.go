// Package matrixtest provides an in-memory stand-in for the Matrix client.
package matrixtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CoinBot/core/matrix"
)

// Sent is one event the code under test sent.
type Sent struct {
	RoomID  string
	Type    string
	EventID string
	Content map[string]any
}

// Body returns content.body, or "" for events without one.
func (s Sent) Body() string {
	body, _ := s.Content["body"].(string)
	return body
}

type Redaction struct {
	RoomID, EventID, Reason string
}

// Transport records everything sent through it and serves events, members and
// profiles from maps the test fills in.
type Transport struct {
	mu           sync.Mutex
	self         string
	counter      int
	events       map[string]*matrix.RawEvent
	members      map[string][]matrix.Member
	profiles     map[string]matrix.Profile
	sent         []Sent
	redactions   []Redaction
	roomProfiles map[string]matrix.Profile

	// SendErr, when set, fails every send.
	SendErr error
}

func New(self string) *Transport {
	return &Transport{
		self:         self,
		events:       map[string]*matrix.RawEvent{},
		members:      map[string][]matrix.Member{},
		profiles:     map[string]matrix.Profile{},
		roomProfiles: map[string]matrix.Profile{},
	}
}

func (t *Transport) UserID() string {
	return t.self
}

// AddMember joins userID to roomID with an optional display name.
func (t *Transport) AddMember(roomID, userID, displayName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.members[roomID] = append(t.members[roomID], matrix.Member{UserID: userID, DisplayName: displayName})
}

func (t *Transport) SetProfile(userID string, profile matrix.Profile) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.profiles[userID] = profile
}

// AddEvent stores an event so GetEvent can find it.
func (t *Transport) AddEvent(event *matrix.RawEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events[event.EventID] = event
}

func (t *Transport) SendEvent(_ context.Context, roomID, eventType string, content any) (string, error) {
	if t.SendErr != nil {
		return "", t.SendErr
	}
	m, err := matrix.ToMap(content)
	if err != nil {
		return "", err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counter++
	eventID := fmt.Sprintf("$sent%d", t.counter)
	t.sent = append(t.sent, Sent{RoomID: roomID, Type: eventType, EventID: eventID, Content: m})
	t.events[eventID] = &matrix.RawEvent{
		EventID:        eventID,
		Type:           eventType,
		Sender:         t.self,
		RoomID:         roomID,
		OriginServerTS: time.Now().UnixMilli(),
		Content:        m,
	}
	return eventID, nil
}

func (t *Transport) GetEvent(_ context.Context, roomID, eventID string) (*matrix.RawEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	event, ok := t.events[eventID]
	if !ok || (event.RoomID != "" && event.RoomID != roomID) {
		return nil, &matrix.MatrixError{Code: matrix.ErrCodeNotFound, Message: "Event not found", StatusCode: 404}
	}
	copied := *event
	return &copied, nil
}

func (t *Transport) Redact(_ context.Context, roomID, eventID, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.redactions = append(t.redactions, Redaction{RoomID: roomID, EventID: eventID, Reason: reason})
	return nil
}

func (t *Transport) Profile(_ context.Context, userID string) (*matrix.Profile, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	profile, ok := t.profiles[userID]
	if !ok {
		return nil, &matrix.MatrixError{Code: matrix.ErrCodeNotFound, Message: "Profile not found", StatusCode: 404}
	}
	return &profile, nil
}

func (t *Transport) RoomMembers(_ context.Context, roomID string) ([]matrix.Member, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]matrix.Member(nil), t.members[roomID]...), nil
}

func (t *Transport) SetRoomProfile(_ context.Context, roomID string, profile matrix.Profile) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.roomProfiles[roomID] = profile
	return nil
}

// Sent returns a copy of everything sent so far.
func (t *Transport) Sent() []Sent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Sent(nil), t.sent...)
}

// Bodies returns the body of every sent event, in order.
func (t *Transport) Bodies() []string {
	var bodies []string
	for _, sent := range t.Sent() {
		bodies = append(bodies, sent.Body())
	}
	return bodies
}

// LastSent returns the most recent send. It panics if nothing was sent.
func (t *Transport) LastSent() Sent {
	sent := t.Sent()
	if len(sent) == 0 {
		panic("matrixtest: nothing was sent")
	}
	return sent[len(sent)-1]
}

func (t *Transport) Redactions() []Redaction {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Redaction(nil), t.redactions...)
}

func (t *Transport) RoomProfile(roomID string) (matrix.Profile, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	profile, ok := t.roomProfiles[roomID]
	return profile, ok
}

// Reset forgets sent events and redactions.
func (t *Transport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = nil
	t.redactions = nil
}
