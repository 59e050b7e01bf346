// Package autoresponder answers ordinary room chatter that contains one of a
// fixed set of keywords, at most once per cooldown window per room.
package autoresponder

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"CoinBot/core"
	"CoinBot/core/database"
)

// cooldownHash stores the time of the last response per room.
const cooldownHash = "autoresponder"

//go:embed responses.json
var defaultTable []byte

// Entry is one keyword and the responses to pick from.
type Entry struct {
	Keyword   string   `json:"keyword"`
	Responses []string `json:"responses"`
}

type Responder struct {
	entries  []Entry
	kv       database.KV
	cooldown time.Duration
	rand     core.Random
}

// DefaultEntries is the built-in keyword table.
func DefaultEntries() ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(defaultTable, &entries); err != nil {
		return nil, fmt.Errorf("decode responses: %w", err)
	}
	return entries, nil
}

func New(entries []Entry, kv database.KV, cooldown time.Duration, rand core.Random) *Responder {
	return &Responder{entries: entries, kv: kv, cooldown: cooldown, rand: rand}
}

// Detect returns the first entry whose keyword occurs in message, ignoring case.
func (r *Responder) Detect(message string) (Entry, bool) {
	message = strings.ToLower(message)
	for _, entry := range r.entries {
		if len(entry.Responses) > 0 && strings.Contains(message, strings.ToLower(entry.Keyword)) {
			return entry, true
		}
	}
	return Entry{}, false
}

// Respond picks a response for message if it matches a keyword and the room
// is not cooling down, and records the response time.
func (r *Responder) Respond(ctx context.Context, roomID, message string, now time.Time) (string, bool, error) {
	entry, ok := r.Detect(message)
	if !ok {
		return "", false, nil
	}

	raw, found, err := r.kv.HashField(ctx, cooldownHash, roomID)
	if err != nil {
		return "", false, err
	}
	if found {
		var last int64
		if _, err := fmt.Sscan(raw, &last); err == nil && now.Sub(time.UnixMilli(last)) < r.cooldown {
			core.LogDebugF("Autoresponder cooling down in %s", roomID)
			return "", false, nil
		}
	}
	if err := r.kv.SetHashField(ctx, cooldownHash, roomID, fmt.Sprint(now.UnixMilli())); err != nil {
		return "", false, err
	}
	return entry.Responses[r.rand.IntN(len(entry.Responses))], true, nil
}
