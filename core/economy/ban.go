package economy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Ban is a stored ban record. Duration 0 means permanent.
type Ban struct {
	Reason    string `json:"reason"`
	Timestamp int64  `json:"timestamp"` // unix ms
	Duration  int64  `json:"duration"`  // seconds
}

func (b Ban) Permanent() bool {
	return b.Duration == 0
}

func (b Ban) ExpiresAt() time.Time {
	return time.UnixMilli(b.Timestamp).Add(time.Duration(b.Duration) * time.Second)
}

// Expired reports whether the ban no longer applies at now.
func (b Ban) Expired(now time.Time) bool {
	return !b.Permanent() && !now.Before(b.ExpiresAt())
}

// CooldownRemaining is how long a command used at lastUsed stays locked at now.
// Zero or negative means the command may run.
func CooldownRemaining(now, lastUsed time.Time, window time.Duration) time.Duration {
	return lastUsed.Add(window).Sub(now)
}

// BanUser records a ban starting at now. A zero duration bans permanently.
func (u User) BanUser(ctx context.Context, now time.Time, duration time.Duration, reason string) error {
	raw, err := json.Marshal(Ban{Reason: reason, Timestamp: now.UnixMilli(), Duration: int64(duration / time.Second)})
	if err != nil {
		return err
	}
	return u.kv.SetHashField(ctx, bansHash, u.ID, string(raw))
}

func (u User) Unban(ctx context.Context) error {
	return u.kv.DeleteHashField(ctx, bansHash, u.ID)
}

// ActiveBan returns the ban in force at now, or nil. An expired record is
// deleted on the way.
func (u User) ActiveBan(ctx context.Context, now time.Time) (*Ban, error) {
	raw, ok, err := u.kv.HashField(ctx, bansHash, u.ID)
	if err != nil || !ok {
		return nil, err
	}
	ban := &Ban{}
	if err := json.Unmarshal([]byte(raw), ban); err != nil {
		return nil, fmt.Errorf("decode ban of %s: %w", u.ID, err)
	}
	if ban.Expired(now) {
		return nil, u.Unban(ctx)
	}
	return ban, nil
}
