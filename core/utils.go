package core

import (
	"context"
	"math/rand/v2"
	"net/url"
	"path"
	"strings"
	"time"
)

type URLParams struct {
	Key, Val string
}

// MakeURL appends the non-empty params as a query string to an already escaped URL.
func MakeURL(rawURL string, params []URLParams) string {
	q := url.Values{}
	for _, p := range params {
		if p.Val != "" {
			q.Set(p.Key, p.Val)
		}
	}
	if len(q) == 0 {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + q.Encode()
}

// MatchesAnyGlob reports whether value matches one of the shell-style patterns.
// Malformed patterns never match.
func MatchesAnyGlob(patterns []string, value string) bool {
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, value); err == nil && ok {
			return true
		}
	}
	return false
}

// Random is the subset of *rand.Rand the games use.
type Random interface {
	IntN(n int) int
	Float64() float64
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int   { return rand.IntN(n) }
func (globalRandom) Float64() float64 { return rand.Float64() }

// DefaultRandom is safe for concurrent use.
var DefaultRandom Random = globalRandom{}

// RandomBetween returns an integer in [lo, hi].
func RandomBetween(r Random, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
