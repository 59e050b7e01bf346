package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CoinBot/core"
	"CoinBot/core/args"
	"CoinBot/core/database"
	"CoinBot/core/economy"
	"CoinBot/core/events"

	"github.com/thoas/go-funk"
)

// Manifest declares a command. Manifests are registered at startup and never
// change afterwards.
type Manifest struct {
	Name        string
	Aliases     []string
	Description string
	Category    string
	Args        []args.Argument
	// Cooldown is the minimum time between two uses by the same user.
	Cooldown  time.Duration
	Disabled  bool
	AdminOnly bool
	Execute   func(ctx context.Context, inv *Invocation) error
}

// Usage renders the command line, e.g. "!give <target> <amount>".
func (m Manifest) Usage(prefix string) string {
	parts := append([]string{prefix + m.Name}, funk.Map(m.Args, func(a args.Argument) string {
		return a.Usage()
	}).([]string)...)
	return strings.Join(parts, " ")
}

// Waiter delivers the next message a user sends in a room.
type Waiter interface {
	Next(ctx context.Context, roomID, userID string) (*events.TextEvent, error)
}

// Invocation is everything a command body gets to work with.
type Invocation struct {
	Manifest *Manifest
	Event    *events.TextEvent
	Args     args.Values
	Sender   economy.User

	Store     database.KV
	Transport events.Transport
	Registry  *Registry
	Waiter    Waiter
	Prefix    string
	Admins    []string
	Now       func() time.Time
	Rand      core.Random
	Sleep     func(ctx context.Context, d time.Duration) error
}

// Reply sends a formatted Markdown reply to the invoking message.
func (inv *Invocation) Reply(ctx context.Context, format string, v ...any) (*events.TextEvent, error) {
	return inv.Event.Reply(ctx, events.Text(fmt.Sprintf(format, v...)))
}

// ReplyMentioning is Reply that also links and notifies the given users.
func (inv *Invocation) ReplyMentioning(ctx context.Context, mentions []string, format string, v ...any) (*events.TextEvent, error) {
	return inv.Event.Reply(ctx, events.Text(fmt.Sprintf(format, v...), mentions...))
}

// IsAdmin reports whether userID may run admin commands.
func (inv *Invocation) IsAdmin(userID string) bool {
	return funk.ContainsString(inv.Admins, userID)
}

// User returns a store handle for any user id.
func (inv *Invocation) User(id string) economy.User {
	return economy.NewUser(id, inv.Store)
}
