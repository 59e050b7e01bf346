// Package dispatch routes inbound room events through the command pipeline:
// self filter, type filter, prefix, bans, lookup, cooldowns, argument parsing
// and execution. Each stage can end the pipeline.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"CoinBot/core"
	"CoinBot/core/args"
	"CoinBot/core/autoresponder"
	"CoinBot/core/commands"
	"CoinBot/core/database"
	"CoinBot/core/economy"
	"CoinBot/core/events"
	"CoinBot/core/matrix"

	"github.com/dustin/go-humanize"
	"github.com/thoas/go-funk"
)

// Outcome tells which stage ended the pipeline for an event.
type Outcome int

const (
	Ignored Outcome = iota
	Reacted
	Waited
	Autoresponded
	Banned
	UnknownCommand
	Forbidden
	CoolingDown
	BadArguments
	Executed
	Failed
)

var outcomeNames = map[Outcome]string{
	Ignored:        "ignored",
	Reacted:        "reacted",
	Waited:         "waited",
	Autoresponded:  "autoresponded",
	Banned:         "banned",
	UnknownCommand: "unknown command",
	Forbidden:      "forbidden",
	CoolingDown:    "cooling down",
	BadArguments:   "bad arguments",
	Executed:       "executed",
	Failed:         "failed",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

const (
	bannedRefusal    = "You are not allowed to use this bot."
	forbiddenRefusal = "You are not authorized to use this command."
)

type Config struct {
	Prefix string
	Admins []string
	// Banned holds glob patterns of user ids that may not use the bot.
	Banned []string
	// Timeout bounds the handling of one event. Zero means no limit.
	Timeout time.Duration
}

// Deps are the collaborators the pipeline and the commands share.
type Deps struct {
	Transport events.Transport
	Store     database.KV
	Registry  *commands.Registry
	// Responder is optional. Without it unprefixed messages are ignored.
	Responder *autoresponder.Responder
	Now       func() time.Time
	Rand      core.Random
	Sleep     func(ctx context.Context, d time.Duration) error
}

type Dispatcher struct {
	config  Config
	deps    Deps
	waiters *Waiters
}

func New(config Config, deps Deps) *Dispatcher {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Rand == nil {
		deps.Rand = core.DefaultRandom
	}
	if deps.Sleep == nil {
		deps.Sleep = core.Sleep
	}
	return &Dispatcher{config: config, deps: deps, waiters: NewWaiters()}
}

func (d *Dispatcher) Waiters() *Waiters {
	return d.waiters
}

// HandleRaw is the sync loop callback. Event types the bot does not know are
// dropped here.
func (d *Dispatcher) HandleRaw(ctx context.Context, roomID string, raw *matrix.RawEvent) {
	if raw.RoomID == "" {
		raw.RoomID = roomID
	}
	event, err := events.FromRaw(d.deps.Transport, raw)
	if err != nil {
		if !errors.Is(err, events.ErrInvalidEventType) {
			core.LogErrorF("Failed to read event %s: %v", raw.EventID, err)
		}
		return
	}
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}
	outcome := d.Dispatch(ctx, event)
	if outcome != Ignored {
		core.LogEventF(roomID, raw.EventID, "%s from %s", outcome, raw.Sender)
	}
}

// Dispatch runs one event through the pipeline and reports where it stopped.
func (d *Dispatcher) Dispatch(ctx context.Context, event events.Any) Outcome {
	// Never react to ourselves, or every reply could loop.
	if event.Header().Sender == d.deps.Transport.UserID() {
		return Ignored
	}

	switch event := event.(type) {
	case *events.ReactionEvent:
		return d.handleReaction(ctx, event)
	case *events.TextEvent:
		if !event.IsText() {
			return Ignored
		}
		if d.waiters.deliver(event) {
			return Waited
		}
		return d.handleText(ctx, event)
	default:
		return Ignored
	}
}

func (d *Dispatcher) handleText(ctx context.Context, event *events.TextEvent) Outcome {
	body := args.StripReplyFallback(event.Body())
	if !strings.HasPrefix(body, d.config.Prefix) {
		return d.autorespond(ctx, event, body)
	}

	cmd, ok := args.Tokenize(event.Body(), event.FormattedBody(), d.config.Prefix)
	if !ok {
		return Ignored
	}
	core.LogDebugF("Parsed command %s %v mentions %v", cmd.Name, cmd.Tokens.Text, cmd.Tokens.Mentions)

	sender := economy.NewUser(event.Sender, d.deps.Store)
	now := d.deps.Now()

	if refused, err := d.checkBan(ctx, event, sender, now); err != nil {
		d.fail(ctx, event, err)
		return Failed
	} else if refused {
		return Banned
	}

	manifest, ok := d.deps.Registry.Lookup(cmd.Name)
	if !ok {
		core.LogDebugF("Unknown command %s", cmd.Name)
		return UnknownCommand
	}
	if manifest.AdminOnly && !funk.ContainsString(d.config.Admins, event.Sender) {
		d.reply(ctx, event, forbiddenRefusal)
		return Forbidden
	}

	if manifest.Cooldown > 0 {
		lastUsed, used, err := sender.LastUsed(ctx, manifest.Name)
		if err != nil {
			d.fail(ctx, event, err)
			return Failed
		}
		if used {
			if remaining := economy.CooldownRemaining(now, lastUsed, manifest.Cooldown); remaining > 0 {
				d.reply(ctx, event, fmt.Sprintf("You can use `%s` again in %s.", manifest.Name, waitText(now, remaining)))
				return CoolingDown
			}
		}
		if err := sender.MarkUsed(ctx, manifest.Name, now); err != nil {
			d.fail(ctx, event, err)
			return Failed
		}
	}

	values, err := args.ParseArgs(ctx, args.NewEnv(event, d.deps.Store), manifest.Args, cmd.Tokens)
	if err != nil {
		var (
			argErr     *args.ArgumentError
			missingErr *args.MissingArgumentError
		)
		if errors.As(err, &argErr) || errors.As(err, &missingErr) {
			d.reply(ctx, event, fmt.Sprintf("%s\n\nUsage: `%s`", err, manifest.Usage(d.config.Prefix)))
			return BadArguments
		}
		d.fail(ctx, event, err)
		return Failed
	}

	inv := &commands.Invocation{
		Manifest:  manifest,
		Event:     event,
		Args:      values,
		Sender:    sender,
		Store:     d.deps.Store,
		Transport: d.deps.Transport,
		Registry:  d.deps.Registry,
		Waiter:    d.waiters,
		Prefix:    d.config.Prefix,
		Admins:    d.config.Admins,
		Now:       d.deps.Now,
		Rand:      d.deps.Rand,
		Sleep:     d.deps.Sleep,
	}
	if err := execute(ctx, manifest, inv); err != nil {
		d.fail(ctx, event, err)
		return Failed
	}
	return Executed
}

// checkBan replies and returns true when sender may not use the bot.
func (d *Dispatcher) checkBan(ctx context.Context, event *events.TextEvent, sender economy.User, now time.Time) (bool, error) {
	if core.MatchesAnyGlob(d.config.Banned, sender.ID) {
		d.reply(ctx, event, bannedRefusal)
		return true, nil
	}
	ban, err := sender.ActiveBan(ctx, now)
	if err != nil || ban == nil {
		return false, err
	}
	d.reply(ctx, event, banMessage(ban, now))
	return true, nil
}

func banMessage(ban *economy.Ban, now time.Time) string {
	reason := ban.Reason
	if reason == "" {
		reason = "No reason given."
	}
	if ban.Permanent() {
		return fmt.Sprintf("You are permanently banned from using this bot.\n\nReason: %s", reason)
	}
	return fmt.Sprintf("You are banned from using this bot. The ban ends %s.\n\nReason: %s",
		humanize.RelTime(ban.ExpiresAt(), now, "ago", "from now"), reason)
}

func waitText(now time.Time, remaining time.Duration) string {
	if remaining < time.Second {
		return "a moment"
	}
	return strings.TrimSpace(humanize.RelTime(now, now.Add(remaining), "", ""))
}

func (d *Dispatcher) autorespond(ctx context.Context, event *events.TextEvent, body string) Outcome {
	if d.deps.Responder == nil {
		return Ignored
	}
	response, ok, err := d.deps.Responder.Respond(ctx, event.RoomID, body, d.deps.Now())
	if err != nil {
		core.LogErrorF("Autoresponder failed in %s: %v", event.RoomID, err)
		return Ignored
	}
	if !ok {
		return Ignored
	}
	d.reply(ctx, event, response)
	return Autoresponded
}

// execute runs the command body, turning a panic into an error.
func execute(ctx context.Context, manifest *commands.Manifest, inv *commands.Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			core.LogErrorF("Command %s panicked: %v\n%s", manifest.Name, r, debug.Stack())
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return manifest.Execute(ctx, inv)
}

func (d *Dispatcher) reply(ctx context.Context, event *events.TextEvent, body string) {
	if _, err := event.Reply(ctx, events.Text(body)); err != nil {
		core.LogErrorF("Failed to reply to %s: %v", event.ID, err)
	}
}

// fail reports an execution fault to the room and keeps going.
func (d *Dispatcher) fail(ctx context.Context, event *events.TextEvent, err error) {
	core.LogErrorF("Error handling %s from %s: %v", event.ID, event.Sender, err)
	d.reply(ctx, event, fmt.Sprintf("## Error while running command\n\n```\n%v\n```", err))
}
