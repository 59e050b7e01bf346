package handlers

import (
	"context"
	"time"

	"CoinBot/core/args"
	"CoinBot/core/commands"
	"CoinBot/core/events"
	"CoinBot/core/matrix"

	"github.com/dustin/go-humanize"
)

// maxBanMinutes is about two years; longer bans should be permanent.
const maxBanMinutes = 1e6

func init() {
	register(
		commands.Manifest{
			Name:        "ban",
			Description: "Ban a user from the bot",
			Category:    categoryAdmin,
			AdminOnly:   true,
			Args: []args.Argument{
				args.Required("target", args.User{CanBeOutsideRoom: true}, "The user to ban"),
				args.Optional("minutes", args.Number{Min: args.Bound(0), Max: args.Bound(maxBanMinutes), Int: true}, "Length of the ban, 0 for permanent"),
				args.Optional("reason", args.String{Greedy: true}, "Why the user is banned"),
			},
			Execute: ban,
		},
		commands.Manifest{
			Name:        "unban",
			Description: "Lift the ban of a user",
			Category:    categoryAdmin,
			AdminOnly:   true,
			Args: []args.Argument{
				args.Required("target", args.User{CanBeOutsideRoom: true}, "The user to unban"),
			},
			Execute: unban,
		},
		commands.Manifest{
			Name:        "mog",
			Description: "Become anyone!",
			Category:    categoryAdmin,
			AdminOnly:   true,
			Args: []args.Argument{
				args.Required("target", args.User{}, "The user to become"),
			},
			Execute: mog,
		},
		commands.Manifest{
			Name:        "avatar",
			Description: "Show the avatar of a user",
			Category:    categoryMisc,
			Args: []args.Argument{
				args.Optional("target", args.User{CanBeOutsideRoom: true, AllowSender: true}, "The user whose avatar to show"),
			},
			Execute: avatar,
		},
	)
}

func ban(ctx context.Context, inv *commands.Invocation) error {
	target, _ := inv.Args.User("target")
	duration := time.Duration(inv.Args.NumberOr("minutes", 0)) * time.Minute
	reason, _ := inv.Args.String("reason")

	now := inv.Now()
	if err := target.BanUser(ctx, now, duration, reason); err != nil {
		return err
	}
	if duration == 0 {
		_, err := inv.ReplyMentioning(ctx, []string{target.ID}, "Banned %s permanently.", target.ID)
		return err
	}
	_, err := inv.ReplyMentioning(ctx, []string{target.ID}, "Banned %s until %s.",
		target.ID, humanize.RelTime(now.Add(duration), now, "ago", "from now"))
	return err
}

func unban(ctx context.Context, inv *commands.Invocation) error {
	target, _ := inv.Args.User("target")
	active, err := target.ActiveBan(ctx, inv.Now())
	if err != nil {
		return err
	}
	if active == nil {
		_, err := inv.ReplyMentioning(ctx, []string{target.ID}, "%s is not banned.", target.ID)
		return err
	}
	if err := target.Unban(ctx); err != nil {
		return err
	}
	_, err = inv.ReplyMentioning(ctx, []string{target.ID}, "Unbanned %s.", target.ID)
	return err
}

// profileOf returns nil when the user has no public profile.
func profileOf(ctx context.Context, inv *commands.Invocation, userID string) (*matrix.Profile, error) {
	profile, err := inv.Transport.Profile(ctx, userID)
	if matrix.IsMatrixError(err, matrix.ErrCodeNotFound) || matrix.IsMatrixError(err, matrix.ErrCodeForbidden) {
		return nil, nil
	}
	return profile, err
}

func mog(ctx context.Context, inv *commands.Invocation) error {
	target, _ := inv.Args.User("target")
	profile, err := profileOf(ctx, inv, target.ID)
	if err != nil {
		return err
	}
	if profile == nil {
		_, err := inv.Reply(ctx, "That user does not have a profile.")
		return err
	}
	if err := inv.Transport.SetRoomProfile(ctx, inv.Event.RoomID, *profile); err != nil {
		return err
	}
	_, err = inv.Reply(ctx, "Hi!")
	return err
}

func avatar(ctx context.Context, inv *commands.Invocation) error {
	target, ok := inv.Args.User("target")
	if !ok {
		target = inv.Sender
	}
	profile, err := profileOf(ctx, inv, target.ID)
	if err != nil {
		return err
	}
	if profile == nil || profile.AvatarURL == "" {
		_, err := inv.ReplyMentioning(ctx, []string{target.ID}, "%s has no avatar.", target.ID)
		return err
	}
	_, err = inv.Event.ReplyMedia(ctx, events.Media{URL: profile.AvatarURL, Name: target.ID + " avatar"})
	return err
}
