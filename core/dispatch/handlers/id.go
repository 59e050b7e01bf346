package handlers

import (
	"context"

	"CoinBot/core/args"
	"CoinBot/core/commands"
)

func init() {
	register(commands.Manifest{
		Name:        "id",
		Description: "Show the Matrix ID of a user, or your own",
		Category:    categoryMisc,
		Args: []args.Argument{
			args.Optional("user", args.User{CanBeOutsideRoom: true, AllowSender: true}, "The user to identify"),
		},
		Execute: func(ctx context.Context, inv *commands.Invocation) error {
			user, ok := inv.Args.User("user")
			if !ok {
				user = inv.Sender
			}
			_, err := inv.Reply(ctx, "Matrix ID: `%s`", user.ID)
			return err
		},
	})
}
