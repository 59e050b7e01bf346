package handlers

import (
	"context"

	"CoinBot/core/commands"
)

func init() {
	register(commands.Manifest{
		Name:        "ping",
		Aliases:     []string{"p"},
		Description: "Simple command to check that the bot is alive",
		Category:    categoryMisc,
		Execute: func(ctx context.Context, inv *commands.Invocation) error {
			_, err := inv.Reply(ctx, "Pong!")
			return err
		},
	})
}
