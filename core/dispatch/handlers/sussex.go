package handlers

import (
	"context"

	"CoinBot/core/commands"
	"CoinBot/core/events"
)

const sussexSticker = "mxc://cpluspatch.dev/pyjPIqccXFUuViLOPgGCyflT"

func init() {
	register(commands.Manifest{
		Name:        "sussex",
		Description: "Find out what got the bot banned from r/sussex",
		Category:    categoryMisc,
		Execute: func(ctx context.Context, inv *commands.Invocation) error {
			_, err := inv.Event.ReplyMedia(ctx, events.Media{URL: sussexSticker, Name: "sussex", Sticker: true})
			return err
		},
	})
}
