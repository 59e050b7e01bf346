package handlers

import (
	"context"

	"CoinBot/core/args"
	"CoinBot/core/commands"
	"CoinBot/core/economy"
)

func init() {
	register(commands.Manifest{
		Name:        "give",
		Description: "Give money to a user",
		Category:    categoryEconomy,
		Args: []args.Argument{
			args.Required("target", args.User{}, "The user to give money to"),
			args.Required("amount", args.Currency{Min: args.Bound(0.01)}, "The amount of money to give"),
		},
		Execute: give,
	})
}

func give(ctx context.Context, inv *commands.Invocation) error {
	target, _ := inv.Args.User("target")
	amount, _ := inv.Args.Number("amount")

	balance, err := inv.Sender.Balance(ctx)
	if err != nil {
		return err
	}
	if balance < amount {
		_, err := inv.Reply(ctx, "You don't have enough cash to give %s.", economy.FormatBalance(amount))
		return err
	}

	senderBalance, _, err := economy.Transfer(ctx, inv.Store, inv.Sender, target, amount)
	if err != nil {
		return err
	}
	_, err = inv.ReplyMentioning(ctx, []string{target.ID}, "Gave %s to %s!\n\nYour new balance is %s.",
		economy.FormatBalance(amount), target.ID, economy.FormatBalance(senderBalance))
	return err
}
