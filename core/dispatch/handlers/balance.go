package handlers

import (
	"context"

	"CoinBot/core/args"
	"CoinBot/core/commands"
	"CoinBot/core/economy"
)

func init() {
	register(commands.Manifest{
		Name:        "balance",
		Aliases:     []string{"bal"},
		Description: "Check your balance",
		Category:    categoryEconomy,
		Args: []args.Argument{
			args.Optional("command", args.String{}, "For admin use only: set or rm"),
			args.Optional("target", args.User{CanBeOutsideRoom: true, AllowSender: true}, "The user to change the balance of"),
			args.Optional("amount", args.Currency{Min: args.Bound(0), Max: args.Bound(economy.AmountCap)}, "The new balance"),
		},
		Execute: balance,
	})
}

func balance(ctx context.Context, inv *commands.Invocation) error {
	sub, ok := inv.Args.String("command")
	if !ok {
		cash, err := inv.Sender.Balance(ctx)
		if err != nil {
			return err
		}
		bank, err := inv.Sender.BankBalance(ctx)
		if err != nil {
			return err
		}
		_, err = inv.Reply(ctx, "Your balance is %s.\n\nYour bank balance is %s.", economy.FormatBalance(cash), economy.FormatBalance(bank))
		return err
	}

	if !inv.IsAdmin(inv.Sender.ID) {
		_, err := inv.Reply(ctx, "You are not authorized to use this command.")
		return err
	}
	target, ok := inv.Args.User("target")
	if !ok {
		_, err := inv.Reply(ctx, "Please provide a target user.")
		return err
	}

	switch sub {
	case "set":
		amount, ok := inv.Args.Number("amount")
		if !ok {
			_, err := inv.Reply(ctx, "Please provide the new balance.")
			return err
		}
		stored, err := target.SetBalance(ctx, amount)
		if err != nil {
			return err
		}
		_, err = inv.ReplyMentioning(ctx, []string{target.ID}, "Set the balance of %s to %s.", target.ID, economy.FormatBalance(stored))
		return err
	case "rm":
		if err := target.ResetBalance(ctx); err != nil {
			return err
		}
		_, err := inv.ReplyMentioning(ctx, []string{target.ID}, "Removed the balance of %s.", target.ID)
		return err
	default:
		_, err := inv.Reply(ctx, "Unknown subcommand `%s`. Use `set` or `rm`.", sub)
		return err
	}
}
