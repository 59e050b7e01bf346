package handlers

import (
	"context"
	"errors"
	"time"

	"CoinBot/core/args"
	"CoinBot/core/commands"
	"CoinBot/core/database"
	"CoinBot/core/economy"
)

const (
	minInterestRate = 0.01
	maxInterestRate = 0.03
)

func init() {
	register(
		commands.Manifest{
			Name:        "bank:balance",
			Aliases:     []string{"bb"},
			Description: "Check your bank balance",
			Category:    categoryBank,
			Execute:     bankBalance,
		},
		commands.Manifest{
			Name:        "bank:deposit",
			Aliases:     []string{"bd"},
			Description: "Deposit money into your bank for safekeeping",
			Category:    categoryBank,
			Args: []args.Argument{
				args.Required("amount", args.Currency{Min: args.Bound(1)}, "How much money to deposit"),
			},
			Execute: bankDeposit,
		},
		commands.Manifest{
			Name:        "bank:withdraw",
			Aliases:     []string{"bw"},
			Description: "Withdraw money from your bank to pay for things",
			Category:    categoryBank,
			Args: []args.Argument{
				args.Required("amount", args.Currency{Min: args.Bound(1)}, "How much money to withdraw"),
			},
			Execute: bankWithdraw,
		},
		commands.Manifest{
			Name:        "bank:interest",
			Aliases:     []string{"bi"},
			Description: "Collect interest from your bank",
			Category:    categoryBank,
			Cooldown:    12 * time.Hour,
			Execute:     bankInterest,
		},
	)
}

func bankBalance(ctx context.Context, inv *commands.Invocation) error {
	balance, err := inv.Sender.BankBalance(ctx)
	if err != nil {
		return err
	}
	_, err = inv.Event.React(ctx, economy.FormatAmount(balance))
	return err
}

// moveToBank moves amount from cash to bank, or back when amount is negative.
// It fails with errRefused when the source cannot cover it.
func moveToBank(ctx context.Context, inv *commands.Invocation, amount float64) (cash, bank float64, err error) {
	err = inv.Store.WithTx(ctx, func(tx database.KV) error {
		user := inv.Sender.In(tx)
		if cash, err = user.Balance(ctx); err != nil {
			return err
		}
		if bank, err = user.BankBalance(ctx); err != nil {
			return err
		}
		if (amount > 0 && amount > cash) || (amount < 0 && -amount > bank) {
			return errRefused
		}
		if cash, err = user.AddBalance(ctx, -amount); err != nil {
			return err
		}
		bank, err = user.AddBankBalance(ctx, amount)
		return err
	})
	return cash, bank, err
}

func bankDeposit(ctx context.Context, inv *commands.Invocation) error {
	amount, _ := inv.Args.Number("amount")
	cash, bank, err := moveToBank(ctx, inv, amount)
	if errors.Is(err, errRefused) {
		_, err = inv.Reply(ctx, "You don't have enough cash to deposit %s.", economy.FormatBalance(amount))
		return err
	}
	if err != nil {
		return err
	}
	_, err = inv.Reply(ctx, "You deposited %s into your bank.\n\nYour new balance is %s.\n\nYour bank balance is %s.",
		economy.FormatBalance(amount), economy.FormatBalance(cash), economy.FormatBalance(bank))
	return err
}

func bankWithdraw(ctx context.Context, inv *commands.Invocation) error {
	amount, _ := inv.Args.Number("amount")
	cash, bank, err := moveToBank(ctx, inv, -amount)
	if errors.Is(err, errRefused) {
		_, err = inv.Reply(ctx, "You don't have enough money in the bank to withdraw %s.", economy.FormatBalance(amount))
		return err
	}
	if err != nil {
		return err
	}
	_, err = inv.Reply(ctx, "You withdrew %s from your bank.\n\nYour new balance is %s.\n\nYour bank balance is %s.",
		economy.FormatBalance(amount), economy.FormatBalance(cash), economy.FormatBalance(bank))
	return err
}

func bankInterest(ctx context.Context, inv *commands.Invocation) error {
	rate := minInterestRate + inv.Rand.Float64()*(maxInterestRate-minInterestRate)
	balance, err := inv.Sender.BankBalance(ctx)
	if err != nil {
		return err
	}
	interest := economy.RoundCurrency(balance * rate)
	if _, err := inv.Sender.AddBankBalance(ctx, interest); err != nil {
		return err
	}
	_, err = inv.Reply(ctx, "Current interest rate: `%.2f%%`\n\nYou collected %s interest from your bank!",
		rate*100, economy.FormatBalance(interest))
	return err
}
