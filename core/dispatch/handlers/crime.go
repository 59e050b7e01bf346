package handlers

import (
	"context"
	"math"
	"strings"
	"time"

	"CoinBot/core"
	"CoinBot/core/args"
	"CoinBot/core/commands"
	"CoinBot/core/database"
	"CoinBot/core/economy"
)

const (
	stealSuccessRate  = 0.5
	stealMinShare     = 0.01
	stealMaxShare     = 0.5
	attackSuccessRate = 0.4
	attackMinMoney    = 50
	attackMaxMoney    = 400
	attackMinBalance  = 10
)

var (
	successfulAttacks = []string{
		"You ambush $TARGET behind the vending machines.",
		"You challenge $TARGET to a duel and win on a technicality.",
		"$TARGET slips on a conveniently placed banana peel.",
		"You distract $TARGET with a very long story and pick their pockets.",
	}
	failedAttacks = []string{
		"You trip over your own shoelaces before you reach $TARGET.",
		"$TARGET saw you coming from a mile away.",
		"You swing at $TARGET and hit a lamppost instead.",
		"Your getaway car won't start. $TARGET calls the police.",
	}
)

func init() {
	register(
		commands.Manifest{
			Name:        "steal",
			Description: "Try to steal from a user",
			Category:    categoryEconomy,
			Args: []args.Argument{
				args.Required("target", args.User{}, "The user to steal from"),
			},
			Execute: steal,
		},
		commands.Manifest{
			Name:        "attack",
			Aliases:     []string{"shiv"},
			Description: "Attack another user for their cash",
			Category:    categoryEconomy,
			Cooldown:    time.Minute,
			Args: []args.Argument{
				args.Required("target", args.User{}, "The user to attack"),
			},
			Execute: attack,
		},
	)
}

// share picks a fraction between stealMinShare and stealMaxShare.
func share(r core.Random) float64 {
	return stealMinShare + r.Float64()*(stealMaxShare-stealMinShare)
}

func steal(ctx context.Context, inv *commands.Invocation) error {
	target, _ := inv.Args.User("target")
	succeeded := inv.Rand.Float64() < stealSuccessRate
	fraction := share(inv.Rand)

	var amount, senderBalance, targetBalance float64
	err := inv.Store.WithTx(ctx, func(tx database.KV) error {
		thief, victim := inv.Sender.In(tx), target.In(tx)
		from, to := victim, thief
		if !succeeded {
			from, to = thief, victim
		}
		balance, err := from.Balance(ctx)
		if err != nil {
			return err
		}
		amount = economy.RoundCurrency(balance * fraction)
		fromBalance, toBalance, err := economy.Transfer(ctx, tx, from, to, amount)
		if err != nil {
			return err
		}
		senderBalance, targetBalance = toBalance, fromBalance
		if !succeeded {
			senderBalance, targetBalance = fromBalance, toBalance
		}
		return nil
	})
	if err != nil {
		return err
	}

	summary := "\n\n" + target.ID + " balance: " + economy.FormatBalance(targetBalance) +
		"\n\nYour balance: " + economy.FormatBalance(senderBalance)
	if succeeded {
		_, err = inv.ReplyMentioning(ctx, []string{target.ID}, "You stole %s from %s! They're not happy.%s",
			economy.FormatBalance(amount), target.ID, summary)
	} else {
		_, err = inv.ReplyMentioning(ctx, []string{target.ID}, "You got caught stealing from %s and had to pay them %s.%s",
			target.ID, economy.FormatBalance(amount), summary)
	}
	return err
}

func attack(ctx context.Context, inv *commands.Invocation) error {
	target, _ := inv.Args.User("target")

	senderBalance, err := inv.Sender.Balance(ctx)
	if err != nil {
		return err
	}
	if senderBalance < attackMinBalance {
		_, err := inv.Reply(ctx, "You are too poor to attack anyone!")
		return err
	}
	targetBalance, err := target.Balance(ctx)
	if err != nil {
		return err
	}
	if targetBalance < attackMinBalance {
		_, err := inv.ReplyMentioning(ctx, []string{target.ID}, "%s is too poor to be attacked!", target.ID)
		return err
	}

	money := float64(core.RandomBetween(inv.Rand, attackMinMoney, attackMaxMoney))
	if inv.Rand.Float64() < attackSuccessRate {
		story := successfulAttacks[inv.Rand.IntN(len(successfulAttacks))]
		money = math.Min(money, targetBalance)
		if _, _, err := economy.Transfer(ctx, inv.Store, target, inv.Sender, money); err != nil {
			return err
		}
		_, err = inv.ReplyMentioning(ctx, []string{target.ID}, "%s\n\nYou take %s from %s!",
			strings.ReplaceAll(story, "$TARGET", target.ID), economy.FormatBalance(money), target.ID)
		return err
	}

	story := failedAttacks[inv.Rand.IntN(len(failedAttacks))]
	money = math.Min(money, senderBalance)
	if _, _, err := economy.Transfer(ctx, inv.Store, inv.Sender, target, money); err != nil {
		return err
	}
	_, err = inv.ReplyMentioning(ctx, []string{target.ID}, "%s\n\nYou lose %s to %s!",
		strings.ReplaceAll(story, "$TARGET", target.ID), economy.FormatBalance(money), target.ID)
	return err
}
