package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"CoinBot/core"
	"CoinBot/core/args"
	"CoinBot/core/commands"
	"CoinBot/core/economy"
	"CoinBot/core/events"

	"github.com/thoas/go-funk"
)

type job struct {
	description string
	reward      float64
}

var jobs = []job{
	{"You deliver pizzas all evening and most of them arrive warm.", 40},
	{"You fix the office printer. Nobody knows how.", 120},
	{"You open a lemonade stand in the rain.", -20},
	{"You win a pub quiz on the strength of obscure geography.", 200},
	{"You day-trade your lunch money and lose track of it.", -100},
	{"You sweep the floors of the stock exchange.", 10},
	{"You sell a screenplay nobody will ever film.", 400},
	{"You walk seven dogs at once. One of them walks you.", 60},
}

const (
	rouletteBanDuration = 10 * time.Minute
	rouletteBanReason   = "Has a hole through the cranium! 💀"
	rouletteSpinDelay   = time.Second
	rpsTimeout          = time.Minute
)

func init() {
	register(
		commands.Manifest{
			Name:        "work",
			Description: "Work for money",
			Category:    categoryEconomy,
			Cooldown:    4 * time.Hour,
			Execute:     work,
		},
		commands.Manifest{
			Name:        "roulette",
			Aliases:     []string{"roul"},
			Description: "Play Russian roulette: a game of chance",
			Category:    categoryGames,
			Args: []args.Argument{
				args.Required("wager", args.Currency{Min: args.Bound(0.01)}, "The amount of money to bet"),
			},
			Execute: roulette,
		},
		commands.Manifest{
			Name:        "rockpaperscissors",
			Aliases:     []string{"rps"},
			Description: "Play a game of rock paper scissors",
			Category:    categoryGames,
			Args: []args.Argument{
				args.Optional("wager", args.Currency{Min: args.Bound(0)}, "The amount of money to bet"),
			},
			Execute: rockPaperScissors,
		},
	)
}

func work(ctx context.Context, inv *commands.Invocation) error {
	j := jobs[inv.Rand.IntN(len(jobs))]
	if _, err := inv.Sender.AddBalance(ctx, j.reward); err != nil {
		return err
	}
	_, err := inv.Reply(ctx, "%s\n\nReward: %s", j.description, economy.FormatBalance(j.reward))
	return err
}

func roulette(ctx context.Context, inv *commands.Invocation) error {
	wager, _ := inv.Args.Number("wager")

	balance, err := inv.Sender.Balance(ctx)
	if err != nil {
		return err
	}
	if balance < wager {
		_, err := inv.Reply(ctx, "You don't have enough money to bet %s!", economy.FormatBalance(wager))
		return err
	}

	result := core.RandomBetween(inv.Rand, 1, 6)
	spinning, err := inv.Reply(ctx, "Spinning the wheel...")
	if err != nil {
		return err
	}
	if err := inv.Sleep(ctx, rouletteSpinDelay); err != nil {
		return err
	}
	if _, err := spinning.Edit(ctx, events.Text(fmt.Sprintf("The wheel landed on %d!", result))); err != nil {
		core.LogWarnF("Failed to edit roulette spin: %v", err)
	}

	switch result {
	case 1:
		newBalance, err := inv.Sender.AddBalance(ctx, wager)
		if err != nil {
			return err
		}
		_, err = inv.Reply(ctx, "You **win**! Your wager has been doubled!\n\nNew balance: %s", economy.FormatBalance(newBalance))
		return err
	case 6:
		newBalance, err := inv.Sender.AddBalance(ctx, -wager)
		if err != nil {
			return err
		}
		if err := inv.Sender.BanUser(ctx, inv.Now(), rouletteBanDuration, rouletteBanReason); err != nil {
			return err
		}
		_, err = inv.Reply(ctx, "You've been **shot**! You lost your wager and are banned from this bot for 10 minutes.\n\nNew balance: %s",
			economy.FormatBalance(newBalance))
		return err
	default:
		_, err := inv.Reply(ctx, "The wheel landed on a safe number. Your wager has been returned.")
		return err
	}
}

var rpsChoices = []string{"rock", "paper", "scissors", "lizard", "spock"}

// rpsBeats lists what each choice defeats.
var rpsBeats = map[string][]string{
	"rock":     {"scissors", "lizard"},
	"paper":    {"rock", "spock"},
	"scissors": {"paper", "lizard"},
	"lizard":   {"paper", "spock"},
	"spock":    {"rock", "scissors"},
}

// rpsChoice finds the first choice mentioned in body.
func rpsChoice(body string) (string, bool) {
	body = strings.ToLower(body)
	best, bestAt := "", -1
	for _, choice := range rpsChoices {
		if at := strings.Index(body, choice); at >= 0 && (bestAt < 0 || at < bestAt) {
			best, bestAt = choice, at
		}
	}
	return best, bestAt >= 0
}

func rockPaperScissors(ctx context.Context, inv *commands.Invocation) error {
	wager := inv.Args.NumberOr("wager", 0)
	if wager > 0 {
		balance, err := inv.Sender.Balance(ctx)
		if err != nil {
			return err
		}
		if wager > balance {
			_, err := inv.Reply(ctx, "You don't have enough cash to bet %s.", economy.FormatBalance(wager))
			return err
		}
		core.LogDebugF("%s bets %.2f on rockpaperscissors", inv.Sender.ID, wager)
	}

	mine := rpsChoices[inv.Rand.IntN(len(rpsChoices))]
	if _, err := inv.Reply(ctx, "What is your choice? You can use:\n\n- `%s`", strings.Join(rpsChoices, "`\n- `")); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, rpsTimeout)
	defer cancel()
	var (
		answer *events.TextEvent
		theirs string
	)
	for {
		var err error
		answer, err = inv.Waiter.Next(waitCtx, inv.Event.RoomID, inv.Sender.ID)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			_, err := inv.Reply(context.WithoutCancel(ctx), "You took too long to choose.")
			return err
		}
		if err != nil {
			return err
		}
		var ok bool
		if theirs, ok = rpsChoice(answer.Body()); ok {
			break
		}
		if _, err := answer.Reply(ctx, events.Text("I didn't understand that. Pick one of the choices above.")); err != nil {
			return err
		}
	}

	message := "You chose `" + theirs + "`, I chose `" + mine + "`!"
	switch {
	case theirs == mine:
		_, err := answer.Reply(ctx, events.Text(message+"\n\nIt's a tie!"))
		return err
	case funk.ContainsString(rpsBeats[theirs], mine):
		if wager == 0 {
			_, err := answer.Reply(ctx, events.Text(message+"\n\nYou **win**!"))
			return err
		}
		newBalance, err := inv.Sender.AddBalance(ctx, wager)
		if err != nil {
			return err
		}
		_, err = answer.Reply(ctx, events.Text(message+"\n\nYou won "+economy.FormatBalance(wager)+"!\n\nNew balance: "+economy.FormatBalance(newBalance)))
		return err
	default:
		if wager == 0 {
			_, err := answer.Reply(ctx, events.Text(message+"\n\nYou **lose**!"))
			return err
		}
		newBalance, err := inv.Sender.AddBalance(ctx, -wager)
		if err != nil {
			return err
		}
		_, err = answer.Reply(ctx, events.Text(message+"\n\nYou lost "+economy.FormatBalance(wager)+"!\n\nNew balance: "+economy.FormatBalance(newBalance)))
		return err
	}
}
