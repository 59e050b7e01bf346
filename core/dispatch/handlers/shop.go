package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"CoinBot/core/args"
	"CoinBot/core/commands"
	"CoinBot/core/database"
	"CoinBot/core/economy"
)

// errRefused aborts a transaction whose outcome is a reply, not a fault.
var errRefused = errors.New("refused")

func init() {
	register(
		commands.Manifest{
			Name:        "shop",
			Aliases:     []string{"s"},
			Description: "View the shop",
			Category:    categoryShop,
			Execute:     shop,
		},
		commands.Manifest{
			Name:        "buy",
			Aliases:     []string{"b"},
			Description: "Buy an item from the shop",
			Category:    categoryShop,
			Args: []args.Argument{
				args.Required("item", args.ShopItem{}, "The id of the item to buy"),
			},
			Execute: buy,
		},
		commands.Manifest{
			Name:        "sell",
			Description: fmt.Sprintf("Sell an item back to the shop for %.0f%% of its price", economy.ResaleRate*100),
			Category:    categoryShop,
			Args: []args.Argument{
				args.Required("item", args.ShopItem{}, "The id of the item to sell"),
			},
			Execute: sell,
		},
		commands.Manifest{
			Name:        "items",
			Description: "List your owned items",
			Category:    categoryShop,
			Execute:     items,
		},
	)
}

func shop(ctx context.Context, inv *commands.Invocation) error {
	var lines []string
	for _, item := range economy.ShopItems() {
		lines = append(lines, fmt.Sprintf("- `%s` **%s** (%s): %s", item.ID, item.Name, economy.FormatBalance(item.Price), item.Description))
	}
	_, err := inv.Reply(ctx, "## Shop items\n\n%s\n\nBuy with `%sbuy <item>`.", strings.Join(lines, "\n"), inv.Prefix)
	return err
}

func buy(ctx context.Context, inv *commands.Invocation) error {
	item, _ := inv.Args.ShopItem("item")

	var refusal string
	var newBalance float64
	err := inv.Store.WithTx(ctx, func(tx database.KV) error {
		buyer := inv.Sender.In(tx)
		owned, err := buyer.OwnsItem(ctx, item.ID)
		if err != nil {
			return err
		}
		if owned {
			refusal = "You already have this item!"
			return errRefused
		}
		balance, err := buyer.Balance(ctx)
		if err != nil {
			return err
		}
		if balance < item.Price {
			refusal = fmt.Sprintf("You don't have enough cash to buy %s.", item.Name)
			return errRefused
		}
		if newBalance, err = buyer.AddBalance(ctx, -item.Price); err != nil {
			return err
		}
		return buyer.AddItem(ctx, item.ID)
	})
	if errors.Is(err, errRefused) {
		_, err = inv.Reply(ctx, "%s", refusal)
		return err
	}
	if err != nil {
		return err
	}
	_, err = inv.Reply(ctx, "You bought **%s** for %s!\n\nYour new balance is %s.",
		item.Name, economy.FormatBalance(item.Price), economy.FormatBalance(newBalance))
	return err
}

func sell(ctx context.Context, inv *commands.Invocation) error {
	item, _ := inv.Args.ShopItem("item")
	price := item.ResalePrice()

	var newBalance float64
	err := inv.Store.WithTx(ctx, func(tx database.KV) error {
		seller := inv.Sender.In(tx)
		owned, err := seller.OwnsItem(ctx, item.ID)
		if err != nil {
			return err
		}
		if !owned {
			return errRefused
		}
		if err := seller.RemoveItem(ctx, item.ID); err != nil {
			return err
		}
		newBalance, err = seller.AddBalance(ctx, price)
		return err
	})
	if errors.Is(err, errRefused) {
		_, err = inv.Reply(ctx, "You don't have this item!")
		return err
	}
	if err != nil {
		return err
	}
	_, err = inv.Reply(ctx, "You sold **%s** for %s!\n\nYour new balance is %s.",
		item.Name, economy.FormatBalance(price), economy.FormatBalance(newBalance))
	return err
}

func items(ctx context.Context, inv *commands.Invocation) error {
	owned, err := inv.Sender.Items(ctx)
	if err != nil {
		return err
	}
	if len(owned) == 0 {
		_, err := inv.Reply(ctx, "You don't have any items!")
		return err
	}
	var lines []string
	for _, item := range owned {
		lines = append(lines, fmt.Sprintf("- **%s** (`%s`)", item.Name, item.ID))
	}
	_, err = inv.Reply(ctx, "## Your items\n\n%s", strings.Join(lines, "\n"))
	return err
}
