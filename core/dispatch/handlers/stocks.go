package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"CoinBot/core/args"
	"CoinBot/core/commands"
	"CoinBot/core/database"
	"CoinBot/core/economy"
)

// maxShares keeps share counts well inside int range.
const maxShares = 1e6

func init() {
	shares := args.Number{Min: args.Bound(1), Max: args.Bound(maxShares), Int: true}
	register(
		commands.Manifest{
			Name:        "stocks:buy",
			Aliases:     []string{"sb"},
			Description: "Buy stock shares",
			Category:    categoryStocks,
			Args: []args.Argument{
				args.Required("stock", args.Stock{}, "The stock to buy"),
				args.Optional("amount", shares, "The number of shares to buy"),
			},
			Execute: stocksBuy,
		},
		commands.Manifest{
			Name:        "stocks:sell",
			Aliases:     []string{"ss"},
			Description: "Sell stock shares",
			Category:    categoryStocks,
			Args: []args.Argument{
				args.Required("stock", args.Stock{}, "The stock to sell"),
				args.Optional("amount", shares, "The number of shares to sell"),
			},
			Execute: stocksSell,
		},
		commands.Manifest{
			Name:        "stocks:list",
			Aliases:     []string{"sl"},
			Description: "List your stocks",
			Category:    categoryStocks,
			Execute:     stocksList,
		},
		commands.Manifest{
			Name:        "stocks:view",
			Aliases:     []string{"sv"},
			Description: "View the price of a stock",
			Category:    categoryStocks,
			Args: []args.Argument{
				args.Optional("stock", args.Stock{}, "The stock to view, or all of them"),
			},
			Execute: stocksView,
		},
	)
}

func stocksBuy(ctx context.Context, inv *commands.Invocation) error {
	stock, _ := inv.Args.Stock("stock")
	amount := int(inv.Args.NumberOr("amount", 1))
	price := stock.PriceAt(inv.Now())
	total := economy.RoundCurrency(price * float64(amount))

	err := inv.Store.WithTx(ctx, func(tx database.KV) error {
		buyer := inv.Sender.In(tx)
		balance, err := buyer.Balance(ctx)
		if err != nil {
			return err
		}
		if total > balance {
			return errRefused
		}
		if _, err := buyer.AddBalance(ctx, -total); err != nil {
			return err
		}
		_, err = buyer.AddShares(ctx, stock.Ticker, amount)
		return err
	})
	if errors.Is(err, errRefused) {
		_, err = inv.Reply(ctx, "You don't have enough cash to buy **%d** shares of `$%s` at %s (%s total).",
			amount, stock.Ticker, economy.FormatBalance(price), economy.FormatBalance(total))
		return err
	}
	if err != nil {
		return err
	}
	_, err = inv.Reply(ctx, "Bought **%d** shares of `$%s` at %s (%s total).",
		amount, stock.Ticker, economy.FormatBalance(price), economy.FormatBalance(total))
	return err
}

func stocksSell(ctx context.Context, inv *commands.Invocation) error {
	stock, _ := inv.Args.Stock("stock")
	amount := int(inv.Args.NumberOr("amount", 1))
	price := stock.PriceAt(inv.Now())
	total := economy.RoundCurrency(price * float64(amount))

	err := inv.Store.WithTx(ctx, func(tx database.KV) error {
		seller := inv.Sender.In(tx)
		holdings, err := seller.Stocks(ctx)
		if err != nil {
			return err
		}
		if holdings[stock.Ticker] < amount {
			return errRefused
		}
		if _, err := seller.AddShares(ctx, stock.Ticker, -amount); err != nil {
			return err
		}
		_, err = seller.AddBalance(ctx, total)
		return err
	})
	if errors.Is(err, errRefused) {
		_, err = inv.Reply(ctx, "You don't own enough shares of `$%s` to sell **%d**.", stock.Ticker, amount)
		return err
	}
	if err != nil {
		return err
	}
	_, err = inv.Reply(ctx, "Sold **%d** shares of `$%s` at %s (%s total).",
		amount, stock.Ticker, economy.FormatBalance(price), economy.FormatBalance(total))
	return err
}

func stocksList(ctx context.Context, inv *commands.Invocation) error {
	holdings, err := inv.Sender.Stocks(ctx)
	if err != nil {
		return err
	}
	tickers, err := inv.Sender.StockTickers(ctx)
	if err != nil {
		return err
	}
	if len(tickers) == 0 {
		_, err := inv.Reply(ctx, "You don't have any stocks!")
		return err
	}
	lines := make([]string, len(tickers))
	for i, ticker := range tickers {
		lines[i] = fmt.Sprintf("- `$%s`: **%d** shares", ticker, holdings[ticker])
	}
	_, err = inv.Reply(ctx, "## Your stocks\n\n%s", strings.Join(lines, "\n"))
	return err
}

func stocksView(ctx context.Context, inv *commands.Invocation) error {
	now := inv.Now()
	list := economy.Stocks()
	if stock, ok := inv.Args.Stock("stock"); ok {
		list = []economy.Stock{stock}
	}
	lines := make([]string, len(list))
	for i, stock := range list {
		price := stock.PriceAt(now)
		before := stock.PriceAt(now.Add(-24 * time.Hour))
		change := 0.0
		if before > 0 {
			change = (price - before) / before * 100
		}
		lines[i] = fmt.Sprintf("- `$%s`: %s (%+.2f%% in 24h)", stock.Ticker, economy.FormatBalance(price), change)
	}
	_, err := inv.Reply(ctx, "## Stock prices\n\n%s", strings.Join(lines, "\n"))
	return err
}
