package handlers

import (
	"context"
	"fmt"
	"strings"

	"CoinBot/core/commands"
	"CoinBot/core/economy"
)

const leaderboardSize = 10

func init() {
	register(commands.Manifest{
		Name:        "leaderboard",
		Aliases:     []string{"lb"},
		Description: fmt.Sprintf("Show the top %d users by balance", leaderboardSize),
		Category:    categoryEconomy,
		Execute:     leaderboard,
	})
}

func leaderboard(ctx context.Context, inv *commands.Invocation) error {
	top, err := economy.Leaderboard(ctx, inv.Store, leaderboardSize)
	if err != nil {
		return err
	}
	if len(top) == 0 {
		_, err := inv.Reply(ctx, "Nobody has any money yet.")
		return err
	}
	lines := make([]string, len(top))
	for i, entry := range top {
		lines[i] = fmt.Sprintf("%d. %s: %s", i+1, entry.Member, economy.FormatBalance(entry.Score))
	}
	_, err = inv.Reply(ctx, "## Top %d users by balance\n\n%s", leaderboardSize, strings.Join(lines, "\n"))
	return err
}
