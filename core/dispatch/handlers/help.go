package handlers

import (
	"context"
	"fmt"
	"strings"

	"CoinBot/core/commands"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func init() {
	register(commands.Manifest{
		Name:        "help",
		Aliases:     []string{"h"},
		Description: "List all commands",
		Category:    categoryMisc,
		Execute:     help,
	})
}

func help(ctx context.Context, inv *commands.Invocation) error {
	var (
		b        strings.Builder
		category = "\x00"
	)
	b.WriteString("Here are all the commands:")
	for _, m := range inv.Registry.All() {
		if m.AdminOnly && !inv.IsAdmin(inv.Sender.ID) {
			continue
		}
		if m.Category != category {
			category = m.Category
			heading := "Other"
			if category != "" {
				heading = cases.Title(language.English).String(category)
			}
			fmt.Fprintf(&b, "\n\n### %s\n", heading)
		}
		fmt.Fprintf(&b, "\n- `%s`", m.Usage(inv.Prefix))
		if len(m.Aliases) > 0 {
			fmt.Fprintf(&b, " (`%s`)", strings.Join(m.Aliases, "`, `"))
		}
		if m.Description != "" {
			fmt.Fprintf(&b, ": %s", m.Description)
		}
	}
	_, err := inv.Reply(ctx, "%s", b.String())
	return err
}
