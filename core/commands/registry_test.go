package commands

import (
	"context"
	"testing"

	"CoinBot/core/args"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, *Invocation) error { return nil }

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(Manifest{Name: "balance", Aliases: []string{"bal"}, Category: "economy", Execute: noop})
	r.Register(Manifest{Name: "ping", Aliases: []string{"p"}, Category: "misc", Execute: noop})
	r.Register(Manifest{Name: "stocks:view", Aliases: []string{"sv"}, Category: "stocks", Disabled: true, Execute: noop})

	m, ok := r.Lookup("BAL")
	require.True(t, ok)
	assert.Equal(t, "balance", m.Name)

	m, ok = r.Lookup("ping")
	require.True(t, ok)
	assert.Equal(t, "ping", m.Name)

	_, ok = r.Lookup("sv")
	assert.False(t, ok, "disabled commands are hidden")
	_, ok = r.Lookup("nope")
	assert.False(t, ok)

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "balance", all[0].Name)
	assert.Equal(t, "ping", all[1].Name)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	r.Register(Manifest{Name: "buy", Aliases: []string{"b"}, Execute: noop})
	assert.Panics(t, func() { r.Register(Manifest{Name: "bank", Aliases: []string{"B"}, Execute: noop}) })
	assert.Panics(t, func() { r.Register(Manifest{Name: "Buy", Execute: noop}) })
	assert.Panics(t, func() { r.Register(Manifest{Name: "noexec"}) })
	assert.Panics(t, func() {
		r.Register(Manifest{Name: "dup", Execute: noop, Args: []args.Argument{
			args.Required("x", args.Number{}, ""),
			args.Optional("x", args.String{}, ""),
		}})
	})
}

func TestUsage(t *testing.T) {
	m := Manifest{Name: "give", Args: []args.Argument{
		args.Required("target", args.User{}, ""),
		args.Optional("amount", args.Currency{}, ""),
	}}
	assert.Equal(t, "!give <target> [amount]", m.Usage("!"))
	assert.Equal(t, "!ping", Manifest{Name: "ping"}.Usage("!"))
}
