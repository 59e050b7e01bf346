package economy

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"CoinBot/core/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *database.Store {
	store, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRoundCurrency(t *testing.T) {
	assert.Equal(t, 9.99, RoundCurrency(9.999))
	assert.Equal(t, 0.29, RoundCurrency(0.29))
	assert.Equal(t, 1.1, RoundCurrency(1.1))
	assert.Equal(t, 12.0, RoundCurrency(12.0049))
	assert.Equal(t, -9.99, RoundCurrency(-9.999))
	assert.Equal(t, 9.99, RoundCurrency(9.9999999995))
	assert.Equal(t, 0.0, RoundCurrency(0.0099999999))
	assert.Equal(t, 24.74, RoundCurrency(12.37*2))
}

func TestRoundCurrencyStableOnCents(t *testing.T) {
	for cents := 0; cents < 20000; cents++ {
		s := strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
		v, err := strconv.ParseFloat(s, 64)
		require.NoError(t, err)
		require.Equal(t, v, RoundCurrency(v), s)
		again, err := strconv.ParseFloat(strconv.FormatFloat(RoundCurrency(v), 'f', 2, 64), 64)
		require.NoError(t, err)
		require.Equal(t, v, RoundCurrency(again), s)
	}
}

func TestClampAmount(t *testing.T) {
	assert.Equal(t, 0.0, ClampAmount(-5))
	assert.Equal(t, AmountCap, ClampAmount(AmountCap*3))
	assert.Equal(t, 3.14, ClampAmount(3.14159))
}

func TestFormatBalance(t *testing.T) {
	assert.Equal(t, "`B$1,234.50`", FormatBalance(1234.5))
	assert.Equal(t, "`B$0.00`", FormatBalance(0))
	assert.Equal(t, "-B$120.00", FormatAmount(-120))
	assert.Equal(t, "B$1,000,000.00", FormatAmount(AmountCap))
}

func TestBalanceDefaultsAndClamps(t *testing.T) {
	ctx := context.Background()
	alice := NewUser("@alice:x", newStore(t))

	balance, err := alice.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultBalance, balance)

	balance, err = alice.AddBalance(ctx, -500)
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)

	balance, err = alice.AddBalance(ctx, 12.345)
	require.NoError(t, err)
	assert.Equal(t, 12.34, balance)

	balance, err = alice.SetBalance(ctx, 5e9)
	require.NoError(t, err)
	assert.Equal(t, AmountCap, balance)

	require.NoError(t, alice.ResetBalance(ctx))
	balance, err = alice.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultBalance, balance)
}

func TestBankBalanceStartsEmpty(t *testing.T) {
	ctx := context.Background()
	alice := NewUser("@alice:x", newStore(t))

	bank, err := alice.BankBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, bank)

	bank, err = alice.AddBankBalance(ctx, 40.555)
	require.NoError(t, err)
	assert.Equal(t, 40.55, bank)
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	alice, bob := NewUser("@alice:x", store), NewUser("@bob:x", store)
	_, err := bob.SetBalance(ctx, 20)
	require.NoError(t, err)

	from, to, err := Transfer(ctx, store, alice, bob, 50)
	require.NoError(t, err)
	assert.Equal(t, 50.0, from)
	assert.Equal(t, 70.0, to)

	top, err := Leaderboard(ctx, store, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "@bob:x", top[0].Member)
}

func TestItems(t *testing.T) {
	ctx := context.Background()
	alice := NewUser("@alice:x", newStore(t))

	owns, err := alice.OwnsItem(ctx, "rock")
	require.NoError(t, err)
	assert.False(t, owns)

	require.NoError(t, alice.AddItem(ctx, "rock"))
	require.NoError(t, alice.AddItem(ctx, "rock"))
	require.NoError(t, alice.AddItem(ctx, "yacht"))
	items, err := alice.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Rock", items[0].Name)

	require.NoError(t, alice.RemoveItem(ctx, "rock"))
	owns, err = alice.OwnsItem(ctx, "rock")
	require.NoError(t, err)
	assert.False(t, owns)
}

func TestShares(t *testing.T) {
	ctx := context.Background()
	alice := NewUser("@alice:x", newStore(t))

	shares, err := alice.AddShares(ctx, "JESS", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, shares)
	_, err = alice.AddShares(ctx, "ROCK", 1)
	require.NoError(t, err)

	tickers, err := alice.StockTickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"JESS", "ROCK"}, tickers)

	shares, err = alice.AddShares(ctx, "JESS", -5)
	require.NoError(t, err)
	assert.Equal(t, 0, shares)
	holdings, err := alice.Stocks(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"ROCK": 1}, holdings)
}

func TestBanExpiry(t *testing.T) {
	ctx := context.Background()
	alice := NewUser("@alice:x", newStore(t))
	now := time.UnixMilli(1_700_000_000_000)

	require.NoError(t, alice.BanUser(ctx, now, 600*time.Second, "Has a hole through the cranium! 💀"))

	ban, err := alice.ActiveBan(ctx, now.Add(599*time.Second))
	require.NoError(t, err)
	require.NotNil(t, ban)
	assert.Equal(t, int64(600), ban.Duration)
	assert.Equal(t, now.Add(600*time.Second), ban.ExpiresAt())

	ban, err = alice.ActiveBan(ctx, now.Add(600*time.Second))
	require.NoError(t, err)
	assert.Nil(t, ban)

	// the expired record was deleted, so even a check in the past finds nothing
	ban, err = alice.ActiveBan(ctx, now)
	require.NoError(t, err)
	assert.Nil(t, ban)
}

func TestPermanentBan(t *testing.T) {
	b := Ban{Reason: "spam", Timestamp: 0, Duration: 0}
	assert.True(t, b.Permanent())
	assert.False(t, b.Expired(time.Now().Add(100*365*24*time.Hour)))
}

func TestCooldown(t *testing.T) {
	ctx := context.Background()
	alice := NewUser("@alice:x", newStore(t))
	now := time.UnixMilli(1_700_000_000_000)

	_, ok, err := alice.LastUsed(ctx, "work")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, alice.MarkUsed(ctx, "work", now))
	last, ok, err := alice.LastUsed(ctx, "work")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, last.Equal(now))

	assert.Equal(t, time.Hour, CooldownRemaining(now.Add(3*time.Hour), last, 4*time.Hour))
	assert.LessOrEqual(t, CooldownRemaining(now.Add(4*time.Hour), last, 4*time.Hour), time.Duration(0))
}

func TestTransferRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	alice := NewUser("@alice:x", store)

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx database.KV) error {
		if _, err := alice.In(tx).AddBalance(ctx, -100); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	balance, err := alice.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultBalance, balance)
}

func TestCatalogs(t *testing.T) {
	item, ok := FindShopItem("rock")
	require.True(t, ok)
	assert.Equal(t, 7.0, item.ResalePrice())
	_, ok = FindShopItem("Rock")
	assert.False(t, ok)
	assert.Equal(t, "rock", ShopItems()[0].ID)

	stock, ok := FindStock("jess")
	require.True(t, ok)
	assert.Equal(t, "JESS", stock.Ticker)
	_, ok = FindStock("$rock")
	assert.True(t, ok)
	_, ok = FindStock("NOPE")
	assert.False(t, ok)
}

func TestSimulatePriceDeterministic(t *testing.T) {
	stock, _ := FindStock("JESS")
	at := time.Unix(1_700_000_000, 0)
	assert.Equal(t, stock.PriceAt(at), stock.PriceAt(at))
	for i := 0; i < 1000; i++ {
		price := SimulatePrice(float64(i*3600), stock.Parameters)
		assert.GreaterOrEqual(t, price, 0.01)
	}
}
