package economy

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"CoinBot/core/database"

	"github.com/thoas/go-funk"
)

// User is a handle on the store-backed state of one Matrix user. It holds no
// state of its own, so copies are cheap and always read fresh values.
type User struct {
	ID string
	kv database.KV
}

func NewUser(id string, kv database.KV) User {
	return User{ID: id, kv: kv}
}

// In rebinds the user to another store, typically a transaction from WithTx.
func (u User) In(kv database.KV) User {
	return User{ID: u.ID, kv: kv}
}

// Balance returns the cash balance, persisting DefaultBalance for new users.
func (u User) Balance(ctx context.Context) (float64, error) {
	balance, ok, err := u.kv.Score(ctx, balancesSet, u.ID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return u.SetBalance(ctx, DefaultBalance)
	}
	return balance, nil
}

// SetBalance stores the clamped value and returns what was stored.
func (u User) SetBalance(ctx context.Context, v float64) (float64, error) {
	v = ClampAmount(v)
	return v, u.kv.SetScore(ctx, balancesSet, u.ID, v)
}

func (u User) AddBalance(ctx context.Context, delta float64) (float64, error) {
	balance, err := u.Balance(ctx)
	if err != nil {
		return 0, err
	}
	return u.SetBalance(ctx, balance+delta)
}

// ResetBalance forgets the user's cash so the next read starts over at DefaultBalance.
func (u User) ResetBalance(ctx context.Context) error {
	return u.kv.RemoveMember(ctx, balancesSet, u.ID)
}

func (u User) BankBalance(ctx context.Context) (float64, error) {
	balance, _, err := u.kv.Score(ctx, bankSet, u.ID)
	return balance, err
}

func (u User) SetBankBalance(ctx context.Context, v float64) (float64, error) {
	v = ClampAmount(v)
	return v, u.kv.SetScore(ctx, bankSet, u.ID, v)
}

func (u User) AddBankBalance(ctx context.Context, delta float64) (float64, error) {
	balance, err := u.BankBalance(ctx)
	if err != nil {
		return 0, err
	}
	return u.SetBankBalance(ctx, balance+delta)
}

func (u User) itemIDs(ctx context.Context) ([]string, error) {
	raw, ok, err := u.kv.HashField(ctx, itemsHash, u.ID)
	if err != nil || !ok {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode items of %s: %w", u.ID, err)
	}
	return ids, nil
}

func (u User) setItemIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return u.kv.DeleteHashField(ctx, itemsHash, u.ID)
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return u.kv.SetHashField(ctx, itemsHash, u.ID, string(raw))
}

// Items returns the owned catalog entries. Ids no longer in the catalog are skipped.
func (u User) Items(ctx context.Context) ([]ShopItem, error) {
	ids, err := u.itemIDs(ctx)
	if err != nil {
		return nil, err
	}
	var items []ShopItem
	for _, id := range ids {
		if item, ok := FindShopItem(id); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (u User) OwnsItem(ctx context.Context, id string) (bool, error) {
	ids, err := u.itemIDs(ctx)
	if err != nil {
		return false, err
	}
	return funk.ContainsString(ids, id), nil
}

func (u User) AddItem(ctx context.Context, id string) error {
	ids, err := u.itemIDs(ctx)
	if err != nil {
		return err
	}
	if funk.ContainsString(ids, id) {
		return nil
	}
	return u.setItemIDs(ctx, append(ids, id))
}

func (u User) RemoveItem(ctx context.Context, id string) error {
	ids, err := u.itemIDs(ctx)
	if err != nil {
		return err
	}
	return u.setItemIDs(ctx, funk.FilterString(ids, func(owned string) bool { return owned != id }))
}

// Stocks returns ticker to share count for every stock the user holds.
func (u User) Stocks(ctx context.Context) (map[string]int, error) {
	raw, ok, err := u.kv.HashField(ctx, stocksHash, u.ID)
	if err != nil || !ok {
		return map[string]int{}, err
	}
	holdings := map[string]int{}
	if err := json.Unmarshal([]byte(raw), &holdings); err != nil {
		return nil, fmt.Errorf("decode stocks of %s: %w", u.ID, err)
	}
	return holdings, nil
}

// StockTickers returns the held tickers in alphabetical order.
func (u User) StockTickers(ctx context.Context) ([]string, error) {
	holdings, err := u.Stocks(ctx)
	if err != nil {
		return nil, err
	}
	tickers := funk.Keys(holdings).([]string)
	sort.Strings(tickers)
	return tickers, nil
}

// AddShares changes the holding of ticker by delta and returns the new count.
// Holdings never go below zero.
func (u User) AddShares(ctx context.Context, ticker string, delta int) (int, error) {
	holdings, err := u.Stocks(ctx)
	if err != nil {
		return 0, err
	}
	shares := holdings[ticker] + delta
	if shares <= 0 {
		shares = 0
		delete(holdings, ticker)
	} else {
		holdings[ticker] = shares
	}
	if len(holdings) == 0 {
		return 0, u.kv.DeleteHashField(ctx, stocksHash, u.ID)
	}
	raw, err := json.Marshal(holdings)
	if err != nil {
		return 0, err
	}
	return shares, u.kv.SetHashField(ctx, stocksHash, u.ID, string(raw))
}

// LastUsed returns when the user last ran command, if ever.
func (u User) LastUsed(ctx context.Context, command string) (time.Time, bool, error) {
	raw, ok, err := u.kv.HashField(ctx, cooldownHash+command, u.ID)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	var ms int64
	if _, err := fmt.Sscan(raw, &ms); err != nil {
		return time.Time{}, false, fmt.Errorf("decode cooldown of %s: %w", u.ID, err)
	}
	return time.UnixMilli(ms), true, nil
}

func (u User) MarkUsed(ctx context.Context, command string, at time.Time) error {
	return u.kv.SetHashField(ctx, cooldownHash+command, u.ID, fmt.Sprint(at.UnixMilli()))
}

// Transfer moves amount from one user to the other in a single transaction
// and returns both new balances. The caller checks that from can afford it.
func Transfer(ctx context.Context, kv database.KV, from, to User, amount float64) (fromBalance, toBalance float64, err error) {
	amount = RoundCurrency(amount)
	err = kv.WithTx(ctx, func(tx database.KV) error {
		var err error
		if fromBalance, err = from.In(tx).AddBalance(ctx, -amount); err != nil {
			return err
		}
		toBalance, err = to.In(tx).AddBalance(ctx, amount)
		return err
	})
	return fromBalance, toBalance, err
}

// Leaderboard returns the n richest users by cash balance.
func Leaderboard(ctx context.Context, kv database.KV, n int) ([]database.ScoredMember, error) {
	return kv.RangeByScoreDesc(ctx, balancesSet, 0, n-1)
}
