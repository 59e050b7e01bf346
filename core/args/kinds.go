package args

import (
	"context"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"CoinBot/core/economy"

	"golang.org/x/text/cases"
)

// Kind is one of String, Number, Currency, User, ShopItem or Stock. The set
// is closed: validate always runs before parse, and parse only sees input
// validate accepted.
type Kind interface {
	validate(ctx context.Context, env *Env, raw string) error
	parse(ctx context.Context, env *Env, raw string) (any, error)
}

// Bound is a helper for the optional Min and Max fields.
func Bound(v float64) *float64 {
	return &v
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// String accepts any non-blank text.
type String struct {
	// Greedy takes every remaining text token, joined by spaces.
	Greedy bool
}

func (String) validate(_ context.Context, _ *Env, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return invalid(CodeEmpty, "Argument cannot be empty.")
	}
	return nil
}

func (String) parse(_ context.Context, _ *Env, raw string) (any, error) {
	return strings.TrimSpace(raw), nil
}

// Number accepts a finite number within the optional inclusive bounds.
type Number struct {
	Min, Max *float64
	Int      bool
}

func (n Number) check(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalid(CodeNotANumber, "`%s` is not a valid number.", trimmed)
	}
	if n.Min != nil && v < *n.Min {
		return 0, invalid(CodeBelowMinimum, "`%s` is less than the minimum value of %s.", trimmed, formatNumber(*n.Min))
	}
	if n.Max != nil && v > *n.Max {
		return 0, invalid(CodeAboveMaximum, "`%s` is greater than the maximum value of %s.", trimmed, formatNumber(*n.Max))
	}
	if n.Int && v != math.Trunc(v) {
		return 0, invalid(CodeNotAnInteger, "`%s` is not a valid integer.", trimmed)
	}
	return v, nil
}

func (n Number) validate(_ context.Context, _ *Env, raw string) error {
	_, err := n.check(raw)
	return err
}

func (n Number) parse(_ context.Context, _ *Env, raw string) (any, error) {
	return n.check(raw)
}

// Currency is a Number truncated to whole cents.
type Currency struct {
	Min, Max *float64
}

func (c Currency) number() Number {
	return Number{Min: c.Min, Max: c.Max}
}

func (c Currency) validate(ctx context.Context, env *Env, raw string) error {
	return c.number().validate(ctx, env, raw)
}

func (c Currency) parse(_ context.Context, _ *Env, raw string) (any, error) {
	v, err := c.number().check(raw)
	if err != nil {
		return nil, err
	}
	return economy.RoundCurrency(v), nil
}

// User resolves a mention, display name or local part to a Matrix user.
type User struct {
	// CanBeOutsideRoom accepts users who are not joined to the room.
	CanBeOutsideRoom bool
	// AllowSender accepts the invoking user.
	AllowSender bool
}

var userIDPattern = regexp.MustCompile(`^@[^\s:]+:\S+$`)

// userReference extracts the user id from a matrix.to link or a bare user id.
func userReference(raw string) (string, bool) {
	for _, prefix := range []string{"https://matrix.to/#/", "http://matrix.to/#/"} {
		if rest, ok := strings.CutPrefix(raw, prefix); ok {
			rest, _, _ = strings.Cut(rest, "?")
			id, err := url.PathUnescape(rest)
			if err != nil || !userIDPattern.MatchString(id) {
				return "", false
			}
			return id, true
		}
	}
	if userIDPattern.MatchString(raw) {
		return raw, true
	}
	return "", false
}

func localPart(userID string) string {
	local, _, _ := strings.Cut(strings.TrimPrefix(userID, "@"), ":")
	return local
}

func fold(s string) string {
	return cases.Fold().String(s)
}

func (u User) resolve(ctx context.Context, env *Env, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if id, ok := userReference(raw); ok {
		return id, nil
	}
	members, err := env.Members(ctx)
	if err != nil {
		return "", err
	}
	name := fold(raw)
	for _, member := range members {
		if member.DisplayName != "" && fold(member.DisplayName) == name {
			return member.UserID, nil
		}
	}
	local := fold(strings.TrimPrefix(raw, "@"))
	for _, member := range members {
		if fold(localPart(member.UserID)) == local {
			return member.UserID, nil
		}
	}
	return "", invalid(CodeInvalidUser, "`%s` is not a valid user.", raw)
}

func (u User) validate(ctx context.Context, env *Env, raw string) error {
	id, err := u.resolve(ctx, env, raw)
	if err != nil {
		return err
	}
	if id == env.Transport().UserID() {
		return invalid(CodeCannotTargetSelfBot, "Cannot use the MXID of this bot.")
	}
	if id == env.Event.Sender && !u.AllowSender {
		return invalid(CodeCannotTargetSender, "Cannot use yourself.")
	}
	if !u.CanBeOutsideRoom {
		member, err := env.IsMember(ctx, id)
		if err != nil {
			return err
		}
		if !member {
			return invalid(CodeUserNotInRoom, "`%s` is not in the room.", id)
		}
	}
	return nil
}

func (u User) parse(ctx context.Context, env *Env, raw string) (any, error) {
	id, err := u.resolve(ctx, env, raw)
	if err != nil {
		return nil, err
	}
	return economy.NewUser(id, env.Store), nil
}

// ShopItem accepts an exact catalog id.
type ShopItem struct{}

func (ShopItem) validate(_ context.Context, _ *Env, raw string) error {
	if _, ok := economy.FindShopItem(strings.TrimSpace(raw)); !ok {
		return invalid(CodeInvalidShopItem, "`%s` is not a valid shop item ID.", strings.TrimSpace(raw))
	}
	return nil
}

func (ShopItem) parse(_ context.Context, _ *Env, raw string) (any, error) {
	item, _ := economy.FindShopItem(strings.TrimSpace(raw))
	return item, nil
}

// Stock accepts a ticker in any case.
type Stock struct{}

func (Stock) validate(_ context.Context, _ *Env, raw string) error {
	if _, ok := economy.FindStock(strings.TrimSpace(raw)); !ok {
		return invalid(CodeInvalidStock, "`%s` is not a valid stock.", strings.TrimSpace(raw))
	}
	return nil
}

func (Stock) parse(_ context.Context, _ *Env, raw string) (any, error) {
	stock, _ := economy.FindStock(strings.TrimSpace(raw))
	return stock, nil
}
