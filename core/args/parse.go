package args

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"CoinBot/core/economy"
)

// Argument declares one positional argument of a command.
type Argument struct {
	Name        string
	Required    bool
	Description string
	Kind        Kind
}

func Required(name string, kind Kind, description string) Argument {
	return Argument{Name: name, Required: true, Description: description, Kind: kind}
}

func Optional(name string, kind Kind, description string) Argument {
	return Argument{Name: name, Description: description, Kind: kind}
}

// Usage renders the argument for help text: <name> or [name].
func (a Argument) Usage() string {
	if a.Required {
		return "<" + a.Name + ">"
	}
	return "[" + a.Name + "]"
}

// ParseArgs binds tokens to decls in declaration order and validates and
// parses each one. A User argument takes the next mention if one is left and
// the next text token otherwise; every other kind takes the next text token.
// The first failure stops parsing and is returned as *MissingArgumentError or
// *ArgumentError. Any other error is a lookup failure, not a user mistake.
func ParseArgs(ctx context.Context, env *Env, decls []Argument, tokens Tokens) (Values, error) {
	text := tokens.Text
	mentions := tokens.Mentions
	values := Values{}

	for _, decl := range decls {
		var (
			raw   string
			bound bool
		)
		switch kind := decl.Kind.(type) {
		case User:
			if len(mentions) > 0 {
				raw, mentions, bound = mentions[0], mentions[1:], true
			} else if len(text) > 0 {
				raw, text, bound = text[0], text[1:], true
			}
		case String:
			if len(text) > 0 {
				if kind.Greedy {
					raw, text, bound = strings.Join(text, " "), nil, true
				} else {
					raw, text, bound = text[0], text[1:], true
				}
			}
		default:
			if len(text) > 0 {
				raw, text, bound = text[0], text[1:], true
			}
		}

		if !bound {
			if decl.Required {
				return nil, &MissingArgumentError{Name: decl.Name}
			}
			continue
		}

		if err := decl.Kind.validate(ctx, env, raw); err != nil {
			return nil, wrap(decl.Name, raw, err)
		}
		value, err := decl.Kind.parse(ctx, env, raw)
		if err != nil {
			return nil, wrap(decl.Name, raw, err)
		}
		values[decl.Name] = value
	}
	return values, nil
}

func wrap(name, raw string, err error) error {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return &ArgumentError{Name: name, Raw: raw, Err: validation}
	}
	return fmt.Errorf("resolve argument %s: %w", name, err)
}

// Values holds parsed arguments by name. Optional arguments that were not
// given are absent.
type Values map[string]any

func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

func (v Values) String(name string) (string, bool) {
	s, ok := v[name].(string)
	return s, ok
}

// Number returns a Number or Currency argument.
func (v Values) Number(name string) (float64, bool) {
	n, ok := v[name].(float64)
	return n, ok
}

// NumberOr returns the argument or def when it was not given.
func (v Values) NumberOr(name string, def float64) float64 {
	if n, ok := v.Number(name); ok {
		return n
	}
	return def
}

func (v Values) User(name string) (economy.User, bool) {
	u, ok := v[name].(economy.User)
	return u, ok
}

func (v Values) ShopItem(name string) (economy.ShopItem, bool) {
	item, ok := v[name].(economy.ShopItem)
	return item, ok
}

func (v Values) Stock(name string) (economy.Stock, bool) {
	stock, ok := v[name].(economy.Stock)
	return stock, ok
}
