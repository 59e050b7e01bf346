package economy

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// DefaultBalance is what a user who has never been seen starts with.
	DefaultBalance = 100.0
	// AmountCap bounds every stored amount.
	AmountCap      = 1e6
	CurrencySymbol = "B$"
)

// Sets and hashes in the store.
const (
	balancesSet  = "balances"
	bankSet      = "bank"
	itemsHash    = "shop"
	stocksHash   = "stocks"
	bansHash     = "bans"
	cooldownHash = "cooldowns:"
)

var printer = message.NewPrinter(language.English)

// RoundCurrency truncates to whole cents toward zero. It goes through the
// shortest decimal form of v, so 0.29 stays 0.29 and 9.9999999995 is 9.99.
func RoundCurrency(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	cents, _ := decimal.NewFromFloat(v).Truncate(2).Float64()
	return cents
}

// ClampAmount applies the storage invariant: [0, AmountCap], whole cents.
func ClampAmount(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > AmountCap {
		v = AmountCap
	}
	return RoundCurrency(v)
}

// FormatAmount renders 1234.5 as B$1,234.50.
func FormatAmount(v float64) string {
	if v < 0 {
		return "-" + CurrencySymbol + printer.Sprintf("%.2f", -v)
	}
	return CurrencySymbol + printer.Sprintf("%.2f", v)
}

// FormatBalance is FormatAmount wrapped in inline code for chat replies.
func FormatBalance(v float64) string {
	return "`" + FormatAmount(v) + "`"
}
