package economy

import (
	"math"
	"sort"
	"strings"
	"time"
)

// StockParameters shape the synthetic price curve of a stock.
type StockParameters struct {
	InitialPrice    float64
	Volatility      float64
	TrendStrength   float64
	JumpProbability float64
	JumpMagnitude   float64
}

type Stock struct {
	Ticker     string
	Parameters StockParameters
}

var defaultStockParameters = StockParameters{
	InitialPrice:    100,
	Volatility:      0.1,
	TrendStrength:   0.05,
	JumpProbability: 0.001,
	JumpMagnitude:   0.1,
}

var stocks = map[string]Stock{
	"JESS": {Ticker: "JESS", Parameters: defaultStockParameters},
	"ROCK": {Ticker: "ROCK", Parameters: StockParameters{
		InitialPrice:    12,
		Volatility:      0.04,
		TrendStrength:   0.02,
		JumpProbability: 0.0005,
		JumpMagnitude:   0.05,
	}},
}

// FindStock looks a stock up by ticker, ignoring case and a leading $.
func FindStock(ticker string) (Stock, bool) {
	stock, ok := stocks[strings.ToUpper(strings.TrimPrefix(ticker, "$"))]
	return stock, ok
}

// Stocks returns the listed stocks ordered by ticker.
func Stocks() []Stock {
	list := make([]Stock, 0, len(stocks))
	for _, stock := range stocks {
		list = append(list, stock)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Ticker < list[j].Ticker })
	return list
}

// PriceAt is the stock price at wall clock time at, rounded to cents.
func (s Stock) PriceAt(at time.Time) float64 {
	return RoundCurrency(SimulatePrice(float64(at.Unix()), s.Parameters))
}

const (
	minute = 60.0
	hour   = 60 * minute
	day    = 24 * hour
)

// SimulatePrice is a deterministic price curve: the same t always gives the
// same price, so every process agrees on quotes without storing history.
// t is in seconds.
func SimulatePrice(t float64, p StockParameters) float64 {
	seed := math.Sin(t*0.234) * 10000
	pseudoRandom := func() float64 {
		return math.Mod(math.Abs(math.Sin(seed*(t+1)*0.76543)), 1)
	}

	noise := math.Sin(t*0.01)*0.5 +
		math.Sin(t*0.05)*0.3 +
		math.Sin(t*0.2)*0.1 +
		math.Sin(t*0.8)*0.05 +
		math.Sin(t*3)*0.03 +
		math.Sin(t*10)*0.02
	tradingDay := 6.5 * hour
	marketCycle := math.Sin(t/tradingDay) * 0.2
	trend := math.Sin(t/(5*tradingDay)) * 0.1
	quarterly := math.Sin(t/(91*day)*2*math.Pi) * 0.08

	stability := 1.0
	if int64(t/(30*minute))%7 == 0 {
		stability = 0.5
	}

	shock := 1.0
	if int64(t/(20*day))%30 == 0 {
		shock *= 0.7 + pseudoRandom()*0.2
	}
	if int64(t/minute)%1440 == 666 && pseudoRandom() < 0.3 {
		shock *= 0.6 + pseudoRandom()*0.3
	}

	jump := 0.0
	if pseudoRandom() < p.JumpProbability {
		jump = (pseudoRandom()*2 - 1) * p.JumpMagnitude
	}

	hourOfDay := float64(int64(t/minute)%1440) / 60
	session := 0.3
	if hourOfDay >= 9.5 && hourOfDay <= 16 {
		session = 1
	}
	clustering := 0.5 + math.Abs(math.Sin(t/(48*hour)))*1.5

	walk := (pseudoRandom()*2 - 1) * p.Volatility * session * clustering * stability
	drift := (noise + marketCycle + trend + quarterly) * p.TrendStrength
	change := (walk + drift + jump) * shock

	age := math.Min(t/(30*day), 10)
	change *= 1 + age*0.02

	return math.Max(p.InitialPrice*math.Exp(change), 0.01)
}
