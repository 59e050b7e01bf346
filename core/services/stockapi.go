package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"CoinBot/core"
	"CoinBot/core/economy"
)

type stockQuote struct {
	Price float64 `json:"price"`
	Time  int64   `json:"time"`
}

// StockAPIHandler serves GET /api/v0/stocks/{ticker} with the current price of
// a stock. now is the clock the prices are simulated at.
func StockAPIHandler(now func() time.Time) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v0/stocks/{ticker}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		stock, ok := economy.FindStock(r.PathValue("ticker"))
		if !ok {
			http.Error(w, "Stock not found", http.StatusNotFound)
			return
		}
		// Whole seconds, rounded up.
		seconds := int64(math.Ceil(float64(now().UnixMilli()) / 1000))
		quote := stockQuote{
			Price: stock.PriceAt(time.Unix(seconds, 0)),
			Time:  seconds,
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(quote); err != nil {
			core.LogErrorF("Failed to write stock quote: %v", err)
		}
	})
	return mux
}

// StartStockAPI listens on addr until ctx is done. An empty addr disables it.
func StartStockAPI(ctx context.Context, addr string) {
	if addr == "" {
		return
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           StockAPIHandler(time.Now),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()
	go func() {
		core.LogInfoF("Stock API listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			core.LogErrorF("Stock API stopped: %v", err)
		}
	}()
}
