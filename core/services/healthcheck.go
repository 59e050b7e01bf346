package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"CoinBot/core"
)

// HealthCheckInterval is how often the monitoring endpoint is pinged.
const HealthCheckInterval = 30 * time.Second

var healthClient = &http.Client{Timeout: 10 * time.Second}

// PingHealthCheck does a single GET against uri and fails on a non 2xx status.
func PingHealthCheck(ctx context.Context, uri string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return err
	}
	resp, err := healthClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("health check failed with status %d for %s", resp.StatusCode, uri)
	}
	return nil
}

// StartHealthCheck pings uri every interval until ctx is done. An empty uri
// disables it.
func StartHealthCheck(ctx context.Context, uri string, interval time.Duration) {
	if uri == "" {
		return
	}
	core.LogInfoF("Pinging health check every %s", interval)
	go healthCheckLoop(ctx, uri, interval)
}

func healthCheckLoop(ctx context.Context, uri string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := PingHealthCheck(ctx, uri); err != nil && ctx.Err() == nil {
			core.LogErrorF("%v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
