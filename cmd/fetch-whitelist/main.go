package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
	"github.com/galzzz/drops-exporter/internal/conf"
	"github.com/galzzz/drops-exporter/internal/data"
)

// fetch-whitelist fetches the remote whitelist once and prints the
// normalized entries. The URL defaults to ENDPOINT_URL.
func main() {
	_ = godotenv.Load()
	cfg := conf.LoadFromEnv()

	endpoint := cfg.Endpoint.URL
	if len(os.Args) > 1 {
		endpoint = os.Args[1]
	}
	if endpoint == "" {
		fmt.Println("Usage: fetch-whitelist [url] (or set ENDPOINT_URL)")
		os.Exit(1)
	}

	source := data.NewWhitelistSource(data.NewHTTPTransport(cfg.Timeout()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout()+time.Second)
	defer cancel()

	start := time.Now()
	payload, err := source.Fetch(ctx, endpoint)
	if err != nil {
		fmt.Printf("Fetch failed (%s): %v\n", domain.ErrorKind(err), err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	snap := domain.SnapshotFromPayload(payload, time.Now())
	fmt.Printf("=== %d entries (%d unique) in %v ===\n", snap.Count(), snap.SetSize(), elapsed.Round(time.Millisecond))
	if payload.Count != nil && *payload.Count != snap.Count() {
		fmt.Printf("Note: server reported count %d, %d entries survived normalization\n", *payload.Count, snap.Count())
	}
	if snap.UpdatedAt() != "" {
		fmt.Printf("Updated: %s\n", snap.UpdatedAt())
	}
	for i, item := range snap.Items() {
		fmt.Printf("[%d] %s\n", i+1, item)
	}
}
