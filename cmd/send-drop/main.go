package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
	"github.com/galzzz/drops-exporter/internal/conf"
	"github.com/galzzz/drops-exporter/internal/data"
)

// send-drop posts one drop notification to the configured webhook,
// bypassing the whitelist. Useful for checking the sheet side.
func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println("Usage: send-drop <item> [quantity]")
		os.Exit(1)
	}

	cfg := conf.LoadFromEnv()
	endpoint := cfg.ToPluginConfig().WebhookEndpoint()
	if endpoint == "" {
		fmt.Println("Error: ENDPOINT_URL or WEBHOOK_URL must be set")
		os.Exit(1)
	}

	quantity := 1
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n < 1 {
			fmt.Printf("Error: invalid quantity %q\n", os.Args[2])
			os.Exit(1)
		}
		quantity = n
	}

	event := domain.DropEvent{ItemName: os.Args[1], Quantity: quantity}
	webhook := data.NewWebhookRepo(data.NewHTTPTransport(cfg.Timeout()), cfg.Endpoint.SigningSecret)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout()+time.Second)
	defer cancel()

	if err := webhook.Post(ctx, endpoint, event.Payload()); err != nil {
		fmt.Printf("Error (%s): %v\n", domain.ErrorKind(err), err)
		os.Exit(1)
	}

	fmt.Printf("Posted %s x%d to %s\n", event.ItemName, event.Quantity, endpoint)
}
