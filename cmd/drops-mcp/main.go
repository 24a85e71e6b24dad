package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/galzzz/drops-exporter/internal/mcptools"
)

const defaultAPIURL = "http://127.0.0.1:9877"

// drops-mcp exposes the running exporter to MCP clients over stdio.
// Stdout carries the protocol, so diagnostics go to stderr.
func main() {
	_ = godotenv.Load()
	log.SetOutput(os.Stderr)

	apiURL := os.Getenv("EXPORTER_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := mcptools.NewServer(mcptools.NewClient(apiURL))
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
