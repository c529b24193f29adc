// Command metrics computes portfolio metrics against a remote StockSphere
// API. It lists the session's holdings through the client facade, runs the
// metrics engine locally (with optional price enrichment), and prints the
// result as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"stocksphere/internal/client"
	"stocksphere/internal/config"
	"stocksphere/internal/logger"
	"stocksphere/internal/portfolio"
	"stocksphere/internal/quote"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Metrics run failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	apiURL := os.Getenv("STOCKSPHERE_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:" + cfg.Port
	}
	token := os.Getenv("STOCKSPHERE_API_TOKEN")
	if token == "" {
		return fmt.Errorf("STOCKSPHERE_API_TOKEN is required")
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	api := client.New(apiURL, client.Session{Token: token}, httpClient)

	var quoter portfolio.Quoter
	if cfg.QuoteEnrich && cfg.QuoteAPIKey != "" {
		quoter = quote.NewClient(httpClient, cfg.QuoteBaseURL, cfg.QuoteAPIKey)
	}

	engine := portfolio.NewEngine(quoter, portfolio.Config{
		Enrich:         cfg.QuoteEnrich,
		ConversionRate: cfg.ConversionRate,
		QuoteTimeout:   cfg.QuoteTimeout,
		MaxConcurrent:  cfg.QuoteMaxConcurrent,
	})

	start := time.Now()
	metrics, err := engine.ComputeFrom(context.Background(), api)
	if err != nil {
		return err
	}

	logger.Get().Infow("metrics computed",
		"total_stocks", metrics.TotalStocks,
		"duration", time.Since(start).String(),
	)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metrics)
}
