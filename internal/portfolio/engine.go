// Package portfolio computes aggregate metrics over a collection of stock
// holdings, optionally enriching each holding with a live market price
// before the reduction.
package portfolio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stocksphere/internal/logger"
)

// NoPerformer is the label reported when the portfolio is empty.
const NoPerformer = "N/A"

// Holding is one stock position as seen by the metrics engine.
// BuyPrice is in the display currency; CurrentPrice is nil when the latest
// market price is unknown.
type Holding struct {
	ID           uint
	Name         string
	Ticker       string
	Quantity     float64
	BuyPrice     float64
	CurrentPrice *float64
}

// Metrics is the aggregate result of one computation. It is derived on
// demand and never persisted.
type Metrics struct {
	TotalValue     float64 `json:"totalValue"`
	TotalStocks    int     `json:"totalStocks"`
	BestPerformer  string  `json:"bestPerformer"`
	WorstPerformer string  `json:"worstPerformer"`
}

// Quoter returns the latest market price for a ticker, denominated in the
// quote provider's native currency. Any error means the price is unknown
// for that ticker; it must never abort the surrounding computation.
type Quoter interface {
	Quote(ctx context.Context, ticker string) (float64, error)
}

// Source supplies the holdings a metrics computation runs over.
type Source interface {
	ListHoldings(ctx context.Context) ([]Holding, error)
}

// Config controls the price-enrichment strategy of an Engine.
type Config struct {
	// Enrich enables live quote fetches per holding. When disabled the
	// engine falls back to each holding's stored CurrentPrice.
	Enrich bool

	// ConversionRate converts quoted prices from the provider currency to
	// the display currency. A fixed multiplier, not a live FX lookup.
	ConversionRate float64

	// QuoteTimeout bounds each per-ticker quote fetch. A timed-out ticker
	// resolves to an unknown price rather than hanging the computation.
	QuoteTimeout time.Duration

	// MaxConcurrent bounds the quote fetch fan-out to stay under provider
	// rate limits.
	MaxConcurrent int
}

// Engine folds holdings into Metrics. It holds no mutable state between
// computations; every call re-derives the result from its inputs.
type Engine struct {
	quoter Quoter
	cfg    Config
}

// NewEngine creates an Engine. A nil quoter disables enrichment regardless
// of the Enrich flag.
func NewEngine(quoter Quoter, cfg Config) *Engine {
	if cfg.ConversionRate <= 0 {
		cfg.ConversionRate = 1
	}
	if cfg.QuoteTimeout <= 0 {
		cfg.QuoteTimeout = 3 * time.Second
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 5
	}
	return &Engine{quoter: quoter, cfg: cfg}
}

// ComputeFrom lists holdings from src and computes metrics over them.
// A source error aborts the computation; no partial result is produced.
func (e *Engine) ComputeFrom(ctx context.Context, src Source) (*Metrics, error) {
	holdings, err := src.ListHoldings(ctx)
	if err != nil {
		return nil, err
	}
	m := e.Compute(ctx, holdings)
	return &m, nil
}

// Compute reduces holdings into a single Metrics value.
//
// Each holding contributes quantity * effectivePrice to the total value,
// where the effective price is the converted live quote when enrichment is
// enabled and the quote is known, else the stored current price, else the
// buy price. Performance percent is signed; a zero buy value counts as zero
// performance. Ties on best/worst keep the first-seen holding in input
// order.
func (e *Engine) Compute(ctx context.Context, holdings []Holding) Metrics {
	if len(holdings) == 0 {
		return Metrics{BestPerformer: NoPerformer, WorstPerformer: NoPerformer}
	}

	// Quotes land in a slice indexed by input position so the reduction
	// below always scans in input order, not quote completion order.
	var quotes []*float64
	if e.cfg.Enrich && e.quoter != nil {
		quotes = e.fetchQuotes(ctx, holdings)
	}

	metrics := Metrics{TotalStocks: len(holdings)}
	var bestPct, worstPct float64

	for i, h := range holdings {
		price := e.effectivePrice(h, quotes, i)
		buyValue := h.Quantity * h.BuyPrice
		currentValue := h.Quantity * price
		metrics.TotalValue += currentValue

		pct := 0.0
		if buyValue > 0 {
			pct = (currentValue - buyValue) / buyValue * 100
		}

		if i == 0 || pct > bestPct {
			bestPct = pct
			metrics.BestPerformer = performerLabel(h.Ticker, pct)
		}
		if i == 0 || pct < worstPct {
			worstPct = pct
			metrics.WorstPerformer = performerLabel(h.Ticker, pct)
		}
	}

	return metrics
}

// effectivePrice picks the price used for a holding's current value.
func (e *Engine) effectivePrice(h Holding, quotes []*float64, i int) float64 {
	if quotes != nil && quotes[i] != nil {
		return *quotes[i] * e.cfg.ConversionRate
	}
	if h.CurrentPrice != nil {
		return *h.CurrentPrice
	}
	return h.BuyPrice
}

// fetchQuotes fetches live prices for all holdings with a bounded fan-out.
// A failed or timed-out fetch leaves a nil entry for that holding.
func (e *Engine) fetchQuotes(ctx context.Context, holdings []Holding) []*float64 {
	quotes := make([]*float64, len(holdings))
	sem := make(chan struct{}, e.cfg.MaxConcurrent)

	var wg sync.WaitGroup
	for i, h := range holdings {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			quoteCtx, cancel := context.WithTimeout(ctx, e.cfg.QuoteTimeout)
			defer cancel()

			price, err := e.quoter.Quote(quoteCtx, ticker)
			if err != nil {
				logger.Get().Warnw("quote unavailable, using fallback price",
					"ticker", ticker,
					"error", err.Error(),
				)
				return
			}
			quotes[i] = &price
		}(i, h.Ticker)
	}
	wg.Wait()

	return quotes
}

func performerLabel(ticker string, pct float64) string {
	return fmt.Sprintf("%s (%.2f%%)", ticker, pct)
}
