package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/VincentSun9339/order-book/src/config"
	"github.com/VincentSun9339/order-book/src/display"
	"github.com/VincentSun9339/order-book/src/engine"
	"github.com/VincentSun9339/order-book/src/feed"
	"github.com/VincentSun9339/order-book/src/logger"
	"github.com/VincentSun9339/order-book/src/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	logger.InitLogger(cfg.Logging)
	defer logger.CloseLogger()
	log := logger.GetLogger()

	log.Info().Msg("Starting order book demo")

	processor := feed.NewProcessor(cfg.Feed, log)

	tradesDone := make(chan struct{})
	go func() {
		defer close(tradesDone)
		for trade := range processor.Trades() {
			log.Info().
				Str("trade_id", trade.TradeID).
				Str("side", string(trade.Side)).
				Str("price", trade.Price.String()).
				Int64("quantity", trade.Quantity).
				Uint64("taker_order_id", trade.TakerOrderID).
				Uint64("maker_order_id", trade.MakerOrderID).
				Msg("Trade executed")
		}
	}()

	ctx := context.Background()

	tape := []*engine.Order{
		order(engine.SideBuy, "12.23", 10, "BTC-USD-210917", "future", "completed"),
		order(engine.SideBuy, "12.31", 20, "BTC-USD-210916", "forward", "completed"),
		order(engine.SideSell, "13.55", 5, "BTC-USD-210915", "future", "pending"),
		order(engine.SideBuy, "12.23", 5, "BTC-USD-210914", "forward", "completed"),
		order(engine.SideBuy, "12.25", 15, "BTC-USD-210913", "future", "completed"),
		order(engine.SideSell, "13.31", 5, "BTC-USD-210912", "future", "pending"),
		order(engine.SideBuy, "12.25", 30, "BTC-USD-210911", "swap", "completed"),
		order(engine.SideSell, "13.31", 5, "BTC-USD-210910", "future", "completed"),
	}

	for _, o := range tape {
		if err := processor.Submit(ctx, o); err != nil {
			log.Error().Err(err).Msg("Submission failed")
		}
	}

	summary, err := processor.Summary(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Summary failed")
	} else {
		fmt.Println("Resulting order book:")
		fmt.Print(display.RenderBook(limit(summary, cfg.Display.Depth)))
	}

	// an aggressive sell that sweeps the top two bid levels and leaves its
	// remainder as a new offer level
	aggressor := order(engine.SideSell, "12.25", 100, "BTC-USD-211003", "future", "completed")
	log.Info().
		Str("price", aggressor.Price.String()).
		Int64("quantity", aggressor.Quantity).
		Msg("Submitting aggressive sell")
	if err := processor.Submit(ctx, aggressor); err != nil {
		log.Error().Err(err).Msg("Submission failed")
	}

	summary, err = processor.Summary(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Summary failed")
	} else {
		fmt.Println("Order book after the sweep:")
		fmt.Print(display.RenderBook(limit(summary, cfg.Display.Depth)))
	}

	processor.Close()
	<-tradesDone

	log.Info().Msg("Demo complete")
}

func order(side engine.Side, price string, quantity int64, instrument, product, status string) *engine.Order {
	return engine.NewOrder(side, decimal.RequireFromString(price), quantity, engine.Metadata{
		Underlying: "BTCUSD",
		Instrument: instrument,
		Product:    product,
		Status:     status,
	})
}

func limit(summary models.BookSummary, depth int) models.BookSummary {
	if depth <= 0 {
		return summary
	}
	if len(summary.Bids) > depth {
		summary.Bids = summary.Bids[:depth]
	}
	if len(summary.Offers) > depth {
		summary.Offers = summary.Offers[:depth]
	}
	return summary
}
