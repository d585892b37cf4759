package tests

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/VincentSun9339/order-book/src/engine"
)

// TestTimePriorityWithinLevel verifies that among resting orders at the same
// price, the earliest-arrived order fills first.
func TestTimePriorityWithinLevel(t *testing.T) {
	book := engine.NewOrderBook()

	oldest := newOrder(engine.SideBuy, "12.25", 30)
	mustProcess(t, book, oldest)
	newer := newOrder(engine.SideBuy, "12.25", 15)
	mustProcess(t, book, newer)

	incoming := newOrder(engine.SideSell, "12.00", 20)
	trades := mustProcess(t, book, incoming)

	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got: %d", len(trades))
	}

	trade := trades[0]
	if trade.Quantity != 20 {
		t.Errorf("Expected trade quantity 20, got: %d", trade.Quantity)
	}
	if !trade.Price.Equal(decimal.RequireFromString("12.25")) {
		t.Errorf("Expected trade price 12.25, got: %s", trade.Price)
	}
	if trade.MakerOrderID != oldest.ID {
		t.Errorf("Expected maker %d (oldest order), got: %d", oldest.ID, trade.MakerOrderID)
	}
	if trade.TakerOrderID != incoming.ID {
		t.Errorf("Expected taker %d, got: %d", incoming.ID, trade.TakerOrderID)
	}
	if trade.Side != engine.SideSell {
		t.Errorf("Expected trade side SELL, got: %s", trade.Side)
	}

	// oldest has 10 left, newer is untouched, the incoming sell is done
	if oldest.Remaining != 10 {
		t.Errorf("Expected oldest order remaining 10, got: %d", oldest.Remaining)
	}
	if newer.Remaining != 15 {
		t.Errorf("Expected newer order remaining 15, got: %d", newer.Remaining)
	}
	if incoming.Remaining != 0 {
		t.Errorf("Expected incoming remaining 0, got: %d", incoming.Remaining)
	}
	if incoming.Status != engine.StatusFilled {
		t.Errorf("Expected incoming status FILLED, got: %s", incoming.Status)
	}

	if _, quantity, ok := book.BestBid(); !ok || quantity != 25 {
		t.Errorf("Expected best bid quantity 25, got: %d (ok=%v)", quantity, ok)
	}
	if _, _, ok := book.BestOffer(); ok {
		t.Error("Fully filled incoming sell should not rest")
	}
}

// TestSweepStopsAtLimit verifies a multi-level sweep: better-priced levels
// fill first, the walk never passes the incoming limit, and the remainder
// rests as a new level on the incoming order's own side.
func TestSweepStopsAtLimit(t *testing.T) {
	book := engine.NewOrderBook()

	bids := []*engine.Order{
		newOrder(engine.SideBuy, "12.31", 20),
		newOrder(engine.SideBuy, "12.25", 30),
		newOrder(engine.SideBuy, "12.25", 15),
		newOrder(engine.SideBuy, "12.23", 10),
		newOrder(engine.SideBuy, "12.23", 5),
	}
	for _, order := range bids {
		mustProcess(t, book, order)
	}

	incoming := newOrder(engine.SideSell, "12.25", 100)
	trades := mustProcess(t, book, incoming)

	if len(trades) != 3 {
		t.Fatalf("Expected 3 trades, got: %d", len(trades))
	}

	expected := []struct {
		price    string
		quantity int64
		maker    uint64
	}{
		{"12.31", 20, bids[0].ID},
		{"12.25", 30, bids[1].ID},
		{"12.25", 15, bids[2].ID},
	}
	var executed int64
	for i, want := range expected {
		trade := trades[i]
		if !trade.Price.Equal(decimal.RequireFromString(want.price)) {
			t.Errorf("Trade %d: expected price %s, got: %s", i, want.price, trade.Price)
		}
		if trade.Quantity != want.quantity {
			t.Errorf("Trade %d: expected quantity %d, got: %d", i, want.quantity, trade.Quantity)
		}
		if trade.MakerOrderID != want.maker {
			t.Errorf("Trade %d: expected maker %d, got: %d", i, want.maker, trade.MakerOrderID)
		}
		executed += trade.Quantity
	}

	// quantity conservation for the whole crossing sequence
	if executed+incoming.Remaining != incoming.Quantity {
		t.Errorf("Executed %d + remaining %d != original %d", executed, incoming.Remaining, incoming.Quantity)
	}
	if incoming.Remaining != 35 {
		t.Errorf("Expected incoming remaining 35, got: %d", incoming.Remaining)
	}

	// the 12.23 bids sit below the sell limit and must never be touched
	price, quantity, ok := book.BestBid()
	if !ok {
		t.Fatal("Should still have bids")
	}
	if !price.Equal(decimal.RequireFromString("12.23")) {
		t.Errorf("Expected best bid 12.23, got: %s", price)
	}
	if quantity != 15 {
		t.Errorf("Expected best bid quantity 15, got: %d", quantity)
	}

	// the unfilled remainder is the new best offer
	price, quantity, ok = book.BestOffer()
	if !ok {
		t.Fatal("Remainder should rest on the offer side")
	}
	if !price.Equal(decimal.RequireFromString("12.25")) {
		t.Errorf("Expected best offer 12.25, got: %s", price)
	}
	if quantity != 35 {
		t.Errorf("Expected best offer quantity 35, got: %d", quantity)
	}
}

// TestPriceImprovementToAggressor verifies that execution happens at the
// resting order's price, never the incoming order's own limit.
func TestPriceImprovementToAggressor(t *testing.T) {
	book := engine.NewOrderBook()

	mustProcess(t, book, newOrder(engine.SideSell, "13.31", 5))

	incoming := newOrder(engine.SideBuy, "13.55", 10)
	trades := mustProcess(t, book, incoming)

	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got: %d", len(trades))
	}
	if !trades[0].Price.Equal(decimal.RequireFromString("13.31")) {
		t.Errorf("Expected execution at resting price 13.31, got: %s", trades[0].Price)
	}

	// the 5 unfilled units rest at the buyer's own limit
	price, quantity, ok := book.BestBid()
	if !ok {
		t.Fatal("Remainder should rest on the bid side")
	}
	if !price.Equal(decimal.RequireFromString("13.55")) {
		t.Errorf("Expected best bid 13.55, got: %s", price)
	}
	if quantity != 5 {
		t.Errorf("Expected best bid quantity 5, got: %d", quantity)
	}
}

// TestEmptiedLevelRemoved verifies that a fully consumed level disappears
// from the index.
func TestEmptiedLevelRemoved(t *testing.T) {
	book := engine.NewOrderBook()

	mustProcess(t, book, newOrder(engine.SideBuy, "12.25", 10))
	trades := mustProcess(t, book, newOrder(engine.SideSell, "12.25", 10))

	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got: %d", len(trades))
	}
	if _, _, ok := book.BestBid(); ok {
		t.Error("Consumed bid level should be removed")
	}
	if _, _, ok := book.BestOffer(); ok {
		t.Error("Fully filled incoming order should not rest")
	}
	if len(book.Summary().Bids) != 0 {
		t.Error("Summary should show no bid levels")
	}
}

// TestBookNeverCrossed verifies that after any submission the best bid stays
// strictly below the best offer.
func TestBookNeverCrossed(t *testing.T) {
	book := engine.NewOrderBook()

	tape := []*engine.Order{
		newOrder(engine.SideBuy, "12.23", 10),
		newOrder(engine.SideBuy, "12.31", 20),
		newOrder(engine.SideSell, "13.55", 5),
		newOrder(engine.SideBuy, "12.25", 15),
		newOrder(engine.SideSell, "13.31", 5),
		newOrder(engine.SideBuy, "12.25", 30),
		newOrder(engine.SideSell, "12.25", 100),
		newOrder(engine.SideBuy, "13.00", 40),
		newOrder(engine.SideSell, "11.00", 200),
	}

	for i, order := range tape {
		mustProcess(t, book, order)

		bid, _, hasBid := book.BestBid()
		offer, _, hasOffer := book.BestOffer()
		if hasBid && hasOffer && !bid.LessThan(offer) {
			t.Fatalf("Book crossed after order %d: best bid %s >= best offer %s", i+1, bid, offer)
		}
	}
}

// TestMetadataUntouched verifies that opaque order tags survive matching
// unmodified.
func TestMetadataUntouched(t *testing.T) {
	book := engine.NewOrderBook()

	meta := engine.Metadata{
		Underlying: "BTCUSD",
		Instrument: "BTC-USD-210917",
		Product:    "future",
		Status:     "completed",
	}
	resting := engine.NewOrder(engine.SideBuy, decimal.RequireFromString("12.25"), 10, meta)
	mustProcess(t, book, resting)
	mustProcess(t, book, newOrder(engine.SideSell, "12.25", 4))

	if resting.Meta != meta {
		t.Errorf("Expected metadata unchanged, got: %+v", resting.Meta)
	}
}

// TestTradeRecords verifies the identity fields of emitted trades.
func TestTradeRecords(t *testing.T) {
	book := engine.NewOrderBook()

	maker := newOrder(engine.SideSell, "13.31", 5)
	mustProcess(t, book, maker)
	taker := newOrder(engine.SideBuy, "13.31", 5)
	trades := mustProcess(t, book, taker)

	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got: %d", len(trades))
	}
	trade := trades[0]
	if trade.TradeID == "" {
		t.Error("Expected a trade ID")
	}
	if trade.TakerOrderID != taker.ID || trade.MakerOrderID != maker.ID {
		t.Errorf("Expected taker/maker %d/%d, got: %d/%d", taker.ID, maker.ID, trade.TakerOrderID, trade.MakerOrderID)
	}
	if trade.Side != engine.SideBuy {
		t.Errorf("Expected aggressor side BUY, got: %s", trade.Side)
	}
}

// TestRejectsInvalidOrders verifies the typed validation errors and that a
// rejected order leaves the book untouched.
func TestRejectsInvalidOrders(t *testing.T) {
	book := engine.NewOrderBook()

	cases := []struct {
		name  string
		order *engine.Order
	}{
		{"zero price", engine.NewOrder(engine.SideBuy, decimal.Zero, 10, engine.Metadata{})},
		{"negative price", newOrder(engine.SideBuy, "-12.25", 10)},
		{"zero quantity", newOrder(engine.SideSell, "12.25", 0)},
		{"negative quantity", newOrder(engine.SideSell, "12.25", -5)},
		{"unknown side", engine.NewOrder("HOLD", decimal.RequireFromString("12.25"), 10, engine.Metadata{})},
		{"nil order", nil},
	}

	for _, tc := range cases {
		trades, err := book.ProcessOrder(tc.order)
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		var invalid *engine.InvalidOrderError
		if !errors.As(err, &invalid) {
			t.Errorf("%s: expected InvalidOrderError, got: %v", tc.name, err)
		}
		if len(trades) != 0 {
			t.Errorf("%s: expected no trades, got: %d", tc.name, len(trades))
		}
	}

	summary := book.Summary()
	if len(summary.Bids) != 0 || len(summary.Offers) != 0 {
		t.Error("Rejected orders must not touch the book")
	}

	// identities are only consumed by admitted orders
	accepted := newOrder(engine.SideBuy, "12.25", 10)
	mustProcess(t, book, accepted)
	if accepted.ID != 1 {
		t.Errorf("Expected first admitted order to get ID 1, got: %d", accepted.ID)
	}
}
