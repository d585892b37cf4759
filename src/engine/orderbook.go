package engine

import (
	"time"

	"github.com/google/btree"
	"github.com/shopspring/decimal"

	"github.com/VincentSun9339/order-book/src/models"
)

type bidLevel struct {
	level *PriceLevel
}

func (b *bidLevel) Less(than btree.Item) bool {
	other := than.(*bidLevel)
	return b.level.Price.GreaterThan(other.level.Price)
}

type offerLevel struct {
	level *PriceLevel
}

func (o *offerLevel) Less(than btree.Item) bool {
	other := than.(*offerLevel)
	return o.level.Price.LessThan(other.level.Price)
}

// OrderBook indexes resting orders for a single instrument by price level.
// Both trees are ordered best price first, so Min() is the top of book on
// either side.
//
// The book is not safe for concurrent use: exactly one goroutine must drive
// ProcessOrder to completion before the next order is admitted. The feed
// package provides that single-writer loop.
type OrderBook struct {
	Bids   *btree.BTree // sorted descending (highest first)
	Offers *btree.BTree // sorted ascending (lowest first)
	lastID uint64
	now    func() int64
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		Bids:   btree.New(32),
		Offers: btree.New(32),
		now:    func() int64 { return time.Now().UnixMicro() },
	}
}

// nextOrderID hands out book-lifetime-unique identities, starting at 1.
func (ob *OrderBook) nextOrderID() uint64 {
	ob.lastID++
	return ob.lastID
}

// BestBid returns the highest resting buy price and its aggregate remaining
// quantity. ok is false when there are no bids.
func (ob *OrderBook) BestBid() (price decimal.Decimal, quantity int64, ok bool) {
	item := ob.Bids.Min()
	if item == nil {
		return decimal.Decimal{}, 0, false
	}

	level := item.(*bidLevel).level
	if len(level.Orders) == 0 {
		panic("engine: empty bid level left indexed")
	}
	return level.Price, level.totalRemaining(), true
}

// BestOffer returns the lowest resting sell price and its aggregate remaining
// quantity. ok is false when there are no offers.
func (ob *OrderBook) BestOffer() (price decimal.Decimal, quantity int64, ok bool) {
	item := ob.Offers.Min()
	if item == nil {
		return decimal.Decimal{}, 0, false
	}

	level := item.(*offerLevel).level
	if len(level.Orders) == 0 {
		panic("engine: empty offer level left indexed")
	}
	return level.Price, level.totalRemaining(), true
}

// addResting appends the order to its own side's level at its limit price,
// creating the level on first use.
func (ob *OrderBook) addResting(order *Order) {
	var tree *btree.BTree
	var item btree.Item

	if order.Side == SideBuy {
		tree = ob.Bids
		item = &bidLevel{level: &PriceLevel{Price: order.Price}}
	} else {
		tree = ob.Offers
		item = &offerLevel{level: &PriceLevel{Price: order.Price}}
	}

	if existing := tree.Get(item); existing != nil {
		level := levelOf(existing)
		level.Orders = append(level.Orders, order)
		return
	}

	level := levelOf(item)
	level.Orders = append(level.Orders, order)
	tree.ReplaceOrInsert(item)
}

func levelOf(item btree.Item) *PriceLevel {
	switch it := item.(type) {
	case *bidLevel:
		return it.level
	case *offerLevel:
		return it.level
	}
	panic("engine: foreign item in price index")
}

// Summary projects both sides into aggregated levels, best price first.
// It is a pure read and may be called at any point between orders.
func (ob *OrderBook) Summary() models.BookSummary {
	return ob.Depth(0)
}

// Depth is Summary capped to the top n levels per side; n <= 0 means all.
func (ob *OrderBook) Depth(n int) models.BookSummary {
	summary := models.BookSummary{
		Bids:   make([]models.PriceLevelInfo, 0, ob.Bids.Len()),
		Offers: make([]models.PriceLevelInfo, 0, ob.Offers.Len()),
	}

	count := 0
	ob.Bids.Ascend(func(item btree.Item) bool {
		if n > 0 && count >= n {
			return false
		}
		level := item.(*bidLevel).level
		summary.Bids = append(summary.Bids, models.PriceLevelInfo{
			Price:    level.Price,
			Quantity: level.totalRemaining(),
		})
		count++
		return true
	})

	count = 0
	ob.Offers.Ascend(func(item btree.Item) bool {
		if n > 0 && count >= n {
			return false
		}
		level := item.(*offerLevel).level
		summary.Offers = append(summary.Offers, models.PriceLevelInfo{
			Price:    level.Price,
			Quantity: level.totalRemaining(),
		})
		count++
		return true
	})

	return summary
}
