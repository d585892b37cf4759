package engine

import (
	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type OrderStatus string

const (
	StatusNew             OrderStatus = "NEW"
	StatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	StatusFilled          OrderStatus = "FILLED"
)

// Metadata carries opaque business tags attached by the submitter. The
// matching core never reads or modifies any of these fields.
type Metadata struct {
	Underlying string
	Instrument string
	Product    string
	Status     string
}

// Order is a limit instruction to trade Quantity units at Price or better.
// ID and Timestamp are owned by the book: they are assigned exactly once
// when ProcessOrder accepts the order and must not be set by the submitter.
type Order struct {
	ID        uint64
	Side      Side
	Price     decimal.Decimal
	Quantity  int64
	Remaining int64
	Status    OrderStatus
	Timestamp int64 // microseconds since epoch, book-assigned
	Meta      Metadata
}

func NewOrder(side Side, price decimal.Decimal, quantity int64, meta Metadata) *Order {
	return &Order{
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Remaining: quantity,
		Status:    StatusNew,
		Meta:      meta,
	}
}

// fill reduces the remaining quantity. Only the matching walk calls this;
// Remaining never goes below zero.
func (o *Order) fill(quantity int64) {
	if quantity > o.Remaining {
		panic("engine: fill exceeds remaining quantity")
	}
	o.Remaining -= quantity
	if o.Remaining == 0 {
		o.Status = StatusFilled
	} else {
		o.Status = StatusPartiallyFilled
	}
}

// Trade is an immutable record of one execution. Side is the aggressor's
// side and Price is the resting order's price, so any price improvement
// accrues to the aggressor.
type Trade struct {
	TradeID      string
	Side         Side
	Price        decimal.Decimal
	Quantity     int64
	TakerOrderID uint64
	MakerOrderID uint64
	Timestamp    int64
}

// PriceLevel holds the orders resting at one exact price, in arrival order.
type PriceLevel struct {
	Price  decimal.Decimal
	Orders []*Order // fifo ordering for time priority
}

func (l *PriceLevel) totalRemaining() int64 {
	var total int64
	for _, order := range l.Orders {
		total += order.Remaining
	}
	return total
}
