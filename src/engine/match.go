package engine

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProcessOrder consumes one incoming order: it validates the submission,
// stamps identity and timestamp, and either crosses it against the opposite
// side or rests it at its limit price. The returned trades are in execution
// order; the slice is empty when nothing crossed.
//
// The order is mutated in place: after the call its ID, Timestamp, Remaining
// and Status reflect what the book did with it.
func (ob *OrderBook) ProcessOrder(order *Order) ([]Trade, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}

	// identity, timestamp and remaining quantity are book-owned from here on
	order.ID = ob.nextOrderID()
	order.Timestamp = ob.now()
	order.Remaining = order.Quantity
	if order.Status == "" {
		order.Status = StatusNew
	}

	if order.Side == SideBuy {
		if best, _, ok := ob.BestOffer(); ok && order.Price.GreaterThanOrEqual(best) {
			return ob.match(order), nil
		}
	} else {
		if best, _, ok := ob.BestBid(); ok && order.Price.LessThanOrEqual(best) {
			return ob.match(order), nil
		}
	}

	ob.addResting(order)
	return nil, nil
}

// match walks the opposite side best price first, consuming resting orders
// in arrival order within each level. The walk stops at the first level that
// no longer crosses the incoming limit; levels beyond it are never touched.
// Any unfilled remainder is inserted on the incoming order's own side.
func (ob *OrderBook) match(incoming *Order) []Trade {
	opposite := ob.Offers
	if incoming.Side == SideSell {
		opposite = ob.Bids
	}

	trades := make([]Trade, 0, 4)

	for incoming.Remaining > 0 {
		item := opposite.Min()
		if item == nil {
			break
		}

		level := levelOf(item)
		if len(level.Orders) == 0 {
			panic("engine: empty price level left indexed")
		}
		if !crosses(incoming, level.Price) {
			break
		}

		for _, resting := range level.Orders {
			if incoming.Remaining == 0 {
				break
			}

			executed := incoming.Remaining
			if resting.Remaining < executed {
				executed = resting.Remaining
			}
			if executed == 0 {
				continue
			}

			trade := Trade{
				TradeID:      uuid.New().String(),
				Side:         incoming.Side,
				Price:        level.Price,
				Quantity:     executed,
				TakerOrderID: incoming.ID,
				MakerOrderID: resting.ID,
				Timestamp:    ob.now(),
			}
			incoming.fill(executed)
			resting.fill(executed)
			trades = append(trades, trade)
		}

		// compact in place, keeping survivors in arrival order
		survivors := level.Orders[:0]
		for _, resting := range level.Orders {
			if resting.Remaining > 0 {
				survivors = append(survivors, resting)
			}
		}
		level.Orders = survivors

		if len(level.Orders) == 0 {
			opposite.Delete(item)
		}
	}

	if incoming.Remaining > 0 {
		ob.addResting(incoming)
	}
	return trades
}

func crosses(incoming *Order, levelPrice decimal.Decimal) bool {
	if incoming.Side == SideBuy {
		return incoming.Price.GreaterThanOrEqual(levelPrice)
	}
	return incoming.Price.LessThanOrEqual(levelPrice)
}

func validateOrder(order *Order) error {
	if order == nil {
		return &InvalidOrderError{Reason: "order is nil"}
	}
	if order.Side != SideBuy && order.Side != SideSell {
		return &InvalidOrderError{Reason: "side must be BUY or SELL"}
	}
	if order.Price.Sign() <= 0 {
		return &InvalidOrderError{Reason: "price must be positive"}
	}
	if order.Quantity <= 0 {
		return &InvalidOrderError{Reason: "quantity must be positive"}
	}
	return nil
}

// InvalidOrderError reports a submission the book refuses to admit. The
// book state is untouched when ProcessOrder returns one.
type InvalidOrderError struct {
	Reason string
}

func (e *InvalidOrderError) Error() string {
	return "invalid order: " + e.Reason
}
