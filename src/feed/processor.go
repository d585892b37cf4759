package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/VincentSun9339/order-book/src/config"
	"github.com/VincentSun9339/order-book/src/engine"
	"github.com/VincentSun9339/order-book/src/models"
)

// ErrClosed is returned for submissions and queries after Close.
var ErrClosed = errors.New("feed: processor closed")

type requestType int

const (
	requestSubmit requestType = iota
	requestSummary
)

type request struct {
	typ     requestType
	order   *engine.Order
	resp    chan error
	summary chan models.BookSummary
}

// Processor owns one OrderBook and drives it from a single goroutine, so
// every order runs to completion before the next is admitted. Producers
// submit through a buffered channel and consumers drain executed trades
// from Trades(); neither side ever touches book internals.
type Processor struct {
	book     *engine.OrderBook
	requests chan request
	trades   chan engine.Trade
	done     chan struct{}
	stopped  sync.WaitGroup
	log      zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

func NewProcessor(cfg config.FeedConfig, log zerolog.Logger) *Processor {
	p := &Processor{
		book:     engine.NewOrderBook(),
		requests: make(chan request, cfg.SubmissionBuffer),
		trades:   make(chan engine.Trade, cfg.TradeBuffer),
		done:     make(chan struct{}),
		log:      log,
	}
	p.stopped.Add(1)
	go p.run()
	return p
}

// Submit hands one order to the processing loop and waits for the book's
// verdict. A nil error means the order was admitted: matched, rested, or
// both. Validation failures come back as *engine.InvalidOrderError.
func (p *Processor) Submit(ctx context.Context, order *engine.Order) error {
	resp := make(chan error, 1)
	if err := p.enqueue(ctx, request{typ: requestSubmit, order: order, resp: resp}); err != nil {
		return err
	}

	select {
	case err := <-resp:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueue hands a request to the loop. Holding the read lock across the send
// means Close cannot outrun an accepted request: everything enqueued here is
// answered, either by the loop or by the shutdown drain.
func (p *Processor) enqueue(ctx context.Context, req request) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	select {
	case p.requests <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Summary asks the processing loop for a book projection, so the read is
// serialized with order processing and never observes a half-applied match.
func (p *Processor) Summary(ctx context.Context) (models.BookSummary, error) {
	resp := make(chan error, 1)
	out := make(chan models.BookSummary, 1)
	if err := p.enqueue(ctx, request{typ: requestSummary, resp: resp, summary: out}); err != nil {
		return models.BookSummary{}, err
	}

	select {
	case err := <-resp:
		if err != nil {
			return models.BookSummary{}, err
		}
		return <-out, nil
	case <-ctx.Done():
		return models.BookSummary{}, ctx.Err()
	}
}

// Trades exposes the stream of executed trades in execution order. The
// channel is closed once the processor shuts down.
func (p *Processor) Trades() <-chan engine.Trade {
	return p.trades
}

// Close stops the processing loop, fails any queued requests with ErrClosed
// and closes the trade channel. It blocks until the loop has exited, so a
// consumer must keep draining Trades() while Close runs.
func (p *Processor) Close() {
	p.mu.Lock()
	alreadyClosed := p.closed
	p.closed = true
	p.mu.Unlock()

	if !alreadyClosed {
		close(p.done)
	}
	p.stopped.Wait()
}

func (p *Processor) run() {
	defer p.stopped.Done()

	for {
		select {
		case <-p.done:
			p.drain()
			close(p.trades)
			return
		case req := <-p.requests:
			p.handle(req)
		}
	}
}

func (p *Processor) handle(req request) {
	switch req.typ {
	case requestSubmit:
		trades, err := p.book.ProcessOrder(req.order)
		req.resp <- err
		if err != nil {
			event := p.log.Warn().Err(err)
			if req.order != nil {
				event = event.
					Str("side", string(req.order.Side)).
					Str("price", req.order.Price.String()).
					Int64("quantity", req.order.Quantity)
			}
			event.Msg("Order rejected")
			return
		}

		p.log.Debug().
			Uint64("order_id", req.order.ID).
			Str("side", string(req.order.Side)).
			Str("status", string(req.order.Status)).
			Int64("remaining", req.order.Remaining).
			Int("trades", len(trades)).
			Msg("Order processed")

		// a full trade channel stalls the loop rather than dropping trades
		for _, trade := range trades {
			p.trades <- trade
		}
	case requestSummary:
		req.summary <- p.book.Summary()
		req.resp <- nil
	}
}

// drain rejects whatever was still queued when Close raced a submitter.
func (p *Processor) drain() {
	for {
		select {
		case req := <-p.requests:
			req.resp <- ErrClosed
		default:
			return
		}
	}
}
