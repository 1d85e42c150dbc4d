package client

import (
	"context"
	"errors"
	"time"
)

// DefaultPollInterval is used when Poller.Interval is zero.
const DefaultPollInterval = 5 * time.Second

// ErrNoFetch is returned by Run when Poller.Fetch is nil.
var ErrNoFetch = errors.New("poller: Fetch is required")

// Poller re-reads a list of orders on a fixed interval.
//
// The next fetch is scheduled only after the previous one has returned, so
// at most one request is ever in flight and consecutive fetches start at
// least Interval apart. Each fetch is bounded by a timeout of Interval.
type Poller struct {
	Interval time.Duration
	// Fetch reads the current orders, typically Client.ListMyOrders.
	Fetch func(ctx context.Context) ([]Order, error)
	// OnOrders receives every successful result. Each result replaces the
	// previous one.
	OnOrders func(orders []Order)
	// OnError is notified of a failed fetch; polling continues on the next
	// tick. It must not block.
	OnError func(err error)
}

// Run fetches immediately and then keeps polling until ctx is done. It
// returns ctx's error.
func (p *Poller) Run(ctx context.Context) error {
	if p.Fetch == nil {
		return ErrNoFetch
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		p.tick(ctx, interval)
		timer.Reset(interval)
	}
}

// Start runs the poller on its own goroutine. The returned stop function
// cancels it and waits for the loop to exit; calling it more than once is
// safe. Start panics if Fetch is nil, since the loop could never do anything.
func (p *Poller) Start(ctx context.Context) (stop func()) {
	if p.Fetch == nil {
		panic(ErrNoFetch)
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

func (p *Poller) tick(ctx context.Context, timeout time.Duration) {
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	orders, err := p.Fetch(fetchCtx)
	if err != nil {
		// Cancellation of the poller itself is not a failed tick.
		if ctx.Err() != nil {
			return
		}
		if p.OnError != nil {
			p.OnError(err)
		}
		return
	}
	if p.OnOrders != nil {
		p.OnOrders(orders)
	}
}
