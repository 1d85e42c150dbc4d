package client_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/foodhub/api/internal/client"
	"github.com/foodhub/api/internal/orderstatus"
)

func TestPoller_FetchesImmediatelyAndRepeats(t *testing.T) {
	var calls atomic.Int32
	got := make(chan []client.Order, 10)

	p := &client.Poller{
		Interval: 10 * time.Millisecond,
		Fetch: func(ctx context.Context) ([]client.Order, error) {
			n := calls.Add(1)
			return []client.Order{{ID: "o1", Progress: int(n)}}, nil
		},
		OnOrders: func(orders []client.Order) { got <- orders },
	}

	start := time.Now()
	stop := p.Start(context.Background())
	defer stop()

	select {
	case first := <-got:
		if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
			t.Errorf("first fetch took %v", elapsed)
		}
		if first[0].Progress != 1 {
			t.Errorf("first result: got %+v", first)
		}
	case <-time.After(time.Second):
		t.Fatal("no immediate fetch")
	}

	select {
	case second := <-got:
		if second[0].Progress != 2 {
			t.Errorf("second result should replace the first: got %+v", second)
		}
	case <-time.After(time.Second):
		t.Fatal("poller did not repeat")
	}
}

func TestPoller_ErrorsDoNotStopPolling(t *testing.T) {
	var calls atomic.Int32
	errs := make(chan error, 10)
	got := make(chan []client.Order, 10)

	p := &client.Poller{
		Interval: 5 * time.Millisecond,
		Fetch: func(ctx context.Context) ([]client.Order, error) {
			if calls.Add(1) == 1 {
				return nil, errors.New("network down")
			}
			return []client.Order{{ID: "o1", Status: orderstatus.Paid}}, nil
		},
		OnOrders: func(orders []client.Order) { got <- orders },
		OnError:  func(err error) { errs <- err },
	}

	stop := p.Start(context.Background())
	defer stop()

	select {
	case err := <-errs:
		if err.Error() != "network down" {
			t.Errorf("error: got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("OnError not called")
	}
	select {
	case orders := <-got:
		if orders[0].Status != orderstatus.Paid {
			t.Errorf("orders: got %+v", orders)
		}
	case <-time.After(time.Second):
		t.Fatal("polling stopped after an error")
	}
}

func TestPoller_MinimumSpacing(t *testing.T) {
	const interval = 10 * time.Millisecond
	var (
		mu       sync.Mutex
		inFlight int
		maxSeen  int
		starts   []time.Time
	)

	p := &client.Poller{
		Interval: interval,
		Fetch: func(ctx context.Context) ([]client.Order, error) {
			mu.Lock()
			inFlight++
			if inFlight > maxSeen {
				maxSeen = inFlight
			}
			starts = append(starts, time.Now())
			mu.Unlock()

			// Slower than the interval.
			time.Sleep(3 * interval)

			mu.Lock()
			inFlight--
			mu.Unlock()
			return nil, nil
		},
	}

	stop := p.Start(context.Background())
	time.Sleep(20 * interval)
	stop()

	mu.Lock()
	defer mu.Unlock()
	if maxSeen != 1 {
		t.Errorf("max in-flight fetches: got %d, want 1", maxSeen)
	}
	if len(starts) < 2 {
		t.Fatalf("expected at least 2 fetches, got %d", len(starts))
	}
	for i := 1; i < len(starts); i++ {
		// Each fetch sleeps 3*interval and the next waits another interval.
		if gap := starts[i].Sub(starts[i-1]); gap < 4*interval {
			t.Errorf("fetch %d started %v after the previous one, want >= %v", i, gap, 4*interval)
		}
	}
}

func TestPoller_PerTickTimeout(t *testing.T) {
	deadlines := make(chan time.Duration, 1)
	p := &client.Poller{
		Interval: 50 * time.Millisecond,
		Fetch: func(ctx context.Context) ([]client.Order, error) {
			dl, ok := ctx.Deadline()
			if !ok {
				t.Error("fetch context has no deadline")
			}
			select {
			case deadlines <- time.Until(dl):
			default:
			}
			return nil, nil
		},
	}

	stop := p.Start(context.Background())
	defer stop()

	select {
	case d := <-deadlines:
		if d <= 0 || d > 50*time.Millisecond {
			t.Errorf("deadline: got %v, want within the interval", d)
		}
	case <-time.After(time.Second):
		t.Fatal("fetch not called")
	}
}

func TestPoller_RunReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &client.Poller{
		Interval: time.Hour,
		Fetch: func(ctx context.Context) ([]client.Order, error) {
			return nil, nil
		},
	}

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run: got %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestPoller_CancelledFetchIsNotReported(t *testing.T) {
	started := make(chan struct{})
	var reported atomic.Bool

	p := &client.Poller{
		Interval: time.Hour,
		Fetch: func(ctx context.Context) ([]client.Order, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		},
		OnError: func(err error) { reported.Store(true) },
	}

	stop := p.Start(context.Background())
	<-started
	stop()

	if reported.Load() {
		t.Error("OnError called for a fetch cancelled by stop")
	}
}

func TestPoller_RequiresFetch(t *testing.T) {
	if err := (&client.Poller{}).Run(context.Background()); !errors.Is(err, client.ErrNoFetch) {
		t.Errorf("Run without Fetch: got %v, want ErrNoFetch", err)
	}
}

func TestPoller_StartRequiresFetch(t *testing.T) {
	defer func() {
		r := recover()
		err, _ := r.(error)
		if !errors.Is(err, client.ErrNoFetch) {
			t.Errorf("Start without Fetch: recovered %v, want ErrNoFetch panic", r)
		}
	}()

	stop := (&client.Poller{}).Start(context.Background())
	stop()
	t.Error("Start returned without Fetch")
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	p := &client.Poller{
		Interval: time.Millisecond,
		Fetch:    func(ctx context.Context) ([]client.Order, error) { return nil, nil },
	}
	stop := p.Start(context.Background())
	stop()
	stop()
}
