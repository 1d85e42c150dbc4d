// Command orderwatch follows order status from the command line. By default
// it polls the caller's own orders; with -owner it polls the caller's
// restaurant orders instead. With -order and -status it performs a single
// owner status update and exits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/foodhub/api/internal/client"
	"github.com/foodhub/api/internal/orderstatus"
	"github.com/shopspring/decimal"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8081", "API base URL")
	token := flag.String("token", os.Getenv("FOODHUB_TOKEN"), "Bearer token (default $FOODHUB_TOKEN)")
	interval := flag.Duration("interval", client.DefaultPollInterval, "Polling interval")
	owner := flag.Bool("owner", false, "Watch the orders of your restaurant instead of your own")
	orderID := flag.String("order", "", "Order to update (with -status)")
	status := flag.String("status", "", "New status for -order: "+statusChoices())
	flag.Parse()

	if *token == "" {
		log.Fatal("a token is required (-token or FOODHUB_TOKEN)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.New(*apiURL, *token)

	if *orderID != "" || *status != "" {
		if err := updateStatus(ctx, c, *orderID, *status); err != nil {
			log.Fatal(err)
		}
		return
	}

	fetch := c.ListMyOrders
	if *owner {
		fetch = c.ListRestaurantOrders
	}

	p := &client.Poller{
		Interval: *interval,
		Fetch:    fetch,
		OnOrders: func(orders []client.Order) { render(os.Stdout, orders) },
		OnError:  func(err error) { log.Printf("ERROR: refresh orders: %v", err) },
	}
	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

func updateStatus(ctx context.Context, c *client.Client, orderID, raw string) error {
	if orderID == "" || raw == "" {
		return errors.New("-order and -status must be used together")
	}
	s, err := orderstatus.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w (choose one of %s)", err, statusChoices())
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	o, err := c.UpdateOrderStatus(ctx, orderID, s)
	switch {
	case errors.Is(err, client.ErrForbidden):
		return fmt.Errorf("order %s does not belong to your restaurant", orderID)
	case errors.Is(err, client.ErrNotFound):
		return fmt.Errorf("order %s not found", orderID)
	case errors.Is(err, client.ErrConflict):
		return fmt.Errorf("order %s cannot move to %s: %w", orderID, s, err)
	case err != nil:
		return err
	}

	render(os.Stdout, []client.Order{*o})
	return nil
}

func render(w io.Writer, orders []client.Order) {
	fmt.Fprintf(w, "--- %s: %d order(s)\n", time.Now().Format(time.TimeOnly), len(orders))
	for _, o := range orders {
		info := orderstatus.Lookup(o.Status)
		total := decimal.New(o.TotalAmount, -2).StringFixed(2)

		line := fmt.Sprintf("%s  %-22s %s %3d%%  total %s", o.ID, info.Label, progressBar(info.Progress), info.Progress, total)
		if o.Restaurant != nil {
			eta := client.ExpectedDelivery(o).Local()
			line += fmt.Sprintf("  %s, expected by %s", o.Restaurant.Name, client.FormatClock(eta))
		}
		fmt.Fprintln(w, line)
	}
}

func progressBar(progress int) string {
	const width = 20
	filled := progress * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func statusChoices() string {
	values := orderstatus.Values()
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return strings.Join(out, ", ")
}
