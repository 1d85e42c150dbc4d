package client

import (
	"fmt"
	"time"
)

// ExpectedDelivery is the order's creation time plus the restaurant's
// estimated delivery minutes. Without a restaurant summary it is the
// creation time.
func ExpectedDelivery(o Order) time.Time {
	if o.Restaurant == nil {
		return o.CreatedAt
	}
	return o.CreatedAt.Add(time.Duration(o.Restaurant.EstimatedDeliveryTime) * time.Minute)
}

// FormatClock renders t as "H:MM" in t's location, e.g. "9:05" or "18:30".
func FormatClock(t time.Time) string {
	return fmt.Sprintf("%d:%02d", t.Hour(), t.Minute())
}
