package orderstatus

import (
	"errors"
	"fmt"
)

// Status is the persisted value of an order's fulfilment stage.
type Status string

const (
	Placed         Status = "placed"
	Paid           Status = "paid"
	InProgress     Status = "inProgress"
	OutForDelivery Status = "outForDelivery"
	Delivered      Status = "delivered"
)

// ErrUnknownStatus is returned by Parse for values outside the table.
var ErrUnknownStatus = errors.New("unknown order status")

// Info is the presentation metadata for one status.
type Info struct {
	Value    Status `json:"value"`
	Label    string `json:"label"`
	Progress int    `json:"progress"`
}

// table is ordered placed -> delivered. Progress increases strictly along it.
var table = [...]Info{
	{Value: Placed, Label: "Order Placed", Progress: 0},
	{Value: Paid, Label: "Payment Confirmed", Progress: 25},
	{Value: InProgress, Label: "Preparing your order", Progress: 50},
	{Value: OutForDelivery, Label: "Out for delivery", Progress: 75},
	{Value: Delivered, Label: "Delivered", Progress: 100},
}

var index = func() map[Status]int {
	m := make(map[Status]int, len(table))
	for i, info := range table {
		m[info.Value] = i
	}
	return m
}()

// All returns the status table in order. The returned slice is a copy.
func All() []Info {
	out := make([]Info, len(table))
	copy(out, table[:])
	return out
}

// Values returns the status values in table order.
func Values() []Status {
	out := make([]Status, len(table))
	for i, info := range table {
		out[i] = info.Value
	}
	return out
}

// Lookup returns the metadata for s. Unknown values fall back to the first
// entry so a display never breaks on a stale or corrupt value; use Parse
// wherever the value is being accepted rather than shown.
func Lookup(s Status) Info {
	if i, ok := index[s]; ok {
		return table[i]
	}
	return table[0]
}

// Parse converts raw input into a Status, rejecting anything not in the table.
func Parse(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := index[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

// Valid reports whether s is a member of the table.
func (s Status) Valid() bool {
	_, ok := index[s]
	return ok
}

// Index is the position of s in the table, or -1 when s is unknown.
func (s Status) Index() int {
	if i, ok := index[s]; ok {
		return i
	}
	return -1
}

func (s Status) Label() string { return Lookup(s).Label }

func (s Status) Progress() int { return Lookup(s).Progress }

func (s Status) String() string { return string(s) }
