package orderstatus_test

import (
	"errors"
	"testing"

	"github.com/foodhub/api/internal/orderstatus"
)

func TestTableProgressIsStrictlyIncreasing(t *testing.T) {
	want := []int{0, 25, 50, 75, 100}
	all := orderstatus.All()
	if len(all) != len(want) {
		t.Fatalf("table size: got %d, want %d", len(all), len(want))
	}
	for i, info := range all {
		if info.Progress != want[i] {
			t.Errorf("entry %d (%s): progress got %d, want %d", i, info.Value, info.Progress, want[i])
		}
		if i > 0 && info.Progress <= all[i-1].Progress {
			t.Errorf("progress not increasing at %s", info.Value)
		}
	}
}

func TestLookupKnownStatuses(t *testing.T) {
	tests := []struct {
		status   orderstatus.Status
		label    string
		progress int
	}{
		{orderstatus.Placed, "Order Placed", 0},
		{orderstatus.Paid, "Payment Confirmed", 25},
		{orderstatus.InProgress, "Preparing your order", 50},
		{orderstatus.OutForDelivery, "Out for delivery", 75},
		{orderstatus.Delivered, "Delivered", 100},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			info := orderstatus.Lookup(tt.status)
			if info.Value != tt.status {
				t.Errorf("value: got %q, want %q", info.Value, tt.status)
			}
			if info.Label != tt.label {
				t.Errorf("label: got %q, want %q", info.Label, tt.label)
			}
			if info.Progress != tt.progress {
				t.Errorf("progress: got %d, want %d", info.Progress, tt.progress)
			}
		})
	}
}

func TestLookupUnknownFallsBackToFirstEntry(t *testing.T) {
	info := orderstatus.Lookup("bogus")
	if info.Value != orderstatus.Placed {
		t.Errorf("fallback: got %q, want %q", info.Value, orderstatus.Placed)
	}
	if info.Progress != 0 {
		t.Errorf("fallback progress: got %d, want 0", info.Progress)
	}
}

func TestParse(t *testing.T) {
	for _, s := range orderstatus.Values() {
		got, err := orderstatus.Parse(string(s))
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if got != s {
			t.Errorf("parse %q: got %q", s, got)
		}
	}

	for _, raw := range []string{"", "bogus", "PLACED", "in_progress"} {
		_, err := orderstatus.Parse(raw)
		if !errors.Is(err, orderstatus.ErrUnknownStatus) {
			t.Errorf("parse %q: got %v, want ErrUnknownStatus", raw, err)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := orderstatus.All()
	all[0].Label = "changed"
	if orderstatus.Lookup(orderstatus.Placed).Label != "Order Placed" {
		t.Fatal("mutating All() result changed the table")
	}
}

func TestStatusIndex(t *testing.T) {
	if orderstatus.Placed.Index() != 0 || orderstatus.Delivered.Index() != 4 {
		t.Errorf("unexpected indexes: placed=%d delivered=%d", orderstatus.Placed.Index(), orderstatus.Delivered.Index())
	}
	if orderstatus.Status("nope").Index() != -1 {
		t.Error("unknown status should have index -1")
	}
}

func TestPolicyAllows(t *testing.T) {
	tests := []struct {
		name   string
		policy orderstatus.Policy
		from   orderstatus.Status
		to     orderstatus.Status
		want   bool
	}{
		{"any forward", orderstatus.PolicyAny, orderstatus.Placed, orderstatus.InProgress, true},
		{"any backward", orderstatus.PolicyAny, orderstatus.Delivered, orderstatus.Placed, true},
		{"any unknown target", orderstatus.PolicyAny, orderstatus.Placed, "bogus", false},
		{"forward skip ahead", orderstatus.PolicyForward, orderstatus.Placed, orderstatus.OutForDelivery, true},
		{"forward same", orderstatus.PolicyForward, orderstatus.Paid, orderstatus.Paid, true},
		{"forward backward", orderstatus.PolicyForward, orderstatus.Delivered, orderstatus.InProgress, false},
		{"forward from corrupt", orderstatus.PolicyForward, "bogus", orderstatus.Placed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Allows(tt.from, tt.to); got != tt.want {
				t.Errorf("Allows(%q, %q): got %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	for raw, want := range map[string]orderstatus.Policy{
		"":        orderstatus.PolicyAny,
		"any":     orderstatus.PolicyAny,
		"forward": orderstatus.PolicyForward,
	} {
		got, err := orderstatus.ParsePolicy(raw)
		if err != nil {
			t.Fatalf("parse policy %q: %v", raw, err)
		}
		if got != want {
			t.Errorf("parse policy %q: got %q, want %q", raw, got, want)
		}
	}

	if _, err := orderstatus.ParsePolicy("strict"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
